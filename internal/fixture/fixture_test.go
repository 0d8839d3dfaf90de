package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCorpus(t *testing.T) {
	src := "-- smoke corpus\n" +
		"\n" +
		"--8<-- call-nil exact\n" +
		"local p\n" +
		"p() --@< Error: Tried to call a non-function `nil`\n" +
		"--! error\n" +
		"\n" +
		"--8<-- dup-key -- feature:warn-dead-code\n" +
		"local t = {a = 4, a = 5} --@< Error: The key `a` is duplicated\n" +
		"--@^ Note: The key was first defined here\n" +
		"--! error\n" +
		"\n" +
		"--8<-- with-module\n" +
		"local m = require 'x'\n" +
		"--& x\n" +
		"return 42\n" +
		"--! ok\n"

	cases, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, cases, 3)

	callNil := cases[0]
	assert.Equal(t, "call-nil", callNil.Name)
	assert.True(t, callNil.Exact)
	assert.True(t, callNil.WantError)
	assert.Equal(t, 3, callNil.Line)
	assert.Equal(t, "local p\np() --@< Error: Tried to call a non-function `nil`", callNil.Input)
	require.Len(t, callNil.Expects, 1)
	assert.Equal(t, Expectation{
		Line:     2,
		Severity: "Error",
		Message:  "Tried to call a non-function `nil`",
	}, callNil.Expects[0])

	dupKey := cases[1]
	assert.Equal(t, []string{"warn-dead-code"}, dupKey.Features)
	assert.False(t, dupKey.Exact)
	require.Len(t, dupKey.Expects, 2)
	assert.Equal(t, 1, dupKey.Expects[0].Line)
	assert.Equal(t, "Error", dupKey.Expects[0].Severity)
	assert.Equal(t, 1, dupKey.Expects[1].Line)
	assert.Equal(t, "Note", dupKey.Expects[1].Severity)
	assert.Equal(t, "The key was first defined here", dupKey.Expects[1].Message)

	withModule := cases[2]
	assert.False(t, withModule.WantError)
	assert.Equal(t, "local m = require 'x'", withModule.Input)
	require.Len(t, withModule.Modules, 1)
	assert.Equal(t, Module{Name: "x", Source: "return 42"}, withModule.Modules[0])
}

func TestGutterMarkers(t *testing.T) {
	cases := []struct {
		name    string
		marker  string
		line    int
		endLine int
	}{
		{name: "same line", marker: "<", line: 3},
		{name: "one up", marker: "^", line: 2},
		{name: "two up", marker: "^^", line: 1},
		{name: "one down", marker: "v", line: 4},
		{name: "range", marker: "^-vv", line: 2, endLine: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exp, err := parseExpectation(tc.marker+" Error: boom", 3, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.line, exp.Line)
			assert.Equal(t, tc.endLine, exp.EndLine)
			assert.Equal(t, "boom", exp.Message)
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{name: "missing verdict", src: "--8<-- a\nlocal x = 1\n"},
		{name: "unknown severity", src: "--8<-- a\nlocal x = 1 --@< Fatal: boom\n--! ok\n"},
		{name: "bad header word", src: "--8<-- a wat\n--! ok\n"},
		{name: "bad verdict", src: "--8<-- a\n--! maybe\n"},
		{name: "unnamed module", src: "--8<-- a\n--&\n--! ok\n"},
		{name: "stray content", src: "local x = 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			assert.Error(t, err)
		})
	}
}
