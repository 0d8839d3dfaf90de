package luatic

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cottand/luatic/frontend/lerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkProgram(t *testing.T, fsys fstest.MapFS, settings Settings) *Session {
	t.Helper()
	sess, err := LoadProgram(fsys, settings)
	require.NoError(t, err)
	return sess
}

func messages(errs *lerr.Errors) []string {
	var out []string
	for _, e := range errs.Errors() {
		out = append(out, e.Error())
	}
	return out
}

func mapFile(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

func TestCheckProgramFromBytes(t *testing.T) {
	src := `
print('hello')
local s = ('luatic'):upper()
print(s:len())
`
	sess, errs, err := CheckProgramFromBytes([]byte(src))
	require.NoError(t, err)
	assert.Empty(t, messages(errs))
	assert.Equal(t, "main.lua", sess.Root())
}

func TestDiagnosticPositions(t *testing.T) {
	src := `local x = 1 --: const integer
x = 2
`
	sess, errs, err := CheckProgramFromBytes([]byte(src))
	require.NoError(t, err)
	list := errs.Errors()
	require.Len(t, list, 1)
	rendered := lerr.FormatWithCodeAndSource(list[0], sess.FileSet())
	assert.Contains(t, rendered, "main.lua:2:")
	assert.Contains(t, rendered, "Cannot assign to the constant variable `x`")
}

func TestRequireAcrossFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"main.lua": mapFile(`
local util = require 'lib.util'
print(util.double(2))
`),
		"lib/util.lua": mapFile(`
--v function(x: integer) --> integer
local function double(x) return x * 2 end
return {double = double}
`),
	}
	sess := checkProgram(t, fsys, Settings{Root: "main.lua"})
	assert.Empty(t, messages(sess.Errors()))
}

func TestRequireInitModule(t *testing.T) {
	fsys := fstest.MapFS{
		"main.lua": mapFile(`
local lib = require 'lib'
local n = lib.version + 1
`),
		"lib/init.lua": mapFile("return {version = 1}"),
	}
	sess := checkProgram(t, fsys, Settings{Root: "main.lua"})
	assert.Empty(t, messages(sess.Errors()))
}

func TestModuleDiagnosticNamesItsUnit(t *testing.T) {
	fsys := fstest.MapFS{
		"main.lua": mapFile("local u = require 'bad'"),
		"bad.lua":  mapFile("local y = x + 1"),
	}
	sess := checkProgram(t, fsys, Settings{Root: "main.lua"})
	list := sess.Errors().Errors()
	require.NotEmpty(t, list)
	rendered := lerr.FormatWithCodeAndSource(list[0], sess.FileSet())
	assert.True(t, strings.HasPrefix(rendered, "bad.lua:1:"), "got %q", rendered)
}

func TestModuleNotFound(t *testing.T) {
	fsys := fstest.MapFS{
		"main.lua": mapFile("local u = require 'nope'"),
	}
	sess := checkProgram(t, fsys, Settings{Root: "main.lua"})
	assert.Equal(t, []string{"Cannot find the module `nope`"}, messages(sess.Errors()))
}

func TestRootDefaultsToFirstLuaFile(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md": mapFile("# notes"),
		"app.lua":   mapFile("print('up')"),
	}
	sess := checkProgram(t, fsys, Settings{})
	assert.Equal(t, "app.lua", sess.Root())
	assert.Empty(t, messages(sess.Errors()))
}

func TestNoLuaUnit(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md": mapFile("# notes"),
	}
	_, err := LoadProgram(fsys, Settings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .lua unit")
}

func TestNoBuiltins(t *testing.T) {
	fsys := fstest.MapFS{
		"main.lua": mapFile("print('x')"),
	}
	sess := checkProgram(t, fsys, Settings{Root: "main.lua", NoBuiltins: true})
	assert.Equal(t, []string{"Global or local variable `print` is not defined"}, messages(sess.Errors()))
}

func TestCustomPackagePath(t *testing.T) {
	fsys := fstest.MapFS{
		"main.lua":        mapFile("local m = require 'conf'\nlocal p = m.port + 1"),
		"vendor/conf.lua": mapFile("return {port = 8080}"),
	}
	sess := checkProgram(t, fsys, Settings{Root: "main.lua", PackagePath: "vendor/?.lua"})
	assert.Empty(t, messages(sess.Errors()))
}
