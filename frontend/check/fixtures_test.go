package check

import (
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/parser"
	"github.com/cottand/luatic/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCorpus runs every fixture file under testdata through the checker
// and matches the diagnostics against the gutter expectations.
func TestCorpus(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.lua"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)
			cases, err := fixture.Parse(src)
			require.NoError(t, err)
			for _, tc := range cases {
				t.Run(tc.Name, func(t *testing.T) { runCorpusCase(t, tc) })
			}
		})
	}
}

type corpusDiag struct {
	unit     string
	line     int
	severity string
	message  string
}

func runCorpusCase(t *testing.T, tc fixture.Case) {
	var feats Features
	for _, name := range tc.Features {
		require.NoError(t, feats.Set(name))
	}
	mods := make(map[string]string, len(tc.Modules))
	for _, m := range tc.Modules {
		mods[m.Name] = m.Source
	}

	fset := token.NewFileSet()
	file, perrs := parser.Parse(fset, "main.lua", []byte(tc.Input))
	require.NotNil(t, file)
	c := New(fset, Options{Features: feats, Resolver: &mapResolver{mods: mods}})
	errs := perrs.Merge(c.CheckFile(file))

	var got []corpusDiag
	for _, e := range errs.Errors() {
		pos := fset.Position(e.Pos())
		got = append(got, corpusDiag{pos.Filename, pos.Line, lerr.SeverityOf(e.Code()).String(), e.Error()})
		for _, cause := range lerr.CausesOf(e) {
			cpos := fset.Position(cause.Span.Pos())
			got = append(got, corpusDiag{cpos.Filename, cpos.Line, lerr.Note.String(), cause.Message})
		}
	}

	want := make([]corpusDiag, len(tc.Expects))
	for i, ex := range tc.Expects {
		unit := "main.lua"
		if ex.Unit != "" {
			unit = ex.Unit + ".lua"
		}
		want[i] = corpusDiag{unit, ex.Line, ex.Severity, ex.Message}
	}

	if tc.Exact {
		assert.Equal(t, want, got)
	} else {
		matchLoose(t, want, got)
	}
	assert.Equal(t, tc.WantError, errs.HasError(), "verdict mismatch, diagnostics: %v", got)
}

// matchLoose requires every expectation to be covered by a distinct
// diagnostic on the same unit and line whose message contains the
// expected text. Extra diagnostics are tolerated.
func matchLoose(t *testing.T, want, got []corpusDiag) {
	used := make([]bool, len(got))
outer:
	for _, w := range want {
		for i, g := range got {
			if used[i] || g.unit != w.unit || g.line != w.line || g.severity != w.severity {
				continue
			}
			if !strings.Contains(g.message, w.message) {
				continue
			}
			used[i] = true
			continue outer
		}
		t.Errorf("missing diagnostic %s:%d %s: %s\ngot: %v", w.unit, w.line, w.severity, w.message, got)
	}
}
