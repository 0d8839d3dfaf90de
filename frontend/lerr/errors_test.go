package lerr

import (
	"bytes"
	"go/token"
	"testing"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanAt(start, end int) ast.Span {
	return ast.Span{PosStart: token.Pos(start), PosEnd: token.Pos(end)}
}

func TestErrorsDeduplicates(t *testing.T) {
	sp := spanAt(10, 14)
	var errs *Errors
	errs = errs.With(New(NewUndefinedVariable{Positioner: sp, Name: "x"}))
	errs = errs.With(New(NewUndefinedVariable{Positioner: sp, Name: "x"}))
	require.Equal(t, 1, errs.Len())

	errs = errs.With(New(NewUndefinedVariable{Positioner: sp, Name: "y"}))
	errs = errs.With(New(NewUndefinedVariable{Positioner: spanAt(20, 24), Name: "x"}))
	require.Equal(t, 3, errs.Len())
}

func TestErrorsSeverity(t *testing.T) {
	var errs *Errors
	assert.False(t, errs.HasError())
	assert.Equal(t, Note, errs.MaxSeverity())

	errs = errs.With(New(NewDeadCode{Positioner: spanAt(1, 5)}))
	assert.False(t, errs.HasError())
	assert.Equal(t, Warning, errs.MaxSeverity())

	errs = errs.With(New(NewNotCallable{Positioner: spanAt(6, 9), Found: "integer"}))
	assert.True(t, errs.HasError())
	assert.Equal(t, Error, errs.MaxSeverity())
}

func TestMergeKeepsOrderAndDedupes(t *testing.T) {
	sp := spanAt(3, 7)
	first := (&Errors{}).With(New(NewUninitialized{Positioner: sp, Name: "x"}))
	second := (&Errors{}).
		With(New(NewUninitialized{Positioner: sp, Name: "x"})).
		With(New(NewUndefinedType{Positioner: sp, Name: "point"}))

	merged := first.Merge(second)
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, Uninitialized, merged.Errors()[0].Code())
	assert.Equal(t, Undefined, merged.Errors()[1].Code())
}

func TestFormatWithCode(t *testing.T) {
	e := New(NewCannotAssign{Positioner: spanAt(1, 2), Source: "string", Target: "integer"})
	assert.Equal(t, "(E003) Cannot assign `string` into `integer`", FormatWithCode(e))
}

func TestArgMismatchLabels(t *testing.T) {
	sp := spanAt(1, 2)
	plain := NewArgMismatch{Positioner: sp, Index: 0, Source: "string", Target: "integer"}
	assert.Equal(t, "First function argument `string` is not a subtype of `integer`", plain.Error())

	recv := NewArgMismatch{Positioner: sp, Index: 0, Method: true, Source: "string", Target: "Point"}
	assert.Equal(t, "The self argument `string` is not a subtype of `Point`", recv.Error())

	methodArg := NewArgMismatch{Positioner: sp, Index: 2, Method: true, Source: "nil", Target: "string"}
	assert.Equal(t, "Second method argument `nil` is not a subtype of `string`", methodArg.Error())
}

func TestRendererPositionsAndNotes(t *testing.T) {
	src := "local x = f()\nlocal y = 1\n"
	fset := token.NewFileSet()
	file := fset.AddFile("foo.lua", -1, len(src))
	file.SetLinesForContent([]byte(src))

	primary := ast.Span{PosStart: file.Pos(10), PosEnd: file.Pos(13)}
	note := ast.Span{PosStart: file.Pos(14), PosEnd: file.Pos(25)}

	e := New(NewCannotAssign{
		Positioner: primary,
		Source:     "string",
		Target:     "integer",
		Notes:      []Cause{NoteAt("The other type originated here", note)},
	})

	var buf bytes.Buffer
	NewRenderer(fset, &buf).Render(e)

	want := "foo.lua:1:11: Error: (E003) Cannot assign `string` into `integer`\n" +
		"  foo.lua:2:1: Note: The other type originated here\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderAllReturnsWorstSeverity(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("bar.lua", -1, 40)
	file.SetLinesForContent([]byte("return nil\n"))
	sp := ast.Span{PosStart: file.Pos(0), PosEnd: file.Pos(6)}

	errs := (&Errors{}).
		With(New(NewUselessCondition{Positioner: sp, AlwaysTrue: true})).
		With(New(NewModuleReturnsFalse{Positioner: sp}))

	var buf bytes.Buffer
	worst := NewRenderer(fset, &buf).RenderAll(errs)
	assert.Equal(t, Error, worst)
	assert.Contains(t, buf.String(), "The condition is always truthy")
	assert.Contains(t, buf.String(), "Returning `false` from the module is not allowed")
}
