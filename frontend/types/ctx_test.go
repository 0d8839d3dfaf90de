package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTVarBoundIdempotency(t *testing.T) {
	ctx := NewCtx()

	v1 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSub(v1, Integer()))
	require.Nil(t, ctx.AssertTVarSub(v1, Integer()))

	err := ctx.AssertTVarSub(v1, String())
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "multiple possibly disjoint bounds")
}

func TestTVarOppositeBounds(t *testing.T) {
	ctx := NewCtx()

	v1 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSub(v1, Integer()))
	assert.NotNil(t, ctx.AssertTVarSup(v1, String()))

	v2 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSup(v2, Integer()))
	assert.NotNil(t, ctx.AssertTVarSub(v2, String()))
}

func TestTVarOverlappingLiteralBounds(t *testing.T) {
	ctx := NewCtx()

	// {1,2,3} is not contained in {3,4,5}, so the two bounds clash even
	// though they overlap
	v1 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSub(v1, Ints(3, 4, 5)))
	assert.NotNil(t, ctx.AssertTVarSup(v1, Ints(1, 2, 3)))

	v2 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSup(v2, Ints(3, 4, 5)))
	assert.NotNil(t, ctx.AssertTVarSub(v2, Ints(1, 2, 3)))
}

func TestTVarRelationsShareBounds(t *testing.T) {
	ctx := NewCtx()

	v1 := ctx.GenTVar()
	v2 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSubTVar(v1, v2))
	require.Nil(t, ctx.AssertTVarSub(v2, String()))
	assert.NotNil(t, ctx.AssertTVarSub(v1, Integer()))

	v3 := ctx.GenTVar()
	v4 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSubTVar(v3, v4))
	require.Nil(t, ctx.AssertTVarSup(v3, String()))
	assert.NotNil(t, ctx.AssertTVarSup(v4, Integer()))
}

func TestTVarEqualityPropagation(t *testing.T) {
	ctx := NewCtx()

	v1 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarEq(v1, Integer()))
	require.Nil(t, ctx.AssertTVarSub(v1, Number()))
	assert.NotNil(t, ctx.AssertTVarSup(v1, String()))

	v2 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSub(v2, Number()))
	require.Nil(t, ctx.AssertTVarEq(v2, Integer()))
	assert.NotNil(t, ctx.AssertTVarSup(v2, String()))

	v3 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarSub(v3, Number()))
	assert.NotNil(t, ctx.AssertTVarEq(v3, String()))
}

func TestTVarNumbering(t *testing.T) {
	ctx := NewCtx()

	// variable 0 is reserved before any allocation happens
	last, ok := ctx.LastTVar()
	require.True(t, ok)
	assert.Equal(t, TVar(0), last)

	v := ctx.GenTVar()
	assert.Equal(t, TVar(1), v)
	last, ok = ctx.LastTVar()
	require.True(t, ok)
	assert.Equal(t, v, last)
}

func TestTVarBoundsSummary(t *testing.T) {
	ctx := NewCtx()

	v1 := ctx.GenTVar()
	lb, ub := ctx.TVarBounds(v1)
	assert.Equal(t, FlagNone, lb)
	assert.Equal(t, FlagAll|FlagDynamic, ub)

	require.Nil(t, ctx.AssertTVarSub(v1, Number()))
	lb, ub = ctx.TVarBounds(v1)
	assert.Equal(t, FlagNone, lb)
	assert.Equal(t, FlagNumber, ub)

	v2 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarEq(v2, String()))
	lb, ub = ctx.TVarBounds(v2)
	assert.Equal(t, FlagString, lb)
	assert.Equal(t, FlagString, ub)
	require.NotNil(t, ctx.TVarExact(v2))
	assert.Equal(t, "string", ctx.TVarExact(v2).String())
}

func TestTVarResolution(t *testing.T) {
	ctx := NewCtx()

	v1 := ctx.GenTVar()
	assert.Nil(t, ctx.ResolveTVar(v1))

	require.Nil(t, ctx.AssertTVarSub(v1, Number()))
	require.NotNil(t, ctx.ResolveTVar(v1))
	assert.Equal(t, "number", ctx.ResolveTVar(v1).String())

	// a lower bound is preferred over an upper bound
	require.Nil(t, ctx.AssertTVarSup(v1, Integer()))
	assert.Equal(t, "integer", ctx.ResolveTVar(v1).String())

	v2 := ctx.GenTVar()
	require.Nil(t, ctx.AssertTVarEq(v2, Str("lit")))
	assert.Equal(t, `"lit"`, ctx.ResolveTVar(v2).String())
}

func TestRowCommit(t *testing.T) {
	ctx := NewCtx()

	row := ctx.GenRowVar()
	require.False(t, ctx.RowIsClosed(row))

	require.Nil(t, ctx.CommitRowField(row, Field{Name: "x", Slot: VarSlot(Integer())}))
	slot, ok := ctx.FindRowField(row, "x")
	require.True(t, ok)
	assert.Equal(t, "integer", slot.Ty.String())

	// recommitting the same field checks compatibility instead of duplicating
	require.Nil(t, ctx.CommitRowField(row, Field{Name: "x", Slot: JustSlot(Int(42))}))
	assert.Len(t, ctx.RowFields(row), 1)

	ctx.CloseRow(row)
	require.True(t, ctx.RowIsClosed(row))
	err := ctx.CommitRowField(row, Field{Name: "y", Slot: VarSlot(String())})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "closed record")

	// the zero row is always closed
	assert.True(t, ctx.RowIsClosed(0))
}
