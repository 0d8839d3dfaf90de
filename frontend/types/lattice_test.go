package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubAtoms(t *testing.T) {
	cases := []struct {
		l, r Ty
		ok   bool
	}{
		{Dynamic{}, String(), true},
		{String(), Dynamic{}, true},
		{None{}, Integer(), true},
		{Integer(), None{}, false},
		{Integer(), Any{}, true},
		{Any{}, Integer(), false},
		{Int(3), Integer(), true},
		{Integer(), Int(3), false},
		{Integer(), Number(), true},
		{Number(), Integer(), false},
		{Ints(3, 4), Ints(3, 4, 5), true},
		{Ints(3, 4, 5), Ints(3, 4), false},
		{Str("a"), String(), true},
		{String(), Str("a"), false},
		{Strs("a", "b"), Strs("a", "b", "c"), true},
		{True(), Bool{}, true},
		{Bool{}, True(), false},
		{True(), False(), false},
		{Nil{}, Nil{}, true},
		{Nil{}, Integer(), false},
		{Thread{}, Thread{}, true},
		{Thread{}, UserData{}, false},
		{Integer(), String(), false},
	}
	for _, c := range cases {
		name := c.l.String() + " <: " + c.r.String()
		t.Run(name, func(t *testing.T) {
			err := Sub(c.l, c.r, nil)
			if c.ok {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
			}
		})
	}
}

func TestSubUnions(t *testing.T) {
	intOrStr := Join(Integer(), String(), nil)
	numOrStr := Join(Number(), String(), nil)
	optInt := Join(Integer(), Nil{}, nil)

	require.Nil(t, Sub(Integer(), intOrStr, nil))
	require.Nil(t, Sub(Str("x"), intOrStr, nil))
	require.Nil(t, Sub(Nil{}, optInt, nil))
	require.Nil(t, Sub(intOrStr, numOrStr, nil))
	require.Nil(t, Sub(intOrStr, intOrStr, nil))

	assert.NotNil(t, Sub(intOrStr, Integer(), nil))
	assert.NotNil(t, Sub(numOrStr, intOrStr, nil))
	assert.NotNil(t, Sub(Bool{}, intOrStr, nil))
	assert.NotNil(t, Sub(optInt, Integer(), nil))
}

func TestSubWithVariables(t *testing.T) {
	t.Run("bounds accumulate through relations", func(t *testing.T) {
		ctx := NewCtx()
		v := ctx.GenTVar()
		require.Nil(t, Sub(Integer(), VarTy{Var: v}, ctx))
		require.Nil(t, Sub(VarTy{Var: v}, Number(), ctx))
		assert.NotNil(t, Sub(VarTy{Var: v}, String(), ctx))
	})

	t.Run("variable pairs relate", func(t *testing.T) {
		ctx := NewCtx()
		v1, v2 := ctx.GenTVar(), ctx.GenTVar()
		require.Nil(t, Sub(VarTy{Var: v1}, VarTy{Var: v2}, ctx))
		require.Nil(t, Sub(VarTy{Var: v2}, String(), ctx))
		assert.NotNil(t, Sub(VarTy{Var: v1}, Integer(), ctx))
	})

	t.Run("without a context only identity holds", func(t *testing.T) {
		assert.Nil(t, Sub(VarTy{Var: 1}, VarTy{Var: 1}, nil))
		assert.NotNil(t, Sub(VarTy{Var: 1}, VarTy{Var: 2}, nil))
		assert.NotNil(t, Sub(VarTy{Var: 1}, Integer(), nil))
	})
}

func TestSubTables(t *testing.T) {
	recA := Record(Field{Name: "a", Slot: VarSlot(Integer())})
	recAB := Record(
		Field{Name: "a", Slot: VarSlot(Integer())},
		Field{Name: "b", Slot: VarSlot(String())},
	)
	recAOptB := Record(
		Field{Name: "a", Slot: VarSlot(Integer())},
		Field{Name: "b", Slot: VarSlot(Join(String(), Nil{}, nil))},
	)

	t.Run("closed records need the exact field set", func(t *testing.T) {
		assert.Nil(t, Sub(recA, recA, nil))
		assert.NotNil(t, Sub(recAB, recA, nil))
	})

	t.Run("missing fields must accept nil", func(t *testing.T) {
		assert.NotNil(t, Sub(recA, recAB, nil))
		assert.Nil(t, Sub(recA, recAOptB, nil))
	})

	t.Run("open target admits extra fields", func(t *testing.T) {
		ctx := NewCtx()
		open := OpenRecord(ctx.GenRowVar(), Field{Name: "a", Slot: VarSlot(Integer())})
		assert.Nil(t, Sub(recAB, open, ctx))
	})

	t.Run("closed target coerces an open source row shut", func(t *testing.T) {
		ctx := NewCtx()
		row := ctx.GenRowVar()
		open := OpenRecord(row, Field{Name: "a", Slot: VarSlot(Integer())})
		assert.Nil(t, Sub(open, recA, ctx))
		assert.True(t, ctx.RowIsClosed(row))
		assert.NotNil(t, ctx.CommitRowField(row, Field{Name: "b", Slot: VarSlot(String())}))
	})

	t.Run("coercion rejects committed fields the target lacks", func(t *testing.T) {
		ctx := NewCtx()
		row := ctx.GenRowVar()
		open := OpenRecord(row, Field{Name: "a", Slot: VarSlot(Integer())})
		require.Nil(t, ctx.CommitRowField(row, Field{Name: "b", Slot: VarSlot(String())}))
		assert.NotNil(t, Sub(open, recA, ctx))
	})

	t.Run("opaque mode keeps open sources out of closed targets", func(t *testing.T) {
		ctx := NewCtx()
		open := OpenRecord(ctx.GenRowVar(), Field{Name: "a", Slot: VarSlot(Integer())})
		assert.NotNil(t, Sub(open, recA, nil))
	})

	t.Run("empty table", func(t *testing.T) {
		allOptional := Record(Field{Name: "b", Slot: VarSlot(Join(String(), Nil{}, nil))})
		assert.Nil(t, Sub(EmptyTable(), Array(VarSlot(Integer())), nil))
		assert.Nil(t, Sub(EmptyTable(), allOptional, nil))
		assert.NotNil(t, Sub(EmptyTable(), recAOptB, nil))
		assert.NotNil(t, Sub(EmptyTable(), recA, nil))
	})

	t.Run("tuples flow into arrays", func(t *testing.T) {
		tup := Tuple(JustSlot(Int(1)), JustSlot(Int(2)))
		assert.Nil(t, Sub(tup, Array(VarSlot(Integer())), nil))
		assert.NotNil(t, Sub(tup, Array(VarSlot(String())), nil))
	})

	t.Run("arrays are invariant unless the target is const", func(t *testing.T) {
		ints := Array(VarSlot(Integer()))
		nums := Array(VarSlot(Number()))
		constNums := Array(ConstSlot(Number()))
		assert.Nil(t, Sub(ints, ints, nil))
		assert.NotNil(t, Sub(ints, nums, nil))
		assert.Nil(t, Sub(ints, constNums, nil))
	})

	t.Run("records and arrays flow into maps", func(t *testing.T) {
		assert.Nil(t, Sub(recA, MapOf(String(), VarSlot(Integer())), nil))
		assert.Nil(t, Sub(Array(VarSlot(Integer())), MapOf(Integer(), VarSlot(Integer())), nil))
		assert.NotNil(t, Sub(recA, MapOf(Integer(), VarSlot(Integer())), nil))
	})

	t.Run("every table is a table", func(t *testing.T) {
		assert.Nil(t, Sub(recAB, Table(), nil))
		assert.NotNil(t, Sub(Table(), recA, nil))
	})
}

func TestSubFunctions(t *testing.T) {
	takesInt := Func(FuncSig{Params: Seq(Integer()), Returns: Seq()})
	takesNum := Func(FuncSig{Params: Seq(Number()), Returns: Seq()})
	retsInt := Func(FuncSig{Params: Seq(), Returns: Seq(Integer())})
	retsNum := Func(FuncSig{Params: Seq(), Returns: Seq(Number())})

	t.Run("parameters are contravariant", func(t *testing.T) {
		assert.Nil(t, Sub(takesNum, takesInt, nil))
		assert.NotNil(t, Sub(takesInt, takesNum, nil))
	})

	t.Run("returns are covariant", func(t *testing.T) {
		assert.Nil(t, Sub(retsInt, retsNum, nil))
		assert.NotNil(t, Sub(retsNum, retsInt, nil))
	})

	t.Run("the bare function type is the top", func(t *testing.T) {
		assert.Nil(t, Sub(takesInt, Function(), nil))
		assert.NotNil(t, Sub(Function(), takesInt, nil))
	})
}

func TestSubBuiltinTags(t *testing.T) {
	t.Run("most tags are transparent", func(t *testing.T) {
		tagged := Tagged(TagStringMeta, Table())
		assert.Nil(t, Sub(tagged, Table(), nil))
		assert.Nil(t, Sub(EmptyTable(), tagged, nil))
		assert.Nil(t, Sub(tagged, tagged, nil))
	})

	t.Run("no_subtype is nominal", func(t *testing.T) {
		nominal := Tagged(TagNoSubtype, Integer())
		assert.Nil(t, Sub(nominal, nominal, nil))
		assert.NotNil(t, Sub(nominal, Integer(), nil))
		assert.NotNil(t, Sub(Integer(), nominal, nil))
		assert.NotNil(t, Sub(nominal, Number(), nil))
	})
}

func TestEq(t *testing.T) {
	t.Run("atoms", func(t *testing.T) {
		assert.Nil(t, Eq(Integer(), Integer(), nil))
		assert.Nil(t, Eq(Str("a"), Str("a"), nil))
		assert.NotNil(t, Eq(Integer(), Number(), nil))
		assert.NotNil(t, Eq(Str("a"), Str("b"), nil))
		assert.Nil(t, Eq(Dynamic{}, String(), nil))
		assert.Nil(t, Eq(String(), Dynamic{}, nil))
	})

	t.Run("unions compare category-wise", func(t *testing.T) {
		assert.Nil(t, Eq(Join(Integer(), String(), nil), Join(String(), Integer(), nil), nil))
		assert.NotNil(t, Eq(Join(Integer(), String(), nil), Join(Number(), String(), nil), nil))
		assert.NotNil(t, Eq(Join(Integer(), String(), nil), Integer(), nil))
	})

	t.Run("variables pin to equality bounds", func(t *testing.T) {
		ctx := NewCtx()
		v := ctx.GenTVar()
		require.Nil(t, Eq(VarTy{Var: v}, Integer(), ctx))
		require.Nil(t, Sub(VarTy{Var: v}, Number(), ctx))
		assert.NotNil(t, Eq(VarTy{Var: v}, String(), ctx))
	})

	t.Run("structural tables", func(t *testing.T) {
		rec := func() Ty {
			return Record(Field{Name: "a", Slot: VarSlot(Integer())})
		}
		assert.Nil(t, Eq(rec(), rec(), nil))
		assert.NotNil(t, Eq(rec(), Record(Field{Name: "a", Slot: VarSlot(Number())}), nil))
		assert.NotNil(t, Eq(rec(), EmptyTable(), nil))
	})
}

func TestJoin(t *testing.T) {
	cases := []struct {
		name string
		got  Ty
		want string
	}{
		{"literals widen to a set", Join(Int(3), Int(4), nil), "(3|4)"},
		{"integer absorbs literals", Join(Int(3), Integer(), nil), "integer"},
		{"number absorbs integer", Join(Number(), Integer(), nil), "number"},
		{"optional shorthand", Join(Integer(), Nil{}, nil), "integer?"},
		{"bool halves fuse", Join(True(), False(), nil), "boolean"},
		{"disjoint atoms", Join(Integer(), String(), nil), "(integer|string)"},
		{"nil joins the tail", Join(Join(Integer(), String(), nil), Nil{}, nil), "(integer|string|nil)"},
		{"dynamic wins", Join(Dynamic{}, Integer(), nil), "WHATEVER"},
		{"any wins", Join(Any{}, Integer(), nil), "any"},
		{"bottom vanishes", Join(None{}, Integer(), nil), "integer"},
		{"idempotent", Join(Integer(), Integer(), nil), "integer"},
		{"string literals", Join(Str("a"), Str("b"), nil), `("a"|"b")`},
		{
			"different signatures widen to function",
			Join(
				Func(FuncSig{Params: Seq(Integer()), Returns: Seq()}),
				Func(FuncSig{Params: Seq(String()), Returns: Seq()}),
				nil,
			),
			"function",
		},
		{
			"records merge field-wise",
			Join(
				Record(Field{Name: "a", Slot: VarSlot(Integer())}),
				Record(Field{Name: "b", Slot: VarSlot(String())}),
				nil,
			),
			"{a = integer?, b = string?}",
		},
		{
			"mismatched shapes generalize to map",
			Join(
				Record(Field{Name: "a", Slot: VarSlot(Integer())}),
				Tuple(VarSlot(String())),
				nil,
			),
			"map<(integer|string), (integer|string)>",
		},
		{
			"tuples pad with nil",
			Join(
				Tuple(VarSlot(Integer()), VarSlot(Integer())),
				Tuple(VarSlot(Integer())),
				nil,
			),
			"{integer, integer?}",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.got.String())
		})
	}

	t.Run("distinct variables collapse into a fresh one", func(t *testing.T) {
		ctx := NewCtx()
		v1, v2 := ctx.GenTVar(), ctx.GenTVar()
		joined := Join(VarTy{Var: v1}, VarTy{Var: v2}, ctx)
		assert.Equal(t, "<t3>", joined.String())
	})
}

func TestIdenticalIsOrderIndependent(t *testing.T) {
	assert.True(t, Identical(Join(Integer(), String(), nil), Join(String(), Integer(), nil)))
	assert.True(t, Identical(
		Record(Field{Name: "b", Slot: VarSlot(String())}, Field{Name: "a", Slot: VarSlot(Integer())}),
		Record(Field{Name: "a", Slot: VarSlot(Integer())}, Field{Name: "b", Slot: VarSlot(String())}),
	))
	assert.False(t, Identical(Integer(), Number()))
}
