package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthyFalsyParts(t *testing.T) {
	optInt := Join(Integer(), Nil{}, nil)
	boolOrNil := Join(Bool{}, Nil{}, nil)

	cases := []struct {
		name string
		got  Ty
		want string
	}{
		{"truthy strips nil", TruthyPart(optInt), "integer"},
		{"falsy keeps nil", FalsyPart(optInt), "nil"},
		{"truthy bool is true", TruthyPart(Bool{}), "true"},
		{"falsy bool is false", FalsyPart(Bool{}), "false"},
		{"truthy drops false and nil", TruthyPart(boolOrNil), "true"},
		{"falsy keeps false and nil", FalsyPart(boolOrNil), "(false|nil)"},
		{"truthy of plain type is itself", TruthyPart(Integer()), "integer"},
		{"falsy of plain type is empty", FalsyPart(Integer()), "<bottom>"},
		{"truthy of any stays any", TruthyPart(Any{}), "any"},
		{"falsy of any is nil or false", FalsyPart(Any{}), "(false|nil)"},
		{"dynamic never narrows", TruthyPart(Dynamic{}), "WHATEVER"},
		{"dynamic never narrows either way", FalsyPart(Dynamic{}), "WHATEVER"},
		{"truthy of nil is empty", TruthyPart(Nil{}), "<bottom>"},
		{"falsy of true is empty", FalsyPart(True()), "<bottom>"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.got.String())
		})
	}
}

func TestWithAndWithoutNil(t *testing.T) {
	optInt := Join(Integer(), Nil{}, nil)

	assert.Equal(t, "integer?", WithNil(Integer(), nil).String())
	assert.Equal(t, "integer?", WithNil(optInt, nil).String())
	assert.Equal(t, "integer", WithoutNil(optInt).String())
	assert.Equal(t, "<bottom>", WithoutNil(Nil{}).String())
	assert.Equal(t, "any", WithoutNil(Any{}).String())
	assert.Equal(t, "WHATEVER", WithoutNil(Dynamic{}).String())
	assert.Equal(t, "integer", WithoutNil(Integer()).String())
}

func TestCategoryByName(t *testing.T) {
	for _, name := range []string{
		"nil", "boolean", "number", "string", "table", "function", "thread", "userdata",
	} {
		_, ok := CategoryByName(name)
		assert.True(t, ok, name)
	}

	// the runtime never reports an integer tag
	_, ok := CategoryByName("integer")
	assert.False(t, ok)
	_, ok = CategoryByName("vector")
	assert.False(t, ok)
}

func TestRestrict(t *testing.T) {
	intOrStr := Join(Integer(), String(), nil)
	tblOrStr := Join(Table(), String(), nil)

	cases := []struct {
		name string
		got  Ty
		want string
	}{
		{"picks the named category", Restrict(intOrStr, FlagString, nil), "string"},
		{"keeps integers under number", Restrict(intOrStr, FlagNumber, nil), "integer"},
		{"drops everything else", Restrict(Integer(), FlagString, nil), "<bottom>"},
		{"atom inside its own category", Restrict(Integer(), FlagNumber, nil), "integer"},
		{"tables", Restrict(tblOrStr, FlagTable, nil), "table"},
		{"any narrows to the category", Restrict(Any{}, FlagString, nil), "string"},
		{"any narrows to boolean", Restrict(Any{}, FlagBoolean, nil), "boolean"},
		{"dynamic stays dynamic", Restrict(Dynamic{}, FlagString, nil), "WHATEVER"},
		{"optional loses nil unless asked", Restrict(Join(Integer(), Nil{}, nil), FlagNumber, nil), "integer"},
		{"nil category", Restrict(Join(Integer(), Nil{}, nil), FlagNil, nil), "nil"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.got.String())
		})
	}

	t.Run("unsolved variables pass through", func(t *testing.T) {
		ctx := NewCtx()
		v := ctx.GenTVar()
		assert.Equal(t, "<t1>", Restrict(VarTy{Var: v}, FlagString, ctx).String())
	})

	t.Run("pinned variables restrict their bound", func(t *testing.T) {
		ctx := NewCtx()
		v := ctx.GenTVar()
		assert.Nil(t, ctx.AssertTVarEq(v, Join(Integer(), String(), nil)))
		assert.Equal(t, "string", Restrict(VarTy{Var: v}, FlagString, ctx).String())
	})
}
