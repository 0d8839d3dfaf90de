package types

// Refinement operators back flow-sensitive narrowing. They are all
// no-ops on the dynamic type: narrowing evidence never sharpens
// WHATEVER.

// WithNil makes a type optional.
func WithNil(t Ty, ctx *Ctx) Ty { return Join(t, Nil{}, ctx) }

// WithoutNil removes nil from a type when the representation allows.
func WithoutNil(t Ty) Ty {
	switch t := t.(type) {
	case Nil:
		return None{}
	case *Union:
		if !t.HasNil {
			return t
		}
		clone := *t
		clone.HasNil = false
		return clone.simplify()
	case *Builtin:
		return &Builtin{Tag: t.Tag, Inner: WithoutNil(t.Inner)}
	default:
		return t
	}
}

// TruthyPart keeps the values that pass an `if`. Everything survives
// except nil and false.
func TruthyPart(t Ty) Ty {
	switch t := t.(type) {
	case Dynamic, Any:
		return t
	case Nil:
		return None{}
	case Bool:
		return BoolLit{Value: true}
	case BoolLit:
		if t.Value {
			return t
		}
		return None{}
	case *Union:
		clone := *t
		clone.HasNil = false
		clone.HasFalse = false
		return clone.simplify()
	case *Builtin:
		return &Builtin{Tag: t.Tag, Inner: TruthyPart(t.Inner)}
	default:
		return t
	}
}

// FalsyPart keeps the values that fail an `if`: nil and false only.
func FalsyPart(t Ty) Ty {
	switch t := t.(type) {
	case Dynamic:
		return t
	case Any:
		// any falsy value is nil or false
		return (&Union{HasNil: true, HasFalse: true}).simplify()
	case Nil:
		return t
	case Bool:
		return BoolLit{Value: false}
	case BoolLit:
		if t.Value {
			return None{}
		}
		return t
	case *Union:
		return (&Union{HasNil: t.HasNil, HasFalse: t.HasFalse}).simplify()
	case *Builtin:
		return FalsyPart(t.Inner)
	default:
		return None{}
	}
}

// Widen lifts literal types to their base atom: 42 becomes integer,
// "x" becomes string, true becomes boolean. Non-literal types pass
// through unchanged.
func Widen(t Ty) Ty {
	switch t := t.(type) {
	case BoolLit:
		return Bool{}
	case *Numbers:
		if t.Kind == NumSet {
			return Integer()
		}
		return t
	case *Strings:
		if t.Kind == StrSet {
			return String()
		}
		return t
	case *Union:
		clone := *t
		if clone.HasTrue || clone.HasFalse {
			clone.HasTrue, clone.HasFalse = true, true
		}
		if clone.Numbers != nil && clone.Numbers.Kind == NumSet {
			n := Integer().(*Numbers)
			clone.Numbers = n
		}
		if clone.Strings != nil && clone.Strings.Kind == StrSet {
			s := String().(*Strings)
			clone.Strings = s
		}
		return clone.simplify()
	case *Builtin:
		return &Builtin{Tag: t.Tag, Inner: Widen(t.Inner)}
	default:
		return t
	}
}

// CategoryByName maps a `type()` result string to its category mask.
// The eight runtime tags are the only valid names; in particular there
// is no "integer" tag.
func CategoryByName(name string) (Flags, bool) {
	switch name {
	case "nil":
		return FlagNil, true
	case "boolean":
		return FlagBoolean, true
	case "number":
		return FlagNumber, true
	case "string":
		return FlagString, true
	case "table":
		return FlagTable, true
	case "function":
		return FlagFunction, true
	case "thread":
		return FlagThread, true
	case "userdata":
		return FlagUserData, true
	default:
		return FlagNone, false
	}
}

// Restrict keeps only the parts of t inside the category mask. Unsolved
// variables pass through untouched: their category is not yet known.
func Restrict(t Ty, mask Flags, ctx *Ctx) Ty {
	switch t := t.(type) {
	case Dynamic:
		return t
	case Any:
		return representatives(mask, ctx)
	case *Builtin:
		return Restrict(t.Inner, mask, ctx)
	case VarTy:
		if ctx != nil {
			if exact := ctx.TVarExact(t.Var); exact != nil {
				return Restrict(exact, mask, ctx)
			}
		}
		return t
	case *Union:
		out := Ty(None{})
		for _, m := range t.members() {
			if _, isVar := m.(VarTy); isVar || m.Flags()&^mask == 0 {
				out = Join(out, m, ctx)
			}
		}
		return out
	default:
		if t.Flags()&^mask == 0 {
			return t
		}
		return None{}
	}
}

// representatives builds the widest type covered by a category mask.
func representatives(mask Flags, ctx *Ctx) Ty {
	out := Ty(None{})
	if mask&FlagNil != 0 {
		out = Join(out, Nil{}, ctx)
	}
	switch {
	case mask&FlagBoolean == FlagBoolean:
		out = Join(out, Bool{}, ctx)
	case mask&FlagTrue != 0:
		out = Join(out, BoolLit{Value: true}, ctx)
	case mask&FlagFalse != 0:
		out = Join(out, BoolLit{Value: false}, ctx)
	}
	switch {
	case mask&FlagNumber == FlagNumber:
		out = Join(out, Number(), ctx)
	case mask&FlagInteger != 0:
		out = Join(out, Integer(), ctx)
	}
	if mask&FlagString != 0 {
		out = Join(out, String(), ctx)
	}
	if mask&FlagTable != 0 {
		out = Join(out, Table(), ctx)
	}
	if mask&FlagFunction != 0 {
		out = Join(out, Function(), ctx)
	}
	if mask&FlagThread != 0 {
		out = Join(out, Thread{}, ctx)
	}
	if mask&FlagUserData != 0 {
		out = Join(out, UserData{}, ctx)
	}
	return out
}
