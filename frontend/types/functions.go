package types

// FuncSig is one function signature: what it takes and what it returns.
type FuncSig struct {
	Params  TySeq
	Returns TySeq
}

func (s FuncSig) String() string {
	return "function" + s.Params.String() + " --> " + s.Returns.String()
}

func (s FuncSig) Hash() uint64 {
	h := uint64(0xc0ffee0000000011)
	return (h*31+s.Params.Hash())*31 + s.Returns.Hash()
}

// Functions covers the function category: either every function, or one
// known signature. Unioning two different signatures widens to All since
// a union type carries at most one function member.
type Functions struct {
	All bool
	Sig *FuncSig
}

func Function() Ty { return &Functions{All: true} }
func Func(sig FuncSig) Ty {
	return &Functions{Sig: &sig}
}

func (t *Functions) String() string {
	if t.All {
		return "function"
	}
	return t.Sig.String()
}

func (t *Functions) Hash() uint64 {
	if t.All {
		return 0xc0ffee0000000013
	}
	return t.Sig.Hash()
}

func (t *Functions) Flags() Flags { return FlagFunction }
func (t *Functions) base() Ty     { return t }

// subFunctions checks a <: b: parameters are contravariant and returns
// covariant.
func subFunctions(a, b *Functions, ctx *Ctx) *TypeError {
	if b.All {
		return nil
	}
	if a.All {
		return notSub(a, b)
	}
	if err := subSeq(b.Sig.Params, a.Sig.Params, ctx); err != nil {
		return notSub(a, b).because(err)
	}
	if err := subSeq(a.Sig.Returns, b.Sig.Returns, ctx); err != nil {
		return notSub(a, b).because(err)
	}
	return nil
}

func eqFunctions(a, b *Functions, ctx *Ctx) *TypeError {
	if a.All != b.All {
		return notEq(a, b)
	}
	if a.All {
		return nil
	}
	if err := eqSeq(a.Sig.Params, b.Sig.Params, ctx); err != nil {
		return notEq(a, b).because(err)
	}
	if err := eqSeq(a.Sig.Returns, b.Sig.Returns, ctx); err != nil {
		return notEq(a, b).because(err)
	}
	return nil
}

func unionFunctions(a, b *Functions) *Functions {
	if !a.All && !b.All && Identical(a, b) {
		return a
	}
	return &Functions{All: true}
}
