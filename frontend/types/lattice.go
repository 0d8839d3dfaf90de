package types

import "fmt"

// TypeError explains a failed relation. Cause chains point at the
// component that actually failed inside a structural check.
type TypeError struct {
	Msg         string
	Left, Right Ty
	Cause       *TypeError
}

func (e *TypeError) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *TypeError) because(cause *TypeError) *TypeError {
	e.Cause = cause
	return e
}

func notSub(l, r Ty) *TypeError {
	return &TypeError{
		Msg:  fmt.Sprintf("`%s` is not a subtype of `%s`", l, r),
		Left: l, Right: r,
	}
}

func notEq(l, r Ty) *TypeError {
	return &TypeError{
		Msg:  fmt.Sprintf("`%s` is not equal to `%s`", l, r),
		Left: l, Right: r,
	}
}

// Sub checks l <: r, recording variable bounds in ctx along the way.
// A nil ctx makes variables opaque: only identical ones relate.
func Sub(l, r Ty, ctx *Ctx) *TypeError {
	lb, lok := l.(*Builtin)
	rb, rok := r.(*Builtin)
	if lok || rok {
		if lok && rok && lb.Tag == rb.Tag {
			return Sub(lb.Inner, rb.Inner, ctx)
		}
		// a nominal tag admits nothing but itself
		if (lok && lb.Tag == TagNoSubtype) || (rok && rb.Tag == TagNoSubtype) {
			return notSub(l, r)
		}
		if lok {
			l = lb.Inner
		}
		if rok {
			r = rb.Inner
		}
		return Sub(l, r, ctx)
	}

	if _, ok := l.(Dynamic); ok {
		return nil
	}
	if _, ok := r.(Dynamic); ok {
		return nil
	}
	if _, ok := l.(None); ok {
		return nil
	}
	if _, ok := r.(None); ok {
		return notSub(l, r)
	}
	if _, ok := r.(Any); ok {
		return nil
	}
	if _, ok := l.(Any); ok {
		return notSub(l, r)
	}

	lu, lIsU := l.(*Union)
	ru, rIsU := r.(*Union)
	switch {
	case lIsU && rIsU:
		return subUnions(lu, ru, ctx)
	case lIsU:
		// distributing also covers a variable on the right: each member
		// becomes a lower bound of it
		for _, m := range lu.members() {
			if err := Sub(m, r, ctx); err != nil {
				return notSub(l, r).because(err)
			}
		}
		return nil
	case rIsU:
		return subInUnion(l, ru, ctx)
	}

	lv, lIsV := l.(VarTy)
	rv, rIsV := r.(VarTy)
	switch {
	case lIsV && rIsV:
		if ctx == nil {
			if lv.Var == rv.Var {
				return nil
			}
			return notSub(l, r)
		}
		return ctx.AssertTVarSubTVar(lv.Var, rv.Var)
	case lIsV:
		if ctx == nil {
			return notSub(l, r)
		}
		return ctx.AssertTVarSub(lv.Var, r)
	case rIsV:
		if ctx == nil {
			return notSub(l, r)
		}
		return ctx.AssertTVarSup(rv.Var, l)
	}

	switch lt := l.(type) {
	case Nil:
		if _, ok := r.(Nil); ok {
			return nil
		}
	case Bool:
		if _, ok := r.(Bool); ok {
			return nil
		}
	case BoolLit:
		switch rt := r.(type) {
		case Bool:
			return nil
		case BoolLit:
			if lt.Value == rt.Value {
				return nil
			}
		}
	case Thread:
		if _, ok := r.(Thread); ok {
			return nil
		}
	case UserData:
		if _, ok := r.(UserData); ok {
			return nil
		}
	case *Numbers:
		if rt, ok := r.(*Numbers); ok && subNumbers(lt, rt) {
			return nil
		}
	case *Strings:
		if rt, ok := r.(*Strings); ok && subStrings(lt, rt) {
			return nil
		}
	case *Tables:
		if rt, ok := r.(*Tables); ok {
			return subTables(lt, rt, ctx)
		}
	case *Functions:
		if rt, ok := r.(*Functions); ok {
			return subFunctions(lt, rt, ctx)
		}
	}
	return notSub(l, r)
}

// subInUnion checks membership of a non-union atom in a union.
func subInUnion(l Ty, ru *Union, ctx *Ctx) *TypeError {
	if lv, ok := l.(VarTy); ok {
		if ru.HasVar {
			// bounds cannot express one variable against a union holding
			// another
			return notSub(l, ru)
		}
		if ctx == nil {
			return notSub(l, ru)
		}
		return ctx.AssertTVarSub(lv.Var, ru)
	}

	ok := false
	switch lt := l.(type) {
	case Nil:
		ok = ru.HasNil
	case Bool:
		ok = ru.HasTrue && ru.HasFalse
	case BoolLit:
		ok = (lt.Value && ru.HasTrue) || (!lt.Value && ru.HasFalse)
	case Thread:
		ok = ru.HasThread
	case UserData:
		ok = ru.HasUserData
	case *Numbers:
		ok = ru.Numbers != nil && subNumbers(lt, ru.Numbers)
	case *Strings:
		ok = ru.Strings != nil && subStrings(lt, ru.Strings)
	case *Tables:
		ok = ru.Tables != nil && subTables(lt, ru.Tables, ctx) == nil
	case *Functions:
		ok = ru.Functions != nil && subFunctions(lt, ru.Functions, ctx) == nil
	}
	if !ok {
		return notSub(l, ru)
	}
	return nil
}

func subUnions(lu, ru *Union, ctx *Ctx) *TypeError {
	for _, m := range lu.members() {
		if mv, ok := m.(VarTy); ok {
			if ru.HasVar && ru.Var == mv.Var {
				continue
			}
			if ctx == nil {
				return notSub(lu, ru)
			}
			stripped := *ru
			stripped.HasVar, stripped.Var = false, 0
			if err := ctx.AssertTVarSub(mv.Var, stripped.simplify()); err != nil {
				return notSub(lu, ru).because(err)
			}
			continue
		}
		if err := subInUnion(m, ru, ctx); err != nil {
			return notSub(lu, ru).because(err)
		}
	}
	return nil
}

// Eq checks l = r, recording equality bounds for variables.
func Eq(l, r Ty, ctx *Ctx) *TypeError {
	lb, lok := l.(*Builtin)
	rb, rok := r.(*Builtin)
	if lok || rok {
		if lok && rok && lb.Tag == rb.Tag {
			return Eq(lb.Inner, rb.Inner, ctx)
		}
		if (lok && lb.Tag == TagNoSubtype) || (rok && rb.Tag == TagNoSubtype) {
			return notEq(l, r)
		}
		if lok {
			l = lb.Inner
		}
		if rok {
			r = rb.Inner
		}
		return Eq(l, r, ctx)
	}

	if _, ok := l.(Dynamic); ok {
		return nil
	}
	if _, ok := r.(Dynamic); ok {
		return nil
	}
	if _, ok := l.(None); ok {
		return nil
	}
	if _, ok := r.(None); ok {
		return notEq(l, r)
	}
	_, lAny := l.(Any)
	_, rAny := r.(Any)
	if lAny && rAny {
		return nil
	}
	if lAny || rAny {
		return notEq(l, r)
	}

	lv, lIsV := l.(VarTy)
	rv, rIsV := r.(VarTy)
	switch {
	case lIsV && rIsV:
		if ctx == nil {
			if lv.Var == rv.Var {
				return nil
			}
			return notEq(l, r)
		}
		return ctx.AssertTVarEqTVar(lv.Var, rv.Var)
	case lIsV:
		if ctx == nil {
			return notEq(l, r)
		}
		return ctx.AssertTVarEq(lv.Var, r)
	case rIsV:
		if ctx == nil {
			return notEq(l, r)
		}
		return ctx.AssertTVarEq(rv.Var, l)
	}

	lu, lIsU := l.(*Union)
	ru, rIsU := r.(*Union)
	switch {
	case lIsU && rIsU:
		return eqUnions(lu, ru, ctx)
	case lIsU:
		if s := lu.simplify(); s != Ty(lu) {
			return Eq(s, r, ctx)
		}
		return notEq(l, r)
	case rIsU:
		if s := ru.simplify(); s != Ty(ru) {
			return Eq(l, s, ctx)
		}
		return notEq(l, r)
	}

	if Identical(l, r) {
		return nil
	}
	switch lt := l.(type) {
	case *Tables:
		if rt, ok := r.(*Tables); ok {
			return eqTables(lt, rt, ctx)
		}
	case *Functions:
		if rt, ok := r.(*Functions); ok {
			return eqFunctions(lt, rt, ctx)
		}
	}
	return notEq(l, r)
}

func eqUnions(lu, ru *Union, ctx *Ctx) *TypeError {
	fail := func() *TypeError { return notEq(lu, ru) }
	if lu.HasNil != ru.HasNil || lu.HasTrue != ru.HasTrue || lu.HasFalse != ru.HasFalse ||
		lu.HasThread != ru.HasThread || lu.HasUserData != ru.HasUserData {
		return fail()
	}
	if (lu.Numbers == nil) != (ru.Numbers == nil) {
		return fail()
	}
	if lu.Numbers != nil && !Identical(lu.Numbers, ru.Numbers) {
		return fail()
	}
	if (lu.Strings == nil) != (ru.Strings == nil) {
		return fail()
	}
	if lu.Strings != nil && !Identical(lu.Strings, ru.Strings) {
		return fail()
	}
	if (lu.Tables == nil) != (ru.Tables == nil) {
		return fail()
	}
	if lu.Tables != nil {
		if err := eqTables(lu.Tables, ru.Tables, ctx); err != nil {
			return fail().because(err)
		}
	}
	if (lu.Functions == nil) != (ru.Functions == nil) {
		return fail()
	}
	if lu.Functions != nil {
		if err := eqFunctions(lu.Functions, ru.Functions, ctx); err != nil {
			return fail().because(err)
		}
	}
	if lu.HasVar != ru.HasVar {
		return fail()
	}
	if lu.HasVar && lu.Var != ru.Var {
		if ctx == nil {
			return fail()
		}
		return ctx.AssertTVarEqTVar(lu.Var, ru.Var)
	}
	return nil
}

// Join is the union of two types in canonical form. It cannot fail:
// table and function members fuse, and unrelated variables collapse
// into a fresh bounded one.
func Join(a, b Ty, ctx *Ctx) Ty {
	if _, ok := a.(Dynamic); ok {
		return Dynamic{}
	}
	if _, ok := b.(Dynamic); ok {
		return Dynamic{}
	}
	if _, ok := a.(None); ok {
		return b
	}
	if _, ok := b.(None); ok {
		return a
	}
	if _, ok := a.(Any); ok {
		return Any{}
	}
	if _, ok := b.(Any); ok {
		return Any{}
	}
	if Identical(a, b) {
		return a
	}
	// tags do not survive a union
	if t, ok := a.(*Builtin); ok {
		return Join(t.Inner, b, ctx)
	}
	if t, ok := b.(*Builtin); ok {
		return Join(a, t.Inner, ctx)
	}
	return asUnion(a).fuse(asUnion(b), ctx).simplify()
}
