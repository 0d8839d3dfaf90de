package check

import (
	"github.com/benbjohnson/immutable"
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/types"
)

// refinement maps variable names to the narrower type they have on one
// side of a condition.
type refinement = immutable.Map[string, types.Ty]

func emptyRefinement() *refinement {
	return immutable.NewMap[string, types.Ty](nil)
}

// worlds is the outcome of analyzing a condition: how variables narrow
// when it passes and when it fails, and whether one side can never be
// taken at all.
type worlds struct {
	truthy, falsy *refinement
	alwaysTruthy  bool
	alwaysFalsy   bool
}

func neutralWorlds() worlds {
	m := emptyRefinement()
	return worlds{truthy: m, falsy: m}
}

func (w worlds) flipped() worlds {
	return worlds{
		truthy:       w.falsy,
		falsy:        w.truthy,
		alwaysTruthy: w.alwaysFalsy,
		alwaysFalsy:  w.alwaysTruthy,
	}
}

// refine analyzes a condition expression syntactically. It recognizes
// plain variables, `not`, `and`/`or` chains, `x == nil` tests and
// `type(x) == 'tag'` tests; everything else narrows nothing.
func (c *Checker) refine(e ast.Expr) worlds {
	w := neutralWorlds()
	switch e := e.(type) {
	case *ast.ParenExpr:
		return c.refine(e.Inner)
	case *ast.NilLit:
		w.alwaysFalsy = true
	case *ast.BoolLit:
		w.alwaysTruthy = e.Value
		w.alwaysFalsy = !e.Value
	case *ast.NumberLit, *ast.StringLit, *ast.FuncExpr, *ast.TableExpr:
		w.alwaysTruthy = true
	case *ast.NameExpr:
		b := c.lookup(e.Name)
		if b == nil {
			return w
		}
		flags := b.slot.Ty.Flags()
		if flags.IsDynamic() || flags == types.FlagNone {
			return w
		}
		w.truthy = w.truthy.Set(e.Name, types.TruthyPart(b.slot.Ty))
		w.falsy = w.falsy.Set(e.Name, types.FalsyPart(b.slot.Ty))
		w.alwaysTruthy = flags.IsTruthy()
		w.alwaysFalsy = flags.IsFalsy()
	case *ast.UnExpr:
		if e.Op == ast.OpNot {
			return c.refine(e.Operand).flipped()
		}
		// # and unary minus yield numbers, and every number is truthy
		w.alwaysTruthy = true
	case *ast.BinExpr:
		switch e.Op {
		case ast.OpAnd:
			lw, rw := c.refine(e.Lhs), c.refine(e.Rhs)
			w.truthy = overlay(lw.truthy, rw.truthy)
			w.falsy = joinCommon(lw.falsy, rw.falsy, c.sess.ctx)
			w.alwaysTruthy = lw.alwaysTruthy && rw.alwaysTruthy
			w.alwaysFalsy = lw.alwaysFalsy || rw.alwaysFalsy
		case ast.OpOr:
			lw, rw := c.refine(e.Lhs), c.refine(e.Rhs)
			w.truthy = joinCommon(lw.truthy, rw.truthy, c.sess.ctx)
			w.falsy = overlay(lw.falsy, rw.falsy)
			w.alwaysTruthy = lw.alwaysTruthy || rw.alwaysTruthy
			w.alwaysFalsy = lw.alwaysFalsy && rw.alwaysFalsy
		case ast.OpEq:
			return c.refineEquality(e, false)
		case ast.OpNe:
			return c.refineEquality(e, true)
		}
	}
	return w
}

// refineEquality narrows `type(x) == 'tag'` and `x == nil` tests.
func (c *Checker) refineEquality(e *ast.BinExpr, negated bool) worlds {
	w := neutralWorlds()
	name, mask, ok := c.typeTest(e.Lhs, e.Rhs)
	if !ok {
		name, mask, ok = c.typeTest(e.Rhs, e.Lhs)
	}
	if !ok {
		name, mask, ok = nilTest(e.Lhs, e.Rhs)
	}
	if !ok {
		name, mask, ok = nilTest(e.Rhs, e.Lhs)
	}
	if !ok {
		return w
	}
	b := c.lookup(name)
	if b == nil || b.slot.Ty.Flags().IsDynamic() {
		return w
	}
	ty := b.slot.Ty
	w.truthy = w.truthy.Set(name, types.Restrict(ty, mask, c.sess.ctx))
	w.falsy = w.falsy.Set(name, types.Restrict(ty, types.FlagAll&^mask, c.sess.ctx))
	if negated {
		return w.flipped()
	}
	return w
}

// typeTest matches `type(x)` compared against a tag literal. The call
// must reach the real global `type`, not a local shadowing it, and only
// the eight runtime tags narrow; `type` never returns "integer".
func (c *Checker) typeTest(callSide, litSide ast.Expr) (string, types.Flags, bool) {
	call, ok := callSide.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return "", 0, false
	}
	fn, ok := call.Func.(*ast.NameExpr)
	if !ok || fn.Name != "type" || c.lookupLocal("type") != nil {
		return "", 0, false
	}
	arg, ok := call.Args[0].(*ast.NameExpr)
	if !ok {
		return "", 0, false
	}
	lit, ok := litSide.(*ast.StringLit)
	if !ok {
		return "", 0, false
	}
	mask, ok := types.CategoryByName(lit.Value)
	if !ok {
		return "", 0, false
	}
	return arg.Name, mask, true
}

// nilTest matches `x == nil`.
func nilTest(nameSide, nilSide ast.Expr) (string, types.Flags, bool) {
	n, ok := nameSide.(*ast.NameExpr)
	if !ok {
		return "", 0, false
	}
	if _, ok := nilSide.(*ast.NilLit); !ok {
		return "", 0, false
	}
	return n.Name, types.FlagNil, true
}

// overlay applies the refinements of b on top of a.
func overlay(a, b *refinement) *refinement {
	itr := b.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		a = a.Set(k, v)
	}
	return a
}

// joinCommon keeps only the names both sides narrow, joining their
// types: when either branch may have produced the state, only the
// union is known.
func joinCommon(a, b *refinement, ctx *types.Ctx) *refinement {
	out := emptyRefinement()
	itr := a.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		if bv, ok := b.Get(k); ok {
			out = out.Set(k, types.Join(v, bv, ctx))
		}
	}
	return out
}

// applyRefinement narrows the live bindings per the map. The writes go
// through the active flow frame, so branch constructs restore and join
// them like ordinary assignments.
func (c *Checker) applyRefinement(m *refinement) {
	itr := m.Iterator()
	for !itr.Done() {
		name, ty, _ := itr.Next()
		if b := c.lookup(name); b != nil {
			c.setSlot(b, b.slot.WithTy(ty))
		}
	}
}
