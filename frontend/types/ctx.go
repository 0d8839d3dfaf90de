package types

import (
	"fmt"
	"log/slog"

	"github.com/cottand/luatic/internal/log"
)

// TVar identifies a type variable. Variables are born unconstrained and
// accumulate bounds through a Ctx.
type TVar uint32

// RowVar identifies the unknown tail of an extensible record. The zero
// value means the record is closed.
type RowVar uint32

// bound is a union-find node. All variables in one partition share the
// single bound stored at the root.
type bound struct {
	parent TVar
	rank   uint8
	ty     Ty
}

// constraints keeps one bound per partition of related variables. op is
// only used in diagnostics.
type constraints struct {
	op     string
	bounds map[TVar]*bound
}

func newConstraints(op string) *constraints {
	return &constraints{op: op, bounds: map[TVar]*bound{}}
}

func (c *constraints) ensure(v TVar) *bound {
	b, ok := c.bounds[v]
	if !ok {
		b = &bound{parent: v}
		c.bounds[v] = b
	}
	return b
}

func (c *constraints) find(v TVar) TVar {
	b, ok := c.bounds[v]
	if !ok || b.parent == v {
		return v
	}
	root := c.find(b.parent)
	b.parent = root
	return root
}

func (c *constraints) union(lhs, rhs TVar) TVar {
	lhs, rhs = c.find(lhs), c.find(rhs)
	if lhs == rhs {
		return lhs
	}
	lb, rb := c.ensure(lhs), c.ensure(rhs)
	switch {
	case lb.rank < rb.rank:
		lb.parent = rhs
		return rhs
	case lb.rank > rb.rank:
		rb.parent = lhs
		return lhs
	default:
		rb.parent = lhs
		lb.rank++
		return lhs
	}
}

func (c *constraints) is(lhs, rhs TVar) bool {
	return lhs == rhs || c.find(lhs) == c.find(rhs)
}

// boundTy returns the bound shared by v's partition, or nil.
func (c *constraints) boundTy(v TVar) Ty {
	if b, ok := c.bounds[c.find(v)]; ok {
		return b.ty
	}
	return nil
}

// A trivial bound never constrains anything and can be overwritten.
func isTrivialBound(t Ty) bool {
	if t == nil {
		return true
	}
	switch t.(type) {
	case None, Dynamic:
		return true
	}
	return false
}

// addBound installs t as the bound of v's partition. When a nontrivial
// bound differing from t is already installed it is returned unchanged
// so the caller can decide whether the two are compatible.
func (c *constraints) addBound(v TVar, t Ty) Ty {
	b := c.ensure(c.find(v))
	if isTrivialBound(b.ty) {
		b.ty = t
		return nil
	}
	if Identical(b.ty, t) {
		return nil
	}
	return b.ty
}

// addRelation merges the partitions of lhs and rhs. The lhs bound wins
// when both partitions carry one.
func (c *constraints) addRelation(lhs, rhs TVar) {
	if lhs == rhs {
		return
	}
	lroot, rroot := c.find(lhs), c.find(rhs)
	if lroot == rroot {
		return
	}

	takeBound := func(v TVar) Ty {
		if b, ok := c.bounds[v]; ok {
			t := b.ty
			b.ty = nil
			return t
		}
		return nil
	}
	merged := takeBound(lroot)
	if rbound := takeBound(rroot); isTrivialBound(merged) {
		merged = rbound
	}

	root := c.union(lroot, rroot)
	if !isTrivialBound(merged) {
		c.ensure(root).ty = merged
	}
}

// rowInfo tracks what is known about an extensible record tail.
type rowInfo struct {
	fields []Field
	closed bool
}

// Ctx owns every type and row variable of one checking session and the
// three constraint sets relating them. Bounds are global: constraints
// discovered in any scope stay for the whole session.
type Ctx struct {
	nextTVar TVar
	tvarSub  *constraints // upper bounds, v <: t
	tvarSup  *constraints // lower bounds, v :> t
	tvarEq   *constraints // tight bounds, v = t
	nextRow  RowVar
	rows     map[RowVar]*rowInfo
	logger   *slog.Logger
}

func NewCtx() *Ctx {
	return &Ctx{
		// variable 0 is reserved for the top-level return
		nextTVar: 1,
		tvarSub:  newConstraints("<:"),
		tvarSup:  newConstraints(":>"),
		tvarEq:   newConstraints("="),
		nextRow:  1,
		rows:     map[RowVar]*rowInfo{},
		logger:   log.DefaultLogger.With("section", "types"),
	}
}

func (c *Ctx) GenTVar() TVar {
	v := c.nextTVar
	c.nextTVar++
	return v
}

func (c *Ctx) LastTVar() (TVar, bool) {
	if c.nextTVar == 0 {
		return 0, false
	}
	return c.nextTVar - 1, true
}

func disjointBounds(v TVar, op string, original, later Ty, cause *TypeError) *TypeError {
	return &TypeError{
		Msg: fmt.Sprintf("`%s` cannot have multiple possibly disjoint bounds (original %s `%s`, later %s `%s`)",
			VarTy{Var: v}, op, original, op, later),
		Cause: cause,
	}
}

// AssertTVarSub records lhs <: rhs.
func (c *Ctx) AssertTVarSub(lhs TVar, rhs Ty) *TypeError {
	c.logger.Debug("adding constraint", "lhs", VarTy{Var: lhs}.String(), "op", "<:", "rhs", rhs.String())
	if eb := c.tvarEq.boundTy(lhs); eb != nil {
		return Sub(eb, rhs, c)
	}
	if existing := c.tvarSub.addBound(lhs, rhs); existing != nil {
		// the recorded bound stays; it must already imply the new one
		if err := Sub(existing, rhs, c); err != nil {
			return disjointBounds(lhs, "<:", existing, rhs, err)
		}
	}
	if lb := c.tvarSup.boundTy(lhs); lb != nil {
		return Sub(lb, rhs, c)
	}
	return nil
}

// AssertTVarSup records lhs :> rhs.
func (c *Ctx) AssertTVarSup(lhs TVar, rhs Ty) *TypeError {
	c.logger.Debug("adding constraint", "lhs", VarTy{Var: lhs}.String(), "op", ":>", "rhs", rhs.String())
	if eb := c.tvarEq.boundTy(lhs); eb != nil {
		return Sub(rhs, eb, c)
	}
	if existing := c.tvarSup.addBound(lhs, rhs); existing != nil {
		if err := Sub(rhs, existing, c); err != nil {
			return disjointBounds(lhs, ":>", existing, rhs, err)
		}
	}
	if ub := c.tvarSub.boundTy(lhs); ub != nil {
		return Sub(rhs, ub, c)
	}
	return nil
}

// AssertTVarEq records lhs = rhs.
func (c *Ctx) AssertTVarEq(lhs TVar, rhs Ty) *TypeError {
	c.logger.Debug("adding constraint", "lhs", VarTy{Var: lhs}.String(), "op", "=", "rhs", rhs.String())
	if existing := c.tvarEq.addBound(lhs, rhs); existing != nil {
		if err := Eq(existing, rhs, c); err != nil {
			return disjointBounds(lhs, "=", existing, rhs, err)
		}
		return nil
	}
	if ub := c.tvarSub.boundTy(lhs); ub != nil {
		if err := Sub(rhs, ub, c); err != nil {
			return err
		}
	}
	if lb := c.tvarSup.boundTy(lhs); lb != nil {
		if err := Sub(lb, rhs, c); err != nil {
			return err
		}
	}
	return nil
}

// AssertTVarSubTVar records lhs <: rhs between two variables.
func (c *Ctx) AssertTVarSubTVar(lhs, rhs TVar) *TypeError {
	c.logger.Debug("adding constraint", "lhs", VarTy{Var: lhs}.String(), "op", "<:", "rhs", VarTy{Var: rhs}.String())
	if !c.tvarEq.is(lhs, rhs) {
		c.tvarSub.addRelation(lhs, rhs)
		c.tvarSup.addRelation(rhs, lhs)
	}
	return nil
}

// AssertTVarEqTVar records lhs = rhs between two variables. Sub and sup
// constraints are left alone since the eq set is consulted first.
func (c *Ctx) AssertTVarEqTVar(lhs, rhs TVar) *TypeError {
	c.logger.Debug("adding constraint", "lhs", VarTy{Var: lhs}.String(), "op", "=", "rhs", VarTy{Var: rhs}.String())
	c.tvarEq.addRelation(lhs, rhs)
	return nil
}

// TVarBounds summarises what is known about v as flag sets. An exact
// bound pins both ends; otherwise the lower bound defaults to nothing
// and the upper bound to everything.
func (c *Ctx) TVarBounds(v TVar) (lb, ub Flags) {
	if eb := c.tvarEq.boundTy(v); eb != nil {
		f := eb.Flags()
		return f, f
	}
	lb, ub = FlagNone, FlagAll|FlagDynamic
	if t := c.tvarSup.boundTy(v); t != nil {
		lb = t.Flags()
	}
	if t := c.tvarSub.boundTy(v); t != nil {
		ub = t.Flags()
	}
	return lb, ub
}

// TVarExact returns the type v is pinned to by an equality bound, if any.
func (c *Ctx) TVarExact(v TVar) Ty {
	return c.tvarEq.boundTy(v)
}

// ResolveTVar picks the best known type for v: an exact bound first,
// then the lower bound, then the upper bound.
func (c *Ctx) ResolveTVar(v TVar) Ty {
	if t := c.tvarEq.boundTy(v); t != nil {
		return t
	}
	if t := c.tvarSup.boundTy(v); t != nil {
		return t
	}
	if t := c.tvarSub.boundTy(v); t != nil {
		return t
	}
	return nil
}

func (c *Ctx) GenRowVar() RowVar {
	r := c.nextRow
	c.nextRow++
	c.rows[r] = &rowInfo{}
	return r
}

func (c *Ctx) RowFields(r RowVar) []Field {
	if info, ok := c.rows[r]; ok {
		return info.fields
	}
	return nil
}

func (c *Ctx) FindRowField(r RowVar, name string) (*Slot, bool) {
	for _, f := range c.RowFields(r) {
		if f.Name == name {
			return f.Slot, true
		}
	}
	return nil, false
}

// CommitRowField grows an open row by one field. Committing to a closed
// or unknown row fails.
func (c *Ctx) CommitRowField(r RowVar, f Field) *TypeError {
	info, ok := c.rows[r]
	if !ok || info.closed {
		return &TypeError{Msg: fmt.Sprintf("cannot add a field `%s` to a closed record", f.Name)}
	}
	if existing, ok := c.FindRowField(r, f.Name); ok {
		return subSlot(f.Slot, existing, c)
	}
	info.fields = append(info.fields, f)
	return nil
}

func (c *Ctx) CloseRow(r RowVar) {
	if info, ok := c.rows[r]; ok {
		info.closed = true
	}
}

func (c *Ctx) RowIsClosed(r RowVar) bool {
	if r == 0 {
		return true
	}
	if info, ok := c.rows[r]; ok {
		return info.closed
	}
	return true
}
