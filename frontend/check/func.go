package check

import (
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/types"
)

// funcInfo is everything known about a function literal before its body
// is checked: the signature assembled from annotations and context, the
// slots its parameters will live in, and the attributes on its `--v`.
type funcInfo struct {
	sig        *types.FuncSig
	paramSlots []*types.Slot
	declared   *types.TySeq // annotated returns; nil means inferred
	noCheck    bool
	tags       []types.Tag
}

// funcSignature assembles the signature of a function literal. Each
// parameter takes its type from, in order: its own `--:` annotation, the
// matching position of a `--v` annotation, the expected signature, and
// finally a fresh inference variable solved by the first call site.
func (c *Checker) funcSignature(e *ast.FuncExpr, expect *types.FuncSig, selfTy types.Ty) funcInfo {
	info := funcInfo{sig: &types.FuncSig{}}

	var annotParams []ast.FuncTyParam
	var annotVararg ast.TyExpr
	var annotReturns *ast.TySeqAnnot
	if e.Annot != nil {
		for _, attr := range e.Annot.Attrs {
			tag, ok := types.TagByName(attr.Name)
			if !ok {
				c.report(lerr.NewUnknownAttribute{Positioner: attr, Name: attr.Name})
				continue
			}
			if tag == types.TagNoCheck {
				info.noCheck = true
				continue
			}
			info.tags = append(info.tags, tag)
		}
		annotParams = e.Annot.Params
		annotVararg = e.Annot.Vararg
		annotReturns = e.Annot.Returns
	}

	selfOff := 0
	if selfTy != nil {
		info.paramSlots = append(info.paramSlots, types.VarSlot(selfTy))
		selfOff = 1
	}
	for i, p := range e.Params {
		var slot *types.Slot
		switch {
		case p.Annot != nil:
			slot = c.slotFromAnnot(p.Annot)
		case i < len(annotParams):
			slot = types.VarSlot(c.tyFromAnnot(annotParams[i].Ty))
		case expect != nil:
			slot = types.VarSlot(expect.Params.At(i + selfOff))
		default:
			if c.sess.feats.NoImplicitFuncSign {
				c.report(lerr.NewImplicitSignature{Positioner: p, Name: p.Name})
			}
			slot = types.VarSlot(types.VarTy{Var: c.sess.ctx.GenTVar()})
		}
		info.paramSlots = append(info.paramSlots, slot)
	}
	for _, s := range info.paramSlots {
		info.sig.Params.Head = append(info.sig.Params.Head, s.Ty)
	}
	if e.Vararg {
		switch {
		case e.VarargAnnot != nil:
			info.sig.Params.Tail = c.tyFromAnnot(e.VarargAnnot.Ty)
		case annotVararg != nil:
			info.sig.Params.Tail = c.tyFromAnnot(annotVararg)
		case expect != nil && expect.Params.Tail != nil:
			info.sig.Params.Tail = expect.Params.Tail
		default:
			info.sig.Params.Tail = types.Dynamic{}
		}
	}
	returns := e.Returns
	if returns == nil {
		returns = annotReturns
	}
	if returns != nil {
		seq := c.seqFromAnnot(returns)
		info.declared = &seq
		info.sig.Returns = seq
	}
	return info
}

// checkFuncExpr checks a function literal and returns its type. expect
// supplies parameter types the literal does not annotate itself; selfTy
// is the receiver of a `function t:m()` declaration. bind, when given,
// publishes the function type before the body is checked, so recursive
// calls inside the body resolve to the signature.
func (c *Checker) checkFuncExpr(e *ast.FuncExpr, expect *types.FuncSig, selfTy types.Ty, bind func(types.Ty)) types.Ty {
	info := c.funcSignature(e, expect, selfTy)
	sig := info.sig
	if info.declared == nil {
		// recursive calls see unchecked results until the body settles them
		sig.Returns = types.TySeq{Tail: types.Dynamic{}}
	}
	fnTy := wrapTags(&types.Functions{Sig: sig}, info.tags)
	if bind != nil {
		bind(fnTy)
	}
	if info.noCheck {
		return fnTy
	}

	fr := &frame{}
	if e.Vararg {
		fr.vararg = &types.TySeq{Tail: sig.Params.Tail}
	}
	if info.declared != nil {
		fr.returns = info.declared
		fr.returnsExact = true
	}
	c.enterFuncScope(fr)
	idx := 0
	if selfTy != nil {
		c.defineLocal("self", info.paramSlots[0], e, true)
		idx = 1
	}
	for i, p := range e.Params {
		c.defineLocal(p.Name, info.paramSlots[i+idx], p, true)
	}

	diverged := c.checkBlock(e.Body)
	c.leaveScope()

	if info.declared == nil {
		rets := types.TySeq{}
		if fr.returns != nil {
			rets = *fr.returns
			if !diverged && len(rets.Head) > 0 {
				// falling off the end pads every result with nil
				rets = types.JoinSeq(rets, types.TySeq{}, c.sess.ctx)
			}
		}
		sig.Returns = rets
	}
	return fnTy
}

// wrapTags layers `--v` attributes around a type, first attribute
// outermost.
func wrapTags(ty types.Ty, tags []types.Tag) types.Ty {
	for i := len(tags) - 1; i >= 0; i-- {
		ty = types.Tagged(tags[i], ty)
	}
	return ty
}
