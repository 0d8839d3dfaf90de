package check

import (
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/types"
)

// tyFromAnnot converts annotation syntax into a type, resolving alias
// names against the scopes visible here. Unresolvable parts report and
// come back as the bottom type so checking continues quietly.
func (c *Checker) tyFromAnnot(t ast.TyExpr) types.Ty {
	switch t := t.(type) {
	case *ast.WhateverTy:
		return types.Dynamic{}
	case *ast.BoolLitTy:
		return types.BoolLit{Value: t.Value}
	case *ast.IntLitTy:
		return types.Int(t.Value)
	case *ast.StrLitTy:
		return types.Str(t.Value)
	case *ast.OptTy:
		return types.WithNil(c.tyFromAnnot(t.Inner), c.sess.ctx)
	case *ast.ReqTy:
		return types.WithoutNil(c.tyFromAnnot(t.Inner))
	case *ast.UnionTy:
		out := types.Ty(types.None{})
		for _, v := range t.Variants {
			out = types.Join(out, c.tyFromAnnot(v), c.sess.ctx)
		}
		return out
	case *ast.RecordTy:
		fields := make([]types.Field, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, types.Field{Name: f.Name.Name, Slot: c.slotFromAnnot(f.Slot)})
		}
		if t.Extensible {
			return types.OpenRecord(c.sess.ctx.GenRowVar(), fields...)
		}
		return types.Record(fields...)
	case *ast.TupleTy:
		elems := make([]*types.Slot, 0, len(t.Elems))
		for _, e := range t.Elems {
			elems = append(elems, c.slotFromAnnot(e))
		}
		return types.Tuple(elems...)
	case *ast.VectorTy:
		return types.Array(c.slotFromAnnot(t.Elem))
	case *ast.MapTy:
		return types.MapOf(c.tyFromAnnot(t.Key), c.slotFromAnnot(t.Value))
	case *ast.FuncTy:
		return types.Func(c.sigFromAnnot(t.Params, t.Vararg, t.Returns))
	case *ast.AttrTy:
		return c.tagged(t.Attr, c.tyFromAnnot(t.Ty))
	case *ast.NameTy:
		return c.tyFromName(t)
	default:
		return types.None{}
	}
}

func (c *Checker) tyFromName(t *ast.NameTy) types.Ty {
	switch t.Name {
	case "nil":
		return types.Nil{}
	case "boolean":
		return types.Bool{}
	case "number":
		return types.Number()
	case "integer":
		return types.Integer()
	case "string":
		return types.String()
	case "thread":
		return types.Thread{}
	case "userdata":
		return types.UserData{}
	case "any":
		return types.Any{}
	case "table":
		return types.Table()
	case "function":
		return types.Function()
	}
	if def := c.lookupType(t.Name); def != nil {
		return def.ty
	}
	c.report(lerr.NewUndefinedType{Positioner: t, Name: t.Name})
	return types.None{}
}

// tagged wraps ty with the tag an attribute names, reporting and
// passing the type through untouched when the name is unknown.
func (c *Checker) tagged(attr ast.Attr, ty types.Ty) types.Ty {
	tag, ok := types.TagByName(attr.Name)
	if !ok {
		c.report(lerr.NewUnknownAttribute{Positioner: attr, Name: attr.Name})
		return ty
	}
	if tag == types.TagStringMeta {
		c.setStringMeta(ty, attr.Span)
	}
	return types.Tagged(tag, ty)
}

// slotFromAnnot converts `[const] T` into a slot. A top-level `T!`
// additionally requires the slot to be assigned before first use.
func (c *Checker) slotFromAnnot(s *ast.SlotAnnot) *types.Slot {
	if s == nil {
		return nil
	}
	_, req := s.Ty.(*ast.ReqTy)
	slot := &types.Slot{Mode: types.ModeVar, Ty: c.tyFromAnnot(s.Ty), Req: req}
	if s.Const {
		slot.Mode = types.ModeConst
	}
	return slot
}

// seqFromAnnot converts a `(T1, T2, ...: V)` sequence annotation.
func (c *Checker) seqFromAnnot(s *ast.TySeqAnnot) types.TySeq {
	seq := types.TySeq{}
	for _, h := range s.Head {
		seq.Head = append(seq.Head, c.tyFromAnnot(h))
	}
	if s.Tail != nil {
		seq.Tail = c.tyFromAnnot(s.Tail)
	}
	return seq
}

func (c *Checker) sigFromAnnot(params []ast.FuncTyParam, vararg ast.TyExpr, returns *ast.TySeqAnnot) types.FuncSig {
	sig := types.FuncSig{}
	for _, p := range params {
		sig.Params.Head = append(sig.Params.Head, c.tyFromAnnot(p.Ty))
	}
	if vararg != nil {
		sig.Params.Tail = c.tyFromAnnot(vararg)
	}
	if returns != nil {
		sig.Returns = c.seqFromAnnot(returns)
	}
	return sig
}

// setStringMeta installs the record backing `s:method()` lookups on
// strings. Only the first record wins; anything later is an error.
func (c *Checker) setStringMeta(ty types.Ty, at ast.Span) {
	rec, ok := ty.(*types.Tables)
	if !ok || rec.Shape != types.ShapeRecord {
		return
	}
	if c.sess.strMeta != nil {
		c.report(lerr.NewStringMetaRedefined{
			Positioner: at,
			Notes:      []lerr.Cause{lerr.NoteAt("The string metatable was first defined here", c.sess.strMetaSpan)},
		})
		return
	}
	c.sess.strMeta = rec
	c.sess.strMetaSpan = at
}
