package check

import (
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/types"
)

// cellRef identifies where a written value lands: a variable binding or
// a table field cell. Binding writes go through the flow engine so
// branches can merge them; field cells are shared and mutate in place.
type cellRef struct {
	binding *binding
	cell    *types.Slot
}

func (r cellRef) slot() *types.Slot {
	if r.binding != nil {
		return r.binding.slot
	}
	return r.cell
}

func (c *Checker) setCellTy(r cellRef, ty types.Ty) {
	if r.binding != nil {
		c.setSlot(r.binding, r.binding.slot.WithTy(ty))
		return
	}
	if r.cell != nil {
		r.cell.Ty = ty
	}
}

// checkWrite verifies a value fits the slot it is being written into.
func (c *Checker) checkWrite(valueTy types.Ty, slot *types.Slot, at ast.Positioner) bool {
	if err := types.Sub(valueTy, slot.Ty, c.sess.ctx); err != nil {
		c.report(lerr.NewCannotAssign{
			Positioner: at,
			Source:     valueTy.String(),
			Target:     slot.Ty.String(),
			Notes:      typeNotes(err, at),
		})
		return false
	}
	return true
}

// assignName writes a value into a named variable. An unbound name
// becomes a global holding the widened value type.
func (c *Checker) assignName(e *ast.NameExpr, valueTy types.Ty, annot *types.Slot, at ast.Positioner) {
	b := c.lookup(e.Name)
	if b == nil {
		slot := annot
		if slot == nil {
			slot = types.VarSlot(types.Widen(valueTy))
		} else {
			c.checkWrite(valueTy, slot, at)
		}
		b = c.defineGlobal(e.Name, slot, e)
		b.annotated = annot != nil
		c.applyPathTags(slot.Ty, valueTy, at)
		return
	}
	if b.slot.Mode == types.ModeConst {
		c.report(lerr.NewConstAssign{Positioner: e, Name: e.Name})
		return
	}
	if annot != nil {
		if b.global && types.Eq(annot.Ty, b.slot.Ty, c.sess.ctx) != nil {
			c.report(lerr.NewCannotRedefineGlobal{
				Positioner: at,
				Name:       e.Name,
				Notes:      []lerr.Cause{lerr.NoteAt("The variable was previously typed here", b.span)},
			})
			return
		}
		c.checkWrite(valueTy, annot, at)
		c.setSlot(b, annot)
		b.annotated = true
		c.markInit(b)
		c.applyPathTags(annot.Ty, valueTy, at)
		return
	}
	if b.slot.Mode == types.ModeCurrently {
		c.setSlot(b, b.slot.WithTy(valueTy))
	} else {
		c.checkWrite(valueTy, b.slot, at)
	}
	c.markInit(b)
	c.applyPathTags(b.slot.Ty, valueTy, at)
}

// applyPathTags reacts to writes through types tagged as the module
// search paths. Only literal strings keep `require` resolvable.
func (c *Checker) applyPathTags(slotTy types.Ty, valueTy types.Ty, at ast.Positioner) {
	for _, tag := range types.TagsOf(slotTy) {
		switch tag {
		case types.TagPackagePath:
			if v, ok := singletonString(valueTy); ok {
				c.sess.modules.setPath(v)
			} else {
				c.report(lerr.NewNonLiteralPath{Positioner: at, Which: "package.path"})
				c.sess.modules.invalidatePath()
			}
		case types.TagPackageCpath:
			if v, ok := singletonString(valueTy); ok {
				c.sess.modules.setCpath(v)
			} else {
				c.report(lerr.NewNonLiteralPath{Positioner: at, Which: "package.cpath"})
				c.sess.modules.invalidateCpath()
			}
		}
	}
}

// resolveCell types a prefix expression, additionally reporting the
// slot that holds the resulting value when there is one to mutate.
func (c *Checker) resolveCell(e ast.Expr) (cellRef, types.Ty) {
	switch e := e.(type) {
	case *ast.NameExpr:
		b := c.lookup(e.Name)
		if b == nil {
			c.report(lerr.NewUndefinedVariable{Positioner: e, Name: e.Name})
			return cellRef{}, types.None{}
		}
		if !b.init {
			c.report(lerr.NewUninitialized{Positioner: e, Name: e.Name})
			c.markInit(b)
		}
		return cellRef{binding: b}, b.slot.Ty
	case *ast.ParenExpr:
		return c.resolveCell(e.Inner)
	case *ast.IndexExpr:
		_, containerTy := c.resolveCell(e.Prefix)
		key := c.checkExpr(e.Index)
		return c.indexCell(containerTy, key, e)
	default:
		return cellRef{}, c.checkExpr(e)
	}
}

// indexCell reads container[key] like indexRead, but also hands back
// the field cell itself when the container has one for the key.
func (c *Checker) indexCell(container, key types.Ty, at ast.Positioner) (cellRef, types.Ty) {
	t, ok := types.Base(c.resolve(types.Base(container))).(*types.Tables)
	if ok {
		switch t.Shape {
		case types.ShapeRecord:
			if name, lit := singletonString(key); lit {
				if slot, found := t.FindField(name); found {
					return cellRef{cell: slot}, slot.Ty
				}
				if t.Row != 0 {
					if slot, found := c.sess.ctx.FindRowField(t.Row, name); found {
						return cellRef{cell: slot}, slot.Ty
					}
				}
			}
		case types.ShapeTuple:
			if k, lit := singletonInt(key); lit && k >= 1 && int(k) <= len(t.Elems) {
				slot := t.Elems[k-1]
				return cellRef{cell: slot}, slot.Ty
			}
		}
	}
	return cellRef{}, c.indexRead(container, key, at)
}

// peekField looks up a record field without reporting on a miss.
func (c *Checker) peekField(containerTy types.Ty, name string) (*types.Slot, bool) {
	t, ok := types.Base(c.resolve(types.Base(containerTy))).(*types.Tables)
	if !ok || t.Shape != types.ShapeRecord {
		return nil, false
	}
	if s, found := t.FindField(name); found {
		return s, true
	}
	if t.Row != 0 {
		return c.sess.ctx.FindRowField(t.Row, name)
	}
	return nil, false
}

// writeIndex types `container[key] = value`.
func (c *Checker) writeIndex(e *ast.IndexExpr, valueTy types.Ty, annot *types.Slot) {
	holder, containerTy := c.resolveCell(e.Prefix)
	keyTy := c.checkExpr(e.Index)
	c.writeIndexTy(holder, containerTy, keyTy, valueTy, annot, e)
}

func (c *Checker) writeIndexTy(holder cellRef, containerTy, keyTy, valueTy types.Ty, annot *types.Slot, at ast.Positioner) {
	if _, isNone := types.Base(keyTy).(types.None); isNone {
		return
	}
	if hs := holder.slot(); hs != nil && hs.Mode == types.ModeConst {
		c.report(lerr.NewConstWrite{Positioner: at, Target: containerTy.String()})
		return
	}
	switch base := types.Base(c.resolve(types.Base(containerTy))).(type) {
	case types.Dynamic, types.None:
		return
	case types.VarTy:
		// the structure is still being inferred; writes stay unchecked
		return
	case *types.Tables:
		c.writeTable(holder, base, containerTy, keyTy, valueTy, annot, at)
	default:
		c.report(lerr.NewCannotIndex{Positioner: at, Container: containerTy.String(), Key: keyTy.String()})
	}
}

func (c *Checker) writeTable(holder cellRef, t *types.Tables, containerTy, keyTy, valueTy types.Ty, annot *types.Slot, at ast.Positioner) {
	if keyTy.Flags().IsDynamic() {
		return
	}
	switch t.Shape {
	case types.ShapeRecord:
		name, ok := singletonString(keyTy)
		if !ok {
			if keyTy.Flags()&^types.FlagString == 0 && keyTy.Flags() != types.FlagNone {
				c.report(lerr.NewNonConstantKey{Positioner: at, Container: containerTy.String()})
			} else {
				c.report(lerr.NewCannotIndex{Positioner: at, Container: containerTy.String(), Key: keyTy.String()})
			}
			return
		}
		cell, found := t.FindField(name)
		if !found && t.Row != 0 {
			cell, found = c.sess.ctx.FindRowField(t.Row, name)
		}
		if found {
			c.writeCell(cell, containerTy, valueTy, annot, at)
			return
		}
		slot := annot
		if slot == nil {
			slot = types.VarSlot(types.Widen(valueTy))
		}
		if t.Row != 0 {
			if err := c.sess.ctx.CommitRowField(t.Row, types.Field{Name: name, Slot: slot}); err != nil {
				c.report(lerr.NewCannotAssign{
					Positioner: at,
					Source:     valueTy.String(),
					Target:     containerTy.String(),
					Notes:      typeNotes(err, at),
				})
			}
			return
		}
		// a closed record only grows while its value is private to one slot
		if hs := holder.slot(); hs != nil && hs.Mode == types.ModeCurrently {
			fields := append(append([]types.Field(nil), t.Fields...), types.Field{Name: name, Slot: slot})
			c.setCellTy(holder, retag(containerTy, types.Record(fields...)))
			return
		}
		c.report(lerr.NewMissingKey{Positioner: at, Container: containerTy.String(), Key: name})
	case types.ShapeTuple:
		k, ok := singletonInt(keyTy)
		if !ok {
			if keyTy.Flags().IsIntegral() && keyTy.Flags() != types.FlagNone {
				c.report(lerr.NewNonConstantKey{Positioner: at, Container: containerTy.String()})
			} else {
				c.report(lerr.NewCannotIndex{Positioner: at, Container: containerTy.String(), Key: keyTy.String()})
			}
			return
		}
		if k >= 1 && int(k) <= len(t.Elems) {
			c.writeCell(t.Elems[k-1], containerTy, valueTy, annot, at)
			return
		}
		// writing one past the end appends while the tuple still grows
		if int(k) == len(t.Elems)+1 {
			if hs := holder.slot(); hs != nil && hs.Mode == types.ModeCurrently {
				slot := annot
				if slot == nil {
					slot = types.VarSlot(types.Widen(valueTy))
				}
				elems := append(append([]*types.Slot(nil), t.Elems...), slot)
				c.setCellTy(holder, retag(containerTy, types.Tuple(elems...)))
				return
			}
		}
		c.report(lerr.NewMissingKey{Positioner: at, Container: containerTy.String(), Key: keyTy.String()})
	case types.ShapeArray:
		if !keyTy.Flags().IsIntegral() {
			c.report(lerr.NewArrayIndexNotInteger{Positioner: at, Container: containerTy.String(), Key: keyTy.String()})
			return
		}
		if t.Elem.Mode == types.ModeConst {
			c.report(lerr.NewConstWrite{Positioner: at, Target: containerTy.String()})
			return
		}
		// nil removes the element, so every array accepts it
		c.checkWrite(valueTy, t.Elem.WithTy(types.WithNil(t.Elem.Ty, c.sess.ctx)), at)
	case types.ShapeMap:
		if err := types.Sub(keyTy, t.Key, c.sess.ctx); err != nil {
			c.report(lerr.NewCannotIndex{
				Positioner: at,
				Container:  containerTy.String(),
				Key:        keyTy.String(),
				Notes:      typeNotes(err, at),
			})
			return
		}
		if t.Value.Mode == types.ModeConst {
			c.report(lerr.NewConstWrite{Positioner: at, Target: containerTy.String()})
			return
		}
		c.checkWrite(valueTy, t.Value.WithTy(types.WithNil(t.Value.Ty, c.sess.ctx)), at)
	case types.ShapeEmpty:
		c.morphEmpty(holder, containerTy, keyTy, valueTy, annot, at)
	default:
		// ShapeAll: writes into the wide table type stay unchecked
	}
}

// writeCell performs the write into one field cell, retyping it when the
// assignment carries an annotation or the cell is still adaptable.
func (c *Checker) writeCell(cell *types.Slot, containerTy, valueTy types.Ty, annot *types.Slot, at ast.Positioner) {
	if cell.Mode == types.ModeConst {
		c.report(lerr.NewConstWrite{Positioner: at, Target: containerTy.String()})
		return
	}
	if annot != nil {
		c.checkWrite(valueTy, annot, at)
		cell.Mode = annot.Mode
		cell.Ty = annot.Ty
		cell.Req = false
		c.applyPathTags(cell.Ty, valueTy, at)
		return
	}
	if cell.Mode == types.ModeCurrently || cell.Mode == types.ModeJust {
		cell.Ty = valueTy
	} else {
		c.checkWrite(valueTy, cell, at)
	}
	c.applyPathTags(cell.Ty, valueTy, at)
}

// morphEmpty gives an empty table its first structure from the write
// that touches it: a literal string key makes a record, index 1 starts
// a tuple, other integers make an array, anything else a map.
func (c *Checker) morphEmpty(holder cellRef, containerTy, keyTy, valueTy types.Ty, annot *types.Slot, at ast.Positioner) {
	hs := holder.slot()
	if hs == nil || hs.Mode != types.ModeCurrently {
		c.report(lerr.NewCannotIndex{Positioner: at, Container: containerTy.String(), Key: keyTy.String()})
		return
	}
	slot := annot
	if slot == nil {
		slot = types.VarSlot(types.Widen(valueTy))
	}
	if name, ok := singletonString(keyTy); ok {
		c.setCellTy(holder, retag(containerTy, types.Record(types.Field{Name: name, Slot: slot})))
		return
	}
	if k, ok := singletonInt(keyTy); ok && k == 1 {
		c.setCellTy(holder, retag(containerTy, types.Tuple(slot)))
		return
	}
	if keyTy.Flags().IsIntegral() {
		c.setCellTy(holder, retag(containerTy, types.Array(slot)))
		return
	}
	c.setCellTy(holder, retag(containerTy, types.MapOf(types.Widen(keyTy), slot)))
}

// retag re-wraps a rebuilt type with the tags of the value it replaces.
func retag(orig, rebuilt types.Ty) types.Ty {
	return wrapTags(rebuilt, types.TagsOf(orig))
}
