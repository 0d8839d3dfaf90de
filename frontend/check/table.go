package check

import (
	"strconv"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/types"
)

// checkTable types a table constructor. A constructor of one shape keeps
// the most precise table type: named keys make an open record, a dense
// run of integer keys makes a tuple, computed keys make a map. Mixed
// shapes degrade to a map over the joined key and value types. Every
// produced slot is in the Just mode, so the value places covariantly
// into whatever annotation later receives it.
func (c *Checker) checkTable(e *ast.TableExpr) types.Ty {
	var (
		fields   []types.Field
		fieldAt  = map[string]ast.Span{}
		intSlots = map[int64]*types.Slot{}
		intAt    = map[int64]ast.Span{}
		mapKey   types.Ty
		mapVal   types.Ty
		openTail types.Ty
	)

	putInt := func(k int64, slot *types.Slot, at ast.Positioner) {
		if prev, dup := intAt[k]; dup {
			c.report(lerr.NewDuplicateKey{
				Positioner: at,
				Key:        strconv.FormatInt(k, 10),
				Notes:      []lerr.Cause{lerr.NoteAt("The key was first defined here", prev)},
			})
			return
		}
		intAt[k] = ast.SpanOf(at)
		intSlots[k] = slot
	}
	putMap := func(key, val types.Ty) {
		if mapKey == nil {
			mapKey, mapVal = types.Widen(key), types.Widen(val)
			return
		}
		mapKey = types.Join(mapKey, types.Widen(key), c.sess.ctx)
		mapVal = types.Join(mapVal, types.Widen(val), c.sess.ctx)
	}

	next := int64(1)
	for i, item := range e.Items {
		if item.Key == nil {
			if i == len(e.Items)-1 && ast.IsMultiValue(item.Value) {
				seq := c.exprSeq(item.Value)
				for _, h := range seq.Head {
					putInt(next, types.JustSlot(h), item.Value)
					next++
				}
				if seq.Tail != nil {
					c.report(lerr.NewUnboundedConstructor{Positioner: item.Value})
					openTail = seq.Tail
				}
				continue
			}
			putInt(next, types.JustSlot(c.checkExpr(item.Value)), item.Value)
			next++
			continue
		}

		keyTy := c.checkExpr(item.Key)
		valTy := c.checkExpr(item.Value)
		if name, ok := singletonString(keyTy); ok {
			if prev, dup := fieldAt[name]; dup {
				c.report(lerr.NewDuplicateKey{
					Positioner: item.Key,
					Key:        name,
					Notes:      []lerr.Cause{lerr.NoteAt("The key was first defined here", prev)},
				})
				continue
			}
			fieldAt[name] = ast.SpanOf(item.Key)
			fields = append(fields, types.Field{Name: name, Slot: types.JustSlot(valTy)})
			continue
		}
		if k, ok := singletonInt(keyTy); ok {
			putInt(k, types.JustSlot(valTy), item.Key)
			continue
		}
		putMap(keyTy, valTy)
	}

	// a trailing expansion of unknown length loses the element positions;
	// recover with an array over the join of everything it could hold
	if openTail != nil {
		elem := types.Widen(openTail)
		for _, s := range intSlots {
			elem = types.Join(elem, types.Widen(s.Ty), c.sess.ctx)
		}
		if len(fields) == 0 && mapKey == nil {
			return types.Array(types.JustSlot(elem))
		}
		putMap(types.Integer(), elem)
		intSlots = nil
	}

	// integer keys form a tuple only when they cover 1..n exactly
	dense := len(intSlots) > 0
	for k := int64(1); k <= int64(len(intSlots)); k++ {
		if _, ok := intSlots[k]; !ok {
			dense = false
			break
		}
	}

	hasFields := len(fields) > 0
	hasInts := len(intSlots) > 0
	hasMap := mapKey != nil
	switch {
	case !hasFields && !hasInts && !hasMap:
		return types.EmptyTable()
	case hasFields && !hasInts && !hasMap:
		return types.OpenRecord(c.sess.ctx.GenRowVar(), fields...)
	case hasInts && !hasFields && !hasMap && dense:
		elems := make([]*types.Slot, len(intSlots))
		for k, s := range intSlots {
			elems[k-1] = s
		}
		return types.Tuple(elems...)
	}

	for k, s := range intSlots {
		putMap(types.Int(k), s.Ty)
	}
	for _, f := range fields {
		putMap(types.Str(f.Name), f.Slot.Ty)
	}
	return types.MapOf(mapKey, types.JustSlot(mapVal))
}
