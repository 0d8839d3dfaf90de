package check

import (
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/types"
)

// checkBlock checks a block in its own lexical scope and reports whether
// it diverges, meaning control cannot reach its end.
func (c *Checker) checkBlock(b *ast.Block) bool {
	c.enterScope()
	diverged := c.checkStmts(b.Stmts)
	c.leaveScope()
	return diverged
}

func (c *Checker) checkStmts(stmts []ast.Stmt) bool {
	diverged := false
	reported := false
	for _, s := range stmts {
		if diverged && !reported {
			if c.sess.feats.WarnDeadCode {
				c.report(lerr.NewDeadCode{Positioner: s})
			}
			reported = true
		}
		// statements after a return still get checked for diagnostics
		if c.checkStmt(s) {
			diverged = true
		}
	}
	return diverged
}

func (c *Checker) checkStmt(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.DoStmt:
		return c.checkBlock(s.Body)
	case *ast.IfStmt:
		return c.checkIf(s)
	case *ast.WhileStmt:
		c.checkWhile(s)
	case *ast.RepeatStmt:
		c.checkRepeat(s)
	case *ast.NumericForStmt:
		c.checkNumericFor(s)
	case *ast.GenericForStmt:
		c.checkGenericFor(s)
	case *ast.LocalStmt:
		c.checkLocal(s)
	case *ast.AssignStmt:
		c.checkAssign(s)
	case *ast.CallStmt:
		c.exprSeq(s.Call)
	case *ast.ReturnStmt:
		c.checkReturn(s)
		return true
	case *ast.BreakStmt:
		return true
	case *ast.FuncDeclStmt:
		c.checkFuncDecl(s)
	case *ast.AssumeStmt:
		c.checkAssume(s)
	case *ast.TypeDeclStmt:
		c.checkTypeDecl(s)
	case *ast.OpenStmt:
		c.openLibrary(s.Name.Name, s.Span)
	}
	return false
}

// checkIf checks each arm under its condition's truthy world while the
// falsy worlds of earlier conditions accumulate for the later arms, then
// joins every arm that can fall through.
func (c *Checker) checkIf(s *ast.IfStmt) bool {
	var branches []map[*binding]flowEntry
	reachable := true
	exhaustive := false

	c.pushFlow()
	for _, clause := range s.Clauses {
		condTy := c.checkExpr(clause.Cond)
		w := c.refine(clause.Cond)
		truthy := w.alwaysTruthy || condTy.Flags().IsTruthy()
		falsy := w.alwaysFalsy || condTy.Flags().IsFalsy()
		if c.sess.feats.WarnUselessCond && reachable && (truthy || falsy) {
			c.report(lerr.NewUselessCondition{Positioner: clause.Cond, AlwaysTrue: truthy})
		}

		c.pushFlow()
		c.applyRefinement(w.truthy)
		diverged := c.checkBlock(clause.Body)
		finals := c.popFlow()

		if reachable && !falsy {
			if diverged {
				branches = append(branches, nil)
			} else {
				branches = append(branches, finals)
			}
		}
		c.applyRefinement(w.falsy)
		if truthy {
			exhaustive = true
			reachable = false
		}
	}

	if s.Else != nil {
		c.pushFlow()
		diverged := c.checkBlock(s.Else)
		finals := c.popFlow()
		if reachable {
			if diverged {
				branches = append(branches, nil)
			} else {
				branches = append(branches, finals)
			}
		}
	}
	fall := c.popFlow()
	if s.Else == nil && !exhaustive {
		branches = append(branches, fall)
	}

	c.mergeFlows(false, branches...)

	if len(branches) == 0 {
		return false
	}
	for _, b := range branches {
		if b != nil {
			return false
		}
	}
	return true
}

// checkWhile checks the body once against the narrowed entry state and
// joins the result back with the skip path. `while true do` loops are
// idiomatic, so only an always-falsy condition is flagged.
func (c *Checker) checkWhile(s *ast.WhileStmt) {
	condTy := c.checkExpr(s.Cond)
	w := c.refine(s.Cond)
	if c.sess.feats.WarnUselessCond && (w.alwaysFalsy || condTy.Flags().IsFalsy()) {
		c.report(lerr.NewUselessCondition{Positioner: s.Cond, AlwaysTrue: false})
	}
	c.pushFlow()
	c.applyRefinement(w.truthy)
	diverged := c.checkBlock(s.Body)
	finals := c.popFlow()
	if diverged {
		finals = nil
	}
	c.mergeFlows(true, finals)
}

// checkRepeat checks the body, which runs at least once. The condition
// shares the body's scope.
func (c *Checker) checkRepeat(s *ast.RepeatStmt) {
	c.pushFlow()
	c.enterScope()
	diverged := c.checkStmts(s.Body.Stmts)
	c.checkExpr(s.Cond)
	c.leaveScope()
	finals := c.popFlow()
	if diverged {
		finals = nil
	}
	c.mergeFlows(false, finals)
}

func (c *Checker) checkNumericFor(s *ast.NumericForStmt) {
	bounds := []ast.Expr{s.Start, s.Limit}
	if s.Step != nil {
		bounds = append(bounds, s.Step)
	}
	integral := true
	for _, b := range bounds {
		ty := c.checkExpr(b)
		f := ty.Flags()
		if f.IsDynamic() {
			integral = false
			continue
		}
		if !f.IsNumeric() {
			c.report(lerr.NewOperandNotNumber{Positioner: b, Op: "for", Operand: ty.String()})
			continue
		}
		if !f.IsIntegral() {
			integral = false
		}
	}
	varTy := types.Number()
	if integral {
		varTy = types.Integer()
	}
	slot := types.VarSlot(varTy)
	if s.Var.Annot != nil {
		slot = c.slotFromAnnot(s.Var.Annot)
		c.checkWrite(varTy, slot, s.Var)
	}

	c.enterScope()
	c.defineLocal(s.Var.Name, slot, s.Var, true)
	c.pushFlow()
	diverged := c.checkBlock(s.Body)
	finals := c.popFlow()
	c.leaveScope()
	if diverged {
		finals = nil
	}
	c.mergeFlows(true, finals)
}

// checkGenericFor types `for v1, ... in f, s, c do` off the iterator's
// return signature. The loop stops when the first result is nil, so the
// control variable drops its nil inside the body.
func (c *Checker) checkGenericFor(s *ast.GenericForStmt) {
	seq := c.checkExprList(s.Exprs)
	iterTy := seq.At(0)

	var rets types.TySeq
	switch fn := types.Base(c.resolve(types.Base(iterTy))).(type) {
	case types.Dynamic, types.VarTy:
		rets = types.TySeq{Tail: types.Dynamic{}}
	case types.None:
		rets = types.TySeq{Tail: types.None{}}
	case *types.Functions:
		if fn.All {
			rets = types.TySeq{Tail: types.Dynamic{}}
		} else {
			rets = fn.Sig.Returns
		}
	default:
		at := ast.Positioner(s)
		if len(s.Exprs) > 0 {
			at = s.Exprs[0]
		}
		c.report(lerr.NewNotCallable{Positioner: at, Found: iterTy.String()})
		rets = types.TySeq{Tail: types.None{}}
	}

	c.enterScope()
	for i, v := range s.Vars {
		ty := rets.At(i)
		if i == 0 {
			ty = types.WithoutNil(ty)
		}
		slot := types.VarSlot(ty)
		if v.Annot != nil {
			slot = c.slotFromAnnot(v.Annot)
			c.checkWrite(ty, slot, v)
		}
		c.defineLocal(v.Name, slot, v, true)
	}
	c.pushFlow()
	diverged := c.checkBlock(s.Body)
	finals := c.popFlow()
	c.leaveScope()
	if diverged {
		finals = nil
	}
	c.mergeFlows(true, finals)
}

// checkLocal declares `local n1, ... = e1, ...`. The names come into
// scope only after every right-hand side is evaluated.
func (c *Checker) checkLocal(s *ast.LocalStmt) {
	slots := make([]*types.Slot, len(s.Names))
	for i, n := range s.Names {
		slots[i] = c.slotFromAnnot(n.Annot)
	}
	seq := types.TySeq{}
	for i, e := range s.Exprs {
		if i == len(s.Exprs)-1 && ast.IsMultiValue(e) {
			last := c.exprSeq(e)
			seq.Head = append(seq.Head, last.Head...)
			seq.Tail = last.Tail
			break
		}
		var expect types.Ty
		if i < len(slots) && slots[i] != nil {
			expect = slots[i].Ty
		}
		seq.Head = append(seq.Head, c.checkExprExpecting(e, expect))
	}

	for i, n := range s.Names {
		got := seq.At(i)
		slot := slots[i]
		if slot == nil {
			c.defineLocal(n.Name, types.CurrentSlot(got), n, true)
			continue
		}
		init := true
		if len(s.Exprs) == 0 {
			// without an initializer a `!` slot waits for its first
			// assignment; any other slot must tolerate nil
			if slot.Req {
				init = false
			} else {
				c.checkWrite(types.Nil{}, slot, n)
			}
		} else {
			c.checkWrite(got, slot, n)
		}
		b := c.defineLocal(n.Name, slot, n, init)
		b.annotated = true
	}
}

func (c *Checker) checkAssign(s *ast.AssignStmt) {
	slots := make([]*types.Slot, len(s.Targets))
	for i := range s.Targets {
		if i < len(s.Annots) {
			slots[i] = c.slotFromAnnot(s.Annots[i])
		}
	}
	// expectations come from annotations or the targets' current types
	expects := make([]types.Ty, len(s.Targets))
	for i, t := range s.Targets {
		if slots[i] != nil {
			expects[i] = slots[i].Ty
			continue
		}
		if n, ok := t.(*ast.NameExpr); ok {
			if b := c.lookup(n.Name); b != nil {
				expects[i] = b.slot.Ty
			}
		}
	}

	seq := types.TySeq{}
	for i, e := range s.Exprs {
		if i == len(s.Exprs)-1 && ast.IsMultiValue(e) {
			last := c.exprSeq(e)
			seq.Head = append(seq.Head, last.Head...)
			seq.Tail = last.Tail
			break
		}
		var expect types.Ty
		if i < len(expects) {
			expect = expects[i]
		}
		seq.Head = append(seq.Head, c.checkExprExpecting(e, expect))
	}

	for i, target := range s.Targets {
		c.assignTo(target, seq.At(i), slots[i])
	}
}

func (c *Checker) assignTo(target ast.Expr, valueTy types.Ty, annot *types.Slot) {
	switch t := target.(type) {
	case *ast.NameExpr:
		c.assignName(t, valueTy, annot, t)
	case *ast.IndexExpr:
		c.writeIndex(t, valueTy, annot)
	case *ast.ParenExpr:
		c.assignTo(t.Inner, valueTy, annot)
	default:
		// the parser only leaves other targets behind after a syntax error
		c.checkExpr(target)
	}
}

func (c *Checker) checkReturn(s *ast.ReturnStmt) {
	seq := c.checkExprList(s.Exprs)
	fr := c.currentFrame()
	if fr.returnsExact {
		declared := *fr.returns
		n := len(seq.Head)
		if len(declared.Head) > n {
			n = len(declared.Head)
		}
		for i := 0; i <= n; i++ {
			src, dst := seq.At(i), declared.At(i)
			if err := types.Sub(src, dst, c.sess.ctx); err != nil {
				pos := ast.Positioner(s)
				if i < len(s.Exprs) {
					pos = s.Exprs[i]
				}
				c.report(lerr.NewBadReturn{
					Positioner: pos,
					Index:      i,
					Source:     src.String(),
					Target:     dst.String(),
					Notes:      typeNotes(err, pos),
				})
			}
		}
		return
	}
	if fr.returns == nil {
		r := seq
		fr.returns = &r
	} else {
		joined := types.JoinSeq(*fr.returns, seq, c.sess.ctx)
		fr.returns = &joined
	}
}

// checkFuncDecl handles the `function` statement forms: local, global,
// dotted-path and method declarations.
func (c *Checker) checkFuncDecl(s *ast.FuncDeclStmt) {
	if s.Local {
		// a local function is visible inside its own body
		b := c.defineLocal(s.Name.Name, types.VarSlot(types.None{}), s.Name, true)
		c.checkFuncExpr(s.Func, nil, nil, func(ty types.Ty) {
			c.setSlot(b, types.VarSlot(ty))
		})
		return
	}
	if len(s.Path) == 0 && s.Method == nil {
		b := c.lookup(s.Name.Name)
		if b == nil {
			// a new global; recursion sees it through the binding
			nb := c.defineGlobal(s.Name.Name, types.VarSlot(types.None{}), s.Name)
			c.checkFuncExpr(s.Func, nil, nil, func(ty types.Ty) {
				c.setSlot(nb, types.VarSlot(ty))
			})
			return
		}
		var expect *types.FuncSig
		if fns, ok := asFunctions(c.resolve(b.slot.Ty)); ok && fns.Sig != nil {
			expect = fns.Sig
		}
		fnTy := c.checkFuncExpr(s.Func, expect, nil, nil)
		c.assignName(&ast.NameExpr{Span: s.Name.Span, Name: s.Name.Name}, fnTy, nil, s.Name)
		return
	}

	// `function t.a.b()` / `function t:m()`: walk to the container and
	// write the final field before the body runs, so recursion works
	b := c.lookup(s.Name.Name)
	if b == nil {
		c.report(lerr.NewUndefinedVariable{Positioner: s.Name, Name: s.Name.Name})
		c.checkFuncExpr(s.Func, nil, nil, nil)
		return
	}
	if !b.init {
		c.report(lerr.NewUninitialized{Positioner: s.Name, Name: s.Name.Name})
		c.markInit(b)
	}
	holder := cellRef{binding: b}
	containerTy := b.slot.Ty
	segs := s.Path
	var final ast.Name
	if s.Method != nil {
		final = *s.Method
	} else {
		final = segs[len(segs)-1]
		segs = segs[:len(segs)-1]
	}
	for i := range segs {
		holder, containerTy = c.indexCell(containerTy, types.Str(segs[i].Name), segs[i])
	}

	var selfTy types.Ty
	if s.Method != nil {
		selfTy = containerTy
	}
	var expect *types.FuncSig
	if cell, found := c.peekField(containerTy, final.Name); found {
		if fns, ok := asFunctions(cell.Ty); ok && fns.Sig != nil {
			expect = fns.Sig
		}
	}
	c.checkFuncExpr(s.Func, expect, selfTy, func(ty types.Ty) {
		c.writeIndexTy(holder, containerTy, types.Str(final.Name), ty, nil, final)
	})
}

// checkAssume rebinds a name, or a field under it, to the annotated
// slot. Assumptions are trusted; no value-level check happens.
func (c *Checker) checkAssume(s *ast.AssumeStmt) {
	slot := c.slotFromAnnot(s.Slot)
	if len(s.Path) == 0 {
		if s.Global {
			if b, ok := c.sess.global.names[s.Name.Name]; ok {
				c.setSlot(b, slot)
				b.annotated = true
				return
			}
			b := c.defineGlobal(s.Name.Name, slot, s.Name)
			b.annotated = true
			return
		}
		if b := c.lookupLocal(s.Name.Name); b != nil {
			c.setSlot(b, slot)
			c.markInit(b)
			b.annotated = true
			return
		}
		// shadows any same-named global without touching it
		b := c.defineLocal(s.Name.Name, slot, s.Name, true)
		b.annotated = true
		return
	}

	var b *binding
	if s.Global {
		b = c.sess.global.names[s.Name.Name]
	} else {
		b = c.lookup(s.Name.Name)
	}
	if b == nil {
		c.report(lerr.NewUndefinedVariable{Positioner: s.Name, Name: s.Name.Name})
		return
	}
	holder := cellRef{binding: b}
	containerTy := b.slot.Ty
	for i := 0; i < len(s.Path)-1; i++ {
		holder, containerTy = c.indexCell(containerTy, types.Str(s.Path[i].Name), s.Path[i])
	}
	c.assumeField(holder, containerTy, s.Path[len(s.Path)-1], slot)
}

// assumeField installs a field slot into a record, replacing whatever
// the field held before.
func (c *Checker) assumeField(holder cellRef, containerTy types.Ty, name ast.Name, slot *types.Slot) {
	t, ok := types.Base(c.resolve(types.Base(containerTy))).(*types.Tables)
	if !ok || (t.Shape != types.ShapeRecord && t.Shape != types.ShapeEmpty) {
		c.report(lerr.NewCannotIndex{Positioner: name, Container: containerTy.String(), Key: name.Name})
		return
	}
	if t.Shape == types.ShapeEmpty {
		if hs := holder.slot(); hs != nil {
			c.setCellTy(holder, retag(containerTy, types.Record(types.Field{Name: name.Name, Slot: slot})))
			return
		}
		c.report(lerr.NewCannotIndex{Positioner: name, Container: containerTy.String(), Key: name.Name})
		return
	}
	if cell, found := t.FindField(name.Name); found {
		cell.Mode = slot.Mode
		cell.Ty = slot.Ty
		cell.Req = slot.Req
		return
	}
	if t.Row != 0 {
		if cell, found := c.sess.ctx.FindRowField(t.Row, name.Name); found {
			cell.Mode = slot.Mode
			cell.Ty = slot.Ty
			cell.Req = slot.Req
			return
		}
		if err := c.sess.ctx.CommitRowField(t.Row, types.Field{Name: name.Name, Slot: slot}); err != nil {
			c.report(lerr.NewCannotAssign{
				Positioner: name,
				Source:     slot.Ty.String(),
				Target:     containerTy.String(),
				Notes:      typeNotes(err, name),
			})
		}
		return
	}
	// a closed record grows only while we hold the slot containing it
	if hs := holder.slot(); hs != nil {
		fields := append(append([]types.Field(nil), t.Fields...), types.Field{Name: name.Name, Slot: slot})
		c.setCellTy(holder, retag(containerTy, types.Record(fields...)))
		return
	}
	c.report(lerr.NewMissingKey{Positioner: name, Container: containerTy.String(), Key: name.Name})
}

var primitiveTypeNames = map[string]bool{
	"nil": true, "boolean": true, "number": true, "integer": true,
	"string": true, "thread": true, "userdata": true, "any": true,
	"table": true, "function": true, "vector": true, "map": true,
}

// checkTypeDecl registers a `--# type` alias in the requested scope.
func (c *Checker) checkTypeDecl(s *ast.TypeDeclStmt) {
	name := s.Name.Name
	if primitiveTypeNames[name] {
		c.report(lerr.NewTypeRedefined{Positioner: s.Name, Name: name})
		return
	}
	ty := c.tyFromAnnot(s.Ty)
	def := &typeDef{ty: ty, span: ast.SpanOf(s.Name), vis: s.Vis}

	// global aliases are reserved everywhere once defined
	if exist, ok := c.sess.global.types[name]; ok {
		c.report(lerr.NewTypeRedefined{
			Positioner: s.Name,
			Name:       name,
			Notes:      []lerr.Cause{lerr.NoteAt("The type was first defined here", exist.span)},
		})
		return
	}
	if s.Vis == ast.TypeVisGlobal {
		c.sess.global.types[name] = def
		return
	}
	scope := c.currentScope()
	if s.Vis == ast.TypeVisScoped {
		// an exported alias lives in the unit scope, where `require` finds it
		scope = c.scopes[0]
	}
	if exist, ok := scope.types[name]; ok {
		c.report(lerr.NewTypeRedefined{
			Positioner: s.Name,
			Name:       name,
			Notes:      []lerr.Cause{lerr.NoteAt("The type was first defined here", exist.span)},
		})
		return
	}
	scope.types[name] = def
}
