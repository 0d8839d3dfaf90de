package check

import (
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/types"
)

// checkExpr types an expression, truncating multi-value results to one.
func (c *Checker) checkExpr(e ast.Expr) types.Ty {
	return c.checkExprExpecting(e, nil)
}

// checkExprExpecting types an expression under an optional expected
// type. The expectation only matters for function literals, which take
// their unannotated parameter types from it.
func (c *Checker) checkExprExpecting(e ast.Expr, expect types.Ty) types.Ty {
	switch e := e.(type) {
	case *ast.BadExpr:
		// the parser already reported; keep everything downstream quiet
		return types.Dynamic{}
	case *ast.NilLit:
		return types.Nil{}
	case *ast.BoolLit:
		return types.BoolLit{Value: e.Value}
	case *ast.NumberLit:
		if v, ok := e.Int(); ok {
			return types.Int(v)
		}
		return types.Number()
	case *ast.StringLit:
		return types.Str(e.Value)
	case *ast.VarargExpr:
		return c.exprSeq(e).At(0)
	case *ast.NameExpr:
		return c.checkName(e)
	case *ast.ParenExpr:
		return c.checkExprExpecting(e.Inner, expect)
	case *ast.IndexExpr:
		return c.checkIndexRead(e)
	case *ast.CallExpr:
		return c.checkCall(e).At(0)
	case *ast.MethodCallExpr:
		return c.checkMethodCall(e).At(0)
	case *ast.FuncExpr:
		var sig *types.FuncSig
		if fns, ok := asFunctions(expect); ok && fns.Sig != nil {
			sig = fns.Sig
		}
		return c.checkFuncExpr(e, sig, nil, nil)
	case *ast.TableExpr:
		return c.checkTable(e)
	case *ast.BinExpr:
		return c.checkBinExpr(e)
	case *ast.UnExpr:
		return c.checkUnExpr(e)
	}
	return types.None{}
}

func (c *Checker) checkName(e *ast.NameExpr) types.Ty {
	b := c.lookup(e.Name)
	if b == nil {
		c.report(lerr.NewUndefinedVariable{Positioner: e, Name: e.Name})
		return types.None{}
	}
	if !b.init {
		c.report(lerr.NewUninitialized{Positioner: e, Name: e.Name})
		c.markInit(b)
	}
	return b.slot.Ty
}

// exprSeq types an expression keeping every value it produces: calls
// and `...` expand, everything else is a one-element sequence.
func (c *Checker) exprSeq(e ast.Expr) types.TySeq {
	switch e := e.(type) {
	case *ast.CallExpr:
		return c.checkCall(e)
	case *ast.MethodCallExpr:
		return c.checkMethodCall(e)
	case *ast.VarargExpr:
		fr := c.currentFrame()
		if fr.vararg == nil {
			c.report(lerr.NewUndefinedVariable{Positioner: e, Name: "..."})
			return types.TySeq{Tail: types.None{}}
		}
		return *fr.vararg
	default:
		return types.Seq(c.checkExpr(e))
	}
}

// checkExprList types an expression list the way Lua evaluates it: all
// but the last expression truncate to one value, the last one expands.
func (c *Checker) checkExprList(exprs []ast.Expr) types.TySeq {
	seq := types.TySeq{}
	for i, e := range exprs {
		if i == len(exprs)-1 {
			last := c.exprSeq(e)
			seq.Head = append(seq.Head, last.Head...)
			seq.Tail = last.Tail
			break
		}
		seq.Head = append(seq.Head, c.checkExpr(e))
	}
	return seq
}

func (c *Checker) checkBinExpr(e *ast.BinExpr) types.Ty {
	switch e.Op {
	case ast.OpAnd:
		lhs := c.checkExpr(e.Lhs)
		w := c.refine(e.Lhs)
		c.pushFlow()
		c.applyRefinement(w.truthy)
		rhs := c.checkExpr(e.Rhs)
		c.popFlow()
		if lhs.Flags().IsTruthy() {
			return rhs
		}
		if lhs.Flags().IsFalsy() {
			return lhs
		}
		return types.Join(types.FalsyPart(lhs), rhs, c.sess.ctx)
	case ast.OpOr:
		lhs := c.checkExpr(e.Lhs)
		w := c.refine(e.Lhs)
		c.pushFlow()
		c.applyRefinement(w.falsy)
		rhs := c.checkExpr(e.Rhs)
		c.popFlow()
		if lhs.Flags().IsTruthy() {
			return lhs
		}
		if lhs.Flags().IsFalsy() {
			return rhs
		}
		return types.Join(types.TruthyPart(lhs), rhs, c.sess.ctx)
	case ast.OpConcat:
		return c.checkConcat(e)
	case ast.OpEq, ast.OpNe:
		c.checkExpr(e.Lhs)
		c.checkExpr(e.Rhs)
		return types.Bool{}
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return c.checkComparison(e)
	default:
		return c.checkArith(e)
	}
}

func (c *Checker) checkArith(e *ast.BinExpr) types.Ty {
	lhs := c.checkExpr(e.Lhs)
	rhs := c.checkExpr(e.Rhs)
	lf, rf := lhs.Flags(), rhs.Flags()
	if lf.IsDynamic() || rf.IsDynamic() {
		return types.Dynamic{}
	}
	ok := true
	if !lf.IsNumeric() {
		c.report(lerr.NewOperandNotNumber{Positioner: e.Lhs, Op: e.Op.String(), Operand: lhs.String()})
		ok = false
	}
	if !rf.IsNumeric() {
		c.report(lerr.NewOperandNotNumber{Positioner: e.Rhs, Op: e.Op.String(), Operand: rhs.String()})
		ok = false
	}
	if !ok {
		return types.Number()
	}
	// division and exponentiation escape the integers
	if lf.IsIntegral() && rf.IsIntegral() && e.Op != ast.OpDiv && e.Op != ast.OpPow {
		return types.Integer()
	}
	return types.Number()
}

func (c *Checker) checkConcat(e *ast.BinExpr) types.Ty {
	lhs := c.checkExpr(e.Lhs)
	rhs := c.checkExpr(e.Rhs)
	lf, rf := lhs.Flags(), rhs.Flags()
	if lf.IsDynamic() || rf.IsDynamic() {
		return types.Dynamic{}
	}
	ok := true
	if !lf.IsStringy() {
		c.report(lerr.NewOperandNotConcatable{Positioner: e.Lhs, Operand: lhs.String()})
		ok = false
	}
	if !rf.IsStringy() {
		c.report(lerr.NewOperandNotConcatable{Positioner: e.Rhs, Operand: rhs.String()})
		ok = false
	}
	if !ok {
		return types.String()
	}
	// literal concatenation matters: module names are often built this way
	if l, lok := singletonString(lhs); lok {
		if r, rok := singletonString(rhs); rok {
			return types.Str(l + r)
		}
	}
	return types.String()
}

// checkComparison enforces Lua's ordering rules: each operand must be
// purely numbers or purely strings, and both sides must agree.
func (c *Checker) checkComparison(e *ast.BinExpr) types.Ty {
	lhs := c.checkExpr(e.Lhs)
	rhs := c.checkExpr(e.Rhs)
	lf, rf := lhs.Flags(), rhs.Flags()
	if lf.IsDynamic() || rf.IsDynamic() {
		return types.Bool{}
	}
	lNum, lStr := lf&^types.FlagNumber == 0, lf&^types.FlagString == 0
	rNum, rStr := rf&^types.FlagNumber == 0, rf&^types.FlagString == 0
	ok := true
	if !lNum && !lStr {
		c.report(lerr.NewComparisonMixed{Positioner: e.Lhs, Op: e.Op.String(), Operand: lhs.String()})
		ok = false
	}
	if !rNum && !rStr {
		c.report(lerr.NewComparisonMixed{Positioner: e.Rhs, Op: e.Op.String(), Operand: rhs.String()})
		ok = false
	}
	if ok && lf != types.FlagNone && rf != types.FlagNone &&
		((lNum && !rNum) || (lStr && !rStr)) {
		c.report(lerr.NewComparisonMixed{Positioner: e.Rhs, Op: e.Op.String(), Operand: rhs.String()})
	}
	return types.Bool{}
}

func (c *Checker) checkUnExpr(e *ast.UnExpr) types.Ty {
	operand := c.checkExpr(e.Operand)
	f := operand.Flags()
	switch e.Op {
	case ast.OpNot:
		if f.IsTruthy() {
			return types.False()
		}
		if f.IsFalsy() {
			return types.True()
		}
		return types.Bool{}
	case ast.OpLen:
		if !f.IsLenable() {
			c.report(lerr.NewLenOperand{Positioner: e.Operand, Operand: operand.String()})
		}
		return types.Integer()
	default: // unary minus
		if f.IsDynamic() {
			return types.Dynamic{}
		}
		if !f.IsNumeric() {
			c.report(lerr.NewOperandNotNumber{Positioner: e.Operand, Op: e.Op.String(), Operand: operand.String()})
			return types.Number()
		}
		if n, ok := types.Base(operand).(*types.Numbers); ok && n.Kind == types.NumSet {
			negated := make([]int64, 0, len(n.Values))
			for _, v := range n.Values {
				negated = append(negated, -v)
			}
			return types.Ints(negated...)
		}
		if f.IsIntegral() {
			return types.Integer()
		}
		return types.Number()
	}
}

func (c *Checker) checkIndexRead(e *ast.IndexExpr) types.Ty {
	container := c.checkExpr(e.Prefix)
	key := c.checkExpr(e.Index)
	return c.indexRead(container, key, e)
}

// indexRead types `container[key]` in read position.
func (c *Checker) indexRead(container, key types.Ty, at ast.Positioner) types.Ty {
	if _, isNone := types.Base(key).(types.None); isNone {
		return types.None{}
	}
	switch base := types.Base(c.resolve(types.Base(container))).(type) {
	case types.Dynamic:
		return types.Dynamic{}
	case types.None:
		return types.None{}
	case types.VarTy:
		// unsolved: nothing is known about the structure yet
		return types.Dynamic{}
	case *types.Strings:
		return c.indexString(container, key, at)
	case *types.Tables:
		return c.indexTable(base, container, key, at)
	default:
		c.report(lerr.NewCannotIndex{Positioner: at, Container: container.String(), Key: key.String()})
		return types.None{}
	}
}

// indexString reads a method off the string metatable record.
func (c *Checker) indexString(container, key types.Ty, at ast.Positioner) types.Ty {
	meta := c.sess.strMeta
	name, isLit := singletonString(key)
	if meta == nil || !isLit {
		c.report(lerr.NewCannotIndex{Positioner: at, Container: container.String(), Key: key.String()})
		return types.None{}
	}
	if slot, ok := meta.FindField(name); ok {
		return slot.Ty
	}
	if meta.Row != 0 {
		if slot, ok := c.sess.ctx.FindRowField(meta.Row, name); ok {
			return slot.Ty
		}
	}
	c.report(lerr.NewMissingKey{Positioner: at, Container: meta.String(), Key: name})
	return types.None{}
}

func (c *Checker) indexTable(t *types.Tables, container, key types.Ty, at ast.Positioner) types.Ty {
	if key.Flags().IsDynamic() {
		return types.Dynamic{}
	}
	switch t.Shape {
	case types.ShapeRecord:
		name, ok := singletonString(key)
		if !ok {
			if key.Flags()&^types.FlagString == 0 && key.Flags() != types.FlagNone {
				c.report(lerr.NewNonConstantKey{Positioner: at, Container: container.String()})
			} else {
				c.report(lerr.NewCannotIndex{Positioner: at, Container: container.String(), Key: key.String()})
			}
			return types.None{}
		}
		if slot, found := t.FindField(name); found {
			return slot.Ty
		}
		if t.Row != 0 {
			if slot, found := c.sess.ctx.FindRowField(t.Row, name); found {
				return slot.Ty
			}
		}
		c.report(lerr.NewMissingKey{Positioner: at, Container: container.String(), Key: name})
		return types.None{}
	case types.ShapeTuple:
		k, ok := singletonInt(key)
		if !ok {
			if key.Flags().IsIntegral() && key.Flags() != types.FlagNone {
				c.report(lerr.NewNonConstantKey{Positioner: at, Container: container.String()})
			} else {
				c.report(lerr.NewCannotIndex{Positioner: at, Container: container.String(), Key: key.String()})
			}
			return types.None{}
		}
		if k < 1 || int(k) > len(t.Elems) {
			c.report(lerr.NewMissingKey{Positioner: at, Container: container.String(), Key: key.String()})
			return types.None{}
		}
		return t.Elems[k-1].Ty
	case types.ShapeArray:
		if !key.Flags().IsIntegral() {
			c.report(lerr.NewArrayIndexNotInteger{Positioner: at, Container: container.String(), Key: key.String()})
			return types.None{}
		}
		return t.Elem.Ty
	case types.ShapeMap:
		if err := types.Sub(key, t.Key, c.sess.ctx); err != nil {
			c.report(lerr.NewCannotIndex{
				Positioner: at,
				Container:  container.String(),
				Key:        key.String(),
				Notes:      typeNotes(err, at),
			})
			return types.None{}
		}
		return t.Value.Ty
	default: // ShapeAll, ShapeEmpty: no structure to index
		c.report(lerr.NewCannotIndex{Positioner: at, Container: container.String(), Key: key.String()})
		return types.None{}
	}
}

func (c *Checker) checkCall(e *ast.CallExpr) types.TySeq {
	fnTy := c.checkExpr(e.Func)
	c.sess.logger.Debug("checking call", "fn", ast.Slog(e.Func), "type", fnTy)
	return c.call(fnTy, e, nil, nil, e.Args)
}

func (c *Checker) checkMethodCall(e *ast.MethodCallExpr) types.TySeq {
	recv := c.checkExpr(e.Recv)
	methodTy := c.indexRead(recv, types.Str(e.Method.Name), e.Method)
	return c.call(methodTy, e, e.Recv, recv, e.Args)
}

// call checks fn(args) or recv:m(args) and returns the result sequence.
// recvTy is non-nil for method calls; tagged builtins get their special
// behavior applied after the structural check.
func (c *Checker) call(fnTy types.Ty, at ast.Positioner, recvAt ast.Positioner, recvTy types.Ty, args []ast.Expr) types.TySeq {
	var argSeq types.TySeq
	var rets types.TySeq

	switch fn := types.Base(c.resolve(types.Base(fnTy))).(type) {
	case types.Dynamic:
		argSeq = c.checkExprList(args)
		rets = types.TySeq{Tail: types.Dynamic{}}
	case types.None:
		argSeq = c.checkExprList(args)
		rets = types.TySeq{Tail: types.None{}}
	case types.VarTy:
		// calling a value whose type is still being inferred is not an
		// error in itself; its results stay unchecked
		argSeq = c.checkExprList(args)
		rets = types.TySeq{Tail: types.Dynamic{}}
	case *types.Functions:
		if fn.All {
			argSeq = c.checkExprList(args)
			rets = types.TySeq{Tail: types.Dynamic{}}
			break
		}
		argSeq = c.checkArgs(args, fn.Sig.Params, recvTy != nil)
		if recvTy != nil {
			argSeq = types.TySeq{
				Head: append([]types.Ty{recvTy}, argSeq.Head...),
				Tail: argSeq.Tail,
			}
		}
		rets = c.checkSigCall(*fn.Sig, at, recvAt, recvTy != nil, args, argSeq)
	default:
		argSeq = c.checkExprList(args)
		c.report(lerr.NewNotCallable{Positioner: at, Found: fnTy.String()})
		rets = types.TySeq{Tail: types.None{}}
	}

	for _, tag := range types.TagsOf(fnTy) {
		rets = c.applyCallTag(tag, at, args, argSeq, rets)
	}
	return rets
}

// checkArgs types the argument list, handing each argument the
// parameter type it will land in as context.
func (c *Checker) checkArgs(args []ast.Expr, params types.TySeq, method bool) types.TySeq {
	off := 0
	if method {
		off = 1
	}
	seq := types.TySeq{}
	for i, a := range args {
		if i == len(args)-1 && ast.IsMultiValue(a) {
			last := c.exprSeq(a)
			seq.Head = append(seq.Head, last.Head...)
			seq.Tail = last.Tail
			break
		}
		seq.Head = append(seq.Head, c.checkExprExpecting(a, params.At(i+off)))
	}
	return seq
}

// checkSigCall verifies argSeq against one signature. For method calls
// argSeq already has the receiver at index 0.
func (c *Checker) checkSigCall(sig types.FuncSig, at ast.Positioner, recvAt ast.Positioner, method bool, args []ast.Expr, argSeq types.TySeq) types.TySeq {
	params := sig.Params

	// every parameter up to the last one that rejects nil is mandatory
	required := 0
	for i, p := range params.Head {
		if types.Sub(types.Nil{}, p, c.sess.ctx) != nil {
			required = i + 1
		}
	}
	supplied := len(argSeq.Head)
	if argSeq.Tail != nil && supplied < required {
		// an expanded tail may cover the rest; give it the benefit
		supplied = required
	}
	if supplied < required {
		c.report(lerr.NewNotEnoughArgs{Positioner: at, Required: required, Got: supplied})
	}
	if params.Tail == nil && len(argSeq.Head) > len(params.Head) {
		c.report(lerr.NewTooManyArgs{Positioner: at, Accepted: len(params.Head), Got: len(argSeq.Head)})
	}

	n := len(argSeq.Head)
	if params.Tail == nil && len(params.Head) < n {
		n = len(params.Head)
	}
	for i := 0; i < n; i++ {
		src, dst := argSeq.At(i), params.At(i)
		if err := types.Sub(src, dst, c.sess.ctx); err != nil {
			pos := argPos(at, recvAt, args, i, method)
			c.report(lerr.NewArgMismatch{
				Positioner: pos,
				Index:      i,
				Method:     method,
				Source:     src.String(),
				Target:     dst.String(),
				Notes:      typeNotes(err, pos),
			})
		}
	}
	return sig.Returns
}

// argPos finds the span to blame for argument i, counting the receiver
// as argument 0 on method calls.
func argPos(at ast.Positioner, recvAt ast.Positioner, args []ast.Expr, i int, method bool) ast.Positioner {
	if method {
		if i == 0 {
			if recvAt != nil {
				return recvAt
			}
			return at
		}
		i--
	}
	if i < len(args) {
		return args[i]
	}
	return at
}

// applyCallTag runs the checker-visible behavior of tagged builtins
// once their call has been checked structurally.
func (c *Checker) applyCallTag(tag types.Tag, at ast.Positioner, args []ast.Expr, argSeq types.TySeq, rets types.TySeq) types.TySeq {
	switch tag {
	case types.TagRequire:
		return c.checkRequire(at, args, argSeq, rets)
	case types.TagAssert:
		if len(args) > 0 {
			c.applyRefinement(c.refine(args[0]).truthy)
		}
	case types.TagAssertNot:
		if len(args) > 0 {
			c.applyRefinement(c.refine(args[0]).falsy)
		}
	case types.TagAssertType:
		c.applyAssertType(args)
	}
	return rets
}

// applyAssertType narrows `assert_type(x, 'tag')` like a checked
// `type(x) == 'tag'` test that always passes.
func (c *Checker) applyAssertType(args []ast.Expr) {
	if len(args) < 2 {
		return
	}
	name, ok := args[0].(*ast.NameExpr)
	if !ok {
		return
	}
	lit, ok := args[1].(*ast.StringLit)
	if !ok {
		return
	}
	mask, ok := types.CategoryByName(lit.Value)
	if !ok {
		return
	}
	if b := c.lookup(name.Name); b != nil && !b.slot.Ty.Flags().IsDynamic() {
		c.setSlot(b, b.slot.WithTy(types.Restrict(b.slot.Ty, mask, c.sess.ctx)))
	}
}

// resolve chases a solved inference variable to its best known type.
func (c *Checker) resolve(t types.Ty) types.Ty {
	if v, ok := t.(types.VarTy); ok {
		if solved := c.sess.ctx.ResolveTVar(v.Var); solved != nil {
			return solved
		}
	}
	return t
}

func asFunctions(t types.Ty) (*types.Functions, bool) {
	if t == nil {
		return nil, false
	}
	f, ok := types.Base(t).(*types.Functions)
	return f, ok
}

func singletonString(t types.Ty) (string, bool) {
	s, ok := types.Base(t).(*types.Strings)
	if !ok || s.Kind != types.StrSet || len(s.Values) != 1 {
		return "", false
	}
	return s.Values[0], true
}

func singletonInt(t types.Ty) (int64, bool) {
	n, ok := types.Base(t).(*types.Numbers)
	if !ok || n.Kind != types.NumSet || len(n.Values) != 1 {
		return 0, false
	}
	return n.Values[0], true
}

// typeNotes renders a failed relation's cause chain as notes. The types
// carry no source positions, so every note points at the failing site.
func typeNotes(err *types.TypeError, at ast.Positioner) []lerr.Cause {
	var notes []lerr.Cause
	for cause := err.Cause; cause != nil; cause = cause.Cause {
		notes = append(notes, lerr.NoteAt(cause.Msg, at))
	}
	return notes
}
