// Package parser builds luatic syntax trees from Lua 5.1 source, including
// the type annotations the lexer surfaces as inline tokens. The parser
// recovers from syntax errors at statement boundaries so the checker can
// work on partial trees.
package parser

import (
	"fmt"
	"go/token"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/lexer"
)

type Parser struct {
	lex     *lexer.Lexer
	cur     lexer.Token
	peek    lexer.Token
	prevEnd token.Pos
	errs    *lerr.Errors

	// pendingFunc holds a `--v` annotation until the next function literal
	// claims it.
	pendingFunc   *ast.FuncAnnot
	pendingFuncAt ast.Span
}

// Parse parses one unit. It always returns a tree, possibly partial; the
// accompanying diagnostics say how much to trust it.
func Parse(fset *token.FileSet, filename string, src []byte) (*ast.File, *lerr.Errors) {
	file := fset.AddFile(filename, -1, len(src))
	p := &Parser{lex: lexer.New(file, string(src))}
	p.cur = p.pull()
	p.peek = p.pull()

	block := p.parseBlock()
	for p.cur.Kind != lexer.EOF {
		p.errorf(p.cur, "`%s` expected near `%s`", lexer.EOF, describe(p.cur))
		p.next()
		more := p.parseBlock()
		block.Stmts = append(block.Stmts, more.Stmts...)
		if end := more.End(); end > block.Span.PosEnd {
			block.Span.PosEnd = end
		}
	}
	unit := &ast.File{
		Span:  ast.Span{PosStart: file.Pos(0), PosEnd: file.Pos(len(src))},
		Name:  filename,
		Block: block,
	}
	return unit, p.errs
}

// pull reads the next token, reporting and dropping illegal ones.
func (p *Parser) pull() lexer.Token {
	for {
		tok := p.lex.NextToken()
		if tok.Kind != lexer.Illegal {
			return tok
		}
		p.errs = p.errs.With(lerr.New(lerr.NewParse{Positioner: tok, ParserMessage: tok.Str}))
	}
}

func (p *Parser) next() {
	p.prevEnd = p.cur.End()
	p.cur = p.peek
	p.peek = p.pull()
}

func (p *Parser) spanFrom(start token.Pos) ast.Span {
	end := p.prevEnd
	if end < start {
		end = start
	}
	return ast.Span{PosStart: start, PosEnd: end}
}

func (p *Parser) error(at ast.Positioner, msg string) {
	p.errs = p.errs.With(lerr.New(lerr.NewParse{Positioner: ast.SpanOf(at), ParserMessage: msg}))
}

func (p *Parser) errorf(at ast.Positioner, format string, args ...any) {
	p.error(at, fmt.Sprintf(format, args...))
}

func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.EOF:
		return "<eof>"
	case lexer.AnnotEnd:
		return "<end of annotation>"
	default:
		if tok.Lexeme != "" {
			return tok.Lexeme
		}
		return tok.Kind.String()
	}
}

// expect consumes the current token when it matches; otherwise it reports
// and leaves the token in place for the caller to recover around.
func (p *Parser) expect(kind lexer.Kind) lexer.Token {
	tok := p.cur
	if tok.Kind != kind {
		p.errorf(tok, "`%s` expected near `%s`", kind, describe(tok))
		return tok
	}
	p.next()
	return tok
}

func (p *Parser) expectName() (lexer.Token, bool) {
	tok := p.cur
	if tok.Kind != lexer.Name {
		p.errorf(tok, "`%s` expected near `%s`", lexer.Name, describe(tok))
		return tok, false
	}
	p.next()
	return tok, true
}

// synchronize skips tokens to the next plausible statement boundary.
func (p *Parser) synchronize() {
	for {
		switch p.cur.Kind {
		case lexer.EOF, lexer.KwEnd, lexer.KwElse, lexer.KwElseif, lexer.KwUntil,
			lexer.KwIf, lexer.KwWhile, lexer.KwFor, lexer.KwRepeat, lexer.KwFunction,
			lexer.KwLocal, lexer.KwReturn, lexer.KwBreak, lexer.KwDo:
			return
		case lexer.Semi:
			p.next()
			return
		}
		p.next()
	}
}

func (p *Parser) blockEnd() bool {
	switch p.cur.Kind {
	case lexer.EOF, lexer.KwEnd, lexer.KwElse, lexer.KwElseif, lexer.KwUntil:
		return true
	}
	return false
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur.Pos()
	blk := &ast.Block{Span: ast.Span{PosStart: start, PosEnd: start}}
	for !p.blockEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			blk.Stmts = append(blk.Stmts, stmt)
			if p.pendingFunc != nil {
				p.error(p.pendingFuncAt, "`--v` annotation has no function to attach to")
				p.pendingFunc = nil
			}
		}
	}
	if p.pendingFunc != nil {
		p.error(p.pendingFuncAt, "`--v` annotation has no function to attach to")
		p.pendingFunc = nil
	}
	if len(blk.Stmts) > 0 {
		blk.Span = ast.Span{PosStart: start, PosEnd: p.prevEnd}
	}
	return blk
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case lexer.Semi:
		p.next()
		return nil
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwDo:
		return p.parseDo()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwRepeat:
		return p.parseRepeat()
	case lexer.KwFunction:
		return p.parseFunctionStmt()
	case lexer.KwLocal:
		return p.parseLocal()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwBreak:
		start := p.cur.Pos()
		p.next()
		return &ast.BreakStmt{Span: p.spanFrom(start)}
	case lexer.AnnotPragmaBegin:
		return p.parsePragma()
	case lexer.AnnotFuncBegin:
		p.parseFuncAnnot()
		return nil
	case lexer.AnnotTypeBegin, lexer.AnnotReturnsBegin:
		p.error(p.cur, "stray type annotation")
		p.next()
		p.skipToAnnotEnd()
		return nil
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.cur.Pos()
	p.next() // if
	stmt := &ast.IfStmt{}
	for {
		cond := p.parseExpr(0)
		p.expect(lexer.KwThen)
		body := p.parseBlock()
		stmt.Clauses = append(stmt.Clauses, ast.IfClause{
			Span: ast.Span{PosStart: cond.Pos(), PosEnd: p.prevEnd},
			Cond: cond,
			Body: body,
		})
		if p.cur.Kind != lexer.KwElseif {
			break
		}
		p.next()
	}
	if p.cur.Kind == lexer.KwElse {
		p.next()
		stmt.Else = p.parseBlock()
	}
	p.expect(lexer.KwEnd)
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.cur.Pos()
	p.next() // while
	cond := p.parseExpr(0)
	p.expect(lexer.KwDo)
	body := p.parseBlock()
	p.expect(lexer.KwEnd)
	return &ast.WhileStmt{Span: p.spanFrom(start), Cond: cond, Body: body}
}

func (p *Parser) parseDo() ast.Stmt {
	start := p.cur.Pos()
	p.next() // do
	body := p.parseBlock()
	p.expect(lexer.KwEnd)
	return &ast.DoStmt{Span: p.spanFrom(start), Body: body}
}

func (p *Parser) parseRepeat() ast.Stmt {
	start := p.cur.Pos()
	p.next() // repeat
	body := p.parseBlock()
	p.expect(lexer.KwUntil)
	cond := p.parseExpr(0)
	return &ast.RepeatStmt{Span: p.spanFrom(start), Body: body, Cond: cond}
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.cur.Pos()
	p.next() // for
	first := p.parseNameDecl()
	p.attachPendingNameAnnots([]*ast.NameDecl{first})

	if p.cur.Kind == lexer.Assign {
		p.next()
		startExpr := p.parseExpr(0)
		p.expect(lexer.Comma)
		limit := p.parseExpr(0)
		var step ast.Expr
		if p.cur.Kind == lexer.Comma {
			p.next()
			step = p.parseExpr(0)
		}
		p.expect(lexer.KwDo)
		body := p.parseBlock()
		p.expect(lexer.KwEnd)
		return &ast.NumericForStmt{
			Span: p.spanFrom(start), Var: first,
			Start: startExpr, Limit: limit, Step: step, Body: body,
		}
	}

	vars := []*ast.NameDecl{first}
	for p.cur.Kind == lexer.Comma {
		p.next()
		p.attachPendingNameAnnots(vars)
		vars = append(vars, p.parseNameDecl())
		p.attachPendingNameAnnots(vars)
	}
	p.expect(lexer.KwIn)
	exprs := p.parseExprList()
	p.expect(lexer.KwDo)
	body := p.parseBlock()
	p.expect(lexer.KwEnd)
	return &ast.GenericForStmt{Span: p.spanFrom(start), Vars: vars, Exprs: exprs, Body: body}
}

func (p *Parser) parseFunctionStmt() ast.Stmt {
	start := p.cur.Pos()
	p.next() // function
	nameTok, ok := p.expectName()
	if !ok {
		p.synchronize()
		return nil
	}
	stmt := &ast.FuncDeclStmt{Name: ast.Name{Span: nameTok.Span(), Name: nameTok.Lexeme}}
	for p.cur.Kind == lexer.Dot {
		p.next()
		fieldTok, ok := p.expectName()
		if !ok {
			break
		}
		stmt.Path = append(stmt.Path, ast.Name{Span: fieldTok.Span(), Name: fieldTok.Lexeme})
	}
	if p.cur.Kind == lexer.Colon {
		p.next()
		methodTok, ok := p.expectName()
		if ok {
			stmt.Method = &ast.Name{Span: methodTok.Span(), Name: methodTok.Lexeme}
		}
	}
	stmt.Func = p.parseFuncBody(start)
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseLocal() ast.Stmt {
	start := p.cur.Pos()
	p.next() // local
	if p.cur.Kind == lexer.KwFunction {
		p.next()
		nameTok, ok := p.expectName()
		if !ok {
			p.synchronize()
			return nil
		}
		fn := p.parseFuncBody(start)
		return &ast.FuncDeclStmt{
			Span:  p.spanFrom(start),
			Name:  ast.Name{Span: nameTok.Span(), Name: nameTok.Lexeme},
			Local: true,
			Func:  fn,
		}
	}

	names := p.parseNameList()
	var exprs []ast.Expr
	if p.cur.Kind == lexer.Assign {
		p.next()
		exprs = p.parseExprList()
		// `local x = 1 --: integer` annotates the name, not the value
		p.attachPendingNameAnnots(names)
	}
	return &ast.LocalStmt{Span: p.spanFrom(start), Names: names, Exprs: exprs}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.cur.Pos()
	p.next() // return
	var exprs []ast.Expr
	if !p.blockEnd() && p.cur.Kind != lexer.Semi {
		exprs = p.parseExprList()
	}
	return &ast.ReturnStmt{Span: p.spanFrom(start), Exprs: exprs}
}

// parseExprStatement parses either an assignment or a call statement.
func (p *Parser) parseExprStatement() ast.Stmt {
	start := p.cur.Pos()
	first := p.parseSuffixedExpr()

	if p.cur.Kind == lexer.Assign || p.cur.Kind == lexer.Comma || p.cur.Kind == lexer.AnnotTypeBegin {
		targets := []ast.Expr{first}
		annots := []*ast.SlotAnnot{nil}
		for {
			if p.cur.Kind == lexer.AnnotTypeBegin {
				slots, at := p.parseSlotAnnots()
				p.attachTargetAnnots(targets, annots, slots, at)
				continue
			}
			if p.cur.Kind != lexer.Comma {
				break
			}
			p.next()
			for p.cur.Kind == lexer.AnnotTypeBegin {
				slots, at := p.parseSlotAnnots()
				p.attachTargetAnnots(targets, annots, slots, at)
			}
			targets = append(targets, p.parseSuffixedExpr())
			annots = append(annots, nil)
		}
		p.expect(lexer.Assign)
		exprs := p.parseExprList()
		for p.cur.Kind == lexer.AnnotTypeBegin {
			slots, at := p.parseSlotAnnots()
			p.attachTargetAnnots(targets, annots, slots, at)
		}
		for _, target := range targets {
			switch target.(type) {
			case *ast.NameExpr, *ast.IndexExpr, *ast.BadExpr:
			default:
				p.errorf(target, "cannot assign to `%s`", ast.ExprString(target))
			}
		}
		return &ast.AssignStmt{Span: p.spanFrom(start), Targets: targets, Annots: annots, Exprs: exprs}
	}

	switch first.(type) {
	case *ast.CallExpr, *ast.MethodCallExpr:
		return &ast.CallStmt{Span: p.spanFrom(start), Call: first}
	case *ast.BadExpr:
		p.synchronize()
		return nil
	default:
		p.errorf(first, "unexpected expression statement near `%s`", ast.ExprString(first))
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseNameDecl() *ast.NameDecl {
	tok, ok := p.expectName()
	if !ok {
		return &ast.NameDecl{Span: tok.Span()}
	}
	return &ast.NameDecl{Span: tok.Span(), Name: tok.Lexeme}
}

// parseNameList parses `n1, n2, ...` where a `--:` annotation may follow a
// name or the comma after it, and a final annotation may carry one type per
// trailing name.
func (p *Parser) parseNameList() []*ast.NameDecl {
	decls := []*ast.NameDecl{p.parseNameDecl()}
	for {
		switch p.cur.Kind {
		case lexer.AnnotTypeBegin:
			p.attachPendingNameAnnots(decls)
		case lexer.Comma:
			p.next()
			p.attachPendingNameAnnots(decls)
			decls = append(decls, p.parseNameDecl())
		default:
			return decls
		}
	}
}

// attachPendingNameAnnots consumes any `--:` annotations at the current
// position and attaches their types to the most recent names.
func (p *Parser) attachPendingNameAnnots(decls []*ast.NameDecl) {
	for p.cur.Kind == lexer.AnnotTypeBegin {
		slots, at := p.parseSlotAnnots()
		p.attachAnnots(decls, slots, at)
	}
}

// attachAnnots attaches k annotation slots to the k most recent names.
func (p *Parser) attachAnnots(decls []*ast.NameDecl, slots []*ast.SlotAnnot, at ast.Span) {
	if len(slots) > len(decls) {
		p.error(at, "stray type annotation: more types than names")
		slots = slots[len(slots)-len(decls):]
	}
	base := len(decls) - len(slots)
	for i, slot := range slots {
		decl := decls[base+i]
		if decl.Annot != nil {
			p.errorf(slot, "`%s` already has a type annotation", decl.Name)
			continue
		}
		decl.Annot = slot
	}
}

// attachTargetAnnots is attachAnnots for assignment targets, which keep
// their annotations in a parallel slice.
func (p *Parser) attachTargetAnnots(targets []ast.Expr, annots []*ast.SlotAnnot, slots []*ast.SlotAnnot, at ast.Span) {
	if len(slots) > len(targets) {
		p.error(at, "stray type annotation: more types than assignment targets")
		slots = slots[len(slots)-len(targets):]
	}
	base := len(targets) - len(slots)
	for i, slot := range slots {
		if annots[base+i] != nil {
			p.errorf(slot, "`%s` already has a type annotation", ast.ExprString(targets[base+i]))
			continue
		}
		annots[base+i] = slot
	}
}

// parseFuncBody parses `(params) [--> rets] block end`, attaching any
// pending `--v` annotation.
func (p *Parser) parseFuncBody(start token.Pos) *ast.FuncExpr {
	fn := &ast.FuncExpr{}
	p.expect(lexer.LParen)
	if p.cur.Kind != lexer.RParen && p.cur.Kind != lexer.EOF {
		for {
			if p.cur.Kind == lexer.Ellipsis {
				p.next()
				fn.Vararg = true
				if p.cur.Kind == lexer.AnnotTypeBegin {
					slots, at := p.parseSlotAnnots()
					if len(slots) == 1 {
						fn.VarargAnnot = slots[0]
					} else {
						p.error(at, "the varargs annotation takes exactly one type")
					}
				}
				break
			}
			fn.Params = append(fn.Params, p.parseNameDecl())
			p.attachPendingNameAnnots(fn.Params)
			if p.cur.Kind != lexer.Comma {
				break
			}
			p.next()
			p.attachPendingNameAnnots(fn.Params)
		}
	}
	p.expect(lexer.RParen)
	if p.cur.Kind == lexer.AnnotReturnsBegin {
		fn.Returns = p.parseReturnsAnnot()
	}
	if p.pendingFunc != nil {
		fn.Annot = p.pendingFunc
		p.pendingFunc = nil
	}
	fn.Body = p.parseBlock()
	p.expect(lexer.KwEnd)
	fn.Span = p.spanFrom(start)
	return fn
}

// --- expressions ---

// Binary operator precedences from the Lua 5.1 grammar. Concat and `^` are
// right associative, which their lower right precedence encodes.
var binPrec = map[lexer.Kind]struct{ left, right int }{
	lexer.KwOr:    {1, 1},
	lexer.KwAnd:   {2, 2},
	lexer.Lt:      {3, 3},
	lexer.Gt:      {3, 3},
	lexer.LtEq:    {3, 3},
	lexer.GtEq:    {3, 3},
	lexer.NotEq:   {3, 3},
	lexer.Eq:      {3, 3},
	lexer.Concat:  {5, 4},
	lexer.Plus:    {6, 6},
	lexer.Minus:   {6, 6},
	lexer.Star:    {7, 7},
	lexer.Slash:   {7, 7},
	lexer.Percent: {7, 7},
	lexer.Caret:   {10, 9},
}

const unaryPrec = 8

var binOps = map[lexer.Kind]ast.BinOp{
	lexer.KwOr:    ast.OpOr,
	lexer.KwAnd:   ast.OpAnd,
	lexer.Lt:      ast.OpLt,
	lexer.Gt:      ast.OpGt,
	lexer.LtEq:    ast.OpLe,
	lexer.GtEq:    ast.OpGe,
	lexer.NotEq:   ast.OpNe,
	lexer.Eq:      ast.OpEq,
	lexer.Concat:  ast.OpConcat,
	lexer.Plus:    ast.OpAdd,
	lexer.Minus:   ast.OpSub,
	lexer.Star:    ast.OpMul,
	lexer.Slash:   ast.OpDiv,
	lexer.Percent: ast.OpMod,
	lexer.Caret:   ast.OpPow,
}

func (p *Parser) parseExprList() []ast.Expr {
	exprs := []ast.Expr{p.parseExpr(0)}
	for p.cur.Kind == lexer.Comma {
		p.next()
		exprs = append(exprs, p.parseExpr(0))
	}
	return exprs
}

func (p *Parser) parseExpr(limit int) ast.Expr {
	var left ast.Expr
	start := p.cur.Pos()
	switch p.cur.Kind {
	case lexer.KwNot:
		p.next()
		operand := p.parseExpr(unaryPrec)
		left = &ast.UnExpr{Span: p.spanFrom(start), Op: ast.OpNot, Operand: operand}
	case lexer.Hash:
		p.next()
		operand := p.parseExpr(unaryPrec)
		left = &ast.UnExpr{Span: p.spanFrom(start), Op: ast.OpLen, Operand: operand}
	case lexer.Minus:
		p.next()
		operand := p.parseExpr(unaryPrec)
		left = &ast.UnExpr{Span: p.spanFrom(start), Op: ast.OpNeg, Operand: operand}
	default:
		left = p.parseSimpleExpr()
	}

	for {
		prec, ok := binPrec[p.cur.Kind]
		if !ok || prec.left <= limit {
			return left
		}
		op := binOps[p.cur.Kind]
		p.next()
		right := p.parseExpr(prec.right)
		left = &ast.BinExpr{Span: ast.SpanBetween(left, right), Op: op, Lhs: left, Rhs: right}
	}
}

func (p *Parser) parseSimpleExpr() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case lexer.Number:
		p.next()
		return &ast.NumberLit{Span: tok.Span(), Value: tok.Num}
	case lexer.String:
		p.next()
		return &ast.StringLit{Span: tok.Span(), Value: tok.Str}
	case lexer.KwNil:
		p.next()
		return &ast.NilLit{Span: tok.Span()}
	case lexer.KwTrue:
		p.next()
		return &ast.BoolLit{Span: tok.Span(), Value: true}
	case lexer.KwFalse:
		p.next()
		return &ast.BoolLit{Span: tok.Span(), Value: false}
	case lexer.Ellipsis:
		p.next()
		return &ast.VarargExpr{Span: tok.Span()}
	case lexer.KwFunction:
		p.next()
		return p.parseFuncBody(tok.Pos())
	case lexer.LBrace:
		return p.parseTable()
	default:
		return p.parseSuffixedExpr()
	}
}

func (p *Parser) parseSuffixedExpr() ast.Expr {
	e := p.parsePrimaryExpr()
	for {
		switch p.cur.Kind {
		case lexer.Dot:
			p.next()
			nameTok, ok := p.expectName()
			if !ok {
				return e
			}
			e = &ast.IndexExpr{
				Span:   ast.SpanBetween(e, nameTok),
				Prefix: e,
				Index:  &ast.StringLit{Span: nameTok.Span(), Value: nameTok.Lexeme},
			}
		case lexer.LBracket:
			p.next()
			idx := p.parseExpr(0)
			closing := p.expect(lexer.RBracket)
			e = &ast.IndexExpr{Span: ast.SpanBetween(e, closing), Prefix: e, Index: idx}
		case lexer.Colon:
			p.next()
			nameTok, ok := p.expectName()
			if !ok {
				return e
			}
			args, ok := p.parseCallArgs()
			if !ok {
				p.errorf(p.cur, "function arguments expected near `%s`", describe(p.cur))
				return e
			}
			e = &ast.MethodCallExpr{
				Span:   ast.Span{PosStart: e.Pos(), PosEnd: p.prevEnd},
				Recv:   e,
				Method: ast.Name{Span: nameTok.Span(), Name: nameTok.Lexeme},
				Args:   args,
			}
		case lexer.LParen, lexer.LBrace, lexer.String:
			args, _ := p.parseCallArgs()
			e = &ast.CallExpr{Span: ast.Span{PosStart: e.Pos(), PosEnd: p.prevEnd}, Func: e, Args: args}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case lexer.Name:
		p.next()
		return &ast.NameExpr{Span: tok.Span(), Name: tok.Lexeme}
	case lexer.LParen:
		p.next()
		inner := p.parseExpr(0)
		closing := p.expect(lexer.RParen)
		return &ast.ParenExpr{Span: ast.SpanBetween(tok, closing), Inner: inner}
	default:
		p.errorf(tok, "unexpected symbol near `%s`", describe(tok))
		p.next()
		return &ast.BadExpr{Span: tok.Span()}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, bool) {
	switch p.cur.Kind {
	case lexer.LParen:
		p.next()
		var args []ast.Expr
		if p.cur.Kind != lexer.RParen {
			args = p.parseExprList()
		}
		p.expect(lexer.RParen)
		return args, true
	case lexer.String:
		tok := p.cur
		p.next()
		return []ast.Expr{&ast.StringLit{Span: tok.Span(), Value: tok.Str}}, true
	case lexer.LBrace:
		return []ast.Expr{p.parseTable()}, true
	default:
		return nil, false
	}
}

func (p *Parser) parseTable() ast.Expr {
	start := p.cur.Pos()
	p.expect(lexer.LBrace)
	table := &ast.TableExpr{}
	for p.cur.Kind != lexer.RBrace && p.cur.Kind != lexer.EOF {
		var item ast.TableItem
		switch {
		case p.cur.Kind == lexer.LBracket:
			p.next()
			item.Key = p.parseExpr(0)
			p.expect(lexer.RBracket)
			p.expect(lexer.Assign)
			item.Value = p.parseExpr(0)
		case p.cur.Kind == lexer.Name && p.peek.Kind == lexer.Assign:
			nameTok := p.cur
			p.next()
			p.next()
			item.Key = &ast.StringLit{Span: nameTok.Span(), Value: nameTok.Lexeme}
			item.Value = p.parseExpr(0)
		default:
			item.Value = p.parseExpr(0)
		}
		table.Items = append(table.Items, item)
		if p.cur.Kind == lexer.Comma || p.cur.Kind == lexer.Semi {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBrace)
	table.Span = p.spanFrom(start)
	return table
}
