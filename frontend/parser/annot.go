package parser

import (
	"go/token"
	"strings"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lexer"
)

// This file parses the annotation sub-language: slot annotations (`--:`),
// return annotations (`-->`), function annotations (`--v`), pragmas (`--#`)
// and the type syntax they share.

func (p *Parser) skipToAnnotEnd() {
	for p.cur.Kind != lexer.AnnotEnd && p.cur.Kind != lexer.EOF {
		p.next()
	}
	if p.cur.Kind == lexer.AnnotEnd {
		p.next()
	}
}

func (p *Parser) expectAnnotEnd() {
	if p.cur.Kind != lexer.AnnotEnd {
		p.errorf(p.cur, "malformed annotation near `%s`", describe(p.cur))
		p.skipToAnnotEnd()
		return
	}
	p.next()
}

// parseSlotAnnots parses a whole `--: s1, s2, ...` annotation and returns
// the slots together with the annotation's span.
func (p *Parser) parseSlotAnnots() ([]*ast.SlotAnnot, ast.Span) {
	opener := p.cur
	p.next()
	if p.cur.Kind == lexer.AnnotEnd {
		p.error(opener, "type expected in annotation")
		p.next()
		return nil, opener.Span()
	}
	slots := []*ast.SlotAnnot{p.parseSlot()}
	for p.cur.Kind == lexer.Comma {
		p.next()
		slots = append(slots, p.parseSlot())
	}
	at := ast.Span{PosStart: opener.Pos(), PosEnd: p.prevEnd}
	p.expectAnnotEnd()
	return slots, at
}

// parseReturnsAnnot parses `--> T` or `--> (T1, T2, ...)` after a function
// header.
func (p *Parser) parseReturnsAnnot() *ast.TySeqAnnot {
	p.next()
	seq := p.parseTySeq()
	p.expectAnnotEnd()
	return seq
}

// parseFuncAnnot parses `--v [attr] function(a: T, ...: V) --> R` and
// leaves it pending for the next function literal.
func (p *Parser) parseFuncAnnot() {
	opener := p.cur
	p.next()
	annot := &ast.FuncAnnot{}
	for p.cur.Kind == lexer.LBracket {
		annot.Attrs = append(annot.Attrs, p.parseAttr())
	}
	if p.cur.Kind != lexer.KwFunction {
		p.errorf(p.cur, "`function` expected near `%s`", describe(p.cur))
		p.skipToAnnotEnd()
		return
	}
	fnTy, ok := p.parseFuncType().(*ast.FuncTy)
	if !ok {
		p.error(opener, "a `--v` annotation must carry a parameter list")
		p.skipToAnnotEnd()
		return
	}
	annot.Params = fnTy.Params
	annot.Vararg = fnTy.Vararg
	annot.Returns = fnTy.Returns
	annot.Span = ast.Span{PosStart: opener.Pos(), PosEnd: p.prevEnd}
	p.expectAnnotEnd()

	if p.pendingFunc != nil {
		p.error(p.pendingFuncAt, "`--v` annotation has no function to attach to")
	}
	p.pendingFunc = annot
	p.pendingFuncAt = annot.Span
}

// parsePragma parses `--# assume ...`, `--# type ...` and `--# open ...`.
func (p *Parser) parsePragma() ast.Stmt {
	start := p.cur.Pos()
	p.next()
	if p.cur.Kind != lexer.Name {
		p.errorf(p.cur, "pragma expected near `%s`", describe(p.cur))
		p.skipToAnnotEnd()
		return nil
	}
	switch p.cur.Lexeme {
	case "assume":
		p.next()
		return p.parseAssume(start)
	case "type":
		p.next()
		return p.parseTypeDecl(start)
	case "open":
		p.next()
		return p.parseOpen(start)
	default:
		p.errorf(p.cur, "unrecognized pragma `%s`", p.cur.Lexeme)
		p.skipToAnnotEnd()
		return nil
	}
}

func (p *Parser) parseAssume(start token.Pos) ast.Stmt {
	stmt := &ast.AssumeStmt{}
	if p.cur.Kind == lexer.Name && p.cur.Lexeme == "global" && p.peek.Kind == lexer.Name {
		stmt.Global = true
		p.next()
	}
	nameTok, ok := p.expectName()
	if !ok {
		p.skipToAnnotEnd()
		return nil
	}
	stmt.Name = ast.Name{Span: nameTok.Span(), Name: nameTok.Lexeme}
	for p.cur.Kind == lexer.Dot {
		p.next()
		fieldTok, ok := p.expectName()
		if !ok {
			p.skipToAnnotEnd()
			return nil
		}
		stmt.Path = append(stmt.Path, ast.Name{Span: fieldTok.Span(), Name: fieldTok.Lexeme})
	}
	p.expect(lexer.Colon)
	stmt.Slot = p.parseSlot()
	end := p.prevEnd
	p.expectAnnotEnd()
	stmt.Span = ast.Span{PosStart: start, PosEnd: end}
	return stmt
}

func (p *Parser) parseTypeDecl(start token.Pos) ast.Stmt {
	stmt := &ast.TypeDeclStmt{Vis: ast.TypeVisScoped}
	if p.cur.Kind == lexer.KwLocal {
		stmt.Vis = ast.TypeVisLocal
		p.next()
	} else if p.cur.Kind == lexer.Name && p.cur.Lexeme == "global" && p.peek.Kind == lexer.Name {
		stmt.Vis = ast.TypeVisGlobal
		p.next()
	}
	nameTok, ok := p.expectName()
	if !ok {
		p.skipToAnnotEnd()
		return nil
	}
	stmt.Name = ast.Name{Span: nameTok.Span(), Name: nameTok.Lexeme}
	p.expect(lexer.Assign)
	stmt.Ty = p.parseType()
	end := p.prevEnd
	p.expectAnnotEnd()
	stmt.Span = ast.Span{PosStart: start, PosEnd: end}
	return stmt
}

func (p *Parser) parseOpen(start token.Pos) ast.Stmt {
	firstTok := p.cur
	var words []string
	for p.cur.Kind == lexer.Name {
		words = append(words, p.cur.Lexeme)
		p.next()
	}
	if len(words) == 0 {
		p.errorf(p.cur, "library name expected near `%s`", describe(p.cur))
		p.skipToAnnotEnd()
		return nil
	}
	end := p.prevEnd
	p.expectAnnotEnd()
	return &ast.OpenStmt{
		Span: ast.Span{PosStart: start, PosEnd: end},
		Name: ast.Name{Span: ast.Span{PosStart: firstTok.Pos(), PosEnd: end}, Name: strings.Join(words, " ")},
	}
}

// --- type syntax ---

// parseSlot parses `[const] T`.
func (p *Parser) parseSlot() *ast.SlotAnnot {
	start := p.cur.Pos()
	slot := &ast.SlotAnnot{}
	if p.cur.Kind == lexer.Name && p.cur.Lexeme == "const" && typeStart(p.peek.Kind) {
		slot.Const = true
		p.next()
	}
	slot.Ty = p.parseType()
	slot.Span = p.spanFrom(start)
	return slot
}

func typeStart(k lexer.Kind) bool {
	switch k {
	case lexer.Name, lexer.KwNil, lexer.KwTrue, lexer.KwFalse, lexer.KwFunction,
		lexer.Number, lexer.String, lexer.LBrace, lexer.LBracket, lexer.LParen, lexer.Minus:
		return true
	}
	return false
}

// parseType parses a union `T1 | T2 | ...`.
func (p *Parser) parseType() ast.TyExpr {
	start := p.cur.Pos()
	first := p.parsePostType()
	if p.cur.Kind != lexer.Pipe {
		return first
	}
	union := &ast.UnionTy{Variants: []ast.TyExpr{first}}
	for p.cur.Kind == lexer.Pipe {
		p.next()
		union.Variants = append(union.Variants, p.parsePostType())
	}
	union.Span = p.spanFrom(start)
	return union
}

// parsePostType parses a type followed by its `?`/`!` nil flags.
func (p *Parser) parsePostType() ast.TyExpr {
	ty := p.parsePrimType()
	for {
		switch p.cur.Kind {
		case lexer.Question:
			tok := p.cur
			p.next()
			ty = &ast.OptTy{Span: ast.SpanBetween(ty, tok), Inner: ty}
		case lexer.Bang:
			tok := p.cur
			p.next()
			ty = &ast.ReqTy{Span: ast.SpanBetween(ty, tok), Inner: ty}
		default:
			return ty
		}
	}
}

func (p *Parser) parsePrimType() ast.TyExpr {
	tok := p.cur
	switch tok.Kind {
	case lexer.KwNil:
		p.next()
		return &ast.NameTy{Span: tok.Span(), Name: "nil"}
	case lexer.KwTrue:
		p.next()
		return &ast.BoolLitTy{Span: tok.Span(), Value: true}
	case lexer.KwFalse:
		p.next()
		return &ast.BoolLitTy{Span: tok.Span(), Value: false}
	case lexer.KwFunction:
		return p.parseFuncType()
	case lexer.Number:
		p.next()
		return p.intLitTy(tok, tok.Num, tok.Span())
	case lexer.Minus:
		p.next()
		numTok := p.cur
		if numTok.Kind != lexer.Number {
			p.errorf(numTok, "number expected near `%s`", describe(numTok))
			return &ast.WhateverTy{Span: tok.Span()}
		}
		p.next()
		return p.intLitTy(numTok, -numTok.Num, ast.SpanBetween(tok, numTok))
	case lexer.String:
		p.next()
		return &ast.StrLitTy{Span: tok.Span(), Value: tok.Str}
	case lexer.LParen:
		p.next()
		inner := p.parseType()
		p.expect(lexer.RParen)
		return inner
	case lexer.LBrace:
		return p.parseTableType()
	case lexer.LBracket:
		start := tok.Pos()
		attr := p.parseAttr()
		ty := p.parseType()
		return &ast.AttrTy{Span: p.spanFrom(start), Attr: attr, Ty: ty}
	case lexer.Name:
		switch tok.Lexeme {
		case "WHATEVER":
			p.next()
			return &ast.WhateverTy{Span: tok.Span()}
		case "vector":
			if p.peek.Kind == lexer.Lt {
				return p.parseVectorType()
			}
		case "map":
			if p.peek.Kind == lexer.Lt {
				return p.parseMapType()
			}
		}
		p.next()
		return &ast.NameTy{Span: tok.Span(), Name: tok.Lexeme}
	default:
		p.errorf(tok, "type expected near `%s`", describe(tok))
		if tok.Kind != lexer.AnnotEnd && tok.Kind != lexer.EOF {
			p.next()
		}
		return &ast.WhateverTy{Span: tok.Span()}
	}
}

func (p *Parser) intLitTy(at ast.Positioner, v float64, span ast.Span) ast.TyExpr {
	i := int64(v)
	if float64(i) != v {
		p.error(at, "a number in a type must be an integer")
		return &ast.WhateverTy{Span: span}
	}
	return &ast.IntLitTy{Span: span, Value: i}
}

// parseFuncType parses `function` optionally followed by a signature.
func (p *Parser) parseFuncType() ast.TyExpr {
	start := p.cur.Pos()
	p.next()
	if p.cur.Kind != lexer.LParen {
		return &ast.NameTy{Span: p.spanFrom(start), Name: "function"}
	}
	fn := &ast.FuncTy{}
	p.next()
	if p.cur.Kind != lexer.RParen {
		for {
			if p.cur.Kind == lexer.Ellipsis {
				ellTok := p.cur
				p.next()
				if p.cur.Kind == lexer.Colon {
					p.next()
					fn.Vararg = p.parseType()
				} else {
					fn.Vararg = &ast.WhateverTy{Span: ellTok.Span()}
				}
				break
			}
			var name *ast.Name
			if p.cur.Kind == lexer.Name && p.peek.Kind == lexer.Colon {
				name = &ast.Name{Span: p.cur.Span(), Name: p.cur.Lexeme}
				p.next()
				p.next()
			}
			fn.Params = append(fn.Params, ast.FuncTyParam{Name: name, Ty: p.parseType()})
			if p.cur.Kind != lexer.Comma {
				break
			}
			p.next()
		}
	}
	p.expect(lexer.RParen)
	if p.cur.Kind == lexer.Arrow {
		p.next()
		fn.Returns = p.parseTySeq()
	}
	fn.Span = p.spanFrom(start)
	return fn
}

// parseTySeq parses a type sequence: one bare type, or a parenthesized
// comma-separated list, either with an optional `T...` variadic tail.
func (p *Parser) parseTySeq() *ast.TySeqAnnot {
	start := p.cur.Pos()
	seq := &ast.TySeqAnnot{}
	if p.cur.Kind == lexer.LParen {
		p.next()
		if p.cur.Kind != lexer.RParen {
			for {
				if p.cur.Kind == lexer.Ellipsis {
					tok := p.cur
					p.next()
					seq.Tail = &ast.WhateverTy{Span: tok.Span()}
					break
				}
				ty := p.parseType()
				if p.cur.Kind == lexer.Ellipsis {
					p.next()
					seq.Tail = ty
					break
				}
				seq.Head = append(seq.Head, ty)
				if p.cur.Kind != lexer.Comma {
					break
				}
				p.next()
			}
		}
		p.expect(lexer.RParen)
	} else {
		ty := p.parseType()
		if p.cur.Kind == lexer.Ellipsis {
			p.next()
			seq.Tail = ty
		} else {
			seq.Head = append(seq.Head, ty)
		}
	}
	seq.Span = p.spanFrom(start)
	return seq
}

// parseTableType parses `{}`, `{a = T, ...}` records and `{T1, T2}` tuples.
func (p *Parser) parseTableType() ast.TyExpr {
	start := p.cur.Pos()
	p.next()
	if p.cur.Kind == lexer.RBrace {
		p.next()
		return &ast.RecordTy{Span: p.spanFrom(start)}
	}

	if (p.cur.Kind == lexer.Name && p.peek.Kind == lexer.Assign) || p.cur.Kind == lexer.Ellipsis {
		rec := &ast.RecordTy{}
		for {
			if p.cur.Kind == lexer.Ellipsis {
				p.next()
				rec.Extensible = true
				break
			}
			nameTok, ok := p.expectName()
			if !ok {
				break
			}
			p.expect(lexer.Assign)
			slot := p.parseSlot()
			rec.Fields = append(rec.Fields, ast.RecordFieldTy{
				Name: ast.Name{Span: nameTok.Span(), Name: nameTok.Lexeme},
				Slot: slot,
			})
			if p.cur.Kind != lexer.Comma {
				break
			}
			p.next()
			if p.cur.Kind == lexer.RBrace {
				break
			}
		}
		p.expect(lexer.RBrace)
		rec.Span = p.spanFrom(start)
		return rec
	}

	tuple := &ast.TupleTy{}
	for {
		tuple.Elems = append(tuple.Elems, p.parseSlot())
		if p.cur.Kind != lexer.Comma {
			break
		}
		p.next()
		if p.cur.Kind == lexer.RBrace {
			break
		}
	}
	p.expect(lexer.RBrace)
	tuple.Span = p.spanFrom(start)
	return tuple
}

func (p *Parser) parseVectorType() ast.TyExpr {
	start := p.cur.Pos()
	p.next() // vector
	p.expect(lexer.Lt)
	elem := p.parseSlot()
	p.expect(lexer.Gt)
	return &ast.VectorTy{Span: p.spanFrom(start), Elem: elem}
}

func (p *Parser) parseMapType() ast.TyExpr {
	start := p.cur.Pos()
	p.next() // map
	p.expect(lexer.Lt)
	key := p.parseType()
	p.expect(lexer.Comma)
	value := p.parseSlot()
	p.expect(lexer.Gt)
	return &ast.MapTy{Span: p.spanFrom(start), Key: key, Value: value}
}

// parseAttr parses `[name]`; attribute names may be several words, as in
// `[internal subtype]`.
func (p *Parser) parseAttr() ast.Attr {
	start := p.cur.Pos()
	p.next()
	var words []string
	for p.cur.Kind == lexer.Name {
		words = append(words, p.cur.Lexeme)
		p.next()
	}
	if len(words) == 0 {
		p.errorf(p.cur, "attribute name expected near `%s`", describe(p.cur))
	}
	p.expect(lexer.RBracket)
	return ast.Attr{Span: p.spanFrom(start), Name: strings.Join(words, " ")}
}
