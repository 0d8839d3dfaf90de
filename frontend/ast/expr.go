package ast

import (
	"math"
	"strconv"
)

// All expression types implement the Expr interface

// NilLit is the `nil` literal.
type NilLit struct {
	Span
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Span
	Value bool
}

// NumberLit is a numeric literal. Lua 5.1 numbers are doubles; the checker
// cares whether the literal denotes an integer, so Int reports that.
type NumberLit struct {
	Span
	Value float64
}

// Int returns the literal as an integer when it denotes one exactly.
func (e *NumberLit) Int() (int64, bool) {
	i := int64(e.Value)
	if float64(i) == e.Value && math.Abs(e.Value) < 1<<53 {
		return i, true
	}
	return 0, false
}

// StringLit is a string literal; Value holds the unescaped bytes.
type StringLit struct {
	Span
	Value string
}

// VarargExpr is `...`.
type VarargExpr struct {
	Span
}

// NameExpr is a variable reference in expression position.
type NameExpr struct {
	Span
	Name string
}

// IndexExpr is `prefix[index]`; `prefix.name` parses to a StringLit index.
type IndexExpr struct {
	Span
	Prefix Expr
	Index  Expr
}

// CallExpr is `f(args)`.
type CallExpr struct {
	Span
	Func Expr
	Args []Expr
}

// MethodCallExpr is `recv:method(args)`, sugar for recv.method(recv, args).
type MethodCallExpr struct {
	Span
	Recv   Expr
	Method Name
	Args   []Expr
}

// ParenExpr is a parenthesized expression; it truncates multi-values to one.
type ParenExpr struct {
	Span
	Inner Expr
}

// FuncExpr is a function literal. Annot carries a `--v` annotation when one
// was attached; per-parameter annotations live on the NameDecls.
type FuncExpr struct {
	Span
	Params      []*NameDecl
	Vararg      bool
	VarargAnnot *SlotAnnot   // `...: T` annotation, nil when absent
	Returns     *TySeqAnnot  // `--> T` or the returns of a `--v`, nil when absent
	Annot       *FuncAnnot
	Body        *Block
}

// TableItem is one entry of a table constructor. Key is nil for positional
// items (array part).
type TableItem struct {
	Key   Expr
	Value Expr
}

// TableExpr is a table constructor `{ ... }`.
type TableExpr struct {
	Span
	Items []TableItem
}

// BadExpr stands in for an expression the parser could not build, so that
// checking can continue past a syntax error without cascading.
type BadExpr struct {
	Span
}

// BinOp enumerates Lua binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
)

var binOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%", OpPow: "^",
	OpConcat: "..", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpEq: "==", OpNe: "~=", OpAnd: "and", OpOr: "or",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

// UnOp enumerates Lua unary operators.
type UnOp int

const (
	OpNeg UnOp = iota // unary minus
	OpNot
	OpLen // #
)

var unOpNames = [...]string{OpNeg: "-", OpNot: "not", OpLen: "#"}

func (op UnOp) String() string {
	if int(op) < len(unOpNames) {
		return unOpNames[op]
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

// BinExpr is `lhs op rhs`.
type BinExpr struct {
	Span
	Op  BinOp
	Lhs Expr
	Rhs Expr
}

// UnExpr is `op operand`.
type UnExpr struct {
	Span
	Op      UnOp
	Operand Expr
}

func (*BadExpr) exprNode()        {}
func (*NilLit) exprNode()         {}
func (*BoolLit) exprNode()        {}
func (*NumberLit) exprNode()      {}
func (*StringLit) exprNode()      {}
func (*VarargExpr) exprNode()     {}
func (*NameExpr) exprNode()       {}
func (*IndexExpr) exprNode()      {}
func (*CallExpr) exprNode()       {}
func (*MethodCallExpr) exprNode() {}
func (*ParenExpr) exprNode()      {}
func (*FuncExpr) exprNode()       {}
func (*TableExpr) exprNode()      {}
func (*BinExpr) exprNode()        {}
func (*UnExpr) exprNode()         {}

var (
	_ Expr = (*BadExpr)(nil)
	_ Expr = (*NilLit)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*NumberLit)(nil)
	_ Expr = (*StringLit)(nil)
	_ Expr = (*VarargExpr)(nil)
	_ Expr = (*NameExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*CallExpr)(nil)
	_ Expr = (*MethodCallExpr)(nil)
	_ Expr = (*ParenExpr)(nil)
	_ Expr = (*FuncExpr)(nil)
	_ Expr = (*TableExpr)(nil)
	_ Expr = (*BinExpr)(nil)
	_ Expr = (*UnExpr)(nil)
)

// IsMultiValue reports whether the expression can produce more than one
// value: an unparenthesized call or `...`.
func IsMultiValue(e Expr) bool {
	switch e.(type) {
	case *CallExpr, *MethodCallExpr, *VarargExpr:
		return true
	}
	return false
}
