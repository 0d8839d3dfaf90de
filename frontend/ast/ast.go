package ast

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
}

// Expr is the interface for all expression nodes in the AST.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

// Stmt is the interface for all statement nodes in the AST.
type Stmt interface {
	Node
	stmtNode() // Marker method to distinguish statements
}

// Name is an identifier occurrence outside expression position:
// a binding site, a field name, or a method name.
type Name struct {
	Span
	Name string
}

func (n Name) String() string { return n.Name }

// NameDecl is a name being declared, together with the slot annotation
// attached to it via `--:` when present.
type NameDecl struct {
	Span
	Name  string
	Annot *SlotAnnot
}

// File is a single checked unit: one Lua source file.
type File struct {
	Span
	Name  string // the unit name as given to the loader
	Block *Block
}

// Block is a sequence of statements sharing one lexical scope.
type Block struct {
	Span
	Stmts []Stmt
}

var _ Node = (*Block)(nil)

// DoStmt is a `do ... end` block.
type DoStmt struct {
	Span
	Body *Block
}

// WhileStmt is `while cond do body end`.
type WhileStmt struct {
	Span
	Cond Expr
	Body *Block
}

// RepeatStmt is `repeat body until cond`; the condition is scoped to the body.
type RepeatStmt struct {
	Span
	Body *Block
	Cond Expr
}

// IfClause is one `if`/`elseif` arm.
type IfClause struct {
	Span
	Cond Expr
	Body *Block
}

// IfStmt is a whole if/elseif/else chain.
type IfStmt struct {
	Span
	Clauses []IfClause
	Else    *Block // nil when absent
}

// NumericForStmt is `for v = start, limit[, step] do body end`.
type NumericForStmt struct {
	Span
	Var   *NameDecl
	Start Expr
	Limit Expr
	Step  Expr // nil when absent
	Body  *Block
}

// GenericForStmt is `for v1, ... in e1, ... do body end`.
type GenericForStmt struct {
	Span
	Vars  []*NameDecl
	Exprs []Expr
	Body  *Block
}

// LocalStmt is `local n1, ... [= e1, ...]`.
type LocalStmt struct {
	Span
	Names []*NameDecl
	Exprs []Expr
}

// AssignStmt is `lhs1, ... = rhs1, ...`. Targets are NameExpr or IndexExpr.
// Annots carries per-target slot annotations, nil entries when absent.
type AssignStmt struct {
	Span
	Targets []Expr
	Annots  []*SlotAnnot
	Exprs   []Expr
}

// CallStmt is an expression statement; Lua only permits calls here.
type CallStmt struct {
	Span
	Call Expr
}

// ReturnStmt is `return e1, ...`.
type ReturnStmt struct {
	Span
	Exprs []Expr
}

// BreakStmt is `break`.
type BreakStmt struct {
	Span
}

// FuncDeclStmt is `function p.a.b[:m]() ... end` or `local function f() ... end`.
// The checker treats the non-local forms as indexed assignment of Func.
type FuncDeclStmt struct {
	Span
	Name   Name   // the leading name p
	Path   []Name // field path a, b (may be empty)
	Method *Name  // non-nil for `function p:m()`
	Local  bool   // `local function f()`
	Func   *FuncExpr
}

// AssumeStmt is `--# assume [global] name[.path]: slot`.
type AssumeStmt struct {
	Span
	Global bool
	Name   Name
	Path   []Name // field path after the base name, empty for plain names
	Slot   *SlotAnnot
}

// TypeVis is the visibility of a `--# type` declaration.
type TypeVis int

const (
	TypeVisScoped TypeVis = iota // exported on require unless shadowed
	TypeVisLocal                 // never exported
	TypeVisGlobal                // visible everywhere once loaded
)

func (v TypeVis) String() string {
	switch v {
	case TypeVisLocal:
		return "local"
	case TypeVisGlobal:
		return "global"
	default:
		return "scoped"
	}
}

// TypeDeclStmt is `--# type [local|global] NAME = T`.
type TypeDeclStmt struct {
	Span
	Vis  TypeVis
	Name Name
	Ty   TyExpr
}

// OpenStmt is `--# open NAME`, loading a builtin declaration set.
type OpenStmt struct {
	Span
	Name Name
}

func (*DoStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*RepeatStmt) stmtNode()     {}
func (*IfStmt) stmtNode()         {}
func (*NumericForStmt) stmtNode() {}
func (*GenericForStmt) stmtNode() {}
func (*LocalStmt) stmtNode()      {}
func (*AssignStmt) stmtNode()     {}
func (*CallStmt) stmtNode()       {}
func (*ReturnStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()      {}
func (*FuncDeclStmt) stmtNode()   {}
func (*AssumeStmt) stmtNode()     {}
func (*TypeDeclStmt) stmtNode()   {}
func (*OpenStmt) stmtNode()       {}

var (
	_ Stmt = (*DoStmt)(nil)
	_ Stmt = (*WhileStmt)(nil)
	_ Stmt = (*RepeatStmt)(nil)
	_ Stmt = (*IfStmt)(nil)
	_ Stmt = (*NumericForStmt)(nil)
	_ Stmt = (*GenericForStmt)(nil)
	_ Stmt = (*LocalStmt)(nil)
	_ Stmt = (*AssignStmt)(nil)
	_ Stmt = (*CallStmt)(nil)
	_ Stmt = (*ReturnStmt)(nil)
	_ Stmt = (*BreakStmt)(nil)
	_ Stmt = (*FuncDeclStmt)(nil)
	_ Stmt = (*AssumeStmt)(nil)
	_ Stmt = (*TypeDeclStmt)(nil)
	_ Stmt = (*OpenStmt)(nil)
)
