package ast

// The annotation sub-language lives in comments (`--:`, `-->`, `--v`, `--#`).
// Its type syntax parses into TyExpr trees, resolved against the type scope
// during checking rather than at parse time.

// TyExpr is the interface for all type-syntax nodes.
type TyExpr interface {
	Node
	tyNode() // Marker method to distinguish type expressions
}

// NameTy is a type name: a primitive (`integer`, `string`, ...) or an alias.
type NameTy struct {
	Span
	Name string
}

// WhateverTy is the escape hatch type, written `WHATEVER`.
type WhateverTy struct {
	Span
}

// BoolLitTy is a boolean literal type, `true` or `false`.
type BoolLitTy struct {
	Span
	Value bool
}

// IntLitTy is an integer literal type, e.g. `42`.
type IntLitTy struct {
	Span
	Value int64
}

// StrLitTy is a string literal type, e.g. `'hello'`.
type StrLitTy struct {
	Span
	Value string
}

// UnionTy is `T1 | T2 | ...`.
type UnionTy struct {
	Span
	Variants []TyExpr
}

// OptTy is `T?`: nil is a member of the type.
type OptTy struct {
	Span
	Inner TyExpr
}

// ReqTy is `T!`: nil is never a member; a slot so typed must be definitely
// assigned before use.
type ReqTy struct {
	Span
	Inner TyExpr
}

// SlotAnnot is a slot-position annotation: `[const] T`. Nil flags are part
// of the inner type syntax (OptTy/ReqTy).
type SlotAnnot struct {
	Span
	Const bool
	Ty    TyExpr
}

// RecordFieldTy is one `name = T` field of a record type.
type RecordFieldTy struct {
	Name Name
	Slot *SlotAnnot
}

// RecordTy is `{a = T, b = U, ...}`; a trailing `...` leaves the row open.
type RecordTy struct {
	Span
	Fields     []RecordFieldTy
	Extensible bool
}

// TupleTy is `{T1, T2, ...}`.
type TupleTy struct {
	Span
	Elems []*SlotAnnot
}

// VectorTy is `vector<T>`.
type VectorTy struct {
	Span
	Elem *SlotAnnot
}

// MapTy is `map<K, V>`.
type MapTy struct {
	Span
	Key   TyExpr
	Value *SlotAnnot
}

// FuncTyParam is a parameter inside a function type; the name is optional.
type FuncTyParam struct {
	Name *Name
	Ty   TyExpr
}

// FuncTy is `function(a: T, ...: V) --> (R, ...)`.
type FuncTy struct {
	Span
	Params  []FuncTyParam
	Vararg  TyExpr // the `...: V` tail type, nil when the type takes no varargs
	Returns *TySeqAnnot
}

// TySeqAnnot is a type sequence `(T1, T2, ...: V)`, used for return types.
// A bare type parses as a one-element sequence.
type TySeqAnnot struct {
	Span
	Head []TyExpr
	Tail TyExpr // nil when the sequence is bounded
}

// Attr is a builtin attribute `[name]`; names may contain spaces, as in
// `[internal subtype]`.
type Attr struct {
	Span
	Name string
}

// AttrTy is an attribute-decorated type `[attr] T`.
type AttrTy struct {
	Span
	Attr Attr
	Ty   TyExpr
}

// FuncAnnot is a `--v [attr] function(a: T, ...: V) --> R` annotation,
// attached to the next function literal or declaration.
type FuncAnnot struct {
	Span
	Attrs   []Attr
	Params  []FuncTyParam
	Vararg  TyExpr // nil when not variadic
	Returns *TySeqAnnot
}

func (*NameTy) tyNode()     {}
func (*WhateverTy) tyNode() {}
func (*BoolLitTy) tyNode()  {}
func (*IntLitTy) tyNode()   {}
func (*StrLitTy) tyNode()   {}
func (*UnionTy) tyNode()    {}
func (*OptTy) tyNode()      {}
func (*ReqTy) tyNode()      {}
func (*RecordTy) tyNode()   {}
func (*TupleTy) tyNode()    {}
func (*VectorTy) tyNode()   {}
func (*MapTy) tyNode()      {}
func (*FuncTy) tyNode()     {}
func (*AttrTy) tyNode()     {}

var (
	_ TyExpr = (*NameTy)(nil)
	_ TyExpr = (*WhateverTy)(nil)
	_ TyExpr = (*BoolLitTy)(nil)
	_ TyExpr = (*IntLitTy)(nil)
	_ TyExpr = (*StrLitTy)(nil)
	_ TyExpr = (*UnionTy)(nil)
	_ TyExpr = (*OptTy)(nil)
	_ TyExpr = (*ReqTy)(nil)
	_ TyExpr = (*RecordTy)(nil)
	_ TyExpr = (*TupleTy)(nil)
	_ TyExpr = (*VectorTy)(nil)
	_ TyExpr = (*MapTy)(nil)
	_ TyExpr = (*FuncTy)(nil)
	_ TyExpr = (*AttrTy)(nil)
)
