package lexer

import (
	"fmt"
	"go/token"

	"github.com/cottand/luatic/frontend/ast"
)

// Kind enumerates token kinds, both for plain Lua 5.1 source and for the
// annotation sub-language embedded in `--:`-style comments.
type Kind int

const (
	Illegal Kind = iota
	EOF
	Name
	Number
	String

	KwAnd
	KwBreak
	KwDo
	KwElse
	KwElseif
	KwEnd
	KwFalse
	KwFor
	KwFunction
	KwIf
	KwIn
	KwLocal
	KwNil
	KwNot
	KwOr
	KwRepeat
	KwReturn
	KwThen
	KwTrue
	KwUntil
	KwWhile

	Plus
	Minus
	Star
	Slash
	Percent
	Caret
	Hash
	Eq    // ==
	NotEq // ~=
	LtEq
	GtEq
	Lt
	Gt
	Assign // =
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Colon
	Comma
	Dot
	Concat   // ..
	Ellipsis // ...

	// The four annotation openers switch the lexer into annotation mode,
	// which ends at the newline with an AnnotEnd token.
	AnnotTypeBegin    // --:
	AnnotReturnsBegin // -->
	AnnotFuncBegin    // --v followed by whitespace
	AnnotPragmaBegin  // --#
	AnnotEnd

	// Tokens emitted only in annotation mode.
	Question
	Bang
	Pipe
	Arrow // --> separating a function type's returns
)

var kindNames = [...]string{
	Illegal: "illegal",
	EOF:     "end of file",
	Name:    "name",
	Number:  "number",
	String:  "string",

	KwAnd:      "and",
	KwBreak:    "break",
	KwDo:       "do",
	KwElse:     "else",
	KwElseif:   "elseif",
	KwEnd:      "end",
	KwFalse:    "false",
	KwFor:      "for",
	KwFunction: "function",
	KwIf:       "if",
	KwIn:       "in",
	KwLocal:    "local",
	KwNil:      "nil",
	KwNot:      "not",
	KwOr:       "or",
	KwRepeat:   "repeat",
	KwReturn:   "return",
	KwThen:     "then",
	KwTrue:     "true",
	KwUntil:    "until",
	KwWhile:    "while",

	Plus:     "+",
	Minus:    "-",
	Star:     "*",
	Slash:    "/",
	Percent:  "%",
	Caret:    "^",
	Hash:     "#",
	Eq:       "==",
	NotEq:    "~=",
	LtEq:     "<=",
	GtEq:     ">=",
	Lt:       "<",
	Gt:       ">",
	Assign:   "=",
	LParen:   "(",
	RParen:   ")",
	LBrace:   "{",
	RBrace:   "}",
	LBracket: "[",
	RBracket: "]",
	Semi:     ";",
	Colon:    ":",
	Comma:    ",",
	Dot:      ".",
	Concat:   "..",
	Ellipsis: "...",

	AnnotTypeBegin:    "--:",
	AnnotReturnsBegin: "-->",
	AnnotFuncBegin:    "--v",
	AnnotPragmaBegin:  "--#",
	AnnotEnd:          "end of annotation",

	Question: "?",
	Bang:     "!",
	Pipe:     "|",
	Arrow:    "-->",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"and":      KwAnd,
	"break":    KwBreak,
	"do":       KwDo,
	"else":     KwElse,
	"elseif":   KwElseif,
	"end":      KwEnd,
	"false":    KwFalse,
	"for":      KwFor,
	"function": KwFunction,
	"if":       KwIf,
	"in":       KwIn,
	"local":    KwLocal,
	"nil":      KwNil,
	"not":      KwNot,
	"or":       KwOr,
	"repeat":   KwRepeat,
	"return":   KwReturn,
	"then":     KwThen,
	"true":     KwTrue,
	"until":    KwUntil,
	"while":    KwWhile,
}

// LookupName resolves an identifier to its keyword kind, or Name.
func LookupName(ident string) Kind {
	if kw, ok := keywords[ident]; ok {
		return kw
	}
	return Name
}

// Token is one lexeme with its source span. String tokens carry their
// decoded payload in Str; Number tokens carry their value in Num; Illegal
// tokens carry the lexing failure in Str.
type Token struct {
	Kind     Kind
	Lexeme   string
	Str      string
	Num      float64
	PosStart token.Pos
	PosEnd   token.Pos
}

func (t Token) Pos() token.Pos { return t.PosStart }
func (t Token) End() token.Pos { return t.PosEnd }

func (t Token) Span() ast.Span {
	return ast.Span{PosStart: t.PosStart, PosEnd: t.PosEnd}
}

func (t Token) String() string {
	switch t.Kind {
	case Name, Number, String, Illegal:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
	default:
		return t.Kind.String()
	}
}

var _ ast.Positioner = Token{}
