package types

import (
	"fmt"
	"strconv"
)

// Ty is a Lua value type. Implementations are immutable once built;
// sharing them across slots and scopes is always safe.
//
// The atoms (Dynamic, None, Any, Nil, Bool, BoolLit, Thread, UserData,
// VarTy) are value types. Composites carrying variable-length payloads
// (Numbers, Strings, Tables, Functions, Union, Builtin) are pointers.
type Ty interface {
	fmt.Stringer

	// Hash is a structural hash. Two types with equal hashes are treated
	// as identical everywhere we need cheap equality.
	Hash() uint64

	// Flags classifies the type's possible value categories.
	Flags() Flags

	// base unwraps builtin tags so structural rules see through them.
	base() Ty
}

// Identical is hash-based structural equality.
func Identical(a, b Ty) bool { return a.Hash() == b.Hash() }

var (
	_ Ty = Dynamic{}
	_ Ty = None{}
	_ Ty = Any{}
	_ Ty = Nil{}
	_ Ty = Bool{}
	_ Ty = BoolLit{}
	_ Ty = Thread{}
	_ Ty = UserData{}
	_ Ty = VarTy{}
	_ Ty = (*Numbers)(nil)
	_ Ty = (*Strings)(nil)
	_ Ty = (*Tables)(nil)
	_ Ty = (*Functions)(nil)
	_ Ty = (*Union)(nil)
	_ Ty = (*Builtin)(nil)
)

// Dynamic is the WHATEVER type: it converts to and from every other
// type in both directions, silencing all checks downstream.
type Dynamic struct{}

func (Dynamic) String() string { return "WHATEVER" }
func (Dynamic) Hash() uint64   { return 0x9e3779b97f4a7c15 }
func (Dynamic) Flags() Flags   { return FlagDynamic }
func (t Dynamic) base() Ty     { return t }

// None is the bottom type. It has no values, is a subtype of everything,
// and doubles as the silent dummy installed after an error so that one
// mistake does not cascade.
type None struct{}

func (None) String() string { return "<bottom>" }
func (None) Hash() uint64   { return 0xfeedface00000001 }
func (None) Flags() Flags   { return FlagNone }
func (t None) base() Ty     { return t }

// Any is the top type: every type converts to it, but values of it
// support no operation until narrowed away from it.
type Any struct{}

func (Any) String() string { return "any" }
func (Any) Hash() uint64   { return 0xfeedface00000003 }
func (Any) Flags() Flags   { return FlagAll }
func (t Any) base() Ty     { return t }

type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Hash() uint64   { return 0xfeedface00000007 }
func (Nil) Flags() Flags   { return FlagNil }
func (t Nil) base() Ty     { return t }

type Bool struct{}

func (Bool) String() string { return "boolean" }
func (Bool) Hash() uint64   { return 0xfeedface0000000b }
func (Bool) Flags() Flags   { return FlagBoolean }
func (t Bool) base() Ty     { return t }

// BoolLit is the singleton type of one boolean value.
type BoolLit struct{ Value bool }

func (t BoolLit) String() string { return strconv.FormatBool(t.Value) }
func (t BoolLit) Hash() uint64 {
	if t.Value {
		return 0xfeedface0000000d
	}
	return 0xfeedface0000000e
}
func (t BoolLit) Flags() Flags {
	if t.Value {
		return FlagTrue
	}
	return FlagFalse
}
func (t BoolLit) base() Ty { return t }

func True() Ty  { return BoolLit{Value: true} }
func False() Ty { return BoolLit{Value: false} }

type Thread struct{}

func (Thread) String() string { return "thread" }
func (Thread) Hash() uint64   { return 0xfeedface00000011 }
func (Thread) Flags() Flags   { return FlagThread }
func (t Thread) base() Ty     { return t }

type UserData struct{}

func (UserData) String() string { return "userdata" }
func (UserData) Hash() uint64   { return 0xfeedface00000013 }
func (UserData) Flags() Flags   { return FlagUserData }
func (t UserData) base() Ty     { return t }

// VarTy wraps a type variable so it can stand wherever a type can.
// Its flags are empty: code that needs the real categories must resolve
// the variable through a Ctx first.
type VarTy struct{ Var TVar }

func (t VarTy) String() string { return fmt.Sprintf("<t%d>", t.Var) }
func (t VarTy) Hash() uint64   { return 0xabcdef12345678*31 + uint64(t.Var) }
func (VarTy) Flags() Flags     { return FlagNone }
func (t VarTy) base() Ty       { return t }
