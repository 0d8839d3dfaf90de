package types

import "strings"

// Flags summarises which value categories a type can inhabit. Operator
// checks only need this coarse view: `a + b` is fine as long as both
// sides stay within FlagNumber, whatever the exact types are.
type Flags uint16

const (
	FlagNil Flags = 1 << iota
	FlagTrue
	FlagFalse
	FlagNonInteger
	FlagInteger
	FlagString
	FlagTable
	FlagFunction
	FlagThread
	FlagUserData
	// FlagDynamic marks WHATEVER. It is not a value category: a dynamic
	// type passes every categorical check without being in any category.
	FlagDynamic

	FlagNone    Flags = 0
	FlagBoolean       = FlagTrue | FlagFalse
	FlagNumber        = FlagNonInteger | FlagInteger
	FlagAll           = FlagNil | FlagBoolean | FlagNumber | FlagString |
		FlagTable | FlagFunction | FlagThread | FlagUserData
)

func (f Flags) IsDynamic() bool { return f&FlagDynamic != 0 }

// Categorical predicates return true for the dynamic type and for the
// bottom type (no flags set): the former passes everything, the latter
// is the silent dummy that must not cascade errors.

func (f Flags) IsIntegral() bool { return f.IsDynamic() || f&^FlagInteger == 0 }
func (f Flags) IsNumeric() bool  { return f.IsDynamic() || f&^FlagNumber == 0 }
func (f Flags) IsStringy() bool  { return f.IsDynamic() || f&^(FlagNumber|FlagString) == 0 }
func (f Flags) IsTabular() bool  { return f.IsDynamic() || f&^FlagTable == 0 }
func (f Flags) IsCallable() bool { return f.IsDynamic() || f&^FlagFunction == 0 }
func (f Flags) IsLenable() bool  { return f.IsDynamic() || f&^(FlagString|FlagTable) == 0 }

// IsTruthy reports that no value of the type can be nil or false.
// The empty flag set is neither truthy nor falsy.
func (f Flags) IsTruthy() bool {
	return !f.IsDynamic() && f != FlagNone && f&(FlagNil|FlagFalse) == 0
}

// IsFalsy reports that every value of the type is nil or false.
func (f Flags) IsFalsy() bool {
	return !f.IsDynamic() && f != FlagNone && f&^(FlagNil|FlagFalse) == 0
}

func (f Flags) String() string {
	if f == FlagNone {
		return "none"
	}
	var parts []string
	add := func(mask Flags, name string) {
		if f&mask == mask {
			parts = append(parts, name)
			f &^= mask
		}
	}
	add(FlagDynamic, "dynamic")
	add(FlagNil, "nil")
	add(FlagBoolean, "boolean")
	add(FlagTrue, "true")
	add(FlagFalse, "false")
	add(FlagNumber, "number")
	add(FlagInteger, "integer")
	add(FlagNonInteger, "noninteger")
	add(FlagString, "string")
	add(FlagTable, "table")
	add(FlagFunction, "function")
	add(FlagThread, "thread")
	add(FlagUserData, "userdata")
	return strings.Join(parts, "|")
}
