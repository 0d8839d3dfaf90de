package types

import "strings"

// Union is the canonical form of a type spanning several categories.
// Each category appears at most once: literals fold into their Numbers,
// Strings or boolean parts, and table or function members fuse rather
// than repeat. At most one type variable can take part.
type Union struct {
	HasNil      bool
	HasTrue     bool
	HasFalse    bool
	HasThread   bool
	HasUserData bool
	Numbers     *Numbers
	Strings     *Strings
	Tables      *Tables
	Functions   *Functions
	HasVar      bool
	Var         TVar
}

// members lists the union's parts as standalone types.
func (u *Union) members() []Ty {
	var out []Ty
	if u.Numbers != nil {
		out = append(out, u.Numbers)
	}
	if u.Strings != nil {
		out = append(out, u.Strings)
	}
	switch {
	case u.HasTrue && u.HasFalse:
		out = append(out, Bool{})
	case u.HasTrue:
		out = append(out, BoolLit{Value: true})
	case u.HasFalse:
		out = append(out, BoolLit{Value: false})
	}
	if u.Tables != nil {
		out = append(out, u.Tables)
	}
	if u.Functions != nil {
		out = append(out, u.Functions)
	}
	if u.HasThread {
		out = append(out, Thread{})
	}
	if u.HasUserData {
		out = append(out, UserData{})
	}
	if u.HasVar {
		out = append(out, VarTy{Var: u.Var})
	}
	if u.HasNil {
		out = append(out, Nil{})
	}
	return out
}

// simplify collapses degenerate unions back to atoms.
func (u *Union) simplify() Ty {
	members := u.members()
	switch len(members) {
	case 0:
		return None{}
	case 1:
		return members[0]
	default:
		return u
	}
}

func (u *Union) String() string {
	members := u.members()
	if u.HasNil && len(members) == 2 {
		return members[0].String() + "?"
	}
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func (u *Union) Hash() uint64 {
	h := uint64(0xc0ffee0000000019)
	for _, m := range u.members() {
		h = h*31 + m.Hash()
	}
	return h
}

func (u *Union) Flags() Flags {
	var f Flags
	if u.HasNil {
		f |= FlagNil
	}
	if u.HasTrue {
		f |= FlagTrue
	}
	if u.HasFalse {
		f |= FlagFalse
	}
	if u.HasThread {
		f |= FlagThread
	}
	if u.HasUserData {
		f |= FlagUserData
	}
	if u.Numbers != nil {
		f |= u.Numbers.Flags()
	}
	if u.Strings != nil {
		f |= FlagString
	}
	if u.Tables != nil {
		f |= FlagTable
	}
	if u.Functions != nil {
		f |= FlagFunction
	}
	return f
}

func (u *Union) base() Ty { return u }

// asUnion decomposes a type into union parts. Dynamic, Any, None and
// Builtin never reach here; Join strips them first.
func asUnion(t Ty) *Union {
	switch t := t.(type) {
	case *Union:
		clone := *t
		return &clone
	case Nil:
		return &Union{HasNil: true}
	case Bool:
		return &Union{HasTrue: true, HasFalse: true}
	case BoolLit:
		return &Union{HasTrue: t.Value, HasFalse: !t.Value}
	case Thread:
		return &Union{HasThread: true}
	case UserData:
		return &Union{HasUserData: true}
	case *Numbers:
		return &Union{Numbers: t}
	case *Strings:
		return &Union{Strings: t}
	case *Tables:
		return &Union{Tables: t}
	case *Functions:
		return &Union{Functions: t}
	case VarTy:
		return &Union{HasVar: true, Var: t.Var}
	default:
		return &Union{}
	}
}

// fuse merges two decomposed unions category by category.
func (u *Union) fuse(o *Union, ctx *Ctx) *Union {
	out := &Union{
		HasNil:      u.HasNil || o.HasNil,
		HasTrue:     u.HasTrue || o.HasTrue,
		HasFalse:    u.HasFalse || o.HasFalse,
		HasThread:   u.HasThread || o.HasThread,
		HasUserData: u.HasUserData || o.HasUserData,
	}

	switch {
	case u.Numbers == nil:
		out.Numbers = o.Numbers
	case o.Numbers == nil:
		out.Numbers = u.Numbers
	default:
		out.Numbers = unionNumbers(u.Numbers, o.Numbers)
	}

	switch {
	case u.Strings == nil:
		out.Strings = o.Strings
	case o.Strings == nil:
		out.Strings = u.Strings
	default:
		out.Strings = unionStrings(u.Strings, o.Strings)
	}

	switch {
	case u.Tables == nil:
		out.Tables = o.Tables
	case o.Tables == nil:
		out.Tables = u.Tables
	default:
		out.Tables = unionTables(u.Tables, o.Tables, ctx)
	}

	switch {
	case u.Functions == nil:
		out.Functions = o.Functions
	case o.Functions == nil:
		out.Functions = u.Functions
	default:
		out.Functions = unionFunctions(u.Functions, o.Functions)
	}

	switch {
	case !u.HasVar:
		out.HasVar, out.Var = o.HasVar, o.Var
	case !o.HasVar || u.Var == o.Var:
		out.HasVar, out.Var = true, u.Var
	case ctx != nil:
		// two distinct variables collapse into a fresh one above both
		fresh := ctx.GenTVar()
		_ = ctx.AssertTVarSubTVar(u.Var, fresh)
		_ = ctx.AssertTVarSubTVar(o.Var, fresh)
		out.HasVar, out.Var = true, fresh
	default:
		out.HasVar, out.Var = true, u.Var
	}

	return out
}
