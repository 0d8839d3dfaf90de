package types

import "strings"

// TySeq is a type sequence: the type of an expression list, a parameter
// list, or a return list. Head holds the leading positions and Tail, when
// non-nil, repeats for every position past the head. Positions past a
// missing tail read as nil, matching how Lua pads short lists.
type TySeq struct {
	Head []Ty
	Tail Ty
}

func Seq(head ...Ty) TySeq { return TySeq{Head: head} }

func (s TySeq) WithTail(t Ty) TySeq {
	s.Tail = t
	return s
}

// At returns the type at position i, extending past the head with the
// tail or nil.
func (s TySeq) At(i int) Ty {
	if i < len(s.Head) {
		return s.Head[i]
	}
	if s.Tail != nil {
		return s.Tail
	}
	return Nil{}
}

func (s TySeq) Len() int { return len(s.Head) }

func (s TySeq) String() string {
	parts := make([]string, 0, len(s.Head)+1)
	for _, t := range s.Head {
		parts = append(parts, t.String())
	}
	if s.Tail != nil {
		parts = append(parts, s.Tail.String()+"...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s TySeq) Hash() uint64 {
	h := uint64(0xc0ffee0000000b)
	for _, t := range s.Head {
		h = h*31 + t.Hash()
	}
	if s.Tail != nil {
		h = h*31 + s.Tail.Hash() + 1
	}
	return h
}

// subSeq checks a <: b position by position. One position past both
// heads covers the tails, which stay constant from there on.
func subSeq(a, b TySeq, ctx *Ctx) *TypeError {
	n := len(a.Head)
	if len(b.Head) > n {
		n = len(b.Head)
	}
	for i := 0; i <= n; i++ {
		if err := Sub(a.At(i), b.At(i), ctx); err != nil {
			return err
		}
	}
	return nil
}

func eqSeq(a, b TySeq, ctx *Ctx) *TypeError {
	n := len(a.Head)
	if len(b.Head) > n {
		n = len(b.Head)
	}
	for i := 0; i <= n; i++ {
		if err := Eq(a.At(i), b.At(i), ctx); err != nil {
			return err
		}
	}
	return nil
}

// JoinSeq merges two sequences position by position, keeping a tail
// when either side has one.
func JoinSeq(a, b TySeq, ctx *Ctx) TySeq { return joinSeq(a, b, ctx) }

func joinSeq(a, b TySeq, ctx *Ctx) TySeq {
	n := len(a.Head)
	if len(b.Head) > n {
		n = len(b.Head)
	}
	head := make([]Ty, n)
	for i := 0; i < n; i++ {
		head[i] = Join(a.At(i), b.At(i), ctx)
	}
	out := TySeq{Head: head}
	if a.Tail != nil || b.Tail != nil {
		out.Tail = Join(a.At(n), b.At(n), ctx)
	}
	return out
}
