package ast

import (
	"encoding/binary"
	"fmt"
	"go/token"
	"hash/fnv"
)

// Positioner allows finding the location in the original source file.
type Positioner interface {
	Pos() token.Pos // position of first character belonging to the node
	End() token.Pos // position of first character immediately after the node
}

// Span represents a range of positions in the source code.
type Span struct {
	PosStart token.Pos
	PosEnd   token.Pos
}

// Hash returns a hash value for the Span
func (s Span) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte{}
	arr = binary.LittleEndian.AppendUint64(arr, uint64(s.PosStart))
	arr = binary.LittleEndian.AppendUint64(arr, uint64(s.PosEnd))
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Pos returns the starting position of the span.
func (s Span) Pos() token.Pos { return s.PosStart }

// End returns the ending position of the span.
func (s Span) End() token.Pos { return s.PosEnd }

// IsValid reports whether the span points at real source.
func (s Span) IsValid() bool { return s.PosStart.IsValid() }

// String returns a string representation of the span.
func (s Span) String() string {
	if s.PosStart == s.PosEnd {
		return fmt.Sprintf("%v", s.PosStart)
	}
	return fmt.Sprintf("%v-%v", s.PosStart, s.PosEnd)
}

// SpanBetween creates a Span between two Positioners.
func SpanBetween(fst, snd Positioner) Span {
	return Span{fst.Pos(), snd.End()}
}

// SpanOf creates a Span from a Positioner.
func SpanOf(expr Positioner) Span {
	if expr == nil {
		return Span{}
	}
	if asSpan, ok := expr.(*Span); ok {
		return *asSpan
	}
	if asSpan, ok := expr.(Span); ok {
		return asSpan
	}
	return Span{expr.Pos(), expr.End()}
}
