package types

import (
	"sort"
	"strconv"
	"strings"

	"github.com/xtgo/set"
)

// NumKind picks a rung of the number ladder: every integer literal is an
// integer, and every integer is a number.
type NumKind uint8

const (
	NumAll NumKind = iota // any number
	NumInt                // any integer
	NumSet                // a finite set of integer literals
)

// Numbers covers the numeric category. Values is only meaningful for
// NumSet and is kept sorted and deduplicated so that hashes and set
// operations stay canonical.
type Numbers struct {
	Kind   NumKind
	Values []int64
}

func Number() Ty  { return &Numbers{Kind: NumAll} }
func Integer() Ty { return &Numbers{Kind: NumInt} }
func Int(v int64) Ty {
	return &Numbers{Kind: NumSet, Values: []int64{v}}
}

func Ints(vs ...int64) Ty {
	data := append([]int64(nil), vs...)
	s := int64Slice(data)
	sort.Sort(s)
	n := set.Uniq(s)
	if n == 0 {
		return None{}
	}
	return &Numbers{Kind: NumSet, Values: data[:n]}
}

func (t *Numbers) String() string {
	switch t.Kind {
	case NumAll:
		return "number"
	case NumInt:
		return "integer"
	default:
		if len(t.Values) == 1 {
			return strconv.FormatInt(t.Values[0], 10)
		}
		parts := make([]string, len(t.Values))
		for i, v := range t.Values {
			parts[i] = strconv.FormatInt(v, 10)
		}
		return "(" + strings.Join(parts, "|") + ")"
	}
}

func (t *Numbers) Hash() uint64 {
	h := uint64(0xc0ffee0000000005)
	h = h*31 + uint64(t.Kind)
	for _, v := range t.Values {
		h = h*31 + uint64(v)
	}
	return h
}

func (t *Numbers) Flags() Flags {
	if t.Kind == NumAll {
		return FlagNumber
	}
	return FlagInteger
}

func (t *Numbers) base() Ty { return t }

// subNumbers reports a <: b within the numeric category.
func subNumbers(a, b *Numbers) bool {
	switch {
	case b.Kind == NumAll:
		return true
	case a.Kind == NumAll:
		return false
	case b.Kind == NumInt:
		return true
	case a.Kind == NumInt:
		return false
	default:
		return int64Subset(a.Values, b.Values)
	}
}

func unionNumbers(a, b *Numbers) *Numbers {
	switch {
	case a.Kind == NumAll || b.Kind == NumAll:
		return &Numbers{Kind: NumAll}
	case a.Kind == NumInt || b.Kind == NumInt:
		return &Numbers{Kind: NumInt}
	default:
		data := append(append([]int64(nil), a.Values...), b.Values...)
		n := set.Union(int64Slice(data), len(a.Values))
		return &Numbers{Kind: NumSet, Values: data[:n]}
	}
}

// intersectNumbers returns nil when the intersection is empty.
func intersectNumbers(a, b *Numbers) *Numbers {
	switch {
	case a.Kind == NumAll:
		return b
	case b.Kind == NumAll:
		return a
	case a.Kind == NumInt:
		return b
	case b.Kind == NumInt:
		return a
	default:
		data := append(append([]int64(nil), a.Values...), b.Values...)
		n := set.Inter(int64Slice(data), len(a.Values))
		if n == 0 {
			return nil
		}
		return &Numbers{Kind: NumSet, Values: data[:n]}
	}
}

type int64Slice []int64

func (s int64Slice) Len() int           { return len(s) }
func (s int64Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s int64Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func int64Subset(a, b []int64) bool {
	data := append(append([]int64(nil), a...), b...)
	n := set.Inter(int64Slice(data), len(a))
	return n == len(a)
}
