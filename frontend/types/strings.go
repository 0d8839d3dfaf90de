package types

import (
	"sort"
	"strconv"
	strlib "strings"

	"github.com/xtgo/set"
)

type StrKind uint8

const (
	StrAll StrKind = iota // any string
	StrSet                // a finite set of string literals
)

// Strings covers the string category, mirroring Numbers one rung
// shorter: there is no "integer string" middle layer.
type Strings struct {
	Kind   StrKind
	Values []string
}

func String() Ty { return &Strings{Kind: StrAll} }
func Str(v string) Ty {
	return &Strings{Kind: StrSet, Values: []string{v}}
}

func Strs(vs ...string) Ty {
	data := append([]string(nil), vs...)
	s := sort.StringSlice(data)
	sort.Sort(s)
	n := set.Uniq(s)
	if n == 0 {
		return None{}
	}
	return &Strings{Kind: StrSet, Values: data[:n]}
}

func (t *Strings) String() string {
	if t.Kind == StrAll {
		return "string"
	}
	if len(t.Values) == 1 {
		return strconv.Quote(t.Values[0])
	}
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = strconv.Quote(v)
	}
	return "(" + strlib.Join(parts, "|") + ")"
}

func (t *Strings) Hash() uint64 {
	h := uint64(0xc0ffee0000000007)
	h = h*31 + uint64(t.Kind)
	for _, v := range t.Values {
		for i := 0; i < len(v); i++ {
			h = h*31 + uint64(v[i])
		}
		h = h*31 + 0xff
	}
	return h
}

func (t *Strings) Flags() Flags { return FlagString }
func (t *Strings) base() Ty     { return t }

func subStrings(a, b *Strings) bool {
	switch {
	case b.Kind == StrAll:
		return true
	case a.Kind == StrAll:
		return false
	default:
		return stringSubset(a.Values, b.Values)
	}
}

func unionStrings(a, b *Strings) *Strings {
	if a.Kind == StrAll || b.Kind == StrAll {
		return &Strings{Kind: StrAll}
	}
	data := append(append([]string(nil), a.Values...), b.Values...)
	n := set.Union(sort.StringSlice(data), len(a.Values))
	return &Strings{Kind: StrSet, Values: data[:n]}
}

func intersectStrings(a, b *Strings) *Strings {
	switch {
	case a.Kind == StrAll:
		return b
	case b.Kind == StrAll:
		return a
	default:
		data := append(append([]string(nil), a.Values...), b.Values...)
		n := set.Inter(sort.StringSlice(data), len(a.Values))
		if n == 0 {
			return nil
		}
		return &Strings{Kind: StrSet, Values: data[:n]}
	}
}

func stringSubset(a, b []string) bool {
	data := append(append([]string(nil), a...), b...)
	n := set.Inter(sort.StringSlice(data), len(a))
	return n == len(a)
}
