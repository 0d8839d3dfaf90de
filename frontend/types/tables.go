package types

import (
	"fmt"
	"sort"
	"strings"
)

// Shape picks the structural discipline of a table type.
type Shape uint8

const (
	ShapeAll    Shape = iota // table, structure unknown
	ShapeEmpty               // {}, no committed structure yet
	ShapeRecord              // {a = T, b = U} with string keys
	ShapeTuple               // {T, U} with consecutive integer keys
	ShapeArray               // vector<T>
	ShapeMap                 // map<K, V>
)

// Field is one named record entry.
type Field struct {
	Name string
	Slot *Slot
}

// Tables covers the table category. Only the parts named by Shape are
// populated: Fields and Row for records, Elems for tuples, Elem for
// arrays, Key and Value for maps. Fields stay sorted by name so hashes
// are canonical.
type Tables struct {
	Shape  Shape
	Fields []Field
	Row    RowVar
	Elems  []*Slot
	Elem   *Slot
	Key    Ty
	Value  *Slot
}

func Table() Ty      { return &Tables{Shape: ShapeAll} }
func EmptyTable() Ty { return &Tables{Shape: ShapeEmpty} }

func Record(fields ...Field) Ty {
	sortFields(fields)
	return &Tables{Shape: ShapeRecord, Fields: fields}
}

// OpenRecord is a record with an extensible tail: values may carry
// fields beyond the listed ones, tracked through row.
func OpenRecord(row RowVar, fields ...Field) Ty {
	sortFields(fields)
	return &Tables{Shape: ShapeRecord, Fields: fields, Row: row}
}

func Tuple(elems ...*Slot) Ty { return &Tables{Shape: ShapeTuple, Elems: elems} }
func Array(elem *Slot) Ty     { return &Tables{Shape: ShapeArray, Elem: elem} }
func MapOf(key Ty, value *Slot) Ty {
	return &Tables{Shape: ShapeMap, Key: key, Value: value}
}

func sortFields(fields []Field) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
}

func (t *Tables) String() string {
	switch t.Shape {
	case ShapeAll:
		return "table"
	case ShapeEmpty:
		return "{}"
	case ShapeRecord:
		parts := make([]string, 0, len(t.Fields)+1)
		for _, f := range t.Fields {
			parts = append(parts, fmt.Sprintf("%s = %s", f.Name, f.Slot))
		}
		if t.Row != 0 {
			parts = append(parts, "...")
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ShapeTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ShapeArray:
		return "vector<" + t.Elem.String() + ">"
	default:
		return "map<" + t.Key.String() + ", " + t.Value.String() + ">"
	}
}

func (t *Tables) Hash() uint64 {
	h := uint64(0xc0ffee0000000003)
	h = h*31 + uint64(t.Shape)
	for _, f := range t.Fields {
		for i := 0; i < len(f.Name); i++ {
			h = h*31 + uint64(f.Name[i])
		}
		h = h*31 + f.Slot.Hash()
	}
	h = h*31 + uint64(t.Row)
	for _, e := range t.Elems {
		h = h*31 + e.Hash()
	}
	if t.Elem != nil {
		h = h*31 + t.Elem.Hash()
	}
	if t.Key != nil {
		h = h*31 + t.Key.Hash()
	}
	if t.Value != nil {
		h = h*31 + t.Value.Hash()
	}
	return h
}

func (t *Tables) Flags() Flags { return FlagTable }
func (t *Tables) base() Ty     { return t }

// FindField looks up a record field cell by name.
func (t *Tables) FindField(name string) (*Slot, bool) { return t.findField(name) }

func (t *Tables) findField(name string) (*Slot, bool) {
	i := sort.Search(len(t.Fields), func(i int) bool { return t.Fields[i].Name >= name })
	if i < len(t.Fields) && t.Fields[i].Name == name {
		return t.Fields[i].Slot, true
	}
	return nil, false
}

// acceptsNil reports whether a missing entry is fine for this slot.
func acceptsNil(s *Slot, ctx *Ctx) bool {
	return Sub(Nil{}, s.Ty, ctx) == nil
}

// subTables checks a <: b between two table shapes.
func subTables(a, b *Tables, ctx *Ctx) *TypeError {
	if b.Shape == ShapeAll {
		return nil
	}
	fail := func() *TypeError { return notSub(a, b) }

	switch a.Shape {
	case ShapeAll:
		return fail()

	case ShapeEmpty:
		switch b.Shape {
		case ShapeEmpty, ShapeArray, ShapeMap:
			return nil
		case ShapeRecord:
			// an empty table reads nil for every field
			for _, f := range b.Fields {
				if !acceptsNil(f.Slot, ctx) {
					return fail().because(notSub(Nil{}, f.Slot.Ty))
				}
			}
			return nil
		default: // tuple
			for _, e := range b.Elems {
				if !acceptsNil(e, ctx) {
					return fail().because(notSub(Nil{}, e.Ty))
				}
			}
			return nil
		}

	case ShapeRecord:
		// fields committed through row accretion count the same as the
		// literal ones
		lookup := func(name string) (*Slot, bool) {
			if s, ok := a.findField(name); ok {
				return s, true
			}
			if a.Row != 0 && ctx != nil {
				return ctx.FindRowField(a.Row, name)
			}
			return nil, false
		}
		switch b.Shape {
		case ShapeRecord:
			for _, bf := range b.Fields {
				if af, ok := lookup(bf.Name); ok {
					if err := subSlot(af, bf.Slot, ctx); err != nil {
						return fail().because(err)
					}
				} else if !acceptsNil(bf.Slot, ctx) {
					return fail().because(&TypeError{
						Msg: fmt.Sprintf("the field `%s` is missing and cannot be nil", bf.Name),
					})
				}
			}
			if b.Row == 0 {
				// a closed target admits no extra fields
				for _, af := range a.Fields {
					if _, ok := b.findField(af.Name); !ok {
						return fail().because(&TypeError{
							Msg: fmt.Sprintf("the field `%s` is not present in the target record", af.Name),
						})
					}
				}
				if a.Row != 0 {
					if ctx == nil {
						return fail().because(&TypeError{Msg: "the record may have unlisted fields"})
					}
					for _, af := range ctx.RowFields(a.Row) {
						if _, ok := b.findField(af.Name); !ok {
							return fail().because(&TypeError{
								Msg: fmt.Sprintf("the field `%s` is not present in the target record", af.Name),
							})
						}
					}
					// meeting a closed annotation coerces the row shut, so
					// no later write can grow past the declared field set
					ctx.CloseRow(a.Row)
				}
			}
			return nil
		case ShapeMap:
			fs := a.Fields
			if a.Row != 0 && ctx != nil {
				fs = append(fs[:len(fs):len(fs)], ctx.RowFields(a.Row)...)
			}
			for _, af := range fs {
				if err := Sub(Str(af.Name), b.Key, ctx); err != nil {
					return fail().because(err)
				}
				if err := subSlot(af.Slot, b.Value, ctx); err != nil {
					return fail().because(err)
				}
			}
			return nil
		default:
			return fail()
		}

	case ShapeTuple:
		switch b.Shape {
		case ShapeTuple:
			n := len(a.Elems)
			if len(b.Elems) > n {
				n = len(b.Elems)
			}
			for i := 0; i < n; i++ {
				if err := subSlot(tupleAt(a.Elems, i), tupleAt(b.Elems, i), ctx); err != nil {
					return fail().because(err)
				}
			}
			return nil
		case ShapeArray:
			for _, e := range a.Elems {
				if err := subSlot(e, b.Elem, ctx); err != nil {
					return fail().because(err)
				}
			}
			return nil
		case ShapeMap:
			if err := Sub(Integer(), b.Key, ctx); err != nil {
				return fail().because(err)
			}
			for _, e := range a.Elems {
				if err := subSlot(e, b.Value, ctx); err != nil {
					return fail().because(err)
				}
			}
			return nil
		default:
			return fail()
		}

	case ShapeArray:
		switch b.Shape {
		case ShapeArray:
			if err := subSlot(a.Elem, b.Elem, ctx); err != nil {
				return fail().because(err)
			}
			return nil
		case ShapeMap:
			if err := Sub(Integer(), b.Key, ctx); err != nil {
				return fail().because(err)
			}
			if err := subSlot(a.Elem, b.Value, ctx); err != nil {
				return fail().because(err)
			}
			return nil
		default:
			return fail()
		}

	default: // map
		if b.Shape != ShapeMap {
			return fail()
		}
		if err := Sub(a.Key, b.Key, ctx); err != nil {
			return fail().because(err)
		}
		if err := subSlot(a.Value, b.Value, ctx); err != nil {
			return fail().because(err)
		}
		return nil
	}
}

func tupleAt(elems []*Slot, i int) *Slot {
	if i < len(elems) {
		return elems[i]
	}
	return nilSlot()
}

func eqTables(a, b *Tables, ctx *Ctx) *TypeError {
	if a.Shape != b.Shape {
		return notEq(a, b)
	}
	switch a.Shape {
	case ShapeAll, ShapeEmpty:
		return nil
	case ShapeRecord:
		if len(a.Fields) != len(b.Fields) || a.Row != b.Row {
			return notEq(a, b)
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				return notEq(a, b)
			}
			if err := eqSlot(a.Fields[i].Slot, b.Fields[i].Slot, ctx); err != nil {
				return notEq(a, b).because(err)
			}
		}
		return nil
	case ShapeTuple:
		if len(a.Elems) != len(b.Elems) {
			return notEq(a, b)
		}
		for i := range a.Elems {
			if err := eqSlot(a.Elems[i], b.Elems[i], ctx); err != nil {
				return notEq(a, b).because(err)
			}
		}
		return nil
	case ShapeArray:
		if err := eqSlot(a.Elem, b.Elem, ctx); err != nil {
			return notEq(a, b).because(err)
		}
		return nil
	default:
		if err := Eq(a.Key, b.Key, ctx); err != nil {
			return notEq(a, b).because(err)
		}
		if err := eqSlot(a.Value, b.Value, ctx); err != nil {
			return notEq(a, b).because(err)
		}
		return nil
	}
}

// unionTables fuses two table shapes into one covering both. A union
// type never carries two table members, so fusion must always succeed,
// generalizing towards map when the shapes disagree.
func unionTables(a, b *Tables, ctx *Ctx) *Tables {
	if a.Shape == ShapeAll || b.Shape == ShapeAll {
		return &Tables{Shape: ShapeAll}
	}
	if a.Shape == ShapeEmpty {
		return fuseEmpty(b, ctx)
	}
	if b.Shape == ShapeEmpty {
		return fuseEmpty(a, ctx)
	}

	if a.Shape == ShapeRecord && b.Shape == ShapeRecord {
		fields := make([]Field, 0, len(a.Fields)+len(b.Fields))
		for _, af := range a.Fields {
			if bs, ok := b.findField(af.Name); ok {
				fields = append(fields, Field{Name: af.Name, Slot: joinSlot(af.Slot, bs, ctx)})
			} else {
				fields = append(fields, Field{Name: af.Name, Slot: withNilSlot(af.Slot, ctx)})
			}
		}
		for _, bf := range b.Fields {
			if _, ok := a.findField(bf.Name); !ok {
				fields = append(fields, Field{Name: bf.Name, Slot: withNilSlot(bf.Slot, ctx)})
			}
		}
		sortFields(fields)
		row := a.Row
		if row == 0 {
			row = b.Row
		}
		return &Tables{Shape: ShapeRecord, Fields: fields, Row: row}
	}

	if a.Shape == ShapeTuple && b.Shape == ShapeTuple {
		n := len(a.Elems)
		if len(b.Elems) > n {
			n = len(b.Elems)
		}
		elems := make([]*Slot, n)
		for i := 0; i < n; i++ {
			elems[i] = joinSlot(tupleAt(a.Elems, i), tupleAt(b.Elems, i), ctx)
		}
		return &Tables{Shape: ShapeTuple, Elems: elems}
	}

	if a.Shape == ShapeArray && b.Shape == ShapeArray {
		return &Tables{Shape: ShapeArray, Elem: joinSlot(a.Elem, b.Elem, ctx)}
	}

	ak, av := asMapParts(a, ctx)
	bk, bv := asMapParts(b, ctx)
	return &Tables{Shape: ShapeMap, Key: Join(ak, bk, ctx), Value: joinSlot(av, bv, ctx)}
}

// fuseEmpty widens t so that the empty table is one of its values.
func fuseEmpty(t *Tables, ctx *Ctx) *Tables {
	switch t.Shape {
	case ShapeEmpty, ShapeArray, ShapeMap:
		return t
	case ShapeRecord:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Slot: withNilSlot(f.Slot, ctx)}
		}
		return &Tables{Shape: ShapeRecord, Fields: fields, Row: t.Row}
	default: // tuple
		elems := make([]*Slot, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = withNilSlot(e, ctx)
		}
		return &Tables{Shape: ShapeTuple, Elems: elems}
	}
}

// asMapParts views any populated shape as map-like key and value parts.
func asMapParts(t *Tables, ctx *Ctx) (Ty, *Slot) {
	switch t.Shape {
	case ShapeRecord:
		value := nilSlot()
		for i, f := range t.Fields {
			if i == 0 {
				value = f.Slot
			} else {
				value = joinSlot(value, f.Slot, ctx)
			}
		}
		return String(), value
	case ShapeTuple:
		value := nilSlot()
		for i, e := range t.Elems {
			if i == 0 {
				value = e
			} else {
				value = joinSlot(value, e, ctx)
			}
		}
		return Integer(), value
	case ShapeArray:
		return Integer(), t.Elem
	default: // map
		return t.Key, t.Value
	}
}

func withNilSlot(s *Slot, ctx *Ctx) *Slot {
	return s.WithTy(Join(s.Ty, Nil{}, ctx))
}
