package types

// SlotMode governs how a stored type may change through assignment.
type SlotMode uint8

const (
	// ModeVar is an ordinary mutable slot: writes must keep the
	// declared type.
	ModeVar SlotMode = iota
	// ModeConst rejects writes entirely.
	ModeConst
	// ModeCurrently tracks the flow-sensitive type of an unannotated
	// local: assignments may replace the type wholesale.
	ModeCurrently
	// ModeJust is the transient mode of a freshly produced rvalue
	// before it settles into a binding.
	ModeJust
)

func (m SlotMode) String() string {
	switch m {
	case ModeVar:
		return "var"
	case ModeConst:
		return "const"
	case ModeCurrently:
		return "currently"
	default:
		return "just"
	}
}

// Slot pairs a type with its mutability mode. Req marks a slot declared
// with `!`: it must be definitely assigned before first read. Slots are
// immutable; updates produce fresh slots.
type Slot struct {
	Mode SlotMode
	Ty   Ty
	Req  bool
}

func VarSlot(t Ty) *Slot     { return &Slot{Mode: ModeVar, Ty: t} }
func ConstSlot(t Ty) *Slot   { return &Slot{Mode: ModeConst, Ty: t} }
func CurrentSlot(t Ty) *Slot { return &Slot{Mode: ModeCurrently, Ty: t} }
func JustSlot(t Ty) *Slot    { return &Slot{Mode: ModeJust, Ty: t} }

func (s *Slot) WithTy(t Ty) *Slot {
	return &Slot{Mode: s.Mode, Ty: t, Req: s.Req}
}

func (s *Slot) WithMode(m SlotMode) *Slot {
	return &Slot{Mode: m, Ty: s.Ty, Req: s.Req}
}

func (s *Slot) String() string {
	out := s.Ty.String()
	if s.Req {
		out += "!"
	}
	if s.Mode == ModeConst {
		out = "const " + out
	}
	return out
}

func (s *Slot) Hash() uint64 {
	h := uint64(0xc0ffee0000000d)
	h = h*31 + uint64(s.Mode)
	h = h*31 + s.Ty.Hash()
	if s.Req {
		h = h*31 + 1
	}
	return h
}

// subSlot checks that a value in slot a can be seen through slot b.
// A constant target only reads, so covariance suffices. Any writable
// target makes the type invariant. A Just source is a bare rvalue and
// is always placed covariantly.
func subSlot(a, b *Slot, ctx *Ctx) *TypeError {
	if a.Mode == ModeJust || b.Mode == ModeConst {
		return Sub(a.Ty, b.Ty, ctx)
	}
	return Eq(a.Ty, b.Ty, ctx)
}

func eqSlot(a, b *Slot, ctx *Ctx) *TypeError {
	return Eq(a.Ty, b.Ty, ctx)
}

// joinSlot merges slots from converging branches.
func joinSlot(a, b *Slot, ctx *Ctx) *Slot {
	mode := a.Mode
	switch {
	case a.Mode == b.Mode:
	case a.Mode == ModeCurrently || b.Mode == ModeCurrently:
		mode = ModeCurrently
	default:
		mode = ModeVar
	}
	return &Slot{Mode: mode, Ty: Join(a.Ty, b.Ty, ctx), Req: a.Req && b.Req}
}

// JoinSlot merges the states a slot reached on converging branches.
func JoinSlot(a, b *Slot, ctx *Ctx) *Slot { return joinSlot(a, b, ctx) }

// nilSlot is the implicit slot of an absent field or element.
func nilSlot() *Slot { return JustSlot(Nil{}) }
