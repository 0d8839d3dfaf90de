package check

import (
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/types"
	"github.com/cottand/luatic/util"
)

// binding is one variable in scope: the slot it currently holds, where
// it was declared, and whether a `!` slot has been assigned yet.
type binding struct {
	slot   *types.Slot
	span   ast.Span
	init   bool
	global bool
	// annotated marks bindings whose type came from an annotation, so a
	// later conflicting annotation is a redefinition rather than a merge.
	annotated bool
}

// typeDef is a named type alias with its visibility.
type typeDef struct {
	ty   types.Ty
	span ast.Span
	vis  ast.TypeVis
}

// frame carries the function-level state of a scope: the vararg type
// and the return sequence collected or declared so far. A nil returns
// field means nothing has returned yet; returnsExact pins the sequence
// so that later returns are checked against it instead of widening it.
type frame struct {
	vararg       *types.TySeq
	returns      *types.TySeq
	returnsExact bool
}

// scope is one lexical level. frame is non-nil only when the scope is a
// function boundary.
type scope struct {
	names map[string]*binding
	types map[string]*typeDef
	frame *frame
}

func newScope(fr *frame) *scope {
	return &scope{
		names: make(map[string]*binding),
		types: make(map[string]*typeDef),
		frame: fr,
	}
}

func (c *Checker) enterScope()              { c.scopes = append(c.scopes, newScope(nil)) }
func (c *Checker) enterFuncScope(fr *frame) { c.scopes = append(c.scopes, newScope(fr)) }
func (c *Checker) leaveScope()              { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) currentScope() *scope { return c.scopes[len(c.scopes)-1] }

// lookupLocal walks the lexical stack only, innermost first.
func (c *Checker) lookupLocal(name string) *binding {
	for s := range util.Reverse(c.scopes) {
		if b, ok := s.names[name]; ok {
			return b
		}
	}
	return nil
}

// lookup resolves a name lexically, falling back to the globals shared
// by every unit of the session.
func (c *Checker) lookup(name string) *binding {
	if b := c.lookupLocal(name); b != nil {
		return b
	}
	if b, ok := c.sess.global.names[name]; ok {
		return b
	}
	return nil
}

// defineLocal declares a name in the current scope, shadowing any outer
// binding with the same name.
func (c *Checker) defineLocal(name string, slot *types.Slot, at ast.Positioner, init bool) *binding {
	b := &binding{slot: slot, span: ast.SpanOf(at), init: init}
	c.currentScope().names[name] = b
	c.sess.logger.Debug("adding a local variable", "name", name, "slot", slot)
	return b
}

// defineGlobal declares a name in the session's global scope.
func (c *Checker) defineGlobal(name string, slot *types.Slot, at ast.Positioner) *binding {
	b := &binding{slot: slot, span: ast.SpanOf(at), init: true, global: true}
	c.sess.global.names[name] = b
	c.sess.logger.Debug("adding a global variable", "name", name, "slot", slot)
	return b
}

// currentFrame is the innermost function frame; the unit scope always
// has one, so this cannot miss.
func (c *Checker) currentFrame() *frame {
	for s := range util.Reverse(c.scopes) {
		if s.frame != nil {
			return s.frame
		}
	}
	return c.sess.global.frame
}

// lookupType resolves a type alias through the scope stack, then the
// global aliases.
func (c *Checker) lookupType(name string) *typeDef {
	for s := range util.Reverse(c.scopes) {
		if def, ok := s.types[name]; ok {
			return def
		}
	}
	if def, ok := c.sess.global.types[name]; ok {
		return def
	}
	return nil
}

// flowEntry is a binding's state at a branch point.
type flowEntry struct {
	slot *types.Slot
	init bool
}

// flowFrame records the entry state of every binding mutated inside a
// branch, so the branch can be rolled back and joined with its peers.
type flowFrame struct {
	entries map[*binding]flowEntry
}

func (c *Checker) pushFlow() {
	c.flows.Push(&flowFrame{entries: make(map[*binding]flowEntry)})
}

// touch snapshots a binding in the innermost flow frame before its
// first mutation there.
func (c *Checker) touch(b *binding) {
	fr, ok := c.flows.Peek()
	if !ok {
		return
	}
	if _, ok := fr.entries[b]; !ok {
		fr.entries[b] = flowEntry{slot: b.slot, init: b.init}
	}
}

// setSlot routes every slot mutation so active branches can restore and
// merge it later.
func (c *Checker) setSlot(b *binding, s *types.Slot) {
	c.touch(b)
	b.slot = s
}

func (c *Checker) markInit(b *binding) {
	c.touch(b)
	b.init = true
}

// popFlow rolls every touched binding back to its entry state and
// returns what the branch left it as.
func (c *Checker) popFlow() map[*binding]flowEntry {
	fr, _ := c.flows.Pop()
	finals := make(map[*binding]flowEntry, len(fr.entries))
	for b, entry := range fr.entries {
		finals[b] = flowEntry{slot: b.slot, init: b.init}
		b.slot = entry.slot
		b.init = entry.init
	}
	return finals
}

// mergeFlows joins the final states of sibling branches back into the
// live bindings. withEntry also joins the state from before the
// branches, for constructs where none of them may run. Branches that
// cannot fall through (they always return or break) pass nil and do not
// take part in the join.
func (c *Checker) mergeFlows(withEntry bool, branches ...map[*binding]flowEntry) {
	touched := make(map[*binding]bool)
	live := 0
	for _, branch := range branches {
		if branch == nil {
			continue
		}
		live++
		for b := range branch {
			touched[b] = true
		}
	}
	if live == 0 {
		return
	}
	for b := range touched {
		entry := flowEntry{slot: b.slot, init: b.init}
		var slot *types.Slot
		init := true
		join := func(e flowEntry) {
			if slot == nil {
				slot = e.slot
			} else {
				slot = types.JoinSlot(slot, e.slot, c.sess.ctx)
			}
			init = init && e.init
		}
		for _, branch := range branches {
			if branch == nil {
				continue
			}
			if e, ok := branch[b]; ok {
				join(e)
			} else {
				join(entry)
			}
		}
		if withEntry {
			join(entry)
		}
		c.touch(b)
		b.slot = slot
		b.init = init
	}
}
