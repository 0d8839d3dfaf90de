package check

import (
	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/parser"
	"github.com/cottand/luatic/frontend/types"
)

// Resolver locates the source of a required module. path and cpath are
// the current `package.path`/`package.cpath` template lists, with `?`
// standing for the module name; implementations try each pattern in
// order. found is false when no pattern names an existing file.
type Resolver interface {
	Resolve(name, path, cpath string) (unit string, src []byte, found bool, err error)
}

type moduleState int

const (
	moduleLoading moduleState = iota
	moduleLoaded
)

// moduleInfo tracks one required module through its check.
type moduleInfo struct {
	state   moduleState
	span    ast.Span // where the module was first required
	ty      types.Ty
	exports []export
}

// moduleGraph tracks required modules and the search paths used to
// resolve them. A path becomes unknown when the checked program assigns
// something non-literal to it.
type moduleGraph struct {
	path       string
	cpath      string
	pathKnown  bool
	cpathKnown bool
	mods       map[string]*moduleInfo
}

func newModuleGraph(path, cpath string) *moduleGraph {
	return &moduleGraph{
		path:       path,
		cpath:      cpath,
		pathKnown:  true,
		cpathKnown: true,
		mods:       make(map[string]*moduleInfo),
	}
}

func (g *moduleGraph) setPath(p string)  { g.path, g.pathKnown = p, true }
func (g *moduleGraph) setCpath(p string) { g.cpath, g.cpathKnown = p, true }
func (g *moduleGraph) invalidatePath()   { g.pathKnown = false }
func (g *moduleGraph) invalidateCpath()  { g.cpathKnown = false }

// checkRequire resolves `require(name)` when the argument is a literal
// string, checking the target module and substituting its type for the
// loader's declared return.
func (c *Checker) checkRequire(at ast.Positioner, args []ast.Expr, argSeq types.TySeq, rets types.TySeq) types.TySeq {
	blame := at
	if len(args) > 0 {
		blame = args[0]
	}
	name, ok := singletonString(argSeq.At(0))
	if !ok {
		c.report(lerr.NewUnresolvedRequire{Positioner: blame, Strict: c.sess.feats.StrictRequire})
		return rets
	}
	return types.Seq(c.requireModule(name, blame))
}

// requireModule checks a module once and caches its type. A module that
// is required again while still being checked is a cycle.
func (c *Checker) requireModule(name string, at ast.Positioner) types.Ty {
	g := c.sess.modules
	if info, ok := g.mods[name]; ok {
		if info.state == moduleLoading {
			c.report(lerr.NewRecursiveRequire{
				Positioner: at,
				Notes:      []lerr.Cause{lerr.NoteAt("The module was first required here", info.span)},
			})
			return types.Dynamic{}
		}
		c.importExports(info.exports, at)
		return info.ty
	}
	if c.sess.resolver == nil || !g.pathKnown {
		c.report(lerr.NewUnresolvedRequire{Positioner: at, Strict: c.sess.feats.StrictRequire})
		return types.Dynamic{}
	}
	unit, src, found, err := c.sess.resolver.Resolve(name, g.path, g.cpath)
	if err != nil {
		c.report(lerr.NewInternal{Positioner: at, Err: err})
		return types.Dynamic{}
	}
	if !found {
		c.report(lerr.NewModuleNotFound{Positioner: at, Name: name})
		return types.Dynamic{}
	}

	info := &moduleInfo{state: moduleLoading, span: ast.SpanOf(at)}
	g.mods[name] = info
	c.sess.logger.Debug("requiring a module", "name", name, "unit", unit)

	file, perrs := parser.Parse(c.sess.fset, unit, src)
	c.sess.errs = c.sess.errs.Merge(perrs)
	ty, exports := c.checkUnit(file)

	if lit, ok := types.Base(ty).(types.BoolLit); ok && !lit.Value {
		c.report(lerr.NewModuleReturnsFalse{Positioner: at})
		ty = types.Dynamic{}
	}
	if v, ok := types.Base(ty).(types.VarTy); ok {
		if c.sess.ctx.ResolveTVar(v.Var) == nil {
			c.report(lerr.NewModuleNotResolved{Positioner: at})
			ty = types.Dynamic{}
		}
	}

	info.state = moduleLoaded
	info.ty = ty
	info.exports = exports
	c.importExports(exports, at)
	return ty
}

// importExports brings a module's scoped type aliases into the scope
// that required it. A clashing alias must name the very same type.
func (c *Checker) importExports(exports []export, at ast.Positioner) {
	for _, ex := range exports {
		if def := c.lookupType(ex.name); def != nil {
			if types.Eq(def.ty, ex.ty, c.sess.ctx) != nil {
				c.report(lerr.NewTypeRedefined{
					Positioner: at,
					Name:       ex.name,
					Notes:      []lerr.Cause{lerr.NoteAt("The type was first defined here", def.span)},
				})
			}
			continue
		}
		c.currentScope().types[ex.name] = &typeDef{ty: ex.ty, span: ex.span, vis: ast.TypeVisScoped}
	}
}
