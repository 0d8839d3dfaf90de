// Package check implements the static checker. It walks parsed units,
// infers types for every expression, verifies them against the comment
// annotations, and follows `require` calls so that a whole program is
// checked from its entry point.
package check

import (
	"go/token"
	"log/slog"
	"sort"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/types"
	"github.com/cottand/luatic/internal/log"
	"github.com/cottand/luatic/util"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "check")

// Features toggles the optional diagnostics of a session.
type Features struct {
	// WarnDeadCode reports statements that can never execute.
	WarnDeadCode bool
	// WarnUselessCond reports conditions that are always truthy or
	// always falsy.
	WarnUselessCond bool
	// NoImplicitFuncSign rejects function literals whose parameters get
	// no type from an annotation or the calling context.
	NoImplicitFuncSign bool
	// StrictRequire turns an unresolvable `require` argument from a
	// warning into an error.
	StrictRequire bool
}

// Set enables a feature by its command-line name.
func (f *Features) Set(name string) error {
	switch name {
	case "warn-dead-code":
		f.WarnDeadCode = true
	case "warn-useless-cond":
		f.WarnUselessCond = true
	case "no-implicit-func-sign":
		f.NoImplicitFuncSign = true
	case "strict-require":
		f.StrictRequire = true
	default:
		return errors.Errorf("unknown feature %q", name)
	}
	return nil
}

// Options configures a checking session.
type Options struct {
	Features Features

	// Resolver locates the source of required modules. When nil, every
	// `require` reports its target as unresolvable.
	Resolver Resolver

	// PackagePath seeds the `package.path` templates the Resolver is
	// given, until the checked program assigns the variable itself.
	PackagePath string
	// PackageCpath seeds `package.cpath` the same way.
	PackageCpath string

	// Preload names built-in declaration sets opened before checking
	// starts, as if the root unit began with `--# open` pragmas.
	Preload []string
}

// session is the state shared by every unit of one run: the constraint
// context, the global scope, the module graph and the diagnostic sink.
type session struct {
	fset        *token.FileSet
	ctx         *types.Ctx
	global      *scope
	modules     *moduleGraph
	errs        *lerr.Errors
	feats       Features
	resolver    Resolver
	opened      map[string]bool
	strMeta     *types.Tables
	strMetaSpan ast.Span
	logger      *slog.Logger
}

// Checker checks one unit. Checkers for different units share a
// session; each keeps its own scope stack and flow frames.
type Checker struct {
	sess   *session
	scopes []*scope
	flows  util.Stack[*flowFrame]
}

// New builds a fresh session. Every unit handed to CheckFile must have
// been parsed against fset so diagnostics render the right positions.
func New(fset *token.FileSet, opts Options) *Checker {
	sess := &session{
		fset:     fset,
		ctx:      types.NewCtx(),
		global:   newScope(&frame{}),
		modules:  newModuleGraph(opts.PackagePath, opts.PackageCpath),
		feats:    opts.Features,
		resolver: opts.Resolver,
		opened:   make(map[string]bool),
		logger:   logger,
	}
	c := &Checker{sess: sess}
	for _, lib := range opts.Preload {
		c.openLibrary(lib, ast.Span{})
	}
	return c
}

// Ctx exposes the session's constraint context, mainly so tests can
// resolve inferred variables.
func (c *Checker) Ctx() *types.Ctx { return c.sess.ctx }

// Errors returns every diagnostic accumulated so far.
func (c *Checker) Errors() *lerr.Errors { return c.sess.errs }

// CheckFile checks the root unit, following its `require` calls, and
// returns the session's diagnostics.
func (c *Checker) CheckFile(file *ast.File) *lerr.Errors {
	ty, _ := c.checkUnit(file)
	c.sess.logger.Debug("checked root unit", "file", file.Name, "module", ty)
	return c.sess.errs
}

func (c *Checker) report(err lerr.LuaticError) {
	c.sess.errs = c.sess.errs.With(lerr.New(err))
}

// export is a scoped type alias a unit hands to whoever requires it.
type export struct {
	name string
	ty   types.Ty
	span ast.Span
}

// checkUnit checks one unit under a fresh scope stack and reports the
// type `require` would yield for it along with its exported aliases.
// The unit sees `...` as WHATEVER, matching the loader's argument.
func (c *Checker) checkUnit(file *ast.File) (types.Ty, []export) {
	unit := &Checker{sess: c.sess}
	vararg := types.TySeq{Tail: types.Dynamic{}}
	unitScope := newScope(&frame{vararg: &vararg})
	unit.scopes = []*scope{unitScope}

	unit.checkBlock(file.Block)

	// Lua turns a module that returns nothing, or nil, into true.
	ty := types.Ty(types.True())
	if rets := unitScope.frame.returns; rets != nil {
		ty = rets.At(0)
		if _, isNil := ty.(types.Nil); isNil {
			ty = types.True()
		}
	}

	var exports []export
	for name, def := range unitScope.types {
		if def.vis == ast.TypeVisScoped {
			exports = append(exports, export{name: name, ty: def.ty, span: def.span})
		}
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].name < exports[j].name })
	return ty, exports
}
