package luatic

import (
	"go/token"
	"io/fs"
	"strings"
	"testing/fstest"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/check"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/parser"
	"github.com/cottand/luatic/internal/log"
	"github.com/pkg/errors"
)

var sessionLogger = log.DefaultLogger.With("section", "modules")

// DefaultPackagePath is the search template `require` starts from, until
// the checked program assigns package.path itself. Entries are separated
// by `;` and `?` stands for the module name with dots turned into
// slashes.
const DefaultPackagePath = "?.lua;?/init.lua"

// Settings configure one checking session.
type Settings struct {
	// Root is the path of the unit to check, relative to the filesystem
	// root. When empty, the first .lua file at the top level is used.
	Root string

	Features check.Features

	// PackagePath overrides DefaultPackagePath as the initial `require`
	// search template. PackageCpath has no default: the checker cannot
	// look inside compiled modules, so cpath entries never resolve.
	PackagePath  string
	PackageCpath string

	// NoBuiltins skips preloading the lua51 declarations, leaving the
	// global scope empty.
	NoBuiltins bool
}

// Session is a single checking run over a root unit and the modules it
// transitively requires. Every unit shares one FileSet, so any
// diagnostic position can be resolved against it.
type Session struct {
	fset   *token.FileSet
	root   string
	syntax *ast.File
	errors *lerr.Errors
}

func (s *Session) FileSet() *token.FileSet { return s.fset }

// Root returns the path of the checked root unit.
func (s *Session) Root() string { return s.root }

func (s *Session) Syntax() *ast.File { return s.syntax }

// Errors returns every diagnostic of the run, parse and check alike.
func (s *Session) Errors() *lerr.Errors { return s.errors }

// LoadProgram checks the root unit found in fsys, resolving `require`
// against the same filesystem. The returned error covers driver
// failures only; diagnostics live in Session.Errors.
func LoadProgram(fsys fs.FS, settings Settings) (*Session, error) {
	root := settings.Root
	if root == "" {
		found, err := firstLuaFile(fsys)
		if err != nil {
			return nil, err
		}
		root = found
	}
	src, err := fs.ReadFile(fsys, root)
	if err != nil {
		return nil, errors.Wrapf(err, "read root unit %s", root)
	}

	pkgPath := settings.PackagePath
	if pkgPath == "" {
		pkgPath = DefaultPackagePath
	}
	opts := check.Options{
		Features:     settings.Features,
		Resolver:     &fsResolver{fsys: fsys},
		PackagePath:  pkgPath,
		PackageCpath: settings.PackageCpath,
	}
	if !settings.NoBuiltins {
		opts.Preload = []string{"lua51"}
	}

	fset := token.NewFileSet()
	file, perrs := parser.Parse(fset, root, src)
	c := check.New(fset, opts)
	sess := &Session{
		fset:   fset,
		root:   root,
		syntax: file,
		errors: perrs.Merge(c.CheckFile(file)),
	}
	sessionLogger.Debug("session finished", "root", root, "diagnostics", sess.errors.Len())
	return sess, nil
}

// CheckProgramFromBytes runs a whole session over a single in-memory
// unit, meant for tests and embedders.
func CheckProgramFromBytes(data []byte) (*Session, *lerr.Errors, error) {
	fsys := fstest.MapFS{
		"main.lua": &fstest.MapFile{Data: data},
	}
	sess, err := LoadProgram(fsys, Settings{Root: "main.lua"})
	if err != nil {
		return nil, nil, err
	}
	return sess, sess.Errors(), nil
}

func firstLuaFile(fsys fs.FS) (string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", errors.Wrap(err, "read program root")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			return e.Name(), nil
		}
	}
	return "", errors.New("no .lua unit found at the program root")
}

var _ check.Resolver = &fsResolver{}

// fsResolver locates module sources with Lua's search templates: each
// `;`-separated entry of the path has its `?` replaced by the module
// name, dots turned into slashes.
type fsResolver struct {
	fsys fs.FS
}

func (r *fsResolver) Resolve(name, searchPath, cpath string) (string, []byte, bool, error) {
	rel := strings.ReplaceAll(name, ".", "/")
	for _, tmpl := range strings.Split(searchPath, ";") {
		if tmpl == "" {
			continue
		}
		candidate := strings.TrimPrefix(strings.ReplaceAll(tmpl, "?", rel), "./")
		if !fs.ValidPath(candidate) {
			continue
		}
		data, err := fs.ReadFile(r.fsys, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", nil, false, errors.Wrapf(err, "read module %s", candidate)
		}
		sessionLogger.Debug("resolved module", "name", name, "unit", candidate)
		return candidate, data, true, nil
	}
	return "", nil, false, nil
}
