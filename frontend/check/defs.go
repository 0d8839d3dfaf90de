package check

import (
	"embed"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/frontend/parser"
)

//go:embed defs/*.lua
var defsFS embed.FS

// libraries maps `--# open` names to built-in declaration files.
var libraries = map[string]string{
	"lua51":                "defs/lua51.lua",
	"luatic_test":          "defs/luatic_test.lua",
	"internal luatic_test": "defs/luatic_test.lua",
}

// openLibrary loads a built-in declaration set. Each set is loaded once
// per session; later opens, under any alias, are no-ops.
func (c *Checker) openLibrary(name string, at ast.Span) {
	file, ok := libraries[name]
	if !ok {
		c.report(lerr.NewUnknownLibrary{Positioner: at, Name: name})
		return
	}
	if c.sess.opened[file] {
		return
	}
	c.sess.opened[file] = true
	c.sess.logger.Debug("opening a built-in library", "name", name)

	src, err := defsFS.ReadFile(file)
	if err != nil {
		c.report(lerr.NewInternal{Positioner: at, Err: err})
		return
	}
	unit, perrs := parser.Parse(c.sess.fset, file, src)
	c.sess.errs = c.sess.errs.Merge(perrs)
	c.checkUnit(unit)
}
