package lerr

import (
	"fmt"
	"go/token"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

func severityColor(s Severity) string {
	switch s {
	case Error:
		return ansiRed
	case Warning:
		return ansiYellow
	default:
		return ansiCyan
	}
}

// FormatWithCodeAndSource is FormatWithCode prefixed with the position of
// the diagnostic resolved against fset, like `foo.lua:3:10: (E004) ...`.
func FormatWithCodeAndSource(e LuaticError, fset *token.FileSet) string {
	if e.Pos() == token.NoPos {
		return FormatWithCode(e)
	}
	return fmt.Sprintf("%s: %s", fset.Position(e.Pos()), FormatWithCode(e))
}

// Renderer writes human-readable diagnostics, one primary line per error
// followed by its cause chain as indented notes.
type Renderer struct {
	fset  *token.FileSet
	out   io.Writer
	color bool
}

func NewRenderer(fset *token.FileSet, out io.Writer) *Renderer {
	return &Renderer{fset: fset, out: out}
}

// NewConsoleRenderer writes to stderr and colors output when stderr is a
// terminal.
func NewConsoleRenderer(fset *token.FileSet) *Renderer {
	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return &Renderer{fset: fset, out: os.Stderr, color: color}
}

func (r *Renderer) paint(s, code string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

func (r *Renderer) position(pos token.Pos) string {
	if pos == token.NoPos {
		return "<unknown>"
	}
	return r.fset.Position(pos).String()
}

// Render writes one diagnostic and its notes.
func (r *Renderer) Render(e LuaticError) {
	sev := SeverityOf(e.Code())
	head := fmt.Sprintf("%s: %s: %s",
		r.paint(r.position(e.Pos()), ansiBold),
		r.paint(sev.String(), severityColor(sev)),
		FormatWithCode(e))
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteByte('\n')
	for _, c := range CausesOf(e) {
		sb.WriteString(fmt.Sprintf("  %s: %s: %s\n",
			r.position(c.Span.Pos()),
			r.paint(Note.String(), severityColor(Note)),
			c.Message))
	}
	_, _ = io.WriteString(r.out, sb.String())
}

// RenderAll renders every accumulated diagnostic in reported order,
// without grouping by severity. It returns the highest severity seen so
// the driver can pick an exit code.
func (r *Renderer) RenderAll(errs *Errors) Severity {
	worst := Note
	for _, e := range errs.Errors() {
		r.Render(e)
		if s := SeverityOf(e.Code()); s > worst {
			worst = s
		}
	}
	return worst
}
