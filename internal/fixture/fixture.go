// Package fixture parses the checker's test corpus format. A corpus file
// holds many small Lua programs, each delimited by a `--8<-- name` line,
// annotated with expected diagnostics and closed by a `--! ok` or
// `--! error` verdict:
//
//	--8<-- call-nil
//	local p
//	p() --@< Error: Tried to call a non-function `nil`
//	--! error
//
// Gutter markers aim an expectation at a line relative to the marker's
// own: `<` is the same line, each `^` goes one line up, each `v` one line
// down, and `^-vv` spans from one above to two below. A `--& name` line
// starts the source of a module the case can `require`; expectations
// after it refer to that module's lines. The delimiter may carry
// `feature:<name>` words enabling checker features and the word `exact`,
// which demands the diagnostics match the expectations byte for byte.
package fixture

import (
	"strings"

	"github.com/pkg/errors"
)

// Expectation is one diagnostic a case demands: a severity, a message,
// and the line it must point at, relative to the unit holding it.
type Expectation struct {
	// Unit is the module name owning the line, empty for the root unit.
	Unit string
	// Line is 1-based within the unit. EndLine is 0 unless the gutter
	// marker named a range.
	Line    int
	EndLine int

	Severity string
	Message  string
}

// Module is an extra unit a case makes available to `require`.
type Module struct {
	Name   string
	Source string
}

// Case is one program of the corpus together with its expected outcome.
type Case struct {
	Name     string
	Features []string
	// Exact demands the full diagnostic list match the expectations in
	// order; otherwise each expectation must merely be present.
	Exact   bool
	Input   string
	Modules []Module
	Expects []Expectation
	// WantError is the `--!` verdict: whether checking must end with at
	// least one error-severity diagnostic.
	WantError bool
	// Line is where the case's delimiter sits in the corpus file.
	Line int
}

const delimiter = "--8<--"

// Parse reads a whole corpus file.
func Parse(src []byte) ([]Case, error) {
	var cases []Case
	var cur *Case
	var blockName string
	var block []string

	flushBlock := func() {
		joined := strings.Join(block, "\n")
		if blockName == "" {
			cur.Input = joined
		} else {
			cur.Modules = append(cur.Modules, Module{Name: blockName, Source: joined})
		}
		block = nil
	}

	for i, line := range strings.Split(string(src), "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, delimiter):
			if cur != nil {
				return nil, errors.Errorf("line %d: case %q has no `--!` verdict", lineNo, cur.Name)
			}
			c, err := parseHeader(trimmed, lineNo)
			if err != nil {
				return nil, err
			}
			cur = c
			blockName = ""

		case cur == nil:
			if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				return nil, errors.Errorf("line %d: content outside a fixture case", lineNo)
			}

		case strings.HasPrefix(trimmed, "--!"):
			flushBlock()
			switch strings.TrimSpace(strings.TrimPrefix(trimmed, "--!")) {
			case "ok":
				cur.WantError = false
			case "error":
				cur.WantError = true
			default:
				return nil, errors.Errorf("line %d: verdict must be `ok` or `error`", lineNo)
			}
			cases = append(cases, *cur)
			cur = nil

		case strings.HasPrefix(trimmed, "--&"):
			flushBlock()
			blockName = strings.TrimSpace(strings.TrimPrefix(trimmed, "--&"))
			if blockName == "" {
				return nil, errors.Errorf("line %d: `--&` needs a module name", lineNo)
			}

		default:
			at := len(block) + 1
			if idx := strings.Index(line, "--@"); idx >= 0 {
				exp, err := parseExpectation(line[idx+len("--@"):], at, lineNo)
				if err != nil {
					return nil, err
				}
				exp.Unit = blockName
				cur.Expects = append(cur.Expects, exp)
			}
			block = append(block, line)
		}
	}
	if cur != nil {
		return nil, errors.Errorf("case %q has no `--!` verdict", cur.Name)
	}
	return cases, nil
}

// parseHeader reads `--8<-- name [feature:f]... [exact]`, tolerating
// bare `--` word separators.
func parseHeader(line string, lineNo int) (*Case, error) {
	fields := strings.Fields(strings.TrimPrefix(line, delimiter))
	if len(fields) == 0 {
		return nil, errors.Errorf("line %d: fixture case needs a name", lineNo)
	}
	c := &Case{Name: fields[0], Line: lineNo}
	for _, f := range fields[1:] {
		switch {
		case f == "--":
		case f == "exact":
			c.Exact = true
		case strings.HasPrefix(f, "feature:"):
			c.Features = append(c.Features, strings.TrimPrefix(f, "feature:"))
		default:
			return nil, errors.Errorf("line %d: unrecognized header word %q", lineNo, f)
		}
	}
	return c, nil
}

// parseExpectation reads `MARKER Severity: message` where MARKER is `<`,
// a run of `^` or `v`, or a `-`-joined range of two such runs. at is the
// 1-based line the marker sits on within its unit.
func parseExpectation(rest string, at, lineNo int) (Expectation, error) {
	marker, payload, found := strings.Cut(rest, " ")
	if !found {
		return Expectation{}, errors.Errorf("line %d: expectation needs a message", lineNo)
	}
	var exp Expectation
	if marker == "<" {
		exp.Line = at
	} else {
		from, to, isRange := strings.Cut(marker, "-")
		line, err := gutterOffset(from, at)
		if err != nil {
			return Expectation{}, errors.Wrapf(err, "line %d", lineNo)
		}
		exp.Line = line
		if isRange {
			end, err := gutterOffset(to, at)
			if err != nil {
				return Expectation{}, errors.Wrapf(err, "line %d", lineNo)
			}
			exp.EndLine = end
		}
	}

	severity, message, found := strings.Cut(payload, ": ")
	if !found {
		return Expectation{}, errors.Errorf("line %d: expectation needs a `Severity: message` payload", lineNo)
	}
	switch severity {
	case "Error", "Warning", "Note":
	default:
		return Expectation{}, errors.Errorf("line %d: unknown severity %q", lineNo, severity)
	}
	exp.Severity = severity
	exp.Message = message
	return exp, nil
}

func gutterOffset(marker string, at int) (int, error) {
	if marker == "" {
		return 0, errors.New("empty gutter marker")
	}
	switch marker[0] {
	case '^':
		if strings.Count(marker, "^") != len(marker) {
			return 0, errors.Errorf("malformed gutter marker %q", marker)
		}
		return at - len(marker), nil
	case 'v':
		if strings.Count(marker, "v") != len(marker) {
			return 0, errors.Errorf("malformed gutter marker %q", marker)
		}
		return at + len(marker), nil
	}
	return 0, errors.Errorf("malformed gutter marker %q", marker)
}
