// Package lerr defines the diagnostics the checker reports: one struct per
// error kind, graded by severity, carrying the source span it points at and
// an optional chain of notes explaining the failure.
package lerr

import (
	"log/slog"

	"github.com/cottand/luatic/frontend/ast"
	set "github.com/hashicorp/go-set/v3"
)

// Errors accumulates diagnostics across a whole check. The checker keeps
// going after recoverable failures, so one run can gather many of these.
type Errors struct {
	errs []LuaticError
	seen *set.HashSet[errKey, uint64]
}

// errKey identifies a diagnostic for duplicate suppression. Parser recovery
// and repeated solver queries can report the same failure twice.
type errKey struct {
	code ErrCode
	span ast.Span
	msg  string
}

func (k errKey) Hash() uint64 {
	h := uint64(17)
	h = h*31 + uint64(k.code)
	h = h*31 + k.span.Hash()
	for _, c := range k.msg {
		h = h*31 + uint64(c)
	}
	return h
}

func keyOf(err LuaticError) errKey {
	return errKey{code: err.Code(), span: ast.SpanOf(err), msg: err.Error()}
}

// With appends diagnostics, skipping exact duplicates. It is usable on a
// nil receiver, so call sites can thread `var errs *lerr.Errors` through.
func (e *Errors) With(errs ...LuaticError) *Errors {
	if e == nil {
		e = &Errors{}
	}
	if e.seen == nil {
		e.seen = set.NewHashSet[errKey, uint64](len(e.errs) + len(errs))
		for _, prev := range e.errs {
			e.seen.Insert(keyOf(prev))
		}
	}
	for _, err := range errs {
		if e.seen.Insert(keyOf(err)) {
			e.errs = append(e.errs, err)
		}
	}
	return e
}

// Merge appends every diagnostic of other, with the same deduplication as
// With.
func (e *Errors) Merge(other *Errors) *Errors {
	if other == nil {
		return e
	}
	return e.With(other.errs...)
}

// Errors returns the accumulated diagnostics in reporting order.
func (e *Errors) Errors() []LuaticError {
	if e == nil {
		return nil
	}
	return e.errs
}

// HasError reports whether any diagnostic has Error severity. Warnings and
// notes alone do not fail a check.
func (e *Errors) HasError() bool {
	return e.MaxSeverity() >= Error
}

func (e *Errors) MaxSeverity() Severity {
	worst := Note
	if e == nil {
		return worst
	}
	for _, err := range e.errs {
		if s := SeverityOf(err.Code()); s > worst {
			worst = s
		}
	}
	return worst
}

func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.errs)
}

func (e *Errors) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, e.Len())
	for i, err := range e.Errors() {
		attrs = append(attrs, slog.Attr{Key: ordinal(i), Value: slog.StringValue(FormatWithCode(err))})
	}
	return slog.GroupValue(attrs...)
}
