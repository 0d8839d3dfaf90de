package ast

import (
	"log/slog"
)

// Slog wraps an Expr as a slog.LogValuer so expression strings are not
// rendered unless the record is actually emitted.
func Slog(expr Expr) slog.LogValuer {
	return exprLogValuer{expr}
}

type exprLogValuer struct{ Expr }

func (l exprLogValuer) LogValue() slog.Value {
	return slog.StringValue(ExprString(l.Expr))
}
