package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprString renders an expression back to (roughly) Lua source, for logs
// and debug output. It is not a formatter: spacing is normalized.
func ExprString(e Expr) string {
	switch e := e.(type) {
	case nil:
		return "<nil>"
	case *BadExpr:
		return "<error>"
	case *NilLit:
		return "nil"
	case *BoolLit:
		return strconv.FormatBool(e.Value)
	case *NumberLit:
		if i, ok := e.Int(); ok {
			return strconv.FormatInt(i, 10)
		}
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *StringLit:
		return strconv.Quote(e.Value)
	case *VarargExpr:
		return "..."
	case *NameExpr:
		return e.Name
	case *IndexExpr:
		if lit, ok := e.Index.(*StringLit); ok && isLuaName(lit.Value) {
			return ExprString(e.Prefix) + "." + lit.Value
		}
		return ExprString(e.Prefix) + "[" + ExprString(e.Index) + "]"
	case *CallExpr:
		return ExprString(e.Func) + "(" + exprListString(e.Args) + ")"
	case *MethodCallExpr:
		return ExprString(e.Recv) + ":" + e.Method.Name + "(" + exprListString(e.Args) + ")"
	case *ParenExpr:
		return "(" + ExprString(e.Inner) + ")"
	case *FuncExpr:
		return "function(...) end"
	case *TableExpr:
		return "{...}"
	case *BinExpr:
		return fmt.Sprintf("%s %s %s", ExprString(e.Lhs), e.Op, ExprString(e.Rhs))
	case *UnExpr:
		if e.Op == OpNot {
			return "not " + ExprString(e.Operand)
		}
		return e.Op.String() + ExprString(e.Operand)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func exprListString(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = ExprString(e)
	}
	return strings.Join(parts, ", ")
}

func isLuaName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
