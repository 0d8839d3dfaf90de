package parser

import (
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/cottand/luatic/frontend/ast"
	"github.com/cottand/luatic/frontend/lerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseChunk(t *testing.T, src string) (*ast.File, *lerr.Errors) {
	t.Helper()
	fset := token.NewFileSet()
	file, errs := Parse(fset, "test.lua", []byte(src))
	require.NotNil(t, file)
	require.NotNil(t, file.Block)
	return file, errs
}

func parseOk(t *testing.T, src string) *ast.File {
	t.Helper()
	file, errs := parseChunk(t, src)
	require.Empty(t, messages(errs), "unexpected diagnostics")
	return file
}

func messages(errs *lerr.Errors) []string {
	var out []string
	for _, e := range errs.Errors() {
		out = append(out, e.Error())
	}
	return out
}

// exprS renders an expression fully parenthesized so precedence tests can
// compare the tree shape as a string.
func exprS(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.BinExpr:
		return "(" + exprS(e.Lhs) + " " + e.Op.String() + " " + exprS(e.Rhs) + ")"
	case *ast.UnExpr:
		if e.Op == ast.OpNot {
			return "(not " + exprS(e.Operand) + ")"
		}
		return "(" + e.Op.String() + exprS(e.Operand) + ")"
	case *ast.ParenExpr:
		return exprS(e.Inner)
	default:
		return ast.ExprString(e)
	}
}

func tyS(ty ast.TyExpr) string {
	switch ty := ty.(type) {
	case nil:
		return "<nil>"
	case *ast.NameTy:
		return ty.Name
	case *ast.WhateverTy:
		return "WHATEVER"
	case *ast.BoolLitTy:
		return strconv.FormatBool(ty.Value)
	case *ast.IntLitTy:
		return strconv.FormatInt(ty.Value, 10)
	case *ast.StrLitTy:
		return strconv.Quote(ty.Value)
	case *ast.OptTy:
		return tyS(ty.Inner) + "?"
	case *ast.ReqTy:
		return tyS(ty.Inner) + "!"
	case *ast.UnionTy:
		parts := make([]string, len(ty.Variants))
		for i, v := range ty.Variants {
			parts[i] = tyS(v)
		}
		return "(" + strings.Join(parts, "|") + ")"
	case *ast.AttrTy:
		return "[" + ty.Attr.Name + "] " + tyS(ty.Ty)
	case *ast.RecordTy:
		var parts []string
		for _, f := range ty.Fields {
			parts = append(parts, f.Name.Name+" = "+slotS(f.Slot))
		}
		if ty.Extensible {
			parts = append(parts, "...")
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.TupleTy:
		parts := make([]string, len(ty.Elems))
		for i, el := range ty.Elems {
			parts[i] = slotS(el)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.VectorTy:
		return "vector<" + slotS(ty.Elem) + ">"
	case *ast.MapTy:
		return "map<" + tyS(ty.Key) + ", " + slotS(ty.Value) + ">"
	case *ast.FuncTy:
		var params []string
		for _, p := range ty.Params {
			if p.Name != nil {
				params = append(params, p.Name.Name+": "+tyS(p.Ty))
			} else {
				params = append(params, tyS(p.Ty))
			}
		}
		if ty.Vararg != nil {
			if _, anon := ty.Vararg.(*ast.WhateverTy); anon {
				params = append(params, "...")
			} else {
				params = append(params, "...: "+tyS(ty.Vararg))
			}
		}
		s := "function(" + strings.Join(params, ", ") + ")"
		if ty.Returns != nil {
			s += " --> " + seqS(ty.Returns)
		}
		return s
	default:
		return "<unknown>"
	}
}

func slotS(slot *ast.SlotAnnot) string {
	if slot == nil {
		return "<nil>"
	}
	if slot.Const {
		return "const " + tyS(slot.Ty)
	}
	return tyS(slot.Ty)
}

func seqS(seq *ast.TySeqAnnot) string {
	parts := make([]string, 0, len(seq.Head)+1)
	for _, ty := range seq.Head {
		parts = append(parts, tyS(ty))
	}
	if seq.Tail != nil {
		if _, anon := seq.Tail.(*ast.WhateverTy); anon {
			parts = append(parts, "...")
		} else {
			parts = append(parts, tyS(seq.Tail)+"...")
		}
	}
	if len(parts) == 1 && seq.Tail == nil {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func TestOperatorPrecedence(t *testing.T) {
	cases := map[string]string{
		"1 + 2 * 3":     "(1 + (2 * 3))",
		"1 * 2 + 3":     "((1 * 2) + 3)",
		"(1 + 2) * 3":   "((1 + 2) * 3)",
		"a .. b .. c":   "(a .. (b .. c))",
		"2 ^ 3 ^ 4":     "(2 ^ (3 ^ 4))",
		"-x ^ 2":        "(-(x ^ 2))",
		"not a == b":    "((not a) == b)",
		"a < b == c":    "((a < b) == c)",
		"a or b and c":  "(a or (b and c))",
		"#t + 1":        "((#t) + 1)",
		"a .. b + c":    "(a .. (b + c))",
		"1 + 2 - 3":     "((1 + 2) - 3)",
		"x % 2 == 0":    "((x % 2) == 0)",
		"a and b or c":  "((a and b) or c)",
		"- - x":         "(-(-x))",
		"#t ^ 2":        "(#(t ^ 2))",
		"1 / 2 / 3":     "((1 / 2) / 3)",
		"a ~= b or c":   "((a ~= b) or c)",
		"'a' .. 1 < 'b'": `(("a" .. 1) < "b")`,
	}
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			file := parseOk(t, "return "+src)
			ret := file.Block.Stmts[0].(*ast.ReturnStmt)
			require.Len(t, ret.Exprs, 1)
			assert.Equal(t, want, exprS(ret.Exprs[0]))
		})
	}
}

func TestSuffixedExpressions(t *testing.T) {
	cases := map[string]string{
		"a.b.c":        "a.b.c",
		"a[1][x]":      "a[1][x]",
		"f(1, 2)":      "f(1, 2)",
		"f(1)(2)":      "f(1)(2)",
		`f "lit"`:      `f("lit")`,
		"f {}":         "f({...})",
		"obj:run(1)":   "obj:run(1)",
		"a.b:c(x)":     "a.b:c(x)",
		`t["not id"]`:  `t["not id"]`,
		"(f())":        "(f())",
	}
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			file := parseOk(t, "return "+src)
			ret := file.Block.Stmts[0].(*ast.ReturnStmt)
			require.Len(t, ret.Exprs, 1)
			assert.Equal(t, want, ast.ExprString(ret.Exprs[0]))
		})
	}
}

func TestStatements(t *testing.T) {
	t.Run("if chain", func(t *testing.T) {
		file := parseOk(t, "if a then x = 1 elseif b then x = 2 else x = 3 end")
		stmt := file.Block.Stmts[0].(*ast.IfStmt)
		assert.Len(t, stmt.Clauses, 2)
		require.NotNil(t, stmt.Else)
		assert.Len(t, stmt.Else.Stmts, 1)
	})
	t.Run("while", func(t *testing.T) {
		file := parseOk(t, "while x < 10 do x = x + 1 end")
		stmt := file.Block.Stmts[0].(*ast.WhileStmt)
		assert.Equal(t, "(x < 10)", exprS(stmt.Cond))
		assert.Len(t, stmt.Body.Stmts, 1)
	})
	t.Run("repeat", func(t *testing.T) {
		file := parseOk(t, "repeat x = x + 1 until x > 3")
		stmt := file.Block.Stmts[0].(*ast.RepeatStmt)
		assert.Equal(t, "(x > 3)", exprS(stmt.Cond))
	})
	t.Run("numeric for", func(t *testing.T) {
		file := parseOk(t, "for i = 1, 10, 2 do end")
		stmt := file.Block.Stmts[0].(*ast.NumericForStmt)
		assert.Equal(t, "i", stmt.Var.Name)
		require.NotNil(t, stmt.Step)
	})
	t.Run("numeric for without step", func(t *testing.T) {
		file := parseOk(t, "for i = 1, 10 do end")
		stmt := file.Block.Stmts[0].(*ast.NumericForStmt)
		assert.Nil(t, stmt.Step)
	})
	t.Run("generic for", func(t *testing.T) {
		file := parseOk(t, "for k, v in pairs(t) do end")
		stmt := file.Block.Stmts[0].(*ast.GenericForStmt)
		require.Len(t, stmt.Vars, 2)
		assert.Equal(t, "k", stmt.Vars[0].Name)
		assert.Equal(t, "v", stmt.Vars[1].Name)
		assert.Len(t, stmt.Exprs, 1)
	})
	t.Run("function declaration with path and method", func(t *testing.T) {
		file := parseOk(t, "function a.b:m(x) return x end")
		stmt := file.Block.Stmts[0].(*ast.FuncDeclStmt)
		assert.Equal(t, "a", stmt.Name.Name)
		require.Len(t, stmt.Path, 1)
		assert.Equal(t, "b", stmt.Path[0].Name)
		require.NotNil(t, stmt.Method)
		assert.Equal(t, "m", stmt.Method.Name)
		assert.False(t, stmt.Local)
	})
	t.Run("local function", func(t *testing.T) {
		file := parseOk(t, "local function f() end")
		stmt := file.Block.Stmts[0].(*ast.FuncDeclStmt)
		assert.True(t, stmt.Local)
		assert.Equal(t, "f", stmt.Name.Name)
	})
	t.Run("multiple assignment", func(t *testing.T) {
		file := parseOk(t, "a, t.x, t[1] = 1, 2, 3")
		stmt := file.Block.Stmts[0].(*ast.AssignStmt)
		require.Len(t, stmt.Targets, 3)
		assert.IsType(t, &ast.NameExpr{}, stmt.Targets[0])
		assert.IsType(t, &ast.IndexExpr{}, stmt.Targets[1])
		assert.IsType(t, &ast.IndexExpr{}, stmt.Targets[2])
		assert.Len(t, stmt.Exprs, 3)
	})
	t.Run("call statement", func(t *testing.T) {
		file := parseOk(t, "f(1)\nobj:run()")
		require.Len(t, file.Block.Stmts, 2)
		first := file.Block.Stmts[0].(*ast.CallStmt)
		assert.IsType(t, &ast.CallExpr{}, first.Call)
		second := file.Block.Stmts[1].(*ast.CallStmt)
		assert.IsType(t, &ast.MethodCallExpr{}, second.Call)
	})
	t.Run("return", func(t *testing.T) {
		file := parseOk(t, "return 1, 2")
		stmt := file.Block.Stmts[0].(*ast.ReturnStmt)
		assert.Len(t, stmt.Exprs, 2)
	})
	t.Run("bare return", func(t *testing.T) {
		file := parseOk(t, "do return end")
		stmt := file.Block.Stmts[0].(*ast.DoStmt)
		ret := stmt.Body.Stmts[0].(*ast.ReturnStmt)
		assert.Empty(t, ret.Exprs)
	})
	t.Run("break", func(t *testing.T) {
		file := parseOk(t, "while true do break end")
		stmt := file.Block.Stmts[0].(*ast.WhileStmt)
		assert.IsType(t, &ast.BreakStmt{}, stmt.Body.Stmts[0])
	})
	t.Run("table constructor", func(t *testing.T) {
		file := parseOk(t, "t = {1, x = 2, [k] = 3; 'four', }")
		stmt := file.Block.Stmts[0].(*ast.AssignStmt)
		table := stmt.Exprs[0].(*ast.TableExpr)
		require.Len(t, table.Items, 4)
		assert.Nil(t, table.Items[0].Key)
		assert.Equal(t, `"x"`, ast.ExprString(table.Items[1].Key))
		assert.Equal(t, "k", ast.ExprString(table.Items[2].Key))
		assert.Nil(t, table.Items[3].Key)
	})
	t.Run("semicolons are skipped", func(t *testing.T) {
		file := parseOk(t, ";; x = 1 ;; y = 2 ;;")
		assert.Len(t, file.Block.Stmts, 2)
	})
}

func localAnnot(t *testing.T, tySrc string) *ast.SlotAnnot {
	t.Helper()
	file := parseOk(t, "local x --: "+tySrc)
	local := file.Block.Stmts[0].(*ast.LocalStmt)
	require.Len(t, local.Names, 1)
	require.NotNil(t, local.Names[0].Annot, "no annotation attached")
	return local.Names[0].Annot
}

func TestTypeSyntax(t *testing.T) {
	cases := map[string]string{
		"integer":                       "integer",
		"integer?":                      "integer?",
		"integer!":                      "integer!",
		"string | nil":                  "(string|nil)",
		"(integer | string)?":           "(integer|string)?",
		"42":                            "42",
		"-3":                            "-3",
		"'foo' | 'bar'":                 `("foo"|"bar")`,
		"true | 42":                     "(true|42)",
		"WHATEVER":                      "WHATEVER",
		"vector<integer>":               "vector<integer>",
		"vector<integer?>":              "vector<integer?>",
		"vector<vector<integer>>":       "vector<vector<integer>>",
		"map<string, integer>":          "map<string, integer>",
		"map<string, const vector<integer>>": "map<string, const vector<integer>>",
		"{}":                            "{}",
		"{x = number, y = number}":      "{x = number, y = number}",
		"{x = integer, ...}":            "{x = integer, ...}",
		"{integer, string}":             "{integer, string}",
		"const {integer}":               "const {integer}",
		"function":                      "function",
		"function()":                    "function()",
		"function(integer, string) --> boolean": "function(integer, string) --> boolean",
		"function(a: integer, ...: string) --> (boolean, string...)": "function(a: integer, ...: string) --> (boolean, string...)",
		"function(...)":                 "function(...)",
		"[internal subtype] any":        "[internal subtype] any",
		"thread | userdata":             "(thread|userdata)",
	}
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, want, slotS(localAnnot(t, src)))
		})
	}
}

func TestAnnotationAttachment(t *testing.T) {
	t.Run("single local", func(t *testing.T) {
		annot := localAnnot(t, "integer")
		assert.Equal(t, "integer", slotS(annot))
	})
	t.Run("trailing annotation covers all names", func(t *testing.T) {
		file := parseOk(t, "local a, b --: integer, string")
		local := file.Block.Stmts[0].(*ast.LocalStmt)
		assert.Equal(t, "integer", slotS(local.Names[0].Annot))
		assert.Equal(t, "string", slotS(local.Names[1].Annot))
	})
	t.Run("annotation after comma", func(t *testing.T) {
		file := parseOk(t, "local a, --: integer\nb --: string")
		local := file.Block.Stmts[0].(*ast.LocalStmt)
		assert.Equal(t, "integer", slotS(local.Names[0].Annot))
		assert.Equal(t, "string", slotS(local.Names[1].Annot))
	})
	t.Run("annotation after initializer", func(t *testing.T) {
		file := parseOk(t, "local x = 1 --: integer")
		local := file.Block.Stmts[0].(*ast.LocalStmt)
		require.Len(t, local.Exprs, 1)
		assert.Equal(t, "integer", slotS(local.Names[0].Annot))
	})
	t.Run("assignment targets", func(t *testing.T) {
		file := parseOk(t, "a, b = f() --: integer, string")
		stmt := file.Block.Stmts[0].(*ast.AssignStmt)
		require.Len(t, stmt.Annots, 2)
		assert.Equal(t, "integer", slotS(stmt.Annots[0]))
		assert.Equal(t, "string", slotS(stmt.Annots[1]))
	})
	t.Run("assignment target before equals", func(t *testing.T) {
		file := parseOk(t, "x --: integer\n= 1")
		stmt := file.Block.Stmts[0].(*ast.AssignStmt)
		require.Len(t, stmt.Annots, 1)
		assert.Equal(t, "integer", slotS(stmt.Annots[0]))
	})
	t.Run("parameter annotations", func(t *testing.T) {
		file := parseOk(t, "local function f(a, --: integer\nb --: string\n) end")
		decl := file.Block.Stmts[0].(*ast.FuncDeclStmt)
		require.Len(t, decl.Func.Params, 2)
		assert.Equal(t, "integer", slotS(decl.Func.Params[0].Annot))
		assert.Equal(t, "string", slotS(decl.Func.Params[1].Annot))
	})
	t.Run("vararg annotation", func(t *testing.T) {
		file := parseOk(t, "local function f(... --: string\n) end")
		decl := file.Block.Stmts[0].(*ast.FuncDeclStmt)
		assert.True(t, decl.Func.Vararg)
		assert.Equal(t, "string", slotS(decl.Func.VarargAnnot))
	})
	t.Run("return annotation", func(t *testing.T) {
		file := parseOk(t, "local function f() --> (integer, string)\nreturn 1, 's' end")
		decl := file.Block.Stmts[0].(*ast.FuncDeclStmt)
		require.NotNil(t, decl.Func.Returns)
		assert.Equal(t, "(integer, string)", seqS(decl.Func.Returns))
	})
	t.Run("loop variable annotations", func(t *testing.T) {
		file := parseOk(t, "for k, v --: string, integer\nin pairs(t) do end")
		stmt := file.Block.Stmts[0].(*ast.GenericForStmt)
		assert.Equal(t, "string", slotS(stmt.Vars[0].Annot))
		assert.Equal(t, "integer", slotS(stmt.Vars[1].Annot))
	})
	t.Run("more types than names", func(t *testing.T) {
		file, errs := parseChunk(t, "local a --: integer, string")
		require.Contains(t, strings.Join(messages(errs), "\n"), "more types than names")
		local := file.Block.Stmts[0].(*ast.LocalStmt)
		assert.Equal(t, "string", slotS(local.Names[0].Annot))
	})
	t.Run("conflicting annotations", func(t *testing.T) {
		_, errs := parseChunk(t, "local a, --: integer\nb --: string, number")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "`a` already has a type annotation")
	})
}

func TestFunctionAnnotations(t *testing.T) {
	t.Run("attaches to next declaration", func(t *testing.T) {
		file := parseOk(t, "--v function(a: integer, b: string) --> boolean\nlocal function f(a, b) end")
		decl := file.Block.Stmts[0].(*ast.FuncDeclStmt)
		annot := decl.Func.Annot
		require.NotNil(t, annot)
		require.Len(t, annot.Params, 2)
		require.NotNil(t, annot.Params[0].Name)
		assert.Equal(t, "a", annot.Params[0].Name.Name)
		assert.Equal(t, "integer", tyS(annot.Params[0].Ty))
		require.NotNil(t, annot.Returns)
		assert.Equal(t, "boolean", seqS(annot.Returns))
	})
	t.Run("attaches to function expression", func(t *testing.T) {
		file := parseOk(t, "--v [no_check] function(x: any)\nf = function(x) end")
		stmt := file.Block.Stmts[0].(*ast.AssignStmt)
		fn := stmt.Exprs[0].(*ast.FuncExpr)
		require.NotNil(t, fn.Annot)
		require.Len(t, fn.Annot.Attrs, 1)
		assert.Equal(t, "no_check", fn.Annot.Attrs[0].Name)
	})
	t.Run("vararg in signature", func(t *testing.T) {
		file := parseOk(t, "--v function(fmt: string, ...: any)\nlocal function f(fmt, ...) end")
		decl := file.Block.Stmts[0].(*ast.FuncDeclStmt)
		require.NotNil(t, decl.Func.Annot)
		assert.Equal(t, "any", tyS(decl.Func.Annot.Vararg))
	})
	t.Run("leftover annotation is an error", func(t *testing.T) {
		_, errs := parseChunk(t, "--v function(a: integer)\nlocal x = 1")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "no function to attach to")
	})
	t.Run("leftover annotation at end of chunk", func(t *testing.T) {
		_, errs := parseChunk(t, "--v function(a: integer)\n")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "no function to attach to")
	})
}

func TestPragmas(t *testing.T) {
	t.Run("assume", func(t *testing.T) {
		file := parseOk(t, "--# assume print: function(...) --> ()")
		stmt := file.Block.Stmts[0].(*ast.AssumeStmt)
		assert.False(t, stmt.Global)
		assert.Equal(t, "print", stmt.Name.Name)
		assert.Equal(t, "function(...) --> ()", slotS(stmt.Slot))
	})
	t.Run("assume global with path", func(t *testing.T) {
		file := parseOk(t, "--# assume global os.clock: function() --> number")
		stmt := file.Block.Stmts[0].(*ast.AssumeStmt)
		assert.True(t, stmt.Global)
		assert.Equal(t, "os", stmt.Name.Name)
		require.Len(t, stmt.Path, 1)
		assert.Equal(t, "clock", stmt.Path[0].Name)
	})
	t.Run("assume const", func(t *testing.T) {
		file := parseOk(t, "--# assume tbl: const {integer}")
		stmt := file.Block.Stmts[0].(*ast.AssumeStmt)
		assert.True(t, stmt.Slot.Const)
	})
	t.Run("type scoped", func(t *testing.T) {
		file := parseOk(t, "--# type Point = {x = number, y = number}")
		stmt := file.Block.Stmts[0].(*ast.TypeDeclStmt)
		assert.Equal(t, ast.TypeVisScoped, stmt.Vis)
		assert.Equal(t, "Point", stmt.Name.Name)
		assert.Equal(t, "{x = number, y = number}", tyS(stmt.Ty))
	})
	t.Run("type local", func(t *testing.T) {
		file := parseOk(t, "--# type local IntList = vector<integer>")
		stmt := file.Block.Stmts[0].(*ast.TypeDeclStmt)
		assert.Equal(t, ast.TypeVisLocal, stmt.Vis)
	})
	t.Run("type global", func(t *testing.T) {
		file := parseOk(t, "--# type global Shared = map<string, any>")
		stmt := file.Block.Stmts[0].(*ast.TypeDeclStmt)
		assert.Equal(t, ast.TypeVisGlobal, stmt.Vis)
	})
	t.Run("type named global", func(t *testing.T) {
		file := parseOk(t, "--# type global = integer")
		stmt := file.Block.Stmts[0].(*ast.TypeDeclStmt)
		assert.Equal(t, ast.TypeVisScoped, stmt.Vis)
		assert.Equal(t, "global", stmt.Name.Name)
	})
	t.Run("open", func(t *testing.T) {
		file := parseOk(t, "--# open lua51")
		stmt := file.Block.Stmts[0].(*ast.OpenStmt)
		assert.Equal(t, "lua51", stmt.Name.Name)
	})
	t.Run("open with spaces", func(t *testing.T) {
		file := parseOk(t, "--# open internal luatic_test")
		stmt := file.Block.Stmts[0].(*ast.OpenStmt)
		assert.Equal(t, "internal luatic_test", stmt.Name.Name)
	})
	t.Run("unknown pragma", func(t *testing.T) {
		file, errs := parseChunk(t, "--# gobble x\ny = 1")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "unrecognized pragma `gobble`")
		assert.Len(t, file.Block.Stmts, 1)
	})
}

func TestRecovery(t *testing.T) {
	t.Run("bad local keeps going", func(t *testing.T) {
		file, errs := parseChunk(t, "local = 5\nlocal y = 2")
		assert.True(t, errs.HasError())
		assert.Len(t, file.Block.Stmts, 2)
	})
	t.Run("extra end at top level", func(t *testing.T) {
		file, errs := parseChunk(t, "if x then y = 1 end end\nz = 2")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "expected near `end`")
		assert.Len(t, file.Block.Stmts, 2)
	})
	t.Run("assignment to call", func(t *testing.T) {
		_, errs := parseChunk(t, "f() = 3")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "cannot assign to `f()`")
	})
	t.Run("unterminated parenthesis", func(t *testing.T) {
		file, errs := parseChunk(t, "x = (1 +")
		assert.True(t, errs.HasError())
		assert.Len(t, file.Block.Stmts, 1)
	})
	t.Run("stray slot annotation", func(t *testing.T) {
		file, errs := parseChunk(t, "--: integer\nx = 1")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "stray type annotation")
		assert.Len(t, file.Block.Stmts, 1)
	})
	t.Run("stray return annotation", func(t *testing.T) {
		_, errs := parseChunk(t, "--> integer\n")
		assert.Contains(t, strings.Join(messages(errs), "\n"), "stray type annotation")
	})
	t.Run("illegal token is reported once", func(t *testing.T) {
		_, errs := parseChunk(t, "x = 1 ? 2")
		assert.True(t, errs.HasError())
	})
	t.Run("diagnostics carry positions", func(t *testing.T) {
		fset := token.NewFileSet()
		_, errs := Parse(fset, "test.lua", []byte("local = 5"))
		require.NotEmpty(t, errs.Errors())
		pos := fset.Position(ast.SpanOf(errs.Errors()[0]).Pos())
		assert.Equal(t, "test.lua", pos.Filename)
		assert.Equal(t, 1, pos.Line)
	})
}

func TestSpans(t *testing.T) {
	fset := token.NewFileSet()
	src := "local x = 1\nreturn x"
	file, errs := Parse(fset, "test.lua", []byte(src))
	require.Empty(t, messages(errs))
	require.Len(t, file.Block.Stmts, 2)

	local := file.Block.Stmts[0].(*ast.LocalStmt)
	start := fset.Position(local.Pos())
	end := fset.Position(local.End())
	assert.Equal(t, 1, start.Line)
	assert.Equal(t, 1, start.Column)
	assert.Equal(t, 1, end.Line)
	assert.Equal(t, 12, end.Column)

	ret := file.Block.Stmts[1].(*ast.ReturnStmt)
	assert.Equal(t, 2, fset.Position(ret.Pos()).Line)
}
