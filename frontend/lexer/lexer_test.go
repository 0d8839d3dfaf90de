package lexer

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	fset := token.NewFileSet()
	file := fset.AddFile("test.lua", -1, len(src))
	l := New(file, src)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
		require.Less(t, len(toks), 10_000, "lexer did not terminate")
	}
}

func kindsOf(toks []Token) []Kind {
	kinds := make([]Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func TestKinds(t *testing.T) {
	for src, want := range map[string][]Kind{
		"local x = 42":        {KwLocal, Name, Assign, Number, EOF},
		"a <= b ~= c":         {Name, LtEq, Name, NotEq, Name, EOF},
		"a .. b ...":          {Name, Concat, Name, Ellipsis, EOF},
		"t[1] = #s":           {Name, LBracket, Number, RBracket, Assign, Hash, Name, EOF},
		"x = y % 2 ^ 3":       {Name, Assign, Name, Percent, Number, Caret, Number, EOF},
		"if not a then end":   {KwIf, KwNot, Name, KwThen, KwEnd, EOF},
		"f(a, b); g{}":        {Name, LParen, Name, Comma, Name, RParen, Semi, Name, LBrace, RBrace, EOF},
		"x.y:m('s')":          {Name, Dot, Name, Colon, Name, LParen, String, RParen, EOF},
		"-x - -y":             {Minus, Name, Minus, Minus, Name, EOF},
		"a < b > c == d":      {Name, Lt, Name, Gt, Name, Eq, Name, EOF},
		"for i = 1, 2 do end": {KwFor, Name, Assign, Number, Comma, Number, KwDo, KwEnd, EOF},
	} {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, want, kindsOf(lexAll(t, src)))
		})
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	for src, want := range map[string][]Kind{
		"x = 1 -- hello\ny = 2":      {Name, Assign, Number, Name, Assign, Number, EOF},
		"x = 1 --[[ long\nlong ]] 2": {Name, Assign, Number, Number, EOF},
		"--value looks like --v but is a comment\nx = 1": {Name, Assign, Number, EOF},
		"--[==[ nested ]] still comment ]==] x":          {Name, EOF},
		"--& mod marker is a plain comment\nreturn":      {KwReturn, EOF},
	} {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, want, kindsOf(lexAll(t, src)))
		})
	}
}

func TestAnnotationMode(t *testing.T) {
	for src, want := range map[string][]Kind{
		"local x --: integer\nlocal y": {
			KwLocal, Name, AnnotTypeBegin, Name, AnnotEnd, KwLocal, Name, EOF,
		},
		"local x --: integer?": {
			KwLocal, Name, AnnotTypeBegin, Name, Question, AnnotEnd, EOF,
		},
		"local s --: string|nil!": {
			KwLocal, Name, AnnotTypeBegin, Name, Pipe, KwNil, Bang, AnnotEnd, EOF,
		},
		"function f(a) --> string\nend": {
			KwFunction, Name, LParen, Name, RParen, AnnotReturnsBegin, Name, AnnotEnd, KwEnd, EOF,
		},
		"--v function(a: integer) --> string\nf = function(a) end": {
			AnnotFuncBegin, KwFunction, LParen, Name, Colon, Name, RParen, Arrow, Name, AnnotEnd,
			Name, Assign, KwFunction, LParen, Name, RParen, KwEnd, EOF,
		},
		"--# assume x: map<string, integer>": {
			AnnotPragmaBegin, Name, Name, Colon, Name, Lt, Name, Comma, Name, Gt, AnnotEnd, EOF,
		},
		"--# open lua51": {
			AnnotPragmaBegin, Name, Name, AnnotEnd, EOF,
		},
		"--: {x = integer, ...} -- trailing comment ends it\ny = 1": {
			AnnotTypeBegin, LBrace, Name, Assign, Name, Comma, Ellipsis, RBrace, AnnotEnd,
			Name, Assign, Number, EOF,
		},
	} {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, want, kindsOf(lexAll(t, src)))
		})
	}
}

func TestAnnotationSymbolsAreIllegalOutside(t *testing.T) {
	for _, src := range []string{"x = a ? b", "x = !a", "a | b"} {
		t.Run(src, func(t *testing.T) {
			var sawIllegal bool
			for _, tok := range lexAll(t, src) {
				sawIllegal = sawIllegal || tok.Kind == Illegal
			}
			assert.True(t, sawIllegal)
		})
	}
}

func TestStrings(t *testing.T) {
	for src, want := range map[string]string{
		`'hello'`:            "hello",
		`"he said \"hi\""`:   `he said "hi"`,
		`'tab\tnl\n'`:        "tab\tnl\n",
		`'\65\66\067'`:       "ABC",
		"[[long string]]":    "long string",
		"[[\nleading strip]]": "leading strip",
		"[==[ has ]] inside ]==]": " has ]] inside ",
	} {
		t.Run(src, func(t *testing.T) {
			toks := lexAll(t, src)
			require.Equal(t, []Kind{String, EOF}, kindsOf(toks))
			assert.Equal(t, want, toks[0].Str)
		})
	}
}

func TestNumbers(t *testing.T) {
	for src, want := range map[string]float64{
		"3":          3,
		"3.0":        3,
		"3.1416":     3.1416,
		"314.16e-2":  3.1416,
		"0xff":       255,
		"0x10":       16,
		".5":         0.5,
		"1e2":        100,
	} {
		t.Run(src, func(t *testing.T) {
			toks := lexAll(t, src)
			require.Equal(t, []Kind{Number, EOF}, kindsOf(toks))
			assert.Equal(t, want, toks[0].Num)
		})
	}
}

func TestIllegalInputs(t *testing.T) {
	for src, wantMsg := range map[string]string{
		"x = 'unfinished":  "unfinished string",
		"x = [[unfinished": "unfinished long string",
		"x = 0xg":          "malformed number near `0xg`",
		"x = 3y":           "malformed number near `3y`",
		"x = 'bad \\q'":    "invalid escape sequence `\\q`",
		"x ~ y":            "unexpected symbol near `~`",
	} {
		t.Run(src, func(t *testing.T) {
			var found *Token
			for _, tok := range lexAll(t, src) {
				if tok.Kind == Illegal {
					found = &tok
					break
				}
			}
			require.NotNil(t, found, "expected an illegal token")
			assert.Equal(t, wantMsg, found.Str)
		})
	}
}

func TestPositions(t *testing.T) {
	src := "local x = 1\nreturn x\n"
	fset := token.NewFileSet()
	file := fset.AddFile("pos.lua", -1, len(src))
	l := New(file, src)

	type at struct {
		line, col int
		lexeme    string
	}
	var got []at
	for {
		tok := l.NextToken()
		if tok.Kind == EOF {
			break
		}
		p := fset.Position(tok.Pos())
		got = append(got, at{p.Line, p.Column, tok.Lexeme})
	}
	assert.Equal(t, []at{
		{1, 1, "local"},
		{1, 7, "x"},
		{1, 9, "="},
		{1, 11, "1"},
		{2, 1, "return"},
		{2, 8, "x"},
	}, got)
}
