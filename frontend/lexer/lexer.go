// Package lexer turns Lua 5.1 source into one merged token stream. Plain
// comments are skipped, except the four annotation openers (`--:`, `-->`,
// `--v`, `--#`) which switch the lexer into annotation mode: the payload of
// the comment is tokenized too, and an AnnotEnd marks the end of the line.
package lexer

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"
)

type scanMode int

const (
	plainMode scanMode = iota
	annotMode
)

type Lexer struct {
	file         *token.File
	input        string
	position     int  // offset of ch
	readPosition int  // offset after ch
	ch           byte // byte under examination, 0 at end of input
	mode         scanMode
}

// New prepares a lexer over src, which must be the content registered for
// file (typically via fset.AddFile(name, -1, len(src))).
func New(file *token.File, src string) *Lexer {
	l := &Lexer{file: file, input: src}
	file.SetLinesForContent([]byte(src))
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
}

// peekAt returns the byte n positions after the current one, or 0 past the
// end of input.
func (l *Lexer) peekAt(n int) byte {
	off := l.position + n
	if off < 0 || off >= len(l.input) {
		return 0
	}
	return l.input[off]
}

func (l *Lexer) token(kind Kind, start int) Token {
	return Token{
		Kind:     kind,
		Lexeme:   l.input[start:l.position],
		PosStart: l.file.Pos(start),
		PosEnd:   l.file.Pos(l.position),
	}
}

func (l *Lexer) illegal(start int, format string, args ...any) Token {
	tok := l.token(Illegal, start)
	tok.Str = fmt.Sprintf(format, args...)
	return tok
}

func (l *Lexer) single(kind Kind) Token {
	start := l.position
	l.readChar()
	return l.token(kind, start)
}

func (l *Lexer) NextToken() Token {
	for {
		if l.mode == annotMode {
			if tok, ok := l.annotSpace(); ok {
				return tok
			}
		} else {
			l.skipSpace()
		}

		start := l.position
		switch {
		case l.ch == 0:
			return l.token(EOF, start)
		case isNameStart(l.ch):
			for isNameChar(l.ch) {
				l.readChar()
			}
			return l.token(LookupName(l.input[start:l.position]), start)
		case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekAt(1))):
			return l.number(start)
		}

		switch l.ch {
		case '\'', '"':
			return l.shortString(start)
		case '[':
			if level, ok := l.longBracketLevel(0); ok {
				content, terminated := l.consumeLongBracket(level)
				if !terminated {
					return l.illegal(start, "unfinished long string")
				}
				tok := l.token(String, start)
				tok.Str = content
				return tok
			}
			return l.single(LBracket)
		case '-':
			if l.peekAt(1) != '-' {
				return l.single(Minus)
			}
			if tok, ok := l.dashDash(start); ok {
				return tok
			}
			continue
		case '=':
			if l.peekAt(1) == '=' {
				l.readChar()
				l.readChar()
				return l.token(Eq, start)
			}
			return l.single(Assign)
		case '~':
			if l.peekAt(1) == '=' {
				l.readChar()
				l.readChar()
				return l.token(NotEq, start)
			}
			l.readChar()
			return l.illegal(start, "unexpected symbol near `~`")
		case '<':
			if l.peekAt(1) == '=' {
				l.readChar()
				l.readChar()
				return l.token(LtEq, start)
			}
			return l.single(Lt)
		case '>':
			if l.peekAt(1) == '=' {
				l.readChar()
				l.readChar()
				return l.token(GtEq, start)
			}
			return l.single(Gt)
		case '.':
			if l.peekAt(1) == '.' {
				if l.peekAt(2) == '.' {
					l.readChar()
					l.readChar()
					l.readChar()
					return l.token(Ellipsis, start)
				}
				l.readChar()
				l.readChar()
				return l.token(Concat, start)
			}
			return l.single(Dot)
		case '+':
			return l.single(Plus)
		case '*':
			return l.single(Star)
		case '/':
			return l.single(Slash)
		case '%':
			return l.single(Percent)
		case '^':
			return l.single(Caret)
		case '#':
			return l.single(Hash)
		case '(':
			return l.single(LParen)
		case ')':
			return l.single(RParen)
		case '{':
			return l.single(LBrace)
		case '}':
			return l.single(RBrace)
		case ']':
			return l.single(RBracket)
		case ';':
			return l.single(Semi)
		case ':':
			return l.single(Colon)
		case ',':
			return l.single(Comma)
		case '?':
			if l.mode == annotMode {
				return l.single(Question)
			}
		case '!':
			if l.mode == annotMode {
				return l.single(Bang)
			}
		case '|':
			if l.mode == annotMode {
				return l.single(Pipe)
			}
		}
		ch := l.ch
		l.readChar()
		return l.illegal(start, "unexpected symbol near `%c`", ch)
	}
}

// dashDash handles `--` in both modes. It returns a token for annotation
// openers and for the `-->` arrow inside annotations; plain comments are
// consumed and ok is false.
func (l *Lexer) dashDash(start int) (Token, bool) {
	if l.mode == annotMode {
		if l.peekAt(2) == '>' {
			l.readChar()
			l.readChar()
			l.readChar()
			return l.token(Arrow, start), true
		}
		// a comment inside an annotation runs to the end of the line,
		// which also ends the annotation
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		return Token{}, false
	}
	switch c := l.peekAt(2); {
	case c == ':' || c == '>' || c == '#' || (c == 'v' && isAnnotBoundary(l.peekAt(3))):
		l.readChar()
		l.readChar()
		l.readChar()
		l.mode = annotMode
		switch c {
		case ':':
			return l.token(AnnotTypeBegin, start), true
		case '>':
			return l.token(AnnotReturnsBegin, start), true
		case '#':
			return l.token(AnnotPragmaBegin, start), true
		default:
			return l.token(AnnotFuncBegin, start), true
		}
	case c == '[':
		if level, ok := l.longBracketLevel(2); ok {
			l.readChar()
			l.readChar()
			l.consumeLongBracket(level)
			return Token{}, false
		}
	}
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return Token{}, false
}

// annotSpace skips horizontal whitespace in annotation mode and emits
// AnnotEnd when the line (and so the annotation) ends.
func (l *Lexer) annotSpace() (Token, bool) {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
	if l.ch == '\n' || l.ch == 0 {
		start := l.position
		if l.ch == '\n' {
			l.readChar()
		}
		l.mode = plainMode
		return l.token(AnnotEnd, start), true
	}
	return Token{}, false
}

// skipSpace consumes whitespace and plain comments, stopping before
// annotation openers so NextToken lexes them.
func (l *Lexer) skipSpace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch != '-' || l.peekAt(1) != '-' {
			return
		}
		switch c := l.peekAt(2); {
		case c == ':' || c == '>' || c == '#':
			return
		case c == 'v' && isAnnotBoundary(l.peekAt(3)):
			return
		case c == '[':
			if level, ok := l.longBracketLevel(2); ok {
				l.readChar()
				l.readChar()
				l.consumeLongBracket(level)
				continue
			}
		}
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	}
}

// longBracketLevel reports whether a long-bracket opener `[`+`=`*n+`[`
// starts n bytes after the current position, without consuming it.
func (l *Lexer) longBracketLevel(n int) (int, bool) {
	if l.peekAt(n) != '[' {
		return 0, false
	}
	level := 0
	for l.peekAt(n+1+level) == '=' {
		level++
	}
	if l.peekAt(n+1+level) != '[' {
		return 0, false
	}
	return level, true
}

// consumeLongBracket consumes a whole `[==[ ... ]==]` bracket, assuming the
// current position is at its opener, and returns the enclosed content. A
// newline immediately after the opener is dropped, as Lua does.
func (l *Lexer) consumeLongBracket(level int) (string, bool) {
	for i := 0; i < level+2; i++ {
		l.readChar()
	}
	contentStart := l.position
	for {
		if l.ch == 0 {
			return "", false
		}
		if l.ch == ']' {
			closeLevel := 0
			for l.peekAt(1+closeLevel) == '=' {
				closeLevel++
			}
			if closeLevel == level && l.peekAt(1+closeLevel) == ']' {
				content := l.input[contentStart:l.position]
				for i := 0; i < level+2; i++ {
					l.readChar()
				}
				if strings.HasPrefix(content, "\r\n") {
					content = content[2:]
				} else if len(content) > 0 && (content[0] == '\n' || content[0] == '\r') {
					content = content[1:]
				}
				return content, true
			}
		}
		l.readChar()
	}
}

func (l *Lexer) shortString(start int) Token {
	quote := l.ch
	l.readChar()
	var sb strings.Builder
	for {
		switch {
		case l.ch == 0 || l.ch == '\n':
			return l.illegal(start, "unfinished string")
		case l.ch == quote:
			l.readChar()
			tok := l.token(String, start)
			tok.Str = sb.String()
			return tok
		case l.ch == '\\':
			l.readChar()
			switch l.ch {
			case 'a':
				sb.WriteByte(7)
			case 'b':
				sb.WriteByte(8)
			case 'f':
				sb.WriteByte(12)
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'v':
				sb.WriteByte(11)
			case '\\', '"', '\'':
				sb.WriteByte(l.ch)
			case '\r', '\n':
				// escaped real newline, \r\n counts as one
				if l.ch == '\r' && l.peekAt(1) == '\n' {
					l.readChar()
				}
				sb.WriteByte('\n')
			case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
				val := 0
				digits := 0
				for digits < 3 && isDigit(l.ch) {
					val = val*10 + int(l.ch-'0')
					digits++
					l.readChar()
				}
				if val > 255 {
					return l.illegal(start, "decimal escape too large")
				}
				sb.WriteByte(byte(val))
				continue
			default:
				return l.illegal(start, "invalid escape sequence `\\%c`", l.ch)
			}
			l.readChar()
		default:
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) number(start int) Token {
	if l.ch == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.readChar()
		l.readChar()
		digStart := l.position
		for isHexDigit(l.ch) {
			l.readChar()
		}
		if l.position == digStart || isNameStart(l.ch) {
			l.skipNameChars()
			return l.illegal(start, "malformed number near `%s`", l.input[start:l.position])
		}
		v, err := strconv.ParseUint(l.input[digStart:l.position], 16, 64)
		if err != nil {
			return l.illegal(start, "malformed number near `%s`", l.input[start:l.position])
		}
		tok := l.token(Number, start)
		tok.Num = float64(v)
		return tok
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		digStart := l.position
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.position == digStart {
			l.skipNameChars()
			return l.illegal(start, "malformed number near `%s`", l.input[start:l.position])
		}
	}
	if isNameStart(l.ch) {
		l.skipNameChars()
		return l.illegal(start, "malformed number near `%s`", l.input[start:l.position])
	}
	v, err := strconv.ParseFloat(l.input[start:l.position], 64)
	if err != nil {
		return l.illegal(start, "malformed number near `%s`", l.input[start:l.position])
	}
	tok := l.token(Number, start)
	tok.Num = v
	return tok
}

func (l *Lexer) skipNameChars() {
	for isNameChar(l.ch) {
		l.readChar()
	}
}

func isAnnotBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == 0
}

func isNameStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
