// Package script implements the recipe scripting dialect: a small tree-walking
// interpreter with Go helpers bound to a domain.ExecutionContext.
package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	num  int64
	line int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokString:
		return strconv.Quote(t.text)
	default:
		return "'" + t.text + "'"
	}
}

// Longest first so that "==" wins over "=".
var punctuators = []string{
	"#{", "==", "!=", "<=", ">=", "&&", "||", "+=", "-=",
	"{", "}", "(", ")", "[", "]", ",", ";", ":", ".",
	"=", "<", ">", "+", "-", "*", "/", "%", "!",
}

type syntaxError struct {
	line int
	msg  string
}

func (e *syntaxError) Error() string { return fmt.Sprintf("line %d: %s", e.line, e.msg) }

type lexer struct {
	src  string
	pos  int
	line int
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src, line: 1}
	var toks []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (lx *lexer) errorf(format string, args ...any) error {
	return &syntaxError{line: lx.line, msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) next() (token, error) {
	if err := lx.skipTrivia(); err != nil {
		return token{}, err
	}
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line}, nil
	}

	c := lx.src[lx.pos]
	switch {
	case isLetter(c):
		start := lx.pos
		for lx.pos < len(lx.src) && (isLetter(lx.src[lx.pos]) || isDigit(lx.src[lx.pos])) {
			lx.pos++
		}
		return token{kind: tokIdent, text: lx.src[start:lx.pos], line: lx.line}, nil
	case isDigit(c):
		return lx.number()
	case c == '"':
		return lx.quoted()
	case c == '`':
		return lx.raw()
	}

	for _, p := range punctuators {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.pos += len(p)
			return token{kind: tokPunct, text: p, line: lx.line}, nil
		}
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return token{}, lx.errorf("unexpected character %q", r)
}

func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		switch c := lx.src[lx.pos]; {
		case c == '\n':
			lx.line++
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case strings.HasPrefix(lx.src[lx.pos:], "//"):
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end < 0 {
				return lx.errorf("unterminated block comment")
			}
			comment := lx.src[lx.pos : lx.pos+2+end+2]
			lx.line += strings.Count(comment, "\n")
			lx.pos += len(comment)
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) number() (token, error) {
	start := lx.pos
	for lx.pos < len(lx.src) && (isDigit(lx.src[lx.pos]) || isLetter(lx.src[lx.pos])) {
		lx.pos++
	}
	// 0x, 0o and 0b prefixes are accepted; chmod modes are usually octal.
	text := lx.src[start:lx.pos]
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return token{}, lx.errorf("invalid integer %q", lx.src[start:lx.pos])
	}
	return token{kind: tokInt, text: text, num: n, line: lx.line}, nil
}

func (lx *lexer) quoted() (token, error) {
	line := lx.line
	lx.pos++
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case '"':
			lx.pos++
			return token{kind: tokString, text: b.String(), line: line}, nil
		case '\n':
			lx.line++
			b.WriteByte(c)
			lx.pos++
		case '\\':
			if lx.pos+1 >= len(lx.src) {
				return token{}, lx.errorf("unterminated string")
			}
			lx.pos++
			switch e := lx.src[lx.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'':
				b.WriteByte(e)
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
			lx.pos++
		default:
			b.WriteByte(c)
			lx.pos++
		}
	}
	return token{}, &syntaxError{line: line, msg: "unterminated string"}
}

func (lx *lexer) raw() (token, error) {
	line := lx.line
	end := strings.IndexByte(lx.src[lx.pos+1:], '`')
	if end < 0 {
		return token{}, &syntaxError{line: line, msg: "unterminated string"}
	}
	text := lx.src[lx.pos+1 : lx.pos+1+end]
	lx.line += strings.Count(text, "\n")
	lx.pos += end + 2
	return token{kind: tokString, text: text, line: line}, nil
}

func isLetter(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
