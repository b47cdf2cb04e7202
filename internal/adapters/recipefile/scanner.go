// Package recipefile reads and rewrites the variables declared in recipe
// files without executing them.
package recipefile

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/zerr"
)

// binding is one top-level `let name = value;` statement.
type binding struct {
	Name string
	// Start is the offset of `let`; End is one past the terminating ';'.
	Start, End int
	// ValueStart and ValueEnd delimit the value expression, excluding
	// surrounding whitespace and comments.
	ValueStart, ValueEnd int
	// Value is set when the expression is a literal; otherwise Err explains why not.
	Value domain.Value
	Err   error
}

// scanner walks a recipe source and records top-level bindings. Everything
// nested inside braces, brackets or parentheses is skipped.
type scanner struct {
	src []byte
	pos int
}

// scanBindings returns every top-level binding in source order.
func scanBindings(src []byte) ([]binding, error) {
	s := &scanner{src: src}
	var out []binding
	depth := 0
	atStatement := true

	for {
		if err := s.skipTrivia(); err != nil {
			return nil, err
		}
		if s.eof() {
			break
		}

		c := s.src[s.pos]
		switch {
		case c == '"' || c == '`' || c == '\'':
			if err := s.skipQuoted(c); err != nil {
				return nil, err
			}
			atStatement = false
		case c == '{' || c == '[' || c == '(':
			depth++
			s.pos++
			atStatement = false
		case c == '}' || c == ']' || c == ')':
			if depth > 0 {
				depth--
			}
			s.pos++
			atStatement = depth == 0 && c == '}'
		case c == ';':
			s.pos++
			atStatement = depth == 0
		case isIdentStart(c):
			start := s.pos
			ident := s.ident()
			if depth == 0 && atStatement && ident == "let" {
				b, err := s.letBinding(start)
				if err != nil {
					return nil, err
				}
				if b != nil {
					out = append(out, *b)
					atStatement = true
					continue
				}
			}
			atStatement = false
		default:
			s.pos++
			atStatement = false
		}
	}

	if depth != 0 {
		return nil, zerr.Wrap(domain.ErrScriptSyntax, "unbalanced brackets")
	}
	return out, nil
}

// letBinding parses the rest of a let statement. It returns nil when the
// statement is not a plain `let name = ...;` binding.
func (s *scanner) letBinding(start int) (*binding, error) {
	if err := s.skipTrivia(); err != nil {
		return nil, err
	}
	if s.eof() || !isIdentStart(s.src[s.pos]) {
		return nil, nil
	}
	name := s.ident()
	if err := s.skipTrivia(); err != nil {
		return nil, err
	}
	if s.eof() || s.src[s.pos] != '=' || s.peek(1) == '=' {
		return nil, nil
	}
	s.pos++
	if err := s.skipTrivia(); err != nil {
		return nil, err
	}

	b := &binding{Name: name, Start: start, ValueStart: s.pos}
	v, err := s.literal()
	if err == nil {
		b.ValueEnd = s.pos
		if terr := s.skipTrivia(); terr != nil {
			return nil, terr
		}
		if !s.eof() && s.src[s.pos] == ';' {
			s.pos++
			b.End = s.pos
			b.Value = v
			return b, nil
		}
		err = zerr.New("value is not a literal")
	}

	// Not a literal: skip the expression up to the terminating ';'.
	s.pos = b.ValueStart
	end, serr := s.skipExpression()
	if serr != nil {
		return nil, serr
	}
	b.ValueEnd = end
	b.End = s.pos
	b.Err = zerr.With(zerr.Wrap(domain.ErrMalformedValue, err.Error()),
		"expression", strings.TrimSpace(string(s.src[b.ValueStart:b.ValueEnd])))
	return b, nil
}

// skipExpression advances past the next top-level ';' and returns the offset
// where the expression text ends.
func (s *scanner) skipExpression() (int, error) {
	depth := 0
	end := s.pos
	for {
		if err := s.skipTrivia(); err != nil {
			return 0, err
		}
		if s.eof() {
			return 0, zerr.Wrap(domain.ErrScriptSyntax, "unterminated let statement")
		}
		c := s.src[s.pos]
		switch {
		case c == '"' || c == '`' || c == '\'':
			if err := s.skipQuoted(c); err != nil {
				return 0, err
			}
		case c == '{' || c == '[' || c == '(':
			depth++
			s.pos++
		case c == '}' || c == ']' || c == ')':
			depth--
			s.pos++
		case c == ';' && depth <= 0:
			s.pos++
			return end, nil
		default:
			s.pos++
		}
		end = s.pos
	}
}

// literal parses a string, integer, boolean, unit or array literal.
func (s *scanner) literal() (domain.Value, error) {
	if s.eof() {
		return domain.Value{}, zerr.New("missing value")
	}
	c := s.src[s.pos]
	switch {
	case c == '"':
		str, err := s.stringLiteral()
		if err != nil {
			return domain.Value{}, err
		}
		return domain.StringValue(str), nil
	case c == '[':
		return s.arrayLiteral()
	case c == '(':
		s.pos++
		if err := s.skipTrivia(); err != nil {
			return domain.Value{}, err
		}
		if s.eof() || s.src[s.pos] != ')' {
			return domain.Value{}, zerr.New("expected ()")
		}
		s.pos++
		return domain.UnitValue(), nil
	case c == '-' || isDigit(c):
		return s.intLiteral()
	case isIdentStart(c):
		switch s.ident() {
		case "true":
			return domain.BoolValue(true), nil
		case "false":
			return domain.BoolValue(false), nil
		}
		return domain.Value{}, zerr.New("identifier is not a literal")
	default:
		return domain.Value{}, zerr.New("unexpected character " + strconv.QuoteRune(rune(c)))
	}
}

func (s *scanner) arrayLiteral() (domain.Value, error) {
	s.pos++ // [
	items := []domain.Value{}
	for {
		if err := s.skipTrivia(); err != nil {
			return domain.Value{}, err
		}
		if s.eof() {
			return domain.Value{}, zerr.New("unterminated array")
		}
		if s.src[s.pos] == ']' {
			s.pos++
			return domain.ArrayValue(items...), nil
		}
		item, err := s.literal()
		if err != nil {
			return domain.Value{}, err
		}
		items = append(items, item)
		if err := s.skipTrivia(); err != nil {
			return domain.Value{}, err
		}
		if s.eof() {
			return domain.Value{}, zerr.New("unterminated array")
		}
		switch s.src[s.pos] {
		case ',':
			s.pos++
		case ']':
		default:
			return domain.Value{}, zerr.New("expected , or ] in array")
		}
	}
}

func (s *scanner) intLiteral() (domain.Value, error) {
	start := s.pos
	if s.src[s.pos] == '-' {
		s.pos++
	}
	for !s.eof() && (isDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.pos++
	}
	if !s.eof() && (isIdentStart(s.src[s.pos]) || s.src[s.pos] == '.') {
		return domain.Value{}, zerr.New("not an integer literal")
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(string(s.src[start:s.pos]), "_", ""), 10, 64)
	if err != nil {
		return domain.Value{}, zerr.Wrap(err, "invalid integer")
	}
	return domain.IntValue(n), nil
}

// stringLiteral decodes a double-quoted string with escapes.
func (s *scanner) stringLiteral() (string, error) {
	s.pos++ // opening quote
	var b strings.Builder
	for !s.eof() {
		c := s.src[s.pos]
		switch c {
		case '"':
			s.pos++
			return b.String(), nil
		case '\\':
			if s.pos+1 >= len(s.src) {
				return "", zerr.Wrap(domain.ErrScriptSyntax, "unterminated string")
			}
			s.pos++
			switch e := s.src[s.pos]; e {
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
			s.pos++
		default:
			r, size := utf8.DecodeRune(s.src[s.pos:])
			b.WriteRune(r)
			s.pos += size
		}
	}
	return "", zerr.Wrap(domain.ErrScriptSyntax, "unterminated string")
}

// skipQuoted skips a string, backtick string or character literal.
func (s *scanner) skipQuoted(quote byte) error {
	s.pos++
	for !s.eof() {
		c := s.src[s.pos]
		if c == '\\' && quote != '`' {
			s.pos += 2
			continue
		}
		s.pos++
		if c == quote {
			return nil
		}
	}
	return zerr.Wrap(domain.ErrScriptSyntax, "unterminated string")
}

// skipTrivia skips whitespace, line comments and block comments.
func (s *scanner) skipTrivia() error {
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.peek(1) == '/':
			for !s.eof() && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.peek(1) == '*':
			end := strings.Index(string(s.src[s.pos+2:]), "*/")
			if end < 0 {
				return zerr.Wrap(domain.ErrScriptSyntax, "unterminated block comment")
			}
			s.pos += 2 + end + 2
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) ident() string {
	start := s.pos
	for !s.eof() && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) peek(offset int) byte {
	if s.pos+offset < len(s.src) {
		return s.src[s.pos+offset]
	}
	return 0
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
