package script

import (
	"fmt"
	"slices"
)

var keywords = []string{"let", "const", "fn", "if", "else", "for", "in", "return", "throw", "true", "false"}

type parser struct {
	toks []token
	pos  int
}

func parse(src string) (*program, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog := &program{funcs: make(map[funcKey]*funcDecl)}

	for !p.at(tokEOF, "") {
		switch {
		case p.atKeyword("fn"):
			fn, err := p.funcDecl()
			if err != nil {
				return nil, err
			}
			key := funcKey{fn.name, len(fn.params)}
			if _, dup := prog.funcs[key]; dup {
				return nil, &syntaxError{line: fn.line, msg: fmt.Sprintf("function %s/%d declared twice", fn.name, key.arity)}
			}
			prog.funcs[key] = fn
		case p.atKeyword("let"), p.atKeyword("const"):
			s, err := p.letStmt()
			if err != nil {
				return nil, err
			}
			prog.globals = append(prog.globals, s)
		case p.at(tokPunct, ";"):
			p.pos++
		default:
			return nil, p.errorf("expected let or fn at top level, found %s", p.peek())
		}
	}
	return prog, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(kind tokenKind, text string) bool {
	t := p.peek()
	return t.kind == kind && (text == "" || t.text == text)
}

func (p *parser) atKeyword(kw string) bool { return p.at(tokIdent, kw) }

func (p *parser) errorf(format string, args ...any) error {
	return &syntaxError{line: p.peek().line, msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(text string) (token, error) {
	if !p.at(tokPunct, text) {
		return token{}, p.errorf("expected '%s', found %s", text, p.peek())
	}
	return p.advance(), nil
}

func (p *parser) ident() (token, error) {
	t := p.peek()
	if t.kind != tokIdent || slices.Contains(keywords, t.text) {
		return token{}, p.errorf("expected identifier, found %s", t)
	}
	return p.advance(), nil
}

func (p *parser) funcDecl() (*funcDecl, error) {
	line := p.advance().line // fn
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.at(tokPunct, ")") {
		param, err := p.ident()
		if err != nil {
			return nil, err
		}
		params = append(params, param.text)
		if !p.at(tokPunct, ")") {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // )
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &funcDecl{name: name.text, params: params, body: body, line: line}, nil
}

func (p *parser) block() ([]stmt, error) {
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	var body []stmt
	for !p.at(tokPunct, "}") {
		if p.at(tokEOF, "") {
			return nil, p.errorf("unterminated block")
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			body = append(body, s)
		}
	}
	p.advance() // }
	return body, nil
}

//nolint:cyclop // one case per statement kind
func (p *parser) statement() (stmt, error) {
	t := p.peek()
	switch {
	case p.at(tokPunct, ";"):
		p.advance()
		return nil, nil
	case p.at(tokPunct, "{"):
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return &blockStmt{body: body, line: t.line}, nil
	case p.atKeyword("let"), p.atKeyword("const"):
		return p.letStmt()
	case p.atKeyword("if"):
		return p.ifStmt()
	case p.atKeyword("for"):
		return p.forStmt()
	case p.atKeyword("return"):
		p.advance()
		s := &returnStmt{line: t.line}
		if !p.at(tokPunct, ";") && !p.at(tokPunct, "}") {
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			s.val = val
		}
		return s, p.endStatement()
	case p.atKeyword("throw"):
		p.advance()
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &throwStmt{val: val, line: t.line}, p.endStatement()
	}

	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	if op := p.peek(); op.kind == tokPunct && (op.text == "=" || op.text == "+=" || op.text == "-=") {
		switch x.(type) {
		case *identExpr, *indexExpr, *propExpr:
		default:
			return nil, p.errorf("cannot assign to this expression")
		}
		p.advance()
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &assignStmt{target: x, op: op.text, val: val, line: t.line}, p.endStatement()
	}
	tail := p.at(tokPunct, "}")
	return &exprStmt{x: x, line: t.line, tail: tail}, p.endStatement()
}

// endStatement consumes a ';'. It may be omitted before a closing brace.
func (p *parser) endStatement() error {
	if p.at(tokPunct, "}") {
		return nil
	}
	_, err := p.expect(";")
	return err
}

func (p *parser) letStmt() (*letStmt, error) {
	line := p.advance().line
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	s := &letStmt{name: name.text, line: line, val: &litExpr{line: line}}
	if p.at(tokPunct, "=") {
		p.advance()
		if s.val, err = p.expression(); err != nil {
			return nil, err
		}
	}
	return s, p.endStatement()
}

func (p *parser) ifStmt() (stmt, error) {
	line := p.advance().line
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	s := &ifStmt{cond: cond, then: then, line: line}
	if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			nested, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			s.els = []stmt{nested}
		} else if s.els, err = p.block(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) forStmt() (stmt, error) {
	line := p.advance().line
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("in") {
		return nil, p.errorf("expected 'in', found %s", p.peek())
	}
	p.advance()
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &forStmt{name: name.text, iter: iter, body: body, line: line}, nil
}

// Binary operator precedence, lowest first.
var precedence = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) expression() (expr, error) { return p.binary(0) }

func (p *parser) binary(level int) (expr, error) {
	if level == len(precedence) {
		return p.unary()
	}
	l, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokPunct || !slices.Contains(precedence[level], t.text) {
			return l, nil
		}
		p.advance()
		r, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		l = &binaryExpr{op: t.text, l: l, r: r, line: t.line}
	}
}

func (p *parser) unary() (expr, error) {
	if t := p.peek(); p.at(tokPunct, "!") || p.at(tokPunct, "-") {
		p.advance()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: t.text, x: x, line: t.line}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case p.at(tokPunct, "."):
			p.advance()
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			if p.at(tokPunct, "(") {
				args, err := p.args()
				if err != nil {
					return nil, err
				}
				x = &methodExpr{recv: x, name: name.text, args: args, line: t.line}
			} else {
				x = &propExpr{obj: x, name: name.text, line: t.line}
			}
		case p.at(tokPunct, "["):
			p.advance()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &indexExpr{obj: x, idx: idx, line: t.line}
		default:
			return x, nil
		}
	}
}

func (p *parser) args() ([]expr, error) {
	p.advance() // (
	var args []expr
	for !p.at(tokPunct, ")") {
		a, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.at(tokPunct, ")") {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // )
	return args, nil
}

//nolint:cyclop // one case per literal form
func (p *parser) primary() (expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokInt:
		p.advance()
		return &litExpr{val: t.num, line: t.line}, nil
	case t.kind == tokString:
		p.advance()
		return &litExpr{val: t.text, line: t.line}, nil
	case p.atKeyword("true"), p.atKeyword("false"):
		p.advance()
		return &litExpr{val: t.text == "true", line: t.line}, nil
	case t.kind == tokIdent:
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if p.at(tokPunct, "(") {
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			return &callExpr{name: name.text, args: args, line: t.line}, nil
		}
		return &identExpr{name: name.text, line: t.line}, nil
	case p.at(tokPunct, "("):
		p.advance()
		if p.at(tokPunct, ")") {
			p.advance()
			return &litExpr{line: t.line}, nil
		}
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		_, err = p.expect(")")
		return x, err
	case p.at(tokPunct, "["):
		p.advance()
		arr := &arrayExpr{items: []expr{}, line: t.line}
		for !p.at(tokPunct, "]") {
			item, err := p.expression()
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, item)
			if !p.at(tokPunct, "]") {
				if _, err := p.expect(","); err != nil {
					return nil, err
				}
			}
		}
		p.advance()
		return arr, nil
	case p.at(tokPunct, "#{"):
		return p.mapLiteral()
	}
	return nil, p.errorf("unexpected %s", t)
}

func (p *parser) mapLiteral() (expr, error) {
	line := p.advance().line
	m := &mapExpr{line: line}
	for !p.at(tokPunct, "}") {
		key := p.peek()
		if key.kind != tokIdent && key.kind != tokString {
			return nil, p.errorf("expected map key, found %s", key)
		}
		p.advance()
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		m.keys = append(m.keys, key.text)
		m.vals = append(m.vals, val)
		if !p.at(tokPunct, "}") {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.advance()
	return m, nil
}
