package script

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

const maxCallDepth = 128

type thrownError struct {
	msg  string
	line int
}

func (e *thrownError) Error() string { return e.msg }

type runtimeError struct {
	msg  string
	line int
	err  error
}

func (e *runtimeError) Error() string { return fmt.Sprintf("line %d: %s", e.line, e.msg) }

func (e *runtimeError) Unwrap() error { return e.err }

func errorAt(line int, format string, args ...any) error {
	return &runtimeError{msg: fmt.Sprintf(format, args...), line: line}
}

// helperFailure attaches the helper name and line to a helper error unless it
// already carries a location.
func helperFailure(line int, name string, err error) error {
	var (
		thrown *thrownError
		rt     *runtimeError
	)
	if errors.As(err, &thrown) || errors.As(err, &rt) {
		return err
	}
	return &runtimeError{msg: name + ": " + err.Error(), line: line, err: err}
}

type scope struct {
	vars   map[string]any
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]any), parent: parent}
}

func (s *scope) lookup(name string) (any, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) assign(name string, v any) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.vars[name]; ok {
			sc.vars[name] = v
			return true
		}
	}
	return false
}

// interp evaluates one Call.
type interp struct {
	script *Script
	ctx    context.Context
	depth  int
}

func (in *interp) call(fn *funcDecl, args []any) (any, error) {
	if in.depth >= maxCallDepth {
		return nil, errorAt(fn.line, "call depth exceeded in %s", fn.name)
	}
	if err := in.ctx.Err(); err != nil {
		return nil, err
	}
	in.depth++
	defer func() { in.depth-- }()

	sc := newScope(in.script.globals)
	for i, p := range fn.params {
		sc.vars[p] = args[i]
	}
	body := fn.body
	if n := len(body); n > 0 {
		if last, ok := body[n-1].(*exprStmt); ok && last.tail {
			returned, v, err := in.execBlock(body[:n-1], sc)
			if err != nil || returned {
				return v, err
			}
			return in.eval(last.x, sc)
		}
	}
	_, v, err := in.execBlock(body, sc)
	return v, err
}

func (in *interp) execBlock(body []stmt, sc *scope) (bool, any, error) {
	for _, s := range body {
		returned, v, err := in.exec(s, sc)
		if err != nil || returned {
			return returned, v, err
		}
	}
	return false, nil, nil
}

//nolint:cyclop // one case per statement kind
func (in *interp) exec(s stmt, sc *scope) (bool, any, error) {
	switch s := s.(type) {
	case *letStmt:
		v, err := in.eval(s.val, sc)
		if err != nil {
			return false, nil, err
		}
		sc.vars[s.name] = v
	case *assignStmt:
		return false, nil, in.assign(s, sc)
	case *exprStmt:
		_, err := in.eval(s.x, sc)
		return false, nil, err
	case *blockStmt:
		return in.execBlock(s.body, newScope(sc))
	case *ifStmt:
		c, err := in.eval(s.cond, sc)
		if err != nil {
			return false, nil, err
		}
		b, ok := truthy(c)
		if !ok {
			return false, nil, errorAt(s.line, "if condition must be bool, got %s", typeName(c))
		}
		if b {
			return in.execBlock(s.then, newScope(sc))
		}
		return in.execBlock(s.els, newScope(sc))
	case *forStmt:
		return in.execFor(s, sc)
	case *returnStmt:
		if s.val == nil {
			return true, nil, nil
		}
		v, err := in.eval(s.val, sc)
		return err == nil, v, err
	case *throwStmt:
		v, err := in.eval(s.val, sc)
		if err != nil {
			return false, nil, err
		}
		return false, nil, &thrownError{msg: display(v), line: s.line}
	default:
		return false, nil, errorAt(s.stmtLine(), "unsupported statement")
	}
	return false, nil, nil
}

func (in *interp) execFor(s *forStmt, sc *scope) (bool, any, error) {
	it, err := in.eval(s.iter, sc)
	if err != nil {
		return false, nil, err
	}
	var items []any
	switch x := it.(type) {
	case []any:
		items = slices.Clone(x)
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(x)) {
			items = append(items, k)
		}
	default:
		return false, nil, errorAt(s.line, "cannot iterate over %s", typeName(it))
	}
	for _, item := range items {
		if err := in.ctx.Err(); err != nil {
			return false, nil, err
		}
		body := newScope(sc)
		body.vars[s.name] = item
		returned, v, err := in.execBlock(s.body, body)
		if err != nil || returned {
			return returned, v, err
		}
	}
	return false, nil, nil
}

func (in *interp) assign(s *assignStmt, sc *scope) error {
	v, err := in.eval(s.val, sc)
	if err != nil {
		return err
	}
	if s.op != "=" {
		cur, err := in.eval(s.target, sc)
		if err != nil {
			return err
		}
		if v, err = binaryOp(s.op[:1], cur, v, s.line); err != nil {
			return err
		}
	}
	return in.store(s.target, v, sc, s.line)
}

func (in *interp) store(target expr, v any, sc *scope, line int) error {
	switch t := target.(type) {
	case *identExpr:
		if !sc.assign(t.name, v) {
			return errorAt(line, "assignment to undefined variable %s", t.name)
		}
		return nil
	case *propExpr:
		obj, err := in.eval(t.obj, sc)
		if err != nil {
			return err
		}
		m, ok := obj.(map[string]any)
		if !ok {
			return errorAt(line, "cannot set property %s on %s", t.name, typeName(obj))
		}
		m[t.name] = v
		return nil
	case *indexExpr:
		obj, err := in.eval(t.obj, sc)
		if err != nil {
			return err
		}
		idx, err := in.eval(t.idx, sc)
		if err != nil {
			return err
		}
		switch o := obj.(type) {
		case []any:
			i, ok := idx.(int64)
			if !ok || i < 0 || i >= int64(len(o)) {
				return errorAt(line, "array index %s out of range", display(idx))
			}
			o[i] = v
		case map[string]any:
			k, ok := idx.(string)
			if !ok {
				return errorAt(line, "map key must be a string")
			}
			o[k] = v
		default:
			return errorAt(line, "cannot index %s", typeName(obj))
		}
		return nil
	default:
		return errorAt(line, "invalid assignment target")
	}
}

//nolint:cyclop // one case per expression kind
func (in *interp) eval(e expr, sc *scope) (any, error) {
	switch e := e.(type) {
	case *litExpr:
		return e.val, nil
	case *identExpr:
		if v, ok := sc.lookup(e.name); ok {
			return v, nil
		}
		if v, ok := in.contextVar(e.name); ok {
			return v, nil
		}
		return nil, errorAt(e.line, "undefined variable %s", e.name)
	case *arrayExpr:
		items := make([]any, len(e.items))
		for i, item := range e.items {
			v, err := in.eval(item, sc)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case *mapExpr:
		m := make(map[string]any, len(e.keys))
		for i, k := range e.keys {
			v, err := in.eval(e.vals[i], sc)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	case *callExpr:
		args, err := in.evalArgs(e.args, sc)
		if err != nil {
			return nil, err
		}
		return in.invoke(e.name, args, e.line)
	case *methodExpr:
		return in.method(e, sc)
	case *propExpr:
		obj, err := in.eval(e.obj, sc)
		if err != nil {
			return nil, err
		}
		m, ok := obj.(map[string]any)
		if !ok {
			return nil, errorAt(e.line, "cannot read property %s of %s", e.name, typeName(obj))
		}
		return m[e.name], nil
	case *indexExpr:
		return in.index(e, sc)
	case *unaryExpr:
		x, err := in.eval(e.x, sc)
		if err != nil {
			return nil, err
		}
		return unaryOp(e.op, x, e.line)
	case *binaryExpr:
		return in.binary(e, sc)
	default:
		return nil, errorAt(e.exprLine(), "unsupported expression")
	}
}

// contextVar resolves the read-only names bound to the execution context.
// PREFIX follows the staging redirection during install.
func (in *interp) contextVar(name string) (any, bool) {
	ec := in.script.ec
	switch name {
	case "PREFIX":
		return ec.Prefix, true
	case "BUILD_DIR":
		return ec.BuildDir, true
	case "NAME":
		return ec.Recipe, true
	case "VERSION":
		return ec.Version, true
	}
	return nil, false
}

func (in *interp) evalArgs(exprs []expr, sc *scope) ([]any, error) {
	args := make([]any, len(exprs))
	for i, a := range exprs {
		v, err := in.eval(a, sc)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// invoke calls a script function, falling back to a helper of the same name.
func (in *interp) invoke(name string, args []any, line int) (any, error) {
	if fn, ok := in.script.prog.funcs[funcKey{name, len(args)}]; ok {
		return in.call(fn, args)
	}
	h, ok := helpers[name]
	if !ok {
		return nil, errorAt(line, "function not found: %s/%d", name, len(args))
	}
	if len(args) < h.min || (h.max >= 0 && len(args) > h.max) {
		return nil, errorAt(line, "%s: wrong number of arguments (%d)", name, len(args))
	}
	if err := in.ctx.Err(); err != nil {
		return nil, err
	}
	v, err := h.fn(in, args)
	if err != nil {
		return nil, helperFailure(line, name, err)
	}
	return v, nil
}

func (in *interp) method(e *methodExpr, sc *scope) (any, error) {
	recv, err := in.eval(e.recv, sc)
	if err != nil {
		return nil, err
	}
	args, err := in.evalArgs(e.args, sc)
	if err != nil {
		return nil, err
	}
	if e.name == "push" {
		arr, ok := recv.([]any)
		if !ok {
			return nil, errorAt(e.line, "push on %s", typeName(recv))
		}
		return nil, in.store(e.recv, append(arr, args...), sc, e.line)
	}
	return in.invoke(e.name, append([]any{recv}, args...), e.line)
}

func (in *interp) index(e *indexExpr, sc *scope) (any, error) {
	obj, err := in.eval(e.obj, sc)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(e.idx, sc)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case []any:
		i, ok := idx.(int64)
		if !ok || i < 0 || i >= int64(len(o)) {
			return nil, errorAt(e.line, "array index %s out of range", display(idx))
		}
		return o[i], nil
	case map[string]any:
		k, ok := idx.(string)
		if !ok {
			return nil, errorAt(e.line, "map key must be a string")
		}
		return o[k], nil
	case string:
		i, ok := idx.(int64)
		r := []rune(o)
		if !ok || i < 0 || i >= int64(len(r)) {
			return nil, errorAt(e.line, "string index %s out of range", display(idx))
		}
		return string(r[i]), nil
	default:
		return nil, errorAt(e.line, "cannot index %s", typeName(obj))
	}
}

func (in *interp) binary(e *binaryExpr, sc *scope) (any, error) {
	l, err := in.eval(e.l, sc)
	if err != nil {
		return nil, err
	}
	if e.op == "&&" || e.op == "||" {
		lb, ok := truthy(l)
		if !ok {
			return nil, errorAt(e.line, "%s needs bool operands, got %s", e.op, typeName(l))
		}
		if (e.op == "&&" && !lb) || (e.op == "||" && lb) {
			return lb, nil
		}
		r, err := in.eval(e.r, sc)
		if err != nil {
			return nil, err
		}
		rb, ok := truthy(r)
		if !ok {
			return nil, errorAt(e.line, "%s needs bool operands, got %s", e.op, typeName(r))
		}
		return rb, nil
	}
	r, err := in.eval(e.r, sc)
	if err != nil {
		return nil, err
	}
	return binaryOp(e.op, l, r, e.line)
}

func unaryOp(op string, x any, line int) (any, error) {
	switch op {
	case "!":
		if b, ok := x.(bool); ok {
			return !b, nil
		}
	case "-":
		if i, ok := x.(int64); ok {
			return -i, nil
		}
	}
	return nil, errorAt(line, "invalid operand %s for %s", typeName(x), op)
}

//nolint:cyclop // operator table
func binaryOp(op string, l, r any, line int) (any, error) {
	switch op {
	case "==":
		return equal(l, r), nil
	case "!=":
		return !equal(l, r), nil
	case "+":
		switch x := l.(type) {
		case string:
			return x + display(r), nil
		case []any:
			if y, ok := r.([]any); ok {
				return slices.Concat(x, y), nil
			}
			return append(slices.Clone(x), r), nil
		case map[string]any:
			if y, ok := r.(map[string]any); ok {
				out := maps.Clone(x)
				maps.Copy(out, y)
				return out, nil
			}
		}
		if s, ok := r.(string); ok {
			return display(l) + s, nil
		}
	}

	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			switch op {
			case "<":
				return ls < rs, nil
			case "<=":
				return ls <= rs, nil
			case ">":
				return ls > rs, nil
			case ">=":
				return ls >= rs, nil
			}
		}
	}

	li, lok := l.(int64)
	ri, rok := r.(int64)
	if !lok || !rok {
		return nil, errorAt(line, "invalid operands %s %s %s", typeName(l), op, typeName(r))
	}
	switch op {
	case "+":
		return li + ri, nil
	case "-":
		return li - ri, nil
	case "*":
		return li * ri, nil
	case "/", "%":
		if ri == 0 {
			return nil, errorAt(line, "division by zero")
		}
		if op == "/" {
			return li / ri, nil
		}
		return li % ri, nil
	case "<":
		return li < ri, nil
	case "<=":
		return li <= ri, nil
	case ">":
		return li > ri, nil
	case ">=":
		return li >= ri, nil
	}
	return nil, errorAt(line, "unknown operator %s", op)
}
