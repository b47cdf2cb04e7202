package script

import (
	"context"
	"errors"
	"net/http"
	"os"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.ScriptEngine = (*Engine)(nil)
	_ ports.Script       = (*Script)(nil)
)

// Engine implements ports.ScriptEngine for the recipe dialect.
type Engine struct {
	executor ports.Executor
	hasher   ports.Hasher
	client   *http.Client
	cache    ports.DownloadCache
}

// NewEngine creates an Engine. Process helpers run through executor and
// verification helpers hash through hasher. Downloads go through cache when
// it is not nil.
func NewEngine(executor ports.Executor, hasher ports.Hasher, client *http.Client, cache ports.DownloadCache) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	return &Engine{executor: executor, hasher: hasher, client: client, cache: cache}
}

// Load parses the recipe at path. Nothing is evaluated until the first Call.
func (e *Engine) Load(path string, ec *domain.ExecutionContext) (ports.Script, error) {
	src, err := os.ReadFile(path) //nolint:gosec // recipe path chosen by the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, err.Error()), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read recipe"), "path", path)
	}
	prog, err := parse(string(src))
	if err != nil {
		var se *syntaxError
		if errors.As(err, &se) {
			err = zerr.With(zerr.Wrap(domain.ErrScriptSyntax, se.msg), "line", se.line)
		}
		return nil, &domain.ParseError{Path: path, Reason: err}
	}
	return &Script{engine: e, path: path, prog: prog, ec: ec}, nil
}

// Script is a parsed recipe bound to one execution context.
type Script struct {
	engine *Engine
	path   string
	prog   *program
	ec     *domain.ExecutionContext

	globals *scope
	initErr error
}

// Bindings returns the top-level bindings whose value is a literal. When a
// name is bound more than once the last binding wins.
func (s *Script) Bindings() map[string]domain.Value {
	vars := make(map[string]domain.Value, len(s.prog.globals))
	for _, g := range s.prog.globals {
		v, ok := literal(g.val)
		if !ok {
			delete(vars, g.name)
			continue
		}
		dv, err := toDomain(v)
		if err != nil {
			continue
		}
		vars[g.name] = dv
	}
	return vars
}

// HasFunction reports whether name is declared with the given arity.
func (s *Script) HasFunction(name string, arity int) bool {
	_, ok := s.prog.funcs[funcKey{name, arity}]
	return ok
}

// Call invokes name. A one-parameter declaration is preferred and receives
// the phase context map; when it returns a map, its non-reserved keys are
// stored in the execution context for the next phase.
func (s *Script) Call(ctx context.Context, name string) (domain.Value, error) {
	fn, args := s.prog.funcs[funcKey{name, 1}], []any(nil)
	if fn != nil {
		arg := make(map[string]any)
		for k, v := range s.ec.PhaseArgument() {
			arg[k] = fromDomain(v)
		}
		args = []any{arg}
	} else if fn = s.prog.funcs[funcKey{name, 0}]; fn == nil {
		return domain.Value{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingFunction, name), "function", name), "path", s.path)
	}

	in := &interp{script: s, ctx: ctx}
	if err := s.init(in); err != nil {
		return domain.Value{}, scriptError("<global>", err)
	}
	result, err := in.call(fn, args)
	if err != nil {
		return domain.Value{}, scriptError(name, err)
	}

	if m, ok := result.(map[string]any); ok {
		for k, v := range m {
			if domain.ReservedPhaseKeys[k] {
				continue
			}
			dv, cerr := toDomain(v)
			if cerr != nil {
				return domain.Value{}, scriptError(name, zerr.With(cerr, "key", k))
			}
			s.ec.Vars[k] = dv
		}
		return domain.UnitValue(), nil
	}
	dv, err := toDomain(result)
	if err != nil {
		return domain.Value{}, scriptError(name, err)
	}
	return dv, nil
}

// init evaluates the top-level bindings once.
func (s *Script) init(in *interp) error {
	if s.globals != nil {
		return s.initErr
	}
	s.globals = newScope(nil)
	for _, g := range s.prog.globals {
		if _, _, err := in.exec(g, s.globals); err != nil {
			s.initErr = err
			return err
		}
	}
	return nil
}

func scriptError(fn string, err error) error {
	var (
		thrown *thrownError
		rt     *runtimeError
	)
	switch {
	case errors.As(err, &thrown):
		return &domain.ScriptError{Function: fn, Message: thrown.msg, Line: thrown.line}
	case errors.As(err, &rt):
		return &domain.ScriptError{Function: fn, Message: rt.msg, Line: rt.line, Err: rt.err}
	default:
		return &domain.ScriptError{Function: fn, Message: err.Error(), Err: err}
	}
}
