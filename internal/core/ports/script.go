package ports

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
)

// ScriptEngine loads recipe scripts.
//
//go:generate mockgen -source=script.go -destination=mocks/mock_script.go -package=mocks
type ScriptEngine interface {
	// Load parses the script at path. Helpers invoked by the script operate on ec.
	Load(path string, ec *domain.ExecutionContext) (Script, error)
}

// Script is a parsed recipe whose functions can be called by name.
type Script interface {
	// Bindings returns the literal top-level bindings without running code.
	Bindings() map[string]domain.Value

	// HasFunction reports whether a function with the given name and number
	// of parameters is declared.
	HasFunction(name string, arity int) bool

	// Call invokes a zero- or one-parameter function. A one-parameter function
	// receives the phase context. A script-raised failure is returned as an error.
	Call(ctx context.Context, name string) (domain.Value, error)
}
