package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/core/domain"
)

func baseBindings() map[string]domain.Value {
	return map[string]domain.Value{
		domain.VarName:      domain.StringValue("ripgrep"),
		domain.VarVersion:   domain.StringValue("14.1.0"),
		domain.VarInstalled: domain.BoolValue(false),
	}
}

func TestRecipeFromBindings(t *testing.T) {
	vars := baseBindings()
	vars[domain.VarDescription] = domain.StringValue("fast grep")
	vars[domain.VarDeps] = domain.StringsValue([]string{"pcre2 >= 10", "zlib"})
	vars[domain.VarInstalledVersion] = domain.UnitValue()
	vars[domain.VarInstalledAt] = domain.IntValue(0)
	vars[domain.VarInstalledFiles] = domain.ArrayValue()

	r, err := domain.RecipeFromBindings("/r/ripgrep.recipe", vars)
	require.NoError(t, err)
	assert.Equal(t, "ripgrep", r.Name)
	assert.Equal(t, "14.1.0", r.Version)
	assert.Equal(t, "fast grep", r.Description)
	require.Len(t, r.Deps, 2)
	assert.Equal(t, "pcre2", r.Deps[0].Name)
	assert.False(t, r.State.Installed)
	assert.Empty(t, r.State.InstalledVersion)
	assert.Empty(t, r.State.InstalledFiles)
}

func TestRecipeFromBindings_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(map[string]domain.Value)
		variable string
		target   error
	}{
		{"missing version", func(v map[string]domain.Value) { delete(v, domain.VarVersion) }, domain.VarVersion, domain.ErrMissingVariable},
		{"missing installed", func(v map[string]domain.Value) { delete(v, domain.VarInstalled) }, domain.VarInstalled, domain.ErrMissingVariable},
		{"name not a string", func(v map[string]domain.Value) { v[domain.VarName] = domain.IntValue(3) }, domain.VarName, domain.ErrMalformedValue},
		{"bad name", func(v map[string]domain.Value) { v[domain.VarName] = domain.StringValue("Rip_Grep") }, domain.VarName, domain.ErrInvalidRecipeName},
		{"installed not bool", func(v map[string]domain.Value) { v[domain.VarInstalled] = domain.StringValue("yes") }, domain.VarInstalled, domain.ErrMalformedValue},
		{"deps not strings", func(v map[string]domain.Value) {
			v[domain.VarDeps] = domain.ArrayValue(domain.IntValue(1))
		}, domain.VarDeps, domain.ErrMalformedValue},
		{"bad dep", func(v map[string]domain.Value) {
			v[domain.VarDeps] = domain.StringsValue([]string{"zlib >= nope"})
		}, domain.VarDeps, domain.ErrInvalidConstraint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := baseBindings()
			tt.mutate(vars)

			_, err := domain.RecipeFromBindings("/r/x.recipe", vars)
			var pe *domain.ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %v", err)
			assert.Equal(t, tt.variable, pe.Variable)
			assert.True(t, errors.Is(err, tt.target), "expected %v in %v", tt.target, err)
			assert.Equal(t, domain.KindRecipe, domain.KindOf(err))
		})
	}
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a", "ripgrep", "lib-ssl3", "x11-proto-core"} {
		assert.NoError(t, domain.ValidateName(ok), ok)
	}
	for _, bad := range []string{"", "1abc", "Abc", "a--b", "a-", "a_b", "-a"} {
		assert.Error(t, domain.ValidateName(bad), bad)
	}
}

func TestState_Bindings(t *testing.T) {
	vars := domain.Cleared().Bindings()
	assert.Equal(t, "false", vars[domain.VarInstalled].Literal())
	assert.Equal(t, "()", vars[domain.VarInstalledVersion].Literal())
	assert.Equal(t, "0", vars[domain.VarInstalledAt].Literal())
	assert.Equal(t, "[]", vars[domain.VarInstalledFiles].Literal())

	s := domain.State{Installed: true, InstalledVersion: "1.0", InstalledAt: 42, InstalledFiles: []string{`/p/a "b"`}}
	vars = s.Bindings()
	assert.Equal(t, `["/p/a \"b\""]`, vars[domain.VarInstalledFiles].Literal())
	assert.Equal(t, `"1.0"`, vars[domain.VarInstalledVersion].Literal())
}
