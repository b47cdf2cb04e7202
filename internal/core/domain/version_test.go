package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/core/domain"
)

func TestConstraint_Satisfied(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		want       bool
	}{
		{">= 3.0.0", "3.0.0", true},
		{">= 3.0.0", "3.1.0", true},
		{">= 3.0.0", "2.9.0", false},
		{"< 2.0.0", "1.9.0", true},
		{"< 2.0.0", "2.0.0", false},
		{">= 1.2, < 1.3", "1.2.13", true},
		{">= 1.2, < 1.3", "1.3.0", false},
		{"^8.0", "8.2.1", true},
		{"^8.0", "9.0.0", false},
		{"^0.2.3", "0.2.9", true},
		{"^0.2.3", "0.3.0", false},
		{"^0.0.3", "0.0.4", false},
		{"~6.4", "6.4.9", true},
		{"~6.4", "6.5.0", false},
		{"~1", "1.9.0", true},
		{"= 1.2.3", "1.2.3", true},
		{"== 1.2.3", "1.2.4", false},
		{"=1.2", "1.2.7", true},
		{"> 1.2", "1.2.9", false},
		{"> 1.2", "1.3.0", true},
		{"> 1.2.3", "1.2.3", false},
		{"<= 1.2", "1.2.9", true},
		{"<= 1.2", "1.3.0", false},
		{"1.4", "1.9.0", true},
		{"1.4", "2.0.0", false},
		{"*", "anything", true},
		{"", "rolling", true},
		{">= 1.0", "2", true},
		{">= 1.0", "v1.1", true},
		{">= 1.0", "nightly", false},
		{"^1", "latest", false},
		{"= nightly", "nightly", true},
		{"= nightly", "nightly-2", false},
	}
	for _, tt := range tests {
		t.Run(tt.constraint+"|"+tt.version, func(t *testing.T) {
			c, err := domain.ParseConstraint(tt.constraint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Satisfied(tt.version))
		})
	}
}

func TestParseConstraint_Invalid(t *testing.T) {
	for _, s := range []string{">=", ">= banana", "^1.2.3.4", ">= 1.0,", "~x"} {
		t.Run(s, func(t *testing.T) {
			_, err := domain.ParseConstraint(s)
			assert.True(t, errors.Is(err, domain.ErrInvalidConstraint), "got %v", err)
		})
	}
}

func TestParseDependencySpec(t *testing.T) {
	spec, err := domain.ParseDependencySpec("zlib >= 1.2, < 1.3")
	require.NoError(t, err)
	assert.Equal(t, "zlib", spec.Name)
	assert.Equal(t, ">= 1.2, < 1.3", spec.Constraint.Raw)
	assert.Len(t, spec.Constraint.Comparators, 2)
	assert.Equal(t, "zlib >= 1.2, < 1.3", spec.String())

	spec, err = domain.ParseDependencySpec("  my_pkg-2  ")
	require.NoError(t, err)
	assert.Equal(t, "my_pkg-2", spec.Name)
	assert.True(t, spec.Constraint.IsAny())

	spec, err = domain.ParseDependencySpec("readline^8.0")
	require.NoError(t, err)
	assert.Equal(t, "readline", spec.Name)
	assert.True(t, spec.Constraint.Satisfied("8.1"))

	_, err = domain.ParseDependencySpec(">= 1.0")
	assert.True(t, errors.Is(err, domain.ErrInvalidDependency))
}

func TestUpgradeNeeded(t *testing.T) {
	assert.True(t, domain.UpgradeNeeded("1.0.0", "1.0.1"))
	assert.True(t, domain.UpgradeNeeded("1.9", "1.10"))
	assert.False(t, domain.UpgradeNeeded("2.0.0", "1.0.0"))
	assert.False(t, domain.UpgradeNeeded("1.0", "1.0.0"))
	assert.True(t, domain.UpgradeNeeded("nightly-1", "nightly-2"))
	assert.False(t, domain.UpgradeNeeded("nightly", "nightly"))
	assert.False(t, domain.UpgradeNeeded("", "1.0.0"))
}

func TestVersion_Compare(t *testing.T) {
	cmp, ok := domain.ParseVersion("1.2.3-rc.1").Compare(domain.ParseVersion("1.2.3"))
	assert.True(t, ok)
	assert.Equal(t, -1, cmp)

	_, ok = domain.ParseVersion("nightly").Compare(domain.ParseVersion("1.0"))
	assert.False(t, ok)
}
