package domain

import "time"

// Default configuration values.
const (
	DefaultLockTimeout = 10 * time.Second
	DefaultShell       = "/bin/sh"
)

// Config holds the resolved runtime configuration.
type Config struct {
	// RecipesPath is the directory scanned for recipe files.
	RecipesPath string
	// Prefix is the destination root installs are committed into.
	Prefix string
	// BuildDir is the root of per-recipe acquire and build areas.
	BuildDir string
	// StagingDir overrides where staging roots are created. Empty means a
	// sibling of Prefix.
	StagingDir string
	// LockTimeout bounds how long to wait for an advisory lock.
	LockTimeout time.Duration
	// Shell interprets the shell helpers.
	Shell string
}

// ConfigOverrides carries values from command-line flags. Empty fields do not override.
type ConfigOverrides struct {
	RecipesPath string
	Prefix      string
	BuildDir    string
}
