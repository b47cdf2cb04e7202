package domain

import (
	"io"
	"maps"
)

// Phase names one step of the install or removal state machine.
type Phase string

// Install and removal phases in execution order.
const (
	PhasePending           Phase = "pending"
	PhaseCheckingInstalled Phase = "is_installed"
	PhaseAcquiring         Phase = "acquire"
	PhaseBuilding          Phase = "build"
	PhasePreInstall        Phase = "pre_install"
	PhaseInstalling        Phase = "install"
	PhasePostInstall       Phase = "post_install"
	PhaseCommitting        Phase = "commit"
	PhaseCleanup           Phase = "cleanup"
	PhaseDone              Phase = "done"
	PhaseFailed            Phase = "failed"

	PhaseCheckReverseDeps Phase = "check_reverse_deps"
	PhasePreRemove        Phase = "pre_remove"
	PhaseDeletingFiles    Phase = "delete_files"
	PhasePostRemove       Phase = "post_remove"
	PhaseCustomRemove     Phase = "remove"
	PhaseCommitted        Phase = "committed"

	PhaseCheckUpdate Phase = "check_update"
)

// Recipe functions the executor calls by name.
const (
	FnIsInstalled = "is_installed"
	FnAcquire     = "acquire"
	FnBuild       = "build"
	FnPreInstall  = "pre_install"
	FnInstall     = "install"
	FnPostInstall = "post_install"
	FnCleanup     = "cleanup"
	FnPreRemove   = "pre_remove"
	FnPostRemove  = "post_remove"
	FnRemove      = "remove"
	FnCheckUpdate = "check_update"
)

// RequiredFunctions must be declared by every recipe.
var RequiredFunctions = []string{FnAcquire, FnInstall}

// CheckResult is the three-valued outcome of an installed check.
type CheckResult int

const (
	// NotSatisfied means the recipe must be installed.
	NotSatisfied CheckResult = iota
	// Satisfied means the recipe is already installed and nothing runs.
	Satisfied
	// CheckFailed means the check itself errored; the install aborts.
	CheckFailed
)

func (c CheckResult) String() string {
	switch c {
	case Satisfied:
		return "satisfied"
	case CheckFailed:
		return "check failed"
	default:
		return "not satisfied"
	}
}

// ExecutionContext is the mutable state of one lifecycle invocation, shared
// between the executor and the helpers a recipe calls. It is never shared
// across recipes.
type ExecutionContext struct {
	Recipe  string
	Version string

	// BuildDir is the ephemeral per-recipe acquire and build area.
	BuildDir string
	// Prefix is the destination root visible to the script. During install
	// it points at the staging root.
	Prefix string
	// Cwd is the working directory for relative helper paths.
	Cwd string
	// LastFile is the most recently acquired file, checked by verify helpers.
	LastFile string
	// Env holds environment overrides for spawned processes.
	Env map[string]string
	// Vars carries values returned by one phase into the next.
	Vars map[string]Value
	// Produced lists files reported by file-producing helpers.
	Produced []string
	// Shell is the interpreter used for shell helpers.
	Shell string

	Stdout io.Writer
	Stderr io.Writer
}

// NewExecutionContext creates a context rooted at the given build directory and prefix.
func NewExecutionContext(recipe, version, buildDir, prefix string) *ExecutionContext {
	return &ExecutionContext{
		Recipe:   recipe,
		Version:  version,
		BuildDir: buildDir,
		Prefix:   prefix,
		Cwd:      buildDir,
		Env:      make(map[string]string),
		Vars:     make(map[string]Value),
		Shell:    "/bin/sh",
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
}

// PhaseArgument is the map handed to one-parameter phase functions.
func (c *ExecutionContext) PhaseArgument() map[string]Value {
	arg := make(map[string]Value, len(c.Vars)+4)
	maps.Copy(arg, c.Vars)
	arg["name"] = StringValue(c.Recipe)
	arg["version"] = StringValue(c.Version)
	arg["prefix"] = StringValue(c.Prefix)
	arg["build_dir"] = StringValue(c.BuildDir)
	return arg
}

// ReservedPhaseKeys are set by the executor and ignored when a phase returns a map.
var ReservedPhaseKeys = map[string]bool{"name": true, "version": true, "prefix": true, "build_dir": true}
