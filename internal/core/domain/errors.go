package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrInvalidRecipeName is returned when a recipe name does not match the naming pattern.
	ErrInvalidRecipeName = zerr.New("invalid recipe name")

	// ErrRecipeNotFound is returned when no recipe with the requested name exists in the recipes path.
	ErrRecipeNotFound = zerr.New("recipe not found")

	// ErrDuplicateRecipe is returned when two recipe files declare the same name.
	ErrDuplicateRecipe = zerr.New("duplicate recipe name")

	// ErrMissingVariable is returned when a required recipe variable is absent.
	ErrMissingVariable = zerr.New("missing required variable")

	// ErrMalformedValue is returned when a recipe variable holds a value of the wrong type.
	ErrMalformedValue = zerr.New("malformed variable value")

	// ErrMissingFunction is returned when a recipe lacks a required phase function.
	ErrMissingFunction = zerr.New("missing required function")

	// ErrInvalidDependency is returned when a dependency specification cannot be parsed.
	ErrInvalidDependency = zerr.New("invalid dependency specification")

	// ErrInvalidConstraint is returned when a version constraint cannot be parsed.
	ErrInvalidConstraint = zerr.New("invalid version constraint")

	// ErrCycleDetected is returned when a cycle is detected in the recipe dependency graph.
	ErrCycleDetected = zerr.New("dependency cycle detected")

	// ErrMissingDependency is returned when a recipe references a dependency that doesn't exist.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrConstraintViolation is returned when a resolved version does not satisfy a declared constraint.
	ErrConstraintViolation = zerr.New("version constraint not satisfied")

	// ErrHasDependents is returned when removing a recipe that installed recipes still depend on.
	ErrHasDependents = zerr.New("recipe is required by installed recipes")

	// ErrNotInstalled is returned when an operation requires an installed recipe.
	ErrNotInstalled = zerr.New("recipe is not installed")

	// ErrCheckFailed is returned when an is_installed check raised an error or returned a non-boolean.
	ErrCheckFailed = zerr.New("installed check failed")

	// ErrPhaseFailed is returned when a lifecycle phase or hook fails.
	ErrPhaseFailed = zerr.New("lifecycle phase failed")

	// ErrCommitFailed is returned when staged files could not be committed into the destination tree.
	ErrCommitFailed = zerr.New("commit failed")

	// ErrRemoveIncomplete is returned when some installed files could not be deleted.
	ErrRemoveIncomplete = zerr.New("removal incomplete")

	// ErrRecipeLocked is returned when another process holds the advisory lock on a recipe.
	ErrRecipeLocked = zerr.New("recipe is locked by another process")

	// ErrLockfileNotFound is returned when the lockfile does not exist.
	ErrLockfileNotFound = zerr.New("lockfile not found")

	// ErrLockfileMismatch is returned when current recipe versions differ from the lockfile.
	ErrLockfileMismatch = zerr.New("lockfile mismatch")

	// ErrLockfileInvalid is returned when the lockfile cannot be decoded.
	ErrLockfileInvalid = zerr.New("invalid lockfile")

	// ErrNoUpdateCheck is returned when a recipe declares no check_update function.
	ErrNoUpdateCheck = zerr.New("recipe has no check_update function")

	// ErrScriptFailed is returned when a recipe function raises an error.
	ErrScriptFailed = zerr.New("script error")

	// ErrScriptSyntax is returned when a recipe cannot be parsed by the script engine.
	ErrScriptSyntax = zerr.New("script syntax error")

	// ErrUnsupportedValue is returned when a script value has no recipe value equivalent.
	ErrUnsupportedValue = zerr.New("unsupported value type")

	// ErrChecksumMismatch is returned when a downloaded file does not match its expected hash.
	ErrChecksumMismatch = zerr.New("checksum mismatch")

	// ErrNetwork is returned when a download or remote fetch fails.
	ErrNetwork = zerr.New("network error")

	// ErrUsage is returned for invalid command-line usage.
	ErrUsage = zerr.New("invalid usage")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when a configuration value is invalid.
	ErrConfigInvalid = zerr.New("invalid configuration")
)

// ParseError reports a recipe that could not be read structurally.
type ParseError struct {
	Path     string
	Variable string
	Reason   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	b.WriteString(e.Path)
	if e.Variable != "" {
		b.WriteString(": variable ")
		b.WriteString(e.Variable)
	}
	if e.Reason != nil {
		b.WriteString(": ")
		b.WriteString(e.Reason.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Reason }

// CycleError reports a dependency cycle. Path runs from the resolution target
// to the repeated node; Cycle is the closed sub-chain starting and ending at it.
type CycleError struct {
	Path  []string
	Cycle []string
}

func (e *CycleError) Error() string {
	msg := "dependency cycle: " + strings.Join(e.Cycle, " -> ")
	if len(e.Path) > len(e.Cycle) {
		msg += " (via " + strings.Join(e.Path[:len(e.Path)-len(e.Cycle)+1], " -> ") + ")"
	}
	return msg
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// MissingDependencyError reports a dependency with no matching recipe.
type MissingDependencyError struct {
	Name        string
	RequestedBy string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency %q required by %q", e.Name, e.RequestedBy)
}

func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// ConstraintViolation names the exact dependency relation that is not satisfied.
type ConstraintViolation struct {
	Dependent  string
	Dependency string
	Constraint string
	Found      string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s requires %s %s, found %s", e.Dependent, e.Dependency, e.Constraint, e.Found)
}

func (e *ConstraintViolation) Unwrap() error { return ErrConstraintViolation }

// DependentsError is returned when a removal is blocked by installed dependents.
type DependentsError struct {
	Recipe     string
	Dependents []string
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("%s is required by: %s (use --force to remove anyway)",
		e.Recipe, strings.Join(e.Dependents, ", "))
}

func (e *DependentsError) Unwrap() error { return ErrHasDependents }

// PhaseError wraps a failure raised by one lifecycle phase of one recipe.
type PhaseError struct {
	Recipe string
	Phase  Phase
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Recipe, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() []error { return []error{ErrPhaseFailed, e.Err} }

// CommitError reports a commit that stopped partway. Committed lists the files
// that already reached the destination tree.
type CommitError struct {
	Committed []string
	Failed    string
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit stopped at %s after %d file(s): %v", e.Failed, len(e.Committed), e.Err)
}

func (e *CommitError) Unwrap() []error { return []error{ErrCommitFailed, e.Err} }

// RemoveError lists installed files that could not be deleted.
type RemoveError struct {
	Recipe    string
	Remaining []string
}

func (e *RemoveError) Error() string {
	return fmt.Sprintf("%s: %d file(s) could not be removed", e.Recipe, len(e.Remaining))
}

func (e *RemoveError) Unwrap() error { return ErrRemoveIncomplete }

// ScriptError is a failure raised by a recipe function, either through
// throw or a runtime error.
type ScriptError struct {
	Function string
	Message  string
	Line     int
	Err      error
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Function, e.Line, e.Message)
	}
	return e.Function + ": " + e.Message
}

func (e *ScriptError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrScriptFailed, e.Err}
	}
	return []error{ErrScriptFailed}
}

// LockMismatchError carries every mismatch found by a locked install.
type LockMismatchError struct {
	Mismatches []Mismatch
}

func (e *LockMismatchError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, m.String())
	}
	return "lockfile mismatch: " + strings.Join(parts, "; ")
}

func (e *LockMismatchError) Unwrap() error { return ErrLockfileMismatch }

// Kind classifies errors for reporting and exit codes.
type Kind int

const (
	// KindInternal is an implementation defect.
	KindInternal Kind = iota
	// KindUser is a bad argument or package name.
	KindUser
	// KindNotFound is a missing recipe or file.
	KindNotFound
	// KindRecipe is a malformed recipe.
	KindRecipe
	// KindDependency is an invalid install plan.
	KindDependency
	// KindPhase is a failed lifecycle phase.
	KindPhase
	// KindCommit is a partially applied commit.
	KindCommit
	// KindNetwork is a failed download.
	KindNetwork
	// KindPermission is a denied filesystem operation.
	KindPermission
)

// KindOf maps an error to its taxonomy kind.
//
//nolint:cyclop // flat classification table
func KindOf(err error) Kind {
	var (
		netErr   net.Error
		parseErr *ParseError
	)
	switch {
	case errors.As(err, &parseErr):
		return KindRecipe
	case errors.Is(err, ErrUsage), errors.Is(err, ErrInvalidRecipeName):
		return KindUser
	case errors.Is(err, ErrRecipeNotFound), errors.Is(err, ErrNotInstalled), errors.Is(err, ErrLockfileNotFound):
		return KindNotFound
	case errors.Is(err, ErrCycleDetected), errors.Is(err, ErrMissingDependency),
		errors.Is(err, ErrConstraintViolation), errors.Is(err, ErrHasDependents),
		errors.Is(err, ErrLockfileMismatch):
		return KindDependency
	case errors.Is(err, ErrNetwork), errors.As(err, &netErr):
		return KindNetwork
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, ErrCommitFailed), errors.Is(err, ErrRemoveIncomplete):
		return KindCommit
	case errors.Is(err, ErrPhaseFailed), errors.Is(err, ErrCheckFailed):
		return KindPhase
	case isRecipeError(err):
		return KindRecipe
	default:
		return KindInternal
	}
}

func isRecipeError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrMissingVariable) ||
		errors.Is(err, ErrMalformedValue) ||
		errors.Is(err, ErrMissingFunction) ||
		errors.Is(err, ErrInvalidDependency) ||
		errors.Is(err, ErrInvalidConstraint) ||
		errors.Is(err, ErrDuplicateRecipe) ||
		errors.Is(err, ErrScriptSyntax)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindUser:
		return 2
	case KindNotFound:
		return 3
	case KindDependency:
		return 4
	case KindNetwork:
		return 5
	case KindPermission:
		return 6
	default:
		return 1
	}
}
