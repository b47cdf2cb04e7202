package domain

import (
	"fmt"
	"slices"
	"time"
)

const (
	// MissingMarker stands in for the current version of a locked recipe that no longer exists.
	MissingMarker = "(missing)"
	// UnlockedMarker stands in for the locked version of a recipe absent from the lockfile.
	UnlockedMarker = "(unlocked)"
)

// LockMetadata describes one lockfile generation.
type LockMetadata struct {
	Generated     time.Time
	Generator     string
	GenerationID  string
	RecipesDigest string
}

// Lockfile maps package names to locked version strings.
type Lockfile struct {
	Packages map[string]string
	Metadata LockMetadata
}

// NewLockfile creates an empty lockfile.
func NewLockfile() *Lockfile {
	return &Lockfile{Packages: make(map[string]string)}
}

// Names returns the locked package names, sorted.
func (l *Lockfile) Names() []string {
	names := make([]string, 0, len(l.Packages))
	for name := range l.Packages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Mismatch is a single difference between the lockfile and the recipes.
type Mismatch struct {
	Name    string
	Locked  string
	Current string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: locked %s, current %s", m.Name, m.Locked, m.Current)
}

// Verify compares every locked package and every current recipe. Versions are
// compared as exact strings, so opaque versions lock as reliably as semantic ones.
func (l *Lockfile) Verify(current map[string]string) []Mismatch {
	names := l.Names()
	for name := range current {
		if _, locked := l.Packages[name]; !locked {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return l.VerifyOnly(current, names)
}

// VerifyOnly restricts verification to the given package names, reporting
// every mismatch in name order.
func (l *Lockfile) VerifyOnly(current map[string]string, names []string) []Mismatch {
	var out []Mismatch
	for _, name := range names {
		locked, isLocked := l.Packages[name]
		version, exists := current[name]
		switch {
		case !isLocked && !exists:
			continue
		case !isLocked:
			out = append(out, Mismatch{Name: name, Locked: UnlockedMarker, Current: version})
		case !exists:
			out = append(out, Mismatch{Name: name, Locked: locked, Current: MissingMarker})
		case locked != version:
			out = append(out, Mismatch{Name: name, Locked: locked, Current: version})
		}
	}
	return out
}
