package domain

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
)

// Version is a recipe version string. Versions that parse as semantic
// versions (after padding missing minor/patch components) are ordered;
// anything else is an opaque string that only supports equality.
type Version struct {
	Raw       string
	canonical string
}

// ParseVersion never fails: unparseable input yields an opaque Version.
func ParseVersion(s string) Version {
	s = strings.TrimSpace(s)
	return Version{Raw: s, canonical: canonicalize(s)}
}

// IsSemantic reports whether the version supports ordering.
func (v Version) IsSemantic() bool { return v.canonical != "" }

// Compare orders two versions. ok is false when either is opaque.
func (v Version) Compare(o Version) (cmp int, ok bool) {
	if !v.IsSemantic() || !o.IsSemantic() {
		return 0, false
	}
	return semver.Compare(v.canonical, o.canonical), true
}

func (v Version) String() string { return v.Raw }

// UpgradeNeeded reports whether current supersedes installed. Semantic
// versions are ordered; otherwise any difference counts as an upgrade.
func UpgradeNeeded(installed, current string) bool {
	if installed == "" {
		return false
	}
	cmp, ok := ParseVersion(installed).Compare(ParseVersion(current))
	if ok {
		return cmp < 0
	}
	return installed != current
}

// canonicalize returns the x/mod/semver form of s ("vMAJOR.MINOR.PATCH[-pre]"),
// or "" if s is not a semantic version.
func canonicalize(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	if s == "" {
		return ""
	}
	core, suffix := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core, suffix = s[:i], s[i:]
	}
	switch strings.Count(core, ".") {
	case 0:
		core += ".0.0"
	case 1:
		core += ".0"
	}
	c := "v" + core + suffix
	if !semver.IsValid(c) {
		return ""
	}
	return semver.Canonical(c)
}

// Operator is a constraint comparison operator.
type Operator string

// Supported constraint operators. "==" parses as OpExact and a bare version
// as OpCaret.
const (
	OpExact     Operator = "="
	OpGreater   Operator = ">"
	OpGreaterEq Operator = ">="
	OpLess      Operator = "<"
	OpLessEq    Operator = "<="
	OpCaret     Operator = "^"
	OpTilde     Operator = "~"
)

// operators is ordered so that two-character operators match first.
var operators = []string{">=", "<=", "==", ">", "<", "=", "^", "~"}

// Comparator is one (operator, version) pair of a constraint.
type Comparator struct {
	Op      Operator
	Operand string

	// parts is the number of numeric components written in Operand (1-3);
	// zero marks an opaque operand, valid only with OpExact.
	parts               int
	major, minor, patch int
	pre                 string
}

// Constraint is a conjunction of comparators. The zero Constraint matches
// any version.
type Constraint struct {
	Raw         string
	Comparators []Comparator
}

// ParseConstraint parses a comma-separated list of comparators, e.g.
// ">= 1.2, < 2". A bare version means caret compatibility, "*" means any.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	c := Constraint{Raw: s}
	if s == "" || s == "*" {
		return c, nil
	}
	for part := range strings.SplitSeq(s, ",") {
		cmp, err := parseComparator(strings.TrimSpace(part))
		if err != nil {
			return Constraint{}, zerr.With(err, "constraint", s)
		}
		c.Comparators = append(c.Comparators, cmp)
	}
	return c, nil
}

func parseComparator(s string) (Comparator, error) {
	if s == "" {
		return Comparator{}, zerr.Wrap(ErrInvalidConstraint, "empty comparator")
	}
	op := ""
	for _, candidate := range operators {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			break
		}
	}
	operand := strings.TrimSpace(s[len(op):])
	if operand == "" {
		return Comparator{}, zerr.Wrap(ErrInvalidConstraint, "missing version after "+op)
	}
	switch op {
	case "":
		op = string(OpCaret)
	case "==":
		op = string(OpExact)
	}
	cmp := Comparator{Op: Operator(op), Operand: operand}
	if err := cmp.parseOperand(); err != nil {
		if cmp.Op != OpExact {
			return Comparator{}, zerr.Wrap(ErrInvalidConstraint,
				fmt.Sprintf("operator %s needs a semantic version, got %q", cmp.Op, operand))
		}
		cmp.parts = 0
	}
	return cmp, nil
}

func (c *Comparator) parseOperand() error {
	s := strings.TrimPrefix(strings.TrimPrefix(c.Operand, "v"), "V")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		c.pre = s[i+1:]
		s = s[:i]
	}
	fields := strings.Split(s, ".")
	if len(fields) > 3 {
		return ErrInvalidConstraint
	}
	nums := [3]int{}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return ErrInvalidConstraint
		}
		nums[i] = n
	}
	if c.pre != "" && len(fields) != 3 {
		return ErrInvalidConstraint
	}
	c.parts = len(fields)
	c.major, c.minor, c.patch = nums[0], nums[1], nums[2]
	return nil
}

// IsAny reports whether the constraint accepts every version.
func (c Constraint) IsAny() bool { return len(c.Comparators) == 0 }

func (c Constraint) String() string {
	if c.IsAny() {
		return "*"
	}
	return c.Raw
}

// Satisfied reports whether version meets every comparator. Ordered
// comparators never match an opaque version.
func (c Constraint) Satisfied(version string) bool {
	v := ParseVersion(version)
	for _, cmp := range c.Comparators {
		if !cmp.matches(v) {
			return false
		}
	}
	return true
}

func (c Comparator) matches(v Version) bool {
	if c.parts == 0 {
		return v.Raw == c.Operand
	}
	if !v.IsSemantic() {
		return false
	}
	lower, upper := c.bounds()
	if lower != "" {
		cmp := semver.Compare(v.canonical, lower)
		if cmp < 0 || (cmp == 0 && c.Op == OpGreater && c.parts == 3) {
			return false
		}
	}
	if upper != "" {
		cmp := semver.Compare(v.canonical, upper)
		if cmp > 0 || (cmp == 0 && c.upperExclusive()) {
			return false
		}
	}
	return true
}

// bounds returns the lower and upper limits in canonical form; "" means unbounded.
//
//nolint:cyclop // one case per operator
func (c Comparator) bounds() (lower, upper string) {
	at := c.ver(c.major, c.minor, c.patch, c.pre)
	nextMajor := c.ver(c.major+1, 0, 0, "")
	nextMinor := c.ver(c.major, c.minor+1, 0, "")
	switch c.Op {
	case OpExact:
		switch c.parts {
		case 1:
			return at, nextMajor
		case 2:
			return at, nextMinor
		default:
			return at, at
		}
	case OpGreater:
		switch c.parts {
		case 1:
			return nextMajor, ""
		case 2:
			return nextMinor, ""
		default:
			return at, ""
		}
	case OpGreaterEq:
		return at, ""
	case OpLess:
		return "", at
	case OpLessEq:
		switch c.parts {
		case 1:
			return "", nextMajor
		case 2:
			return "", nextMinor
		default:
			return "", at
		}
	case OpTilde:
		if c.parts == 1 {
			return at, nextMajor
		}
		return at, nextMinor
	case OpCaret:
		switch {
		case c.major > 0 || c.parts == 1:
			return at, nextMajor
		case c.minor > 0 || c.parts == 2:
			return at, nextMinor
		default:
			return at, c.ver(0, 0, c.patch+1, "")
		}
	}
	return "", ""
}

// upperExclusive reports whether the upper bound itself is excluded.
func (c Comparator) upperExclusive() bool {
	switch c.Op {
	case OpLess, OpTilde, OpCaret:
		return true
	case OpExact, OpLessEq:
		return c.parts < 3
	default:
		return false
	}
}

func (c Comparator) ver(major, minor, patch int, pre string) string {
	s := fmt.Sprintf("v%d.%d.%d", major, minor, patch)
	if pre != "" {
		s += "-" + pre
	}
	return s
}

func (c Comparator) String() string {
	return string(c.Op) + c.Operand
}

// DependencySpec is a dependency name with an optional version constraint,
// e.g. "openssl >= 3.0, < 4".
type DependencySpec struct {
	Name       string
	Constraint Constraint
}

// ParseDependencySpec splits a dependency string into name and constraint.
// The name runs up to the first character that is not alphanumeric, '-' or '_'.
func ParseDependencySpec(s string) (DependencySpec, error) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool {
		return !isNameRune(r)
	})
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return DependencySpec{}, zerr.With(zerr.Wrap(ErrInvalidDependency, "empty package name"), "spec", s)
	}
	c, err := ParseConstraint(s[end:])
	if err != nil {
		return DependencySpec{}, zerr.With(err, "dependency", s[:end])
	}
	return DependencySpec{Name: s[:end], Constraint: c}, nil
}

func isNameRune(r rune) bool {
	return r == '-' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (d DependencySpec) String() string {
	if d.Constraint.IsAny() {
		return d.Name
	}
	return d.Name + " " + d.Constraint.Raw
}
