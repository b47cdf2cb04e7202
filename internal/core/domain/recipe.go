package domain

import (
	"regexp"

	"go.trai.ch/zerr"
)

// Recipe variable names with a fixed meaning.
const (
	VarName             = "name"
	VarVersion          = "version"
	VarDescription      = "description"
	VarDeps             = "deps"
	VarBuildDeps        = "build_deps"
	VarInstalled        = "installed"
	VarInstalledVersion = "installed_version"
	VarInstalledAt      = "installed_at"
	VarInstalledFiles   = "installed_files"
	VarInstalledAsDep   = "installed_as_dep"
)

// RequiredVars must be present in every recipe.
var RequiredVars = []string{VarName, VarVersion, VarInstalled}

// DefinitionVars describe the package itself, in canonical order.
var DefinitionVars = []string{VarName, VarVersion, VarDescription, VarDeps, VarBuildDeps}

// StateVars form the persisted state block, in canonical order.
var StateVars = []string{VarInstalled, VarInstalledVersion, VarInstalledAt, VarInstalledFiles, VarInstalledAsDep}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidateName checks a recipe name against the naming pattern.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidRecipeName, "name must match "+namePattern.String()), "name", name)
	}
	return nil
}

// State is the installation state persisted inside a recipe file.
type State struct {
	Installed        bool
	InstalledVersion string
	InstalledAt      int64
	InstalledFiles   []string
	InstalledAsDep   bool
}

// Cleared returns the state of a recipe that is not installed.
func Cleared() State {
	return State{InstalledFiles: []string{}}
}

// Bindings renders the state as recipe variable updates.
func (s State) Bindings() map[string]Value {
	files := s.InstalledFiles
	if files == nil {
		files = []string{}
	}
	return map[string]Value{
		VarInstalled:        BoolValue(s.Installed),
		VarInstalledVersion: OptionalStringValue(s.InstalledVersion),
		VarInstalledAt:      IntValue(s.InstalledAt),
		VarInstalledFiles:   StringsValue(files),
		VarInstalledAsDep:   BoolValue(s.InstalledAsDep),
	}
}

// Recipe is the declared content of one recipe file.
type Recipe struct {
	Path        string
	Name        string
	Version     string
	Description string
	Deps        []DependencySpec
	BuildDeps   []DependencySpec
	State       State
}

// EffectiveVersion is the version that satisfies dependents: the installed
// version when the recipe is installed, otherwise the declared one.
func (r *Recipe) EffectiveVersion() string {
	if r.State.Installed && r.State.InstalledVersion != "" {
		return r.State.InstalledVersion
	}
	return r.Version
}

// AllDeps returns build dependencies followed by runtime dependencies.
func (r *Recipe) AllDeps() []DependencySpec {
	all := make([]DependencySpec, 0, len(r.BuildDeps)+len(r.Deps))
	all = append(all, r.BuildDeps...)
	return append(all, r.Deps...)
}

// DependsOn reports whether r lists name as a runtime dependency.
func (r *Recipe) DependsOn(name string) bool {
	for _, d := range r.Deps {
		if d.Name == name {
			return true
		}
	}
	return false
}

// RecipeFromBindings builds a Recipe from structurally-read bindings. Missing
// or mistyped required variables yield a *ParseError naming the variable.
//
//nolint:cyclop // one check per variable
func RecipeFromBindings(path string, vars map[string]Value) (*Recipe, error) {
	for _, name := range RequiredVars {
		if _, ok := vars[name]; !ok {
			return nil, &ParseError{Path: path, Variable: name, Reason: ErrMissingVariable}
		}
	}

	r := &Recipe{Path: path}
	var err error
	if r.Name, err = stringVar(path, vars, VarName, false); err != nil {
		return nil, err
	}
	if verr := ValidateName(r.Name); verr != nil {
		return nil, &ParseError{Path: path, Variable: VarName, Reason: verr}
	}
	if r.Version, err = stringVar(path, vars, VarVersion, false); err != nil {
		return nil, err
	}
	if r.Description, err = stringVar(path, vars, VarDescription, true); err != nil {
		return nil, err
	}
	if r.Deps, err = depsVar(path, vars, VarDeps); err != nil {
		return nil, err
	}
	if r.BuildDeps, err = depsVar(path, vars, VarBuildDeps); err != nil {
		return nil, err
	}
	if r.State.Installed, err = boolVar(path, vars, VarInstalled); err != nil {
		return nil, err
	}
	if r.State.InstalledVersion, err = stringVar(path, vars, VarInstalledVersion, true); err != nil {
		return nil, err
	}
	if r.State.InstalledAsDep, err = boolVar(path, vars, VarInstalledAsDep); err != nil {
		return nil, err
	}
	if v, ok := vars[VarInstalledAt]; ok {
		switch v.Kind {
		case ValueInteger:
			r.State.InstalledAt = v.Int
		case ValueUnit:
		default:
			return nil, malformed(path, VarInstalledAt, "integer", v)
		}
	}
	r.State.InstalledFiles = []string{}
	if v, ok := vars[VarInstalledFiles]; ok {
		files, isList := v.AsStrings()
		if !isList {
			return nil, malformed(path, VarInstalledFiles, "array of strings", v)
		}
		r.State.InstalledFiles = files
	}
	return r, nil
}

func stringVar(path string, vars map[string]Value, name string, optional bool) (string, error) {
	v, ok := vars[name]
	if !ok || (optional && v.IsUnit()) {
		return "", nil
	}
	if v.Kind != ValueString {
		return "", malformed(path, name, "string", v)
	}
	return v.Str, nil
}

func boolVar(path string, vars map[string]Value, name string) (bool, error) {
	v, ok := vars[name]
	if !ok {
		return false, nil
	}
	if v.Kind != ValueBool {
		return false, malformed(path, name, "bool", v)
	}
	return v.Bool, nil
}

func depsVar(path string, vars map[string]Value, name string) ([]DependencySpec, error) {
	v, ok := vars[name]
	if !ok || v.IsUnit() {
		return nil, nil
	}
	items, isList := v.AsStrings()
	if !isList {
		return nil, malformed(path, name, "array of strings", v)
	}
	specs := make([]DependencySpec, 0, len(items))
	for _, item := range items {
		spec, err := ParseDependencySpec(item)
		if err != nil {
			return nil, &ParseError{Path: path, Variable: name, Reason: err}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func malformed(path, name, want string, got Value) error {
	return &ParseError{
		Path:     path,
		Variable: name,
		Reason:   zerr.With(zerr.Wrap(ErrMalformedValue, "expected "+want+", got "+got.Kind.String()), "value", got.Literal()),
	}
}
