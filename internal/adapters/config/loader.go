// Package config resolves the hob configuration from flags, environment,
// the user configuration file and XDG defaults.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader.
type Loader struct {
	// ConfigPath is the configuration file. It may not exist.
	ConfigPath string
	// Home, DataHome and CacheHome seed the defaults.
	Home      string
	DataHome  string
	CacheHome string
	// Getenv reads environment overrides.
	Getenv func(string) string
}

// NewLoader creates a Loader rooted at the XDG base directories.
func NewLoader() *Loader {
	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = filepath.Join(xdg.ConfigHome, domain.AppName, domain.ConfigFileName)
	}
	return &Loader{
		ConfigPath: path,
		Home:       xdg.Home,
		DataHome:   xdg.DataHome,
		CacheHome:  xdg.CacheHome,
		Getenv:     os.Getenv,
	}
}

// Load resolves the configuration. Precedence: overrides, environment,
// configuration file, defaults.
func (l *Loader) Load(overrides domain.ConfigOverrides) (*domain.Config, error) {
	cfg := &domain.Config{
		RecipesPath: filepath.Join(l.DataHome, domain.AppName, domain.RecipesDirName),
		Prefix:      filepath.Join(l.Home, ".local"),
		BuildDir:    filepath.Join(l.CacheHome, domain.AppName, domain.BuildDirName),
		LockTimeout: domain.DefaultLockTimeout,
		Shell:       domain.DefaultShell,
	}

	if err := l.applyFile(cfg); err != nil {
		return nil, err
	}

	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	layers := []domain.ConfigOverrides{
		{RecipesPath: getenv(EnvRecipesPath), Prefix: getenv(EnvPrefix), BuildDir: getenv(EnvBuildDir)},
		overrides,
	}
	for _, layer := range layers {
		if err := l.applyOverrides(cfg, layer); err != nil {
			return nil, err
		}
	}

	return cfg, validate(cfg)
}

func (l *Loader) applyFile(cfg *domain.Config) error {
	data, err := os.ReadFile(l.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", l.ConfigPath)
	}

	var file Hobfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", l.ConfigPath)
	}

	paths := []struct {
		key string
		val string
		dst *string
	}{
		{"recipes_path", file.RecipesPath, &cfg.RecipesPath},
		{"prefix", file.Prefix, &cfg.Prefix},
		{"build_dir", file.BuildDir, &cfg.BuildDir},
		{"staging_dir", file.StagingDir, &cfg.StagingDir},
	}
	for _, p := range paths {
		if p.val == "" {
			continue
		}
		expanded := l.expandHome(p.val)
		if !filepath.IsAbs(expanded) {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "path must be absolute"),
				"key", p.key), "value", p.val)
		}
		*p.dst = filepath.Clean(expanded)
	}

	if file.LockTimeout != "" {
		d, err := time.ParseDuration(file.LockTimeout)
		if err != nil {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigInvalid, err.Error()),
				"key", "lock_timeout"), "value", file.LockTimeout)
		}
		cfg.LockTimeout = d
	}
	if file.Shell != "" {
		cfg.Shell = file.Shell
	}
	return nil
}

func (l *Loader) applyOverrides(cfg *domain.Config, o domain.ConfigOverrides) error {
	for _, p := range []struct {
		val string
		dst *string
	}{
		{o.RecipesPath, &cfg.RecipesPath},
		{o.Prefix, &cfg.Prefix},
		{o.BuildDir, &cfg.BuildDir},
	} {
		if p.val == "" {
			continue
		}
		abs, err := filepath.Abs(l.expandHome(p.val))
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", p.val)
		}
		*p.dst = abs
	}
	return nil
}

func (l *Loader) expandHome(path string) string {
	if path == "~" {
		return l.Home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.Home, path[2:])
	}
	return path
}

func validate(cfg *domain.Config) error {
	if cfg.LockTimeout <= 0 {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "lock timeout must be positive"),
			"lock_timeout", cfg.LockTimeout.String())
	}
	if cfg.Prefix == cfg.RecipesPath {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "prefix and recipes path must differ"),
			"path", cfg.Prefix)
	}
	if cfg.Shell == "" {
		return zerr.Wrap(domain.ErrConfigInvalid, "shell must not be empty")
	}
	return nil
}
