// Package config holds the settings of a setup run: which interpreter and
// installer to use, where the environment lives, and the fixed lists of
// dependencies and required files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-version"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/fastfind/setupenv/pkg/internal/errorhelpers"
	"github.com/fastfind/setupenv/pkg/python"
	"github.com/fastfind/setupenv/pkg/requirement"
	"github.com/fastfind/setupenv/pkg/venv"
)

var errEmpty = errors.New("must not be empty")

// ProjectFileName is looked up in the project directory.
const ProjectFileName = ".setupenv.yaml"

// xdgRelPath is the config file under the user's XDG config directory.
var xdgRelPath = filepath.Join("setupenv", "config.yaml")

// DefaultDependencies are installed, in order, after the project itself.
var DefaultDependencies = []string{
	"pytest>=7.0",
	"pytest-cov>=4.0",
	"pytest-asyncio>=0.21.0",
	"black>=23.0",
	"flake8>=6.0",
	"mypy>=1.0",
	"bandit>=1.7.0",
}

// DefaultRequiredFiles are audited at the end of a run.
var DefaultRequiredFiles = []string{
	"test_plan.py",
	"run_tests.py",
	"tests/conftest.py",
	"tests/unit/test_basic.py",
	"tests/integration/test_cli_basic.py",
}

type Config struct {
	Python string `yaml:"python"`
	Pip    string `yaml:"pip"`
	Venv   string `yaml:"venv"`

	// Project is the directory installed in editable mode. Relative paths
	// are resolved against the working directory.
	Project string `yaml:"project"`

	// RequiresPython optionally constrains the interpreter, e.g. ">= 3.8".
	RequiresPython string `yaml:"requires-python"`

	Dependencies  []string `yaml:"dependencies"`
	RequiredFiles []string `yaml:"required-files"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Python:        python.DefaultName(),
		Pip:           "pip",
		Venv:          venv.DefaultDir,
		Project:       ".",
		Dependencies:  append([]string(nil), DefaultDependencies...),
		RequiredFiles: append([]string(nil), DefaultRequiredFiles...),
	}
}

// Parse overlays the YAML document in b onto the defaults. Keys that are
// absent keep their default; lists that are present replace the default
// list entirely.
func Parse(b []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// LoadFile reads and parses the config file at path.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load finds the config to use. An explicit path must exist. Otherwise the
// project file and then the XDG config file are tried, falling back to
// Default. The returned string is the file used, empty for the defaults.
func Load(explicit, projectDir string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := LoadFile(explicit)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		return cfg, explicit, nil
	}

	candidates := []string{filepath.Join(projectDir, ProjectFileName)}
	if p, err := xdg.SearchConfigFile(xdgRelPath); err == nil {
		candidates = append(candidates, p)
	}

	for _, p := range candidates {
		cfg, err := LoadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		return cfg, p, nil
	}

	return Default(), "", nil
}

// Validate reports every problem in the config at once. Each problem is an
// errorhelpers.FieldError naming the offending key.
func (c *Config) Validate() error {
	var errs []error

	if c.Python == "" {
		errs = append(errs, errorhelpers.Field("python", errEmpty))
	}
	if c.Pip == "" {
		errs = append(errs, errorhelpers.Field("pip", errEmpty))
	}
	if c.Venv == "" {
		errs = append(errs, errorhelpers.Field("venv", errEmpty))
	}
	if c.RequiresPython != "" {
		_, err := version.NewConstraint(c.RequiresPython)
		errs = append(errs, errorhelpers.Field("requires-python", err))
	}

	errs = append(errs, lo.Map(c.Dependencies, func(s string, i int) error {
		_, err := requirement.Parse(s)
		return errorhelpers.Field(fmt.Sprintf("dependencies[%d]", i), err)
	})...)

	errs = append(errs, lo.Map(c.RequiredFiles, func(p string, i int) error {
		field := fmt.Sprintf("required-files[%d]", i)
		switch {
		case p == "":
			return errorhelpers.Field(field, errEmpty)
		case filepath.IsAbs(p):
			return errorhelpers.Field(field, fmt.Errorf("%q must be relative to the project", p))
		}
		return nil
	})...)

	return errors.Join(errs...)
}

// Specifiers parses the dependency list. Call Validate first.
func (c *Config) Specifiers() ([]requirement.Specifier, error) {
	return requirement.ParseAll(c.Dependencies)
}

// PythonConstraint parses RequiresPython; nil means unconstrained.
func (c *Config) PythonConstraint() (version.Constraints, error) {
	if c.RequiresPython == "" {
		return nil, nil
	}
	return version.NewConstraint(c.RequiresPython)
}

// VenvDir is the environment directory resolved against the project.
func (c *Config) VenvDir() string {
	if filepath.IsAbs(c.Venv) {
		return c.Venv
	}
	return filepath.Join(c.Project, c.Venv)
}
