package venv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Env is the environment activation mutates.
type Env interface {
	Getenv(key string) string
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// ProcessEnv is the current process' environment.
type ProcessEnv struct{}

var _ Env = ProcessEnv{}

func (ProcessEnv) Getenv(key string) string { return os.Getenv(key) }

func (ProcessEnv) Setenv(key, value string) error { return os.Setenv(key, value) }

func (ProcessEnv) Unsetenv(key string) error { return os.Unsetenv(key) }

// MapEnv is an in-memory Env.
type MapEnv map[string]string

var _ Env = MapEnv{}

func (m MapEnv) Getenv(key string) string { return m[key] }

func (m MapEnv) Setenv(key, value string) error {
	m[key] = value
	return nil
}

func (m MapEnv) Unsetenv(key string) error {
	delete(m, key)
	return nil
}

// ActivationError reports an environment that could not be activated.
type ActivationError struct {
	Layout Layout
	Err    error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activating %s: %v", e.Layout.Dir, e.Err)
}

func (e *ActivationError) Unwrap() error {
	return e.Err
}

// Activate points env at the environment: VIRTUAL_ENV is set, the bin
// directory is put first on PATH and PYTHONHOME is cleared.
func (l Layout) Activate(fsys afero.Fs, env Env) error {
	for _, p := range []string{l.ActivateScript(), l.BinDir()} {
		ok, err := afero.Exists(fsys, p)
		if err != nil {
			return &ActivationError{Layout: l, Err: err}
		}
		if !ok {
			return &ActivationError{Layout: l, Err: fmt.Errorf("%s: %w", p, os.ErrNotExist)}
		}
	}

	root, err := filepath.Abs(l.Dir)
	if err != nil {
		return &ActivationError{Layout: l, Err: err}
	}
	bin := filepath.Join(root, l.binName())

	path := bin
	if cur := env.Getenv("PATH"); cur != "" {
		path = bin + string(os.PathListSeparator) + cur
	}

	if err := env.Setenv("VIRTUAL_ENV", root); err != nil {
		return &ActivationError{Layout: l, Err: err}
	}
	if err := env.Setenv("PATH", path); err != nil {
		return &ActivationError{Layout: l, Err: err}
	}
	if err := env.Unsetenv("PYTHONHOME"); err != nil {
		return &ActivationError{Layout: l, Err: err}
	}
	return nil
}
