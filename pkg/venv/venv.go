// Package venv provisions and activates a Python virtual environment.
//
// Creation is delegated to `python -m venv`. Activation is done in-process:
// the same variables the activation scripts export are set on an Env, so
// later pip invocations resolve to the environment's binaries.
package venv

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/afero"

	"github.com/fastfind/setupenv/pkg/command"
)

// DefaultDir is the environment directory name used when none is configured.
const DefaultDir = "venv"

// Layout describes where a virtual environment's pieces live.
type Layout struct {
	// Dir is the environment directory.
	Dir string

	// GOOS selects the Windows or POSIX layout.
	GOOS string
}

func (l Layout) windows() bool {
	return l.GOOS == "windows"
}

func (l Layout) binName() string {
	if l.windows() {
		return "Scripts"
	}
	return "bin"
}

// BinDir is the directory holding the environment's executables.
func (l Layout) BinDir() string {
	return filepath.Join(l.Dir, l.binName())
}

// ActivateScript is the script a user would source to activate by hand.
func (l Layout) ActivateScript() string {
	if l.windows() {
		return filepath.Join(l.BinDir(), "Activate.ps1")
	}
	return filepath.Join(l.BinDir(), "activate")
}

// Python is the environment's interpreter.
func (l Layout) Python() string {
	if l.windows() {
		return filepath.Join(l.BinDir(), "python.exe")
	}
	return filepath.Join(l.BinDir(), "python")
}

// Exists reports whether the environment directory is already there.
func (l Layout) Exists(fsys afero.Fs) (bool, error) {
	ok, err := afero.DirExists(fsys, l.Dir)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", l.Dir, err)
	}
	return ok, nil
}

// Create runs `<python> -m venv <dir>`.
func (l Layout) Create(ctx context.Context, runner command.Runner, python string) error {
	clog.FromContext(ctx).Infof("creating virtual environment in %s", l.Dir)

	if _, err := runner.Run(ctx, command.Cmd{
		Name: python,
		Args: []string{"-m", "venv", l.Dir},
	}); err != nil {
		return fmt.Errorf("creating virtual environment: %w", err)
	}
	return nil
}

// ManualInstructions are the commands a user can run to activate the
// environment themselves.
func (l Layout) ManualInstructions() []string {
	if l.windows() {
		return []string{
			l.ActivateScript(),
			"# if script execution is disabled, allow it for the current user first:",
			"Set-ExecutionPolicy -Scope CurrentUser -ExecutionPolicy RemoteSigned",
			"# from cmd.exe use instead:",
			filepath.Join(l.BinDir(), "activate.bat"),
		}
	}
	return []string{"source " + l.ActivateScript()}
}

// FallbackCommands are suggested when `python -m venv` fails, typically
// because the venv module is not installed.
func (l Layout) FallbackCommands(python string) []string {
	return []string{
		python + " -m pip install --user virtualenv",
		python + " -m virtualenv " + l.Dir,
	}
}
