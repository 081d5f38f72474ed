// Package command runs the external tools setupenv delegates to (python, pip)
// and reports their exit status.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
)

// ErrNotFound is returned when the requested binary could not be started.
var ErrNotFound = errors.New("command not found")

// Cmd describes a single external invocation.
type Cmd struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Quiet discards the child's output instead of streaming it.
	Quiet bool
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is what a finished invocation left behind.
type Result struct {
	ExitCode int

	// Output holds the combined stdout and stderr of the child.
	Output string
}

// ExitError reports a child that ran but exited non-zero.
type ExitError struct {
	Cmd      Cmd
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Cmd.String(), e.ExitCode)
}

// Runner runs external commands. Implementations block until the child exits.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner returns a Runner streaming non-quiet output to the process'
// stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, cmd Cmd) (Result, error) {
	log := clog.FromContext(ctx).With("cmd", cmd.String())
	log.Debug("running command")

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec
	c.Dir = cmd.Dir

	var captured bytes.Buffer
	if cmd.Quiet {
		c.Stdout = &captured
		c.Stderr = &captured
	} else {
		c.Stdout = io.MultiWriter(r.stdout(), &captured)
		c.Stderr = io.MultiWriter(r.stderr(), &captured)
	}

	err := c.Run()
	res := Result{Output: captured.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		log.Debug("command succeeded")
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		log.Debugf("command exited with status %d", res.ExitCode)
		return res, &ExitError{Cmd: cmd, ExitCode: res.ExitCode}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		res.ExitCode = -1
		log.Debugf("command could not be started: %v", err)
		return res, fmt.Errorf("%s: %w", cmd.Name, ErrNotFound)
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("running %q: %w", cmd.String(), err)
	}
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout == nil {
		return io.Discard
	}
	return r.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return io.Discard
	}
	return r.Stderr
}
