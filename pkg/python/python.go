// Package python locates and identifies the Python interpreter used to
// provision the environment.
package python

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"

	"github.com/chainguard-dev/clog"
	"github.com/hashicorp/go-version"

	"github.com/fastfind/setupenv/pkg/command"
)

// versionPattern matches "Python 3.12.1" as printed by `python --version`.
// Older interpreters print it to stderr, which the runner captures too.
var versionPattern = regexp.MustCompile(`Python\s+(\d+(?:\.\d+)*(?:[a-z]+\d*)?)`)

// DefaultName is the interpreter command tried when none is configured.
func DefaultName() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// Interpreter is a Python interpreter that answered a version query.
type Interpreter struct {
	// Name is the command used to invoke it.
	Name string

	// Version is nil when the version output could not be parsed.
	Version *version.Version

	// Raw is the untouched version output.
	Raw string
}

// VersionString returns the detected version, or "unknown".
func (i *Interpreter) VersionString() string {
	if i == nil || i.Version == nil {
		return "unknown"
	}
	return i.Version.String()
}

// UnsupportedError reports an interpreter outside the required range.
type UnsupportedError struct {
	Interpreter *Interpreter
	Constraint  version.Constraints
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("python %s does not satisfy %s", e.Interpreter.VersionString(), e.Constraint)
}

// Detect runs `<name> --version`. An interpreter that cannot be started or
// exits non-zero is an error; unparsable version output is not.
func Detect(ctx context.Context, runner command.Runner, name string) (*Interpreter, error) {
	log := clog.FromContext(ctx)

	res, err := runner.Run(ctx, command.Cmd{Name: name, Args: []string{"--version"}, Quiet: true})
	if err != nil {
		if errors.Is(err, command.ErrNotFound) {
			return nil, fmt.Errorf("python interpreter %q: %w", name, err)
		}
		return nil, fmt.Errorf("querying python version: %w", err)
	}

	interp := &Interpreter{Name: name, Raw: res.Output}
	m := versionPattern.FindStringSubmatch(res.Output)
	if m == nil {
		log.Warnf("could not parse python version from %q", res.Output)
		return interp, nil
	}

	v, err := version.NewVersion(m[1])
	if err != nil {
		log.Warnf("could not parse python version %q: %v", m[1], err)
		return interp, nil
	}
	interp.Version = v

	log.Debugf("found python %s", v)
	return interp, nil
}

// Require checks the interpreter against a constraint such as ">= 3.8".
// A nil constraint accepts anything, and so does an unknown version.
func (i *Interpreter) Require(c version.Constraints) error {
	if c == nil || i.Version == nil {
		return nil
	}
	if !c.Check(i.Version) {
		return &UnsupportedError{Interpreter: i, Constraint: c}
	}
	return nil
}
