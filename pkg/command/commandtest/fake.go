// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fastfind/setupenv/pkg/command"
)

// Response is the scripted reaction to a command line.
type Response struct {
	ExitCode int
	Output   string

	// NotFound simulates a binary that cannot be started.
	NotFound bool
}

// Fake is a command.Runner that answers from a table keyed by the full
// command line ("pip install pytest>=7.0"). Unknown commands succeed.
type Fake struct {
	Responses map[string]Response

	mu    sync.Mutex
	calls []command.Cmd
}

var _ command.Runner = (*Fake)(nil)

func New() *Fake {
	return &Fake{Responses: map[string]Response{}}
}

// On scripts the response for a command line.
func (f *Fake) On(line string, resp Response) *Fake {
	f.Responses[line] = resp
	return f
}

func (f *Fake) Run(_ context.Context, cmd command.Cmd) (command.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	resp, ok := f.Responses[cmd.String()]
	if !ok {
		return command.Result{}, nil
	}
	if resp.NotFound {
		return command.Result{ExitCode: -1}, fmt.Errorf("%s: %w", cmd.Name, command.ErrNotFound)
	}
	res := command.Result{ExitCode: resp.ExitCode, Output: resp.Output}
	if resp.ExitCode != 0 {
		return res, &command.ExitError{Cmd: cmd, ExitCode: resp.ExitCode}
	}
	return res, nil
}

// Calls returns every command line run so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Ran reports whether any call started with the given prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, line := range f.Calls() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Cmds returns the raw commands run so far.
func (f *Fake) Cmds() []command.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]command.Cmd(nil), f.calls...)
}
