package command

import (
	"bytes"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell based tests need a POSIX sh")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestExecRunner_Success(t *testing.T) {
	sh := requireShell(t)
	ctx := slogtest.Context(t)

	var out bytes.Buffer
	r := &ExecRunner{Stdout: &out, Stderr: &out}

	res, err := r.Run(ctx, Cmd{Name: sh, Args: []string{"-c", "echo hello"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Output)
	assert.Equal(t, "hello\n", out.String())
}

func TestExecRunner_QuietDiscardsOutput(t *testing.T) {
	sh := requireShell(t)
	ctx := slogtest.Context(t)

	var out bytes.Buffer
	r := &ExecRunner{Stdout: &out, Stderr: &out}

	res, err := r.Run(ctx, Cmd{Name: sh, Args: []string{"-c", "echo noisy; echo louder >&2"}, Quiet: true})
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, res.Output, "noisy")
	assert.Contains(t, res.Output, "louder")
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	sh := requireShell(t)
	ctx := slogtest.Context(t)

	r := &ExecRunner{}
	res, err := r.Run(ctx, Cmd{Name: sh, Args: []string{"-c", "exit 3"}})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunner_NotFound(t *testing.T) {
	ctx := slogtest.Context(t)

	r := &ExecRunner{}
	_, err := r.Run(ctx, Cmd{Name: "setupenv-definitely-not-a-binary", Args: []string{"--version"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecRunner_Dir(t *testing.T) {
	sh := requireShell(t)
	ctx := slogtest.Context(t)
	dir := t.TempDir()

	r := &ExecRunner{}
	res, err := r.Run(ctx, Cmd{Name: sh, Args: []string{"-c", "pwd -P"}, Dir: dir, Quiet: true})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Output)
}

func TestCmdString(t *testing.T) {
	c := Cmd{Name: "pip", Args: []string{"install", "-e", "."}}
	assert.Equal(t, "pip install -e .", c.String())
}
