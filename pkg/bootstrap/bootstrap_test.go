package bootstrap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastfind/setupenv/pkg/command"
	"github.com/fastfind/setupenv/pkg/command/commandtest"
	"github.com/fastfind/setupenv/pkg/requirement"
	"github.com/fastfind/setupenv/pkg/venv"
)

const (
	projectDir = "/proj"
	venvDir    = "/proj/venv"
)

var (
	dependencies = []string{
		"pytest>=7.0",
		"pytest-cov>=4.0",
		"pytest-asyncio>=0.21.0",
		"black>=23.0",
		"flake8>=6.0",
		"mypy>=1.0",
		"bandit>=1.7.0",
	}

	requiredFiles = []string{
		"test_plan.py",
		"run_tests.py",
		"tests/conftest.py",
		"tests/unit/test_basic.py",
		"tests/integration/test_cli_basic.py",
	}
)

type entry struct {
	section string
	kind    string
	msg     string
}

// recorder is a Reporter that remembers what was said in which section.
type recorder struct {
	section string
	entries []entry
}

func (r *recorder) Section(title string) { r.section = title }
func (r *recorder) Success(msg string)   { r.add("success", msg) }
func (r *recorder) Info(msg string)      { r.add("info", msg) }
func (r *recorder) Warn(msg string)      { r.add("warn", msg) }
func (r *recorder) Fail(msg string)      { r.add("fail", msg) }

func (r *recorder) Detail(lines ...string) {
	for _, l := range lines {
		r.add("detail", l)
	}
}

func (r *recorder) add(kind, msg string) {
	r.entries = append(r.entries, entry{section: r.section, kind: kind, msg: msg})
}

func (r *recorder) messages(section, kind string) []string {
	var out []string
	for _, e := range r.entries {
		if e.section == section && e.kind == kind {
			out = append(out, e.msg)
		}
	}
	return out
}

// all returns every message of a kind, whatever the section.
func (r *recorder) all(kind string) []string {
	var out []string
	for _, e := range r.entries {
		if e.kind == kind {
			out = append(out, e.msg)
		}
	}
	return out
}

func (r *recorder) text() string {
	var sb strings.Builder
	for _, e := range r.entries {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", e.section, e.kind, e.msg)
	}
	return sb.String()
}

type fixture struct {
	fake *commandtest.Fake
	fs   afero.Fs
	env  venv.MapEnv
	rec  *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		fake: commandtest.New().On("python --version", commandtest.Response{Output: "Python 3.11.6\n"}),
		fs:   afero.NewMemMapFs(),
		env:  venv.MapEnv{"PATH": "/usr/bin"},
		rec:  &recorder{},
	}
}

// withVenv lays out an existing, activatable environment.
func (f *fixture) withVenv(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, f.fs.MkdirAll(filepath.Join(venvDir, "bin"), 0o755))
	require.NoError(t, afero.WriteFile(f.fs, filepath.Join(venvDir, "bin", "activate"), []byte("# activate"), 0o644))
	return f
}

func (f *fixture) withFiles(t *testing.T, paths ...string) *fixture {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(f.fs, filepath.Join(projectDir, p), nil, 0o644))
	}
	return f
}

func (f *fixture) bootstrapper(t *testing.T, opts ...Option) *Bootstrapper {
	t.Helper()

	specs, err := requirement.ParseAll(dependencies)
	require.NoError(t, err)

	return New(append([]Option{
		WithPython("python"),
		WithPip("pip"),
		WithProjectDir(projectDir),
		WithVenvDir(venvDir),
		WithDependencies(specs),
		WithRequiredFiles(requiredFiles),
		WithGOOS("linux"),
		WithRunner(f.fake),
		WithFs(f.fs),
		WithEnv(f.env),
		WithReporter(f.rec),
	}, opts...)...)
}

func requireFatal(t *testing.T, err error, step string) {
	t.Helper()
	var fatal *FatalError
	require.True(t, errors.As(err, &fatal), "expected a FatalError, got %v", err)
	assert.Equal(t, step, fatal.Step)
}

func TestRun_HappyPath(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t).withFiles(t, requiredFiles...)

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err, f.rec.text())

	for _, s := range report.Steps {
		assert.Equal(t, Success, s.Outcome, "step %s", s.Name)
	}
	assert.Len(t, report.Steps, 6)
	assert.Zero(t, report.Warnings())
	assert.True(t, report.Activated)
	assert.Equal(t, "3.11.6", report.Interpreter.VersionString())

	want := []string{"python --version", "pip install -e ."}
	for _, d := range dependencies {
		want = append(want, "pip install "+d)
	}
	if diff := cmp.Diff(want, f.fake.Calls()); diff != "" {
		t.Errorf("Run() calls mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, venvDir, f.env["VIRTUAL_ENV"])
	assert.True(t, strings.HasPrefix(f.env["PATH"], filepath.Join(venvDir, "bin")))
	assert.Empty(t, f.rec.all("warn"))
}

func TestRun_NextStepsActivateFirst(t *testing.T) {
	for _, tt := range []struct {
		name      string
		activated bool
	}{
		{name: "activated during setup", activated: true},
		{name: "activation failed", activated: false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ctx := slogtest.Context(t)
			f := newFixture(t).withFiles(t, requiredFiles...)
			if tt.activated {
				f.withVenv(t)
			}

			report, err := f.bootstrapper(t).Run(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.activated, report.Activated)

			// Setup's activation ends with the process, so the user's shell
			// always needs it.
			want := []string{
				"source " + filepath.Join(venvDir, "bin", "activate"),
				"python run_tests.py",
				"pytest tests/",
			}
			if diff := cmp.Diff(want, f.rec.messages("Next steps", "detail")); diff != "" {
				t.Errorf("next steps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_CommandShapes(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t).withFiles(t, requiredFiles...)

	_, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err)

	for _, c := range f.fake.Cmds() {
		switch {
		case c.String() == "pip install -e .":
			assert.False(t, c.Quiet, "project install output should be shown")
			assert.Equal(t, projectDir, c.Dir)
		case strings.HasPrefix(c.String(), "pip install "):
			assert.True(t, c.Quiet, "dependency install output should be suppressed")
			assert.Equal(t, projectDir, c.Dir)
		}
	}

	// Verbose runs stream dependency output.
	f = newFixture(t).withVenv(t).withFiles(t, requiredFiles...)
	_, err = f.bootstrapper(t, WithVerbose(true)).Run(ctx)
	require.NoError(t, err)
	for _, c := range f.fake.Cmds() {
		assert.False(t, c.Quiet, c.String())
	}
}

func TestRun_InterpreterMissing(t *testing.T) {
	for _, resp := range []commandtest.Response{
		{ExitCode: 1},
		{NotFound: true},
	} {
		t.Run(fmt.Sprintf("%+v", resp), func(t *testing.T) {
			ctx := slogtest.Context(t)
			f := newFixture(t).withVenv(t)
			f.fake.On("python --version", resp)

			report, err := f.bootstrapper(t).Run(ctx)
			requireFatal(t, err, StepInterpreter)

			assert.Equal(t, []string{"python --version"}, f.fake.Calls(), "no further step may run")
			assert.Len(t, report.Steps, 1)
			assert.NotEmpty(t, f.rec.messages("Checking Python interpreter", "fail"))
			assert.Empty(t, f.rec.messages("Summary", "info"))
		})
	}
}

func TestRun_InterpreterTooOld(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t)
	f.fake.On("python --version", commandtest.Response{Output: "Python 3.6.15\n"})

	c, err := version.NewConstraint(">= 3.8")
	require.NoError(t, err)

	_, err = f.bootstrapper(t, WithPythonConstraint(c)).Run(ctx)
	requireFatal(t, err, StepInterpreter)
	assert.Equal(t, []string{"python --version"}, f.fake.Calls())
}

func TestRun_ExistingEnvironmentIsReused(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t).withFiles(t, requiredFiles...)

	_, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err)

	assert.False(t, f.fake.Ran("python -m venv"), "creation must be skipped")
	assert.Len(t, f.rec.messages("Preparing virtual environment", "info"), 1)
}

func TestRun_EnvironmentCreated(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withFiles(t, requiredFiles...)

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err)

	assert.True(t, f.fake.Ran("python -m venv "+venvDir))
	res, ok := report.Step(StepEnvironment)
	require.True(t, ok)
	assert.Equal(t, Success, res.Outcome)
}

func TestRun_EnvironmentCreationFails(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t)
	f.fake.On("python -m venv "+venvDir, commandtest.Response{ExitCode: 1})

	_, err := f.bootstrapper(t).Run(ctx)
	requireFatal(t, err, StepEnvironment)

	var exitErr *command.ExitError
	assert.True(t, errors.As(err, &exitErr))

	details := f.rec.messages("Preparing virtual environment", "detail")
	assert.Contains(t, details, "python -m virtualenv "+venvDir, "a fallback command must be suggested")
	assert.False(t, f.fake.Ran("pip"), "nothing may be installed")
}

func TestRun_ActivationFailureIsNotFatal(t *testing.T) {
	ctx := slogtest.Context(t)
	// The fake runner "creates" the environment without writing anything, so
	// there is no activation script to find.
	f := newFixture(t).withFiles(t, requiredFiles...)

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err)

	res, ok := report.Step(StepActivation)
	require.True(t, ok)
	assert.Equal(t, Warning, res.Outcome)
	assert.False(t, report.Activated)

	assert.Len(t, f.rec.messages("Activating virtual environment", "warn"), 1)
	assert.Contains(t, f.rec.messages("Activating virtual environment", "detail"),
		"source "+filepath.Join(venvDir, "bin", "activate"))

	assert.True(t, f.fake.Ran("pip install -e ."), "project install must still run")
	assert.Equal(t, "/usr/bin", f.env["PATH"])
}

func TestRun_ProjectInstallFails(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t)
	f.fake.On("pip install -e .", commandtest.Response{ExitCode: 1})

	report, err := f.bootstrapper(t).Run(ctx)
	requireFatal(t, err, StepProject)

	assert.Len(t, report.Steps, 4)
	assert.Equal(t, []string{"python --version", "pip install -e ."}, f.fake.Calls())
}

func TestRun_DependencyFailuresAreBestEffort(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t).withFiles(t, requiredFiles...)

	failing := []string{"pytest-cov>=4.0", "black>=23.0", "bandit>=1.7.0"}
	for _, d := range failing {
		f.fake.On("pip install "+d, commandtest.Response{ExitCode: 1})
	}

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err, "dependency failures must not fail the run")

	warnings := f.rec.messages("Installing test dependencies", "warn")
	assert.Len(t, warnings, 3)
	assert.Equal(t, warnings, f.rec.all("warn"), "no other section may repeat the failures")
	for _, d := range failing {
		assert.NotContains(t, f.rec.messages("Summary", "detail"), d)
	}
	assert.Len(t, f.rec.messages("Installing test dependencies", "success"), 4)

	if diff := cmp.Diff(failing, report.FailedDependencies); diff != "" {
		t.Errorf("FailedDependencies mismatch (-want +got):\n%s", diff)
	}

	var attempted []string
	for _, c := range f.fake.Calls() {
		if strings.HasPrefix(c, "pip install ") && c != "pip install -e ." {
			attempted = append(attempted, strings.TrimPrefix(c, "pip install "))
		}
	}
	if diff := cmp.Diff(dependencies, attempted); diff != "" {
		t.Errorf("every dependency must be attempted in order (-want +got):\n%s", diff)
	}

	res, ok := report.Step(StepDependencies)
	require.True(t, ok)
	assert.Equal(t, Warning, res.Outcome)
}

func TestRun_AllDependenciesFail(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t).withFiles(t, requiredFiles...)
	for _, d := range dependencies {
		f.fake.On("pip install "+d, commandtest.Response{NotFound: true})
	}

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err)
	assert.Len(t, report.FailedDependencies, len(dependencies))
	assert.Len(t, report.Steps, 6, "the audit still runs")
}

func TestRun_MissingFilesAreReported(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t).withFiles(t,
		"test_plan.py",
		"tests/conftest.py",
		"tests/integration/test_cli_basic.py",
	)

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err, "missing files must not fail the run")

	want := []string{"run_tests.py", "tests/unit/test_basic.py"}
	if diff := cmp.Diff(want, report.MissingFiles); diff != "" {
		t.Errorf("MissingFiles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, f.rec.messages("Checking required test files", "detail")); diff != "" {
		t.Errorf("reported files mismatch (-want +got):\n%s", diff)
	}

	for _, p := range want {
		ok, err := afero.Exists(f.fs, filepath.Join(projectDir, p))
		require.NoError(t, err)
		assert.False(t, ok, "%s must not be created", p)
	}
}

func TestRun_Summary(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withFiles(t, "run_tests.py")
	f.fake.On("pip install mypy>=1.0", commandtest.Response{ExitCode: 2})

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err)

	// activation, dependencies and files
	assert.Equal(t, 3, report.Warnings())
	assert.Empty(t, f.rec.messages("Summary", "warn"))
	assert.Equal(t, []string{"Test environment is ready"}, f.rec.messages("Summary", "success"))
	assert.Empty(t, f.rec.messages("Summary", "detail"))

	info := f.bootstrapper(t).Environment(report)
	assert.Equal(t, "python", info.Executable)
	assert.Equal(t, "3.11.6", info.Python)
	assert.False(t, info.VirtualActive)
	assert.Positive(t, info.CPUs)

	env := f.rec.messages("Environment", "detail")
	require.NotEmpty(t, env)
	assert.True(t, strings.HasSuffix(env[len(env)-1], "(not active)"), env[len(env)-1])
}

func TestEnvironmentActive(t *testing.T) {
	ctx := slogtest.Context(t)
	f := newFixture(t).withVenv(t).withFiles(t, requiredFiles...)

	report, err := f.bootstrapper(t).Run(ctx)
	require.NoError(t, err)

	info := f.bootstrapper(t).Environment(report)
	assert.True(t, info.VirtualActive)
	assert.Equal(t, filepath.Join(venvDir, "bin", "python"), info.Executable)

	env := f.rec.messages("Environment", "detail")
	require.NotEmpty(t, env)
	assert.True(t, strings.HasSuffix(env[len(env)-1], "(active)"), env[len(env)-1])
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "fatal", Fatal.String())
	assert.Equal(t, "Outcome(7)", Outcome(7).String())
}
