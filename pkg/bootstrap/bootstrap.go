// Package bootstrap prepares a Python project for testing: it checks the
// interpreter, provisions and activates a virtual environment, installs the
// project and its test dependencies, and audits the expected test files.
//
// The steps run strictly in order. Each one ends in an Outcome: Fatal stops
// the run, Warning is reported and the run carries on.
package bootstrap

import (
	"context"
	"runtime"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fastfind/setupenv/pkg/command"
	"github.com/fastfind/setupenv/pkg/python"
	"github.com/fastfind/setupenv/pkg/requirement"
	"github.com/fastfind/setupenv/pkg/venv"
)

// Step names, as recorded in the Report.
const (
	StepInterpreter  = "interpreter"
	StepEnvironment  = "environment"
	StepActivation   = "activation"
	StepProject      = "project"
	StepDependencies = "dependencies"
	StepFiles        = "files"
)

// Options configures a Bootstrapper.
type Options struct {
	// Python is the interpreter command used for the version check and to
	// create the environment.
	Python string

	// Pip is the installer command. It is resolved through PATH after
	// activation, so it lands in the environment when activation worked.
	Pip string

	ProjectDir string
	VenvDir    string

	// PythonConstraint, when set, makes an unsuitable interpreter fatal.
	PythonConstraint version.Constraints

	Dependencies  []requirement.Specifier
	RequiredFiles []string

	// Verbose streams the output of dependency installs.
	Verbose bool

	// GOOS selects the environment layout. Defaults to runtime.GOOS.
	GOOS string

	Runner   command.Runner
	Fs       afero.Fs
	Env      venv.Env
	Reporter Reporter
}

// Option configures Options.
type Option func(*Options)

func WithPython(name string) Option {
	return func(o *Options) { o.Python = name }
}

func WithPip(name string) Option {
	return func(o *Options) { o.Pip = name }
}

func WithProjectDir(dir string) Option {
	return func(o *Options) { o.ProjectDir = dir }
}

func WithVenvDir(dir string) Option {
	return func(o *Options) { o.VenvDir = dir }
}

func WithPythonConstraint(c version.Constraints) Option {
	return func(o *Options) { o.PythonConstraint = c }
}

func WithDependencies(specs []requirement.Specifier) Option {
	return func(o *Options) { o.Dependencies = specs }
}

func WithRequiredFiles(paths []string) Option {
	return func(o *Options) { o.RequiredFiles = paths }
}

func WithVerbose(verbose bool) Option {
	return func(o *Options) { o.Verbose = verbose }
}

func WithGOOS(goos string) Option {
	return func(o *Options) { o.GOOS = goos }
}

func WithRunner(r command.Runner) Option {
	return func(o *Options) { o.Runner = r }
}

func WithFs(fsys afero.Fs) Option {
	return func(o *Options) { o.Fs = fsys }
}

func WithEnv(env venv.Env) Option {
	return func(o *Options) { o.Env = env }
}

func WithReporter(r Reporter) Option {
	return func(o *Options) { o.Reporter = r }
}

// Bootstrapper runs the setup procedure.
type Bootstrapper struct {
	opts   Options
	layout venv.Layout
}

// New returns a Bootstrapper. Unset options fall back to the real process:
// os/exec, the OS filesystem and the process environment.
func New(opts ...Option) *Bootstrapper {
	o := Options{
		Python:     python.DefaultName(),
		Pip:        "pip",
		ProjectDir: ".",
		VenvDir:    venv.DefaultDir,
		GOOS:       runtime.GOOS,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.Runner == nil {
		o.Runner = command.NewExecRunner()
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Env == nil {
		o.Env = venv.ProcessEnv{}
	}
	if o.Reporter == nil {
		o.Reporter = nopReporter{}
	}

	return &Bootstrapper{
		opts:   o,
		layout: venv.Layout{Dir: o.VenvDir, GOOS: o.GOOS},
	}
}

type step struct {
	name  string
	title string
	run   func(context.Context, *Report) (Outcome, error)
}

func (b *Bootstrapper) steps() []step {
	return []step{
		{StepInterpreter, "Checking Python interpreter", b.checkInterpreter},
		{StepEnvironment, "Preparing virtual environment", b.provisionEnvironment},
		{StepActivation, "Activating virtual environment", b.activateEnvironment},
		{StepProject, "Installing project in editable mode", b.installProject},
		{StepDependencies, "Installing test dependencies", b.installDependencies},
		{StepFiles, "Checking required test files", b.auditFiles},
	}
}

// Run executes every step in order. It returns a *FatalError, together with
// the partial report, as soon as a step ends Fatal.
func (b *Bootstrapper) Run(ctx context.Context) (*Report, error) {
	ctx, span := otel.Tracer("setupenv").Start(ctx, "setup")
	defer span.End()

	report := &Report{Started: time.Now()}
	log := clog.FromContext(ctx)

	for _, s := range b.steps() {
		res := b.runStep(clog.WithLogger(ctx, log.With("step", s.name)), s, report)
		report.Steps = append(report.Steps, res)

		if res.Outcome == Fatal {
			report.Elapsed = time.Since(report.Started)
			span.SetStatus(codes.Error, res.Err.Error())
			return report, &FatalError{Step: s.name, Err: res.Err}
		}
	}

	report.Elapsed = time.Since(report.Started)
	log.Infof("setup finished with %d of %d steps warning", report.Warnings(), len(report.Steps))
	b.summarize(report)

	return report, nil
}

func (b *Bootstrapper) runStep(ctx context.Context, s step, report *Report) StepResult {
	ctx, span := otel.Tracer("setupenv").Start(ctx, s.name)
	defer span.End()

	b.opts.Reporter.Section(s.title)

	start := time.Now()
	outcome, err := s.run(ctx, report)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.String("outcome", outcome.String()))
	log := clog.FromContext(ctx)
	switch {
	case outcome == Fatal:
		span.SetStatus(codes.Error, err.Error())
		log.Infof("step failed: %v", err)
	case err != nil:
		log.Infof("step finished with a warning: %v", err)
	default:
		log.Debugf("step finished: %s", outcome)
	}

	return StepResult{Name: s.name, Outcome: outcome, Elapsed: elapsed, Err: err}
}

type nopReporter struct{}

func (nopReporter) Section(string)   {}
func (nopReporter) Success(string)   {}
func (nopReporter) Info(string)      {}
func (nopReporter) Warn(string)      {}
func (nopReporter) Fail(string)      {}
func (nopReporter) Detail(...string) {}
