package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/dustin/go-humanize/english"

	"github.com/fastfind/setupenv/pkg/audit"
	"github.com/fastfind/setupenv/pkg/command"
	"github.com/fastfind/setupenv/pkg/python"
)

func (b *Bootstrapper) checkInterpreter(ctx context.Context, report *Report) (Outcome, error) {
	r := b.opts.Reporter

	interp, err := python.Detect(ctx, b.opts.Runner, b.opts.Python)
	if err != nil {
		if errors.Is(err, command.ErrNotFound) {
			r.Fail(fmt.Sprintf("Python interpreter %q not found", b.opts.Python))
		} else {
			r.Fail(fmt.Sprintf("Python interpreter %q did not answer a version query", b.opts.Python))
		}
		r.Detail("Install Python 3 and make sure it is on your PATH, or pass --python.")
		return Fatal, err
	}
	report.Interpreter = interp

	if err := interp.Require(b.opts.PythonConstraint); err != nil {
		r.Fail(fmt.Sprintf("Python %s is not supported (requires %s)", interp.VersionString(), b.opts.PythonConstraint))
		return Fatal, err
	}

	r.Success(fmt.Sprintf("Found Python %s (%s)", interp.VersionString(), interp.Name))
	return Success, nil
}

// provisionEnvironment is idempotent: an existing directory is reused as is.
// A failed creation is not cleaned up.
func (b *Bootstrapper) provisionEnvironment(ctx context.Context, _ *Report) (Outcome, error) {
	r := b.opts.Reporter

	exists, err := b.layout.Exists(b.opts.Fs)
	if err != nil {
		r.Fail(fmt.Sprintf("Could not inspect %s", b.layout.Dir))
		return Fatal, err
	}
	if exists {
		r.Info(fmt.Sprintf("Virtual environment %s already exists, skipping creation", b.layout.Dir))
		return Success, nil
	}

	r.Info(fmt.Sprintf("Creating virtual environment in %s", b.layout.Dir))
	if err := b.layout.Create(ctx, b.opts.Runner, b.opts.Python); err != nil {
		r.Fail("Failed to create the virtual environment")
		r.Detail(append([]string{"Try creating it with virtualenv instead:"}, b.layout.FallbackCommands(b.opts.Python)...)...)
		return Fatal, err
	}

	r.Success(fmt.Sprintf("Virtual environment created in %s", b.layout.Dir))
	return Success, nil
}

// activateEnvironment never stops the run. If it fails, pip is resolved from
// whatever PATH the process already had.
func (b *Bootstrapper) activateEnvironment(ctx context.Context, report *Report) (Outcome, error) {
	r := b.opts.Reporter

	if err := b.layout.Activate(b.opts.Fs, b.opts.Env); err != nil {
		r.Warn(fmt.Sprintf("Could not activate the virtual environment: %v", err))
		r.Detail(append([]string{"Activate it manually, then re-run setup:"}, b.layout.ManualInstructions()...)...)
		return Warning, err
	}

	clog.FromContext(ctx).Debugf("VIRTUAL_ENV=%s", b.opts.Env.Getenv("VIRTUAL_ENV"))
	report.Activated = true
	r.Success("Virtual environment activated")
	return Success, nil
}

func (b *Bootstrapper) installProject(ctx context.Context, _ *Report) (Outcome, error) {
	r := b.opts.Reporter

	r.Info(fmt.Sprintf("Running %s install -e . in %s", b.opts.Pip, b.opts.ProjectDir))
	if _, err := b.opts.Runner.Run(ctx, command.Cmd{
		Name: b.opts.Pip,
		Args: []string{"install", "-e", "."},
		Dir:  b.opts.ProjectDir,
	}); err != nil {
		r.Fail("Failed to install the project in editable mode")
		return Fatal, fmt.Errorf("installing project: %w", err)
	}

	r.Success("Project installed in editable mode")
	return Success, nil
}

// installDependencies is best effort: every specifier is attempted, each
// failure is reported once, and none of them fails the run.
func (b *Bootstrapper) installDependencies(ctx context.Context, report *Report) (Outcome, error) {
	r := b.opts.Reporter
	log := clog.FromContext(ctx)

	for _, spec := range b.opts.Dependencies {
		if _, err := b.opts.Runner.Run(ctx, command.Cmd{
			Name:  b.opts.Pip,
			Args:  []string{"install", spec.String()},
			Dir:   b.opts.ProjectDir,
			Quiet: !b.opts.Verbose,
		}); err != nil {
			log.Debugf("installing %s: %v", spec, err)
			r.Warn(fmt.Sprintf("Failed to install %s", spec))
			report.FailedDependencies = append(report.FailedDependencies, spec.String())
			continue
		}
		r.Success(fmt.Sprintf("Installed %s", spec))
	}

	if n := len(report.FailedDependencies); n > 0 {
		return Warning, fmt.Errorf("%s of %d failed to install",
			english.Plural(n, "dependency", "dependencies"), len(b.opts.Dependencies))
	}
	return Success, nil
}

// auditFiles only observes. Missing files are listed, never created.
func (b *Bootstrapper) auditFiles(_ context.Context, report *Report) (Outcome, error) {
	r := b.opts.Reporter

	res := audit.Files(b.opts.Fs, b.opts.ProjectDir, b.opts.RequiredFiles)
	report.MissingFiles = res.Missing

	if res.OK() {
		r.Success(fmt.Sprintf("All %s present", english.Plural(len(res.Checked), "required file", "required files")))
		return Success, nil
	}

	r.Warn(fmt.Sprintf("Missing %s:", english.Plural(len(res.Missing), "required file", "required files")))
	r.Detail(res.Missing...)
	return Warning, nil
}
