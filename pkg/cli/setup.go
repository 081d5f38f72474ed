package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/fastfind/setupenv/pkg/bootstrap"
	"github.com/fastfind/setupenv/pkg/cli/status"
	"github.com/fastfind/setupenv/pkg/config"
)

func cmdSetup() *cobra.Command {
	p := &setupParams{}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create a virtual environment and install the project's test tooling",
		Long: `Set up a Python project for testing.

The setup checks the Python interpreter, creates a virtual environment
(reusing an existing one), activates it for the rest of the run, installs
the project in editable mode, installs the test dependencies and finally
checks that the expected test files are present.

A missing interpreter, a failed environment creation or a failed project
install stops the run with exit code 1. Everything else is reported as a
warning and the run carries on.`,
		Example: `
    # Set up the project in the current directory
    setupenv setup

    # Set up another project with a specific interpreter
    setupenv setup -C ../myproject --python python3.12

    # Stream pip output and write a trace of every step
    setupenv setup -vv --trace setup-trace.json
`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := clog.NewLogger(newLogger(p.verbosity))
			ctx := clog.WithLogger(cmd.Context(), logger)

			if p.traceFile != "" {
				w, err := os.Create(p.traceFile)
				if err != nil {
					return fmt.Errorf("creating trace file: %w", err)
				}
				defer w.Close()
				exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
				if err != nil {
					return fmt.Errorf("creating stdout exporter: %w", err)
				}
				tp := trace.NewTracerProvider(trace.WithBatcher(exporter))
				otel.SetTracerProvider(tp)

				defer func() {
					if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
						clog.FromContext(ctx).Errorf("Shutting down trace provider: %v", err)
					}
				}()
			}

			cfg, err := p.load(ctx, cmd)
			if err != nil {
				return err
			}
			p.applyOverrides(cmd.Flags(), cfg)

			if err := validate(cfg); err != nil {
				return err
			}

			opts, err := p.bootstrapOptions(cfg)
			if err != nil {
				return err
			}
			opts = append(opts, bootstrap.WithReporter(status.New(cmd.OutOrStdout())))

			_, err = bootstrap.New(opts...).Run(ctx)
			return err
		},
	}

	p.addFlagsTo(cmd)
	return cmd
}

type setupParams struct {
	configParams

	venvDir   string
	python    string
	pip       string
	verbosity int
	traceFile string
}

func (p *setupParams) addFlagsTo(cmd *cobra.Command) {
	p.configParams.addFlagsTo(cmd)

	cmd.Flags().StringVar(&p.venvDir, "venv", "", "virtual environment directory, relative to the project (default from config, else \"venv\")")
	cmd.Flags().StringVar(&p.python, "python", "", "Python interpreter to use (default from config, else python3, or python on Windows)")
	cmd.Flags().StringVar(&p.pip, "pip", "", "pip command to use once the environment is active (default from config, else \"pip\")")
	cmd.Flags().StringVar(&p.traceFile, "trace", "", "where to write trace output")
	addVerboseFlag(&p.verbosity, cmd)
}

// applyOverrides lets explicitly set flags win over the config.
func (p *setupParams) applyOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("venv") {
		cfg.Venv = p.venvDir
	}
	if flags.Changed("python") {
		cfg.Python = p.python
	}
	if flags.Changed("pip") {
		cfg.Pip = p.pip
	}
}

func (p *setupParams) bootstrapOptions(cfg *config.Config) ([]bootstrap.Option, error) {
	specs, err := cfg.Specifiers()
	if err != nil {
		return nil, err
	}
	constraint, err := cfg.PythonConstraint()
	if err != nil {
		return nil, err
	}

	return []bootstrap.Option{
		bootstrap.WithPython(cfg.Python),
		bootstrap.WithPip(cfg.Pip),
		bootstrap.WithProjectDir(cfg.Project),
		bootstrap.WithVenvDir(cfg.VenvDir()),
		bootstrap.WithPythonConstraint(constraint),
		bootstrap.WithDependencies(specs),
		bootstrap.WithRequiredFiles(cfg.RequiredFiles),
		bootstrap.WithVerbose(p.verbosity > 0),
	}, nil
}
