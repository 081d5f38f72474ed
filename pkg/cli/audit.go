package cli

import (
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/dustin/go-humanize/english"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fastfind/setupenv/pkg/audit"
	"github.com/fastfind/setupenv/pkg/cli/status"
)

func cmdAudit() *cobra.Command {
	p := &auditParams{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check that the project's required test files are present",
		Long: `Check that the project's required test files are present.

The audit only reports. Missing files are listed as warnings and the command
still exits 0; nothing is created or repaired.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := clog.WithLogger(cmd.Context(), clog.NewLogger(newLogger(p.verbosity)))

			cfg, err := p.load(ctx, cmd)
			if err != nil {
				return err
			}
			if err := validate(cfg); err != nil {
				return err
			}

			res := audit.Files(afero.NewOsFs(), cfg.Project, cfg.RequiredFiles)

			out := status.New(cmd.OutOrStdout())
			out.Section("Checking required test files")
			for _, f := range res.Checked {
				if lo.Contains(res.Missing, f) {
					out.Warn("Missing " + f)
					continue
				}
				out.Success("Found " + f)
			}

			if res.OK() {
				out.Success(fmt.Sprintf("All %s present", english.Plural(len(res.Checked), "required file", "required files")))
			} else {
				out.Warn(fmt.Sprintf("%d of %s missing",
					len(res.Missing), english.Plural(len(res.Checked), "required file", "required files")))
			}

			return nil
		},
	}

	p.addFlagsTo(cmd)
	return cmd
}

type auditParams struct {
	configParams

	verbosity int
}

func (p *auditParams) addFlagsTo(cmd *cobra.Command) {
	p.configParams.addFlagsTo(cmd)
	addVerboseFlag(&p.verbosity, cmd)
}
