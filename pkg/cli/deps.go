package cli

import (
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/fastfind/setupenv/pkg/requirement"
)

func cmdDeps() *cobra.Command {
	p := &depsParams{}
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "List the test dependencies setup installs",
		Example: `
    # Print the dependency specifiers, one per line
    setupenv deps

    # Print only the package names
    setupenv deps --names
`,
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

			specs, err := cfg.Specifiers()
			if err != nil {
				return err
			}

			lines := lo.Map(specs, func(s requirement.Specifier, _ int) string {
				if p.namesOnly {
					return s.Name
				}
				return s.String()
			})

			if len(lines) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			}
			return nil
		},
	}

	p.addFlagsTo(cmd)
	return cmd
}

type depsParams struct {
	configParams

	namesOnly bool
	verbosity int
}

func (p *depsParams) addFlagsTo(cmd *cobra.Command) {
	p.configParams.addFlagsTo(cmd)
	cmd.Flags().BoolVar(&p.namesOnly, "names", false, "print only package names")
	addVerboseFlag(&p.verbosity, cmd)
}
