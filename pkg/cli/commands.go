package cli

import (
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "setupenv",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Short:             "Bootstrap the Python test environment of a project",
	}

	cmd.AddCommand(
		cmdSetup(),
		cmdAudit(),
		cmdDeps(),
		version.Version(),
	)

	return cmd
}
