package cli

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newLogger returns a stderr logger for the given -v count: warnings by
// default, info at -v and debug at -vv.
func newLogger(verbosity int) *slog.Logger {
	level := charmlog.WarnLevel
	switch {
	case verbosity >= 2:
		level = charmlog.DebugLevel
	case verbosity == 1:
		level = charmlog.InfoLevel
	}

	return slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	}))
}

func addVerboseFlag(p *int, cmd *cobra.Command) {
	cmd.Flags().CountVarP(p, "verbose", "v", "logging verbosity (v = info, vv = debug)")
}
