package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fastfind/setupenv/pkg/bootstrap"
	"github.com/fastfind/setupenv/pkg/cli"
)

func main() {
	os.Exit(run(cli.New()))
}

// run executes cmd and returns the process exit code.
func run(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	// A failed setup step has already been reported on the console.
	var fatal *bootstrap.FatalError
	if !errors.As(err, &fatal) {
		log.Errorf("error during command execution: %v", err)
	}
	return 1
}
