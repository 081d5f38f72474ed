package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/fastfind/setupenv/pkg/config"
	"github.com/fastfind/setupenv/pkg/internal/errorhelpers"
)

// configParams are the flags every command uses to find its config.
type configParams struct {
	configPath string
	projectDir string
}

func (p *configParams) addFlagsTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.configPath, "config", "", fmt.Sprintf("path to a config file (default: %s in the project, then the user config dir)", config.ProjectFileName))
	cmd.Flags().StringVarP(&p.projectDir, "project-dir", "C", ".", "directory of the project to set up")
}

// load finds the config and points it at the project directory. An explicit
// --project-dir wins over the config's project key.
func (p *configParams) load(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg, path, err := config.Load(p.configPath, p.projectDir)
	if err != nil {
		return nil, err
	}

	log := clog.FromContext(ctx)
	if path == "" {
		log.Debug("no config file found, using defaults")
	} else {
		log.Infof("using config %s", path)
	}

	if cmd.Flags().Changed("project-dir") || cfg.Project == "." {
		cfg.Project = p.projectDir
	}

	return cfg, nil
}

// validate checks cfg and names the offending keys up front.
func validate(cfg *config.Config) error {
	err := cfg.Validate()
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid config (%s):\n%w", strings.Join(errorhelpers.Fields(err), ", "), err)
}
