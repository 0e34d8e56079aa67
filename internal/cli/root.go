// Package cli defines the selector command line.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/router-for-me/CLIProxyAPISelector/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCommand builds the selector command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "selector",
		Short:         "Model selection and evaluation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (or env CONFIG_PATH)")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newModelsCommand(opts),
		newTokenCommand(opts),
	)
	return root
}

// Execute runs the command tree against args.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand(ctx)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (o *rootOptions) appConfig() (config.AppConfig, error) {
	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return config.AppConfig{}, err
	}
	if strings.TrimSpace(o.configPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(o.configPath)
	}
	return appCfg, nil
}

func validatePort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
