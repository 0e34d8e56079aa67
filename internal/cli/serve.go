package cli

import (
	"fmt"

	"github.com/router-for-me/CLIProxyAPISelector/internal/app"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errValidate := validatePort(port); errValidate != nil {
				return errValidate
			}
			appCfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			return app.RunServer(cmd.Context(), appCfg, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config and SELECTOR_PORT)")
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			if errMigrate := app.Migrate(cmd.Context(), appCfg); errMigrate != nil {
				return errMigrate
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
