package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/router-for-me/CLIProxyAPISelector/internal/auth"
	"github.com/router-for-me/CLIProxyAPISelector/internal/config"
	"github.com/spf13/cobra"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage company bearer tokens",
	}

	var (
		companyID string
		expiry    time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a company with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(companyID) == "" {
				return fmt.Errorf("--company is required")
			}
			appCfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			jwtCfg, err := config.LoadJWTConfig(config.ResolveConfigPath(appCfg.ConfigPath))
			if err != nil {
				return err
			}
			if expiry <= 0 {
				expiry = jwtCfg.Expiry
			}
			token, err := auth.IssueCompanyToken(jwtCfg.Secret, companyID, expiry, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&companyID, "company", "", "company id carried by the token")
	issue.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (defaults to jwt.expiry)")

	cmd.AddCommand(issue)
	return cmd
}
