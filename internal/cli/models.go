package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	"github.com/router-for-me/CLIProxyAPISelector/internal/config"
	"github.com/router-for-me/CLIProxyAPISelector/internal/selection"
	"github.com/spf13/cobra"
)

func newModelsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the model catalog",
	}
	cmd.AddCommand(newModelsListCommand(), newModelsSelectCommand(opts))
	return cmd
}

func newModelsListCommand() *cobra.Command {
	var category, provider string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter catalog.Filter
			if raw := strings.TrimSpace(category); raw != "" {
				parsed, ok := catalog.ParseCategory(raw)
				if !ok {
					return fmt.Errorf("invalid category %q", raw)
				}
				filter.Category = parsed
			}
			if raw := strings.TrimSpace(provider); raw != "" {
				parsed, ok := catalog.ParseProvider(raw)
				if !ok {
					return fmt.Errorf("invalid provider %q", raw)
				}
				filter.Provider = parsed
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPROVIDER\tCATEGORY\tCOST/1K\tLATENCY_MS\tACCURACY")
			for _, p := range catalog.NewDefault().List(filter) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%d\t%.2f\n", p.Name, p.Provider, p.Category, p.CostPer1K(), p.AvgLatencyMs, p.AccuracyScore)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category (chat, vision, embeddings, ...)")
	cmd.Flags().StringVar(&provider, "provider", "", "filter by provider (openai, anthropic, ...)")
	return cmd
}

func newModelsSelectCommand(opts *rootOptions) *cobra.Command {
	var (
		taskType string
		priority string
		tier     string
		budget   float64
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Pick a model for a task without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(taskType) == "" {
				return fmt.Errorf("--task is required")
			}
			appCfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			engineCfg, err := config.LoadEngineConfig(config.ResolveConfigPath(appCfg.ConfigPath))
			if err != nil {
				return err
			}

			policy := selection.NewPolicy(catalog.NewDefault(), selection.WithFallbackModel(engineCfg.Selection.FallbackModel))
			criteria := selection.Criteria{
				TaskType: strings.TrimSpace(taskType),
				Priority: selection.ParsePriority(priority),
				Tier:     selection.ParseTier(tier),
			}
			if cmd.Flags().Changed("budget") {
				criteria.MaxBudgetPer1K = &budget
			}
			model := policy.SelectBest(criteria)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %.4f per 1K tokens, %d ms, accuracy %.2f)\n",
				model.Name, model.Provider, model.CostPer1K(), model.AvgLatencyMs, model.AccuracyScore)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskType, "task", "", "task type (chat, vision, embeddings, ...)")
	cmd.Flags().StringVar(&priority, "priority", "balanced", "speed, accuracy, cost or balanced")
	cmd.Flags().StringVar(&tier, "tier", "pro", "subscription tier: free, pro or enterprise")
	cmd.Flags().Float64Var(&budget, "budget", 0, "maximum cost per 1K tokens")
	return cmd
}
