package commands

import (
	"fmt"

	"github.com/de-tools/cost-planner/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

func NewScenariosCmd(env Env, reporter *export.Reporter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Manage saved scenarios",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scenarios, err := env.Scenarios(cmd.Context())
			if err != nil {
				return err
			}
			return reporter.Scenarios(scenarios.List())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a saved scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := env.Scenarios(cmd.Context())
			if err != nil {
				return err
			}
			sc, ok := scenarios.Get(args[0])
			if !ok {
				return fmt.Errorf("scenario %s not found", args[0])
			}
			return reporter.Scenario(sc)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := env.Scenarios(cmd.Context())
			if err != nil {
				return err
			}
			if err := scenarios.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete scenario: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted scenario %s\n", args[0])
			return err
		},
	})

	return cmd
}

func NewCompareCmd(env Env, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "compare BASELINE PROPOSED",
		Short: "Compare two saved scenarios",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := env.Scenarios(cmd.Context())
			if err != nil {
				return err
			}
			comparison, ok := scenarios.CompareIDs(args[0], args[1])
			if !ok {
				return ErrNoComparison
			}
			return reporter.Comparison(comparison)
		},
	}
}
