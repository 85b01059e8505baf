package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coderops/nightshift/domain/model"
)

// newCmdCategorize returns a command that classifies every eligible workspace
// and prints a per-category breakdown. It never stops anything.
func newCmdCategorize() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Classify workspaces without taking any action",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			uc, err := buildUseCase(cfg)
			if err != nil {
				return err
			}
			opts, err := sweepOptions(cmd, cfg)
			if err != nil {
				return err
			}

			snap, err := uc.TakeSnapshot(ctx)
			if err != nil {
				return err
			}
			eval, err := uc.Evaluate(ctx, snap, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Evaluated %d workspaces, %d eligible\n",
				len(snap.Workspaces), len(eval.Eligible))
			for _, c := range model.Categories {
				items := eval.Classification.ByCategory(c)
				if len(items) == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s (%d):\n", c, len(items))
				for _, ws := range items {
					fmt.Fprintf(out, "  %s\n", ws.Summary())
				}
			}
			if len(eval.SkippedOwners) > 0 {
				fmt.Fprintf(out, "\nOwners with unusable schedules (%d):\n", len(eval.SkippedOwners))
				for owner, serr := range eval.SkippedOwners {
					fmt.Fprintf(out, "  %s: %s\n", owner, serr)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("user", "", "Limit evaluation to one owner's workspaces")
	addFilterFlags(cmd.Flags())
	return cmd
}
