package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coderops/nightshift/internal/logging"
	"github.com/coderops/nightshift/usecase/stop"
)

// newCmdSweep returns the command that performs one full run: snapshot,
// classify and stop the actionable workspaces.
func newCmdSweep() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate workspaces and stop the actionable ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)
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

			// Stopping the whole fleet must be asked for explicitly.
			all, _ := cmd.Flags().GetBool("all")
			if !all && opts.TargetUser == "" && !cfg.DryRun {
				return fmt.Errorf("refusing a fleet-wide sweep without --all (or use --user / --dry-run)")
			}

			force, _ := cmd.Flags().GetBool("force")
			enforceOwnerWindow := cfg.Prune.EnforceOwnerWindow
			if cmd.Flags().Changed("enforce-owner-window") {
				enforceOwnerWindow, _ = cmd.Flags().GetBool("enforce-owner-window")
			}

			snap, err := uc.TakeSnapshot(ctx)
			if err != nil {
				return err
			}
			eval, err := uc.Evaluate(ctx, snap, opts)
			if err != nil {
				return err
			}

			items := uc.ActionableItems(eval, force, enforceOwnerWindow)
			log.Info(ctx, "evaluation complete",
				"run_id", eval.RunID,
				"evaluated", len(snap.Workspaces),
				"eligible", len(eval.Eligible),
				"actionable", len(items))

			exec := buildExecutor(uc, cfg, cfg.DryRun)
			summary, err := uc.Execute(ctx, eval, exec, force, enforceOwnerWindow)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range summary.Results {
				switch r.Outcome {
				case stop.OutcomeSuccess:
					fmt.Fprintf(out, "stopped  %s (%s, attempts %d)\n", r.Workspace.Summary(), r.Reason, r.Attempts)
				case stop.OutcomeDryRun:
					fmt.Fprintf(out, "dry-run  %s (%s)\n", r.Workspace.Summary(), r.Reason)
				case stop.OutcomeSkipped:
					fmt.Fprintf(out, "skipped  %s: %s\n", r.Workspace.Summary(), r.Detail)
				case stop.OutcomeFailed:
					fmt.Fprintf(out, "failed   %s: %s\n", r.Workspace.Summary(), r.Detail)
				}
			}
			fmt.Fprintf(out, "Done: %d stopped, %d failed, %d skipped, %d dry-run\n",
				summary.Succeeded, summary.Failed, summary.Skipped, summary.DryRun)

			if summary.Failed > 0 {
				return fmt.Errorf("%d stop operations failed", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "Log intended stops without executing them")
	cmd.Flags().Bool("force", false, "Also stop workspaces with expired TTL deadlines")
	cmd.Flags().Bool("enforce-owner-window", false, "Also stop workspaces past their owner quiet window")
	cmd.Flags().Bool("all", false, "Sweep every owner's workspaces")
	cmd.Flags().String("user", "", "Limit the run to one owner's workspaces")
	cmd.Flags().Int("duration", 0, "Owner quiet window duration in hours (overrides config)")
	addFilterFlags(cmd.Flags())
	return cmd
}
