package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coderops/nightshift/domain/model"
)

// newCmdStatus returns a command that reports the current quiet hours state
// and a workspace headcount without evaluating any stop actions.
func newCmdStatus() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show quiet hours state and workspace counts",
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

			now := time.Now()
			out := cmd.OutOrStdout()
			pol := opts.Policy

			fmt.Fprintf(out, "Quiet hours: %s - %s %s (grace %s)\n",
				cfg.QuietHours.StartTime, cfg.QuietHours.EndTime, cfg.QuietHours.Timezone, pol.Grace)
			if !pol.Enabled {
				fmt.Fprintln(out, "State: disabled")
			} else if pol.Active(now) {
				if pol.GraceElapsed(now) {
					fmt.Fprintln(out, "State: active, enforcing")
				} else {
					fmt.Fprintf(out, "State: active, grace until %s\n", formatClock(pol.GraceEnds(now), pol.Location))
				}
			} else {
				fmt.Fprintln(out, "State: inactive")
			}
			if snap.DefaultSchedule != nil {
				fmt.Fprintf(out, "Deployment default schedule: %s\n", snap.DefaultSchedule.RawSchedule)
			}

			running := 0
			for _, ws := range snap.Workspaces {
				if ws.Status == model.StatusRunning {
					running++
				}
			}
			fmt.Fprintf(out, "Workspaces: %d total, %d running\n", len(snap.Workspaces), running)
			fmt.Fprintf(out, "Users: %d, Templates: %d, Organizations: %d\n",
				len(snap.Users), len(snap.Templates), len(snap.Organizations))

			eval, err := uc.Evaluate(ctx, snap, opts)
			if err != nil {
				return err
			}
			pending := eval.Classification.Counts[model.CategoryQuietStopping]
			fmt.Fprintf(out, "Pending stops: %d\n", pending)
			return nil
		},
	}
	return cmd
}
