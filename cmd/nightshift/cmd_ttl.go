package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/coderops/nightshift/domain/model"
	"github.com/coderops/nightshift/internal/logging"
)

// newCmdTTL returns a command that lists running workspaces with TTL
// deadlines approaching within the warning horizon.
func newCmdTTL() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ttl",
		Short: "List workspaces with approaching or expired TTL deadlines",
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

			warningHours, _ := cmd.Flags().GetInt("warning-hours")
			horizon := time.Duration(warningHours) * time.Hour

			snap, err := uc.TakeSnapshot(ctx)
			if err != nil {
				return err
			}

			type entry struct {
				ws       *model.Workspace
				deadline time.Time
			}
			now := time.Now()
			var entries []entry
			for _, ws := range snap.Workspaces {
				if !ws.Running() || ws.TTLDeadline == "" {
					continue
				}
				deadline, perr := time.Parse(time.RFC3339, ws.TTLDeadline)
				if perr != nil {
					log.Warn(ctx, "unparseable TTL deadline",
						"workspace", ws.Summary(), "deadline", ws.TTLDeadline)
					continue
				}
				if deadline.Sub(now) > horizon {
					continue
				}
				entries = append(entries, entry{ws: ws, deadline: deadline})
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].deadline.Before(entries[j].deadline)
			})

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No workspaces within %dh of their TTL deadline\n", warningHours)
				return nil
			}
			fmt.Fprintf(out, "Workspaces within %dh of their TTL deadline:\n", warningHours)
			for _, e := range entries {
				fmt.Fprintf(out, "  %-40s %s (%s)\n",
					e.ws.Summary(), e.deadline.Format(time.RFC3339), formatRemaining(e.deadline.Sub(now)))
			}
			return nil
		},
	}
	cmd.Flags().Int("warning-hours", 2, "Warning horizon before the TTL deadline, in hours")
	return cmd
}
