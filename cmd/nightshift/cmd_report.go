package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/coderops/nightshift/domain/model"
)

// reportDoc is the machine-readable evaluation report.
type reportDoc struct {
	GeneratedAt time.Time                `json:"generated_at"`
	RunID       string                   `json:"run_id"`
	Evaluated   int                      `json:"evaluated"`
	Eligible    int                      `json:"eligible"`
	Counts      map[model.Category]int   `json:"counts"`
	Workspaces  []reportWorkspace        `json:"workspaces"`
	Windows     map[string]reportWindow  `json:"owner_windows,omitempty"`
	Skipped     map[string]string        `json:"skipped_owners,omitempty"`
}

type reportWorkspace struct {
	ID       string         `json:"id"`
	Owner    string         `json:"owner"`
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Category model.Category `json:"category"`
	Deadline string         `json:"ttl_deadline,omitempty"`
}

type reportWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// newCmdReport returns a command that emits the evaluation as JSON for
// downstream tooling.
func newCmdReport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Emit a JSON evaluation report",
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

			doc := reportDoc{
				GeneratedAt: time.Now().UTC(),
				RunID:       eval.RunID,
				Evaluated:   len(snap.Workspaces),
				Eligible:    len(eval.Eligible),
				Counts:      eval.Classification.Counts,
				Windows:     make(map[string]reportWindow),
				Skipped:     make(map[string]string),
			}
			for _, it := range eval.Classification.Items {
				doc.Workspaces = append(doc.Workspaces, reportWorkspace{
					ID:       it.Workspace.ID,
					Owner:    it.Workspace.OwnerName,
					Name:     it.Workspace.Name,
					Status:   string(it.Workspace.Status),
					Category: it.Category,
					Deadline: it.Workspace.TTLDeadline,
				})
			}
			for owner, win := range eval.Windows {
				doc.Windows[owner] = reportWindow{Start: win.Start, End: win.End}
			}
			for owner, serr := range eval.SkippedOwners {
				doc.Skipped[owner] = serr.Error()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
	cmd.Flags().String("user", "", "Limit evaluation to one owner's workspaces")
	addFilterFlags(cmd.Flags())
	return cmd
}
