package model

import "time"

// RunRecord is the audit trail of one completed sweep.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Evaluated  int
	Eligible   int
	Succeeded  int
	Failed     int
	Skipped    int
	Stops      []StopRecord
}

// StopRecord is the audit trail of one attempted stop operation.
type StopRecord struct {
	WorkspaceID string
	Owner       string
	Category    Category
	Outcome     string
	Reason      string
	Detail      string
	Attempts    int
}
