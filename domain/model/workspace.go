package model

import "time"

// WorkspaceStatus is the lifecycle state reported by the platform for the
// latest build of a workspace.
type WorkspaceStatus string

const (
	StatusRunning WorkspaceStatus = "running"
	StatusStopped WorkspaceStatus = "stopped"
	StatusOther   WorkspaceStatus = "other"
)

// ParseWorkspaceStatus maps a raw platform status string to a WorkspaceStatus.
// Anything that is neither running nor stopped collapses to StatusOther.
func ParseWorkspaceStatus(s string) WorkspaceStatus {
	switch s {
	case "running":
		return StatusRunning
	case "stopped":
		return StatusStopped
	default:
		return StatusOther
	}
}

// Workspace represents a remote development environment instance. It is owned
// by the platform; this agent reads it and may only request a stop transition.
type Workspace struct {
	ID          string
	Name        string
	OwnerID     string
	OwnerName   string
	TemplateID  string
	Status      WorkspaceStatus
	CreatedAt   time.Time
	TTLDeadline string // RFC3339 deadline of the latest build, empty when none
}

// Running reports whether the workspace's latest build is in the running state.
func (w *Workspace) Running() bool { return w.Status == StatusRunning }

// Summary renders the owner/name pair used in logs and reports.
func (w *Workspace) Summary() string {
	return w.OwnerName + "/" + w.Name
}
