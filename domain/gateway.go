// Package domain declares the interfaces the use cases depend on. Concrete
// implementations live under adapters/.
package domain

import (
	"context"

	"github.com/coderops/nightshift/domain/model"
)

// Gateway is the authenticated read/write surface of the managed platform.
// Listings are fetched fresh at the start of every run; the stop transition
// is the only write this agent ever performs.
type Gateway interface {
	// Ping verifies the platform is reachable.
	Ping(ctx context.Context) error

	ListWorkspaces(ctx context.Context) ([]*model.Workspace, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListOrganizations(ctx context.Context) ([]*model.Organization, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)
	ListTemplates(ctx context.Context) ([]*model.Template, error)
	GroupMembers(ctx context.Context, groupID string) ([]*model.User, error)

	// UserQuietHours returns the quiet hours schedule of one user, or nil
	// when the user has none configured.
	UserQuietHours(ctx context.Context, username string) (*model.QuietHoursSchedule, error)
	// DefaultQuietHours returns the deployment-wide default schedule, or nil
	// when the deployment does not define one.
	DefaultQuietHours(ctx context.Context) (*model.QuietHoursSchedule, error)

	// StopWorkspace requests a stop build for the workspace. Failures are
	// classified by wrapping model.ErrStopRejected, model.ErrStopTransient
	// or model.ErrStopPermanent.
	StopWorkspace(ctx context.Context, workspaceID, reason string) error
}

// HistoryRecorder appends the outcome of a completed run to an audit sink.
// Records are write-only: evaluation never reads them back, so no state
// crosses run boundaries.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, rec *model.RunRecord) error
}
