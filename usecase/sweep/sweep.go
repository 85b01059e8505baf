// Package sweep orchestrates one evaluation run: snapshot the platform,
// filter, resolve per-owner quiet windows, classify, and optionally execute
// stops for the actionable subset.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"

	"github.com/coderops/nightshift/domain"
	"github.com/coderops/nightshift/domain/model"
	"github.com/coderops/nightshift/internal/logging"
	"github.com/coderops/nightshift/usecase/classify"
	"github.com/coderops/nightshift/usecase/filter"
	"github.com/coderops/nightshift/usecase/schedule"
	"github.com/coderops/nightshift/usecase/stop"
)

// UseCase wires the collaborators needed for a sweep run.
type UseCase struct {
	Gateway domain.Gateway
	// History is optional; when set, run results are appended after execution.
	History domain.HistoryRecorder
}

// Snapshot is the single consistent view of platform state one run operates
// on. Nothing is re-fetched once classification begins.
type Snapshot struct {
	TakenAt         time.Time
	Workspaces      []*model.Workspace
	Users           []*model.User
	Organizations   []*model.Organization
	Groups          []*model.Group
	Templates       []*model.Template
	DefaultSchedule *model.QuietHoursSchedule
	// Schedules maps owner username to the fetched personal schedule; a nil
	// value means none is configured.
	Schedules map[string]*model.QuietHoursSchedule
}

// Options parameterizes one evaluation.
type Options struct {
	Filter            filter.Spec
	Duration          time.Duration
	Policy            classify.Policy
	ExcludedUsers     []string
	ExcludedTemplates []string
	// TargetUser narrows the run to one owner's workspaces when non-empty.
	TargetUser string
	// Now overrides the evaluation instant; zero means time.Now.
	Now time.Time
}

// Evaluation is the read-only result of classification, ready for reporting
// or execution.
type Evaluation struct {
	RunID          string
	Now            time.Time
	Snapshot       *Snapshot
	Eligible       []*model.Workspace
	Windows        map[string]model.QuietWindow
	Classification *classify.Result
	// SkippedOwners lists owners whose schedule failed to parse; their
	// workspaces fell through to global policy and TTL rules only.
	SkippedOwners map[string]error
}

// TakeSnapshot probes the gateway and fetches all listings. Total gateway
// unreachability is the only run-fatal condition.
func (u *UseCase) TakeSnapshot(ctx context.Context) (*Snapshot, error) {
	log := logging.FromContext(ctx)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 10 * time.Second
	probe := backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx)
	if err := backoff.RetryNotify(func() error {
		return u.Gateway.Ping(ctx)
	}, probe, func(err error, d time.Duration) {
		log.Warn(ctx, "platform probe failed, retrying", "error", err, "in", d)
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnreachable, err)
	}

	snap := &Snapshot{TakenAt: time.Now(), Schedules: make(map[string]*model.QuietHoursSchedule)}
	var err error
	if snap.Workspaces, err = u.Gateway.ListWorkspaces(ctx); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	if snap.Users, err = u.Gateway.ListUsers(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if snap.Organizations, err = u.Gateway.ListOrganizations(ctx); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	if snap.Groups, err = u.Gateway.ListGroups(ctx); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	// Some deployments omit members from the group listing; backfill them so
	// the filter pipeline sees complete memberships. Still part of the one
	// snapshot, before any classification.
	for _, g := range snap.Groups {
		if len(g.MemberIDs) > 0 {
			continue
		}
		members, merr := u.Gateway.GroupMembers(ctx, g.ID)
		if merr != nil {
			log.Warn(ctx, "failed to fetch group members, treating group as empty",
				"group", g.Name, "error", merr)
			continue
		}
		for _, m := range members {
			g.MemberIDs = append(g.MemberIDs, m.ID)
		}
	}
	if snap.Templates, err = u.Gateway.ListTemplates(ctx); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if snap.DefaultSchedule, err = u.Gateway.DefaultQuietHours(ctx); err != nil {
		log.Warn(ctx, "deployment default quiet hours unavailable", "error", err)
		snap.DefaultSchedule = nil
	}
	return snap, nil
}

// Evaluate runs the filter pipeline, resolves quiet windows for the eligible
// owners and classifies every eligible workspace exactly once.
func (u *UseCase) Evaluate(ctx context.Context, snap *Snapshot, opts Options) (*Evaluation, error) {
	log := logging.FromContext(ctx)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	pipeline := filter.New(filter.Listings{
		Users:         snap.Users,
		Organizations: snap.Organizations,
		Groups:        snap.Groups,
		Templates:     snap.Templates,
	})
	eligible := pipeline.Apply(ctx, snap.Workspaces, opts.Filter)
	if opts.TargetUser != "" {
		narrowed := eligible[:0:0]
		for _, ws := range eligible {
			if ws.OwnerName == opts.TargetUser {
				narrowed = append(narrowed, ws)
			}
		}
		eligible = narrowed
	}

	eval := &Evaluation{
		RunID:         uuid.NewString(),
		Now:           now,
		Snapshot:      snap,
		Eligible:      eligible,
		Windows:       make(map[string]model.QuietWindow),
		SkippedOwners: make(map[string]error),
	}

	// Complete the snapshot with per-owner schedules before classification;
	// no fetches happen after this point.
	for _, ws := range eligible {
		owner := ws.OwnerName
		if _, seen := snap.Schedules[owner]; seen {
			continue
		}
		sched, err := u.Gateway.UserQuietHours(ctx, owner)
		if err != nil {
			log.Warn(ctx, "failed to fetch owner quiet hours, treating as unset",
				"owner", owner, "error", err)
			sched = nil
		}
		snap.Schedules[owner] = sched
	}

	for owner, sched := range snap.Schedules {
		raw := ""
		if sched != nil && sched.RawSchedule != "" {
			raw = sched.RawSchedule
		} else if snap.DefaultSchedule != nil {
			raw = snap.DefaultSchedule.RawSchedule
		}
		if raw == "" {
			continue // unbounded: global policy and TTL rules only
		}
		win, err := schedule.Resolve(raw, now, opts.Duration)
		if err != nil {
			log.Warn(ctx, "owner schedule unusable, skipping owner window",
				"owner", owner, "error", err)
			eval.SkippedOwners[owner] = err
			continue
		}
		eval.Windows[owner] = win
	}

	excludedUsers := toSet(opts.ExcludedUsers)
	excludedTemplates := toSet(opts.ExcludedTemplates)
	eval.Classification = classify.Classify(ctx, classify.Input{
		Workspaces: eligible,
		Windows:    eval.Windows,
		Policy:     opts.Policy,
		Now:        now,
		Excluded: func(ws *model.Workspace) bool {
			return excludedUsers[ws.OwnerName] || excludedTemplates[ws.TemplateID]
		},
	})
	return eval, nil
}

// ActionableItems extracts the stop work list from an evaluation, in
// classification order. Excluded workspaces are never actionable.
func (u *UseCase) ActionableItems(eval *Evaluation, force, enforceOwnerWindow bool) []stop.Item {
	var items []stop.Item
	for _, it := range eval.Classification.Items {
		if !it.Category.Actionable(force, enforceOwnerWindow) {
			continue
		}
		items = append(items, stop.Item{
			Workspace: it.Workspace,
			Category:  it.Category,
			Reason:    it.Category.StopReason(),
		})
	}
	return items
}

// Execute runs the stop executor over the actionable subset and records the
// run in the history sink when one is configured.
func (u *UseCase) Execute(ctx context.Context, eval *Evaluation, exec *stop.Executor, force, enforceOwnerWindow bool) (*stop.Summary, error) {
	log := logging.FromContext(ctx)
	started := time.Now()

	items := u.ActionableItems(eval, force, enforceOwnerWindow)
	summary := exec.Execute(ctx, items)

	if u.History != nil {
		rec := &model.RunRecord{
			ID:         eval.RunID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			DryRun:     exec.DryRun,
			Evaluated:  len(eval.Snapshot.Workspaces),
			Eligible:   len(eval.Eligible),
			Succeeded:  summary.Succeeded,
			Failed:     summary.Failed,
			Skipped:    summary.Skipped,
		}
		for _, r := range summary.Results {
			rec.Stops = append(rec.Stops, model.StopRecord{
				WorkspaceID: r.Workspace.ID,
				Owner:       r.Workspace.OwnerName,
				Category:    r.Category,
				Outcome:     string(r.Outcome),
				Reason:      r.Reason,
				Detail:      r.Detail,
				Attempts:    r.Attempts,
			})
		}
		if err := u.History.RecordRun(ctx, rec); err != nil {
			log.Warn(ctx, "failed to record run history", "error", err)
		}
	}
	return summary, nil
}

func toSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}
