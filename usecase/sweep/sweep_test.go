package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coderops/nightshift/adapters/history/inmem"
	"github.com/coderops/nightshift/domain/model"
	"github.com/coderops/nightshift/usecase/classify"
	"github.com/coderops/nightshift/usecase/filter"
	"github.com/coderops/nightshift/usecase/stop"
)

type fakeGateway struct {
	pingErr      error
	workspaces   []*model.Workspace
	users        []*model.User
	groups       []*model.Group
	groupMembers map[string][]*model.User
	schedules    map[string]*model.QuietHoursSchedule
	defSched     *model.QuietHoursSchedule
	stopErr      error

	mu      sync.Mutex
	stopped []string
}

func (g *fakeGateway) Ping(context.Context) error { return g.pingErr }
func (g *fakeGateway) ListWorkspaces(context.Context) ([]*model.Workspace, error) {
	return g.workspaces, nil
}
func (g *fakeGateway) ListUsers(context.Context) ([]*model.User, error) { return g.users, nil }
func (g *fakeGateway) ListOrganizations(context.Context) ([]*model.Organization, error) {
	return nil, nil
}
func (g *fakeGateway) ListGroups(context.Context) ([]*model.Group, error) { return g.groups, nil }
func (g *fakeGateway) ListTemplates(context.Context) ([]*model.Template, error) { return nil, nil }
func (g *fakeGateway) GroupMembers(_ context.Context, groupID string) ([]*model.User, error) {
	return g.groupMembers[groupID], nil
}
func (g *fakeGateway) UserQuietHours(_ context.Context, username string) (*model.QuietHoursSchedule, error) {
	return g.schedules[username], nil
}
func (g *fakeGateway) DefaultQuietHours(context.Context) (*model.QuietHoursSchedule, error) {
	return g.defSched, nil
}
func (g *fakeGateway) StopWorkspace(_ context.Context, workspaceID, _ string) error {
	if g.stopErr != nil {
		return g.stopErr
	}
	g.mu.Lock()
	g.stopped = append(g.stopped, workspaceID)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) stoppedIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.stopped...)
}

func disabledPolicy(t *testing.T) classify.Policy {
	t.Helper()
	p, err := classify.NewPolicy("18:00", "08:00", "UTC", 1, false)
	if err != nil {
		t.Fatalf("new policy: %v", err)
	}
	return p
}

func testGateway() *fakeGateway {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &fakeGateway{
		workspaces: []*model.Workspace{
			{ID: "w1", Name: "dev", OwnerName: "alice", Status: model.StatusRunning, CreatedAt: created},
			{ID: "w2", Name: "train", OwnerName: "bob", Status: model.StatusRunning, CreatedAt: created},
		},
		users: []*model.User{
			{ID: "u1", Username: "alice"},
			{ID: "u2", Username: "bob"},
		},
		schedules: map[string]*model.QuietHoursSchedule{
			"alice": {RawSchedule: "CRON_TZ=UTC 0 13 * * *", UserSet: true},
		},
		defSched: &model.QuietHoursSchedule{RawSchedule: "CRON_TZ=UTC 0 15 * * *"},
	}
}

func TestTakeSnapshotUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uc := &UseCase{Gateway: &fakeGateway{pingErr: fmt.Errorf("connection refused")}}
	_, err := uc.TakeSnapshot(ctx)
	if !errors.Is(err, model.ErrGatewayUnreachable) {
		t.Fatalf("got %v, want ErrGatewayUnreachable", err)
	}
}

func TestEvaluateResolvesWindows(t *testing.T) {
	gw := testGateway()
	uc := &UseCase{Gateway: gw}
	ctx := context.Background()

	snap, err := uc.TakeSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	now := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	eval, err := uc.Evaluate(ctx, snap, Options{
		Policy:   disabledPolicy(t),
		Duration: 8 * time.Hour,
		Now:      now,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.RunID == "" {
		t.Fatalf("run id not assigned")
	}
	if len(eval.Eligible) != 2 {
		t.Fatalf("eligible = %d, want 2", len(eval.Eligible))
	}

	// Alice's personal schedule wins; bob inherits the deployment default.
	aw, ok := eval.Windows["alice"]
	if !ok || aw.Start.Hour() != 13 {
		t.Fatalf("alice window = %+v", aw)
	}
	bw, ok := eval.Windows["bob"]
	if !ok || bw.Start.Hour() != 15 {
		t.Fatalf("bob window = %+v", bw)
	}

	// Both still inside their 8h windows at 20:00.
	for _, it := range eval.Classification.Items {
		if it.Category != model.CategoryWithinOwnerWindow {
			t.Fatalf("%s category = %s, want within_owner_window", it.Workspace.Summary(), it.Category)
		}
	}
}

func TestEvaluateSkipsUnusableSchedule(t *testing.T) {
	gw := testGateway()
	gw.schedules["alice"] = &model.QuietHoursSchedule{RawSchedule: "32 13 * * *", UserSet: true}
	gw.defSched = nil
	uc := &UseCase{Gateway: gw}
	ctx := context.Background()

	snap, err := uc.TakeSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	eval, err := uc.Evaluate(ctx, snap, Options{
		Policy:   disabledPolicy(t),
		Duration: 8 * time.Hour,
		Now:      time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := eval.SkippedOwners["alice"]; !ok {
		t.Fatalf("alice should be recorded as skipped, got %v", eval.SkippedOwners)
	}
	if _, ok := eval.Windows["alice"]; ok {
		t.Fatalf("alice must have no window")
	}
	// Bob has neither a personal nor a default schedule: unbounded, not skipped.
	if _, ok := eval.SkippedOwners["bob"]; ok {
		t.Fatalf("bob must not be skipped")
	}
	if eval.Classification.Counts[model.CategoryRunningNormally] != 2 {
		t.Fatalf("counts = %v", eval.Classification.Counts)
	}
}

func TestEvaluateAppliesFilter(t *testing.T) {
	uc := &UseCase{Gateway: testGateway()}
	ctx := context.Background()
	snap, err := uc.TakeSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	eval, err := uc.Evaluate(ctx, snap, Options{
		Policy:   disabledPolicy(t),
		Duration: 8 * time.Hour,
		Filter:   filter.Spec{Users: filter.Dimension{Exclude: []string{"bob"}}},
		Now:      time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(eval.Eligible) != 1 || eval.Eligible[0].OwnerName != "alice" {
		t.Fatalf("eligible = %v", eval.Eligible)
	}
	// Schedules are only fetched for eligible owners.
	if _, ok := snap.Schedules["bob"]; ok {
		t.Fatalf("filtered owner's schedule must not be fetched")
	}
}

func TestTakeSnapshotBackfillsGroupMembers(t *testing.T) {
	gw := testGateway()
	gw.groups = []*model.Group{
		{ID: "g1", Name: "backend", MemberIDs: []string{"u1"}},
		{ID: "g2", Name: "ml"}, // listing omitted the members
	}
	gw.groupMembers = map[string][]*model.User{
		"g2": {{ID: "u2", Username: "bob"}},
	}
	uc := &UseCase{Gateway: gw}
	snap, err := uc.TakeSnapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := snap.Groups[0].MemberIDs; len(got) != 1 || got[0] != "u1" {
		t.Fatalf("populated group must be left alone, got %v", got)
	}
	if got := snap.Groups[1].MemberIDs; len(got) != 1 || got[0] != "u2" {
		t.Fatalf("empty group must be backfilled, got %v", got)
	}
}

func TestEvaluateTargetUser(t *testing.T) {
	uc := &UseCase{Gateway: testGateway()}
	ctx := context.Background()
	snap, err := uc.TakeSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	eval, err := uc.Evaluate(ctx, snap, Options{
		Policy:     disabledPolicy(t),
		Duration:   8 * time.Hour,
		TargetUser: "alice",
		Now:        time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(eval.Eligible) != 1 || eval.Eligible[0].OwnerName != "alice" {
		t.Fatalf("eligible = %v", eval.Eligible)
	}
}

func TestEvaluateExcludedUsers(t *testing.T) {
	uc := &UseCase{Gateway: testGateway()}
	ctx := context.Background()
	snap, err := uc.TakeSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	eval, err := uc.Evaluate(ctx, snap, Options{
		Policy:        disabledPolicy(t),
		Duration:      8 * time.Hour,
		ExcludedUsers: []string{"alice"},
		Now:           time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Classification.Counts[model.CategoryExcluded] != 1 {
		t.Fatalf("counts = %v", eval.Classification.Counts)
	}
}

func TestExecuteRecordsHistory(t *testing.T) {
	gw := testGateway()
	// Past both owner windows so the run has actionable work.
	now := time.Date(2026, 5, 2, 2, 0, 0, 0, time.UTC)

	rec := inmem.NewRecorder()
	uc := &UseCase{Gateway: gw, History: rec}
	ctx := context.Background()
	snap, err := uc.TakeSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	eval, err := uc.Evaluate(ctx, snap, Options{
		Policy:   disabledPolicy(t),
		Duration: 8 * time.Hour,
		Now:      now,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	items := uc.ActionableItems(eval, false, true)
	if len(items) != 2 {
		t.Fatalf("actionable = %d, want 2", len(items))
	}

	exec := &stop.Executor{
		Gateway:      gw,
		MaxPerMinute: 100,
		Workers:      2,
		MaxAttempts:  1,
	}
	sum, err := uc.Execute(ctx, eval, exec, false, true)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if sum.Succeeded != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if stopped := gw.stoppedIDs(); len(stopped) != 2 {
		t.Fatalf("stopped = %v", stopped)
	}

	runs := rec.Runs()
	if len(runs) != 1 {
		t.Fatalf("recorded runs = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != eval.RunID || run.Succeeded != 2 || len(run.Stops) != 2 {
		t.Fatalf("unexpected run record: %+v", run)
	}
}

func TestActionableItemsFlags(t *testing.T) {
	evalWith := func(cat model.Category) *Evaluation {
		return &Evaluation{Classification: &classify.Result{Items: []classify.Classified{
			{Workspace: &model.Workspace{ID: "w1", Status: model.StatusRunning}, Category: cat},
		}}}
	}
	uc := &UseCase{}

	if got := uc.ActionableItems(evalWith(model.CategoryQuietStopping), false, false); len(got) != 1 {
		t.Fatalf("quiet_hours_stopping must always be actionable")
	}
	if got := uc.ActionableItems(evalWith(model.CategoryTTLExpired), false, false); len(got) != 0 {
		t.Fatalf("ttl_expired needs force")
	}
	if got := uc.ActionableItems(evalWith(model.CategoryTTLExpired), true, false); len(got) != 1 {
		t.Fatalf("ttl_expired with force must be actionable")
	}
	if got := uc.ActionableItems(evalWith(model.CategoryPastOwnerWindow), false, false); len(got) != 0 {
		t.Fatalf("past_owner_window needs enforcement enabled")
	}
	if got := uc.ActionableItems(evalWith(model.CategoryPastOwnerWindow), false, true); len(got) != 1 {
		t.Fatalf("past_owner_window with enforcement must be actionable")
	}
	if got := uc.ActionableItems(evalWith(model.CategoryExcluded), true, true); len(got) != 0 {
		t.Fatalf("excluded is never actionable")
	}
}
