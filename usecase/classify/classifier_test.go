package classify

import (
	"context"
	"testing"
	"time"

	"github.com/coderops/nightshift/domain/model"
)

func testPolicy(t *testing.T, enabled bool) Policy {
	t.Helper()
	p, err := NewPolicy("18:00", "08:00", "UTC", 1, enabled)
	if err != nil {
		t.Fatalf("new policy: %v", err)
	}
	return p
}

func runningWS(owner string) *model.Workspace {
	return &model.Workspace{
		ID:        "w-" + owner,
		Name:      "dev",
		OwnerName: owner,
		Status:    model.StatusRunning,
		CreatedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func classifySingle(t *testing.T, in Input) model.Category {
	t.Helper()
	res := Classify(context.Background(), in)
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 classified item, got %d", len(res.Items))
	}
	return res.Items[0].Category
}

func TestClassifyPriorities(t *testing.T) {
	// Noon UTC: outside the 18:00-08:00 interval and past its end.
	noon := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ws       *model.Workspace
		excluded bool
		now      time.Time
		enabled  bool
		want     model.Category
	}{
		{
			name:     "excluded beats expired ttl",
			ws:       withDeadline(runningWS("alice"), noon.Add(-time.Hour)),
			excluded: true,
			now:      noon,
			enabled:  true,
			want:     model.CategoryExcluded,
		},
		{
			name:    "stopped with expired ttl stays stopped",
			ws:      withStatus(withDeadline(runningWS("alice"), noon.Add(-time.Hour)), model.StatusStopped),
			now:     noon,
			enabled: true,
			want:    model.CategoryStopped,
		},
		{
			name:    "pending build counts as stopped",
			ws:      withStatus(runningWS("alice"), model.StatusOther),
			now:     noon,
			enabled: true,
			want:    model.CategoryStopped,
		},
		{
			name:    "expired ttl while running",
			ws:      withDeadline(runningWS("alice"), noon.Add(-time.Minute)),
			now:     noon,
			enabled: true,
			want:    model.CategoryTTLExpired,
		},
		{
			name:    "future ttl falls through to quiet hours",
			ws:      withDeadline(runningWS("alice"), noon.Add(10*time.Hour)),
			now:     time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC),
			enabled: true,
			want:    model.CategoryQuietStopping,
		},
		{
			name:    "quiet hours grace at 18:30",
			ws:      runningWS("alice"),
			now:     time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC),
			enabled: true,
			want:    model.CategoryQuietGrace,
		},
		{
			name:    "quiet hours enforcing at 19:01",
			ws:      runningWS("alice"),
			now:     time.Date(2026, 5, 1, 19, 1, 0, 0, time.UTC),
			enabled: true,
			want:    model.CategoryQuietStopping,
		},
		{
			name:    "enforcing after midnight",
			ws:      runningWS("alice"),
			now:     time.Date(2026, 5, 2, 3, 0, 0, 0, time.UTC),
			enabled: true,
			want:    model.CategoryQuietStopping,
		},
		{
			name:    "past quiet hours end",
			ws:      runningWS("alice"),
			now:     time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC),
			enabled: true,
			want:    model.CategoryPastQuietEnd,
		},
		{
			name:    "policy disabled running normally",
			ws:      runningWS("alice"),
			now:     time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
			enabled: false,
			want:    model.CategoryRunningNormally,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifySingle(t, Input{
				Workspaces: []*model.Workspace{tt.ws},
				Policy:     testPolicy(t, tt.enabled),
				Now:        tt.now,
				Excluded:   func(*model.Workspace) bool { return tt.excluded },
			})
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyOwnerWindow(t *testing.T) {
	// Policy disabled so only the owner window rules apply.
	pol := testPolicy(t, false)
	win := model.QuietWindow{
		Start:    time.Date(2026, 5, 1, 13, 32, 0, 0, time.UTC),
		End:      time.Date(2026, 5, 1, 21, 32, 0, 0, time.UTC),
		Timezone: "UTC",
	}

	tests := []struct {
		name      string
		now       time.Time
		createdAt time.Time
		want      model.Category
	}{
		{
			name:      "within window",
			now:       win.End.Add(-time.Hour),
			createdAt: win.Start.AddDate(0, 0, -10),
			want:      model.CategoryWithinOwnerWindow,
		},
		{
			name:      "past window",
			now:       win.End.Add(time.Hour),
			createdAt: win.Start.AddDate(0, 0, -10),
			want:      model.CategoryPastOwnerWindow,
		},
		{
			name:      "created shortly before next cycle",
			now:       win.End.Add(time.Hour),
			createdAt: win.NextStart().Add(-time.Hour),
			want:      model.CategoryWithinOwnerWindow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := runningWS("alice")
			ws.CreatedAt = tt.createdAt
			got := classifySingle(t, Input{
				Workspaces: []*model.Workspace{ws},
				Windows:    map[string]model.QuietWindow{"alice": win},
				Policy:     pol,
				Now:        tt.now,
			})
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyMalformedDeadline(t *testing.T) {
	ws := runningWS("alice")
	ws.TTLDeadline = "not-a-timestamp"
	got := classifySingle(t, Input{
		Workspaces: []*model.Workspace{ws},
		Policy:     testPolicy(t, false),
		Now:        time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	if got != model.CategoryRunningNormally {
		t.Fatalf("malformed deadline must default, got %s", got)
	}
}

func TestClassifyCounts(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	res := Classify(context.Background(), Input{
		Workspaces: []*model.Workspace{
			runningWS("alice"),
			runningWS("bob"),
			withStatus(runningWS("carol"), model.StatusStopped),
		},
		Policy: testPolicy(t, false),
		Now:    now,
	})
	if res.Counts[model.CategoryRunningNormally] != 2 {
		t.Fatalf("running_normally count = %d, want 2", res.Counts[model.CategoryRunningNormally])
	}
	if res.Counts[model.CategoryStopped] != 1 {
		t.Fatalf("stopped count = %d, want 1", res.Counts[model.CategoryStopped])
	}
	if got := res.ByCategory(model.CategoryRunningNormally); len(got) != 2 || got[0].OwnerName != "alice" {
		t.Fatalf("ByCategory must preserve input order, got %v", got)
	}
}

func withDeadline(ws *model.Workspace, deadline time.Time) *model.Workspace {
	ws.TTLDeadline = deadline.Format(time.RFC3339)
	return ws
}

func withStatus(ws *model.Workspace, s model.WorkspaceStatus) *model.Workspace {
	ws.Status = s
	return ws
}
