// Package classify assigns every eligible workspace exactly one lifecycle
// category using the global quiet hours policy, per-owner quiet windows and
// TTL deadlines.
package classify

import (
	"context"
	"time"

	"github.com/coderops/nightshift/domain/model"
	"github.com/coderops/nightshift/internal/logging"
	"github.com/coderops/nightshift/usecase/schedule"
)

// Input is one classification request over a consistent snapshot.
type Input struct {
	Workspaces []*model.Workspace
	// Windows maps owner username to the resolved quiet window. A missing
	// entry means the owner has no usable schedule and falls through to the
	// global policy and TTL rules only.
	Windows map[string]model.QuietWindow
	Policy  Policy
	// Excluded is the protection predicate, checked before everything else.
	Excluded func(ws *model.Workspace) bool
	Now      time.Time
}

// Classified pairs a workspace with its single assigned category.
type Classified struct {
	Workspace *model.Workspace
	Category  model.Category
}

// Result holds the ordered classification and per-category counts.
type Result struct {
	Items  []Classified
	Counts map[model.Category]int
}

// ByCategory returns the workspaces assigned the given category, in input order.
func (r *Result) ByCategory(c model.Category) []*model.Workspace {
	var out []*model.Workspace
	for _, it := range r.Items {
		if it.Category == c {
			out = append(out, it.Workspace)
		}
	}
	return out
}

// Classify assigns each workspace the first matching category in priority
// order. Exclusion always wins; every non-running workspace lands in the
// stopped category no matter what its TTL or quiet hours state says. One
// malformed record is logged and defaulted, never aborting the rest.
func Classify(ctx context.Context, in Input) *Result {
	log := logging.FromContext(ctx)
	res := &Result{Counts: make(map[model.Category]int)}

	for _, ws := range in.Workspaces {
		c := classifyOne(ctx, log, in, ws)
		res.Items = append(res.Items, Classified{Workspace: ws, Category: c})
		res.Counts[c]++
	}
	return res
}

func classifyOne(ctx context.Context, log logging.Logger, in Input, ws *model.Workspace) model.Category {
	if in.Excluded != nil && in.Excluded(ws) {
		return model.CategoryExcluded
	}
	// Categories between exclusion and stopped all require a running build,
	// so a stopped workspace with an expired deadline stays stopped.
	if !ws.Running() {
		return model.CategoryStopped
	}

	if ws.TTLDeadline != "" {
		deadline, err := time.Parse(time.RFC3339, ws.TTLDeadline)
		if err != nil {
			log.Warn(ctx, "unparseable TTL deadline, defaulting category",
				"error", model.ErrClassificationData, "workspace", ws.Summary(), "deadline", ws.TTLDeadline)
			return model.CategoryRunningNormally
		}
		if deadline.Before(in.Now) {
			return model.CategoryTTLExpired
		}
	}

	if in.Policy.Active(in.Now) {
		if in.Policy.GraceElapsed(in.Now) {
			return model.CategoryQuietStopping
		}
		return model.CategoryQuietGrace
	}
	if in.Policy.PastEnd(in.Now) {
		return model.CategoryPastQuietEnd
	}

	if win, ok := in.Windows[ws.OwnerName]; ok {
		if schedule.InGuaranteedRuntime(win, in.Now, ws.CreatedAt) {
			return model.CategoryWithinOwnerWindow
		}
		return model.CategoryPastOwnerWindow
	}

	return model.CategoryRunningNormally
}
