// Package stop executes stop operations for actionable workspaces with
// reason-fallback retries, exponential backoff and rolling rate limiting.
package stop

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/sync/errgroup"

	"github.com/coderops/nightshift/domain"
	"github.com/coderops/nightshift/domain/model"
	"github.com/coderops/nightshift/internal/logging"
)

// Outcome is the terminal state of one stop item.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeDryRun  Outcome = "dry_run"
	OutcomeSkipped Outcome = "skipped"
)

// Item is one actionable workspace with its stop reason.
type Item struct {
	Workspace *model.Workspace
	Category  model.Category
	Reason    string
}

// Result is the terminal outcome of one item.
type Result struct {
	Workspace *model.Workspace
	Category  model.Category
	Outcome   Outcome
	// Reason is the reason string the platform finally accepted.
	Reason   string
	Detail   string
	Attempts int
}

// Summary aggregates the per-item results of one execution.
type Summary struct {
	Results   []Result
	Succeeded int
	Failed    int
	DryRun    int
	Skipped   int
}

// Executor dispatches stop calls through a bounded worker pool sized to
// respect the rate limit cap.
type Executor struct {
	Gateway domain.Gateway
	// FallbackReasons is the ordered list of platform-accepted reason
	// strings tried after the primary reason is rejected.
	FallbackReasons []string
	DryRun          bool
	MaxPerMinute    int
	Workers         int
	// MaxAttempts bounds retries of transient failures per reason.
	MaxAttempts int

	// overridable in tests
	limiterWindow  time.Duration
	backoffInitial time.Duration
}

// Execute processes items to a terminal outcome each, preserving input order
// in the summary. Classification is already complete by the time this runs;
// no reads of platform state happen here, only stop calls.
func (e *Executor) Execute(ctx context.Context, items []Item) *Summary {
	log := logging.FromContext(ctx)
	results := make([]Result, len(items))

	if e.DryRun {
		for i, it := range items {
			log.Info(ctx, "dry run, would stop workspace",
				"workspace", it.Workspace.Summary(), "reason", it.Reason)
			results[i] = Result{Workspace: it.Workspace, Category: it.Category, Outcome: OutcomeDryRun, Reason: it.Reason}
		}
		return summarize(results)
	}

	window := e.limiterWindow
	if window == 0 {
		window = time.Minute
	}
	limit := e.MaxPerMinute
	if limit <= 0 {
		limit = 1
	}
	limiter := newRateLimiter(limit, window)

	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				results[i] = Result{Workspace: it.Workspace, Category: it.Category, Outcome: OutcomeSkipped, Detail: err.Error()}
				return nil
			}
			results[i] = e.stopOne(ctx, it)
			return nil
		})
	}
	_ = g.Wait()

	return summarize(results)
}

// stopOne tries the primary reason, then each fallback reason in order when
// the platform rejects the reason string itself. Transient failures are
// retried with exponential backoff before giving up on the item.
func (e *Executor) stopOne(ctx context.Context, it Item) Result {
	log := logging.FromContext(ctx)
	res := Result{Workspace: it.Workspace, Category: it.Category}

	candidates := make([]string, 0, 1+len(e.FallbackReasons))
	candidates = append(candidates, it.Reason)
	candidates = append(candidates, e.FallbackReasons...)

	for _, reason := range candidates {
		err := e.stopWithRetry(ctx, it.Workspace.ID, reason, &res.Attempts)
		if err == nil {
			log.Info(ctx, "stopped workspace",
				"workspace", it.Workspace.Summary(), "reason", reason, "attempts", res.Attempts)
			res.Outcome = OutcomeSuccess
			res.Reason = reason
			return res
		}
		if errors.Is(err, model.ErrStopRejected) {
			log.Debug(ctx, "stop reason rejected, trying fallback",
				"workspace", it.Workspace.Summary(), "reason", reason)
			continue
		}
		if ctx.Err() != nil {
			res.Outcome = OutcomeSkipped
			res.Detail = ctx.Err().Error()
			return res
		}
		log.Warn(ctx, "failed to stop workspace",
			"workspace", it.Workspace.Summary(), "error", err)
		res.Outcome = OutcomeFailed
		res.Detail = err.Error()
		return res
	}

	res.Outcome = OutcomeFailed
	res.Detail = "all stop reasons rejected"
	return res
}

func (e *Executor) stopWithRetry(ctx context.Context, workspaceID, reason string, attempts *int) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.backoffInitial
	if bo.InitialInterval == 0 {
		bo.InitialInterval = 500 * time.Millisecond
	}
	bo.MaxElapsedTime = 0

	maxAttempts := e.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxAttempts-1)), ctx)

	return backoff.Retry(func() error {
		*attempts++
		err := e.Gateway.StopWorkspace(ctx, workspaceID, reason)
		if err == nil {
			return nil
		}
		if errors.Is(err, model.ErrStopTransient) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}

func summarize(results []Result) *Summary {
	s := &Summary{Results: results}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeSuccess:
			s.Succeeded++
		case OutcomeFailed:
			s.Failed++
		case OutcomeDryRun:
			s.DryRun++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}
