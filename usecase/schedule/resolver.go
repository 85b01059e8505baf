// Package schedule resolves a raw per-owner quiet hours schedule into the
// concrete time window active at a given instant. All functions are pure;
// callers pass "now" explicitly.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coderops/nightshift/domain/model"
)

const (
	// MidnightGuard is the margin around local midnight inside which a
	// window end is pushed past the day boundary.
	MidnightGuard = 15 * time.Minute
	// PreWindowBuffer is the span before a cycle start during which a
	// freshly created workspace counts as belonging to that cycle.
	PreWindowBuffer = 2 * time.Hour
)

// Spec is a parsed quiet hours schedule: a time of day in a timezone.
type Spec struct {
	Hour     int
	Minute   int
	Location *time.Location
	Raw      string
}

// Parse extracts the time of day and timezone from a raw platform schedule
// such as "CRON_TZ=Europe/London 32 13 * * *". Only the minute, hour and
// timezone fields are honored. Errors wrap model.ErrScheduleParse.
func Parse(raw string) (*Spec, error) {
	if !strings.HasPrefix(raw, "CRON_TZ=") {
		return nil, fmt.Errorf("%w: missing CRON_TZ prefix in %q", model.ErrScheduleParse, raw)
	}
	parts := strings.Fields(raw)
	if len(parts) < 6 {
		return nil, fmt.Errorf("%w: want 6 fields, got %d in %q", model.ErrScheduleParse, len(parts), raw)
	}

	tzName := strings.TrimPrefix(parts[0], "CRON_TZ=")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", model.ErrScheduleParse, tzName)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("%w: invalid minute %q", model.ErrScheduleParse, parts[1])
	}
	hour, err := strconv.Atoi(parts[2])
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: invalid hour %q", model.ErrScheduleParse, parts[2])
	}

	return &Spec{Hour: hour, Minute: minute, Location: loc, Raw: raw}, nil
}

// Window computes the quiet window of the cycle active at now. The start is
// the most recent occurrence of the scheduled time of day at or before now in
// the schedule's timezone; the window may span midnight. If the end lands
// within MidnightGuard of local midnight it is extended just past the day
// boundary so callers never compare instants at the rollover itself.
func (s *Spec) Window(now time.Time, duration time.Duration) model.QuietWindow {
	local := now.In(s.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, s.Location)
	if start.After(local) {
		start = start.AddDate(0, 0, -1)
	}
	end := start.Add(duration)

	midnight := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, s.Location).AddDate(0, 0, 1)
	if deficit := midnight.Sub(end); deficit > 0 && deficit <= MidnightGuard {
		end = midnight.Add(time.Minute)
	}

	return model.QuietWindow{Start: start, End: end, Timezone: s.Location.String()}
}

// Resolve parses raw and computes the active window in one step.
func Resolve(raw string, now time.Time, duration time.Duration) (model.QuietWindow, error) {
	spec, err := Parse(raw)
	if err != nil {
		return model.QuietWindow{}, err
	}
	return spec.Window(now, duration), nil
}

// InGuaranteedRuntime reports whether a workspace created at createdAt is
// still inside its guaranteed runtime for window w at instant now. A
// workspace created within PreWindowBuffer of the next cycle start belongs
// to that upcoming cycle instead of being immediately actionable.
func InGuaranteedRuntime(w model.QuietWindow, now, createdAt time.Time) bool {
	if now.Before(w.End) {
		return true
	}
	return !createdAt.Before(w.NextStart().Add(-PreWindowBuffer))
}
