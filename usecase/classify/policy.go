package classify

import (
	"fmt"
	"time"
)

// Policy is the deployment-wide quiet hours interval with its grace period.
type Policy struct {
	Enabled  bool
	Start    dayMinute
	End      dayMinute
	Location *time.Location
	Grace    time.Duration
}

// dayMinute is a time of day in minutes since local midnight.
type dayMinute int

func parseDayMinute(s string) (dayMinute, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	return dayMinute(t.Hour()*60 + t.Minute()), nil
}

// NewPolicy builds a Policy from "HH:MM" bounds, a timezone name and a grace
// period in hours.
func NewPolicy(start, end, tz string, graceHours int, enabled bool) (Policy, error) {
	s, err := parseDayMinute(start)
	if err != nil {
		return Policy{}, fmt.Errorf("quiet hours start: %w", err)
	}
	e, err := parseDayMinute(end)
	if err != nil {
		return Policy{}, fmt.Errorf("quiet hours end: %w", err)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Policy{}, fmt.Errorf("quiet hours timezone: %w", err)
	}
	return Policy{
		Enabled:  enabled,
		Start:    s,
		End:      e,
		Location: loc,
		Grace:    time.Duration(graceHours) * time.Hour,
	}, nil
}

func (p Policy) local(now time.Time) time.Time { return now.In(p.Location) }

func minuteOfDay(t time.Time) dayMinute { return dayMinute(t.Hour()*60 + t.Minute()) }

// Active reports whether now falls inside the quiet hours interval. An
// interval whose start is after its end spans midnight.
func (p Policy) Active(now time.Time) bool {
	if !p.Enabled {
		return false
	}
	cur := minuteOfDay(p.local(now))
	if p.Start > p.End {
		return cur >= p.Start || cur <= p.End
	}
	return cur >= p.Start && cur <= p.End
}

// activeStart returns the start instant of the quiet hours cycle active at
// now: today's occurrence, or yesterday's when the start has not yet come
// around today.
func (p Policy) activeStart(now time.Time) time.Time {
	local := p.local(now)
	start := time.Date(local.Year(), local.Month(), local.Day(), int(p.Start)/60, int(p.Start)%60, 0, 0, p.Location)
	if minuteOfDay(local) < p.Start {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// GraceElapsed reports whether quiet hours are active and the grace period
// after their start has passed.
func (p Policy) GraceElapsed(now time.Time) bool {
	if !p.Active(now) {
		return false
	}
	return !p.local(now).Before(p.activeStart(now).Add(p.Grace))
}

// GraceEnds returns the instant enforcement begins for the active cycle.
func (p Policy) GraceEnds(now time.Time) time.Time {
	return p.activeStart(now).Add(p.Grace)
}

// PastEnd reports whether now is after the end of the quiet hours interval.
func (p Policy) PastEnd(now time.Time) bool {
	if !p.Enabled {
		return false
	}
	local := p.local(now)
	end := time.Date(local.Year(), local.Month(), local.Day(), int(p.End)/60, int(p.End)%60, 0, 0, p.Location)
	if p.Start > p.End && minuteOfDay(local) >= p.Start {
		// Overnight interval and we are after its start: it ends tomorrow.
		end = end.AddDate(0, 0, 1)
	}
	return local.After(end)
}
