package nightshiftcfg

import (
	"fmt"
	"time"
)

// Validate performs semantic validation on the configuration tree.
func (r *Root) Validate() error {
	if err := r.QuietHours.validate(); err != nil {
		return fmt.Errorf("quiet_hours: %w", err)
	}
	if err := r.Prune.validate(); err != nil {
		return fmt.Errorf("prune_workspaces: %w", err)
	}
	if err := r.Executor.validate(); err != nil {
		return fmt.Errorf("executor: %w", err)
	}
	return nil
}

func (q *QuietHours) validate() error {
	if _, err := time.Parse("15:04", q.StartTime); err != nil {
		return fmt.Errorf("start_time: invalid time %q (want HH:MM)", q.StartTime)
	}
	if _, err := time.Parse("15:04", q.EndTime); err != nil {
		return fmt.Errorf("end_time: invalid time %q (want HH:MM)", q.EndTime)
	}
	if _, err := time.LoadLocation(q.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if q.GracePeriodHours < 0 {
		return fmt.Errorf("grace_period_hours: cannot be negative")
	}
	return nil
}

func (p *Prune) validate() error {
	if p.DurationHours <= 0 {
		return fmt.Errorf("default_quiet_hours_duration: must be positive")
	}
	return nil
}

func (e *Executor) validate() error {
	if e.MaxStopsPerMinute <= 0 {
		return fmt.Errorf("max_stops_per_minute: must be positive")
	}
	if e.Workers <= 0 {
		return fmt.Errorf("workers: must be positive")
	}
	if e.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts: must be positive")
	}
	if len(e.Reasons) == 0 {
		return fmt.Errorf("reasons: at least one accepted reason string is required")
	}
	return nil
}
