package main

import (
	"fmt"
	"time"
)

// formatRemaining renders a duration until a deadline the way a person reads
// it, e.g. "2h 15m" or "45m". Negative durations read as "expired".
func formatRemaining(d time.Duration) string {
	if d < 0 {
		return "expired"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// formatClock renders an instant in the given location as "15:04 MST".
func formatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04 MST")
}
