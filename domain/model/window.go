package model

import "time"

// QuietWindow is the concrete [Start, End) interval of one owner's quiet
// hours cycle for a single evaluation. End is never before Start.
type QuietWindow struct {
	Start    time.Time
	End      time.Time
	Timezone string
}

// Contains reports whether t falls inside the window.
func (w QuietWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Ended reports whether the window has fully elapsed at instant t.
func (w QuietWindow) Ended(t time.Time) bool {
	return !t.Before(w.End)
}

// NextStart returns the start of the following daily cycle.
func (w QuietWindow) NextStart() time.Time {
	return w.Start.AddDate(0, 0, 1)
}

// Duration returns the window length.
func (w QuietWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
