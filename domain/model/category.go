package model

// Category is the single lifecycle label assigned to a workspace during one
// evaluation. Every eligible workspace receives exactly one Category.
type Category string

const (
	// CategoryExcluded marks workspaces whose owner or template is protected.
	CategoryExcluded Category = "excluded"
	// CategoryTTLExpired marks running workspaces whose TTL deadline passed.
	CategoryTTLExpired Category = "ttl_expired"
	// CategoryQuietStopping marks running workspaces inside global quiet
	// hours with the grace period elapsed.
	CategoryQuietStopping Category = "quiet_hours_stopping"
	// CategoryQuietGrace marks running workspaces inside global quiet hours
	// while the grace period is still active.
	CategoryQuietGrace Category = "quiet_hours_grace"
	// CategoryPastQuietEnd marks workspaces still running after the global
	// quiet hours interval ended.
	CategoryPastQuietEnd Category = "past_quiet_hours_end"
	// CategoryWithinOwnerWindow marks workspaces inside their owner's
	// guaranteed quiet hours runtime.
	CategoryWithinOwnerWindow Category = "within_owner_window"
	// CategoryPastOwnerWindow marks workspaces whose owner window elapsed.
	CategoryPastOwnerWindow Category = "past_owner_window"
	// CategoryRunningNormally marks running workspaces no rule applies to.
	CategoryRunningNormally Category = "running_normally"
	// CategoryStopped marks workspaces whose latest build is not running.
	CategoryStopped Category = "stopped"
)

// Categories lists all categories in classification priority order.
var Categories = []Category{
	CategoryExcluded,
	CategoryTTLExpired,
	CategoryQuietStopping,
	CategoryQuietGrace,
	CategoryPastQuietEnd,
	CategoryWithinOwnerWindow,
	CategoryPastOwnerWindow,
	CategoryRunningNormally,
	CategoryStopped,
}

// Actionable reports whether workspaces in this category are eligible for a
// stop operation. TTL-expired workspaces require the force flag; workspaces
// past their owner window require owner-window enforcement to be enabled.
func (c Category) Actionable(force, enforceOwnerWindow bool) bool {
	switch c {
	case CategoryQuietStopping:
		return true
	case CategoryTTLExpired:
		return force
	case CategoryPastOwnerWindow:
		return enforceOwnerWindow
	default:
		return false
	}
}

// StopReason returns the human-readable reason attached to stop requests for
// workspaces in this category.
func (c Category) StopReason() string {
	switch c {
	case CategoryTTLExpired:
		return "Automated stop - TTL expired"
	case CategoryQuietStopping:
		return "Automated stop - quiet hours policy"
	case CategoryPastOwnerWindow:
		return "Automated stop - owner quiet hours elapsed"
	default:
		return "Automated stop"
	}
}
