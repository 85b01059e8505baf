// Package nightshiftcfg defines the configuration schema for nightshift.yml
// (or nightshift.json). Loading and validation helpers live alongside.
package nightshiftcfg

// Root is the root structure of the configuration document.
type Root struct {
	Version    string     `yaml:"version" json:"version"`
	URL        string     `yaml:"url" json:"url"`     // platform base URL
	Token      string     `yaml:"token" json:"token"` // session token, usually from env
	QuietHours QuietHours `yaml:"quiet_hours" json:"quiet_hours"`
	Prune      Prune      `yaml:"prune_workspaces" json:"prune_workspaces"`
	Executor   Executor   `yaml:"executor" json:"executor"`
	History    History    `yaml:"history" json:"history"`
	DryRun     bool       `yaml:"dry_run" json:"dry_run"`
}

// QuietHours is the global (deployment-wide) quiet hours policy.
type QuietHours struct {
	Enabled           bool     `yaml:"enabled" json:"enabled"`
	StartTime         string   `yaml:"start_time" json:"start_time"` // "HH:MM"
	EndTime           string   `yaml:"end_time" json:"end_time"`     // "HH:MM"
	Timezone          string   `yaml:"timezone" json:"timezone"`
	GracePeriodHours  int      `yaml:"grace_period_hours" json:"grace_period_hours"`
	ExcludedUsers     []string `yaml:"excluded_users" json:"excluded_users"`
	ExcludedTemplates []string `yaml:"excluded_templates" json:"excluded_templates"`
}

// Prune configures per-owner quiet window pruning and the entity filters.
type Prune struct {
	Enabled            bool     `yaml:"enabled" json:"enabled"`
	DurationHours      int      `yaml:"default_quiet_hours_duration" json:"default_quiet_hours_duration"`
	EnforceOwnerWindow bool     `yaml:"enforce_owner_window" json:"enforce_owner_window"`
	IncludeOrgs        []string `yaml:"include_organizations" json:"include_organizations"`
	ExcludeOrgs        []string `yaml:"exclude_organizations" json:"exclude_organizations"`
	IncludeGroups      []string `yaml:"include_groups" json:"include_groups"`
	ExcludeGroups      []string `yaml:"exclude_groups" json:"exclude_groups"`
	IncludeUsers       []string `yaml:"include_users" json:"include_users"`
	ExcludeUsers       []string `yaml:"exclude_users" json:"exclude_users"`
	IncludeTemplates   []string `yaml:"include_templates" json:"include_templates"`
	ExcludeTemplates   []string `yaml:"exclude_templates" json:"exclude_templates"`
}

// Executor configures the stop execution engine.
type Executor struct {
	MaxStopsPerMinute int      `yaml:"max_stops_per_minute" json:"max_stops_per_minute"`
	Workers           int      `yaml:"workers" json:"workers"`
	MaxAttempts       int      `yaml:"max_attempts" json:"max_attempts"`
	RequestTimeoutSec int      `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	Reasons           []string `yaml:"reasons" json:"reasons"` // accepted reason strings, in fallback order
}

// History configures the optional write-only run history sink.
type History struct {
	URL string `yaml:"url" json:"url"` // e.g. sqlite:./nightshift-history.db, empty disables
}

// Default returns the built-in configuration, matching the platform's
// conventional policy values.
func Default() *Root {
	return &Root{
		Version: "1",
		QuietHours: QuietHours{
			Enabled:          true,
			StartTime:        "18:00",
			EndTime:          "08:00",
			Timezone:         "UTC",
			GracePeriodHours: 1,
		},
		Prune: Prune{
			Enabled:       true,
			DurationHours: 8,
			ExcludeUsers:  []string{"admin"},
		},
		Executor: Executor{
			MaxStopsPerMinute: 10,
			Workers:           5,
			MaxAttempts:       4,
			RequestTimeoutSec: 30,
			Reasons:           []string{"initiator", "autostart", "autostop", "shutdown"},
		},
	}
}
