package model

// User is a platform account that can own workspaces.
type User struct {
	ID              string
	Username        string
	Email           string
	OrganizationIDs []string
}

// Organization is a top-level tenant on the platform. Identity and name only;
// used for filter matching.
type Organization struct {
	ID   string
	Name string
}

// Group is a named collection of users scoped to an organization.
type Group struct {
	ID             string
	Name           string
	OrganizationID string
	MemberIDs      []string
}

// Template identifies the blueprint a workspace was created from.
type Template struct {
	ID   string
	Name string
}

// QuietHoursSchedule is the raw per-user quiet hours configuration as served
// by the platform, e.g. "CRON_TZ=Europe/London 32 13 * * *".
type QuietHoursSchedule struct {
	RawSchedule string
	UserSet     bool
	UserCanSet  bool
}
