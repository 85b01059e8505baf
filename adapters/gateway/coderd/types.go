package coderd

// Wire representations of the platform's v2 API payloads. Only the fields
// this agent consumes are declared.

type workspacesResponse struct {
	Workspaces []workspaceJSON `json:"workspaces"`
	Count      int             `json:"count"`
}

type workspaceJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name"`
	TemplateID  string    `json:"template_id"`
	CreatedAt   string    `json:"created_at"`
	LatestBuild buildJSON `json:"latest_build"`
}

type buildJSON struct {
	Status   string `json:"status"`
	Deadline string `json:"deadline"`
}

type usersResponse struct {
	Users []userJSON `json:"users"`
}

type userJSON struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	OrganizationIDs []string `json:"organization_ids"`
}

type organizationJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type groupJSON struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	OrganizationID string     `json:"organization_id"`
	Members        []userJSON `json:"members"`
}

type templateJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type quietHoursResponse struct {
	RawSchedule string `json:"raw_schedule"`
	UserSet     bool   `json:"user_set"`
	UserCanSet  bool   `json:"user_can_set"`
}

type deploymentConfigResponse struct {
	Config deploymentValues `json:"config"`
}

type deploymentValues struct {
	UserQuietHoursSchedule quietHoursScheduleConfig `json:"user_quiet_hours_schedule"`
}

type quietHoursScheduleConfig struct {
	DefaultSchedule string `json:"default_schedule"`
	AllowUserCustom bool   `json:"allow_user_custom"`
}

type createBuildRequest struct {
	Transition string `json:"transition"`
	Reason     string `json:"reason,omitempty"`
}

type apiError struct {
	Message     string          `json:"message"`
	Detail      string          `json:"detail"`
	Validations []apiValidation `json:"validations"`
}

type apiValidation struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}
