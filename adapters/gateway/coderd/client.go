// Package coderd implements domain.Gateway against the platform's v2 REST
// API using an already-issued session token.
package coderd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coderops/nightshift/domain/model"
)

const sessionTokenHeader = "Coder-Session-Token"

// Client talks to one platform deployment. Every request carries the bounded
// timeout of the underlying http.Client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client for the given base URL and session token. A URL
// without a scheme is assumed to be https.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("platform URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid platform URL: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("session token is required")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionTokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	serr := &statusError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(data, &serr.API)
	if serr.API.Message == "" {
		serr.API.Message = strings.TrimSpace(string(data))
	}
	return serr
}

// statusError carries the HTTP status and decoded body of a non-2xx response.
type statusError struct {
	Status int
	API    apiError
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.API.Message)
}

func (e *statusError) mentionsReason() bool {
	if strings.Contains(strings.ToLower(e.API.Message), "reason") {
		return true
	}
	for _, v := range e.API.Validations {
		if v.Field == "reason" || strings.Contains(strings.ToLower(v.Detail), "reason") {
			return true
		}
	}
	return false
}

// Ping verifies the platform is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	var out workspacesResponse
	return c.do(ctx, http.MethodGet, "/api/v2/workspaces", nil, &out)
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]*model.Workspace, error) {
	var out workspacesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v2/workspaces", nil, &out); err != nil {
		return nil, err
	}
	workspaces := make([]*model.Workspace, 0, len(out.Workspaces))
	for _, w := range out.Workspaces {
		ws := &model.Workspace{
			ID:          w.ID,
			Name:        w.Name,
			OwnerID:     w.OwnerID,
			OwnerName:   w.OwnerName,
			TemplateID:  w.TemplateID,
			Status:      model.ParseWorkspaceStatus(w.LatestBuild.Status),
			TTLDeadline: w.LatestBuild.Deadline,
		}
		// created_at stays zero if unparseable; classification tolerates it.
		if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			ws.CreatedAt = t
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]*model.User, error) {
	var out usersResponse
	if err := c.do(ctx, http.MethodGet, "/api/v2/users", nil, &out); err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(out.Users))
	for _, u := range out.Users {
		users = append(users, &model.User{
			ID:              u.ID,
			Username:        u.Username,
			Email:           u.Email,
			OrganizationIDs: u.OrganizationIDs,
		})
	}
	return users, nil
}

func (c *Client) ListOrganizations(ctx context.Context) ([]*model.Organization, error) {
	var out []organizationJSON
	if err := c.do(ctx, http.MethodGet, "/api/v2/organizations", nil, &out); err != nil {
		return nil, err
	}
	orgs := make([]*model.Organization, 0, len(out))
	for _, o := range out {
		orgs = append(orgs, &model.Organization{ID: o.ID, Name: o.Name})
	}
	return orgs, nil
}

func (c *Client) ListGroups(ctx context.Context) ([]*model.Group, error) {
	var out []groupJSON
	if err := c.do(ctx, http.MethodGet, "/api/v2/groups", nil, &out); err != nil {
		return nil, err
	}
	groups := make([]*model.Group, 0, len(out))
	for _, g := range out {
		grp := &model.Group{ID: g.ID, Name: g.Name, OrganizationID: g.OrganizationID}
		for _, m := range g.Members {
			grp.MemberIDs = append(grp.MemberIDs, m.ID)
		}
		groups = append(groups, grp)
	}
	return groups, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]*model.Template, error) {
	var out []templateJSON
	if err := c.do(ctx, http.MethodGet, "/api/v2/templates", nil, &out); err != nil {
		return nil, err
	}
	templates := make([]*model.Template, 0, len(out))
	for _, t := range out {
		templates = append(templates, &model.Template{ID: t.ID, Name: t.Name})
	}
	return templates, nil
}

func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]*model.User, error) {
	var out []userJSON
	if err := c.do(ctx, http.MethodGet, "/api/v2/groups/"+url.PathEscape(groupID)+"/members", nil, &out); err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(out))
	for _, u := range out {
		users = append(users, &model.User{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	return users, nil
}

// UserQuietHours returns nil without error when the user has no schedule.
func (c *Client) UserQuietHours(ctx context.Context, username string) (*model.QuietHoursSchedule, error) {
	var out quietHoursResponse
	err := c.do(ctx, http.MethodGet, "/api/v2/users/"+url.PathEscape(username)+"/quiet-hours", nil, &out)
	if err != nil {
		var serr *statusError
		if errors.As(err, &serr) && serr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if out.RawSchedule == "" {
		return nil, nil
	}
	return &model.QuietHoursSchedule{
		RawSchedule: out.RawSchedule,
		UserSet:     out.UserSet,
		UserCanSet:  out.UserCanSet,
	}, nil
}

// DefaultQuietHours returns the deployment-wide default schedule, nil when
// the deployment does not define one.
func (c *Client) DefaultQuietHours(ctx context.Context) (*model.QuietHoursSchedule, error) {
	var out deploymentConfigResponse
	if err := c.do(ctx, http.MethodGet, "/api/v2/deployment/config", nil, &out); err != nil {
		return nil, err
	}
	raw := out.Config.UserQuietHoursSchedule.DefaultSchedule
	if raw == "" {
		return nil, nil
	}
	return &model.QuietHoursSchedule{RawSchedule: raw}, nil
}

// StopWorkspace creates a stop build with the given reason string. Failures
// are classified for the executor: timeouts and 5xx are transient,
// reason-validation refusals are rejections, everything else is permanent.
func (c *Client) StopWorkspace(ctx context.Context, workspaceID, reason string) error {
	req := createBuildRequest{Transition: "stop", Reason: reason}
	err := c.do(ctx, http.MethodPost, "/api/v2/workspaces/"+url.PathEscape(workspaceID)+"/builds", req, nil)
	if err == nil {
		return nil
	}
	var serr *statusError
	if !errors.As(err, &serr) {
		// Connection errors and client timeouts are recoverable per item.
		return fmt.Errorf("%w: %v", model.ErrStopTransient, err)
	}
	switch {
	case serr.Status >= 500:
		return fmt.Errorf("%w: %v", model.ErrStopTransient, serr)
	case serr.Status == http.StatusBadRequest && serr.mentionsReason():
		return fmt.Errorf("%w: %s", model.ErrStopRejected, serr.API.Message)
	default:
		return fmt.Errorf("%w: %v", model.ErrStopPermanent, serr)
	}
}
