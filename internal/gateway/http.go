package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jiralite/jl/internal/models"
)

// CredentialSource supplies the bearer token attached to every
// request. An empty token sends the request unauthenticated.
type CredentialSource interface {
	Token() string
}

// Client is the HTTP implementation of Gateway against the tracker's
// REST surface.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource

	// onUnauthorized fires once per 401 response, before the typed
	// error is returned. Used by the session layer for global teardown.
	onUnauthorized func()
}

var _ Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUnauthorizedHook registers the 401 teardown callback.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient builds a gateway client rooted at baseURL (for example
// "http://localhost:8000"). The /api prefix is appended internally.
func NewClient(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL + "/api",
		http:    &http.Client{Timeout: 15 * time.Second},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiDetail is the error body the remote authority returns.
type apiDetail struct {
	Detail string `json:"detail"`
}

// do performs a request and decodes the response body into out when
// out is non-nil. Failures are always returned as *Error.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Op: op, Message: "encode request", Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(op, resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindTransport, Op: op, Message: "decode response", Err: err}
	}
	return nil
}

func (c *Client) errorFromResponse(op string, resp *http.Response) error {
	var detail apiDetail
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(data, &detail); err != nil || detail.Detail == "" {
		detail.Detail = http.StatusText(resp.StatusCode)
	}

	var kind ErrorKind
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = KindUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = KindNotFound
	case resp.StatusCode == http.StatusConflict:
		kind = KindConflict
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		kind = KindValidation
	default:
		kind = KindTransport
	}

	if kind == KindUnauthorized && c.onUnauthorized != nil {
		slog.Warn("session invalidated by remote", "op", op)
		c.onUnauthorized()
	}

	return &Error{Kind: kind, Op: op, Message: detail.Detail}
}

// ---- Auth ----

func (c *Client) Signup(ctx context.Context, email, name, password string) (models.User, error) {
	var user models.User
	payload := map[string]string{"email": email, "name": name, "password": password}
	err := c.do(ctx, "auth.signup", http.MethodPost, "/auth/signup", nil, payload, &user)
	return user, err
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, payload, &token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, "auth.me", http.MethodGet, "/auth/me", nil, nil, &user)
	return user, err
}

// ---- Teams ----

func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := c.do(ctx, "teams.list", http.MethodGet, "/teams", nil, nil, &teams)
	return teams, err
}

func (c *Client) GetTeam(ctx context.Context, id int64) (models.TeamDetail, error) {
	var detail models.TeamDetail
	err := c.do(ctx, "teams.get", http.MethodGet, "/teams/"+itoa(id), nil, nil, &detail)
	return detail, err
}

func (c *Client) CreateTeam(ctx context.Context, name string) (models.Team, error) {
	var team models.Team
	err := c.do(ctx, "teams.create", http.MethodPost, "/teams", nil, map[string]string{"name": name}, &team)
	return team, err
}

// ---- Projects ----

func (c *Client) ListProjects(ctx context.Context, teamID int64) ([]models.Project, error) {
	var query url.Values
	if teamID != 0 {
		query = url.Values{"team_id": {itoa(teamID)}}
	}
	var projects []models.Project
	err := c.do(ctx, "projects.list", http.MethodGet, "/projects", query, nil, &projects)
	return projects, err
}

func (c *Client) CreateProject(ctx context.Context, payload ProjectCreate) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, "projects.create", http.MethodPost, "/projects", nil, payload, &project)
	return project, err
}

func (c *Client) ArchiveProject(ctx context.Context, id int64) error {
	return c.do(ctx, "projects.archive", http.MethodPost, "/projects/"+itoa(id)+"/archive", nil, nil, nil)
}

func (c *Client) UnarchiveProject(ctx context.Context, id int64) error {
	return c.do(ctx, "projects.unarchive", http.MethodPost, "/projects/"+itoa(id)+"/unarchive", nil, nil, nil)
}

func (c *Client) FavoriteProject(ctx context.Context, id int64) error {
	return c.do(ctx, "projects.favorite", http.MethodPost, "/projects/"+itoa(id)+"/favorite", nil, nil, nil)
}

func (c *Client) UnfavoriteProject(ctx context.Context, id int64) error {
	return c.do(ctx, "projects.unfavorite", http.MethodDelete, "/projects/"+itoa(id)+"/favorite", nil, nil, nil)
}

// ---- Issues ----

func (c *Client) ListIssues(ctx context.Context, filters IssueFilters) ([]models.Issue, error) {
	query := url.Values{}
	if filters.ProjectID != 0 {
		query.Set("project_id", itoa(filters.ProjectID))
	}
	if filters.Status != "" {
		query.Set("status", string(filters.Status))
	}
	if filters.AssigneeID != 0 {
		query.Set("assignee_id", itoa(filters.AssigneeID))
	}
	if filters.Priority != "" {
		query.Set("priority", string(filters.Priority))
	}
	var issues []models.Issue
	err := c.do(ctx, "issues.list", http.MethodGet, "/issues", query, nil, &issues)
	return issues, err
}

func (c *Client) CreateIssue(ctx context.Context, payload IssueCreate) (models.Issue, error) {
	var issue models.Issue
	err := c.do(ctx, "issues.create", http.MethodPost, "/issues", nil, payload, &issue)
	return issue, err
}

func (c *Client) UpdateIssue(ctx context.Context, id int64, payload IssueUpdate) (models.Issue, error) {
	var issue models.Issue
	err := c.do(ctx, "issues.update", http.MethodPut, "/issues/"+itoa(id), nil, payload, &issue)
	return issue, err
}

func (c *Client) UpdateIssueStatus(ctx context.Context, id int64, status models.Status) (models.Issue, error) {
	var issue models.Issue
	payload := map[string]string{"status": string(status)}
	err := c.do(ctx, "issues.status", http.MethodPatch, "/issues/"+itoa(id)+"/status", nil, payload, &issue)
	return issue, err
}

func (c *Client) DeleteIssue(ctx context.Context, id int64) error {
	return c.do(ctx, "issues.delete", http.MethodDelete, "/issues/"+itoa(id), nil, nil, nil)
}

// ---- Subtasks ----

func (c *Client) CreateSubtask(ctx context.Context, issueID int64, title string) (models.Subtask, error) {
	var subtask models.Subtask
	payload := map[string]string{"title": title}
	err := c.do(ctx, "subtasks.create", http.MethodPost, "/issues/"+itoa(issueID)+"/subtasks", nil, payload, &subtask)
	return subtask, err
}

func (c *Client) UpdateSubtask(ctx context.Context, issueID, subtaskID int64, payload SubtaskUpdate) (models.Subtask, error) {
	var subtask models.Subtask
	path := "/issues/" + itoa(issueID) + "/subtasks/" + itoa(subtaskID)
	err := c.do(ctx, "subtasks.update", http.MethodPut, path, nil, payload, &subtask)
	return subtask, err
}

// ---- Comments ----

func (c *Client) ListComments(ctx context.Context, issueID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.do(ctx, "comments.list", http.MethodGet, "/comments/issue/"+itoa(issueID), nil, nil, &comments)
	return comments, err
}

func (c *Client) CreateComment(ctx context.Context, issueID int64, content string) (models.Comment, error) {
	var comment models.Comment
	payload := map[string]any{"issue_id": issueID, "content": content}
	err := c.do(ctx, "comments.create", http.MethodPost, "/comments", nil, payload, &comment)
	return comment, err
}

// ---- Notifications ----

func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	err := c.do(ctx, "notifications.list", http.MethodGet, "/notifications", nil, nil, &notifications)
	return notifications, err
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var count struct {
		UnreadCount int `json:"unread_count"`
	}
	err := c.do(ctx, "notifications.unread", http.MethodGet, "/notifications/unread-count", nil, nil, &count)
	return count.UnreadCount, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, "notifications.read", http.MethodPatch, "/notifications/"+itoa(id)+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, "notifications.readall", http.MethodPost, "/notifications/mark-all-read", nil, nil, nil)
}

// ---- Generated text ----

func (c *Client) IssueSummary(ctx context.Context, issueID int64) (string, error) {
	var resp struct {
		Summary string `json:"summary"`
	}
	err := c.do(ctx, "issues.summary", http.MethodPost, "/issues/"+itoa(issueID)+"/ai/summary", nil, nil, &resp)
	return resp.Summary, err
}

func (c *Client) IssueSuggestion(ctx context.Context, issueID int64) (string, error) {
	var resp struct {
		Suggestion string `json:"suggestion"`
	}
	err := c.do(ctx, "issues.suggestion", http.MethodPost, "/issues/"+itoa(issueID)+"/ai/suggestion", nil, nil, &resp)
	return resp.Suggestion, err
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
