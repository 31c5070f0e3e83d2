// Package gateway is the request/response boundary to the remote
// tracker. Every operation either returns the authoritative entity or
// a typed *Error; nothing here touches local state.
package gateway

import (
	"context"

	"github.com/jiralite/jl/internal/models"
)

// IssueFilters narrows an issue listing. Zero values mean "all".
type IssueFilters struct {
	ProjectID  int64
	Status     models.Status
	AssigneeID int64
	Priority   models.Priority
}

// IssueCreate is the payload for creating an issue.
type IssueCreate struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ProjectID   int64           `json:"project_id"`
	AssigneeID  int64           `json:"assignee_id,omitempty"`
	DueDate     string          `json:"due_date,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	LabelIDs    []int64         `json:"label_ids,omitempty"`
}

// IssueUpdate is the payload for updating an issue. Nil fields are
// left untouched server-side.
type IssueUpdate struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	AssigneeID  *int64           `json:"assignee_id,omitempty"`
	DueDate     *string          `json:"due_date,omitempty"`
	Status      *models.Status   `json:"status,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	LabelIDs    []int64          `json:"label_ids,omitempty"`
}

// ProjectCreate is the payload for creating a project.
type ProjectCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TeamID      int64  `json:"team_id"`
}

// SubtaskUpdate is the payload for updating a subtask.
type SubtaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// Gateway is the full remote operation set. All operations are safe to
// retry at the caller's discretion except the create operations, which
// are never auto-retried to avoid duplicate creation.
type Gateway interface {
	// Auth
	Signup(ctx context.Context, email, name, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (token string, err error)
	CurrentUser(ctx context.Context) (models.User, error)

	// Teams
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id int64) (models.TeamDetail, error)
	CreateTeam(ctx context.Context, name string) (models.Team, error)

	// Projects
	ListProjects(ctx context.Context, teamID int64) ([]models.Project, error)
	CreateProject(ctx context.Context, payload ProjectCreate) (models.Project, error)
	ArchiveProject(ctx context.Context, id int64) error
	UnarchiveProject(ctx context.Context, id int64) error
	FavoriteProject(ctx context.Context, id int64) error
	UnfavoriteProject(ctx context.Context, id int64) error

	// Issues
	ListIssues(ctx context.Context, filters IssueFilters) ([]models.Issue, error)
	CreateIssue(ctx context.Context, payload IssueCreate) (models.Issue, error)
	UpdateIssue(ctx context.Context, id int64, payload IssueUpdate) (models.Issue, error)
	UpdateIssueStatus(ctx context.Context, id int64, status models.Status) (models.Issue, error)
	DeleteIssue(ctx context.Context, id int64) error

	// Subtasks
	CreateSubtask(ctx context.Context, issueID int64, title string) (models.Subtask, error)
	UpdateSubtask(ctx context.Context, issueID, subtaskID int64, payload SubtaskUpdate) (models.Subtask, error)

	// Comments
	ListComments(ctx context.Context, issueID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, issueID int64, content string) (models.Comment, error)

	// Notifications
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error

	// Generated-text pass-throughs. No local state; the text comes
	// back verbatim from the remote service.
	IssueSummary(ctx context.Context, issueID int64) (string, error)
	IssueSuggestion(ctx context.Context, issueID int64) (string, error)
}
