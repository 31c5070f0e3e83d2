// Package models defines the entities synchronized with the remote
// tracker and the closed enum sets they use.
package models

import "time"

// Status is the workflow state of an issue.
type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusDone       Status = "DONE"
)

// AllStatuses returns all valid statuses in board column order.
func AllStatuses() []Status {
	return []Status{
		StatusBacklog,
		StatusInProgress,
		StatusReview,
		StatusDone,
	}
}

// IsValidStatus reports whether s is one of the four closed status values.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// StatusLabel returns the display label for a status.
func StatusLabel(s Status) string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "In Review"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Priority is the urgency of an issue.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TeamRole is a member's role within a team.
type TeamRole string

const (
	RoleOwner  TeamRole = "OWNER"
	RoleAdmin  TeamRole = "ADMIN"
	RoleMember TeamRole = "MEMBER"
)

// IsValidTeamRole reports whether r is a known team role.
func IsValidTeamRole(r TeamRole) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// User is an account on the remote tracker. The id is immutable and
// email is unique across users.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image,omitempty"`
	IsOAuth      bool      `json:"is_oauth"`
	CreatedAt    time.Time `json:"created_at"`
}

// Team groups projects and members under a single owner.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamMember is a user's membership row in a team. Exactly one member
// per team holds RoleOwner.
type TeamMember struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Role      TeamRole  `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// TeamDetail is a team with its member list, as returned by the
// team detail endpoint.
type TeamDetail struct {
	Team
	Members []TeamMember `json:"members"`
}

// Project belongs to exactly one team. Archived projects are excluded
// from active listings unless explicitly requested. The wire payload
// names the favorite flag "is_favorited"; IsFavorite is the canonical
// field everywhere in this codebase.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TeamID      int64     `json:"team_id"`
	OwnerID     int64     `json:"owner_id"`
	IsArchived  bool      `json:"is_archived"`
	IsFavorite  bool      `json:"is_favorited"`
	IssueCount  int       `json:"issue_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Label is a colored tag scoped to a project.
type Label struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	ProjectID int64  `json:"project_id"`
}

// Subtask belongs to exactly one issue. Completion is a plain boolean
// toggle with no partial states.
type Subtask struct {
	ID          int64     `json:"id"`
	IssueID     int64     `json:"issue_id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is append-only from the client's perspective; the core has
// no local edit or delete path for comments.
type Comment struct {
	ID         int64     `json:"id"`
	IssueID    int64     `json:"issue_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Issue belongs to exactly one project. Position gives a stable
// ordering within a (project, status) partition.
type Issue struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"project_id"`
	CreatorID    int64      `json:"creator_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	AssigneeID   int64      `json:"assignee_id,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	CreatorName  string     `json:"creator_name,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Position     int        `json:"position"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Labels       []Label    `json:"labels"`
	Subtasks     []Subtask  `json:"subtasks"`
	Comments     []Comment  `json:"-"`
}

// Clone returns a deep copy of the issue, including nested labels,
// subtasks, and comments. Rollback correctness depends on snapshots
// never aliasing live records.
func (i Issue) Clone() Issue {
	out := i
	if i.DueDate != nil {
		d := *i.DueDate
		out.DueDate = &d
	}
	if i.Labels != nil {
		out.Labels = make([]Label, len(i.Labels))
		copy(out.Labels, i.Labels)
	}
	if i.Subtasks != nil {
		out.Subtasks = make([]Subtask, len(i.Subtasks))
		copy(out.Subtasks, i.Subtasks)
	}
	if i.Comments != nil {
		out.Comments = make([]Comment, len(i.Comments))
		copy(out.Comments, i.Comments)
	}
	return out
}

// CompletedSubtasks returns how many of the issue's subtasks are done.
func (i Issue) CompletedSubtasks() int {
	n := 0
	for _, st := range i.Subtasks {
		if st.IsCompleted {
			n++
		}
	}
	return n
}

// Notification is a per-user message. is_read transitions only from
// false to true, never back.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	IssueID   int64     `json:"issue_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
