package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/models"
)

// fakeGateway is a programmable in-memory Gateway. Each operation
// records its name, optionally blocks on a gate, and fails when an
// error has been injected for it.
type fakeGateway struct {
	mu     sync.Mutex
	calls  []string
	errs   map[string]error
	gates  map[string]chan struct{}
	nextID int64

	comments map[int64][]models.Comment
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		errs:     make(map[string]error),
		gates:    make(map[string]chan struct{}),
		nextID:   100,
		comments: make(map[int64][]models.Comment),
	}
}

func (f *fakeGateway) failWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

// gate makes op block until the returned release function is called.
func (f *fakeGateway) gate(op string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[op] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeGateway) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeGateway) begin(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	gate := f.gates[op]
	err := f.errs[op]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeGateway) assignID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *fakeGateway) Signup(ctx context.Context, email, name, password string) (models.User, error) {
	if err := f.begin("auth.signup"); err != nil {
		return models.User{}, err
	}
	return models.User{ID: f.assignID(), Email: email, Name: name}, nil
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (string, error) {
	if err := f.begin("auth.login"); err != nil {
		return "", err
	}
	return "fake-token", nil
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (models.User, error) {
	if err := f.begin("auth.me"); err != nil {
		return models.User{}, err
	}
	return models.User{ID: 1, Name: "tester"}, nil
}

func (f *fakeGateway) ListTeams(ctx context.Context) ([]models.Team, error) {
	if err := f.begin("teams.list"); err != nil {
		return nil, err
	}
	return []models.Team{{ID: 1, Name: "Core", OwnerID: 1}}, nil
}

func (f *fakeGateway) GetTeam(ctx context.Context, id int64) (models.TeamDetail, error) {
	if err := f.begin("teams.get"); err != nil {
		return models.TeamDetail{}, err
	}
	return models.TeamDetail{Team: models.Team{ID: id, Name: "Core", OwnerID: 1}}, nil
}

func (f *fakeGateway) CreateTeam(ctx context.Context, name string) (models.Team, error) {
	if err := f.begin("teams.create"); err != nil {
		return models.Team{}, err
	}
	return models.Team{ID: f.assignID(), Name: name, OwnerID: 1, CreatedAt: time.Now()}, nil
}

func (f *fakeGateway) ListProjects(ctx context.Context, teamID int64) ([]models.Project, error) {
	if err := f.begin("projects.list"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeGateway) CreateProject(ctx context.Context, payload gateway.ProjectCreate) (models.Project, error) {
	if err := f.begin("projects.create"); err != nil {
		return models.Project{}, err
	}
	return models.Project{
		ID:          f.assignID(),
		Name:        payload.Name,
		Description: payload.Description,
		TeamID:      payload.TeamID,
		OwnerID:     1,
		CreatedAt:   time.Now(),
	}, nil
}

func (f *fakeGateway) ArchiveProject(ctx context.Context, id int64) error {
	return f.begin("projects.archive")
}

func (f *fakeGateway) UnarchiveProject(ctx context.Context, id int64) error {
	return f.begin("projects.unarchive")
}

func (f *fakeGateway) FavoriteProject(ctx context.Context, id int64) error {
	return f.begin("projects.favorite")
}

func (f *fakeGateway) UnfavoriteProject(ctx context.Context, id int64) error {
	return f.begin("projects.unfavorite")
}

func (f *fakeGateway) ListIssues(ctx context.Context, filters gateway.IssueFilters) ([]models.Issue, error) {
	if err := f.begin("issues.list"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeGateway) CreateIssue(ctx context.Context, payload gateway.IssueCreate) (models.Issue, error) {
	if err := f.begin("issues.create"); err != nil {
		return models.Issue{}, err
	}
	return models.Issue{
		ID:        f.assignID(),
		ProjectID: payload.ProjectID,
		Title:     payload.Title,
		Status:    models.StatusBacklog,
		Priority:  payload.Priority,
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeGateway) UpdateIssue(ctx context.Context, id int64, payload gateway.IssueUpdate) (models.Issue, error) {
	if err := f.begin("issues.update"); err != nil {
		return models.Issue{}, err
	}
	issue := models.Issue{ID: id, Status: models.StatusBacklog, Priority: models.PriorityMedium}
	if payload.Title != nil {
		issue.Title = *payload.Title
	}
	if payload.Status != nil {
		issue.Status = *payload.Status
	}
	if payload.Priority != nil {
		issue.Priority = *payload.Priority
	}
	return issue, nil
}

func (f *fakeGateway) UpdateIssueStatus(ctx context.Context, id int64, status models.Status) (models.Issue, error) {
	if err := f.begin("issues.status"); err != nil {
		return models.Issue{}, err
	}
	return models.Issue{ID: id, Status: status, Priority: models.PriorityMedium}, nil
}

func (f *fakeGateway) DeleteIssue(ctx context.Context, id int64) error {
	return f.begin("issues.delete")
}

func (f *fakeGateway) CreateSubtask(ctx context.Context, issueID int64, title string) (models.Subtask, error) {
	if err := f.begin("subtasks.create"); err != nil {
		return models.Subtask{}, err
	}
	return models.Subtask{ID: f.assignID(), IssueID: issueID, Title: title}, nil
}

func (f *fakeGateway) UpdateSubtask(ctx context.Context, issueID, subtaskID int64, payload gateway.SubtaskUpdate) (models.Subtask, error) {
	if err := f.begin("subtasks.update"); err != nil {
		return models.Subtask{}, err
	}
	st := models.Subtask{ID: subtaskID, IssueID: issueID}
	if payload.IsCompleted != nil {
		st.IsCompleted = *payload.IsCompleted
	}
	if payload.Title != nil {
		st.Title = *payload.Title
	}
	return st, nil
}

func (f *fakeGateway) ListComments(ctx context.Context, issueID int64) ([]models.Comment, error) {
	if err := f.begin("comments.list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.comments[issueID]...), nil
}

func (f *fakeGateway) CreateComment(ctx context.Context, issueID int64, content string) (models.Comment, error) {
	if err := f.begin("comments.create"); err != nil {
		return models.Comment{}, err
	}
	comment := models.Comment{
		ID:        f.assignID(),
		IssueID:   issueID,
		AuthorID:  1,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.mu.Lock()
	f.comments[issueID] = append(f.comments[issueID], comment)
	f.mu.Unlock()
	return comment, nil
}

func (f *fakeGateway) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	if err := f.begin("notifications.list"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeGateway) UnreadCount(ctx context.Context) (int, error) {
	if err := f.begin("notifications.unread"); err != nil {
		return 0, err
	}
	return 0, nil
}

func (f *fakeGateway) MarkNotificationRead(ctx context.Context, id int64) error {
	return f.begin("notifications.read")
}

func (f *fakeGateway) MarkAllNotificationsRead(ctx context.Context) error {
	return f.begin("notifications.readall")
}

func (f *fakeGateway) IssueSummary(ctx context.Context, issueID int64) (string, error) {
	if err := f.begin("issues.summary"); err != nil {
		return "", err
	}
	return "summary", nil
}

func (f *fakeGateway) IssueSuggestion(ctx context.Context, issueID int64) (string, error) {
	if err := f.begin("issues.suggestion"); err != nil {
		return "", err
	}
	return "suggestion", nil
}

var _ gateway.Gateway = (*fakeGateway)(nil)
