package coordinator

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/session"
	"github.com/jiralite/jl/internal/store"
)

func newTestCoordinator() (*Coordinator, *fakeGateway, *store.Store) {
	st := store.New()
	gw := newFakeGateway()
	sess := session.New("test-token")
	sess.SetUser(models.User{ID: 1, Name: "tester"})
	return New(st, gw, sess, nil), gw, st
}

func transportErr(op string) error {
	return &gateway.Error{Kind: gateway.KindTransport, Op: op, Message: "connection refused"}
}

// =============================================================================
// Issue creation
// =============================================================================

func TestCreateIssueOptimisticThenAuthoritative(t *testing.T) {
	c, gw, st := newTestCoordinator()
	release := gw.gate("issues.create")

	tempID, out := c.CreateIssue(context.Background(), gateway.IssueCreate{
		Title:     "wire the modem",
		ProjectID: 1,
	})

	// Placeholder must be visible before the gateway answers.
	if tempID >= 0 {
		t.Fatalf("placeholder id = %d, want negative", tempID)
	}
	if _, ok := st.Issue(tempID); !ok {
		t.Fatal("optimistic issue not in store before confirmation")
	}

	release()
	res := <-out
	if res.Err != nil {
		t.Fatalf("create resolved with error: %v", res.Err)
	}

	if _, ok := st.Issue(tempID); ok {
		t.Error("placeholder survived confirmation")
	}
	matches := st.Issues(func(i models.Issue) bool { return i.Title == "wire the modem" })
	if len(matches) != 1 {
		t.Fatalf("store holds %d records with the created title, want exactly 1", len(matches))
	}
	if matches[0].ID != res.Issue.ID || matches[0].ID <= 0 {
		t.Errorf("stored id = %d, want server-assigned %d", matches[0].ID, res.Issue.ID)
	}
}

func TestCreateIssueFailureRemovesPlaceholder(t *testing.T) {
	c, gw, st := newTestCoordinator()
	gw.failWith("issues.create", transportErr("issues.create"))

	tempID, out := c.CreateIssue(context.Background(), gateway.IssueCreate{
		Title:     "doomed",
		ProjectID: 1,
	})

	res := <-out
	if res.Err == nil {
		t.Fatal("expected create failure")
	}
	if !gateway.IsRetryable(res.Err) {
		t.Errorf("transport failure should be retryable, got %v", res.Err)
	}
	if _, ok := st.Issue(tempID); ok {
		t.Error("placeholder survived a failed create")
	}
}

func TestCreateIssueValidation(t *testing.T) {
	c, gw, _ := newTestCoordinator()

	_, out := c.CreateIssue(context.Background(), gateway.IssueCreate{Title: "   ", ProjectID: 1})
	res := <-out
	var ve *ValidationError
	if !errors.As(res.Err, &ve) {
		t.Fatalf("expected ValidationError, got %v", res.Err)
	}
	if len(gw.callLog()) != 0 {
		t.Error("validation failure still reached the gateway")
	}
}

// =============================================================================
// Update and rollback
// =============================================================================

func TestUpdateRollbackRestoresSnapshot(t *testing.T) {
	c, gw, st := newTestCoordinator()

	original := models.Issue{
		ID:        42,
		ProjectID: 1,
		Title:     "original title",
		Status:    models.StatusBacklog,
		Priority:  models.PriorityLow,
		Subtasks:  []models.Subtask{{ID: 7, IssueID: 42, Title: "step", IsCompleted: true}},
	}
	st.Upsert(store.KindIssue, original)
	gw.failWith("issues.update", transportErr("issues.update"))

	title := "new title"
	err := <-c.UpdateIssue(context.Background(), 42, gateway.IssueUpdate{Title: &title})
	if err == nil {
		t.Fatal("expected update failure")
	}

	after, ok := st.Issue(42)
	if !ok {
		t.Fatal("issue missing after rollback")
	}
	if !reflect.DeepEqual(after, original.Clone()) {
		t.Errorf("rollback state = %+v, want structurally equal to pre-apply %+v", after, original)
	}
}

func TestUpdateAppliesOptimisticallyBeforeConfirm(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 1, Title: "old", Status: models.StatusBacklog})
	release := gw.gate("issues.update")

	title := "new"
	done := c.UpdateIssue(context.Background(), 1, gateway.IssueUpdate{Title: &title})

	got, _ := st.Issue(1)
	if got.Title != "new" {
		t.Errorf("optimistic title = %q before confirmation, want %q", got.Title, "new")
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestUpdateNotFoundRemovesRecord(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 9, Title: "ghost"})
	gw.failWith("issues.update", &gateway.Error{Kind: gateway.KindNotFound, Op: "issues.update", Message: "gone"})

	title := "whatever"
	err := <-c.UpdateIssue(context.Background(), 9, gateway.IssueUpdate{Title: &title})
	if !gateway.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, ok := st.Issue(9); ok {
		t.Error("vanished issue restored instead of removed")
	}
}

func TestUpdateMissingLocally(t *testing.T) {
	c, gw, _ := newTestCoordinator()

	title := "x"
	err := <-c.UpdateIssue(context.Background(), 404, gateway.IssueUpdate{Title: &title})
	var nie *NotInStoreError
	if !errors.As(err, &nie) {
		t.Fatalf("expected NotInStoreError, got %v", err)
	}
	if len(gw.callLog()) != 0 {
		t.Error("locally-missing target still reached the gateway")
	}
}

// =============================================================================
// Per-id serialization
// =============================================================================

func TestSameIDMutationsSerialized(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 1, Title: "t", Status: models.StatusBacklog})
	release := gw.gate("issues.status")

	first := c.UpdateIssueStatus(context.Background(), 1, models.StatusInProgress)

	// Second mutation on the same id must not apply optimistically
	// while the first is still in flight.
	title := "renamed"
	second := c.UpdateIssue(context.Background(), 1, gateway.IssueUpdate{Title: &title})

	got, _ := st.Issue(1)
	if got.Title == "renamed" {
		t.Error("queued mutation applied before predecessor resolved")
	}

	release()
	if err := <-first; err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second: %v", err)
	}

	calls := gw.callLog()
	if len(calls) != 2 || calls[0] != "issues.status" || calls[1] != "issues.update" {
		t.Errorf("gateway call order = %v, want [issues.status issues.update]", calls)
	}
	got, _ = st.Issue(1)
	if got.Title != "renamed" {
		t.Errorf("final title = %q, want renamed", got.Title)
	}
}

func TestDifferentIDMutationsConcurrent(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 1, Status: models.StatusBacklog, Title: "a"})
	st.Upsert(store.KindIssue, models.Issue{ID: 2, Status: models.StatusBacklog, Title: "b"})
	release := gw.gate("issues.status")

	blocked := c.UpdateIssueStatus(context.Background(), 1, models.StatusDone)

	// A mutation on a different id applies optimistically at once even
	// though issue 1 has an operation in flight.
	title := "b2"
	done := c.UpdateIssue(context.Background(), 2, gateway.IssueUpdate{Title: &title})
	if got, _ := st.Issue(2); got.Title != "b2" {
		t.Error("independent id blocked behind unrelated in-flight mutation")
	}
	if err := <-done; err != nil {
		t.Fatalf("independent update: %v", err)
	}

	release()
	if err := <-blocked; err != nil {
		t.Fatalf("blocked update: %v", err)
	}
}

// =============================================================================
// Delete
// =============================================================================

func TestDeleteOptimisticAndRestoreVerbatim(t *testing.T) {
	c, gw, st := newTestCoordinator()
	issue := models.Issue{
		ID:       5,
		Title:    "keep me",
		Status:   models.StatusReview,
		Subtasks: []models.Subtask{{ID: 50, IssueID: 5, Title: "sub", IsCompleted: true}},
	}
	st.Upsert(store.KindIssue, issue)
	st.Upsert(store.KindComment, models.Comment{ID: 500, IssueID: 5, Content: "hello"})
	gw.failWith("issues.delete", transportErr("issues.delete"))
	release := gw.gate("issues.delete")

	done := c.DeleteIssue(context.Background(), 5)
	if _, ok := st.Issue(5); ok {
		t.Error("issue still visible after optimistic delete")
	}
	if n := len(st.CommentsForIssue(5)); n != 0 {
		t.Errorf("%d comments visible after optimistic delete", n)
	}

	release()
	if err := <-done; err == nil {
		t.Fatal("expected delete failure")
	}

	restored, ok := st.Issue(5)
	if !ok {
		t.Fatal("issue not restored after failed delete")
	}
	if !reflect.DeepEqual(restored, issue.Clone()) {
		t.Errorf("restored issue = %+v, want %+v", restored, issue)
	}
	if n := len(st.CommentsForIssue(5)); n != 1 {
		t.Errorf("restored %d comments, want 1", n)
	}
}

func TestDeleteSuccessRemoves(t *testing.T) {
	c, _, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 6, Title: "bye"})

	if err := <-c.DeleteIssue(context.Background(), 6); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := st.Issue(6); ok {
		t.Error("issue present after confirmed delete")
	}
}

// =============================================================================
// Subtasks
// =============================================================================

func TestToggleSubtaskInvolution(t *testing.T) {
	c, _, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{
		ID:       1,
		Title:    "t",
		Subtasks: []models.Subtask{{ID: 10, IssueID: 1, IsCompleted: false}},
	})

	if err := <-c.ToggleSubtask(context.Background(), 1, 10); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	mid, _ := st.Issue(1)
	if !mid.Subtasks[0].IsCompleted {
		t.Fatal("first toggle did not complete the subtask")
	}

	if err := <-c.ToggleSubtask(context.Background(), 1, 10); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	final, _ := st.Issue(1)
	if final.Subtasks[0].IsCompleted {
		t.Error("toggling twice did not restore the original value")
	}
}

func TestToggleSubtaskRollback(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{
		ID:       1,
		Subtasks: []models.Subtask{{ID: 10, IssueID: 1, IsCompleted: false}},
	})
	gw.failWith("subtasks.update", transportErr("subtasks.update"))

	if err := <-c.ToggleSubtask(context.Background(), 1, 10); err == nil {
		t.Fatal("expected toggle failure")
	}
	got, _ := st.Issue(1)
	if got.Subtasks[0].IsCompleted {
		t.Error("failed toggle left the optimistic value in place")
	}
}

func TestCreateSubtaskSwapsAuthoritativeRecord(t *testing.T) {
	c, _, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 1, Title: "t"})

	if err := <-c.CreateSubtask(context.Background(), 1, "new step"); err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	got, _ := st.Issue(1)
	if len(got.Subtasks) != 1 {
		t.Fatalf("issue has %d subtasks, want 1", len(got.Subtasks))
	}
	if got.Subtasks[0].ID <= 0 {
		t.Errorf("subtask kept placeholder id %d", got.Subtasks[0].ID)
	}
}

// =============================================================================
// Comments (eventually consistent)
// =============================================================================

func TestAddCommentRefetchesList(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 3, Title: "t"})

	if err := <-c.AddComment(context.Background(), 3, "first!"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	comments := st.CommentsForIssue(3)
	if len(comments) != 1 || comments[0].Content != "first!" {
		t.Errorf("comments after refetch = %+v", comments)
	}

	calls := gw.callLog()
	want := []string{"comments.create", "comments.list"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestAddCommentFailureLeavesStoreUntouched(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindComment, models.Comment{ID: 1, IssueID: 3, Content: "existing"})
	gw.failWith("comments.create", transportErr("comments.create"))

	if err := <-c.AddComment(context.Background(), 3, "nope"); err == nil {
		t.Fatal("expected comment failure")
	}
	comments := st.CommentsForIssue(3)
	if len(comments) != 1 || comments[0].Content != "existing" {
		t.Errorf("store disturbed by failed comment: %+v", comments)
	}
}

// =============================================================================
// Projects
// =============================================================================

func TestProjectArchiveScenario(t *testing.T) {
	c, _, st := newTestCoordinator()

	_, out := c.CreateProject(context.Background(), gateway.ProjectCreate{Name: "Alpha", TeamID: 1})
	res := <-out
	if res.Err != nil {
		t.Fatalf("create project: %v", res.Err)
	}
	p := res.Project

	active := st.Projects(func(pr models.Project) bool { return pr.TeamID == 1 && !pr.IsArchived })
	if len(active) != 1 || active[0].Name != "Alpha" || active[0].IsArchived {
		t.Fatalf("active listing after create = %+v", active)
	}

	if err := <-c.ArchiveProject(context.Background(), p.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if got, _ := st.Project(p.ID); !got.IsArchived {
		t.Error("project not archived")
	}

	if err := <-c.UnarchiveProject(context.Background(), p.ID); err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if got, _ := st.Project(p.ID); got.IsArchived {
		t.Error("unarchive did not reverse archive")
	}
}

func TestArchiveRollback(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindProject, models.Project{ID: 2, Name: "P", TeamID: 1})
	gw.failWith("projects.archive", transportErr("projects.archive"))

	if err := <-c.ArchiveProject(context.Background(), 2); err == nil {
		t.Fatal("expected archive failure")
	}
	if got, _ := st.Project(2); got.IsArchived {
		t.Error("failed archive left the flag set")
	}
}

func TestFavoriteRoundTrip(t *testing.T) {
	c, _, st := newTestCoordinator()
	st.Upsert(store.KindProject, models.Project{ID: 3, Name: "P", TeamID: 1})

	if err := <-c.FavoriteProject(context.Background(), 3); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if got, _ := st.Project(3); !got.IsFavorite {
		t.Error("favorite flag not set")
	}
	if err := <-c.UnfavoriteProject(context.Background(), 3); err != nil {
		t.Fatalf("unfavorite: %v", err)
	}
	if got, _ := st.Project(3); got.IsFavorite {
		t.Error("unfavorite did not clear the flag")
	}
}

// =============================================================================
// Teams
// =============================================================================

func TestCreateTeam(t *testing.T) {
	c, gw, st := newTestCoordinator()
	release := gw.gate("teams.create")

	tempID, out := c.CreateTeam(context.Background(), "Platform")
	if _, ok := st.Team(tempID); !ok {
		t.Error("optimistic team not visible")
	}
	release()
	res := <-out
	if res.Err != nil {
		t.Fatalf("create team: %v", res.Err)
	}
	if _, ok := st.Team(tempID); ok {
		t.Error("placeholder team survived confirmation")
	}
	if got, ok := st.Team(res.Team.ID); !ok || got.Name != "Platform" {
		t.Errorf("authoritative team = %+v, ok=%v", got, ok)
	}
}

// =============================================================================
// Refresh
// =============================================================================

func TestRefreshPopulatesStore(t *testing.T) {
	c, _, st := newTestCoordinator()

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(st.Teams()) != 1 {
		t.Errorf("teams = %d, want 1", len(st.Teams()))
	}
}

func TestRefreshPropagatesFailure(t *testing.T) {
	c, gw, _ := newTestCoordinator()
	gw.failWith("teams.list", transportErr("teams.list"))

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
}

// =============================================================================
// Wait
// =============================================================================

func TestWaitDrainsInFlight(t *testing.T) {
	c, gw, st := newTestCoordinator()
	st.Upsert(store.KindIssue, models.Issue{ID: 1, Title: "t", Status: models.StatusBacklog})
	release := gw.gate("issues.status")

	done := c.UpdateIssueStatus(context.Background(), 1, models.StatusDone)

	go func() {
		time.Sleep(10 * time.Millisecond)
		release()
	}()
	c.Wait()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("update after Wait: %v", err)
		}
	default:
		t.Fatal("Wait returned before the in-flight mutation resolved")
	}
}
