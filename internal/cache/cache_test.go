package cache

import (
	"reflect"
	"testing"
	"time"

	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/store"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	records := []struct {
		kind   store.Kind
		record any
	}{
		{store.KindTeam, models.Team{ID: 1, Name: "Core", OwnerID: 1}},
		{store.KindProject, models.Project{ID: 1, Name: "App", TeamID: 1, IsFavorite: true}},
		{store.KindProject, models.Project{ID: 2, Name: "Old", TeamID: 1, IsArchived: true}},
		{store.KindIssue, models.Issue{
			ID:        1,
			ProjectID: 1,
			Title:     "Fix login",
			Status:    models.StatusInProgress,
			Priority:  models.PriorityHigh,
			Position:  1,
			DueDate:   &due,
			Subtasks:  []models.Subtask{{ID: 10, IssueID: 1, Title: "repro", IsCompleted: true}},
		}},
		{store.KindNotification, models.Notification{ID: 1, UserID: 1, Title: "assigned", IsRead: false}},
	}
	for _, r := range records {
		if err := st.Upsert(r.kind, r.record); err != nil {
			t.Fatalf("seed %s: %v", r.kind, err)
		}
	}
	return st
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := openTestCache(t)
	src := seededStore(t)

	if err := c.Snapshot(src); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	dst := store.New()
	if err := c.Load(dst); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(dst.Teams(), src.Teams()) {
		t.Errorf("teams after round trip = %+v, want %+v", dst.Teams(), src.Teams())
	}
	if !reflect.DeepEqual(dst.Projects(nil), src.Projects(nil)) {
		t.Errorf("projects after round trip = %+v, want %+v", dst.Projects(nil), src.Projects(nil))
	}
	if !reflect.DeepEqual(dst.Notifications(), src.Notifications()) {
		t.Errorf("notifications after round trip = %+v, want %+v", dst.Notifications(), src.Notifications())
	}

	issue, ok := dst.Issue(1)
	if !ok {
		t.Fatal("issue missing after round trip")
	}
	if issue.DueDate == nil || !issue.DueDate.Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due date after round trip = %v", issue.DueDate)
	}
	if len(issue.Subtasks) != 1 || !issue.Subtasks[0].IsCompleted {
		t.Errorf("subtasks after round trip = %+v", issue.Subtasks)
	}
}

func TestSnapshotReplacesPrevious(t *testing.T) {
	c := openTestCache(t)

	first := store.New()
	first.Upsert(store.KindIssue, models.Issue{ID: 1, ProjectID: 1, Title: "stale"})
	if err := c.Snapshot(first); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	second := store.New()
	second.Upsert(store.KindIssue, models.Issue{ID: 2, ProjectID: 1, Title: "fresh"})
	if err := c.Snapshot(second); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	dst := store.New()
	if err := c.Load(dst); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := dst.Issue(1); ok {
		t.Error("stale record survived a snapshot replace")
	}
	if _, ok := dst.Issue(2); !ok {
		t.Error("fresh record missing after snapshot replace")
	}
}

func TestLoadEmptyCache(t *testing.T) {
	c := openTestCache(t)

	dst := seededStore(t)
	if err := c.Load(dst); err != nil {
		t.Fatalf("Load on empty cache: %v", err)
	}
	if len(dst.Issues(nil)) != 0 {
		t.Error("empty snapshot should clear the store's issues")
	}
}

func TestSavedAt(t *testing.T) {
	c := openTestCache(t)

	when, err := c.SavedAt()
	if err != nil {
		t.Fatalf("SavedAt before snapshot: %v", err)
	}
	if !when.IsZero() {
		t.Errorf("SavedAt before snapshot = %v, want zero", when)
	}

	before := time.Now().Add(-time.Second)
	if err := c.Snapshot(store.New()); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	when, err = c.SavedAt()
	if err != nil {
		t.Fatalf("SavedAt: %v", err)
	}
	if when.Before(before) {
		t.Errorf("SavedAt = %v, want at or after %v", when, before)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	c1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	c1.Snapshot(store.New())
	c1.Close()

	c2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer c2.Close()
	if _, err := c2.SavedAt(); err != nil {
		t.Fatalf("SavedAt after reopen: %v", err)
	}
}
