package models

import (
	"testing"
	"time"
)

// TestIsValidStatusValid tests all valid statuses
func TestIsValidStatusValid(t *testing.T) {
	validStatuses := []Status{
		StatusBacklog,
		StatusInProgress,
		StatusReview,
		StatusDone,
	}

	for _, s := range validStatuses {
		if !IsValidStatus(s) {
			t.Errorf("Expected %q to be valid status", s)
		}
	}
}

// TestIsValidStatusInvalid tests invalid statuses
func TestIsValidStatusInvalid(t *testing.T) {
	invalidStatuses := []Status{"backlog", "OPEN", "CLOSED", "TODO", ""}
	for _, s := range invalidStatuses {
		if IsValidStatus(s) {
			t.Errorf("Expected %q to be invalid status", s)
		}
	}
}

// TestAllStatusesOrder tests that board column order is fixed
func TestAllStatusesOrder(t *testing.T) {
	want := []Status{StatusBacklog, StatusInProgress, StatusReview, StatusDone}
	got := AllStatuses()
	if len(got) != len(want) {
		t.Fatalf("AllStatuses() returned %d statuses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllStatuses()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestIsValidPriorityValid tests all valid priorities
func TestIsValidPriorityValid(t *testing.T) {
	validPriorities := []Priority{PriorityHigh, PriorityMedium, PriorityLow}
	for _, p := range validPriorities {
		if !IsValidPriority(p) {
			t.Errorf("Expected %q to be valid priority", p)
		}
	}
}

// TestIsValidPriorityInvalid tests invalid priorities
func TestIsValidPriorityInvalid(t *testing.T) {
	invalidPriorities := []Priority{"high", "P0", "URGENT", "CRITICAL", ""}
	for _, p := range invalidPriorities {
		if IsValidPriority(p) {
			t.Errorf("Expected %q to be invalid priority", p)
		}
	}
}

// TestIsValidTeamRole tests role validation
func TestIsValidTeamRole(t *testing.T) {
	for _, r := range []TeamRole{RoleOwner, RoleAdmin, RoleMember} {
		if !IsValidTeamRole(r) {
			t.Errorf("Expected %q to be valid role", r)
		}
	}
	for _, r := range []TeamRole{"owner", "GUEST", ""} {
		if IsValidTeamRole(r) {
			t.Errorf("Expected %q to be invalid role", r)
		}
	}
}

// TestStatusLabel tests display labels
func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusBacklog, "Backlog"},
		{StatusInProgress, "In Progress"},
		{StatusReview, "In Review"},
		{StatusDone, "Done"},
		{Status("WEIRD"), "WEIRD"},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.status); got != tt.want {
			t.Errorf("StatusLabel(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

// TestIssueCloneIsDeep tests that Clone does not alias nested slices
func TestIssueCloneIsDeep(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	issue := Issue{
		ID:      42,
		Title:   "original",
		Status:  StatusBacklog,
		DueDate: &due,
		Labels:  []Label{{ID: 1, Name: "bug"}},
		Subtasks: []Subtask{
			{ID: 10, Title: "step one", IsCompleted: false},
		},
		Comments: []Comment{{ID: 100, Content: "first"}},
	}

	clone := issue.Clone()

	issue.Subtasks[0].IsCompleted = true
	issue.Labels[0].Name = "changed"
	issue.Comments[0].Content = "edited"
	*issue.DueDate = due.AddDate(0, 1, 0)

	if clone.Subtasks[0].IsCompleted {
		t.Error("Clone aliased subtasks slice")
	}
	if clone.Labels[0].Name != "bug" {
		t.Error("Clone aliased labels slice")
	}
	if clone.Comments[0].Content != "first" {
		t.Error("Clone aliased comments slice")
	}
	if !clone.DueDate.Equal(due) {
		t.Error("Clone aliased due date pointer")
	}
}

// TestCompletedSubtasks tests subtask completion counting
func TestCompletedSubtasks(t *testing.T) {
	issue := Issue{
		Subtasks: []Subtask{
			{ID: 1, IsCompleted: true},
			{ID: 2, IsCompleted: false},
			{ID: 3, IsCompleted: true},
		},
	}
	if got := issue.CompletedSubtasks(); got != 2 {
		t.Errorf("CompletedSubtasks() = %d, want 2", got)
	}
	if got := (Issue{}).CompletedSubtasks(); got != 0 {
		t.Errorf("CompletedSubtasks() on empty issue = %d, want 0", got)
	}
}
