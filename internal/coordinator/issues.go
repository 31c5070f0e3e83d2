package coordinator

import (
	"context"
	"strings"
	"time"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/store"
)

// IssueResult is the resolution of an issue create: the authoritative
// record on success, the typed failure otherwise.
type IssueResult struct {
	Issue models.Issue
	Err   error
}

// CreateIssue inserts an optimistic placeholder issue (negative id,
// BACKLOG) and dispatches the create. The placeholder is replaced by
// the server-assigned record on success and removed on failure.
func (c *Coordinator) CreateIssue(ctx context.Context, payload gateway.IssueCreate) (int64, <-chan IssueResult) {
	out := make(chan IssueResult, 1)

	if strings.TrimSpace(payload.Title) == "" {
		out <- IssueResult{Err: validationErr("create issue", "title is required")}
		close(out)
		return 0, out
	}
	if payload.ProjectID == 0 {
		out <- IssueResult{Err: validationErr("create issue", "project is required")}
		close(out)
		return 0, out
	}
	if payload.Priority != "" && !models.IsValidPriority(payload.Priority) {
		out <- IssueResult{Err: validationErr("create issue", "unknown priority "+string(payload.Priority))}
		close(out)
		return 0, out
	}

	tempID := c.nextTempID()
	optimistic := models.Issue{
		ID:          tempID,
		ProjectID:   payload.ProjectID,
		Title:       payload.Title,
		Description: payload.Description,
		Status:      models.StatusBacklog,
		Priority:    payload.Priority,
		AssigneeID:  payload.AssigneeID,
		Position:    c.nextPosition(payload.ProjectID, models.StatusBacklog),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if optimistic.Priority == "" {
		optimistic.Priority = models.PriorityMedium
	}
	if due, ok := parseDueDate(payload.DueDate); ok {
		optimistic.DueDate = &due
	}

	m := &pending{
		op:  "issues.create",
		key: entityKey{store.KindIssue, tempID},
		ctx: ctx,
		apply: func() error {
			return c.store.Upsert(store.KindIssue, optimistic)
		},
		confirm: func(ctx context.Context) (func(), error) {
			issue, err := c.gw.CreateIssue(ctx, payload)
			if err != nil {
				return nil, err
			}
			return func() {
				c.store.Remove(store.KindIssue, tempID)
				c.store.Upsert(store.KindIssue, issue)
				out <- IssueResult{Issue: issue}
				close(out)
			}, nil
		},
		rollback: func() {
			c.store.Remove(store.KindIssue, tempID)
		},
	}

	done := c.dispatch(m)
	go func() {
		if err := <-done; err != nil {
			out <- IssueResult{Err: err}
			close(out)
		}
	}()
	return tempID, out
}

// nextPosition places a new issue after every existing issue in its
// (project, status) partition.
func (c *Coordinator) nextPosition(projectID int64, status models.Status) int {
	max := 0
	for _, i := range c.store.Issues(func(i models.Issue) bool {
		return i.ProjectID == projectID && i.Status == status
	}) {
		if i.Position > max {
			max = i.Position
		}
	}
	return max + 1
}

// UpdateIssue applies the payload's set fields optimistically and
// dispatches the update. On failure the pre-mutation record is
// restored; on success the authoritative record replaces the guess.
func (c *Coordinator) UpdateIssue(ctx context.Context, id int64, payload gateway.IssueUpdate) <-chan error {
	if payload.Title != nil && strings.TrimSpace(*payload.Title) == "" {
		return immediate(validationErr("update issue", "title cannot be empty"))
	}
	if payload.Status != nil && !models.IsValidStatus(*payload.Status) {
		return immediate(validationErr("update issue", "unknown status "+string(*payload.Status)))
	}
	if payload.Priority != nil && !models.IsValidPriority(*payload.Priority) {
		return immediate(validationErr("update issue", "unknown priority "+string(*payload.Priority)))
	}

	var snapshot models.Issue
	m := &pending{
		op:  "issues.update",
		key: entityKey{store.KindIssue, id},
		ctx: ctx,
		apply: func() error {
			cur, ok := c.store.Issue(id)
			if !ok {
				return &NotInStoreError{Kind: "issue", ID: id}
			}
			snapshot = cur.Clone()
			next := applyIssueUpdate(cur, payload)
			return c.store.Upsert(store.KindIssue, next)
		},
		confirm: func(ctx context.Context) (func(), error) {
			issue, err := c.gw.UpdateIssue(ctx, id, payload)
			if err != nil {
				return nil, err
			}
			return func() { c.store.Upsert(store.KindIssue, issue) }, nil
		},
		rollback: func() {
			c.store.Upsert(store.KindIssue, snapshot)
		},
		vanished: func() {
			c.store.Remove(store.KindIssue, id)
		},
	}
	return c.dispatch(m)
}

// applyIssueUpdate merges the set fields of an update payload into a
// copy of the current record, mirroring what the server will do.
func applyIssueUpdate(cur models.Issue, payload gateway.IssueUpdate) models.Issue {
	next := cur.Clone()
	if payload.Title != nil {
		next.Title = *payload.Title
	}
	if payload.Description != nil {
		next.Description = *payload.Description
	}
	if payload.AssigneeID != nil {
		next.AssigneeID = *payload.AssigneeID
		if *payload.AssigneeID == 0 {
			next.AssigneeName = ""
		}
	}
	if payload.DueDate != nil {
		if due, ok := parseDueDate(*payload.DueDate); ok {
			next.DueDate = &due
		} else {
			next.DueDate = nil
		}
	}
	if payload.Status != nil {
		next.Status = *payload.Status
	}
	if payload.Priority != nil {
		next.Priority = *payload.Priority
	}
	next.UpdatedAt = time.Now()
	return next
}

func parseDueDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UpdateIssueStatus moves an issue to a new column optimistically.
func (c *Coordinator) UpdateIssueStatus(ctx context.Context, id int64, status models.Status) <-chan error {
	if !models.IsValidStatus(status) {
		return immediate(validationErr("update status", "unknown status "+string(status)))
	}

	var snapshot models.Issue
	m := &pending{
		op:  "issues.status",
		key: entityKey{store.KindIssue, id},
		ctx: ctx,
		apply: func() error {
			cur, ok := c.store.Issue(id)
			if !ok {
				return &NotInStoreError{Kind: "issue", ID: id}
			}
			snapshot = cur.Clone()
			cur.Status = status
			cur.Position = c.nextPosition(cur.ProjectID, status)
			cur.UpdatedAt = time.Now()
			return c.store.Upsert(store.KindIssue, cur)
		},
		confirm: func(ctx context.Context) (func(), error) {
			issue, err := c.gw.UpdateIssueStatus(ctx, id, status)
			if err != nil {
				return nil, err
			}
			return func() { c.store.Upsert(store.KindIssue, issue) }, nil
		},
		rollback: func() {
			c.store.Upsert(store.KindIssue, snapshot)
		},
		vanished: func() {
			c.store.Remove(store.KindIssue, id)
		},
	}
	return c.dispatch(m)
}

// DeleteIssue removes the issue (and its loaded comments) from every
// projection immediately. A failed delete restores the snapshot
// verbatim, subtasks and comments included.
func (c *Coordinator) DeleteIssue(ctx context.Context, id int64) <-chan error {
	var (
		snapshot models.Issue
		comments []models.Comment
	)
	m := &pending{
		op:  "issues.delete",
		key: entityKey{store.KindIssue, id},
		ctx: ctx,
		apply: func() error {
			cur, ok := c.store.Issue(id)
			if !ok {
				return &NotInStoreError{Kind: "issue", ID: id}
			}
			snapshot = cur.Clone()
			comments = c.store.RemoveCommentsForIssue(id)
			return c.store.Remove(store.KindIssue, id)
		},
		confirm: func(ctx context.Context) (func(), error) {
			if err := c.gw.DeleteIssue(ctx, id); err != nil {
				return nil, err
			}
			return nil, nil
		},
		rollback: func() {
			c.store.Upsert(store.KindIssue, snapshot)
			for _, cm := range comments {
				c.store.Upsert(store.KindComment, cm)
			}
		},
		// The optimistic remove already matches a server-side vanish.
		vanished: func() {},
	}
	return c.dispatch(m)
}

// CreateSubtask appends an optimistic subtask to the issue and swaps
// in the authoritative record on confirmation. Serialized with every
// other mutation of the same issue.
func (c *Coordinator) CreateSubtask(ctx context.Context, issueID int64, title string) <-chan error {
	if strings.TrimSpace(title) == "" {
		return immediate(validationErr("create subtask", "title is required"))
	}

	tempID := c.nextTempID()
	var snapshot models.Issue
	m := &pending{
		op:  "subtasks.create",
		key: entityKey{store.KindIssue, issueID},
		ctx: ctx,
		apply: func() error {
			cur, ok := c.store.Issue(issueID)
			if !ok {
				return &NotInStoreError{Kind: "issue", ID: issueID}
			}
			snapshot = cur.Clone()
			cur.Subtasks = append(cur.Subtasks, models.Subtask{
				ID:       tempID,
				IssueID:  issueID,
				Title:    title,
				Position: len(cur.Subtasks) + 1,
			})
			return c.store.Upsert(store.KindIssue, cur)
		},
		confirm: func(ctx context.Context) (func(), error) {
			subtask, err := c.gw.CreateSubtask(ctx, issueID, title)
			if err != nil {
				return nil, err
			}
			return func() {
				cur, ok := c.store.Issue(issueID)
				if !ok {
					return
				}
				for i := range cur.Subtasks {
					if cur.Subtasks[i].ID == tempID {
						cur.Subtasks[i] = subtask
						break
					}
				}
				c.store.Upsert(store.KindIssue, cur)
			}, nil
		},
		rollback: func() {
			c.store.Upsert(store.KindIssue, snapshot)
		},
		vanished: func() {
			c.store.Remove(store.KindIssue, issueID)
		},
	}
	return c.dispatch(m)
}

// ToggleSubtask flips a subtask's completion optimistically. Toggling
// twice restores the original value whatever the server returns, since
// each toggle sends the flipped value of the state it observed.
func (c *Coordinator) ToggleSubtask(ctx context.Context, issueID, subtaskID int64) <-chan error {
	var (
		snapshot models.Issue
		target   bool
	)
	m := &pending{
		op:  "subtasks.toggle",
		key: entityKey{store.KindIssue, issueID},
		ctx: ctx,
		apply: func() error {
			cur, ok := c.store.Issue(issueID)
			if !ok {
				return &NotInStoreError{Kind: "issue", ID: issueID}
			}
			found := false
			snapshot = cur.Clone()
			for i := range cur.Subtasks {
				if cur.Subtasks[i].ID == subtaskID {
					target = !cur.Subtasks[i].IsCompleted
					cur.Subtasks[i].IsCompleted = target
					found = true
					break
				}
			}
			if !found {
				return &NotInStoreError{Kind: "subtask", ID: subtaskID}
			}
			return c.store.Upsert(store.KindIssue, cur)
		},
		confirm: func(ctx context.Context) (func(), error) {
			completed := target
			subtask, err := c.gw.UpdateSubtask(ctx, issueID, subtaskID, gateway.SubtaskUpdate{IsCompleted: &completed})
			if err != nil {
				return nil, err
			}
			return func() {
				cur, ok := c.store.Issue(issueID)
				if !ok {
					return
				}
				for i := range cur.Subtasks {
					if cur.Subtasks[i].ID == subtaskID {
						cur.Subtasks[i] = subtask
						break
					}
				}
				c.store.Upsert(store.KindIssue, cur)
			}, nil
		},
		rollback: func() {
			c.store.Upsert(store.KindIssue, snapshot)
		},
		vanished: func() {
			c.store.Remove(store.KindIssue, issueID)
		},
	}
	return c.dispatch(m)
}

// AddComment dispatches the create and then refetches the issue's
// comment list. Comment authorship and timestamps are server-assigned,
// so comments are eventually consistent rather than optimistic: no
// local record is guessed and there is nothing to roll back.
func (c *Coordinator) AddComment(ctx context.Context, issueID int64, content string) <-chan error {
	if strings.TrimSpace(content) == "" {
		return immediate(validationErr("add comment", "content is required"))
	}

	m := &pending{
		op:  "comments.create",
		key: entityKey{store.KindIssue, issueID},
		ctx: ctx,
		confirm: func(ctx context.Context) (func(), error) {
			if _, err := c.gw.CreateComment(ctx, issueID, content); err != nil {
				return nil, err
			}
			comments, err := c.gw.ListComments(ctx, issueID)
			if err != nil {
				return nil, err
			}
			return func() {
				c.store.RemoveCommentsForIssue(issueID)
				for _, cm := range comments {
					c.store.Upsert(store.KindComment, cm)
				}
			}, nil
		},
	}
	return c.dispatch(m)
}

// RefreshComments replaces the locally held comments for an issue with
// the remote listing.
func (c *Coordinator) RefreshComments(ctx context.Context, issueID int64) error {
	comments, err := c.gw.ListComments(ctx, issueID)
	if err != nil {
		return err
	}
	c.store.RemoveCommentsForIssue(issueID)
	for _, cm := range comments {
		c.store.Upsert(store.KindComment, cm)
	}
	return nil
}
