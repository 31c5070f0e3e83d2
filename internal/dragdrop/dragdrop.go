// Package dragdrop models the grab-and-move interaction that drives
// board status changes. The controller is a two-state machine: IDLE,
// or DRAGGING exactly one issue. Dropping on a new status dispatches
// exactly one status mutation; dropping in place dispatches nothing.
package dragdrop

import (
	"context"
	"fmt"

	"github.com/jiralite/jl/internal/models"
)

// State is the controller's interaction state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Dragging:
		return "DRAGGING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Dispatcher moves an issue to a new status. Satisfied by the
// coordinator's UpdateIssueStatus.
type Dispatcher func(ctx context.Context, issueID int64, status models.Status) <-chan error

// StateError reports an operation attempted in the wrong state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("dragdrop: %s in state %s", e.Op, e.State)
}

// Controller tracks one in-progress drag. It is not safe for
// concurrent use; drive it from a single event loop.
type Controller struct {
	dispatch Dispatcher

	state  State
	issue  models.Issue
	origin models.Status
}

// New builds an idle controller over the given dispatcher.
func New(dispatch Dispatcher) *Controller {
	return &Controller{dispatch: dispatch}
}

// State returns the current interaction state.
func (c *Controller) State() State {
	return c.state
}

// DraggingIssue returns the grabbed issue while a drag is in progress.
func (c *Controller) DraggingIssue() (models.Issue, bool) {
	if c.state != Dragging {
		return models.Issue{}, false
	}
	return c.issue, true
}

// Start grabs an issue. Starting while another drag is in progress is
// rejected and leaves the current drag untouched.
func (c *Controller) Start(issue models.Issue) error {
	if c.state == Dragging {
		return &StateError{Op: "start", State: c.state}
	}
	c.state = Dragging
	c.issue = issue
	c.origin = issue.Status
	return nil
}

// Cancel abandons the drag without dispatching anything.
func (c *Controller) Cancel() {
	c.state = Idle
	c.issue = models.Issue{}
}

// Drop releases the grabbed issue onto a status column. A drop onto
// the origin column is discarded. Otherwise exactly one status
// mutation is dispatched and its result channel returned; the
// controller returns to IDLE either way, without waiting for the
// mutation to resolve.
func (c *Controller) Drop(ctx context.Context, status models.Status) (<-chan error, error) {
	if c.state != Dragging {
		return nil, &StateError{Op: "drop", State: c.state}
	}
	issueID := c.issue.ID
	origin := c.origin
	c.Cancel()

	if status == origin {
		return nil, nil
	}
	if !models.IsValidStatus(status) {
		return nil, &StateError{Op: "drop on " + string(status), State: Idle}
	}
	return c.dispatch(ctx, issueID, status), nil
}
