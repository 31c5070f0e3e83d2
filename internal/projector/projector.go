// Package projector derives read-only views from the entity store.
// Projections are pure functions of their inputs: the same issues and
// filter always produce the same view, and projecting never mutates
// the store.
package projector

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jiralite/jl/internal/models"
)

// ViewKind tags the shape of a projection.
type ViewKind string

const (
	ViewBoard     ViewKind = "BOARD"
	ViewList      ViewKind = "LIST"
	ViewDashboard ViewKind = "DASHBOARD"
)

// FilterSpec narrows the issue set before projection. Zero values mean
// no constraint: empty Query matches everything, AssigneeID 0 means any
// assignee, empty Status and Priority match all.
type FilterSpec struct {
	Query      string
	AssigneeID int64
	Status     models.Status
	Priority   models.Priority
	ProjectID  int64

	// IncludeArchived keeps issues of archived projects in the view.
	// It only has effect when the filter knows the project set, see
	// WithProjects.
	IncludeArchived bool

	archived map[int64]bool
}

// WithProjects records which projects are archived so Match can drop
// their issues unless IncludeArchived is set.
func (f FilterSpec) WithProjects(projects []models.Project) FilterSpec {
	f.archived = make(map[int64]bool, len(projects))
	for _, p := range projects {
		if p.IsArchived {
			f.archived[p.ID] = true
		}
	}
	return f
}

// Match reports whether the issue passes every constraint of the
// filter. The query matches case-insensitively against the title and
// literally against the decimal id.
func (f FilterSpec) Match(issue models.Issue) bool {
	if f.ProjectID != 0 && issue.ProjectID != f.ProjectID {
		return false
	}
	if !f.IncludeArchived && f.archived[issue.ProjectID] {
		return false
	}
	if f.AssigneeID != 0 && issue.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Status != "" && issue.Status != f.Status {
		return false
	}
	if f.Priority != "" && issue.Priority != f.Priority {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		title := strings.ToLower(issue.Title)
		id := strconv.FormatInt(issue.ID, 10)
		needle := strings.ToLower(q)
		if !strings.Contains(title, needle) && !strings.Contains(id, needle) {
			return false
		}
	}
	return true
}

// Column is one status lane of a board view.
type Column struct {
	Status models.Status
	Label  string
	Issues []models.Issue
}

// BoardView holds the four status columns in workflow order. Every
// filtered issue appears in exactly one column, ordered by ascending
// position with id as the tiebreak.
type BoardView struct {
	Kind    ViewKind
	Columns []Column
}

// ListView is the filtered issues in their input order.
type ListView struct {
	Kind   ViewKind
	Issues []models.Issue
}

// DashboardView aggregates the filtered issues.
type DashboardView struct {
	Kind            ViewKind
	Total           int
	ByStatus        map[models.Status]int
	ByPriority      map[models.Priority]int
	CompletionRatio float64
}

// Board partitions the filtered issues into the fixed status columns.
func Board(issues []models.Issue, filter FilterSpec) BoardView {
	view := BoardView{Kind: ViewBoard}
	buckets := make(map[models.Status][]models.Issue, len(models.AllStatuses()))
	for _, issue := range issues {
		if filter.Match(issue) {
			buckets[issue.Status] = append(buckets[issue.Status], issue)
		}
	}
	for _, status := range models.AllStatuses() {
		col := Column{
			Status: status,
			Label:  models.StatusLabel(status),
			Issues: buckets[status],
		}
		sortByPosition(col.Issues)
		view.Columns = append(view.Columns, col)
	}
	return view
}

// sortByPosition orders issues by ascending position, breaking ties by
// id so the order is total.
func sortByPosition(issues []models.Issue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Position != issues[j].Position {
			return issues[i].Position < issues[j].Position
		}
		return issues[i].ID < issues[j].ID
	})
}

// List returns the filtered issues preserving input order.
func List(issues []models.Issue, filter FilterSpec) ListView {
	view := ListView{Kind: ViewList}
	for _, issue := range issues {
		if filter.Match(issue) {
			view.Issues = append(view.Issues, issue)
		}
	}
	return view
}

// Dashboard counts the filtered issues per status and priority. The
// completion ratio is DONE over total, and 0 for an empty set.
func Dashboard(issues []models.Issue, filter FilterSpec) DashboardView {
	view := DashboardView{
		Kind:       ViewDashboard,
		ByStatus:   make(map[models.Status]int),
		ByPriority: make(map[models.Priority]int),
	}
	for _, issue := range issues {
		if !filter.Match(issue) {
			continue
		}
		view.Total++
		view.ByStatus[issue.Status]++
		view.ByPriority[issue.Priority]++
	}
	if view.Total > 0 {
		view.CompletionRatio = float64(view.ByStatus[models.StatusDone]) / float64(view.Total)
	}
	return view
}
