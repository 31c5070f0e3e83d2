// Package board is the interactive kanban view. It renders the four
// status columns from the projector and drives status changes through
// the dragdrop controller: grab a card, move across columns, drop.
package board

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jiralite/jl/internal/coordinator"
	"github.com/jiralite/jl/internal/dragdrop"
	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/projector"
)

// cardHeight is the number of lines per card.
const cardHeight = 3

// minColWidth is the narrowest column worth rendering.
const minColWidth = 16

// Model is the bubbletea model for the board.
type Model struct {
	coord *coordinator.Coordinator
	drag  *dragdrop.Controller

	projectID int64
	view      projector.BoardView

	col     int
	row     int
	scrolls []int

	filter    textinput.Model
	filtering bool

	width  int
	height int
	status string

	quitting bool
}

// refreshedMsg reports the result of a background refresh.
type refreshedMsg struct{ err error }

// mutationResolvedMsg reports a drop's confirmation or rollback.
type mutationResolvedMsg struct{ err error }

// New builds a board over the coordinator, scoped to one project
// (0 shows every project).
func New(coord *coordinator.Coordinator, projectID int64) Model {
	filter := textinput.New()
	filter.Placeholder = "filter by title or id"
	filter.CharLimit = 64
	filter.Width = 32

	m := Model{
		coord:     coord,
		projectID: projectID,
		filter:    filter,
		scrolls:   make([]int, len(models.AllStatuses())),
		width:     100,
		height:    30,
	}
	m.drag = dragdrop.New(func(ctx context.Context, issueID int64, status models.Status) <-chan error {
		return coord.UpdateIssueStatus(ctx, issueID, status)
	})
	m.rebuild()
	return m
}

// Init requests an initial refresh so the board opens on fresh data.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.coord.RefreshIssues(context.Background(), m.projectID)
		return refreshedMsg{err: err}
	}
}

// rebuild recomputes the projection from the store with the current
// filter, clamping the cursor to the new shape.
func (m *Model) rebuild() {
	spec := projector.FilterSpec{
		Query:     m.filter.Value(),
		ProjectID: m.projectID,
	}
	spec = spec.WithProjects(m.coord.Store().Projects(nil))
	m.view = projector.Board(m.coord.Store().Issues(nil), spec)
	m.clampRow()
}

func (m *Model) columnIssues(col int) []models.Issue {
	if col < 0 || col >= len(m.view.Columns) {
		return nil
	}
	return m.view.Columns[col].Issues
}

func (m *Model) clampRow() {
	issues := m.columnIssues(m.col)
	if len(issues) == 0 {
		m.row = 0
	} else if m.row >= len(issues) {
		m.row = len(issues) - 1
	}
}

func (m *Model) moveLeft() {
	if m.col > 0 {
		m.col--
		m.clampRow()
		m.ensureCursorVisible()
	}
}

func (m *Model) moveRight() {
	if m.col < len(m.view.Columns)-1 {
		m.col++
		m.clampRow()
		m.ensureCursorVisible()
	}
}

func (m *Model) moveDown() {
	if m.row < len(m.columnIssues(m.col))-1 {
		m.row++
		m.ensureCursorVisible()
	}
}

func (m *Model) moveUp() {
	if m.row > 0 {
		m.row--
		m.ensureCursorVisible()
	}
}

// ensureCursorVisible adjusts the current column's scroll offset so
// the cursor row stays in the visible window.
func (m *Model) ensureCursorVisible() {
	if m.col < 0 || m.col >= len(m.scrolls) {
		return
	}
	_, maxVisible := m.dimensions()
	scroll := m.scrolls[m.col]
	if m.row < scroll {
		scroll = m.row
	} else if m.row >= scroll+maxVisible {
		scroll = m.row - maxVisible + 1
	}
	maxScroll := len(m.columnIssues(m.col)) - maxVisible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scroll > maxScroll {
		scroll = maxScroll
	}
	if scroll < 0 {
		scroll = 0
	}
	m.scrolls[m.col] = scroll
}

// dimensions computes the column width and how many cards fit.
func (m Model) dimensions() (colWidth, maxVisibleCards int) {
	numCols := len(models.AllStatuses())
	separatorWidth := numCols - 1
	colWidth = (m.width - 2 - separatorWidth) / numCols
	if colWidth < minColWidth {
		colWidth = minColWidth
	}
	availableCardHeight := m.height - 6
	if availableCardHeight < cardHeight {
		availableCardHeight = cardHeight
	}
	maxVisibleCards = availableCardHeight / cardHeight
	if maxVisibleCards < 1 {
		maxVisibleCards = 1
	}
	return
}

// grabOrDrop toggles the drag: grab the cursor card when idle, drop on
// the cursor column when dragging.
func (m *Model) grabOrDrop() tea.Cmd {
	if _, dragging := m.drag.DraggingIssue(); !dragging {
		issues := m.columnIssues(m.col)
		if len(issues) == 0 || m.row >= len(issues) {
			return nil
		}
		if err := m.drag.Start(issues[m.row]); err != nil {
			m.status = err.Error()
			return nil
		}
		m.status = fmt.Sprintf("moving #%d, drop with space", issues[m.row].ID)
		return nil
	}

	target := m.view.Columns[m.col].Status
	done, err := m.drag.Drop(context.Background(), target)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	if done == nil {
		m.status = ""
		return nil
	}
	m.status = "moving..."
	m.rebuild()
	return func() tea.Msg {
		return mutationResolvedMsg{err: <-done}
	}
}

// Update is the bubbletea event loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
		m.rebuild()
		return m, nil

	case mutationResolvedMsg:
		if msg.err != nil {
			m.status = "move failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
		m.rebuild()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.rebuild()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.rebuild()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.coord.Wait()
		return m, tea.Quit

	case "esc":
		if _, dragging := m.drag.DraggingIssue(); dragging {
			m.drag.Cancel()
			m.status = ""
			return m, nil
		}
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.rebuild()
			return m, nil
		}
		m.quitting = true
		m.coord.Wait()
		return m, tea.Quit

	case "h", "left":
		m.moveLeft()
	case "l", "right":
		m.moveRight()
	case "j", "down":
		m.moveDown()
	case "k", "up":
		m.moveUp()

	case " ", "enter":
		return m, m.grabOrDrop()

	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink

	case "r":
		m.status = "refreshing..."
		return m, m.refreshCmd()
	}
	return m, nil
}
