package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jiralite/jl/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dragStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true)
)

// columnColor is the header color per status column.
func columnColor(status models.Status) lipgloss.Color {
	switch status {
	case models.StatusBacklog:
		return lipgloss.Color("245")
	case models.StatusInProgress:
		return lipgloss.Color("39")
	case models.StatusReview:
		return lipgloss.Color("135")
	case models.StatusDone:
		return lipgloss.Color("42")
	default:
		return lipgloss.Color("255")
	}
}

func priorityBadge(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("!")
	case models.PriorityMedium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("=")
	case models.PriorityLow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("-")
	default:
		return " "
	}
}

// View renders the whole board.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	colWidth, maxVisible := m.dimensions()
	numCols := len(m.view.Columns)
	contentWidth := colWidth*numCols + (numCols - 1)
	sep := sepStyle.Render("│")

	var b strings.Builder
	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	divider := sepStyle.Render(strings.Repeat("─", contentWidth))
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.renderColumnHeaders(colWidth, sep))
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")

	for visRow := 0; visRow < maxVisible; visRow++ {
		for cardLine := 0; cardLine < cardHeight; cardLine++ {
			var cells []string
			for colIdx := range m.view.Columns {
				issues := m.view.Columns[colIdx].Issues
				dataRow := visRow + m.scrollFor(colIdx)
				if dataRow < len(issues) {
					selected := colIdx == m.col && dataRow == m.row
					cells = append(cells, m.renderCardLine(issues[dataRow], cardLine, colWidth, selected))
				} else {
					cells = append(cells, strings.Repeat(" ", colWidth))
				}
			}
			b.WriteString(strings.Join(cells, sep))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderFooter(contentWidth))
	return b.String()
}

func (m Model) scrollFor(col int) int {
	if col < 0 || col >= len(m.scrolls) {
		return 0
	}
	return m.scrolls[col]
}

func (m Model) renderHeader(width int) string {
	title := titleStyle.Render(" Board ")
	hint := hintStyle.Render("  h/l:cols  j/k:rows  space:grab/drop  /:filter  r:refresh  q:quit")
	header := title + hint
	if lipgloss.Width(header) > width {
		header = ansi.Truncate(header, width, "...")
	}
	return header
}

func (m Model) renderColumnHeaders(colWidth int, sep string) string {
	var headers []string
	for i, col := range m.view.Columns {
		style := lipgloss.NewStyle().Bold(true).Foreground(columnColor(col.Status))
		if i == m.col {
			style = style.Underline(true)
		}
		text := style.Render(fmt.Sprintf("%s (%d)", col.Label, len(col.Issues)))
		width := lipgloss.Width(text)
		if width > colWidth {
			text = ansi.Truncate(text, colWidth, "")
		} else if width < colWidth {
			text += strings.Repeat(" ", colWidth-width)
		}
		headers = append(headers, text)
	}
	return strings.Join(headers, sep)
}

// renderCardLine renders a single line of a card.
// Line 0: priority badge + truncated title
// Line 1: issue id + subtask progress
// Line 2: blank separator
func (m Model) renderCardLine(issue models.Issue, line, width int, selected bool) string {
	var content string
	switch line {
	case 0:
		prefix := priorityBadge(issue.Priority) + " "
		titleWidth := width - lipgloss.Width(prefix)
		if titleWidth < 4 {
			titleWidth = 4
		}
		title := issue.Title
		if lipgloss.Width(title) > titleWidth {
			title = ansi.Truncate(title, titleWidth-1, "…")
		}
		content = prefix + title
	case 1:
		id := idStyle.Render(fmt.Sprintf("#%d", issue.ID))
		if n := len(issue.Subtasks); n > 0 {
			id += idStyle.Render(fmt.Sprintf("  %d/%d", issue.CompletedSubtasks(), n))
		}
		content = id
	case 2:
		content = ""
	}

	contentWidth := lipgloss.Width(content)
	if contentWidth > width {
		content = ansi.Truncate(content, width, "…")
		contentWidth = lipgloss.Width(content)
	}
	if contentWidth < width {
		content += strings.Repeat(" ", width-contentWidth)
	}
	if selected {
		content = selectedStyle.Render(content)
	}
	return content
}

func (m Model) renderFooter(width int) string {
	var parts []string
	if issue, dragging := m.drag.DraggingIssue(); dragging {
		parts = append(parts, dragStyle.Render(fmt.Sprintf("moving #%d %s", issue.ID, issue.Title)))
	}
	if m.filtering || m.filter.Value() != "" {
		parts = append(parts, "filter: "+m.filter.View())
	}
	if m.status != "" {
		style := hintStyle
		if strings.Contains(m.status, "failed") {
			style = errStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	if len(parts) == 0 {
		return ""
	}
	footer := strings.Join(parts, "  ")
	if lipgloss.Width(footer) > width {
		footer = ansi.Truncate(footer, width, "…")
	}
	return footer
}
