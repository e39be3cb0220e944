package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/osbock/dymo-picture-print/internal/printer"
)

// JobsModel handles the jobs tab
type JobsModel struct {
	queue        *printer.PrintQueue
	jobs         []*printer.PrintJob
	cursor       int
	scrollOffset int
	width        int
	height       int
	message      string
	msgType      string
}

// NewJobsModel creates a new jobs model
func NewJobsModel(queue *printer.PrintQueue) JobsModel {
	return JobsModel{
		queue: queue,
		jobs:  make([]*printer.PrintJob, 0),
	}
}

// SetSize sets the component size
func (m *JobsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.adjustScroll()
}

// Refresh refreshes the job list
func (m *JobsModel) Refresh() {
	m.jobs = m.queue.GetAllJobs()
	if m.cursor >= len(m.jobs) && len(m.jobs) > 0 {
		m.cursor = len(m.jobs) - 1
	}
	m.adjustScroll()
}

// Update handles messages
func (m JobsModel) Update(msg tea.Msg) (JobsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}
	case "down", "j":
		if m.cursor < len(m.jobs)-1 {
			m.cursor++
			m.adjustScroll()
		}
	case "r":
		m.Refresh()
		m.message = "Refreshed"
		m.msgType = "success"
	case "c":
		m.queue.ClearCompleted()
		m.Refresh()
		m.message = "Cleared completed"
		m.msgType = "success"
	}

	return m, nil
}

// View renders the jobs tab
func (m JobsModel) View() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Print Queue"))
	b.WriteString("\n\n")

	if len(m.jobs) == 0 {
		b.WriteString(TextMuted.Render("No jobs in queue.\n"))
		b.WriteString(TextMuted.Render("Go to Print tab to send a label.\n"))
	} else {
		queued, printing, completed, failed := 0, 0, 0, 0
		for _, j := range m.jobs {
			switch j.Status {
			case "queued":
				queued++
			case "printing":
				printing++
			case "completed":
				completed++
			case "failed":
				failed++
			}
		}

		statsLine := ""
		if queued > 0 {
			statsLine += WarningStyle.Render(fmt.Sprintf("%d queued", queued)) + "  "
		}
		if printing > 0 {
			statsLine += InfoStyle.Render(fmt.Sprintf("%d printing", printing)) + "  "
		}
		if completed > 0 {
			statsLine += SuccessStyle.Render(fmt.Sprintf("%d completed", completed)) + "  "
		}
		if failed > 0 {
			statsLine += ErrorStyle.Render(fmt.Sprintf("%d failed", failed))
		}
		b.WriteString(statsLine)
		b.WriteString("\n\n")

		maxJobs := m.height - 12
		if maxJobs < 1 {
			maxJobs = 1
		}

		startIdx := m.scrollOffset
		endIdx := startIdx + maxJobs
		if endIdx > len(m.jobs) {
			endIdx = len(m.jobs)
		}

		for i := startIdx; i < endIdx; i++ {
			job := m.jobs[i]
			cursor := "  "
			style := ListItemStyle
			if i == m.cursor {
				cursor = "▸ "
				style = SelectedItemStyle
			}

			var statusStyle lipgloss.Style
			switch job.Status {
			case "queued":
				statusStyle = WarningStyle
			case "printing":
				statusStyle = InfoStyle
			case "completed":
				statusStyle = SuccessStyle
			case "failed":
				statusStyle = ErrorStyle
			default:
				statusStyle = TextMuted
			}

			age := time.Since(job.CreatedAt).Truncate(time.Second).String()

			line := fmt.Sprintf("%s%s  %s  %s  %s",
				cursor,
				Truncate(job.ID, 12),
				TextMuted.Render(job.LabelCode),
				statusStyle.Render(job.Status),
				TextMuted.Render(age))

			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}

		if m.scrollOffset > 0 || endIdx < len(m.jobs) {
			b.WriteString(TextMuted.Render("  ... scroll with ↑/↓ ...\n"))
		}

		if m.cursor < len(m.jobs) {
			job := m.jobs[m.cursor]
			b.WriteString("\n")
			b.WriteString(SectionHeaderStyle.Render("DETAILS"))
			b.WriteString("\n")

			b.WriteString(TextMuted.Render("ID: ") + TextNormal.Render(job.ID))
			b.WriteString("\n")
			b.WriteString(TextMuted.Render("Printer: ") + TextNormal.Render(job.PrinterID))
			b.WriteString("\n")
			b.WriteString(TextMuted.Render("Label: ") + TextNormal.Render(job.LabelCode))
			b.WriteString("\n")
			b.WriteString(TextMuted.Render("Created: ") + TextNormal.Render(job.CreatedAt.Format("15:04:05")))

			if job.Retries > 0 {
				b.WriteString("\n")
				b.WriteString(TextMuted.Render("Retries: ") + WarningStyle.Render(fmt.Sprintf("%d", job.Retries)))
			}

			if job.Error != nil {
				b.WriteString("\n")
				b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", job.Error)))
			}
		}
	}

	if m.message != "" {
		b.WriteString("\n\n")
		switch m.msgType {
		case "success":
			b.WriteString(SuccessStyle.Render("✓ " + m.message))
		case "error":
			b.WriteString(ErrorStyle.Render("✗ " + m.message))
		default:
			b.WriteString(InfoStyle.Render("ℹ " + m.message))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(RenderHelp("↑/↓", "select") + "  " +
		RenderHelp("c", "clear done") + "  " +
		RenderHelp("r", "refresh"))

	return b.String()
}

// adjustScroll keeps the cursor visible
func (m *JobsModel) adjustScroll() {
	if len(m.jobs) == 0 {
		m.scrollOffset = 0
		return
	}

	maxVisible := m.height - 12
	if maxVisible < 1 {
		maxVisible = 1
	}

	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+maxVisible {
		m.scrollOffset = m.cursor - maxVisible + 1
	}

	maxOffset := len(m.jobs) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
}
