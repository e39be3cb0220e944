package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/osbock/dymo-picture-print/internal/command"
)

// CommandModel handles the vim-style command area
type CommandModel struct {
	executor   *command.Executor
	input      textinput.Model
	visible    bool
	lastResult *command.Result
	width      int
	height     int
	scrollPos  int

	// When lastResult lists printers, allow copying IDs
	printerIDs         []string
	selectedPrinterIdx int
}

// NewCommandModel creates a new command model
func NewCommandModel(executor *command.Executor) CommandModel {
	input := textinput.New()
	input.Placeholder = "Enter command (e.g., 'printer list', 'help')"
	input.CharLimit = 300
	input.Prompt = "> "
	input.PromptStyle = lipgloss.NewStyle().Foreground(Secondary)

	return CommandModel{
		executor: executor,
		input:    input,
		width:    80,
	}
}

// SetSize sets the component size
func (m *CommandModel) SetSize(width int) {
	if width < 40 {
		width = 40
	}
	m.width = width
	m.input.Width = width - 6
}

// SetHeight sets the maximum height for the command view
func (m *CommandModel) SetHeight(height int) {
	m.height = height
}

// Show shows the command input
func (m *CommandModel) Show() {
	m.visible = true
	m.input.Focus()
	m.lastResult = nil
	m.scrollPos = 0
	m.printerIDs = nil
	m.selectedPrinterIdx = 0
}

// Hide hides the command input
func (m *CommandModel) Hide() {
	m.visible = false
	m.input.Blur()
	m.input.SetValue("")
	m.printerIDs = nil
	m.selectedPrinterIdx = 0
}

// IsVisible returns whether the command input is visible
func (m *CommandModel) IsVisible() bool {
	return m.visible
}

// Update handles messages
func (m CommandModel) Update(msg tea.Msg) (CommandModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	var cmd tea.Cmd

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "enter":
		cmdStr := strings.TrimSpace(m.input.Value())
		if cmdStr != "" {
			m.lastResult = m.executor.Execute(cmdStr)
			m.input.SetValue("")
			m.scrollPos = 0
			// Keep the command bar open for quick follow-ups
			m.printerIDs = extractPrinterIDs(m.lastResult)
			m.selectedPrinterIdx = 0
		}
		return m, nil

	case "esc":
		m.Hide()
		return m, nil

	case "up":
		if m.scrollPos > 0 {
			m.scrollPos--
		}
		return m, nil

	case "down":
		m.scrollPos++
		return m, nil

	case "ctrl+j":
		if len(m.printerIDs) > 0 && m.selectedPrinterIdx < len(m.printerIDs)-1 {
			m.selectedPrinterIdx++
		}
		return m, nil

	case "ctrl+k":
		if len(m.printerIDs) > 0 && m.selectedPrinterIdx > 0 {
			m.selectedPrinterIdx--
		}
		return m, nil

	case "ctrl+y":
		if len(m.printerIDs) > 0 && m.selectedPrinterIdx < len(m.printerIDs) {
			id := m.printerIDs[m.selectedPrinterIdx]
			if id != "" && m.lastResult != nil && m.lastResult.Success {
				if err := copyToClipboard(id); err != nil {
					m.lastResult.Message = fmt.Sprintf("%s (copy failed: %v)", m.lastResult.Message, err)
				} else {
					m.lastResult.Message = fmt.Sprintf("%s (copied printer ID)", m.lastResult.Message)
				}
			}
		}
		return m, nil
	}

	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

// View renders the command area
func (m CommandModel) View() string {
	if !m.visible {
		return ""
	}

	availableHeight := m.height - 5
	if m.height == 0 {
		availableHeight = 15
	}
	if availableHeight < 3 {
		availableHeight = 3
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Command"))
	b.WriteString("\n")

	boxStyle := InputFocusedStyle.
		Width(m.width - 4).
		BorderForeground(Secondary)
	b.WriteString(boxStyle.Render(m.input.View()))
	b.WriteString("\n")

	resultLines := m.resultLines()

	// Clamp scroll and window the result
	maxScroll := len(resultLines) - availableHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	scroll := m.scrollPos
	if scroll > maxScroll {
		scroll = maxScroll
	}
	end := scroll + availableHeight
	if end > len(resultLines) {
		end = len(resultLines)
	}
	for _, line := range resultLines[scroll:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(RenderHelp("enter", "run") + "  " +
		RenderHelp("↑/↓", "scroll") + "  " +
		RenderHelp("ctrl+j/k", "pick printer") + "  " +
		RenderHelp("ctrl+y", "copy ID") + "  " +
		RenderHelp("esc", "close"))

	return b.String()
}

// resultLines formats the last result for display
func (m CommandModel) resultLines() []string {
	if m.lastResult == nil {
		return nil
	}

	var lines []string

	if !m.lastResult.Success {
		lines = append(lines, ErrorStyle.Render("✗ "+m.lastResult.Error))
		return lines
	}

	if m.lastResult.Message != "" {
		for _, line := range strings.Split(m.lastResult.Message, "\n") {
			if strings.HasPrefix(m.lastResult.Message, "Available Commands:") {
				lines = append(lines, TextMuted.Render(line))
			} else {
				lines = append(lines, SuccessStyle.Render("✓ "+line))
			}
		}
	}

	if printersVal, ok := m.lastResult.Data["printers"].([]map[string]interface{}); ok {
		lines = append(lines, "", SectionHeaderStyle.Render("Printers:"))
		for i, p := range printersVal {
			marker := "  "
			if i == m.selectedPrinterIdx {
				marker = "▶ "
			}
			name, _ := p["name"].(string)
			if name == "" {
				name, _ = p["description"].(string)
			}
			id, _ := p["id"].(string)
			labelCode, _ := p["label"].(string)
			line := fmt.Sprintf("%s%s", marker, name)
			if labelCode != "" {
				line += TextMuted.Render("  ["+labelCode+"]")
			}
			lines = append(lines, TextNormal.Render(line))
			lines = append(lines, TextMuted.Render("    "+id))
		}
	}

	if jobsVal, ok := m.lastResult.Data["jobs"].([]map[string]interface{}); ok {
		lines = append(lines, "", SectionHeaderStyle.Render("Jobs:"))
		for _, j := range jobsVal {
			id, _ := j["id"].(string)
			status, _ := j["status"].(string)
			labelCode, _ := j["label"].(string)
			lines = append(lines, TextNormal.Render(fmt.Sprintf("  %s  %s  %s", Truncate(id, 12), labelCode, status)))
		}
	}

	if labelsVal, ok := m.lastResult.Data["labels"].([]map[string]interface{}); ok {
		lines = append(lines, "", SectionHeaderStyle.Render("Labels:"))
		for _, l := range labelsVal {
			code, _ := l["code"].(string)
			name, _ := l["name"].(string)
			lines = append(lines, TextNormal.Render(fmt.Sprintf("  %-8s %s", code, name)))
		}
	}

	return lines
}

// extractPrinterIDs pulls printer IDs out of a result for ctrl+y copy
func extractPrinterIDs(result *command.Result) []string {
	if result == nil || result.Data == nil {
		return nil
	}

	printersVal, ok := result.Data["printers"].([]map[string]interface{})
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(printersVal))
	for _, p := range printersVal {
		if id, ok := p["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// copyToClipboard copies text, falling back to OSC52 for terminals over
// SSH where no system clipboard is reachable
func copyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}

	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("no clipboard available: %w", err)
	}
	defer tty.Close()

	_, err = osc52.New(text).WriteTo(tty)
	return err
}
