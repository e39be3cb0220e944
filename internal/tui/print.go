package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/osbock/dymo-picture-print/internal/command"
	"github.com/osbock/dymo-picture-print/internal/pipeline"
	"github.com/osbock/dymo-picture-print/internal/printer"
	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// Form rows, top to bottom
const (
	rowPrinter = iota
	rowLabel
	rowAlgorithm
	rowSource
	rowBrightness
	rowContrast
	rowAction
	rowCount
)

// printResultMsg carries the outcome of an async print/preview
type printResultMsg struct {
	result *command.Result
}

// PrintModel handles the print tab: a small form that builds a job and
// hands it to the executor
type PrintModel struct {
	manager  *printer.Manager
	catalog  *labelspec.Catalog
	executor *command.Executor

	printers []*printer.Printer

	focusRow   int
	printerIdx int
	labelIdx   int
	algoIdx    int
	actionIdx  int // 0 = print, 1 = preview

	sourceInput     textinput.Model
	brightnessInput textinput.Model
	contrastInput   textinput.Model

	// inputFocused disables global keybindings while typing
	inputFocused bool

	width   int
	height  int
	busy    bool
	message string
	msgType string
}

// NewPrintModel creates a new print model
func NewPrintModel(manager *printer.Manager, catalog *labelspec.Catalog, executor *command.Executor) PrintModel {
	sourceInput := textinput.New()
	sourceInput.Placeholder = `path, URL, text:"...", qr:"...", barcode:"..."`
	sourceInput.CharLimit = 300
	sourceInput.Width = 50

	brightnessInput := textinput.New()
	brightnessInput.Placeholder = "1.2"
	brightnessInput.CharLimit = 8
	brightnessInput.Width = 10

	contrastInput := textinput.New()
	contrastInput.Placeholder = "1.0"
	contrastInput.CharLimit = 8
	contrastInput.Width = 10

	return PrintModel{
		manager:         manager,
		catalog:         catalog,
		executor:        executor,
		printers:        make([]*printer.Printer, 0),
		sourceInput:     sourceInput,
		brightnessInput: brightnessInput,
		contrastInput:   contrastInput,
	}
}

// SetSize sets the component size
func (m *PrintModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetPrinters updates the printer choices
func (m *PrintModel) SetPrinters(printers []*printer.Printer) {
	m.printers = printers
	if m.printerIdx >= len(m.printers) {
		m.printerIdx = 0
	}
}

func (m *PrintModel) syncFocus() {
	m.sourceInput.Blur()
	m.brightnessInput.Blur()
	m.contrastInput.Blur()
	m.inputFocused = false

	switch m.focusRow {
	case rowSource:
		m.sourceInput.Focus()
		m.inputFocused = true
	case rowBrightness:
		m.brightnessInput.Focus()
		m.inputFocused = true
	case rowContrast:
		m.contrastInput.Focus()
		m.inputFocused = true
	}
}

// Update handles messages
func (m PrintModel) Update(msg tea.Msg) (PrintModel, tea.Cmd) {
	switch msg := msg.(type) {
	case printResultMsg:
		m.busy = false
		if msg.result.Success {
			m.message = msg.result.Message
			m.msgType = "success"
		} else {
			m.message = msg.result.Error
			m.msgType = "error"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			if m.focusRow > 0 {
				m.focusRow--
				m.syncFocus()
			}
			return m, nil
		case "down", "enter":
			if msg.String() == "enter" && m.focusRow == rowAction {
				return m.submit()
			}
			if m.focusRow < rowCount-1 {
				m.focusRow++
				m.syncFocus()
			}
			return m, nil
		case "esc":
			m.focusRow = rowAction
			m.syncFocus()
			return m, nil
		case "left", "right":
			m.cycle(msg.String() == "right")
			if m.inputFocused {
				break // Let the focused input handle arrow keys
			}
			return m, nil
		}

		// Typing goes to the focused input
		var cmd tea.Cmd
		switch m.focusRow {
		case rowSource:
			m.sourceInput, cmd = m.sourceInput.Update(msg)
		case rowBrightness:
			m.brightnessInput, cmd = m.brightnessInput.Update(msg)
		case rowContrast:
			m.contrastInput, cmd = m.contrastInput.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

// cycle steps the choice on the focused row
func (m *PrintModel) cycle(forward bool) {
	step := func(idx, n int) int {
		if n == 0 {
			return 0
		}
		if forward {
			return (idx + 1) % n
		}
		return (idx + n - 1) % n
	}

	switch m.focusRow {
	case rowPrinter:
		m.printerIdx = step(m.printerIdx, len(m.printers))
	case rowLabel:
		m.labelIdx = step(m.labelIdx, len(m.catalog.Labels))
	case rowAlgorithm:
		m.algoIdx = step(m.algoIdx, len(pipeline.Algorithms))
	case rowAction:
		m.actionIdx = step(m.actionIdx, 2)
	}
}

// submit builds the command string and runs it asynchronously
func (m PrintModel) submit() (PrintModel, tea.Cmd) {
	source := strings.TrimSpace(m.sourceInput.Value())
	if source == "" {
		m.message = "Source is required"
		m.msgType = "error"
		return m, nil
	}

	var parts []string
	if m.actionIdx == 0 {
		if len(m.printers) == 0 {
			m.message = "No printers detected"
			m.msgType = "error"
			return m, nil
		}
		parts = append(parts, "print", m.printers[m.printerIdx].ID, quoteArg(source))
	} else {
		parts = append(parts, "preview", quoteArg(source))
	}

	parts = append(parts, "--label", m.catalog.Labels[m.labelIdx].Code)
	parts = append(parts, "--algorithm", pipeline.Algorithms[m.algoIdx])
	if v := strings.TrimSpace(m.brightnessInput.Value()); v != "" {
		parts = append(parts, "--brightness", v)
	}
	if v := strings.TrimSpace(m.contrastInput.Value()); v != "" {
		parts = append(parts, "--contrast", v)
	}

	cmdStr := strings.Join(parts, " ")
	m.busy = true
	m.message = ""

	executor := m.executor
	return m, func() tea.Msg {
		return printResultMsg{result: executor.Execute(cmdStr)}
	}
}

// quoteArg wraps an argument in quotes when it contains spaces, unless
// it already carries its own quoting (text:"..." forms)
func quoteArg(s string) string {
	if !strings.Contains(s, " ") || strings.ContainsAny(s, `"'`) {
		return s
	}
	return `"` + s + `"`
}

// View renders the print form
func (m PrintModel) View() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Print a Label"))
	b.WriteString("\n\n")

	label := func(row int, text string) string {
		if row == m.focusRow {
			return InputLabelFocusedStyle.Render(text)
		}
		return InputLabelStyle.Render(text)
	}

	// Printer
	printerName := "(none detected)"
	if len(m.printers) > 0 {
		p := m.printers[m.printerIdx]
		printerName = p.Description
		if p.Name != "" {
			printerName = p.Name
		}
	}
	b.WriteString(label(rowPrinter, "Printer    "))
	b.WriteString(" ◀ " + TextNormal.Render(Truncate(printerName, m.width-20)) + " ▶")
	b.WriteString("\n\n")

	// Label stock
	l := &m.catalog.Labels[m.labelIdx]
	b.WriteString(label(rowLabel, "Label      "))
	b.WriteString(" ◀ " + TextNormal.Render(fmt.Sprintf("%s %s (%gx%gin)", l.Code, l.Name, l.WidthIn, l.HeightIn)) + " ▶")
	b.WriteString("\n\n")

	// Algorithm
	b.WriteString(label(rowAlgorithm, "Dither     "))
	b.WriteString(" ◀ " + TextNormal.Render(pipeline.Algorithms[m.algoIdx]) + " ▶")
	b.WriteString("\n\n")

	// Source
	b.WriteString(label(rowSource, "Source     "))
	b.WriteString(" " + m.sourceInput.View())
	b.WriteString("\n\n")

	// Brightness / contrast
	b.WriteString(label(rowBrightness, "Brightness "))
	b.WriteString(" " + m.brightnessInput.View())
	b.WriteString("\n\n")
	b.WriteString(label(rowContrast, "Contrast   "))
	b.WriteString(" " + m.contrastInput.View())
	b.WriteString("\n")

	// Action button
	actionText := "Print"
	if m.actionIdx == 1 {
		actionText = "Preview"
	}
	if m.busy {
		actionText = "Working..."
	}
	if m.focusRow == rowAction {
		b.WriteString(ButtonStyle.Render(actionText))
	} else {
		b.WriteString(ButtonInactiveStyle.Render(actionText))
	}
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString("\n")
		switch m.msgType {
		case "success":
			b.WriteString(SuccessStyle.Render("✓ " + m.message))
		case "error":
			b.WriteString(ErrorStyle.Render("✗ " + m.message))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(RenderHelp("↑/↓", "move") + "  " +
		RenderHelp("←/→", "change") + "  " +
		RenderHelp("enter", "run"))

	return b.String()
}
