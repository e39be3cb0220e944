package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/osbock/dymo-picture-print/internal/printer"
	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// PrintersModel handles the printers tab
type PrintersModel struct {
	manager      *printer.Manager
	catalog      *labelspec.Catalog
	printers     []*printer.Printer
	cursor       int
	scrollOffset int
	width        int
	height       int

	// Edit modes: "" (list), "add", "rename", "label"
	mode       string
	hostInput  textinput.Model
	portInput  textinput.Model
	nameInput  textinput.Model
	inputFocus int // 0 = host, 1 = port (add mode)
	labelIdx   int // cursor into catalog (label mode)

	message     string
	messageType string
}

// NewPrintersModel creates a new printers model
func NewPrintersModel(manager *printer.Manager, catalog *labelspec.Catalog) PrintersModel {
	hostInput := textinput.New()
	hostInput.Placeholder = "192.168.1.100"
	hostInput.CharLimit = 45
	hostInput.Width = 30

	portInput := textinput.New()
	portInput.Placeholder = "9100"
	portInput.CharLimit = 5
	portInput.Width = 10

	nameInput := textinput.New()
	nameInput.Placeholder = "Warehouse Labeler"
	nameInput.CharLimit = 60
	nameInput.Width = 30

	return PrintersModel{
		manager:   manager,
		catalog:   catalog,
		printers:  make([]*printer.Printer, 0),
		hostInput: hostInput,
		portInput: portInput,
		nameInput: nameInput,
	}
}

// SetSize sets the component size
func (m *PrintersModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.adjustScroll()
}

// Refresh refreshes the printer list (synchronous, may block)
func (m *PrintersModel) Refresh() {
	printers, _ := m.manager.DetectPrinters()
	m.SetPrinters(printers)
}

// SetPrinters sets the printer list (thread-safe update)
func (m *PrintersModel) SetPrinters(printers []*printer.Printer) {
	m.printers = printers
	if m.cursor >= len(m.printers) && len(m.printers) > 0 {
		m.cursor = len(m.printers) - 1
	}
	m.adjustScroll()
}

func (m *PrintersModel) inputFocused() bool {
	return m.mode != ""
}

func (m *PrintersModel) selected() *printer.Printer {
	if m.cursor >= 0 && m.cursor < len(m.printers) {
		return m.printers[m.cursor]
	}
	return nil
}

// Update handles messages
func (m PrintersModel) Update(msg tea.Msg) (PrintersModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.mode {
	case "add":
		return m.updateAddMode(keyMsg)
	case "rename":
		return m.updateRenameMode(keyMsg)
	case "label":
		return m.updateLabelMode(keyMsg)
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}
	case "down", "j":
		if m.cursor < len(m.printers)-1 {
			m.cursor++
			m.adjustScroll()
		}
	case "r":
		m.Refresh()
		m.message = "Refreshed printer list"
		m.messageType = "success"
	case "a":
		m.mode = "add"
		m.inputFocus = 0
		m.hostInput.SetValue("")
		m.portInput.SetValue("")
		m.hostInput.Focus()
	case "n":
		if p := m.selected(); p != nil {
			m.mode = "rename"
			m.nameInput.SetValue(p.Name)
			m.nameInput.Focus()
		}
	case "l":
		if p := m.selected(); p != nil {
			m.mode = "label"
			m.labelIdx = 0
			for i := range m.catalog.Labels {
				if m.catalog.Labels[i].Code == p.Label {
					m.labelIdx = i
				}
			}
		}
	}

	return m, nil
}

func (m PrintersModel) updateAddMode(msg tea.KeyMsg) (PrintersModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		m.mode = ""
		m.hostInput.Blur()
		m.portInput.Blur()
	case "tab", "shift+tab":
		m.inputFocus = 1 - m.inputFocus
		if m.inputFocus == 0 {
			m.hostInput.Focus()
			m.portInput.Blur()
		} else {
			m.portInput.Focus()
			m.hostInput.Blur()
		}
	case "enter":
		host := strings.TrimSpace(m.hostInput.Value())
		if host == "" {
			m.message = "Host is required"
			m.messageType = "error"
			return m, nil
		}
		port := 9100
		if v := strings.TrimSpace(m.portInput.Value()); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				m.message = "Invalid port"
				m.messageType = "error"
				return m, nil
			}
			port = p
		}
		m.manager.AddNetworkPrinter(host, port, fmt.Sprintf("Network: %s:%d", host, port))
		m.mode = ""
		m.hostInput.Blur()
		m.portInput.Blur()
		m.SetPrinters(m.manager.GetAllPrinters())
		m.message = fmt.Sprintf("Added network printer %s:%d", host, port)
		m.messageType = "success"
	default:
		if m.inputFocus == 0 {
			m.hostInput, cmd = m.hostInput.Update(msg)
		} else {
			m.portInput, cmd = m.portInput.Update(msg)
		}
	}

	return m, cmd
}

func (m PrintersModel) updateRenameMode(msg tea.KeyMsg) (PrintersModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		m.mode = ""
		m.nameInput.Blur()
	case "enter":
		p := m.selected()
		name := strings.TrimSpace(m.nameInput.Value())
		if p != nil && name != "" {
			m.manager.SetPrinterName(p.ID, name)
			m.message = fmt.Sprintf("Renamed to %s", name)
			m.messageType = "success"
			m.SetPrinters(m.manager.GetAllPrinters())
		}
		m.mode = ""
		m.nameInput.Blur()
	default:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}

	return m, cmd
}

func (m PrintersModel) updateLabelMode(msg tea.KeyMsg) (PrintersModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ""
	case "up", "k":
		if m.labelIdx > 0 {
			m.labelIdx--
		}
	case "down", "j":
		if m.labelIdx < len(m.catalog.Labels)-1 {
			m.labelIdx++
		}
	case "enter":
		p := m.selected()
		if p != nil && m.labelIdx < len(m.catalog.Labels) {
			code := m.catalog.Labels[m.labelIdx].Code
			m.manager.SetDefaultLabel(p.ID, code)
			m.message = fmt.Sprintf("Default label set to %s", code)
			m.messageType = "success"
			m.SetPrinters(m.manager.GetAllPrinters())
		}
		m.mode = ""
	}

	return m, nil
}

// View renders the printers tab
func (m PrintersModel) View() string {
	switch m.mode {
	case "add":
		return m.viewAddMode()
	case "label":
		return m.viewLabelMode()
	case "rename":
		return m.viewRenameMode()
	}

	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Printers"))
	b.WriteString("\n\n")

	if len(m.printers) == 0 {
		b.WriteString(TextMuted.Render("No printers detected.\n"))
		b.WriteString(TextMuted.Render("Press r to re-scan or a to add a network printer.\n"))
	} else {
		maxVisible := m.visibleRows()
		endIdx := m.scrollOffset + maxVisible
		if endIdx > len(m.printers) {
			endIdx = len(m.printers)
		}

		for i := m.scrollOffset; i < endIdx; i++ {
			p := m.printers[i]
			cursor := "  "
			style := ListItemStyle
			if i == m.cursor {
				cursor = "▸ "
				style = SelectedItemStyle
			}

			name := p.Description
			if p.Name != "" {
				name = p.Name
			}

			line := fmt.Sprintf("%s%s %s", cursor, StatusIcon("online"), Truncate(name, m.width-14))
			if p.Label != "" {
				line += TextMuted.Render(fmt.Sprintf("  [%s]", p.Label))
			}

			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}

		if p := m.selected(); p != nil {
			b.WriteString("\n")
			b.WriteString(SectionHeaderStyle.Render("DETAILS"))
			b.WriteString("\n")
			b.WriteString(TextMuted.Render("ID: ") + TextNormal.Render(p.ID))
			b.WriteString("\n")
			b.WriteString(TextMuted.Render("Type: ") + TextNormal.Render(p.Type))
			switch p.Type {
			case "cups":
				b.WriteString("\n" + TextMuted.Render("Queue: ") + TextNormal.Render(p.Queue))
			case "usb":
				b.WriteString("\n" + TextMuted.Render("Device: ") + TextNormal.Render(fmt.Sprintf("%04X:%04X", p.VID, p.PID)))
			case "serial":
				b.WriteString("\n" + TextMuted.Render("Device: ") + TextNormal.Render(p.Device))
			case "network":
				b.WriteString("\n" + TextMuted.Render("Address: ") + TextNormal.Render(fmt.Sprintf("%s:%d", p.Host, p.Port)))
			}
			if p.Label != "" {
				b.WriteString("\n" + TextMuted.Render("Label: ") + TextNormal.Render(p.Label))
			}
		}
	}

	if m.message != "" {
		b.WriteString("\n\n")
		switch m.messageType {
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
		RenderHelp("r", "re-scan") + "  " +
		RenderHelp("a", "add network") + "  " +
		RenderHelp("n", "rename") + "  " +
		RenderHelp("l", "set label"))

	return b.String()
}

func (m PrintersModel) viewAddMode() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Add Network Printer"))
	b.WriteString("\n\n")

	hostLabel := InputLabelStyle
	portLabel := InputLabelStyle
	if m.inputFocus == 0 {
		hostLabel = InputLabelFocusedStyle
	} else {
		portLabel = InputLabelFocusedStyle
	}

	b.WriteString(hostLabel.Render("Host"))
	b.WriteString("\n")
	b.WriteString(m.hostInput.View())
	b.WriteString("\n\n")
	b.WriteString(portLabel.Render("Port"))
	b.WriteString("\n")
	b.WriteString(m.portInput.View())
	b.WriteString("\n\n")
	b.WriteString(RenderHelp("tab", "switch field") + "  " +
		RenderHelp("enter", "add") + "  " +
		RenderHelp("esc", "cancel"))

	return b.String()
}

func (m PrintersModel) viewRenameMode() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Rename Printer"))
	b.WriteString("\n\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n\n")
	b.WriteString(RenderHelp("enter", "save") + "  " + RenderHelp("esc", "cancel"))

	return b.String()
}

func (m PrintersModel) viewLabelMode() string {
	var b strings.Builder

	b.WriteString(CardTitleStyle.Render("Default Label Stock"))
	b.WriteString("\n\n")

	for i := range m.catalog.Labels {
		l := &m.catalog.Labels[i]
		cursor := "  "
		style := ListItemStyle
		if i == m.labelIdx {
			cursor = "▸ "
			style = SelectedItemStyle
		}

		line := fmt.Sprintf("%s%-8s %s (%gx%gin @ %gdpi)", cursor, l.Code, l.Name, l.WidthIn, l.HeightIn, l.DPI)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelp("↑/↓", "select") + "  " +
		RenderHelp("enter", "set") + "  " +
		RenderHelp("esc", "cancel"))

	return b.String()
}

func (m PrintersModel) visibleRows() int {
	rows := m.height - 14
	if rows < 1 {
		rows = 1
	}
	return rows
}

// adjustScroll keeps the cursor visible
func (m *PrintersModel) adjustScroll() {
	if len(m.printers) == 0 {
		m.scrollOffset = 0
		return
	}

	maxVisible := m.visibleRows()

	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+maxVisible {
		m.scrollOffset = m.cursor - maxVisible + 1
	}

	maxOffset := len(m.printers) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
}
