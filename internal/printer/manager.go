// Package printer handles label printer detection, connection, and spooling
package printer

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/google/gousb"
	"github.com/osbock/dymo-picture-print/internal/registry"
	"github.com/tarm/serial"
)

// Manager handles printer detection and management
type Manager struct {
	registry *registry.Registry
	printers map[string]*Printer
	mu       sync.RWMutex

	// Event callbacks
	onPrinterAdded   func(*Printer)
	onPrinterRemoved func(string)
}

// Printer represents a detected printer
type Printer struct {
	ID          string
	Type        string // cups, usb, serial, network
	Description string
	Queue       string // CUPS queue name
	Device      string
	VID         uint16
	PID         uint16
	Host        string
	Port        int
	Name        string // Custom user-set name
	Label       string // Default label code, if set
}

// NewManager creates a new printer manager
func NewManager(registryPath string) (*Manager, error) {
	reg, err := registry.New(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	return &Manager{
		registry: reg,
		printers: make(map[string]*Printer),
	}, nil
}

// DetectPrinters scans for all available printers. CUPS queues come
// first; they are the usual way a Dymo shows up.
func (m *Manager) DetectPrinters() ([]*Printer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var printers []*Printer

	cupsPrinters, err := m.detectCUPS()
	if err != nil {
		fmt.Printf("Warning: CUPS detection failed: %v\n", err)
	} else {
		printers = append(printers, cupsPrinters...)
	}

	usbPrinters, err := m.detectUSB()
	if err != nil {
		fmt.Printf("Warning: USB detection failed: %v\n", err)
	} else {
		printers = append(printers, usbPrinters...)
	}

	serialPrinters, err := m.detectSerial()
	if err != nil {
		fmt.Printf("Warning: Serial detection failed: %v\n", err)
	} else {
		printers = append(printers, serialPrinters...)
	}

	// Manually added network printers survive re-detection
	for _, p := range m.printers {
		if p.Type == "network" {
			printers = append(printers, p)
		}
	}

	m.printers = make(map[string]*Printer)
	for _, p := range printers {
		m.printers[p.ID] = p
	}

	return printers, nil
}

// PreferredPrinter returns the best print target among detected
// printers: a CUPS queue matching a known label printer keyword wins,
// then any CUPS queue, then anything else.
func (m *Manager) PreferredPrinter() *Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var queues []string
	byQueue := make(map[string]*Printer)
	for _, p := range m.printers {
		if p.Type == "cups" {
			queues = append(queues, p.Queue)
			byQueue[p.Queue] = p
		}
	}
	if q := PreferredQueue(queues); q != "" {
		return byQueue[q]
	}

	for _, p := range m.printers {
		return p
	}
	return nil
}

// GetPrinter returns a printer by ID
func (m *Manager) GetPrinter(id string) *Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.printers[id]
}

// GetAllPrinters returns all detected printers
func (m *Manager) GetAllPrinters() []*Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Printer, 0, len(m.printers))
	for _, p := range m.printers {
		result = append(result, p)
	}
	return result
}

// SetPrinterName sets a custom name for a printer
func (m *Manager) SetPrinterName(id string, name string) bool {
	success := m.registry.SetPrinterName(id, name)

	if success {
		m.mu.Lock()
		if printer, exists := m.printers[id]; exists {
			printer.Name = name
		}
		m.mu.Unlock()
	}

	return success
}

// SetDefaultLabel records which label stock a printer is loaded with
func (m *Manager) SetDefaultLabel(id string, labelCode string) bool {
	success := m.registry.SetDefaultLabel(id, labelCode)

	if success {
		m.mu.Lock()
		if printer, exists := m.printers[id]; exists {
			printer.Label = labelCode
		}
		m.mu.Unlock()
	}

	return success
}

// DefaultLabel returns the default label code for a printer, if set
func (m *Manager) DefaultLabel(id string) string {
	return m.registry.GetDefaultLabel(id)
}

// AddNetworkPrinter manually adds a network printer
func (m *Manager) AddNetworkPrinter(host string, port int, description string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := registry.PrinterInfo{
		Type:        "network",
		Host:        host,
		Port:        port,
		Description: description,
	}

	id := m.registry.GetPrinterID(info)

	printer := &Printer{
		ID:          id,
		Type:        "network",
		Description: description,
		Host:        host,
		Port:        port,
		Name:        m.registry.GetPrinterName(id),
		Label:       m.registry.GetDefaultLabel(id),
	}

	m.printers[id] = printer

	return id
}

// OnPrinterAdded sets a callback for when a printer is added
func (m *Manager) OnPrinterAdded(callback func(*Printer)) {
	m.onPrinterAdded = callback
}

// OnPrinterRemoved sets a callback for when a printer is removed
func (m *Manager) OnPrinterRemoved(callback func(string)) {
	m.onPrinterRemoved = callback
}

// detectCUPS registers every enabled CUPS queue as a printer
func (m *Manager) detectCUPS() ([]*Printer, error) {
	queues, err := DetectQueues()
	if err != nil {
		return nil, err
	}

	var printers []*Printer
	for _, queue := range queues {
		description := fmt.Sprintf("CUPS: %s", queue)

		info := registry.PrinterInfo{
			Type:        "cups",
			Queue:       queue,
			Description: description,
		}

		id := m.registry.GetPrinterID(info)

		printers = append(printers, &Printer{
			ID:          id,
			Type:        "cups",
			Description: description,
			Queue:       queue,
			Name:        m.registry.GetPrinterName(id),
			Label:       m.registry.GetDefaultLabel(id),
		})
	}

	return printers, nil
}

// detectUSB detects USB printers using libusb
func (m *Manager) detectUSB() ([]*Printer, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var printers []*Printer

	// Enumerate everything; class filtering happens below because many
	// printers only report class 7 on an interface, not the device.
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	for _, dev := range devices {
		desc := dev.Desc

		if !isPrinterClass(desc) {
			dev.Close()
			continue
		}

		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()

		description := fmt.Sprintf("USB: %04X:%04X", desc.Vendor, desc.Product)
		if manufacturer != "" || product != "" {
			description = fmt.Sprintf("USB: %s %s (%04X:%04X)",
				manufacturer, product, desc.Vendor, desc.Product)
		}

		info := registry.PrinterInfo{
			Type:        "usb",
			VID:         uint16(desc.Vendor),
			PID:         uint16(desc.Product),
			Description: description,
		}

		id := m.registry.GetPrinterID(info)

		printers = append(printers, &Printer{
			ID:          id,
			Type:        "usb",
			Description: description,
			VID:         uint16(desc.Vendor),
			PID:         uint16(desc.Product),
			Name:        m.registry.GetPrinterName(id),
			Label:       m.registry.GetDefaultLabel(id),
		})
		dev.Close()
	}

	return printers, nil
}

// isPrinterClass reports whether a device or any of its interfaces
// declares USB class 7 (printer)
func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}

	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

// detectSerial detects serial printers
func (m *Manager) detectSerial() ([]*Printer, error) {
	var printers []*Printer
	var ports []string

	switch runtime.GOOS {
	case "darwin":
		// macOS: Scan /dev/cu.* and /dev/tty.*
		skipPatterns := []string{"Bluetooth", "Modem", "SPP", "DialIn", "Callout", "KeySerial", "debug-console"}

		cuPorts, _ := filepath.Glob("/dev/cu.*")
		ttyPorts, _ := filepath.Glob("/dev/tty.*")
		allPorts := append(cuPorts, ttyPorts...)

		for _, port := range allPorts {
			skip := false
			for _, pattern := range skipPatterns {
				if strings.Contains(port, pattern) {
					skip = true
					break
				}
			}
			if !skip {
				ports = append(ports, port)
			}
		}

	case "linux":
		// Linux: Scan /dev/ttyUSB*, /dev/ttyACM*, etc.
		usbPorts, _ := filepath.Glob("/dev/ttyUSB*")
		acmPorts, _ := filepath.Glob("/dev/ttyACM*")
		ports = append(ports, usbPorts...)
		ports = append(ports, acmPorts...)

	case "windows":
		// Windows: Test COM1-COM256
		for i := 1; i <= 256; i++ {
			ports = append(ports, fmt.Sprintf("COM%d", i))
		}
	}

	for _, portPath := range ports {
		// Open briefly to verify the port exists
		config := &serial.Config{
			Name: portPath,
			Baud: 9600,
		}

		port, err := serial.OpenPort(config)
		if err != nil {
			continue
		}
		port.Close()

		description := fmt.Sprintf("Serial: %s", filepath.Base(portPath))

		info := registry.PrinterInfo{
			Type:        "serial",
			Device:      portPath,
			Description: description,
		}

		id := m.registry.GetPrinterID(info)

		printers = append(printers, &Printer{
			ID:          id,
			Type:        "serial",
			Description: description,
			Device:      portPath,
			Name:        m.registry.GetPrinterName(id),
			Label:       m.registry.GetDefaultLabel(id),
		})
	}

	return printers, nil
}
