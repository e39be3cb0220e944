package printer

import (
	"fmt"
	"sync"

	"github.com/osbock/dymo-picture-print/internal/pipeline"
)

// Connection is a unified interface for all printer backends. Submit
// spools a finished payload; Write sends raw bytes for backends that
// take the packed raster directly.
type Connection interface {
	Submit(payload *pipeline.SpoolPayload) error
	Write(data []byte) (int, error)
	Close() error
}

// ConnectionPool manages connections to printers
type ConnectionPool struct {
	connections map[string]Connection
	mu          sync.RWMutex
}

// NewConnectionPool creates a new connection pool
func NewConnectionPool() *ConnectionPool {
	return &ConnectionPool{
		connections: make(map[string]Connection),
	}
}

// Connect establishes a connection to a printer
func (p *ConnectionPool) Connect(printer *Printer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.connections[printer.ID]; exists {
		return nil // Already connected
	}

	var conn Connection
	var err error

	switch printer.Type {
	case "cups":
		conn, err = ConnectCUPS(printer.Queue)
	case "usb":
		conn, err = ConnectUSB(printer.VID, printer.PID)
	case "serial":
		conn, err = ConnectSerial(printer.Device, 9600)
	case "network":
		conn, err = ConnectNetwork(printer.Host, printer.Port)
	default:
		return fmt.Errorf("unsupported printer type: %s", printer.Type)
	}

	if err != nil {
		return err
	}

	p.connections[printer.ID] = conn
	return nil
}

// Submit spools a payload on a connected printer
func (p *ConnectionPool) Submit(printerID string, payload *pipeline.SpoolPayload) error {
	p.mu.RLock()
	conn, exists := p.connections[printerID]
	p.mu.RUnlock()

	if !exists {
		return fmt.Errorf("printer not connected: %s", printerID)
	}

	return conn.Submit(payload)
}

// Disconnect closes a printer connection
func (p *ConnectionPool) Disconnect(printerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, exists := p.connections[printerID]
	if !exists {
		return nil // Already disconnected
	}

	err := conn.Close()
	delete(p.connections, printerID)

	return err
}

// DisconnectAll closes all connections
func (p *ConnectionPool) DisconnectAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, conn := range p.connections {
		conn.Close()
		delete(p.connections, id)
	}
}

// IsConnected checks if a printer is connected
func (p *ConnectionPool) IsConnected(printerID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, exists := p.connections[printerID]
	return exists
}
