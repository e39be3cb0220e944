package printer

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/osbock/dymo-picture-print/internal/pipeline"
)

// NetworkConnection represents a network printer connection (raw port
// 9100 style)
type NetworkConnection struct {
	conn net.Conn
	mu   sync.Mutex
}

// ConnectNetwork connects to a network printer
func ConnectNetwork(host string, port int) (*NetworkConnection, error) {
	address := fmt.Sprintf("%s:%d", host, port)

	conn, err := net.DialTimeout("tcp", address, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to network printer: %w", err)
	}

	return &NetworkConnection{
		conn: conn,
	}, nil
}

// Write sends data to the network printer
func (c *NetworkConnection) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.Write(data)
}

// Submit sends the packed raster straight down the wire
func (c *NetworkConnection) Submit(payload *pipeline.SpoolPayload) error {
	if len(payload.Raster) == 0 {
		return fmt.Errorf("payload has no raster data")
	}

	if _, err := c.Write(payload.Raster); err != nil {
		return fmt.Errorf("failed to write to network printer: %w", err)
	}

	return nil
}

// Close closes the network connection
func (c *NetworkConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
