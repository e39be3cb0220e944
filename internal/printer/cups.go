package printer

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/osbock/dymo-picture-print/internal/pipeline"
)

// preferredQueueKeywords rank CUPS queues by how likely they are to be a
// label printer. Checked in order against lowercased queue names.
var preferredQueueKeywords = []string{"dymo", "rx106", "comer"}

// DetectQueues lists the enabled CUPS queues on this host via lpstat.
func DetectQueues() ([]string, error) {
	out, err := exec.Command("lpstat", "-e").Output()
	if err != nil {
		return nil, fmt.Errorf("lpstat failed: %w", err)
	}

	return parseQueues(out), nil
}

// parseQueues splits lpstat -e output (one queue name per line)
func parseQueues(out []byte) []string {
	var queues []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			queues = append(queues, line)
		}
	}
	return queues
}

// PreferredQueue picks the queue most likely to be a label printer,
// falling back to the first queue when no keyword matches. Returns ""
// when there are no queues at all.
func PreferredQueue(queues []string) string {
	for _, keyword := range preferredQueueKeywords {
		for _, q := range queues {
			if strings.Contains(strings.ToLower(q), keyword) {
				return q
			}
		}
	}

	if len(queues) > 0 {
		return queues[0]
	}
	return ""
}

// CUPSConnection submits jobs through the local CUPS spooler using lp.
// There is nothing to open or close; each Submit is a standalone lp run.
type CUPSConnection struct {
	queue string
	mu    sync.Mutex
}

// ConnectCUPS creates a connection for a CUPS queue
func ConnectCUPS(queue string) (*CUPSConnection, error) {
	if queue == "" {
		return nil, fmt.Errorf("cups queue name is empty")
	}

	return &CUPSConnection{queue: queue}, nil
}

// submitArgs builds the lp argument list for a payload. PageSize comes
// from the label media name; the payload's remaining options (scaling,
// ppi, darkness) ride through as further -o flags.
func submitArgs(queue string, payload *pipeline.SpoolPayload, path string) []string {
	args := []string{"-d", queue}

	if payload.Media != "" {
		args = append(args, "-o", "PageSize="+payload.Media)
	}
	for _, opt := range payload.Options {
		args = append(args, "-o", opt)
	}

	return append(args, path)
}

// Submit writes the payload's PNG to a temp file and hands it to lp
func (c *CUPSConnection) Submit(payload *pipeline.SpoolPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(payload.PNG) == 0 {
		return fmt.Errorf("payload has no encoded image")
	}

	tmp, err := os.CreateTemp("", "label-*.png")
	if err != nil {
		return fmt.Errorf("failed to create spool file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload.PNG); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write spool file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close spool file: %w", err)
	}

	cmd := exec.Command("lp", submitArgs(c.queue, payload, tmp.Name())...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("lp failed for queue %s: %w (%s)", c.queue, err, strings.TrimSpace(string(out)))
	}

	return nil
}

// Write is not supported; CUPS jobs go through Submit
func (c *CUPSConnection) Write(data []byte) (int, error) {
	return 0, fmt.Errorf("raw writes are not supported for cups printers")
}

// Close is a no-op for CUPS connections
func (c *CUPSConnection) Close() error {
	return nil
}
