package printer

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/osbock/dymo-picture-print/internal/pipeline"
)

// stubConnection records submitted payloads and can be told to fail
type stubConnection struct {
	mu       sync.Mutex
	submits  int
	failures int // Fail the first N submits
}

func (s *stubConnection) Submit(payload *pipeline.SpoolPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submits++
	if s.submits <= s.failures {
		return fmt.Errorf("simulated spool failure %d", s.submits)
	}
	return nil
}

func (s *stubConnection) Write(data []byte) (int, error) { return len(data), nil }
func (s *stubConnection) Close() error                   { return nil }

func (s *stubConnection) submitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submits
}

func testQueue(t *testing.T, stub *stubConnection, printerID string, maxRetries int) *PrintQueue {
	t.Helper()

	manager, err := NewManager(filepath.Join(t.TempDir(), "registry.json"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	pool := NewConnectionPool()
	pool.connections[printerID] = stub

	q := NewPrintQueue(pool, manager, maxRetries)
	t.Cleanup(q.Stop)
	return q
}

func waitForStatus(t *testing.T, q *PrintQueue, jobID string, status string) *PrintJob {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job := q.GetJob(jobID); job != nil && job.Status == status {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}

	job := q.GetJob(jobID)
	t.Fatalf("Job %s never reached status %q (last: %+v)", jobID, status, job)
	return nil
}

func testPayload() *pipeline.SpoolPayload {
	return &pipeline.SpoolPayload{
		Raster:   []byte{0xFF},
		RowBytes: 1,
		Width:    8,
		Height:   1,
		PNG:      []byte{0x89},
	}
}

func TestQueue_CompletesJob(t *testing.T) {
	stub := &stubConnection{}
	q := testQueue(t, stub, "printer-1", 3)

	jobID := q.Enqueue("printer-1", "30256", testPayload())
	if jobID == "" {
		t.Fatal("Expected non-empty job ID")
	}

	job := waitForStatus(t, q, jobID, "completed")
	if job.LabelCode != "30256" {
		t.Errorf("Expected label code 30256, got %q", job.LabelCode)
	}
	if stub.submitCount() != 1 {
		t.Errorf("Expected 1 submit, got %d", stub.submitCount())
	}
}

func TestQueue_RetriesThenCompletes(t *testing.T) {
	stub := &stubConnection{failures: 2}
	q := testQueue(t, stub, "printer-1", 5)

	jobID := q.Enqueue("printer-1", "30256", testPayload())

	job := waitForStatus(t, q, jobID, "completed")
	if job.Retries != 2 {
		t.Errorf("Expected 2 retries, got %d", job.Retries)
	}
	if stub.submitCount() != 3 {
		t.Errorf("Expected 3 submits, got %d", stub.submitCount())
	}
}

func TestQueue_FailsAfterMaxRetries(t *testing.T) {
	stub := &stubConnection{failures: 100}
	q := testQueue(t, stub, "printer-1", 2)

	jobID := q.Enqueue("printer-1", "30256", testPayload())

	job := waitForStatus(t, q, jobID, "failed")
	if job.Error == nil {
		t.Error("Expected failed job to carry an error")
	}
	if job.Retries != 2 {
		t.Errorf("Expected 2 retries, got %d", job.Retries)
	}
}

func TestQueue_UnknownPrinterFails(t *testing.T) {
	stub := &stubConnection{}
	q := testQueue(t, stub, "printer-1", 1)

	jobID := q.Enqueue("no-such-printer", "30256", testPayload())

	waitForStatus(t, q, jobID, "failed")
	if stub.submitCount() != 0 {
		t.Errorf("Expected no submits for unknown printer, got %d", stub.submitCount())
	}
}

func TestQueue_ClearCompleted(t *testing.T) {
	stub := &stubConnection{}
	q := testQueue(t, stub, "printer-1", 3)

	jobID := q.Enqueue("printer-1", "30256", testPayload())
	waitForStatus(t, q, jobID, "completed")

	q.ClearCompleted()
	if q.GetJob(jobID) != nil {
		t.Error("Expected completed job gone after clear")
	}
	if len(q.GetAllJobs()) != 0 {
		t.Error("Expected empty queue after clear")
	}
}

func TestQueue_JobUpdateCallback(t *testing.T) {
	stub := &stubConnection{}
	q := testQueue(t, stub, "printer-1", 3)

	var mu sync.Mutex
	statuses := make(map[string]bool)
	q.OnJobUpdate(func(job *PrintJob) {
		mu.Lock()
		statuses[job.Status] = true
		mu.Unlock()
	})

	jobID := q.Enqueue("printer-1", "30256", testPayload())
	waitForStatus(t, q, jobID, "completed")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := statuses["completed"]
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, status := range []string{"queued", "printing", "completed"} {
		if !statuses[status] {
			t.Errorf("Expected callback for status %q", status)
		}
	}
}

func TestQueue_GetJobReturnsCopy(t *testing.T) {
	stub := &stubConnection{}
	q := testQueue(t, stub, "printer-1", 3)

	jobID := q.Enqueue("printer-1", "30256", testPayload())
	job := waitForStatus(t, q, jobID, "completed")

	job.Status = "mangled"
	if got := q.GetJob(jobID); got.Status != "completed" {
		t.Errorf("Expected queue state unaffected by caller mutation, got %q", got.Status)
	}
}
