package printer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/osbock/dymo-picture-print/internal/pipeline"
)

// PrintJob represents a spooled label job
type PrintJob struct {
	ID        string
	PrinterID string
	LabelCode string
	Payload   *pipeline.SpoolPayload
	Retries   int
	Status    string // queued, printing, failed, completed
	Error     error
	CreatedAt time.Time

	// notBefore delays retries without blocking the worker
	notBefore time.Time
}

// PrintQueue manages print jobs with retry logic
type PrintQueue struct {
	jobs       []*PrintJob
	mu         sync.Mutex
	pool       *ConnectionPool
	manager    *Manager
	maxRetries int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	onJobUpdate func(*PrintJob)
}

// NewPrintQueue creates a new print queue
func NewPrintQueue(pool *ConnectionPool, manager *Manager, maxRetries int) *PrintQueue {
	ctx, cancel := context.WithCancel(context.Background())

	q := &PrintQueue{
		jobs:       make([]*PrintJob, 0),
		pool:       pool,
		manager:    manager,
		maxRetries: maxRetries,
		ctx:        ctx,
		cancel:     cancel,
	}

	// Start worker
	q.wg.Add(1)
	go q.worker()

	return q
}

// Enqueue adds a print job to the queue and returns its ID
func (q *PrintQueue) Enqueue(printerID string, labelCode string, payload *pipeline.SpoolPayload) string {
	q.mu.Lock()

	job := &PrintJob{
		ID:        uuid.New().String(),
		PrinterID: printerID,
		LabelCode: labelCode,
		Payload:   payload,
		Status:    "queued",
		CreatedAt: time.Now(),
	}

	q.jobs = append(q.jobs, job)
	jobCopy := *job
	cb := q.onJobUpdate
	q.mu.Unlock()

	if cb != nil {
		cb(&jobCopy)
	}
	return job.ID
}

// OnJobUpdate registers a callback invoked with a copy of the job on
// every status change
func (q *PrintQueue) OnJobUpdate(callback func(*PrintJob)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onJobUpdate = callback
}

// worker processes print jobs
func (q *PrintQueue) worker() {
	defer q.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processNextJob()
		}
	}
}

func (q *PrintQueue) processNextJob() {
	q.mu.Lock()

	// Find next runnable queued job
	var job *PrintJob
	now := time.Now()
	for _, j := range q.jobs {
		if j.Status == "queued" && !now.Before(j.notBefore) {
			job = j
			job.Status = "printing"
			break
		}
	}

	q.mu.Unlock()

	if job == nil {
		return
	}

	q.notifyJob(job)

	err := q.printJob(job)

	q.mu.Lock()

	if err != nil {
		job.Retries++
		job.Error = err

		if job.Retries >= q.maxRetries {
			job.Status = "failed"
			fmt.Printf("❌ Print job %s failed after %d retries: %v\n", job.ID, job.Retries, err)
		} else {
			job.Status = "queued" // Retry
			job.notBefore = time.Now().Add(time.Second)
			fmt.Printf("⚠️  Print job %s failed, retrying (%d/%d): %v\n",
				job.ID, job.Retries, q.maxRetries, err)
		}
	} else {
		job.Status = "completed"
		fmt.Printf("✅ Print job %s completed\n", job.ID)
	}
	q.mu.Unlock()

	q.notifyJob(job)
}

// notifyJob invokes the job-update callback with a snapshot of the job
func (q *PrintQueue) notifyJob(job *PrintJob) {
	q.mu.Lock()
	cb := q.onJobUpdate
	jobCopy := *job
	q.mu.Unlock()

	if cb != nil {
		cb(&jobCopy)
	}
}

func (q *PrintQueue) printJob(job *PrintJob) error {
	// Ensure printer is connected
	if !q.pool.IsConnected(job.PrinterID) {
		printer := q.manager.GetPrinter(job.PrinterID)
		if printer == nil {
			return fmt.Errorf("printer not found: %s", job.PrinterID)
		}

		if err := q.pool.Connect(printer); err != nil {
			return fmt.Errorf("failed to connect to printer: %w", err)
		}
	}

	return q.pool.Submit(job.PrinterID, job.Payload)
}

// GetJob returns a job by ID
func (q *PrintQueue) GetJob(jobID string) *PrintJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.ID == jobID {
			jobCopy := *job
			return &jobCopy
		}
	}

	return nil
}

// GetAllJobs returns all jobs
func (q *PrintQueue) GetAllJobs() []*PrintJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*PrintJob, len(q.jobs))
	for i, job := range q.jobs {
		jobCopy := *job
		jobs[i] = &jobCopy
	}

	return jobs
}

// ClearCompleted removes completed jobs from the queue
func (q *PrintQueue) ClearCompleted() {
	q.mu.Lock()
	defer q.mu.Unlock()

	filtered := make([]*PrintJob, 0)
	for _, job := range q.jobs {
		if job.Status != "completed" {
			filtered = append(filtered, job)
		}
	}

	q.jobs = filtered
}

// Stop stops the print queue worker
func (q *PrintQueue) Stop() {
	q.cancel()
	q.wg.Wait()
}
