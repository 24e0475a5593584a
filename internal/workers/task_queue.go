// Package workers runs the service's background goroutines: the async
// ingest queue and periodic cleanup.
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"brainbin/internal/logger"
)

// TaskStatus is the lifecycle of a queued task.
type TaskStatus string

const (
	StatusQueued     TaskStatus = "queued"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
	StatusNotFound   TaskStatus = "not_found"
)

// TaskResult is what Status reports for a task.
type TaskResult struct {
	TaskID     string      `json:"task_id"`
	Status     TaskStatus  `json:"status"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

type task struct {
	id string
	fn func(ctx context.Context) (interface{}, error)
}

// TaskQueue executes submitted functions on a fixed pool of workers and
// keeps finished results around long enough for clients to poll them.
type TaskQueue struct {
	mu        sync.Mutex
	results   map[string]*TaskResult
	tasks     chan task
	wg        sync.WaitGroup
	retention time.Duration
}

// NewTaskQueue starts the worker pool. The context stops the workers.
func NewTaskQueue(ctx context.Context, workers int) *TaskQueue {
	if workers <= 0 {
		workers = 2
	}
	q := &TaskQueue{
		results:   make(map[string]*TaskResult),
		tasks:     make(chan task, 64),
		retention: time.Hour,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	q.wg.Add(1)
	go q.janitor(ctx)

	return q
}

// Submit enqueues a function and returns its task id. Returns false when
// the queue is full.
func (q *TaskQueue) Submit(fn func(ctx context.Context) (interface{}, error)) (string, bool) {
	id := uuid.NewString()

	q.mu.Lock()
	q.results[id] = &TaskResult{
		TaskID:     id,
		Status:     StatusQueued,
		EnqueuedAt: time.Now(),
	}
	q.mu.Unlock()

	select {
	case q.tasks <- task{id: id, fn: fn}:
		return id, true
	default:
		q.mu.Lock()
		delete(q.results, id)
		q.mu.Unlock()
		return "", false
	}
}

// Status reports the state of a task. Unknown ids come back as
// not_found rather than an error so the endpoint stays polling-friendly.
func (q *TaskQueue) Status(taskID string) TaskResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	if res, ok := q.results[taskID]; ok {
		return *res
	}
	return TaskResult{TaskID: taskID, Status: StatusNotFound}
}

// Wait blocks until the workers have drained after the context is done.
func (q *TaskQueue) Wait() {
	q.wg.Wait()
}

func (q *TaskQueue) worker(ctx context.Context, n int) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-q.tasks:
			q.setStatus(t.id, StatusProcessing, nil, "")

			result, err := t.fn(ctx)
			if err != nil {
				logger.WorkerLog("task_queue", "task failed", err)
				q.setStatus(t.id, StatusFailed, nil, err.Error())
				continue
			}
			q.setStatus(t.id, StatusCompleted, result, "")
		}
	}
}

func (q *TaskQueue) setStatus(id string, status TaskStatus, result interface{}, errMsg string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	res, ok := q.results[id]
	if !ok {
		return
	}
	res.Status = status
	res.Result = result
	res.Error = errMsg
	if status == StatusCompleted || status == StatusFailed {
		now := time.Now()
		res.FinishedAt = &now
	}
}

// janitor drops finished results past the retention window.
func (q *TaskQueue) janitor(ctx context.Context) {
	defer q.wg.Done()

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-q.retention)
			q.mu.Lock()
			for id, res := range q.results {
				if res.FinishedAt != nil && res.FinishedAt.Before(cutoff) {
					delete(q.results, id)
				}
			}
			q.mu.Unlock()
		}
	}
}
