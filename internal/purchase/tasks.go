// internal/purchase/tasks.go
package purchase

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is a best-effort follow-up to a completed purchase. A failed task is
// retried once and then dropped with a log entry.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskQueue runs purchase follow-ups on a single background worker so they
// never block or fail the request that enqueued them.
type TaskQueue struct {
	tasks   chan Task
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewTaskQueue(buffer int) *TaskQueue {
	if buffer <= 0 {
		buffer = 64
	}

	q := &TaskQueue{
		tasks:   make(chan Task, buffer),
		timeout: 10 * time.Second,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

func (q *TaskQueue) worker() {
	defer q.wg.Done()

	for task := range q.tasks {
		q.run(task)
	}
}

func (q *TaskQueue) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	err := task.Run(ctx)
	if err == nil {
		return
	}

	logrus.WithError(err).WithField("task", task.Name).Warn("Purchase follow-up failed, retrying once")

	retryCtx, retryCancel := context.WithTimeout(context.Background(), q.timeout)
	defer retryCancel()

	if err := task.Run(retryCtx); err != nil {
		logrus.WithError(err).WithField("task", task.Name).Error("Purchase follow-up dropped after retry")
	}
}

// Enqueue submits a task. A full queue or a closed queue drops the task with
// a log entry rather than blocking the caller.
func (q *TaskQueue) Enqueue(task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		logrus.WithField("task", task.Name).Warn("Task queue closed, dropping follow-up")
		return
	}

	select {
	case q.tasks <- task:
	default:
		logrus.WithField("task", task.Name).Warn("Task queue full, dropping follow-up")
	}
}

// Close stops accepting tasks and waits for queued ones to drain.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
}
