// internal/purchase/tasks_test.go
package purchase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskQueueRunsTasks(t *testing.T) {
	q := NewTaskQueue(8)

	var ran int32
	q.Enqueue(Task{
		Name: "noop",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		},
	})

	q.Close()
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestTaskQueueRetriesOnce(t *testing.T) {
	q := NewTaskQueue(8)

	var attempts int32
	q.Enqueue(Task{
		Name: "flaky",
		Run: func(ctx context.Context) error {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return errors.New("transient")
			}
			return nil
		},
	})

	q.Close()
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestTaskQueueDropsAfterRetry(t *testing.T) {
	q := NewTaskQueue(8)

	var attempts int32
	q.Enqueue(Task{
		Name: "broken",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("permanent")
		},
	})

	var laterRan int32
	q.Enqueue(Task{
		Name: "later",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&laterRan, 1)
			return nil
		},
	})

	q.Close()
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&laterRan))
}

func TestTaskQueueCloseDrainsPending(t *testing.T) {
	q := NewTaskQueue(16)

	var ran int32
	for i := 0; i < 10; i++ {
		q.Enqueue(Task{
			Name: "batch",
			Run: func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			},
		})
	}

	q.Close()
	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestTaskQueueEnqueueAfterClose(t *testing.T) {
	q := NewTaskQueue(8)
	q.Close()

	var ran int32
	assert.NotPanics(t, func() {
		q.Enqueue(Task{
			Name: "late",
			Run: func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			},
		})
	})

	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestTaskQueueCloseIsIdempotent(t *testing.T) {
	q := NewTaskQueue(8)
	q.Close()
	assert.NotPanics(t, q.Close)
}
