// Package jobqueue provides bounded queues handing jobs from producers to
// worker goroutines.
package jobqueue

import (
	"context"
)

type JobQueue[T any] interface {
	// PushWithContext adds item to the queue, blocking while it is full.
	PushWithContext(ctx context.Context, item T) error

	// PopWithContext removes the oldest item, blocking while it is empty.
	PopWithContext(ctx context.Context) (T, error)

	Size() int

	Capacity() int
}
