package jobqueue

import (
	"context"
	"fmt"

	"github.com/kakao/snorch/pkg/verrors"
)

type chQueue[T any] struct {
	queue chan T
}

func NewChQueue[T any](capacity int) (JobQueue[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("jobqueue: capacity %d: %w", capacity, verrors.ErrInvalid)
	}
	return &chQueue[T]{queue: make(chan T, capacity)}, nil
}

func (q *chQueue[T]) PushWithContext(ctx context.Context, item T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.queue <- item:
		return nil
	}
}

func (q *chQueue[T]) PopWithContext(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case item := <-q.queue:
		return item, nil
	}
}

func (q *chQueue[T]) Size() int {
	return len(q.queue)
}

func (q *chQueue[T]) Capacity() int {
	return cap(q.queue)
}
