package remoteop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docker/go-units"
	"github.com/puzpuzpuz/xsync/v2"
	"go.uber.org/zap"

	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/util/jobqueue"
	"github.com/kakao/snorch/pkg/util/runner"
	"github.com/kakao/snorch/pkg/verrors"
)

type job struct {
	req         Request
	scheduledAt time.Time

	mu       sync.Mutex
	canceled bool
	cancel   context.CancelFunc
}

// LocalExecutor runs operations with an Agent on a fixed pool of workers.
type LocalExecutor struct {
	config

	queue       jobqueue.JobQueue[*job]
	inflight    *xsync.MapOf[string, *job]
	completions chan Completion
	nextID      atomic.Uint64

	runner *runner.Runner
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

var _ Executor = (*LocalExecutor)(nil)

func NewLocalExecutor(opts ...Option) (*LocalExecutor, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	queue, err := jobqueue.NewChQueue[*job](cfg.queueSize)
	if err != nil {
		return nil, err
	}
	e := &LocalExecutor{
		config:      cfg,
		queue:       queue,
		inflight:    xsync.NewMapOf[*job](),
		completions: make(chan Completion, cfg.completionQueueSize),
		runner:      runner.New("remoteop", cfg.logger),
	}

	ctx, cancel := e.runner.WithManagedCancel(context.Background())
	e.cancel = cancel
	for i := 0; i < cfg.workers; i++ {
		if err := e.runner.RunC(ctx, fmt.Sprintf("worker-%d", i), e.work); err != nil {
			cancel()
			e.runner.Stop()
			return nil, err
		}
	}
	return e, nil
}

func (e *LocalExecutor) Schedule(ctx context.Context, req Request) (types.OperationID, error) {
	if !req.Kind.Valid() {
		return 0, fmt.Errorf("remoteop: operation kind %d: %w", req.Kind, verrors.ErrInvalid)
	}
	if req.Target == "" {
		return 0, fmt.Errorf("remoteop: no target: %w", verrors.ErrInvalid)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return 0, verrors.ErrStopped
	}

	req.ID = types.OperationID(e.nextID.Add(1))
	if req.Timeout <= 0 {
		req.Timeout = req.Kind.DefaultTimeout()
	}
	j := &job{req: req, scheduledAt: e.now()}
	e.inflight.Store(req.ID.String(), j)
	if err := e.queue.PushWithContext(ctx, j); err != nil {
		e.inflight.Delete(req.ID.String())
		return 0, err
	}
	e.logger.Debug("scheduled", zap.Stringer("request", req), zap.Duration("timeout", req.Timeout))
	return req.ID, nil
}

// Cancel cancels a scheduled or running operation. Its completion is
// reported as CANCELED.
func (e *LocalExecutor) Cancel(id types.OperationID) error {
	j, ok := e.inflight.Load(id.String())
	if !ok {
		return fmt.Errorf("remoteop: operation %s: %w", id, verrors.ErrNotFound)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.canceled = true
	if j.cancel != nil {
		j.cancel()
	}
	return nil
}

func (e *LocalExecutor) Completions() <-chan Completion {
	return e.completions
}

// Close stops the workers. Operations still running are canceled and
// reported; operations still queued are dropped.
func (e *LocalExecutor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.runner.Stop()
	close(e.completions)
	return nil
}

func (e *LocalExecutor) work(ctx context.Context) {
	for {
		j, err := e.queue.PopWithContext(ctx)
		if err != nil {
			return
		}
		e.run(ctx, j)
	}
}

func (e *LocalExecutor) run(ctx context.Context, j *job) {
	opCtx, cancel := context.WithTimeout(ctx, j.req.Timeout)
	defer cancel()

	j.mu.Lock()
	canceled := j.canceled
	j.cancel = cancel
	j.mu.Unlock()
	if canceled {
		e.finish(ctx, j, types.StatusCanceled, "canceled before start")
		return
	}

	e.emit(ctx, j, types.StatusInProgress, "")
	err := e.agent.Run(opCtx, j.req)

	j.mu.Lock()
	canceled = j.canceled
	j.mu.Unlock()

	switch {
	case err == nil:
		e.finish(ctx, j, types.StatusSuccess, "")
	case canceled || ctx.Err() != nil:
		e.finish(ctx, j, types.StatusCanceled, err.Error())
	case errors.Is(opCtx.Err(), context.DeadlineExceeded):
		e.finish(ctx, j, types.StatusFailure, "timed out after "+units.HumanDuration(j.req.Timeout))
	default:
		e.finish(ctx, j, types.StatusFailure, err.Error())
	}
}

// finish forgets the operation before its terminal completion is visible.
func (e *LocalExecutor) finish(ctx context.Context, j *job, status types.OperationStatus, msg string) {
	e.inflight.Delete(j.req.ID.String())
	e.emit(ctx, j, status, msg)
}

// emit delivers a completion. Once the executor is closing, a terminal
// completion is still delivered if there is room in the channel.
func (e *LocalExecutor) emit(ctx context.Context, j *job, status types.OperationStatus, msg string) {
	c := Completion{
		Request:     j.req,
		Status:      status,
		Message:     msg,
		ScheduledAt: j.scheduledAt,
	}
	if status.Terminal() {
		c.FinishedAt = e.now()
	}
	logger := e.logger.With(zap.Stringer("request", j.req), zap.Stringer("status", status))
	if status == types.StatusFailure || status == types.StatusCanceled {
		logger.Warn("completed", zap.String("message", msg))
	} else {
		logger.Debug("completed")
	}

	select {
	case e.completions <- c:
	case <-ctx.Done():
		select {
		case e.completions <- c:
		default:
			logger.Warn("dropped completion")
		}
	}
}
