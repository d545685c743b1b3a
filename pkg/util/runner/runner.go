// Package runner manages the goroutines of a component so that they can be
// canceled and awaited together.
package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type State int

const (
	Invalid State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "invalid"
	}
}

type Runner struct {
	name string

	wg sync.WaitGroup

	mu      sync.RWMutex
	taskID  atomic.Uint64
	cancels map[uint64]context.CancelFunc
	state   State

	numTasks atomic.Int64
	panics   atomic.Uint64

	logger *zap.Logger
}

func New(name string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		name:    name,
		cancels: make(map[uint64]context.CancelFunc),
		state:   Running,
		logger:  logger.Named("runner").With(zap.String("runner", name)),
	}
}

// WithManagedCancel returns a copy of parent that is also canceled when the
// runner stops. The returned cancel function must be called once the work
// bound to the context is over.
func (r *Runner) WithManagedCancel(parent context.Context) (context.Context, context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithCancel(parent)
	if r.state != Running {
		cancel()
		return ctx, cancel
	}

	taskID := r.taskID.Add(1)
	managedCancel := func() {
		cancel()
		r.mu.Lock()
		delete(r.cancels, taskID)
		r.mu.Unlock()
	}
	r.cancels[taskID] = managedCancel
	return ctx, managedCancel
}

// RunC executes f in a new goroutine with the given context. A panic in f is
// recovered and logged so that one task cannot bring the process down.
// Tasks started with an unmanaged context must be canceled by the caller
// before Stop, otherwise Stop waits for them.
func (r *Runner) RunC(ctx context.Context, task string, f func(context.Context)) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != Running {
		return fmt.Errorf("runner %s: %s", r.name, r.state)
	}

	r.wg.Add(1)
	r.numTasks.Add(1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.panics.Add(1)
				r.logger.Error("task panicked", zap.String("task", task), zap.Any("panic", p), zap.Stack("stack"))
			}
			r.numTasks.Add(-1)
			r.wg.Done()
		}()
		f(ctx)
	}()
	return nil
}

// Run executes f in a goroutine bound to a managed context, and returns the
// function canceling it.
func (r *Runner) Run(task string, f func(context.Context)) (context.CancelFunc, error) {
	ctx, cancel := r.WithManagedCancel(context.Background())
	if err := r.RunC(ctx, task, f); err != nil {
		cancel()
		return nil, err
	}
	return cancel, nil
}

// Stop cancels every managed task and waits for all tasks to return. It is
// safe to call Stop more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.state != Running {
		r.mu.Unlock()
		return
	}
	r.state = Stopping
	cancels := make([]context.CancelFunc, 0, len(r.cancels))
	for _, cancel := range r.cancels {
		cancels = append(cancels, cancel)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	r.wg.Wait()

	r.mu.Lock()
	r.state = Stopped
	r.mu.Unlock()
}

func (r *Runner) State() State {
	if r == nil {
		return Invalid
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Runner) NumTasks() int64 {
	if r == nil {
		return 0
	}
	return r.numTasks.Load()
}

// NumPanics returns how many tasks have panicked so far.
func (r *Runner) NumPanics() uint64 {
	return r.panics.Load()
}

func (r *Runner) String() string {
	if r == nil {
		return "invalid runner"
	}
	return fmt.Sprintf("runner %s: state=%s, tasks=%d", r.name, r.State(), r.NumTasks())
}
