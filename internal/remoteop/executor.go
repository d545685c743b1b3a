package remoteop

//go:generate mockgen -build_flags -mod=vendor -self_package github.com/kakao/snorch/internal/remoteop -package remoteop -destination executor_mock.go . Executor

import (
	"context"

	"github.com/kakao/snorch/pkg/types"
)

// Executor runs remote operations. Schedule returns as soon as the request
// is accepted; the outcome is delivered later through Completions.
type Executor interface {
	Schedule(ctx context.Context, req Request) (types.OperationID, error)

	// Completions returns the channel of completion events. It is closed
	// when the executor is closed.
	Completions() <-chan Completion

	Close() error
}
