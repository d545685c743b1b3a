// Package session executes schema statements against the storage cluster.
package session

//go:generate mockgen -build_flags -mod=vendor -self_package github.com/kakao/snorch/internal/session -package session -destination session_mock.go . Session

import (
	"context"

	"github.com/kakao/snorch/pkg/meta"
)

// Session executes statements synchronously. An error means the statement
// may not have been applied.
type Session interface {
	Execute(ctx context.Context, statement string) error
}

// SchemaMetadata is implemented by sessions that can read the live schema.
type SchemaMetadata interface {
	ReplicationSettings(ctx context.Context) (meta.ReplicationSettings, error)
}

// SessionFunc adapts a function to Session.
type SessionFunc func(ctx context.Context, statement string) error

func (f SessionFunc) Execute(ctx context.Context, statement string) error {
	return f(ctx, statement)
}
