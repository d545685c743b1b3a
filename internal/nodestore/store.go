// Package nodestore persists storage node records and the cluster settings.
package nodestore

//go:generate mockgen -build_flags -mod=vendor -self_package github.com/kakao/snorch/internal/nodestore -package nodestore -destination store_mock.go . Store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

// Store keeps storage node records. Every method is transactional with
// respect to a single record; no method updates more than one node
// atomically. Lists are ordered by address.
type Store interface {
	// Find returns the node at addr, or verrors.ErrNotFound.
	Find(ctx context.Context, addr string) (meta.StorageNode, error)

	// FindByMode returns the nodes in any of the given modes.
	FindByMode(ctx context.Context, modes ...types.OperationMode) ([]meta.StorageNode, error)

	List(ctx context.Context) ([]meta.StorageNode, error)

	// Merge inserts sn or replaces the stored node with the same address.
	// The creation time of a replaced node is kept.
	Merge(ctx context.Context, sn meta.StorageNode) (meta.StorageNode, error)

	// Update reads the node at addr, applies fn and writes the result back
	// atomically. The node is left untouched if fn returns an error.
	Update(ctx context.Context, addr string, fn func(*meta.StorageNode) error) (meta.StorageNode, error)

	// Remove deletes the node at addr, or returns verrors.ErrNotFound.
	Remove(ctx context.Context, addr string) error

	// ClusterSettings returns the saved settings, or the defaults if none
	// have been saved.
	ClusterSettings(ctx context.Context) (meta.ClusterSettings, error)

	SaveClusterSettings(ctx context.Context, settings meta.ClusterSettings) error

	Close() error
}

const (
	KindMemory   = "memory"
	KindPebble   = "pebble"
	KindPostgres = "postgres"
)

// Open opens a store by kind. The dsn is a directory for pebble and a
// connection string for postgres; memory ignores it.
func Open(ctx context.Context, kind, dsn string, opts ...Option) (Store, error) {
	switch strings.ToLower(kind) {
	case KindMemory:
		return NewMemory(opts...)
	case KindPebble:
		return OpenPebble(dsn, opts...)
	case KindPostgres:
		return OpenPostgres(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("nodestore: unknown kind %q: %w", kind, verrors.ErrInvalid)
	}
}

func errNotFound(addr string) error {
	return fmt.Errorf("nodestore: storage node %s: %w", addr, verrors.ErrNotFound)
}

func modeFilter(modes []types.OperationMode) func(meta.StorageNode) bool {
	return func(sn meta.StorageNode) bool {
		for _, mode := range modes {
			if sn.Mode == mode {
				return true
			}
		}
		return false
	}
}

func sortByAddress(nodes []meta.StorageNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Address < nodes[j].Address
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, verrors.ErrNotFound)
}
