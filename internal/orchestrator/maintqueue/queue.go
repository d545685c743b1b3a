// Package maintqueue hands out the storage nodes pending maintenance one at
// a time.
//
// The pending flag is persisted on the node record. Nodes handed out by
// TakeNext are claimed in memory until Done or Release, so that a node is
// never handed out twice while its step is running.
package maintqueue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

var errModeChanged = errors.New("mode changed")

type Queue struct {
	config

	mu      sync.Mutex
	claimed map[string]struct{}
}

func New(opts ...Option) (*Queue, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Queue{
		config:  cfg,
		claimed: make(map[string]struct{}),
	}, nil
}

func defaultModes(modes []types.OperationMode) []types.OperationMode {
	if len(modes) == 0 {
		return []types.OperationMode{types.ModeNormal}
	}
	return modes
}

// MarkAllPending marks every node in the given modes, NORMAL by default, as
// pending and returns them. A node whose mode changes in the meantime is
// skipped.
func (q *Queue) MarkAllPending(ctx context.Context, modes ...types.OperationMode) ([]meta.StorageNode, error) {
	modes = defaultModes(modes)
	nodes, err := q.store.FindByMode(ctx, modes...)
	if err != nil {
		return nil, err
	}

	match := func(mode types.OperationMode) bool {
		for _, m := range modes {
			if m == mode {
				return true
			}
		}
		return false
	}

	marked := make([]meta.StorageNode, 0, len(nodes))
	for _, node := range nodes {
		sn, err := q.store.Update(ctx, node.Address, func(sn *meta.StorageNode) error {
			if !match(sn.Mode) {
				return errModeChanged
			}
			sn.MaintenancePending = true
			return nil
		})
		if errors.Is(err, errModeChanged) || errors.Is(err, verrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		marked = append(marked, sn)
	}
	q.logger.Debug("marked pending", zap.Strings("nodes", meta.Addresses(marked)))
	return marked, nil
}

// MarkPending marks the given nodes as pending and clears the error left by
// their previous workflow.
func (q *Queue) MarkPending(ctx context.Context, addrs ...string) ([]meta.StorageNode, error) {
	marked := make([]meta.StorageNode, 0, len(addrs))
	for _, addr := range addrs {
		sn, err := q.store.Update(ctx, addr, func(sn *meta.StorageNode) error {
			sn.MaintenancePending = true
			sn.ClearError()
			return nil
		})
		if err != nil {
			return nil, err
		}
		marked = append(marked, sn)
	}
	q.logger.Debug("marked pending", zap.Strings("nodes", addrs))
	return marked, nil
}

// TakeNext returns the first node, ordered by address, that is in one of the
// given modes, NORMAL by default, is pending and is not claimed yet. The
// returned node is claimed. It returns false if no such node remains.
func (q *Queue) TakeNext(ctx context.Context, modes ...types.OperationMode) (meta.StorageNode, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	nodes, err := q.store.FindByMode(ctx, defaultModes(modes)...)
	if err != nil {
		return meta.StorageNode{}, false, err
	}
	for _, sn := range nodes {
		if !sn.MaintenancePending {
			continue
		}
		if _, ok := q.claimed[sn.Address]; ok {
			continue
		}
		q.claimed[sn.Address] = struct{}{}
		return sn, true, nil
	}
	return meta.StorageNode{}, false, nil
}

// Done clears the pending flag of the node and releases its claim.
func (q *Queue) Done(ctx context.Context, addr string) error {
	defer q.Release(addr)
	_, err := q.store.Update(ctx, addr, func(sn *meta.StorageNode) error {
		sn.MaintenancePending = false
		return nil
	})
	if errors.Is(err, verrors.ErrNotFound) {
		return nil
	}
	return err
}

// Release releases the claim on the node and leaves it pending.
func (q *Queue) Release(addr string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.claimed, addr)
}

// Reset clears every pending flag and every claim.
func (q *Queue) Reset(ctx context.Context) (err error) {
	q.mu.Lock()
	q.claimed = make(map[string]struct{})
	q.mu.Unlock()

	nodes, err := q.Pending(ctx)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		_, uerr := q.store.Update(ctx, node.Address, func(sn *meta.StorageNode) error {
			sn.MaintenancePending = false
			return nil
		})
		if errors.Is(uerr, verrors.ErrNotFound) {
			continue
		}
		err = multierr.Append(err, uerr)
	}
	return err
}

// Pending returns the pending nodes in any mode.
func (q *Queue) Pending(ctx context.Context) ([]meta.StorageNode, error) {
	nodes, err := q.store.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := nodes[:0]
	for _, sn := range nodes {
		if sn.MaintenancePending {
			pending = append(pending, sn)
		}
	}
	return pending, nil
}

// Claimed returns the addresses of the claimed nodes in order.
func (q *Queue) Claimed() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	addrs := maps.Keys(q.claimed)
	slices.Sort(addrs)
	return addrs
}
