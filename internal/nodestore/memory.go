package nodestore

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync/v2"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
)

type memoryStore struct {
	config

	nodes *xsync.MapOf[string, meta.StorageNode]

	mu       sync.RWMutex
	settings *meta.ClusterSettings
}

var _ Store = (*memoryStore)(nil)

// NewMemory returns a store that lives only as long as the process.
func NewMemory(opts ...Option) (Store, error) {
	return &memoryStore{
		config: newConfig(opts),
		nodes:  xsync.NewMapOf[meta.StorageNode](),
	}, nil
}

func (s *memoryStore) Find(_ context.Context, addr string) (meta.StorageNode, error) {
	sn, ok := s.nodes.Load(addr)
	if !ok {
		return meta.StorageNode{}, errNotFound(addr)
	}
	return sn.Clone(), nil
}

func (s *memoryStore) FindByMode(_ context.Context, modes ...types.OperationMode) ([]meta.StorageNode, error) {
	return s.collect(modeFilter(modes)), nil
}

func (s *memoryStore) List(context.Context) ([]meta.StorageNode, error) {
	return s.collect(func(meta.StorageNode) bool { return true }), nil
}

func (s *memoryStore) collect(match func(meta.StorageNode) bool) []meta.StorageNode {
	nodes := make([]meta.StorageNode, 0, s.nodes.Size())
	s.nodes.Range(func(_ string, sn meta.StorageNode) bool {
		if match(sn) {
			nodes = append(nodes, sn.Clone())
		}
		return true
	})
	sortByAddress(nodes)
	return nodes
}

func (s *memoryStore) Merge(_ context.Context, sn meta.StorageNode) (meta.StorageNode, error) {
	now := s.now()
	merged, _ := s.nodes.Compute(sn.Address, func(old meta.StorageNode, loaded bool) (meta.StorageNode, bool) {
		newNode := sn.Clone()
		newNode.CreateTime = now
		if loaded {
			newNode.CreateTime = old.CreateTime
		}
		newNode.UpdateTime = now
		return newNode, false
	})
	return merged.Clone(), nil
}

func (s *memoryStore) Update(_ context.Context, addr string, fn func(*meta.StorageNode) error) (meta.StorageNode, error) {
	var (
		updated meta.StorageNode
		err     error
	)
	s.nodes.Compute(addr, func(old meta.StorageNode, loaded bool) (meta.StorageNode, bool) {
		if !loaded {
			err = errNotFound(addr)
			return old, true
		}
		sn := old.Clone()
		if err = fn(&sn); err != nil {
			return old, false
		}
		sn.Address = addr
		sn.UpdateTime = s.now()
		updated = sn
		return sn, false
	})
	if err != nil {
		return meta.StorageNode{}, err
	}
	return updated.Clone(), nil
}

func (s *memoryStore) Remove(_ context.Context, addr string) error {
	if _, ok := s.nodes.LoadAndDelete(addr); !ok {
		return errNotFound(addr)
	}
	return nil
}

func (s *memoryStore) ClusterSettings(context.Context) (meta.ClusterSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return meta.DefaultClusterSettings(), nil
	}
	return *s.settings, nil
}

func (s *memoryStore) SaveClusterSettings(_ context.Context, settings meta.ClusterSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

func (s *memoryStore) Close() error {
	s.nodes.Clear()
	return nil
}
