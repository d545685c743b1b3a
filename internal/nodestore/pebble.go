package nodestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/docker/go-units"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/util/fputil"
)

const (
	storageNodeKeyPrefix = "sn/"
	// storageNodeKeyEnd is the exclusive upper bound of node keys, '/'+1.
	storageNodeKeyEnd = "sn0"
	settingsKey       = "settings"
)

type pebbleStore struct {
	config

	db *pebble.DB

	// wmu serializes read-modify-write cycles so that Update is atomic per
	// record.
	wmu sync.Mutex
}

var _ Store = (*pebbleStore)(nil)

// OpenPebble opens, or creates, a store in the directory dir.
func OpenPebble(dir string, opts ...Option) (Store, error) {
	if dir == "" {
		return nil, errors.New("nodestore: no directory for pebble")
	}
	cfg := newConfig(opts)
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("nodestore: open pebble %s: %w", dir, err)
	}
	fields := []zap.Field{
		zap.String("dir", dir),
		zap.String("size", units.BytesSize(float64(fputil.DirectorySize(dir)))),
	}
	cfg.logger.Info("opened pebble", append(fields, diskUsageFields(dir, cfg.logger)...)...)
	return &pebbleStore{config: cfg, db: db}, nil
}

// diskUsageFields describes the filesystem holding dir. It returns no field
// if the filesystem cannot be inspected.
func diskUsageFields(dir string, logger *zap.Logger) []zap.Field {
	all, used, err := fputil.DiskSize(dir)
	if err != nil {
		logger.Warn("could not inspect disk", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	return []zap.Field{
		zap.String("disk_total", units.BytesSize(float64(all))),
		zap.String("disk_used", units.BytesSize(float64(used))),
	}
}

func storageNodeKey(addr string) []byte {
	return []byte(storageNodeKeyPrefix + addr)
}

func (s *pebbleStore) get(key []byte, v any) (bool, error) {
	buf, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() {
		_ = closer.Close()
	}()
	if err := json.Unmarshal(buf, v); err != nil {
		return false, fmt.Errorf("nodestore: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *pebbleStore) set(key []byte, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Set(key, buf, pebble.Sync)
}

func (s *pebbleStore) Find(_ context.Context, addr string) (meta.StorageNode, error) {
	var sn meta.StorageNode
	ok, err := s.get(storageNodeKey(addr), &sn)
	if err != nil {
		return meta.StorageNode{}, err
	}
	if !ok {
		return meta.StorageNode{}, errNotFound(addr)
	}
	return sn, nil
}

func (s *pebbleStore) FindByMode(_ context.Context, modes ...types.OperationMode) ([]meta.StorageNode, error) {
	return s.scan(modeFilter(modes))
}

func (s *pebbleStore) List(context.Context) ([]meta.StorageNode, error) {
	return s.scan(func(meta.StorageNode) bool { return true })
}

// scan returns matching nodes in key order, which is address order.
func (s *pebbleStore) scan(match func(meta.StorageNode) bool) (nodes []meta.StorageNode, err error) {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(storageNodeKeyPrefix),
		UpperBound: []byte(storageNodeKeyEnd),
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, it.Close())
	}()

	for valid := it.First(); valid; valid = it.Next() {
		var sn meta.StorageNode
		if err := json.Unmarshal(it.Value(), &sn); err != nil {
			return nil, fmt.Errorf("nodestore: decode %s: %w", it.Key(), err)
		}
		if match(sn) {
			nodes = append(nodes, sn)
		}
	}
	return nodes, nil
}

func (s *pebbleStore) Merge(_ context.Context, sn meta.StorageNode) (meta.StorageNode, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	now := s.now()
	var old meta.StorageNode
	loaded, err := s.get(storageNodeKey(sn.Address), &old)
	if err != nil {
		return meta.StorageNode{}, err
	}
	sn = sn.Clone()
	sn.CreateTime = now
	if loaded {
		sn.CreateTime = old.CreateTime
	}
	sn.UpdateTime = now
	if err := s.set(storageNodeKey(sn.Address), sn); err != nil {
		return meta.StorageNode{}, err
	}
	return sn, nil
}

func (s *pebbleStore) Update(_ context.Context, addr string, fn func(*meta.StorageNode) error) (meta.StorageNode, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	var sn meta.StorageNode
	loaded, err := s.get(storageNodeKey(addr), &sn)
	if err != nil {
		return meta.StorageNode{}, err
	}
	if !loaded {
		return meta.StorageNode{}, errNotFound(addr)
	}
	if err := fn(&sn); err != nil {
		return meta.StorageNode{}, err
	}
	sn.Address = addr
	sn.UpdateTime = s.now()
	if err := s.set(storageNodeKey(addr), sn); err != nil {
		return meta.StorageNode{}, err
	}
	return sn, nil
}

func (s *pebbleStore) Remove(_ context.Context, addr string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	key := storageNodeKey(addr)
	_, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return errNotFound(addr)
	}
	if err != nil {
		return err
	}
	_ = closer.Close()
	return s.db.Delete(key, pebble.Sync)
}

func (s *pebbleStore) ClusterSettings(context.Context) (meta.ClusterSettings, error) {
	settings := meta.DefaultClusterSettings()
	if _, err := s.get([]byte(settingsKey), &settings); err != nil {
		return meta.ClusterSettings{}, err
	}
	return settings, nil
}

func (s *pebbleStore) SaveClusterSettings(_ context.Context, settings meta.ClusterSettings) error {
	return s.set([]byte(settingsKey), settings)
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}
