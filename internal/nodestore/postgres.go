package nodestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS storage_node (
	address TEXT PRIMARY KEY,
	mode TEXT NOT NULL,
	maintenance_pending BOOLEAN NOT NULL DEFAULT FALSE,
	data JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS storage_node_mode_idx ON storage_node (mode);

CREATE TABLE IF NOT EXISTS cluster_settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data JSONB NOT NULL
);
`

type postgresStore struct {
	config

	db *sql.DB
}

var _ Store = (*postgresStore)(nil)

// OpenPostgres connects to PostgreSQL and creates the tables if they do not
// exist.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (Store, error) {
	cfg := newConfig(opts)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("nodestore: open postgres: %w", err)
	}
	s := &postgresStore{config: cfg, db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	cfg.logger.Info("opened postgres")
	return s, nil
}

func (s *postgresStore) initSchema(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()
	if _, err = tx.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("nodestore: create tables: %w", err)
	}
	return tx.Commit()
}

func (s *postgresStore) Find(ctx context.Context, addr string) (meta.StorageNode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM storage_node WHERE address = $1`, addr)
	return scanNode(row, addr)
}

func (s *postgresStore) FindByMode(ctx context.Context, modes ...types.OperationMode) ([]meta.StorageNode, error) {
	names := make([]string, 0, len(modes))
	for _, mode := range modes {
		names = append(names, mode.String())
	}
	return s.query(ctx, `SELECT data FROM storage_node WHERE mode = ANY($1) ORDER BY address`, pq.Array(names))
}

func (s *postgresStore) List(ctx context.Context) ([]meta.StorageNode, error) {
	return s.query(ctx, `SELECT data FROM storage_node ORDER BY address`)
}

func (s *postgresStore) query(ctx context.Context, query string, args ...any) (nodes []meta.StorageNode, err error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, rows.Close())
	}()
	for rows.Next() {
		sn, err := scanNode(rows, "")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sn)
	}
	return nodes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner, addr string) (meta.StorageNode, error) {
	var (
		data []byte
		sn   meta.StorageNode
	)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return meta.StorageNode{}, errNotFound(addr)
		}
		return meta.StorageNode{}, err
	}
	if err := json.Unmarshal(data, &sn); err != nil {
		return meta.StorageNode{}, fmt.Errorf("nodestore: decode %s: %w", addr, err)
	}
	return sn, nil
}

// withTx runs f in a transaction committed only if f succeeds.
func (s *postgresStore) withTx(ctx context.Context, f func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
			return
		}
		err = tx.Commit()
	}()
	return f(tx)
}

func upsertNode(ctx context.Context, tx *sql.Tx, sn meta.StorageNode) error {
	data, err := json.Marshal(sn)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO storage_node (address, mode, maintenance_pending, data) VALUES ($1, $2, $3, $4)
ON CONFLICT (address) DO UPDATE SET mode = EXCLUDED.mode, maintenance_pending = EXCLUDED.maintenance_pending, data = EXCLUDED.data`,
		sn.Address, sn.Mode.String(), sn.MaintenancePending, string(data))
	return err
}

func (s *postgresStore) Merge(ctx context.Context, sn meta.StorageNode) (meta.StorageNode, error) {
	merged := sn.Clone()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		merged.CreateTime = now
		merged.UpdateTime = now
		row := tx.QueryRowContext(ctx, `SELECT data FROM storage_node WHERE address = $1 FOR UPDATE`, sn.Address)
		old, err := scanNode(row, sn.Address)
		switch {
		case err == nil:
			merged.CreateTime = old.CreateTime
		case !isNotFound(err):
			return err
		}
		return upsertNode(ctx, tx, merged)
	})
	if err != nil {
		return meta.StorageNode{}, err
	}
	return merged, nil
}

func (s *postgresStore) Update(ctx context.Context, addr string, fn func(*meta.StorageNode) error) (meta.StorageNode, error) {
	var updated meta.StorageNode
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT data FROM storage_node WHERE address = $1 FOR UPDATE`, addr)
		sn, err := scanNode(row, addr)
		if err != nil {
			return err
		}
		if err := fn(&sn); err != nil {
			return err
		}
		sn.Address = addr
		sn.UpdateTime = s.now()
		updated = sn
		return upsertNode(ctx, tx, sn)
	})
	if err != nil {
		return meta.StorageNode{}, err
	}
	return updated, nil
}

func (s *postgresStore) Remove(ctx context.Context, addr string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM storage_node WHERE address = $1`, addr)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound(addr)
	}
	return nil
}

func (s *postgresStore) ClusterSettings(ctx context.Context) (meta.ClusterSettings, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM cluster_settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return meta.DefaultClusterSettings(), nil
	}
	if err != nil {
		return meta.ClusterSettings{}, err
	}
	settings := meta.DefaultClusterSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return meta.ClusterSettings{}, fmt.Errorf("nodestore: decode cluster settings: %w", err)
	}
	return settings, nil
}

func (s *postgresStore) SaveClusterSettings(ctx context.Context, settings meta.ClusterSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO cluster_settings (id, data) VALUES (1, $1)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, string(data))
	if err != nil {
		s.logger.Warn("save cluster settings", zap.Error(err))
	}
	return err
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
