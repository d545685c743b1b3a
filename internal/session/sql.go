package session

import (
	"context"
	"database/sql"

	// The PostgreSQL driver is registered for PostgreSQL-wire endpoints.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// SQLSession runs statements through a database/sql driver.
type SQLSession struct {
	db *sql.DB
}

var _ Session = (*SQLSession)(nil)

// OpenSQL opens a session with a registered database/sql driver.
func OpenSQL(ctx context.Context, driverName, dsn string) (*SQLSession, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.WithMessagef(err, "session: open %s", driverName)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WithMessagef(err, "session: ping %s", driverName)
	}
	return &SQLSession{db: db}, nil
}

func (s *SQLSession) Execute(ctx context.Context, statement string) error {
	if _, err := s.db.ExecContext(ctx, statement); err != nil {
		return errors.WithMessagef(err, "session: execute %q", statement)
	}
	return nil
}

func (s *SQLSession) Close() error {
	return s.db.Close()
}
