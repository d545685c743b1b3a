package policy

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/session"
)

type schemaConfig struct {
	session         session.Session
	primaryKeyspace string
	authKeyspace    string
	gcGraceTables   []string
	logger          *zap.Logger
}

func newSchemaConfig(opts []SchemaOption) (schemaConfig, error) {
	cfg := schemaConfig{
		primaryKeyspace: session.DefaultPrimaryKeyspace,
		authKeyspace:    session.DefaultAuthKeyspace,
		gcGraceTables:   session.DefaultGCGraceTables,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt.applySchema(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	cfg.logger = cfg.logger.Named("schema")
	return cfg, nil
}

func (cfg *schemaConfig) validate() error {
	if cfg.session == nil {
		return errors.New("schema: no session")
	}
	if cfg.primaryKeyspace == "" {
		return errors.New("schema: no primary keyspace")
	}
	if cfg.authKeyspace == "" {
		return errors.New("schema: no auth keyspace")
	}
	if cfg.logger == nil {
		return errors.New("schema: logger is nil")
	}
	return nil
}

type SchemaOption interface {
	applySchema(*schemaConfig)
}

type funcSchemaOption struct {
	f func(*schemaConfig)
}

func newFuncSchemaOption(f func(*schemaConfig)) *funcSchemaOption {
	return &funcSchemaOption{f: f}
}

func (fo *funcSchemaOption) applySchema(cfg *schemaConfig) {
	fo.f(cfg)
}

func WithSession(sess session.Session) SchemaOption {
	return newFuncSchemaOption(func(cfg *schemaConfig) {
		cfg.session = sess
	})
}

// WithKeyspaces sets the primary keyspace holding the metric tables and
// the keyspace of the authentication data.
func WithKeyspaces(primary, auth string) SchemaOption {
	return newFuncSchemaOption(func(cfg *schemaConfig) {
		cfg.primaryKeyspace = primary
		cfg.authKeyspace = auth
	})
}

// WithGCGraceTables sets the tables of the primary keyspace whose
// gc_grace_seconds is overridden.
func WithGCGraceTables(tables ...string) SchemaOption {
	return newFuncSchemaOption(func(cfg *schemaConfig) {
		cfg.gcGraceTables = tables
	})
}

func WithLogger(logger *zap.Logger) SchemaOption {
	return newFuncSchemaOption(func(cfg *schemaConfig) {
		cfg.logger = logger
	})
}
