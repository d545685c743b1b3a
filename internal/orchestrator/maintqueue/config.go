package maintqueue

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/nodestore"
)

type config struct {
	store  nodestore.Store
	logger *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	cfg.logger = cfg.logger.Named("maintqueue")
	return cfg, nil
}

func (cfg *config) validate() error {
	if cfg.store == nil {
		return errors.New("maintqueue: no node store")
	}
	if cfg.logger == nil {
		return errors.New("maintqueue: logger is nil")
	}
	return nil
}

type Option interface {
	apply(*config)
}

type funcOption struct {
	f func(*config)
}

func newFuncOption(f func(*config)) *funcOption {
	return &funcOption{f: f}
}

func (fo *funcOption) apply(cfg *config) {
	fo.f(cfg)
}

func WithNodeStore(store nodestore.Store) Option {
	return newFuncOption(func(cfg *config) {
		cfg.store = store
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
