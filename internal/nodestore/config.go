package nodestore

import (
	"time"

	"go.uber.org/zap"
)

type config struct {
	now    func() time.Time
	logger *zap.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		now:    func() time.Time { return time.Now().UTC() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	cfg.logger = cfg.logger.Named("nodestore")
	return cfg
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

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	})
}

// WithClock overrides the clock stamping create and update times.
func WithClock(now func() time.Time) Option {
	return newFuncOption(func(cfg *config) {
		cfg.now = now
	})
}
