package repairscheduler

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type config struct {
	repairer Repairer
	interval time.Duration
	deadline time.Duration
	logger   *zap.Logger
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
	cfg.logger = cfg.logger.Named("repairscheduler")
	return cfg, nil
}

func (cfg *config) validate() error {
	if cfg.repairer == nil {
		return errors.New("repairscheduler: repairer is nil")
	}
	if cfg.interval < 0 {
		return fmt.Errorf("repairscheduler: invalid interval %v", cfg.interval)
	}
	if cfg.deadline < 0 {
		return fmt.Errorf("repairscheduler: invalid deadline %v", cfg.deadline)
	}
	if cfg.logger == nil {
		return errors.New("repairscheduler: logger is nil")
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

func WithRepairer(repairer Repairer) Option {
	return newFuncOption(func(cfg *config) {
		cfg.repairer = repairer
	})
}

// WithInterval sets the period of cluster repairs. Zero disables them.
func WithInterval(interval time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.interval = interval
	})
}

// WithDeadline bounds the time taken to start a repair. Zero means no bound.
func WithDeadline(deadline time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.deadline = deadline
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
