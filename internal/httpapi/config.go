package httpapi

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultListenAddress  = "127.0.0.1:9093"
	DefaultReadTimeout    = 10 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultIdleTimeout    = 60 * time.Second
	DefaultRequestTimeout = 20 * time.Second
)

type config struct {
	service        Service
	listenAddress  string
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	requestTimeout time.Duration
	logger         *zap.Logger
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		listenAddress:  DefaultListenAddress,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		idleTimeout:    DefaultIdleTimeout,
		requestTimeout: DefaultRequestTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	cfg.logger = cfg.logger.Named("httpapi")
	return cfg, nil
}

func (cfg *config) validate() error {
	if cfg.service == nil {
		return errors.New("httpapi: service is nil")
	}
	if cfg.listenAddress == "" {
		return errors.New("httpapi: no listen address")
	}
	if cfg.readTimeout < 0 || cfg.writeTimeout < 0 || cfg.idleTimeout < 0 || cfg.requestTimeout < 0 {
		return errors.New("httpapi: negative timeout")
	}
	if cfg.logger == nil {
		return errors.New("httpapi: logger is nil")
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

func WithService(service Service) Option {
	return newFuncOption(func(cfg *config) {
		cfg.service = service
	})
}

func WithListenAddress(addr string) Option {
	return newFuncOption(func(cfg *config) {
		cfg.listenAddress = addr
	})
}

// WithServerTimeouts sets the read, write and idle timeouts of the HTTP
// server. Zero means no timeout.
func WithServerTimeouts(read, write, idle time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.readTimeout = read
		cfg.writeTimeout = write
		cfg.idleTimeout = idle
	})
}

// WithRequestTimeout bounds each call into the service. Zero means the
// request context is used as is.
func WithRequestTimeout(timeout time.Duration) Option {
	return newFuncOption(func(cfg *config) {
		cfg.requestTimeout = timeout
	})
}

func WithLogger(logger *zap.Logger) Option {
	return newFuncOption(func(cfg *config) {
		cfg.logger = logger
	})
}
