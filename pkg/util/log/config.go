package log

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kakao/snorch/pkg/util/fputil"
)

const (
	DefaultMaxSizeMB  = 100
	DefaultMaxAgeDays = 0
	DefaultMaxBackups = 0

	defaultLogDirMode = os.FileMode(0755)
)

type config struct {
	disableLogToStderr bool

	humanFriendly bool
	level         zapcore.Level
	zapOpts       []zap.Option

	// log rotation
	path       string
	maxSizeMB  int
	maxAgeDays int
	maxBackups int
	compress   bool
	localTime  bool
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		level:      zapcore.InfoLevel,
		maxSizeMB:  DefaultMaxSizeMB,
		maxAgeDays: DefaultMaxAgeDays,
		maxBackups: DefaultMaxBackups,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.disableLogToStderr && len(cfg.path) == 0 {
		return errors.New("logger: no output")
	}
	if len(cfg.path) == 0 {
		return nil
	}
	if cfg.path[len(cfg.path)-1] == '/' {
		return errors.New("logger: invalid file path")
	}
	dir := filepath.Dir(cfg.path)
	if err := os.MkdirAll(dir, defaultLogDirMode); err != nil {
		return err
	}
	return fputil.IsWritableDir(dir)
}

type Option func(*config)

func WithoutLogToStderr() Option {
	return func(cfg *config) {
		cfg.disableLogToStderr = true
	}
}

// WithPath sets the path of the log file. Files are rotated only if the path
// is set.
func WithPath(path string) Option {
	return func(cfg *config) {
		cfg.path = path
	}
}

func WithMaxSizeMB(maxSizeMB int) Option {
	return func(cfg *config) {
		cfg.maxSizeMB = maxSizeMB
	}
}

func WithAgeDays(maxAgeDays int) Option {
	return func(cfg *config) {
		cfg.maxAgeDays = maxAgeDays
	}
}

func WithMaxBackups(maxBackups int) Option {
	return func(cfg *config) {
		cfg.maxBackups = maxBackups
	}
}

func WithLocalTime() Option {
	return func(cfg *config) {
		cfg.localTime = true
	}
}

func WithCompression() Option {
	return func(cfg *config) {
		cfg.compress = true
	}
}

// WithHumanFriendly uses the console encoder instead of the JSON encoder.
func WithHumanFriendly() Option {
	return func(cfg *config) {
		cfg.humanFriendly = true
	}
}

func WithLogLevel(level zapcore.Level) Option {
	return func(cfg *config) {
		cfg.level = level
	}
}

func WithZapLoggerOptions(opts ...zap.Option) Option {
	return func(cfg *config) {
		cfg.zapOpts = opts
	}
}
