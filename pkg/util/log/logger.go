// Package log builds the process-wide zap logger with optional file rotation.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func New(opts ...Option) (*zap.Logger, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	var syncers []zapcore.WriteSyncer
	if !cfg.disableLogToStderr {
		syncers = append(syncers, zapcore.Lock(zapcore.AddSync(os.Stderr)))
	}
	if len(cfg.path) > 0 {
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.path,
			MaxSize:    cfg.maxSizeMB,
			MaxAge:     cfg.maxAgeDays,
			MaxBackups: cfg.maxBackups,
			LocalTime:  cfg.localTime,
			Compress:   cfg.compress,
		}))
	}

	var encoder zapcore.Encoder
	if cfg.humanFriendly {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zap.CombineWriteSyncers(syncers...), zap.NewAtomicLevelAt(cfg.level))
	zapOpts := append([]zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}, cfg.zapOpts...)
	return zap.New(core, zapOpts...), nil
}
