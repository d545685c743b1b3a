package session

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kakao/snorch/pkg/meta"
)

type loggingSession struct {
	next   Session
	logger *zap.Logger
}

// WithLogging returns a session logging every statement executed by next.
// Passwords in ALTER USER statements are not logged.
func WithLogging(next Session, logger *zap.Logger) Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingSession{next: next, logger: logger.Named("session")}
}

func (s *loggingSession) Execute(ctx context.Context, statement string) error {
	start := time.Now()
	err := s.next.Execute(ctx, statement)
	fields := []zap.Field{
		zap.String("statement", redact(statement)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		s.logger.Error("execute", append(fields, zap.Error(err))...)
		return err
	}
	s.logger.Info("execute", fields...)
	return nil
}

func (s *loggingSession) ReplicationSettings(ctx context.Context) (settings meta.ReplicationSettings, err error) {
	sm, ok := s.next.(SchemaMetadata)
	if !ok {
		return settings, errors.New("session: schema metadata not supported")
	}
	return sm.ReplicationSettings(ctx)
}

func redact(statement string) string {
	const marker = "WITH PASSWORD"
	if idx := strings.Index(statement, marker); idx >= 0 {
		return statement[:idx+len(marker)] + " '*****'"
	}
	return statement
}
