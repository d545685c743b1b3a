package policy

import (
	"context"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/session"
	"github.com/kakao/snorch/pkg/verrors"
)

// Schema applies schema updates through a session.
type Schema struct {
	schemaConfig
}

func NewSchema(opts ...SchemaOption) (*Schema, error) {
	cfg, err := newSchemaConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Schema{schemaConfig: cfg}, nil
}

// Statements returns the statements that apply su, in execution order.
func (s *Schema) Statements(su SchemaUpdate) []string {
	var stmts []string
	if su.ReplicationFactor > 0 {
		stmts = append(stmts,
			session.AlterKeyspaceReplication(s.primaryKeyspace, su.ReplicationFactor),
			session.AlterKeyspaceReplication(s.authKeyspace, su.ReplicationFactor),
		)
	}
	if su.GCGraceSeconds != nil {
		for _, table := range s.gcGraceTables {
			stmts = append(stmts, session.AlterTableGCGrace(s.primaryKeyspace, table, *su.GCGraceSeconds))
		}
	}
	return stmts
}

// Apply executes the statements of su one by one. The first failing
// statement stops it and is returned as a SchemaUpdateError.
func (s *Schema) Apply(ctx context.Context, su SchemaUpdate) error {
	for _, stmt := range s.Statements(su) {
		if err := s.session.Execute(ctx, stmt); err != nil {
			return &verrors.SchemaUpdateError{Statement: stmt, Err: err}
		}
	}
	return nil
}

// UpdateSchemaIfNecessary decides the schema update for the transition and
// applies it. It returns whether a repair has to follow.
func (s *Schema) UpdateSchemaIfNecessary(ctx context.Context, previousSize, newSize int) (bool, error) {
	su, err := Decide(previousSize, newSize)
	if err != nil {
		return false, err
	}

	logger := s.logger.With(zap.Stringer("update", su))
	if md, ok := s.session.(session.SchemaMetadata); ok {
		if rs, err := md.ReplicationSettings(ctx); err == nil {
			logger = logger.With(
				zap.Int("primary_rf", rs.PrimaryReplicationFactor),
				zap.Int("auth_rf", rs.AuthReplicationFactor),
			)
		}
	}
	if !su.Changed() {
		logger.Info("schema unchanged")
		return su.RepairNeeded, nil
	}

	if err := s.Apply(ctx, su); err != nil {
		logger.Error("could not update schema", zap.Error(err))
		return false, err
	}
	logger.Info("updated schema")
	return su.RepairNeeded, nil
}
