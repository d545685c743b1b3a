package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

// Handle advances the workflow of a completed operation. INPROGRESS
// completions are ignored. CANCELED and FAILURE completions abort the
// workflow and return a RemoteOperationError.
func (m *Machine) Handle(ctx context.Context, c remoteop.Completion) (Outcome, error) {
	switch c.Status {
	case types.StatusInProgress:
		m.logger.Debug("operation in progress", zap.Stringer("request", c.Request))
		return Ignored, nil
	case types.StatusCanceled, types.StatusFailure:
		return Aborted, m.abort(ctx, c)
	case types.StatusSuccess:
	default:
		return Ignored, fmt.Errorf("lifecycle: operation status %s: %w", c.Status, verrors.ErrInvalid)
	}

	m.logger.Info("operation succeeded",
		zap.Stringer("request", c.Request),
		zap.Duration("duration", c.Duration()),
	)
	switch c.Request.Kind {
	case types.KindAnnounce:
		return m.handleAnnounce(ctx, c)
	case types.KindPrepareForBootstrap:
		return m.handlePrepareForBootstrap(ctx, c)
	case types.KindAddNodeMaintenance:
		return m.handleAddNodeMaintenance(ctx, c)
	case types.KindDecommission:
		return m.handleDecommission(ctx, c)
	case types.KindRemoveNodeMaintenance:
		return m.handleRemoveNodeMaintenance(ctx, c)
	case types.KindUnannounce:
		return m.handleUnannounce(ctx, c)
	case types.KindUninstall:
		return m.handleUninstall(ctx, c)
	case types.KindRepair:
		return m.handleRepair(ctx, c)
	case types.KindUpdateConfiguration:
		return m.handleUpdateConfiguration(ctx, c)
	default:
		return Ignored, fmt.Errorf("lifecycle: operation kind %s: %w", c.Request.Kind, verrors.ErrInvalid)
	}
}
