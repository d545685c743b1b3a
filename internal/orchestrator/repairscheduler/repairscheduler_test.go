package repairscheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/kakao/snorch/pkg/verrors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_InvalidConfig(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	ctrl := gomock.NewController(t)
	_, err = New(WithRepairer(NewMockRepairer(ctrl)), WithInterval(-time.Second))
	assert.Error(t, err)

	_, err = New(WithRepairer(NewMockRepairer(ctrl)), WithLogger(nil))
	assert.Error(t, err)
}

func TestScheduler_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repairer := NewMockRepairer(ctrl)
	repairer.EXPECT().RepairCluster(gomock.Any()).Times(0)

	s, err := New(WithRepairer(repairer))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_Repair(t *testing.T) {
	ctrl := gomock.NewController(t)
	repairer := NewMockRepairer(ctrl)

	var calls atomic.Int32
	repairer.EXPECT().RepairCluster(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		switch calls.Add(1) {
		case 1:
			return nil
		case 2:
			return verrors.ErrWorkflowInProgress
		default:
			return errors.New("store unavailable")
		}
	}).MinTimes(3)

	s, err := New(
		WithRepairer(repairer),
		WithInterval(10*time.Millisecond),
		WithDeadline(time.Second),
		WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}
