package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/kakao/snorch/internal/nodestore"
	"github.com/kakao/snorch/internal/orchestrator/maintqueue"
	"github.com/kakao/snorch/internal/orchestrator/policy"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/internal/session"
	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingInventory struct {
	mu       sync.Mutex
	detached []meta.ResourceID
}

func (ri *recordingInventory) Detach(_ context.Context, sn meta.StorageNode) error {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.detached = append(ri.detached, sn.ResourceID)
	return nil
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     nodestore.Store
	sess      *session.MemorySession
	queue     *maintqueue.Queue
	inventory *recordingInventory
	machine   *Machine

	nextID    types.OperationID
	scheduled []remoteop.Request
}

func newFixture(t *testing.T, nodes []meta.StorageNode, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		sess:      session.NewMemorySession(session.DefaultPrimaryKeyspace, session.DefaultAuthKeyspace),
		inventory: &recordingInventory{},
	}

	var err error
	f.store, err = nodestore.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.store.Close()
	})
	for _, sn := range nodes {
		_, err := f.store.Merge(f.ctx, sn)
		require.NoError(t, err)
	}

	f.queue, err = maintqueue.New(maintqueue.WithNodeStore(f.store))
	require.NoError(t, err)
	schema, err := policy.NewSchema(policy.WithSession(f.sess))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	executor := remoteop.NewMockExecutor(ctrl)
	executor.EXPECT().Schedule(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req remoteop.Request) (types.OperationID, error) {
			f.nextID++
			req.ID = f.nextID
			f.scheduled = append(f.scheduled, req)
			return req.ID, nil
		},
	).AnyTimes()

	opts = append([]Option{
		WithNodeStore(f.store),
		WithQueue(f.queue),
		WithExecutor(executor),
		WithSchema(schema),
		WithResourceInventory(f.inventory),
		WithInitiator("test"),
		WithLogger(zaptest.NewLogger(t)),
	}, opts...)
	f.machine, err = New(opts...)
	require.NoError(t, err)
	return f
}

// pop returns the only scheduled request that has not completed yet.
func (f *fixture) pop() remoteop.Request {
	f.t.Helper()
	require.Len(f.t, f.scheduled, 1, "scheduled requests")
	req := f.scheduled[0]
	f.scheduled = f.scheduled[1:]
	return req
}

func (f *fixture) complete(req remoteop.Request, status types.OperationStatus) (Outcome, error) {
	return f.machine.Handle(f.ctx, remoteop.Completion{
		Request:     req,
		Status:      status,
		ScheduledAt: time.Now(),
		FinishedAt:  time.Now(),
	})
}

// succeedAll completes every scheduled request successfully until the
// workflow ends. It returns the completed requests in order.
func (f *fixture) succeedAll() ([]remoteop.Request, Outcome, error) {
	f.t.Helper()
	var done []remoteop.Request
	for len(f.scheduled) > 0 {
		req := f.pop()
		done = append(done, req)
		outcome, err := f.complete(req, types.StatusSuccess)
		if outcome != Continue {
			return done, outcome, err
		}
	}
	return done, Continue, nil
}

func (f *fixture) node(addr string) meta.StorageNode {
	f.t.Helper()
	sn, err := f.store.Find(f.ctx, addr)
	require.NoError(f.t, err)
	return sn
}

func (f *fixture) addCandidate(addr string, resource meta.ResourceID) {
	f.t.Helper()
	_, err := f.store.Merge(f.ctx, meta.StorageNode{Address: addr, Mode: types.ModeAnnounce, ResourceID: resource})
	require.NoError(f.t, err)
}

func cluster(size int) []meta.StorageNode {
	nodes := make([]meta.StorageNode, 0, size)
	for i := 1; i <= size; i++ {
		nodes = append(nodes, meta.StorageNode{
			Address:    fmt.Sprintf("10.0.0.%d", i),
			Mode:       types.ModeNormal,
			ResourceID: meta.ResourceID(i),
		})
	}
	return nodes
}

type step struct {
	kind   types.OperationKind
	target string
}

func steps(reqs []remoteop.Request) []step {
	ret := make([]step, 0, len(reqs))
	for _, req := range reqs {
		ret = append(ret, step{kind: req.Kind, target: req.Target})
	}
	return ret
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestMachine_DeploySecondNode(t *testing.T) {
	f := newFixture(t, cluster(1))
	f.addCandidate("10.0.0.2", 2)

	outcome, err := f.machine.StartAnnounce(f.ctx, "10.0.0.2")
	require.NoError(t, err)
	require.Equal(t, Continue, outcome)

	done, outcome, err := f.succeedAll()
	require.NoError(t, err)
	require.Equal(t, Finished, outcome)
	assert.Equal(t, []step{
		{kind: types.KindAnnounce, target: "10.0.0.1"},
		{kind: types.KindPrepareForBootstrap, target: "10.0.0.2"},
		{kind: types.KindAddNodeMaintenance, target: "10.0.0.1"},
		{kind: types.KindAddNodeMaintenance, target: "10.0.0.2"},
	}, steps(done))

	for _, req := range done {
		assert.Equal(t, "10.0.0.2", req.Node)
		assert.Equal(t, "test", req.Initiator)
		assert.Equal(t, req.Kind.DefaultTimeout(), req.Timeout)
	}
	bootstrap := done[1].Params
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, bootstrap.Seeds)
	assert.Equal(t, meta.DefaultCQLPort, bootstrap.CQLPort)
	assert.Equal(t, meta.DefaultGossipPort, bootstrap.GossipPort)
	assert.True(t, done[2].Params.RunRepair)
	assert.Equal(t, done[2].Params, done[3].Params)

	for _, addr := range []string{"10.0.0.1", "10.0.0.2"} {
		sn := f.node(addr)
		assert.Equal(t, types.ModeNormal, sn.Mode, addr)
		assert.False(t, sn.MaintenancePending, addr)
		assert.Empty(t, sn.ErrorMessage, addr)
	}
	assert.Equal(t, 2, f.sess.ReplicationFactor(session.DefaultPrimaryKeyspace))
	assert.Equal(t, 2, f.sess.ReplicationFactor(session.DefaultAuthKeyspace))
	for _, table := range session.DefaultGCGraceTables {
		gc, ok := f.sess.GCGraceSeconds(session.DefaultPrimaryKeyspace, table)
		assert.True(t, ok, table)
		assert.Equal(t, policy.ExpandedGCGraceSeconds, gc, table)
	}
	assert.Empty(t, f.queue.Claimed())
}

func TestMachine_BootstrapFailure(t *testing.T) {
	f := newFixture(t, cluster(3))
	f.addCandidate("10.0.0.4", 4)

	_, err := f.machine.StartAnnounce(f.ctx, "10.0.0.4")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		req := f.pop()
		require.Equal(t, types.KindAnnounce, req.Kind)
		_, err := f.complete(req, types.StatusSuccess)
		require.NoError(t, err)
	}

	bootstrap := f.pop()
	require.Equal(t, types.KindPrepareForBootstrap, bootstrap.Kind)
	outcome, err := f.complete(bootstrap, types.StatusFailure)
	require.Equal(t, Aborted, outcome)
	require.ErrorIs(t, err, verrors.ErrRemoteOperationFailed)
	assert.Empty(t, f.scheduled)

	candidate := f.node("10.0.0.4")
	assert.Equal(t, types.ModeBootstrap, candidate.Mode)
	assert.Equal(t, "Deployment of 10.0.0.4 has been aborted due to failed operation [prepareForBootstrap] on 10.0.0.4", candidate.ErrorMessage)
	require.NotNil(t, candidate.FailedOperation)
	assert.Equal(t, bootstrap.Ref(), *candidate.FailedOperation)
	for _, addr := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		sn := f.node(addr)
		assert.Equal(t, types.ModeNormal, sn.Mode, addr)
		assert.Empty(t, sn.ErrorMessage, addr)
	}

	t.Run("ResumeBootstrap", func(t *testing.T) {
		outcome, err := f.machine.StartBootstrap(f.ctx, "10.0.0.4")
		require.NoError(t, err)
		require.Equal(t, Continue, outcome)
		assert.Empty(t, f.node("10.0.0.4").ErrorMessage)

		done, outcome, err := f.succeedAll()
		require.NoError(t, err)
		require.Equal(t, Finished, outcome)
		assert.Equal(t, types.KindPrepareForBootstrap, done[0].Kind)
		assert.Len(t, done, 5)
		assert.Equal(t, types.ModeNormal, f.node("10.0.0.4").Mode)
		assert.Equal(t, 3, f.sess.ReplicationFactor(session.DefaultPrimaryKeyspace))
	})
}

func TestMachine_AnnounceCanceled(t *testing.T) {
	f := newFixture(t, cluster(3))
	f.addCandidate("10.0.1.1", 0)

	_, err := f.machine.StartAnnounce(f.ctx, "10.0.1.1")
	require.NoError(t, err)

	req := f.pop()
	require.Equal(t, "10.0.0.1", req.Target)
	outcome, err := f.complete(req, types.StatusCanceled)
	require.Equal(t, Aborted, outcome)
	require.ErrorIs(t, err, verrors.ErrRemoteOperationCanceled)

	want := "Deployment of 10.0.1.1 has been aborted due to canceled operation [announce] on 10.0.0.1"
	assert.Equal(t, want, f.node("10.0.0.1").ErrorMessage)
	assert.Equal(t, want, f.node("10.0.1.1").ErrorMessage)
	assert.Equal(t, types.ModeAnnounce, f.node("10.0.1.1").Mode)

	pending, err := f.queue.Pending(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, meta.Addresses(pending))
	assert.Empty(t, f.queue.Claimed())
}

func TestMachine_InProgressIgnored(t *testing.T) {
	f := newFixture(t, cluster(1))
	f.addCandidate("10.0.0.2", 0)

	_, err := f.machine.StartAnnounce(f.ctx, "10.0.0.2")
	require.NoError(t, err)
	req := f.pop()

	outcome, err := f.complete(req, types.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)
	assert.Empty(t, f.scheduled)
	assert.Equal(t, types.ModeAnnounce, f.node("10.0.0.2").Mode)

	_, err = f.complete(req, types.StatusInvalid)
	assert.ErrorIs(t, err, verrors.ErrInvalid)
}

func TestMachine_AnnounceWithoutMembers(t *testing.T) {
	f := newFixture(t, nil)
	f.addCandidate("10.0.0.1", 0)

	outcome, err := f.machine.StartAnnounce(f.ctx, "10.0.0.1")
	assert.Equal(t, Aborted, outcome)
	require.ErrorIs(t, err, verrors.ErrConfiguration)
	assert.Contains(t, f.node("10.0.0.1").ErrorMessage, "please review")
	assert.Empty(t, f.scheduled)
}

func TestMachine_SchemaUpdateFailure(t *testing.T) {
	f := newFixture(t, cluster(1))
	f.addCandidate("10.0.0.2", 0)
	f.sess.FailWith(func(string) error {
		return errors.New("no host available")
	})

	outcome, err := f.machine.StartAddMaintenance(f.ctx, "10.0.0.2")
	assert.Equal(t, Aborted, outcome)
	require.ErrorIs(t, err, verrors.ErrSchemaUpdate)
	assert.Empty(t, f.scheduled)

	sn := f.node("10.0.0.2")
	assert.Equal(t, types.ModeAddMaintenance, sn.Mode)
	assert.Contains(t, sn.ErrorMessage, "no host available")
	assert.Equal(t, types.ModeNormal, f.node("10.0.0.1").Mode)
}

func TestMachine_RemoveFromFourNodes(t *testing.T) {
	f := newFixture(t, cluster(4))

	outcome, err := f.machine.StartDecommission(f.ctx, "10.0.0.4")
	require.NoError(t, err)
	require.Equal(t, Continue, outcome)
	assert.Equal(t, types.ModeDecommission, f.node("10.0.0.4").Mode)

	done, outcome, err := f.succeedAll()
	require.NoError(t, err)
	require.Equal(t, Finished, outcome)
	assert.Equal(t, []step{
		{kind: types.KindDecommission, target: "10.0.0.4"},
		{kind: types.KindRemoveNodeMaintenance, target: "10.0.0.1"},
		{kind: types.KindRemoveNodeMaintenance, target: "10.0.0.2"},
		{kind: types.KindRemoveNodeMaintenance, target: "10.0.0.3"},
		{kind: types.KindUnannounce, target: "10.0.0.1"},
		{kind: types.KindUnannounce, target: "10.0.0.2"},
		{kind: types.KindUnannounce, target: "10.0.0.3"},
		{kind: types.KindUninstall, target: "10.0.0.4"},
	}, steps(done))
	assert.True(t, done[1].Params.RunRepair)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, done[1].Params.Seeds)

	_, err = f.store.Find(f.ctx, "10.0.0.4")
	assert.ErrorIs(t, err, verrors.ErrNotFound)
	assert.Equal(t, []meta.ResourceID{4}, f.inventory.detached)

	remaining, err := f.store.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	for _, sn := range remaining {
		assert.Equal(t, types.ModeNormal, sn.Mode)
		assert.False(t, sn.MaintenancePending)
	}
	assert.Equal(t, 2, f.sess.ReplicationFactor(session.DefaultPrimaryKeyspace))
	assert.Equal(t, 2, f.sess.ReplicationFactor(session.DefaultAuthKeyspace))
}

func TestMachine_UninstallWithoutResource(t *testing.T) {
	nodes := cluster(2)
	nodes = append(nodes, meta.StorageNode{Address: "10.0.1.1", Mode: types.ModeBootstrap})
	f := newFixture(t, nodes)

	_, err := f.machine.StartUnannounce(f.ctx, "10.0.1.1")
	require.NoError(t, err)

	done, outcome, err := f.succeedAll()
	require.NoError(t, err)
	require.Equal(t, Finished, outcome)
	assert.Equal(t, []step{
		{kind: types.KindUnannounce, target: "10.0.0.1"},
		{kind: types.KindUnannounce, target: "10.0.0.2"},
	}, steps(done))

	_, err = f.store.Find(f.ctx, "10.0.1.1")
	assert.ErrorIs(t, err, verrors.ErrNotFound)
	assert.Empty(t, f.inventory.detached)
}

func TestMachine_Repair(t *testing.T) {
	f := newFixture(t, cluster(3), WithOperationTimeout(types.KindRepair, time.Hour))

	outcome, err := f.machine.StartRepair(f.ctx, []string{"10.0.0.3", "10.0.0.1", "10.0.0.2"})
	require.NoError(t, err)
	require.Equal(t, Continue, outcome)

	var order []string
	for len(f.scheduled) > 0 {
		req := f.pop()
		require.Equal(t, types.KindRepair, req.Kind)
		assert.Equal(t, time.Hour, req.Timeout)
		assert.Equal(t, types.ModeMaintenance, f.node(req.Target).Mode)
		order = append(order, req.Target)

		outcome, err = f.complete(req, types.StatusSuccess)
		require.NoError(t, err)
		assert.Equal(t, types.ModeNormal, f.node(req.Target).Mode)
	}
	assert.Equal(t, Finished, outcome)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, order)

	pending, err := f.queue.Pending(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMachine_RepairFailure(t *testing.T) {
	f := newFixture(t, cluster(3))

	_, err := f.machine.StartRepair(f.ctx, meta.Addresses(cluster(3)))
	require.NoError(t, err)

	_, err = f.complete(f.pop(), types.StatusSuccess)
	require.NoError(t, err)

	req := f.pop()
	require.Equal(t, "10.0.0.2", req.Target)
	outcome, err := f.complete(req, types.StatusFailure)
	require.Equal(t, Aborted, outcome)
	require.ErrorIs(t, err, verrors.ErrRemoteOperationFailed)
	assert.Empty(t, f.scheduled)

	failed := f.node("10.0.0.2")
	assert.Equal(t, types.ModeMaintenance, failed.Mode)
	assert.True(t, failed.MaintenancePending)
	assert.Equal(t, "Repair of 10.0.0.2 has been aborted due to failed operation [repair] on 10.0.0.2", failed.ErrorMessage)

	untouched := f.node("10.0.0.3")
	assert.Equal(t, types.ModeNormal, untouched.Mode)
	assert.True(t, untouched.MaintenancePending)

	t.Run("Retry", func(t *testing.T) {
		_, err := f.machine.StartRepair(f.ctx, []string{"10.0.0.2", "10.0.0.3"})
		require.NoError(t, err)
		assert.Empty(t, f.node("10.0.0.2").ErrorMessage)

		done, outcome, err := f.succeedAll()
		require.NoError(t, err)
		assert.Equal(t, Finished, outcome)
		assert.Len(t, done, 2)
		assert.Equal(t, types.ModeNormal, f.node("10.0.0.2").Mode)
	})
}

func TestMachine_RepairNothing(t *testing.T) {
	f := newFixture(t, cluster(2))

	outcome, err := f.machine.StartRepair(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, Finished, outcome)
	assert.Empty(t, f.scheduled)
}

func TestMachine_Reconfiguration(t *testing.T) {
	f := newFixture(t, cluster(2))
	settings := meta.DefaultClusterSettings()
	settings.CQLPort = 19142
	require.NoError(t, f.store.SaveClusterSettings(f.ctx, settings))

	outcome, err := f.machine.StartReconfiguration(f.ctx)
	require.NoError(t, err)
	require.Equal(t, Continue, outcome)
	require.Len(t, f.scheduled, 2)

	first, second := f.scheduled[0], f.scheduled[1]
	f.scheduled = nil
	for _, req := range []remoteop.Request{first, second} {
		assert.Equal(t, types.KindUpdateConfiguration, req.Kind)
		assert.Equal(t, 19142, req.Params.CQLPort)
	}

	outcome, err = f.complete(first, types.StatusSuccess)
	require.NoError(t, err)
	assert.Equal(t, Finished, outcome)

	outcome, err = f.complete(second, types.StatusFailure)
	assert.Equal(t, Aborted, outcome)
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(f.node(second.Target).ErrorMessage, "Reconfiguration of "+second.Target))
	assert.Empty(t, f.node(first.Target).ErrorMessage)
}

func TestOutcome(t *testing.T) {
	assert.True(t, Finished.Done())
	assert.True(t, Aborted.Done())
	assert.False(t, Continue.Done())
	assert.False(t, Ignored.Done())
	assert.Equal(t, "aborted", Aborted.String())
}
