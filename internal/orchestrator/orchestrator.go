// Package orchestrator runs the membership and maintenance workflows of a
// storage cluster: adding and removing storage nodes, repairing the cluster
// and changing its settings.
//
// Workflows progress asynchronously. Operations schedule the first remote
// operation and return; the completions reported by the executor are
// dispatched to lanes that advance the workflows.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"

	"github.com/kakao/snorch/internal/orchestrator/lifecycle"
	"github.com/kakao/snorch/internal/orchestrator/maintqueue"
	"github.com/kakao/snorch/internal/orchestrator/policy"
	"github.com/kakao/snorch/internal/orchestrator/sfgkey"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/util/runner"
	"github.com/kakao/snorch/pkg/verrors"
)

type Orchestrator struct {
	config

	queue   *maintqueue.Queue
	machine *lifecycle.Machine
	metrics *metrics
	sfg     singleflight.Group

	wfmu   sync.Mutex
	active *WorkflowStatus

	runner  *runner.Runner
	cancel  context.CancelFunc
	lanes   []chan remoteop.Completion
	mu      sync.Mutex
	started bool
	closed  bool
}

// WorkflowStatus describes the cluster-wide workflow in flight.
type WorkflowStatus struct {
	Workflow  types.Workflow `json:"workflow"`
	Node      string         `json:"node,omitempty"`
	StartTime time.Time      `json:"startTime"`
}

// Status summarizes the cluster.
type Status struct {
	ClusterID    types.ClusterID `json:"clusterID"`
	Workflow     *WorkflowStatus `json:"workflow,omitempty"`
	NodesByMode  map[string]int  `json:"nodesByMode"`
	Modes        []string        `json:"modes"`
	PendingNodes []string        `json:"pendingNodes"`
	ClaimedNodes []string        `json:"claimedNodes"`
	FailedNodes  []string        `json:"failedNodes"`
}

func New(opts ...Option) (*Orchestrator, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	queue, err := maintqueue.New(
		maintqueue.WithNodeStore(cfg.store),
		maintqueue.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	schemaOpts := append(append([]policy.SchemaOption{}, cfg.schemaOpts...),
		policy.WithSession(cfg.session),
		policy.WithLogger(cfg.logger),
	)
	schema, err := policy.NewSchema(schemaOpts...)
	if err != nil {
		return nil, err
	}

	machineOpts := []lifecycle.Option{
		lifecycle.WithNodeStore(cfg.store),
		lifecycle.WithQueue(queue),
		lifecycle.WithExecutor(cfg.executor),
		lifecycle.WithSchema(schema),
		lifecycle.WithInitiator(cfg.initiator),
		lifecycle.WithLogger(cfg.logger),
	}
	if cfg.inventory != nil {
		machineOpts = append(machineOpts, lifecycle.WithResourceInventory(cfg.inventory))
	}
	for kind, timeout := range cfg.timeouts {
		machineOpts = append(machineOpts, lifecycle.WithOperationTimeout(kind, timeout))
	}
	machine, err := lifecycle.New(machineOpts...)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(cfg.meterProvider, cfg.cid)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		config:  cfg,
		queue:   queue,
		machine: machine,
		metrics: m,
		runner:  runner.New("orchestrator", cfg.logger),
	}, nil
}

// Init registers the seed nodes as NORMAL cluster members if the node store
// is empty. It fails with a configuration error if there are neither nodes
// nor seeds.
func (o *Orchestrator) Init(ctx context.Context, seeds []string) error {
	nodes, err := o.store.List(ctx)
	if err != nil {
		return err
	}
	if len(nodes) > 0 {
		o.logger.Info("found storage nodes", zap.Strings("nodes", meta.Addresses(nodes)))
		return nil
	}
	if len(seeds) == 0 {
		return verrors.NewConfigurationError("no storage node found and no seed configured")
	}
	for _, addr := range seeds {
		if _, err := o.store.Merge(ctx, meta.StorageNode{Address: addr, Mode: types.ModeNormal}); err != nil {
			return err
		}
	}
	o.logger.Info("registered seed nodes", zap.Strings("seeds", seeds))
	return nil
}

func (o *Orchestrator) ListNodes(ctx context.Context) ([]meta.StorageNode, error) {
	nodes, err, _ := o.sfg.Do(sfgkey.ListStorageNodesKey(), func() (interface{}, error) {
		return o.store.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return cloneNodes(nodes.([]meta.StorageNode)), nil
}

func (o *Orchestrator) GetNode(ctx context.Context, addr string) (meta.StorageNode, error) {
	sn, err, _ := o.sfg.Do(sfgkey.GetStorageNodeKey(addr), func() (interface{}, error) {
		return o.store.Find(ctx, addr)
	})
	if err != nil {
		return meta.StorageNode{}, err
	}
	return sn.(meta.StorageNode).Clone(), nil
}

// ClusterSettings returns the cluster settings. The password hash is never
// returned.
func (o *Orchestrator) ClusterSettings(ctx context.Context) (meta.ClusterSettings, error) {
	settings, err, _ := o.sfg.Do(sfgkey.ClusterSettingsKey(), func() (interface{}, error) {
		return o.store.ClusterSettings(ctx)
	})
	if err != nil {
		return meta.ClusterSettings{}, err
	}
	ret := settings.(meta.ClusterSettings)
	ret.PasswordHash = ""
	return ret, nil
}

func (o *Orchestrator) Status(ctx context.Context) (Status, error) {
	status, err, _ := o.sfg.Do(sfgkey.StatusKey(), func() (interface{}, error) {
		return o.status(ctx)
	})
	if err != nil {
		return Status{}, err
	}
	return status.(Status), nil
}

func (o *Orchestrator) status(ctx context.Context) (Status, error) {
	nodes, err := o.store.List(ctx)
	if err != nil {
		return Status{}, err
	}
	status := Status{
		ClusterID:    o.cid,
		Workflow:     o.activeWorkflow(),
		NodesByMode:  make(map[string]int),
		PendingNodes: []string{},
		ClaimedNodes: o.queue.Claimed(),
		FailedNodes:  []string{},
	}
	for _, sn := range nodes {
		status.NodesByMode[sn.Mode.String()]++
		if sn.MaintenancePending {
			status.PendingNodes = append(status.PendingNodes, sn.Address)
		}
		if sn.ErrorMessage != "" {
			status.FailedNodes = append(status.FailedNodes, sn.Address)
		}
	}
	status.Modes = maps.Keys(status.NodesByMode)
	slices.Sort(status.Modes)
	return status, nil
}

func cloneNodes(nodes []meta.StorageNode) []meta.StorageNode {
	ret := make([]meta.StorageNode, len(nodes))
	for i := range nodes {
		ret[i] = nodes[i].Clone()
	}
	return ret
}
