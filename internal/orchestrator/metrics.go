package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kakao/snorch/internal/stats/opentelemetry"
	"github.com/kakao/snorch/pkg/types"
)

const meterName = "github.com/kakao/snorch/internal/orchestrator"

type workflowKey struct {
	workflow types.Workflow
	event    string
}

type operationKey struct {
	kind   types.OperationKind
	status types.OperationStatus
}

type metrics struct {
	cid        types.ClusterID
	workflows  *opentelemetry.Int64CounterSet[workflowKey]
	operations *opentelemetry.Int64CounterSet[operationKey]
	durations  *opentelemetry.Float64HistogramSet[types.OperationKind]
}

func newMetrics(mp metric.MeterProvider, cid types.ClusterID) (*metrics, error) {
	meter := mp.Meter(meterName)
	m := &metrics{cid: cid}

	var err error
	m.workflows, err = opentelemetry.NewInt64CounterSet[workflowKey](meter,
		"snorch.orchestrator.workflows",
		metric.WithDescription("Number of cluster-wide workflows by event"),
		metric.WithUnit("{workflow}"),
	)
	if err != nil {
		return nil, err
	}
	m.operations, err = opentelemetry.NewInt64CounterSet[operationKey](meter,
		"snorch.orchestrator.operations",
		metric.WithDescription("Number of remote operation completions by status"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}
	m.durations, err = opentelemetry.NewFloat64HistogramSet[types.OperationKind](meter,
		"snorch.orchestrator.operation.duration",
		metric.WithDescription("Time from scheduling a remote operation to its end"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metrics) workflow(ctx context.Context, wf types.Workflow, event string) {
	m.workflows.Add(ctx, workflowKey{workflow: wf, event: event}, 1, func() []attribute.KeyValue {
		return []attribute.KeyValue{
			attribute.Int("cluster_id", int(m.cid)),
			attribute.String("workflow", wf.String()),
			attribute.String("event", event),
		}
	})
}

func (m *metrics) operation(ctx context.Context, kind types.OperationKind, status types.OperationStatus) {
	m.operations.Add(ctx, operationKey{kind: kind, status: status}, 1, func() []attribute.KeyValue {
		return []attribute.KeyValue{
			attribute.Int("cluster_id", int(m.cid)),
			attribute.String("operation", kind.String()),
			attribute.String("status", status.String()),
		}
	})
}

func (m *metrics) duration(ctx context.Context, kind types.OperationKind, seconds float64) {
	m.durations.Record(ctx, kind, seconds, func() []attribute.KeyValue {
		return []attribute.KeyValue{
			attribute.Int("cluster_id", int(m.cid)),
			attribute.String("operation", kind.String()),
		}
	})
}
