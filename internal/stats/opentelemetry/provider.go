// Package opentelemetry wires OpenTelemetry metrics for the daemon.
package opentelemetry

import (
	"context"

	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"
)

// StopMeterProvider stops both the meter provider and its exporter.
type StopMeterProvider func(context.Context) error

// NewMeterProvider creates a meter provider and its stop function.
func NewMeterProvider(opts ...MeterProviderOption) (metric.MeterProvider, StopMeterProvider, error) {
	cfg := newMeterProviderConfig(opts)

	stop := func(context.Context) error { return nil }
	if cfg.exporter == nil {
		return noopmetric.NewMeterProvider(), stop, nil
	}

	mp := metricsdk.NewMeterProvider(
		metricsdk.WithResource(cfg.resource),
		metricsdk.WithReader(metricsdk.NewPeriodicReader(cfg.exporter)),
	)
	stop = func(ctx context.Context) error {
		// The periodic reader shuts the exporter down.
		return mp.Shutdown(ctx)
	}

	if cfg.hostInstrumentation {
		if err := host.Start(host.WithMeterProvider(mp)); err != nil {
			return nil, nil, multierr.Append(err, stop(context.Background()))
		}
	}
	if cfg.runtimeInstrumentation {
		runtimeOpts := append(cfg.runtimeInstrumentationOpts, runtime.WithMeterProvider(mp))
		if err := runtime.Start(runtimeOpts...); err != nil {
			return nil, nil, multierr.Append(err, stop(context.Background()))
		}
	}
	return mp, stop, nil
}

func NewStdoutExporter(opts ...stdoutmetric.Option) (metricsdk.Exporter, error) {
	return stdoutmetric.New(opts...)
}

func NewOTLPExporter(ctx context.Context, opts ...otlpmetricgrpc.Option) (metricsdk.Exporter, error) {
	return otlpmetricgrpc.New(ctx, opts...)
}

func SetGlobalMeterProvider(mp metric.MeterProvider) {
	otel.SetMeterProvider(mp)
}
