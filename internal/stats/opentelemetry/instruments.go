package opentelemetry

import (
	"context"

	"github.com/puzpuzpuz/xsync/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Int64CounterSet is an Int64Counter whose attribute sets are cached per key
// so that hot paths do not rebuild them on every measurement.
type Int64CounterSet[K comparable] struct {
	counter metric.Int64Counter
	cache   *attributeCache[K]
}

func NewInt64CounterSet[K comparable](meter metric.Meter, name string, opts ...metric.Int64CounterOption) (*Int64CounterSet[K], error) {
	counter, err := meter.Int64Counter(name, opts...)
	if err != nil {
		return nil, err
	}
	return &Int64CounterSet[K]{counter: counter, cache: newAttributeCache[K]()}, nil
}

// Add increments the counter for key. attrs is called only the first time
// the key is seen.
func (cs *Int64CounterSet[K]) Add(ctx context.Context, key K, incr int64, attrs func() []attribute.KeyValue) {
	cs.counter.Add(ctx, incr, cs.cache.get(key, attrs))
}

// Float64HistogramSet is a Float64Histogram with attribute sets cached per
// key.
type Float64HistogramSet[K comparable] struct {
	histogram metric.Float64Histogram
	cache     *attributeCache[K]
}

func NewFloat64HistogramSet[K comparable](meter metric.Meter, name string, opts ...metric.Float64HistogramOption) (*Float64HistogramSet[K], error) {
	histogram, err := meter.Float64Histogram(name, opts...)
	if err != nil {
		return nil, err
	}
	return &Float64HistogramSet[K]{histogram: histogram, cache: newAttributeCache[K]()}, nil
}

func (hs *Float64HistogramSet[K]) Record(ctx context.Context, key K, value float64, attrs func() []attribute.KeyValue) {
	hs.histogram.Record(ctx, value, hs.cache.get(key, attrs))
}

type attributeCache[K comparable] struct {
	mu   *xsync.RBMutex
	opts map[K]metric.MeasurementOption
}

func newAttributeCache[K comparable]() *attributeCache[K] {
	return &attributeCache[K]{
		mu:   xsync.NewRBMutex(),
		opts: make(map[K]metric.MeasurementOption),
	}
}

func (c *attributeCache[K]) get(key K, attrs func() []attribute.KeyValue) metric.MeasurementOption {
	rt := c.mu.RLock()
	opt, ok := c.opts[key]
	c.mu.RUnlock(rt)
	if ok {
		return opt
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if opt, ok := c.opts[key]; ok {
		return opt
	}
	opt = metric.WithAttributeSet(attribute.NewSet(attrs()...))
	c.opts[key] = opt
	return opt
}
