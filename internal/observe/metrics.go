// Package observe provides application-wide observability primitives for
// rxtract: OpenTelemetry metrics and the Prometheus exporter bridge that
// serves them on /metrics.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all rxtract metrics.
const meterName = "github.com/MrWong99/rxtract"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// ExtractionDuration tracks end-to-end extraction latency per transcript.
	ExtractionDuration metric.Float64Histogram

	// LLMDuration tracks primary-path model inference latency.
	LLMDuration metric.Float64Histogram

	// --- Counters ---

	// Routes counts route selections. Use with attribute:
	//   attribute.String("route", ...)
	Routes metric.Int64Counter

	// ParseRepairs counts model outputs that needed a JSON recovery strategy
	// beyond a direct parse. Use with attribute:
	//   attribute.String("strategy", ...)
	ParseRepairs metric.Int64Counter

	// Fallbacks counts primary-path failures that degraded to the rules
	// path. Use with attribute:
	//   attribute.String("kind", ...) with "transport" or "parse"
	Fallbacks metric.Int64Counter

	// ValidationWarnings counts advisory findings attached to records.
	ValidationWarnings metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts model provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// a pipeline whose slowest stage is one or two model round trips.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ExtractionDuration, err = m.Float64Histogram("rxtract.extraction.duration",
		metric.WithDescription("End-to-end extraction latency per transcript."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("rxtract.llm.duration",
		metric.WithDescription("Latency of primary-path model inference."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Routes, err = m.Int64Counter("rxtract.routes",
		metric.WithDescription("Total route selections by route."),
	); err != nil {
		return nil, err
	}
	if met.ParseRepairs, err = m.Int64Counter("rxtract.parse.repairs",
		metric.WithDescription("Model outputs recovered by a non-direct JSON strategy."),
	); err != nil {
		return nil, err
	}
	if met.Fallbacks, err = m.Int64Counter("rxtract.fallbacks",
		metric.WithDescription("Primary-path failures served by the rules path, by failure kind."),
	); err != nil {
		return nil, err
	}
	if met.ValidationWarnings, err = m.Int64Counter("rxtract.validation.warnings",
		metric.WithDescription("Advisory validation findings attached to records."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("rxtract.provider.errors",
		metric.WithDescription("Total model provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordRoute records a route-selection counter increment.
func (m *Metrics) RecordRoute(ctx context.Context, route string) {
	m.Routes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("route", route)),
	)
}

// RecordParseRepair records a non-direct JSON recovery.
func (m *Metrics) RecordParseRepair(ctx context.Context, strategy string) {
	m.ParseRepairs.Add(ctx, 1,
		metric.WithAttributes(attribute.String("strategy", strategy)),
	)
}

// RecordFallback records a primary-to-rules degradation by failure kind.
func (m *Metrics) RecordFallback(ctx context.Context, kind string) {
	m.Fallbacks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordProviderError records a model provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
