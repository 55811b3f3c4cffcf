package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "session-provisioner"

// Observability holds the OpenTelemetry instruments for provisioning runs.
// A zero value is safe to use and records nothing.
type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	provisionCounter  otelmetric.Int64Counter
	provisionDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	provisionCounter, _ := meter.Int64Counter(
		"provisions.processed",
		otelmetric.WithDescription("Number of provisioning runs"),
	)

	provisionDuration, _ := meter.Float64Histogram(
		"provisions.duration",
		otelmetric.WithDescription("Provisioning run duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		provisionCounter:  provisionCounter,
		provisionDuration: provisionDuration,
	}
}

func (o *Observability) RecordProvision(ctx context.Context, provider, outcome string) {
	if o == nil || o.provisionCounter == nil {
		return
	}
	o.provisionCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordProvisionDuration(ctx context.Context, duration time.Duration, provider, outcome string) {
	if o == nil || o.provisionDuration == nil {
		return
	}
	o.provisionDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}

// StartSpan opens a span on the globally registered tracer provider.
// Without an SDK registered the span is a no-op.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
