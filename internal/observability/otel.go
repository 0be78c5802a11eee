// Package observability holds the Prometheus counters of the aggregation
// pipeline and the OpenTelemetry tracer setup shared by the HTTP layer, the
// services and the GORM tracing plugin.
package observability

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/feedback-hub/internal/config"
)

const instrumentationPrefix = "github.com/tbourn/feedback-hub/"

// Tracer returns the tracer for a component such as "services/insights".
// It resolves the global provider on each call, so spans started before
// SetupOTel are no-ops and later ones are exported.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}

// Swapped in tests.
var (
	newExporter = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, client)
	}
	newResource = func(ctx context.Context, attrs ...attribute.KeyValue) (*resource.Resource, error) {
		return resource.New(ctx, resource.WithAttributes(attrs...))
	}
)

// resourceAttrs describes this deployment: which database backs it, whether
// it answers from fixtures and which AI provider the server default uses.
func resourceAttrs(cfg config.Config, version string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.OTEL.ServiceName),
		semconv.ServiceVersion(version),
		semconv.DBSystemKey.String(dbSystem(cfg.DB.Driver)),
		attribute.Bool("feedbackhub.demo_mode", cfg.DemoMode),
	}
	if cfg.AI.Provider != "" {
		attrs = append(attrs, attribute.String("feedbackhub.ai.provider", cfg.AI.Provider))
	}
	return attrs
}

func dbSystem(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// SetupOTel installs an OTLP/gRPC tracer provider and the W3C propagators.
// The returned func flushes pending spans. With tracing disabled nothing is
// installed and the shutdown func is a no-op.
func SetupOTel(ctx context.Context, cfg config.Config, version string) (func(context.Context) error, error) {
	oc := cfg.OTEL
	if !oc.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(oc.Endpoint)}
	if oc.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}
	exp, err := newExporter(ctx, otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, err
	}
	res, err := newResource(ctx, resourceAttrs(cfg, version)...)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(oc.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	log.Info().
		Str("endpoint", oc.Endpoint).
		Float64("sample_ratio", oc.SampleRatio).
		Bool("demo_mode", cfg.DemoMode).
		Msg("tracing enabled")
	return tp.Shutdown, nil
}
