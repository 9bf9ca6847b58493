package pubsub

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "zina-events"

// TracingConfig mirrors the TRACING_* settings.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	// ZipkinURL is the span collector endpoint, e.g. http://localhost:9411/api/v2/spans.
	ZipkinURL string
}

// SetupOTel returns the tracer used for "event.publish" and "event.process"
// spans, exporting to Zipkin in batches. The returned func flushes pending
// spans on shutdown. Disabled tracing yields a no-op tracer and cleanup.
func SetupOTel(ctx context.Context, config TracingConfig) (trace.Tracer, func(), error) {
	if !config.Enabled {
		return noop.NewTracerProvider().Tracer(tracerName), func() {}, nil
	}

	exporter, err := zipkin.New(config.ZipkinURL)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Warn("Flushing event spans failed", "error", err)
		}
	}
	return tp.Tracer(tracerName), cleanup, nil
}
