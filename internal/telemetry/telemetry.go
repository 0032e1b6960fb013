package telemetry

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
)

// Config for the telemetry layer.
type Config struct {
	ServiceName       string
	CollectorEndpoint string // empty means local-only export
	Debug             bool   // when local-only, emit spans to stdout
}

// Telemetry owns the tracer provider and the W3C trace-context propagator.
// Every export path is wrapped so that collector failures are logged once
// and never reach the request path: the success criterion is "reporting
// happened", not "export succeeded".
type Telemetry struct {
	cfg        Config
	logger     *slog.Logger
	provider   *sdktrace.TracerProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator

	exportErrOnce sync.Once
}

// Init builds the telemetry layer. It never fails the caller: when the
// collector is unreachable or misconfigured it degrades to a no-op or
// stdout tracer and logs why.
func Init(cfg Config, logger *slog.Logger) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "invoice-sentinel"
	}

	t := &Telemetry{
		cfg:        cfg,
		logger:     logger,
		propagator: propagation.TraceContext{},
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	)

	var opts []sdktrace.TracerProviderOption
	opts = append(opts, sdktrace.WithResource(res))

	switch {
	case cfg.CollectorEndpoint != "":
		exp, err := otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(strings.TrimPrefix(strings.TrimPrefix(cfg.CollectorEndpoint, "http://"), "grpc://")),
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithTimeout(5*time.Second),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.ServiceName)),
		)
		if err != nil {
			logger.Warn("telemetry.exporter.unavailable", "endpoint", cfg.CollectorEndpoint, "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(time.Second)))
			logger.Info("telemetry.exporter.configured", "endpoint", cfg.CollectorEndpoint)
		}
	case cfg.Debug:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			logger.Warn("telemetry.stdout_exporter.unavailable", "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exp))
		}
	}

	t.provider = sdktrace.NewTracerProvider(opts...)
	t.tracer = t.provider.Tracer(cfg.ServiceName)
	return t
}

// Noop returns a telemetry layer that records nothing. Used by tests and
// as a last-resort fallback.
func Noop() *Telemetry {
	return &Telemetry{
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("noop"),
		propagator: propagation.TraceContext{},
	}
}

// StartSpan opens a child span. Safe on a nil provider.
func (t *Telemetry) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Close flushes and shuts down the provider with its own short deadline.
// Failures are logged once and swallowed.
func (t *Telemetry) Close(ctx context.Context) {
	if t.provider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := t.provider.ForceFlush(ctx); err != nil {
		t.logExportError("flush", err)
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		t.logExportError("shutdown", err)
	}
}

func (t *Telemetry) logExportError(stage string, err error) {
	t.exportErrOnce.Do(func() {
		t.logger.Warn("telemetry.export.failed", "stage", stage, "error", err)
	})
}
