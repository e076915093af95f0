// pkg/telemetry/telemetry.go

package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var tracer trace.Tracer = noop.NewTracerProvider().Tracer("postflight")

// shutdownFn flushes and stops the active sdk provider; nil when the
// noop provider is installed.
var shutdownFn func(context.Context) error

// Init configures OpenTelemetry tracing; call early in main(). Spans are
// appended as JSONL to the telemetry file. When POSTFLIGHT_TELEMETRY is
// unset a noop tracer is installed and nothing is written.
// POSTFLIGHT_TELEMETRY_DIR overrides the output directory.
func Init(service string) error {
	if !enabled() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		return nil
	}

	dir := os.Getenv("POSTFLIGHT_TELEMETRY_DIR")
	if dir == "" {
		dir = "/var/log/postflight"
		if err := os.MkdirAll(dir, 0o755); err != nil {
			dir = filepath.Join(os.Getenv("HOME"), ".postflight", "telemetry")
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cerr.Wrap(err, "failed to create telemetry directory")
	}

	file, err := os.OpenFile(filepath.Join(dir, "telemetry.jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return cerr.Wrap(err, "failed to open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		file.Close()
		return cerr.Wrap(err, "failed to create telemetry exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("service.name", service),
				attribute.String("service.instance.id", runID),
				attribute.String("host.name", hostname()),
			),
		),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(service)
	shutdownFn = tp.Shutdown
	return nil
}

// Shutdown flushes buffered spans and stops the provider. The process
// exits via os.Exit, which skips deferred cleanup, so commands call this
// explicitly before exiting; a short run would otherwise drop its spans
// inside the batcher. Safe to call without a prior Init.
func Shutdown(ctx context.Context) {
	if shutdownFn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = shutdownFn(ctx)
	shutdownFn = nil
}

// runID correlates all spans of one invocation.
var runID = uuid.NewString()

// RunID returns the per-invocation correlation id.
func RunID() string { return runID }

// Start begins a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func enabled() bool {
	return os.Getenv("POSTFLIGHT_TELEMETRY") != ""
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
