package deps

import (
	"context"
	"log/slog"
	"os"

	"github.com/sql-trainer/backend/internal/workers"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// OTelSDK wires the OpenTelemetry trace and log providers for the process.
// The exporter is picked from OTEL_EXPORTER: "otlp" (HTTP), "otlp-grpc",
// "stdout", or empty to disable exporting entirely.
func OTelSDK(lifecycle fx.Lifecycle) error {
	exporter := os.Getenv("OTEL_EXPORTER")
	if exporter == "" {
		return nil
	}

	ctx := context.Background()

	traceExporter, logExporter, err := buildExporters(ctx, exporter)
	if err != nil {
		slog.Error("error building telemetry exporters", "exporter", exporter, "error", err)
		return err
	}

	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	logProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)

	// fan slog out to both stdout and the log exporter
	slog.SetDefault(slog.New(newTeeHandler(
		slog.Default().Handler(),
		otelslog.NewHandler("sqltrainer", otelslog.WithLoggerProvider(logProvider)),
	)))

	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			workers.Global.Wait()

			if err := traceProvider.Shutdown(ctx); err != nil {
				slog.Error("error shutting down trace provider", "error", err)
			}
			if err := logProvider.Shutdown(ctx); err != nil {
				slog.Error("error shutting down log provider", "error", err)
			}

			return nil
		},
	})

	return nil
}

func buildExporters(ctx context.Context, exporter string) (sdktrace.SpanExporter, sdklog.Exporter, error) {
	switch exporter {
	case "otlp":
		traceExporter, err := otlptracehttp.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		logExporter, err := otlploghttp.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return traceExporter, logExporter, nil
	case "otlp-grpc":
		traceExporter, err := otlptracegrpc.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		logExporter, err := otlploggrpc.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return traceExporter, logExporter, nil
	default:
		traceExporter, err := stdouttrace.New()
		if err != nil {
			return nil, nil, err
		}
		logExporter, err := stdoutlog.New()
		if err != nil {
			return nil, nil, err
		}
		return traceExporter, logExporter, nil
	}
}

// teeHandler forwards every record to all wrapped handlers.
type teeHandler struct {
	handlers []slog.Handler
}

func newTeeHandler(handlers ...slog.Handler) *teeHandler {
	return &teeHandler{handlers: handlers}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}

	return nil
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		wrapped[i] = handler.WithAttrs(attrs)
	}

	return &teeHandler{handlers: wrapped}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		wrapped[i] = handler.WithGroup(name)
	}

	return &teeHandler{handlers: wrapped}
}
