package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/zone-streamer/internal/config"
	"github.com/annel0/zone-streamer/internal/logging"
)

// ShutdownFunc сбрасывает накопленные span'ы и останавливает провайдер
type ShutdownFunc func(context.Context) error

// InitTelemetry настраивает OTLP/HTTP экспортер и глобальный TracerProvider.
// При выключенной телеметрии возвращает пустой ShutdownFunc.
func InitTelemetry(ctx context.Context, cfg config.TelemetryConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	shutdown, err := InitWithExporter(ctx, cfg.ServiceName, exp)
	if err != nil {
		return nil, err
	}
	logging.Info("📡 OpenTelemetry инициализирован (OTLP/HTTP, service=%s)", cfg.ServiceName)
	return shutdown, nil
}

// InitWithExporter устанавливает глобальный TracerProvider с указанным экспортером
func InitWithExporter(ctx context.Context, serviceName string, exp sdktrace.SpanExporter) (ShutdownFunc, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}
