package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/zone-streamer/internal/config"
)

func TestInitTelemetryDisabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

// keepExporter не очищает span'ы при Shutdown
type keepExporter struct {
	*tracetest.InMemoryExporter
}

func (keepExporter) Shutdown(context.Context) error { return nil }

func TestInitWithExporter(t *testing.T) {
	ctx := context.Background()
	exp := keepExporter{tracetest.NewInMemoryExporter()}

	shutdown, err := InitWithExporter(ctx, "zone-streamer-test", exp)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "zone.assemble")
	span.End()
	require.NoError(t, shutdown(ctx))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "zone.assemble", spans[0].Name)

	name, ok := spans[0].Resource.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "zone-streamer-test", name.AsString())
}
