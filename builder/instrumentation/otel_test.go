package instrumentation

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"opencsg.com/auth-exerciser/common/config"
)

func TestConvEndpoint(t *testing.T) {
	host, err := convEndpoint("http://otel-collector:4317")
	require.NoError(t, err)
	require.Equal(t, "otel-collector:4317", host)

	_, err = convEndpoint("otel-collector")
	require.Error(t, err)

	insecure, err := convInsecure("https://otel.example.com:4317")
	require.NoError(t, err)
	require.False(t, insecure)
	insecure, err = convInsecure("http://otel-collector:4317")
	require.NoError(t, err)
	require.True(t, insecure)
}

func TestSetupOTelSDK_Disabled(t *testing.T) {
	cfg := &config.Config{}
	shutdown, err := SetupOTelSDK(context.TODO(), cfg, ServiceName)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.TODO()))

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.False(t, ok)
}

func TestSetupOTelSDK_InvalidEndpoint(t *testing.T) {
	cfg := &config.Config{}
	cfg.Instrumentation.OTLPEndpoint = "collector-without-scheme"
	_, err := SetupOTelSDK(context.TODO(), cfg, ServiceName)
	require.Error(t, err)
}

func TestSetupOTelSDK_Enabled(t *testing.T) {
	defaultLogger := slog.Default()
	defer slog.SetDefault(defaultLogger)

	cfg := &config.Config{}
	cfg.Instrumentation.OTLPEndpoint = "http://127.0.0.1:4317"
	cfg.Instrumentation.OTLPLogging = true
	shutdown, err := SetupOTelSDK(context.TODO(), cfg, ServiceName)
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok)
	require.NotSame(t, defaultLogger, slog.Default())

	_, span := otel.Tracer(ServiceName).Start(context.TODO(), "login")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	// nothing listens on the collector address, so flushing may fail; it must still return
	ctx, cancel := context.WithTimeout(context.TODO(), 200*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
