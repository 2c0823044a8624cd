package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	olog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"opencsg.com/auth-exerciser/common/config"
)

const ServiceName = "auth-exerciser"

func convEndpoint(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("otlp endpoint %q has no host", s)
	}
	return u.Host, nil
}

func convInsecure(s string) (bool, error) {
	u, err := url.Parse(s)
	if err != nil {
		return true, err
	}

	if u.Scheme == "https" {
		return false, nil
	}
	return true, nil
}

// SetupOTelSDK exports the spans and metrics of outgoing requests to the configured OTLP collector.
// Nothing is installed when no endpoint is configured. The returned func flushes and stops the exporters.
func SetupOTelSDK(ctx context.Context, config *config.Config, serviceName string) (func(context.Context) error, error) {
	if config.Instrumentation.OTLPEndpoint == "" {
		return func(ctx context.Context) error {
			return nil
		}, nil
	}
	endpoint, err := convEndpoint(config.Instrumentation.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	insecure, err := convInsecure(config.Instrumentation.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	var shutdownFuncs []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) error {
		return errors.Join(inErr, shutdown(ctx))
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := resource.New(ctx,
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
	}
	if insecure {
		options = append(options, otlptracegrpc.WithInsecure())
	}
	traceExporter, err := otlptrace.New(
		ctx, otlptracegrpc.NewClient(options...),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	optionsMetric := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(endpoint),
	}
	if insecure {
		optionsMetric = append(optionsMetric, otlpmetricgrpc.WithInsecure())
	}
	metricExporter, err := otlpmetricgrpc.New(
		ctx, optionsMetric...,
	)
	if err != nil {
		return nil, handleErr(err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		metric.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	if config.Instrumentation.OTLPLogging {
		optionsLog := []otlploggrpc.Option{
			otlploggrpc.WithEndpoint(endpoint),
		}
		if insecure {
			optionsLog = append(optionsLog, otlploggrpc.WithInsecure())
		}
		logExporter, err := otlploggrpc.New(
			ctx, optionsLog...,
		)
		if err != nil {
			return nil, handleErr(err)
		}

		loggerProvider := olog.NewLoggerProvider(
			olog.WithProcessor(olog.NewBatchProcessor(logExporter)),
			olog.WithResource(res),
		)
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		global.SetLoggerProvider(loggerProvider)

		handlers := []slog.Handler{
			slog.Default().Handler(),
			otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(loggerProvider)),
		}
		slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	}

	return shutdown, nil
}
