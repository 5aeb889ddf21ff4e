// Package telemetry installs the global OpenTelemetry tracer and meter
// providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gitlab.com/yelinaung/leverage/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc flushes and stops the providers.
type ShutdownFunc func(context.Context) error

// Options selects the exporter. Writer is only used by the stdout exporter
// and defaults to os.Stdout.
type Options struct {
	Exporter       string
	ServiceName    string
	Writer         io.Writer
	MetricInterval time.Duration
}

// Setup installs global providers for opts.Exporter. With the "none"
// exporter nothing is installed and the otel no-op providers stay active.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if opts.Exporter == "" || opts.Exporter == config.ExporterNone {
		return noop, nil
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "leverage"
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.MetricInterval <= 0 {
		opts.MetricInterval = time.Minute
	}

	spanExporter, metricExporter, err := newExporters(ctx, opts)
	if err != nil {
		return noop, err
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", opts.ServiceName)))
	if err != nil {
		return noop, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(opts.MetricInterval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newExporters(ctx context.Context, opts Options) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	switch opts.Exporter {
	case config.ExporterStdout:
		se, err := stdouttrace.New(stdouttrace.WithWriter(opts.Writer))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		me, err := stdoutmetric.New(stdoutmetric.WithWriter(opts.Writer))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		return se, me, nil

	case config.ExporterOTLPGRPC:
		se, err := otlptracegrpc.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create otlp grpc trace exporter: %w", err)
		}
		me, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create otlp grpc metric exporter: %w", err)
		}
		return se, me, nil

	case config.ExporterOTLPHTTP:
		se, err := otlptracehttp.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create otlp http trace exporter: %w", err)
		}
		me, err := otlpmetrichttp.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create otlp http metric exporter: %w", err)
		}
		return se, me, nil
	}
	return nil, nil, fmt.Errorf("unknown telemetry exporter %q", opts.Exporter)
}
