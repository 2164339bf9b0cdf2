package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OtlpConnConfig is where one kind of signal is exported to, the grpc
// endpoint wins when both are set.
type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (c OtlpConnConfig) enabled() bool {
	return c.GrpcEndpoint != "" || c.HttpEndpoint != ""
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
	// MetricIntervalSeconds is how often metrics are pushed, defaults to 5.
	MetricIntervalSeconds int `json:"metric_interval_seconds"`
}

// Config is the contents of telemetry.json5.
type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceNamespace("rodent-genomes"),
		),
	)
}

// newExporter creates the grpc or http exporter of a signal depending on
// which endpoint is configured.
func newExporter[T any](
	ctx context.Context,
	signal string,
	c OtlpConnConfig,
	grpc func(ctx context.Context) (T, error),
	http func(ctx context.Context) (T, error),
) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if c.GrpcEndpoint != "" {
		slog.Debug("otlp exporter", "signal", signal, "type", "grpc", "endpoint", c.GrpcEndpoint)
		return grpc(ctx)
	}
	slog.Debug("otlp exporter", "signal", signal, "type", "http", "endpoint", c.HttpEndpoint)
	return http(ctx)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, config Config) (*trace.TracerProvider, error) {
	c := config.Otlp.Traces
	exporter, err := newExporter[trace.SpanExporter](
		ctx, "traces", c,
		func(ctx context.Context) (trace.SpanExporter, error) {
			return otlptracegrpc.New(
				ctx,
				otlptracegrpc.WithEndpointURL(c.GrpcEndpoint),
				otlptracegrpc.WithHeaders(c.Headers),
			)
		},
		func(ctx context.Context) (trace.SpanExporter, error) {
			return otlptracehttp.New(
				ctx,
				otlptracehttp.WithEndpointURL(c.HttpEndpoint),
				otlptracehttp.WithHeaders(c.Headers),
			)
		},
	)
	if err != nil {
		return nil, err
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, config Config) (*metric.MeterProvider, error) {
	c := config.Otlp.Metrics
	exporter, err := newExporter[metric.Exporter](
		ctx, "metrics", c,
		func(ctx context.Context) (metric.Exporter, error) {
			return otlpmetricgrpc.New(
				ctx,
				otlpmetricgrpc.WithEndpointURL(c.GrpcEndpoint),
				otlpmetricgrpc.WithHeaders(c.Headers),
			)
		},
		func(ctx context.Context) (metric.Exporter, error) {
			return otlpmetrichttp.New(
				ctx,
				otlpmetrichttp.WithEndpointURL(c.HttpEndpoint),
				otlpmetrichttp.WithHeaders(c.Headers),
			)
		},
	)
	if err != nil {
		return nil, err
	}

	interval := time.Second * 5
	if config.Otlp.MetricIntervalSeconds > 0 {
		interval = time.Duration(config.Otlp.MetricIntervalSeconds) * time.Second
	}
	// Shutdown flushes whatever the reader has not pushed yet
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(r),
	), nil
}
