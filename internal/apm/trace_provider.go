// Package apm wires the OTEL tracer provider.
package apm

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/arb-engine/internal/logger"
)

// Provider identifies a tracing backend.
type Provider string

const (
	ZipkinProvider  Provider = "ZIPKIN_PROVIDER"
	OTLPProvider    Provider = "OTLP_PROVIDER"
	ConsoleProvider Provider = "CONSOLE_PROVIDER"
	EmptyProvider   Provider = "EMPTY_PROVIDER"
)

// TraceProvider is the lifecycle handle returned to main.
type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// TracerOptions accumulates exporter selection.
type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	tracerProviderName string
	useEmpty           bool
}

// TracerOption configures the trace provider.
type TracerOption func(*TracerOptions)

// WithProvider selects a backend by name, falling back to the empty
// provider for unknown values.
func WithProvider(provider Provider, log logger.LoggerInterface) TracerOption {
	switch provider {
	case ZipkinProvider:
		return useZipkin()
	case OTLPProvider:
		return useOTLP()
	case ConsoleProvider:
		return useConsole()
	}

	log.Warn(context.Background(), "tracer provider not found, using empty provider",
		"provider", string(provider))
	return useEmpty()
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = string(EmptyProvider)
	}
}

func useConsole() TracerOption {
	return func(option *TracerOptions) {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			panic(err)
		}

		option.exporter = exp
		option.tracerProviderName = string(ConsoleProvider)
	}
}

func useZipkin() TracerOption {
	return func(option *TracerOptions) {
		url := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

		exp, err := zipkin.New(url)
		if err != nil {
			panic(err)
		}

		option.exporter = exp
		option.tracerProviderName = string(ZipkinProvider)
	}
}

func useOTLP() TracerOption {
	return func(option *TracerOptions) {
		url := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

		exp, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpointURL(url),
		)
		if err != nil {
			panic(err)
		}

		option.exporter = exp
		option.tracerProviderName = string(OTLPProvider)
	}
}

// NewTraceProvider builds and installs the global tracer provider.
func NewTraceProvider(log logger.LoggerInterface, options ...TracerOption) TraceProvider {
	serviceName := os.Getenv("OTEL_SERVICE_NAME")

	if len(options) == 0 {
		options = []TracerOption{useEmpty()}
	}

	opts := &TracerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.useEmpty {
		return emptyTraceProvider{}
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return o.tp.Shutdown(ctx)
}
