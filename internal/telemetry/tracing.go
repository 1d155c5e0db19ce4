package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitTracing installs an OTLP/HTTP tracer provider for service when endpoint is set.
// endpoint is either host:port or a URL such as http://collector:4318.
// The returned shutdown func is always safe to call.
func InitTracing(ctx context.Context, service, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts, err := exporterOptions(endpoint)
	if err != nil {
		return nil, err
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", service),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func exporterOptions(endpoint string) ([]otlptracehttp.Option, error) {
	target, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(target.host)}
	if target.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if target.path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(target.path))
	}
	return opts, nil
}

type exporterTarget struct {
	host     string
	path     string
	insecure bool
}

// parseEndpoint splits an OTLP endpoint into the host:port the exporter dials,
// an optional URL path and whether TLS is off. Bare host:port stays plaintext.
func parseEndpoint(endpoint string) (exporterTarget, error) {
	if !strings.Contains(endpoint, "://") {
		return exporterTarget{host: endpoint, insecure: true}, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return exporterTarget{}, fmt.Errorf("invalid OTLP endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return exporterTarget{}, fmt.Errorf("invalid OTLP endpoint %q", endpoint)
	}

	target := exporterTarget{host: u.Host, insecure: u.Scheme == "http"}
	if path := strings.TrimRight(u.Path, "/"); path != "" {
		target.path = path
	}
	return target, nil
}
