// Package observability wires tracing and metrics for the chat pipeline.
package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"ai-persona-chat/backend/pkg/logger"
)

// SetupTracing initializes OpenTelemetry tracing with a stdout exporter
// (replace with OTLP in a real deployment). Returns a shutdown func.
func SetupTracing(serviceName string, log *logger.Logger) func() {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.LogError(err, "failed to initialize trace exporter")
		return func() {}
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }
}

// ServeMetrics exposes the Prometheus exposition endpoint on its own
// listener and installs the global OTel meter provider backed by the same
// registry. Returns a shutdown func.
func ServeMetrics(addr string, log *logger.Logger) func() {
	exp, err := otelprom.New()
	if err != nil {
		log.LogError(err, "failed to initialize prometheus exporter")
		return func() {}
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.LogError(err, "metrics listener stopped", "addr", addr)
		}
	}()
	return func() { _ = mp.Shutdown(context.Background()) }
}
