// Package telemetry wires OpenTelemetry tracing, metrics and logs for the
// service and records fulfillment metrics from committed domain events.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const (
	shutdownTimeout = 10 * time.Second

	// DefaultServiceName identifies the service when none is configured
	DefaultServiceName = "shopdesk-backend"
	serviceVersion     = "1.0.0"
)

func newResource(serviceName string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdown stops one SDK provider within shutdownTimeout
func shutdown(ctx context.Context, kind string, stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s provider: %w", kind, err)
	}
	return nil
}
