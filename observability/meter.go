package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/authbridge/logger"
	"github.com/skillsenselab/authbridge/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Short(),
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the session coordinator's metric instruments. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	signInTotal     metric.Int64Counter
	signInDuration  metric.Float64Histogram
	signOutTotal    metric.Int64Counter
	staleEventTotal metric.Int64Counter
	sessionsActive  metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	signInTotal, err := meter.Int64Counter("auth.signin.total",
		metric.WithDescription("Completed sign-in attempts by provider and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.signin.total counter: %w", err)
	}

	signInDuration, err := meter.Float64Histogram("auth.signin.duration",
		metric.WithDescription("Duration of interactive sign-in flows in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.signin.duration histogram: %w", err)
	}

	signOutTotal, err := meter.Int64Counter("auth.signout.total",
		metric.WithDescription("Sign-outs by provider and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.signout.total counter: %w", err)
	}

	staleEventTotal, err := meter.Int64Counter("auth.stale_events.total",
		metric.WithDescription("Provider state events discarded by arbitration"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.stale_events.total counter: %w", err)
	}

	sessionsActive, err := meter.Int64UpDownCounter("auth.sessions.active",
		metric.WithDescription("Currently established sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.sessions.active gauge: %w", err)
	}

	return &Metrics{
		signInTotal:     signInTotal,
		signInDuration:  signInDuration,
		signOutTotal:    signOutTotal,
		staleEventTotal: staleEventTotal,
		sessionsActive:  sessionsActive,
	}, nil
}

// RecordSignIn records a completed sign-in attempt.
func (m *Metrics) RecordSignIn(ctx context.Context, provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.signInTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
	m.signInDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordSignOut records a sign-out.
func (m *Metrics) RecordSignOut(ctx context.Context, provider, status string) {
	if m == nil {
		return
	}
	m.signOutTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

// RecordStaleEvent records a provider event discarded by arbitration.
func (m *Metrics) RecordStaleEvent(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.staleEventTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordSessionChange adjusts the active session gauge by delta.
func (m *Metrics) RecordSessionChange(ctx context.Context, provider string, delta int64) {
	if m == nil {
		return
	}
	m.sessionsActive.Add(ctx, delta, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}
