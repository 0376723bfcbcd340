package observability

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetrics_RecordsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordSignIn(ctx, "enterprise", "ok", 2*time.Second)
	metrics.RecordSignOut(ctx, "enterprise", "ok")
	metrics.RecordStaleEvent(ctx, "consumer")
	metrics.RecordSessionChange(ctx, "enterprise", 1)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("expected recorded metrics")
	}

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{
		"auth.signin.total",
		"auth.signin.duration",
		"auth.signout.total",
		"auth.stale_events.total",
		"auth.sessions.active",
	} {
		if !names[want] {
			t.Errorf("missing instrument %q, got %v", want, names)
		}
	}
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()

	// Must not panic.
	metrics.RecordSignIn(ctx, "enterprise", "ok", time.Second)
	metrics.RecordSignOut(ctx, "enterprise", "failed")
	metrics.RecordStaleEvent(ctx, "consumer")
	metrics.RecordSessionChange(ctx, "consumer", -1)
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("authbridge")
	if tc.ServiceName != "authbridge" || tc.SampleRate != 1.0 {
		t.Errorf("unexpected tracer defaults: %+v", tc)
	}
	mc := DefaultMeterConfig("authbridge")
	if mc.Endpoint != "localhost:4318" || mc.Interval != 15*time.Second {
		t.Errorf("unexpected meter defaults: %+v", mc)
	}
}
