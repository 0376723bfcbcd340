// Package observability provides OpenTelemetry tracing and metrics for
// the session coordinator.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("authbridge"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "auth.signin")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("authbridge"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("authbridge"))
//	metrics.RecordSignIn(ctx, "enterprise", "ok", duration)
package observability
