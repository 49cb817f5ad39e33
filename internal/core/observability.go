package core

import (
	"context"
	"time"
)

// MetricsRecorder receives timing and outcome data for every service
// operation. Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan finalizes a single traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// AuditSink receives the committed change set of every successful mutation.
type AuditSink interface {
	Record(ctx context.Context, operation string, changes []Change)
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, string, []Change) {}
