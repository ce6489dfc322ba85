package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/smartsearch/errors"
)

// Operation tracks one pipeline run.
type Operation struct {
	ctx      context.Context
	pipeline string
	start    time.Time
	span     trace.Span
	metrics  *Metrics
}

// StartOperation opens a span named after pipeline. metrics may be nil.
func StartOperation(ctx context.Context, metrics *Metrics, pipeline string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, "smartsearch."+pipeline,
		trace.WithAttributes(append(attrs, attribute.String(AttrPipeline, pipeline))...),
	)
	return ctx, &Operation{
		ctx:      ctx,
		pipeline: pipeline,
		start:    time.Now(),
		span:     span,
		metrics:  metrics,
	}
}

// End closes the span and records the outcome. A failed run is tagged with
// its error code.
func (o *Operation) End(err error) {
	status := "ok"
	if err != nil {
		status = "error"
		code := string(errors.CodeOf(err))
		if code == "" {
			code = string(errors.ErrCodeInternal)
		}
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, code)
		o.span.SetAttributes(attribute.String(AttrErrorCode, code))
		o.metrics.RecordError(o.ctx, code, o.pipeline)
	}
	o.span.SetAttributes(attribute.String(AttrStatus, status))
	o.span.End()
	o.metrics.RecordPipeline(o.ctx, o.pipeline, status, o.Duration())
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.start)
}
