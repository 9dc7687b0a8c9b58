package normalize

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/relaypipe/normalize/schema"
)

const scopeName = "github.com/relaypipe/normalize"

const (
	spanKeyAPI         = "payload.api"
	spanKeySource      = "payload.source"
	spanKeyContentType = "payload.content_type"
	spanKeyEventCount  = "payload.event_count"
)

// InstrumentOption configures Instrument.
type InstrumentOption func(*instrumented)

// WithLogger sets the logger used for rejected payloads.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) InstrumentOption {
	return func(i *instrumented) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// instrumented wraps an Adapter with tracing, metrics and failure logging.
type instrumented struct {
	next   Adapter
	source string
	logger *slog.Logger
	tracer trace.Tracer

	normalized metric.Int64Counter
	rejected   metric.Int64Counter
}

// Instrument wraps adapter with an OpenTelemetry span per ToRawEvents call,
// counters for normalized events and rejected payloads, and structured
// logging of failures. The wrapped adapter remains pure; all effects live
// in the wrapper.
//
// Example:
//
//	reg.Register("acme", normalize.Instrument("acme", &normalize.BatchAdapter{...}))
func Instrument(source string, adapter Adapter, opts ...InstrumentOption) Adapter {
	i := &instrumented{
		next:   adapter,
		source: source,
		logger: slog.Default(),
		tracer: otel.Tracer(scopeName),
	}
	for _, opt := range opts {
		opt(i)
	}

	meter := otel.Meter(scopeName)
	var err error
	i.normalized, err = meter.Int64Counter("normalize.events_normalized",
		metric.WithDescription("Raw events produced by adapters"))
	if err != nil {
		i.logger.Warn("normalized counter unavailable", "error", err)
	}
	i.rejected, err = meter.Int64Counter("normalize.payloads_rejected",
		metric.WithDescription("Inbound payloads rejected during normalization"))
	if err != nil {
		i.logger.Warn("rejected counter unavailable", "error", err)
	}
	return i
}

func (i *instrumented) ToRawEvents(ctx context.Context, env *Envelope, validator schema.Validator) (RawEvents, error) {
	ctx, span := i.tracer.Start(ctx, "normalize."+i.source,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(spanKeyAPI, env.API),
			attribute.String(spanKeySource, i.source),
			attribute.String(spanKeyContentType, env.ContentType),
		))
	defer span.End()

	events, err := i.next.ToRawEvents(ctx, env, validator)
	sourceAttr := metric.WithAttributes(attribute.String(spanKeySource, i.source))
	if err != nil {
		if i.rejected != nil {
			i.rejected.Add(ctx, 1, sourceAttr)
		}
		span.RecordError(err)
		i.logger.Warn("payload rejected",
			"source", i.source,
			"api", env.API,
			"messages", Messages(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int(spanKeyEventCount, len(events)))
	if i.normalized != nil {
		i.normalized.Add(ctx, int64(len(events)), sourceAttr)
	}
	return events, nil
}
