package normalize

import (
	"context"

	"github.com/relaypipe/normalize/schema"
)

// BatchAdapter normalizes sources that deliver one or more JSON events per
// request body, optionally merged with querystring parameters. It is the
// registry entry for every "batch webhook" style integration; the schema
// reference and accepted content types are per-source data.
type BatchAdapter struct {
	// SchemaRef names the contract the request body must satisfy.
	SchemaRef schema.Ref

	// ContentTypes lists the media types accepted for the body.
	ContentTypes []string
}

// ToRawEvents parses the envelope into one RawEvent per logical event.
// All events share the envelope's api, content type, source and context.
func (a *BatchAdapter) ToRawEvents(ctx context.Context, env *Envelope, validator schema.Validator) (RawEvents, error) {
	parser := BodyParser{SchemaRef: a.SchemaRef, ContentTypes: a.ContentTypes}
	batches, err := parser.Parse(ctx, env, validator)
	if err != nil {
		return nil, err
	}

	first := eventFromParams(env, batches[0])
	rest := make([]RawEvent, 0, len(batches)-1)
	for _, params := range batches[1:] {
		rest = append(rest, eventFromParams(env, params))
	}
	return NewRawEvents(first, rest...), nil
}

// CoercedAdapter normalizes sources that deliver a single event per request
// through the querystring, reconstructing a self-describing structured
// event via field coercion.
type CoercedAdapter struct {
	// Coercer holds the per-source field-type plan, schema reference and
	// tracker tag.
	Coercer Coercer
}

// ToRawEvents flattens the querystring, coerces it and wraps the result as
// exactly one RawEvent. The validator is unused: these sources carry no
// JSON body to validate.
func (a *CoercedAdapter) ToRawEvents(ctx context.Context, env *Envelope, _ schema.Validator) (RawEvents, error) {
	qs := FlattenQuery(env.Query)
	if len(qs) == 0 {
		return nil, failf(ErrEmptyInput,
			"querystring empty, expected at least one parameter for %s", env.API)
	}
	return NewRawEvents(eventFromParams(env, a.Coercer.Format(qs))), nil
}

// Compile-time checks.
var (
	_ Adapter = (*BatchAdapter)(nil)
	_ Adapter = (*CoercedAdapter)(nil)
)
