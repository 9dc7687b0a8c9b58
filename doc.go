// Package normalize turns inbound third-party webhook and tracking payloads
// into canonical raw events consumed by a downstream enrichment pipeline.
//
// Every third-party source has its own wire shape: some deliver one event per
// request through the querystring, some deliver batches of JSON events in the
// body, and some need field-level type coercion (booleans, integers,
// timestamps) to reconstruct a structured event. An Adapter owns the shape of
// one source and turns an Envelope into one or more RawEvents:
//
//	reg := normalize.NewRegistry()
//	reg.Register("acme", &normalize.BatchAdapter{
//	    SchemaRef:    schema.MustParseRef("schema:com.acme/checkout_events/jsonschema/1-0-0"),
//	    ContentTypes: []string{"application/json"},
//	})
//
//	events, err := reg.Normalize(ctx, env, validator)
//
// Two validation disciplines are used and deliberately kept apart:
//   - Precondition checks (body/content-type agreement, allowed content
//     types) fail fast: the first violation is reported alone.
//   - Field extraction inside a validated JSON body accumulates: every
//     failing field across every event is collected before the batch is
//     rejected. A single bad field never hides the others.
//
// Failures are ordinary values. Every failure path returns a
// *ValidationError carrying a non-empty, stable, human-readable message
// list, classified by one of the package sentinel errors for errors.Is.
// Nothing panics across the package boundary and nothing retries: a slow or
// failing schema validator surfaces as a normal validation failure.
//
// The core is side-effect free and safe for concurrent use across requests.
// Collaborators are explicit: the schema validator is a parameter on every
// call, never package state. See the schema, codec and sink subpackages for
// the collaborators this core is wired to in a collector process.
package normalize
