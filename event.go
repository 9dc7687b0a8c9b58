package normalize

// RawEvent is the canonical output unit handed to the enrichment pipeline.
// One Envelope yields one or many RawEvents, never zero on success.
type RawEvent struct {
	// API is the logical endpoint of the originating envelope.
	API string

	// Parameters holds the event's normalized fields.
	Parameters Params

	// ContentType is the originating envelope's declared media type,
	// "" for querystring-only events.
	ContentType string

	// Source names the third-party source the event came from.
	Source string

	// Context is the envelope's transport metadata, carried unchanged.
	Context Context
}

// RawEvents is a sequence of at least one RawEvent. Build it with
// NewRawEvents so the non-empty invariant holds by construction; an empty
// success is a contract violation adapters must report as a failure instead.
type RawEvents []RawEvent

// NewRawEvents builds a RawEvents sequence from at least one event.
func NewRawEvents(first RawEvent, rest ...RawEvent) RawEvents {
	events := make(RawEvents, 0, 1+len(rest))
	events = append(events, first)
	return append(events, rest...)
}

// eventFromParams wraps one parameter map as a RawEvent sharing the
// envelope's api, source and context.
func eventFromParams(env *Envelope, params Params) RawEvent {
	return RawEvent{
		API:         env.API,
		Parameters:  params,
		ContentType: env.ContentType,
		Source:      env.Source,
		Context:     env.Context,
	}
}
