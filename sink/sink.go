// Package sink hands normalized canonical events to the downstream
// enrichment pipeline.
//
// Sinks are fire-and-forget emitters: delivery guarantees, retries and
// ordering belong to the caller and the broker, not to this package. Three
// emitters ship here — Channel (in-memory, testing and development), Kafka
// and NATS — plus a Limited wrapper for local rate limiting.
//
//	producer, _ := sarama.NewSyncProducerFromClient(client)
//	k, _ := sink.NewKafka(producer, "raw-events")
//	defer k.Close()
//
//	events, err := reg.Normalize(ctx, env, validator)
//	if err == nil {
//	    err = k.Emit(ctx, events)
//	}
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/relaypipe/normalize"
	"github.com/relaypipe/normalize/codec"
)

// Emitter errors.
var (
	// ErrClosed is returned when emitting on a closed sink.
	ErrClosed = errors.New("sink is closed")

	// ErrProducerRequired is returned when a Kafka sink is built without
	// a producer.
	ErrProducerRequired = errors.New("kafka producer is required")

	// ErrConnRequired is returned when a NATS sink is built without a
	// connection.
	ErrConnRequired = errors.New("nats connection is required")
)

// Message is one outbound canonical event, encoded and addressed.
type Message struct {
	// ID uniquely identifies this emission.
	ID string

	// Source and API identify where the event came from.
	Source string
	API    string

	// ContentType is the codec's MIME type for Body.
	ContentType string

	// Body is the encoded RawEvent.
	Body []byte

	// Context is the event's transport metadata, carried unchanged.
	Context normalize.Context
}

// Sink emits canonical events downstream.
type Sink interface {
	// Emit sends every event in the sequence. Implementations may block
	// on the broker; they must honor ctx.
	Emit(ctx context.Context, events normalize.RawEvents) error

	// Close releases resources held by the sink.
	Close() error
}

// Encode packages one canonical event as an outbound message using c.
func Encode(c codec.Codec, event normalize.RawEvent) (Message, error) {
	body, err := c.Encode(event)
	if err != nil {
		return Message{}, fmt.Errorf("encode event: %w", err)
	}
	return Message{
		ID:          uuid.New().String(),
		Source:      event.Source,
		API:         event.API,
		ContentType: c.ContentType(),
		Body:        body,
		Context:     event.Context,
	}, nil
}
