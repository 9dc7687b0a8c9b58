// Package codec serializes canonical events for hand-off to the downstream
// pipeline.
//
// Codecs encode at the application level, separate from whatever framing the
// emitting broker adds. The registry maps MIME content types to codecs so an
// emitter can be configured by name:
//
//	// JSON (default)
//	sink.NewChannel(16)
//
//	// MessagePack
//	sink.NewChannel(16, sink.WithChannelCodec(codec.MsgPack{}))
package codec

import "sync"

// Codec encodes and decodes event payload data.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode serializes the payload to bytes.
	Encode(v any) ([]byte, error)

	// Decode deserializes bytes into the target, which must be a pointer.
	Decode(data []byte, v any) error

	// ContentType returns the MIME type (e.g. "application/json").
	ContentType() string
}

// Default returns the default codec (JSON).
func Default() Codec {
	return JSON{}
}

var (
	mu       sync.RWMutex
	registry = map[string]Codec{
		"application/json": JSON{},
	}
)

// Register adds a codec to the global registry.
// Codecs are looked up by their ContentType().
func Register(codec Codec) {
	mu.Lock()
	defer mu.Unlock()
	registry[codec.ContentType()] = codec
}

// Get retrieves a codec by content type from the global registry.
func Get(contentType string) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[contentType]
	return c, ok
}

// MustGet retrieves a codec by content type, falling back to the default
// JSON codec when the content type is unknown.
func MustGet(contentType string) Codec {
	if c, ok := Get(contentType); ok {
		return c
	}
	return JSON{}
}
