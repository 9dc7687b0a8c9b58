package sink

import (
	"context"
	"sync"

	"github.com/relaypipe/normalize"
	"github.com/relaypipe/normalize/codec"
)

// Channel is an in-memory sink delivering messages to a Go channel.
// Primarily intended for testing and development.
//
// Example:
//
//	ch := sink.NewChannel(16)
//	defer ch.Close()
//
//	ch.Emit(ctx, events)
//	msg := <-ch.Messages()
type Channel struct {
	codec codec.Codec
	ch    chan Message

	mu     sync.Mutex
	closed bool
}

// ChannelOption configures Channel.
type ChannelOption func(*Channel)

// WithChannelCodec sets the outbound codec (default JSON).
func WithChannelCodec(c codec.Codec) ChannelOption {
	return func(s *Channel) {
		if c != nil {
			s.codec = c
		}
	}
}

// NewChannel creates an in-memory sink with the given buffer size.
func NewChannel(buffer int, opts ...ChannelOption) *Channel {
	s := &Channel{
		codec: codec.Default(),
		ch:    make(chan Message, buffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Messages returns the receive side of the sink.
// The channel is closed by Close.
func (s *Channel) Messages() <-chan Message {
	return s.ch
}

// Emit encodes and delivers every event, blocking on a full buffer until
// ctx is done.
func (s *Channel) Emit(ctx context.Context, events normalize.RawEvents) error {
	for _, event := range events {
		msg, err := Encode(s.codec, event)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		select {
		case s.ch <- msg:
			s.mu.Unlock()
		case <-ctx.Done():
			s.mu.Unlock()
			return ctx.Err()
		}
	}
	return nil
}

// Close closes the message channel. Emit after Close fails with ErrClosed.
func (s *Channel) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

// Compile-time check.
var _ Sink = (*Channel)(nil)
