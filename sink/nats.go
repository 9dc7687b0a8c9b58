package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/relaypipe/normalize"
	"github.com/relaypipe/normalize/codec"
)

// NATS emits canonical events to a NATS subject with at-most-once
// semantics: messages published while no consumer listens are lost. Use a
// JetStream-backed subject when the pipeline needs persistence.
//
// The connection is owned by the caller; Close flushes but does not
// disconnect.
type NATS struct {
	conn    *nats.Conn
	subject string
	codec   codec.Codec
	logger  *slog.Logger
	closed  int32
}

// NATSOption configures NATS.
type NATSOption func(*NATS)

// WithNATSCodec sets the outbound codec (default JSON).
func WithNATSCodec(c codec.Codec) NATSOption {
	return func(s *NATS) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithNATSLogger sets the logger (default slog.Default()).
func WithNATSLogger(logger *slog.Logger) NATSOption {
	return func(s *NATS) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewNATS creates a NATS sink publishing to subject.
func NewNATS(conn *nats.Conn, subject string, opts ...NATSOption) (*NATS, error) {
	if conn == nil {
		return nil, ErrConnRequired
	}
	s := &NATS{
		conn:    conn,
		subject: subject,
		codec:   codec.Default(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Emit publishes every event to the subject.
func (s *NATS) Emit(ctx context.Context, events normalize.RawEvents) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrClosed
	}

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := Encode(s.codec, event)
		if err != nil {
			return err
		}

		out := nats.NewMsg(s.subject)
		out.Data = msg.Body
		out.Header.Set("id", msg.ID)
		out.Header.Set("source", msg.Source)
		out.Header.Set("api", msg.API)
		out.Header.Set("content-type", msg.ContentType)

		if err := s.conn.PublishMsg(out); err != nil {
			s.logger.Error("nats emit failed",
				"subject", s.subject,
				"error", err,
			)
			return fmt.Errorf("emit to nats subject %s: %w", s.subject, err)
		}
	}
	return nil
}

// Close flushes buffered publishes. The connection stays open for the
// owning caller.
func (s *NATS) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	return s.conn.Flush()
}

// Compile-time check.
var _ Sink = (*NATS)(nil)
