package sink

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/relaypipe/normalize"
)

// Limited wraps a sink with a local token-bucket rate limit
// (golang.org/x/time/rate), one token per event. Emit blocks until the
// whole batch is admitted or ctx is done, so a burst of large batches
// backpressures the caller instead of the broker.
//
// The limit is per instance. For global limits across collector instances,
// put the limiter in front of the collector, not here.
type Limited struct {
	next    Sink
	limiter *rate.Limiter
}

// NewLimited wraps next with an eventsPerSecond limit and the given burst.
func NewLimited(next Sink, eventsPerSecond float64, burst int) *Limited {
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst),
	}
}

// Emit waits for capacity for the whole batch, then delegates.
func (s *Limited) Emit(ctx context.Context, events normalize.RawEvents) error {
	if err := s.limiter.WaitN(ctx, len(events)); err != nil {
		return err
	}
	return s.next.Emit(ctx, events)
}

// Close closes the wrapped sink.
func (s *Limited) Close() error {
	return s.next.Close()
}

// Compile-time check.
var _ Sink = (*Limited)(nil)
