package normalize

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/relaypipe/normalize/schema"
)

// Registry errors.
var (
	// ErrDuplicateAdapter is returned when a source already has an adapter.
	ErrDuplicateAdapter = errors.New("duplicate adapter for source")

	// ErrUnknownSource is returned when no adapter is registered for a source.
	ErrUnknownSource = errors.New("no adapter registered for source")
)

// Adapter turns one third-party source's inbound envelopes into canonical
// raw events.
//
// Implementations must be pure functions of their inputs plus the validator
// collaborator: no shared mutable state, safe for concurrent use across
// independent requests. A successful outcome always carries at least one
// event; an implementation that would succeed with zero events must surface
// that as a failure instead.
type Adapter interface {
	ToRawEvents(ctx context.Context, env *Envelope, validator schema.Validator) (RawEvents, error)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(ctx context.Context, env *Envelope, validator schema.Validator) (RawEvents, error)

// ToRawEvents calls f.
func (f AdapterFunc) ToRawEvents(ctx context.Context, env *Envelope, validator schema.Validator) (RawEvents, error) {
	return f(ctx, env, validator)
}

// Registry maps source names to their adapters. Each adapter owns its own
// schema reference, field plan and allowed content types as data, so adding
// a source is a registration, not another arm of a conditional.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds the adapter for a source name.
func (r *Registry) Register(source string, adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[source]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAdapter, source)
	}
	r.adapters[source] = adapter
	return nil
}

// Get returns the adapter registered for source.
func (r *Registry) Get(source string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[source]
	return adapter, ok
}

// Sources returns the registered source names, unordered.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := make([]string, 0, len(r.adapters))
	for source := range r.adapters {
		sources = append(sources, source)
	}
	return sources
}

// Normalize dispatches env to the adapter registered for env.Source.
func (r *Registry) Normalize(ctx context.Context, env *Envelope, validator schema.Validator) (RawEvents, error) {
	adapter, ok := r.Get(env.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, env.Source)
	}
	return adapter.ToRawEvents(ctx, env, validator)
}
