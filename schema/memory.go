package schema

import (
	"context"
	"fmt"
	"sync"
)

// MemorySource stores contract documents in memory. Primarily intended for
// testing and development; documents are lost on restart.
//
// Example:
//
//	source := schema.NewMemorySource()
//	defer source.Close()
//
//	source.Register(ctx, ref, document)
//	validator := schema.NewJSONValidator(source)
type MemorySource struct {
	mu     sync.RWMutex
	docs   map[Ref][]byte
	closed bool
}

// NewMemorySource creates a new in-memory schema source.
func NewMemorySource() *MemorySource {
	return &MemorySource{docs: make(map[Ref][]byte)}
}

// Fetch returns the document stored for ref.
func (s *MemorySource) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrSourceClosed
	}
	document, ok := s.docs[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	// Copy so callers cannot mutate the stored document.
	out := make([]byte, len(document))
	copy(out, document)
	return out, nil
}

// Register stores document for ref, replacing any previous revision.
func (s *MemorySource) Register(ctx context.Context, ref Ref, document []byte) error {
	if ref.IsZero() {
		return fmt.Errorf("%w: empty ref", ErrMalformedRef)
	}
	if len(document) == 0 {
		return ErrEmptyDocument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSourceClosed
	}
	stored := make([]byte, len(document))
	copy(stored, document)
	s.docs[ref] = stored
	return nil
}

// Close marks the source closed. Subsequent calls fail with ErrSourceClosed.
func (s *MemorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Compile-time check.
var _ Source = (*MemorySource)(nil)
