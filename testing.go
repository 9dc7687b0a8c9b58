package normalize

import (
	"context"
	"sync"

	"github.com/relaypipe/normalize/schema"
)

// StaticValidator is a schema.Validator for tests: it returns a fixed error
// for every call and records the references it was asked to validate.
//
// Example:
//
//	validator := &normalize.StaticValidator{}
//	events, err := adapter.ToRawEvents(ctx, env, validator)
type StaticValidator struct {
	// Err is returned from every Validate call. Leave nil for a validator
	// that accepts everything.
	Err error

	mu   sync.Mutex
	seen []schema.Ref
}

// Validate records ref and returns the configured error.
func (v *StaticValidator) Validate(ctx context.Context, document []byte, ref schema.Ref) error {
	v.mu.Lock()
	v.seen = append(v.seen, ref)
	v.mu.Unlock()
	return v.Err
}

// Seen returns a copy of the references validated so far, in call order.
func (v *StaticValidator) Seen() []schema.Ref {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]schema.Ref, len(v.seen))
	copy(out, v.seen)
	return out
}

// Compile-time check.
var _ schema.Validator = (*StaticValidator)(nil)

// TestEnvelope builds an envelope with sensible defaults for tests.
// Use the With* helpers to populate body and querystring.
func TestEnvelope(source string) *Envelope {
	return &Envelope{
		API:     "com.test/v1",
		Source:  source,
		Context: Context{"collector": "test"},
	}
}

// WithBody returns a copy of env carrying body and contentType.
func WithBody(env *Envelope, contentType, body string) *Envelope {
	out := *env
	out.Body = body
	out.ContentType = contentType
	return &out
}

// WithQuery returns a copy of env carrying the given querystring pairs.
func WithQuery(env *Envelope, pairs ...QueryParam) *Envelope {
	out := *env
	out.Query = append([]QueryParam(nil), pairs...)
	return &out
}
