package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classification sentinels.
// Every failure produced by this package wraps exactly one of these, so
// callers can classify outcomes with errors.Is while logging the
// human-readable messages carried by the *ValidationError itself.
var (
	// ErrEmptyInput indicates neither body nor querystring was populated.
	ErrEmptyInput = errors.New("empty input")

	// ErrContentTypeMismatch indicates the content type is unexpected,
	// or inconsistent with body presence.
	ErrContentTypeMismatch = errors.New("content type mismatch")

	// ErrBodyParse indicates the body is not well-formed JSON.
	ErrBodyParse = errors.New("body parse failure")

	// ErrSchemaViolation indicates the body does not conform to its
	// declared schema. Carries the validator's messages.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrFieldType indicates a field value was not a string where one was
	// required. Field type failures are accumulated across the whole batch
	// before being reported.
	ErrFieldType = errors.New("field type failure")

	// ErrEmptyBatch indicates a validated, well-formed body yielded zero
	// events. This is a contract anomaly on the source side, not user error.
	ErrEmptyBatch = errors.New("empty event batch")

	// ErrCoercion indicates a declared boolean/integer/datetime field failed
	// to parse. The default policy drops the field instead of failing the
	// request, so this sentinel only surfaces from adapters configured to
	// escalate coercion failures.
	ErrCoercion = errors.New("coercion failure")
)

// ValidationError is a failed normalization outcome: a non-empty ordered
// list of human-readable messages. Message order reflects encounter order
// and is stable for identical input, so callers can assert on it in tests
// and dedupe it in logs.
type ValidationError struct {
	kind     error
	Messages []string
}

// NewValidationError builds a ValidationError classified by kind (one of
// the package sentinel errors) with at least one message.
func NewValidationError(kind error, first string, rest ...string) *ValidationError {
	messages := make([]string, 0, 1+len(rest))
	messages = append(messages, first)
	return &ValidationError{kind: kind, Messages: append(messages, rest...)}
}

// Error joins the messages in order.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Unwrap exposes the classification sentinel for errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.kind
}

// Messages returns the ordered message list when err is a *ValidationError,
// or a single-element list holding err.Error() otherwise. Returns nil for a
// nil error.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Messages
	}
	return []string{err.Error()}
}

// failf builds a single-message fail-fast outcome.
func failf(kind error, format string, args ...any) *ValidationError {
	return NewValidationError(kind, fmt.Sprintf(format, args...))
}

// Collector accumulates independent validation failures before a single
// terminal decision. It is the accumulating counterpart to the fail-fast
// sentinel returns: record every failure encountered, then ask once whether
// the whole stage failed. The two disciplines are intentionally separate
// types so a short-circuiting check cannot quietly become an accumulating
// one, or the reverse.
//
// The zero value is ready to use. A Collector is not safe for concurrent
// use; it lives on one request's stack.
type Collector struct {
	messages []string
}

// Failf records one failure message.
func (c *Collector) Failf(format string, args ...any) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

// Failed reports whether any failure was recorded.
func (c *Collector) Failed() bool {
	return len(c.messages) > 0
}

// Len returns the number of recorded failures.
func (c *Collector) Len() int {
	return len(c.messages)
}

// Err returns the accumulated outcome classified by kind, or nil when
// nothing was recorded.
func (c *Collector) Err(kind error) error {
	if len(c.messages) == 0 {
		return nil
	}
	return &ValidationError{kind: kind, Messages: c.messages}
}
