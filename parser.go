package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/relaypipe/normalize/schema"
)

// BodyParser merges querystring- and body-derived parameters for sources
// that deliver one or more JSON events per request.
//
// A request may carry a populated querystring, a schema-validated JSON body
// holding one or more events, or both merged together. Preconditions over
// (body present, content type present) fail fast; once inside a validated
// body, every field-extraction failure across every event is accumulated
// before the batch is rejected.
type BodyParser struct {
	// SchemaRef names the structural contract the body must satisfy.
	SchemaRef schema.Ref

	// ContentTypes lists the media types accepted for the body.
	ContentTypes []string
}

// Parse turns env into one parameter map per logical event.
//
// The precondition decision over (body present, content type present) is
// exhaustive; exactly one branch fires:
//   - body absent and querystring empty: ErrEmptyInput
//   - content type present but not in ContentTypes: ErrContentTypeMismatch
//   - body present without content type: ErrContentTypeMismatch
//   - content type present without body: ErrContentTypeMismatch
//   - body and content type both absent: the querystring is the event
//   - body present, content type allowed: parse, validate and merge
//
// On the merge path the body-derived map is the base and querystring values
// overwrite on key collision. A schema violation aborts before field
// extraction begins; schema errors and field errors are never merged into
// one report.
func (p *BodyParser) Parse(ctx context.Context, env *Envelope, validator schema.Validator) ([]Params, error) {
	qs := FlattenQuery(env.Query)

	switch {
	case env.Body == "" && len(qs) == 0:
		return nil, failf(ErrEmptyInput,
			"body and querystring parameters empty, expected at least one populated for %s", env.API)
	case env.ContentType != "" && !p.allowed(env.ContentType):
		return nil, failf(ErrContentTypeMismatch,
			"content type of %s provided, expected one of %s for %s",
			env.ContentType, strings.Join(p.ContentTypes, ", "), env.API)
	case env.Body != "" && env.ContentType == "":
		return nil, failf(ErrContentTypeMismatch,
			"request body provided but content type empty, expected one of %s for %s",
			strings.Join(p.ContentTypes, ", "), env.API)
	case env.Body == "" && env.ContentType != "":
		return nil, failf(ErrContentTypeMismatch,
			"content type of %s provided but request body empty for %s", env.ContentType, env.API)
	case env.Body == "":
		// Pure querystring event.
		return []Params{qs}, nil
	}

	return p.parseBody(ctx, env, qs, validator)
}

// parseBody handles the validated-JSON-body path: syntax check and schema
// validation fail fast, field extraction accumulates.
func (p *BodyParser) parseBody(ctx context.Context, env *Envelope, qs Params, validator schema.Validator) ([]Params, error) {
	raw := []byte(env.Body)

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, failf(ErrBodyParse, "could not parse body of %s as JSON: %v", env.API, err)
	}

	if err := validator.Validate(ctx, raw, p.SchemaRef); err != nil {
		return nil, schemaFailure(err, p.SchemaRef)
	}

	var events []map[string]any
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, failf(ErrSchemaViolation,
			"validated body of %s is not an array of event objects: %v", env.API, err)
	}

	// Accumulate every field failure across every event before deciding.
	// Map iteration order is random, so fields are visited sorted to keep
	// the failure list stable for identical input.
	var failures Collector
	merged := make([]Params, 0, len(events))
	for i, fields := range events {
		params := make(Params, len(fields))
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			switch value := fields[key].(type) {
			case string:
				params[key] = value
			case nil:
				failures.Failf("event %d: value for key %s is a null string", i+1, key)
			default:
				failures.Failf("event %d: value for key %s is not a string", i+1, key)
			}
		}
		merged = append(merged, params.Merge(qs))
	}

	// Partial success is not reported: one field anomaly rejects the batch.
	if err := failures.Err(ErrFieldType); err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, failf(ErrEmptyBatch,
			"event list for %s is empty, expected at least one event; this indicates a schema contract change",
			p.SchemaRef)
	}
	return merged, nil
}

func (p *BodyParser) allowed(contentType string) bool {
	for _, ct := range p.ContentTypes {
		if ct == contentType {
			return true
		}
	}
	return false
}

// schemaFailure converts a validator error into the fail-fast schema
// violation outcome, preserving the validator's structured causes when
// available. A validator that could not run at all is reported the same
// way: at this boundary both mean "could not produce a raw event".
func schemaFailure(err error, ref schema.Ref) *ValidationError {
	var verr *schema.ValidationError
	if errors.As(err, &verr) && len(verr.Causes) > 0 {
		return NewValidationError(ErrSchemaViolation, verr.Causes[0], verr.Causes[1:]...)
	}
	return failf(ErrSchemaViolation, "schema validation for %s failed: %v", ref, err)
}
