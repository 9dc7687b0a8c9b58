package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONValidator validates documents against JSON Schema contracts fetched
// from a Source. Compiled schemas are cached per reference: a contract
// revision is immutable, so a ref compiles at most once per validator.
//
// Example:
//
//	validator := schema.NewJSONValidator(source)
//	if err := validator.Validate(ctx, body, ref); err != nil {
//	    var verr *schema.ValidationError
//	    if errors.As(err, &verr) {
//	        // verr.Causes holds one message per violated constraint
//	    }
//	}
type JSONValidator struct {
	source Source

	mu    sync.RWMutex
	cache map[Ref]*jsonschema.Schema
}

// NewJSONValidator creates a validator that fetches contract documents
// from source.
func NewJSONValidator(source Source) *JSONValidator {
	return &JSONValidator{
		source: source,
		cache:  make(map[Ref]*jsonschema.Schema),
	}
}

// Validate checks document against the JSON Schema contract ref names.
// Returns *ValidationError on non-conformance, ErrNotFound (wrapped) when
// the source holds no document for ref.
func (v *JSONValidator) Validate(ctx context.Context, document []byte, ref Ref) error {
	compiled, err := v.schemaFor(ctx, ref)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(document, &doc); err != nil {
		return fmt.Errorf("decode document for %s: %w", ref, err)
	}

	if err := compiled.Validate(doc); err != nil {
		var jerr *jsonschema.ValidationError
		if errors.As(err, &jerr) {
			return &ValidationError{Ref: ref, Causes: leafCauses(jerr)}
		}
		return &ValidationError{Ref: ref, Causes: []string{err.Error()}}
	}
	return nil
}

// schemaFor returns the compiled schema for ref, compiling and caching it
// on first use.
func (v *JSONValidator) schemaFor(ctx context.Context, ref Ref) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.cache[ref]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	document, err := v.source.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(ref.String(), bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	compiled, err = compiler.Compile(ref.String())
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", ref, err)
	}

	v.mu.Lock()
	v.cache[ref] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// leafCauses flattens the validation error tree into ordered leaf messages.
// Leaves carry the actually violated constraints; interior nodes only
// restate that children failed.
func leafCauses(err *jsonschema.ValidationError) []string {
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}

// Compile-time check.
var _ Validator = (*JSONValidator)(nil)
