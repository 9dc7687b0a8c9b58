package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRef(t *testing.T) {
	t.Run("parses the canonical textual form", func(t *testing.T) {
		got, err := ParseRef("schema:com.acme/checkout_events/jsonschema/1-0-0")
		if err != nil {
			t.Fatalf("unexpected failure: %v", err)
		}
		want := Ref{Vendor: "com.acme", Name: "checkout_events", Format: "jsonschema", Version: "1-0-0"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ref mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("round-trips through String", func(t *testing.T) {
		in := "schema:com.acme/checkout_events/jsonschema/1-0-0"
		ref, err := ParseRef(in)
		if err != nil {
			t.Fatal(err)
		}
		if ref.String() != in {
			t.Errorf("String() = %q, want %q", ref.String(), in)
		}
	})

	t.Run("rejects malformed forms", func(t *testing.T) {
		for _, in := range []string{
			"",
			"com.acme/checkout_events/jsonschema/1-0-0", // missing prefix
			"schema:com.acme/checkout_events/jsonschema", // missing version
			"schema:com.acme/checkout_events/jsonschema/1-0-0/extra",
			"schema:com.acme//jsonschema/1-0-0", // empty component
		} {
			if _, err := ParseRef(in); !errors.Is(err, ErrMalformedRef) {
				t.Errorf("ParseRef(%q) = %v, want ErrMalformedRef", in, err)
			}
		}
	})

	t.Run("MustParseRef panics on malformed input", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		MustParseRef("not a ref")
	})
}

func TestRefIsZero(t *testing.T) {
	if !(Ref{}).IsZero() {
		t.Error("zero ref not reported as zero")
	}
	if MustParseRef("schema:a/b/c/d").IsZero() {
		t.Error("populated ref reported as zero")
	}
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	ref := MustParseRef("schema:com.acme/checkout_events/jsonschema/1-0-0")

	t.Run("fetch returns what register stored", func(t *testing.T) {
		source := NewMemorySource()
		defer source.Close()

		if err := source.Register(ctx, ref, []byte(`{"type":"array"}`)); err != nil {
			t.Fatal(err)
		}
		got, err := source.Fetch(ctx, ref)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != `{"type":"array"}` {
			t.Errorf("fetched %q", got)
		}

		// Returned documents must be isolated from the stored copy.
		got[0] = 'X'
		again, err := source.Fetch(ctx, ref)
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != `{"type":"array"}` {
			t.Errorf("stored document mutated: %q", again)
		}
	})

	t.Run("unknown refs are not found", func(t *testing.T) {
		source := NewMemorySource()
		defer source.Close()
		if _, err := source.Fetch(ctx, ref); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects empty documents and zero refs", func(t *testing.T) {
		source := NewMemorySource()
		defer source.Close()
		if err := source.Register(ctx, ref, nil); !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("expected ErrEmptyDocument, got %v", err)
		}
		if err := source.Register(ctx, Ref{}, []byte("{}")); !errors.Is(err, ErrMalformedRef) {
			t.Errorf("expected ErrMalformedRef, got %v", err)
		}
	})

	t.Run("closed source fails everything", func(t *testing.T) {
		source := NewMemorySource()
		source.Close()
		if _, err := source.Fetch(ctx, ref); !errors.Is(err, ErrSourceClosed) {
			t.Errorf("Fetch after Close = %v", err)
		}
		if err := source.Register(ctx, ref, []byte("{}")); !errors.Is(err, ErrSourceClosed) {
			t.Errorf("Register after Close = %v", err)
		}
	})
}

// eventBatchSchema requires an array of objects whose values are all strings,
// the shape batch sources deliver.
const eventBatchSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"additionalProperties": {"type": "string"}
	}
}`

func TestJSONValidator(t *testing.T) {
	ctx := context.Background()
	ref := MustParseRef("schema:com.acme/checkout_events/jsonschema/1-0-0")

	newValidator := func(t *testing.T) *JSONValidator {
		t.Helper()
		source := NewMemorySource()
		t.Cleanup(func() { source.Close() })
		if err := source.Register(ctx, ref, []byte(eventBatchSchema)); err != nil {
			t.Fatal(err)
		}
		return NewJSONValidator(source)
	}

	t.Run("conformant documents pass", func(t *testing.T) {
		validator := newValidator(t)
		if err := validator.Validate(ctx, []byte(`[{"a":"1"},{"b":"2"}]`), ref); err != nil {
			t.Errorf("unexpected failure: %v", err)
		}
	})

	t.Run("non-conformant documents carry structured causes", func(t *testing.T) {
		validator := newValidator(t)
		err := validator.Validate(ctx, []byte(`[{"a":1}]`), ref)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		if verr.Ref != ref {
			t.Errorf("cause ref = %s, want %s", verr.Ref, ref)
		}
		if len(verr.Causes) == 0 {
			t.Error("no causes reported")
		}
	})

	t.Run("unfetchable refs are reported, not conflated with non-conformance", func(t *testing.T) {
		validator := NewJSONValidator(NewMemorySource())
		err := validator.Validate(ctx, []byte(`[]`), ref)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			t.Error("source failure reported as document non-conformance")
		}
	})

	t.Run("compiled schemas are reused", func(t *testing.T) {
		source := NewMemorySource()
		if err := source.Register(ctx, ref, []byte(eventBatchSchema)); err != nil {
			t.Fatal(err)
		}
		validator := NewJSONValidator(source)
		if err := validator.Validate(ctx, []byte(`[]`), ref); err != nil {
			t.Fatal(err)
		}
		// The source is gone, but the compiled contract is cached.
		source.Close()
		if err := validator.Validate(ctx, []byte(`[{"a":"1"}]`), ref); err != nil {
			t.Errorf("cached contract not reused: %v", err)
		}
	})

	t.Run("undecodable documents fail the check itself", func(t *testing.T) {
		validator := newValidator(t)
		err := validator.Validate(ctx, []byte(`{`), ref)
		if err == nil {
			t.Fatal("expected failure")
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			t.Error("decode failure reported as document non-conformance")
		}
	})
}
