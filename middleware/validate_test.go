package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

const createToolSchema = `{
	"type": "object",
	"properties": {
		"Name": {"type": "string", "minLength": 1}
	},
	"required": ["Name"]
}`

type untyped struct{}

func newTestSchemas(t *testing.T) *Schemas {
	t.Helper()
	s := NewSchemas()
	if err := s.Register(createTool{}, createToolSchema); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return s
}

func TestValidatePasses(t *testing.T) {
	b := Validate[createTool, int](newTestSchemas(t))

	called := false
	res, err := b(context.Background(), createTool{Name: "hammer"}, func() (int, error) {
		called = true
		return 1, nil
	})

	if err != nil || res != 1 || !called {
		t.Errorf("Expected handler to run, got (%d, %v, called=%v)", res, err, called)
	}
}

func TestValidateRejects(t *testing.T) {
	b := Validate[createTool, int](newTestSchemas(t))

	called := false
	_, err := b(context.Background(), createTool{}, func() (int, error) {
		called = true
		return 1, nil
	})

	if called {
		t.Error("Expected handler not to run")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Request != "middleware.createTool" {
		t.Errorf("Expected *ValidationError for middleware.createTool, got %v", err)
	}
}

func TestValidateWithoutSchema(t *testing.T) {
	b := Validate[untyped, int](newTestSchemas(t))

	_, err := b(context.Background(), untyped{}, func() (int, error) { return 0, nil })
	if err != nil {
		t.Errorf("Expected requests without schema to pass, got %v", err)
	}
}

func TestSchemasRegisterInvalid(t *testing.T) {
	s := NewSchemas()
	if err := s.Register(createTool{}, `{not json`); err == nil {
		t.Error("Expected error for malformed schema")
	}
}

func TestSchemasCatalog(t *testing.T) {
	s := newTestSchemas(t)

	if s.Schema("middleware.createTool") == nil {
		t.Error("Expected raw schema for middleware.createTool")
	}
	if s.Schema("unknown") != nil {
		t.Error("Expected nil for unknown request")
	}

	var doc struct {
		Schema string                     `json:"$schema"`
		Defs   map[string]json.RawMessage `json:"$defs"`
	}
	if err := json.Unmarshal(s.Catalog(), &doc); err != nil {
		t.Fatalf("Catalog is not valid JSON: %v", err)
	}
	if _, ok := doc.Defs["middleware.createTool"]; !ok {
		t.Errorf("Expected catalog to contain middleware.createTool, got %v", doc.Defs)
	}
}
