package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("dispatch: request validation failed")

// ValidationError reports a request not conforming to its schema.
type ValidationError struct {
	Request string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dispatch: invalid %s: %v", e.Request, e.Err)
}

// Unwrap returns ErrValidation and the underlying schema error.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// Schemas validates requests against JSON Schema definitions registered per
// request type. Requests are encoded with encoding/json before validation,
// so schemas describe the JSON form of a request.
//
// Schemas is safe for concurrent use.
type Schemas struct {
	mu       sync.RWMutex
	compiler *jschema.Compiler
	schemas  map[string]*schemaEntry
}

type schemaEntry struct {
	compiled *jschema.Schema
	raw      json.RawMessage
}

// NewSchemas creates an empty schema registry.
func NewSchemas() *Schemas {
	return &Schemas{
		compiler: jschema.NewCompiler(),
		schemas:  make(map[string]*schemaEntry),
	}
}

// Register compiles schemaJSON and associates it with the type of req.
//
//	schemas.Register(CreateOrder{}, `{"type":"object","required":["id"]}`)
func (s *Schemas) Register(req any, schemaJSON string) error {
	name := RequestName(req)
	uri := "urn:dispatch:schema:" + name

	doc, err := jschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("jsonschema: parsing schema for %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.compiler.AddResource(uri, doc); err != nil {
		return fmt.Errorf("jsonschema: adding resource for %s: %w", name, err)
	}
	compiled, err := s.compiler.Compile(uri)
	if err != nil {
		return fmt.Errorf("jsonschema: compiling schema for %s: %w", name, err)
	}
	s.schemas[name] = &schemaEntry{compiled: compiled, raw: json.RawMessage(schemaJSON)}
	return nil
}

// Validate checks req against the schema registered for its type. Requests
// without a schema pass.
func (s *Schemas) Validate(req any) error {
	name := RequestName(req)

	s.mu.RLock()
	e, ok := s.schemas[name]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	data, err := json.Marshal(req)
	if err != nil {
		return &ValidationError{Request: name, Err: err}
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ValidationError{Request: name, Err: err}
	}
	if err := e.compiled.Validate(inst); err != nil {
		return &ValidationError{Request: name, Err: err}
	}
	return nil
}

// Schema returns the raw schema registered for the request name, or nil.
func (s *Schemas) Schema(name string) json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.schemas[name]; ok {
		return e.raw
	}
	return nil
}

// Catalog returns a JSON Schema document holding every registered schema
// under $defs, keyed by request name.
func (s *Schemas) Catalog() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make(map[string]json.RawMessage, len(s.schemas))
	for name, e := range s.schemas {
		defs[name] = e.raw
	}

	doc := struct {
		Schema string                     `json:"$schema"`
		Defs   map[string]json.RawMessage `json:"$defs"`
	}{
		Schema: "https://json-schema.org/draft/2020-12/schema",
		Defs:   defs,
	}
	data, _ := json.Marshal(doc)
	return data
}
