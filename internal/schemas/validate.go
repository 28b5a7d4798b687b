// Package schemas checks caller-supplied profile JSON against an embedded JSON Schema.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ProfileSchemaName identifies the embedded profile schema in errors.
const ProfileSchemaName = "profile.schema.json"

const rootField = "(root)"

//go:embed profile.schema.json
var profileSchema []byte

var profileValidator = sync.OnceValues(func() (*Validator, error) {
	return NewValidator(ProfileSchemaName, profileSchema)
})

// FieldError is one schema violation.
type FieldError struct {
	Field   string // dotted path, "(root)" for the document itself
	Type    string // gojsonschema error type, e.g. "invalid_type"
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Schema string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("document does not match %s: %s", e.Schema, strings.Join(parts, "; "))
}

// CompileError reports a schema that could not be compiled.
type CompileError struct {
	Schema string
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile schema %s: %v", e.Schema, e.Cause)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Validator validates documents against one compiled schema.
type Validator struct {
	name   string
	schema *gojsonschema.Schema
}

// NewValidator compiles schema. name is only used in error messages.
func NewValidator(name string, schema []byte) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, &CompileError{Schema: name, Cause: err}
	}
	return &Validator{name: name, schema: compiled}, nil
}

// Validate returns a *ValidationError when data is malformed or violates the schema.
func (v *Validator) Validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		// gojsonschema fails before validating when the document is not JSON.
		return &ValidationError{
			Schema: v.name,
			Fields: []FieldError{{Field: rootField, Type: "malformed", Message: err.Error()}},
		}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: v.name, Fields: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = rootField
		}
		verr.Fields = append(verr.Fields, FieldError{
			Field:   field,
			Type:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return verr
}

// ValidateProfileJSON validates a serialized profile against the embedded profile schema.
func ValidateProfileJSON(data []byte) error {
	v, err := profileValidator()
	if err != nil {
		return err
	}
	return v.Validate(data)
}
