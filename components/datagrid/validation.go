package datagrid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RowValidator checks a row against its grid's column descriptors before it
// is written.
type RowValidator interface {
	Validate(def GridDefinition, row Row) error
}

// JSONSchemaValidator compiles a JSON schema per grid from its columns and
// validates rows against it. Compiled schemas are cached by grid code.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidateRow checks required columns and value types for a single row.
func ValidateRow(columns []Column, row Row) error {
	return NewJSONSchemaValidator().Validate(GridDefinition{Columns: columns}, row)
}

// Validate returns a *ValidationError describing every offending field.
func (v *JSONSchemaValidator) Validate(def GridDefinition, row Row) error {
	if fields := missingRequired(def.Columns, row); len(fields) > 0 {
		return newValidationError(fields...)
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	var payload map[string]any
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("datagrid: marshal row for %s: %w", def.Code, err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("datagrid: normalize row for %s: %w", def.Code, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := schema.Validate(payload); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ValidationError{Fields: schemaFieldErrors(verr), cause: err}
		}
		return fmt.Errorf("datagrid: row for %s failed validation: %w", def.Code, err)
	}
	return nil
}

// InvalidateSchema drops a cached schema, used when a grid is re-registered.
func (v *JSONSchemaValidator) InvalidateSchema(code string) {
	v.mu.Lock()
	delete(v.compiled, code)
	v.mu.Unlock()
}

func (v *JSONSchemaValidator) schemaFor(def GridDefinition) (*jsonschema.Schema, error) {
	if def.Code != "" {
		v.mu.RLock()
		schema, ok := v.compiled[def.Code]
		v.mu.RUnlock()
		if ok {
			return schema, nil
		}
	}
	data, err := json.Marshal(RowSchema(def.Columns))
	if err != nil {
		return nil, fmt.Errorf("datagrid: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := "grid.json"
	if def.Code != "" {
		name = def.Code + ".json"
	}
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("datagrid: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("datagrid: compile schema %s: %w", def.Code, err)
	}
	if def.Code != "" {
		v.mu.Lock()
		v.compiled[def.Code] = compiled
		v.mu.Unlock()
	}
	return compiled, nil
}

// RowSchema derives a JSON schema document from column descriptors. Undeclared
// fields are allowed.
func RowSchema(columns []Column) map[string]any {
	properties := make(map[string]any, len(columns))
	for _, col := range columns {
		if col.Key == IDField {
			properties[col.Key] = map[string]any{"type": "string", "minLength": 1}
			continue
		}
		prop := map[string]any{}
		switch col.Type() {
		case ValueNumber:
			prop["type"] = []string{"number", "null"}
		case ValueBoolean:
			prop["type"] = []string{"boolean", "null"}
		default:
			prop["type"] = []string{"string", "null"}
		}
		if len(col.Options) > 0 && col.Type() == ValueText {
			values := make([]any, 0, len(col.Options)+2)
			for _, opt := range col.Options {
				values = append(values, opt.Value)
			}
			if !col.Required {
				values = append(values, "", nil)
			}
			prop["enum"] = values
		}
		properties[col.Key] = prop
	}
	return map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": properties,
	}
}

func missingRequired(columns []Column, row Row) []FieldError {
	var fields []FieldError
	for _, col := range columns {
		if !col.Required {
			continue
		}
		value, ok := row[col.Key]
		if !ok || value == nil || strings.TrimSpace(stringify(value)) == "" {
			fields = append(fields, FieldError{Field: col.Key, Message: "is required"})
		}
	}
	return fields
}

// schemaFieldErrors flattens the leaf causes of a schema failure.
func schemaFieldErrors(verr *jsonschema.ValidationError) []FieldError {
	var fields []FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			fields = append(fields, FieldError{
				Field:   strings.TrimPrefix(e.InstanceLocation, "/"),
				Message: e.Message,
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	slices.SortStableFunc(fields, func(a, b FieldError) int { return strings.Compare(a.Field, b.Field) })
	return fields
}

type noopRowValidator struct{}

func (noopRowValidator) Validate(GridDefinition, Row) error { return nil }
