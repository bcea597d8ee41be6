package validate

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// jsonSchema adapts a compiled JSON Schema document to the Schema
// interface. Values are round-tripped through encoding/json before
// validation since the jsonschema package validates against the generic
// any/map/slice tree JSON decodes into, not arbitrary Go structs.
type jsonSchema struct {
	compiled *jsonschema.Schema
}

// JSONSchema compiles schemaJSON (a JSON Schema document) into a Schema.
func JSONSchema(name string, schemaJSON []byte) (Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, jsonDecode(schemaJSON)); err != nil {
		return nil, fmt.Errorf("validate: add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("validate: compile schema: %w", err)
	}
	return &jsonSchema{compiled: compiled}, nil
}

func jsonDecode(b []byte) any {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	return v
}

func (s *jsonSchema) Validate(value any) (any, []Issue, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, nil, fmt.Errorf("validate: marshal value for schema check: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, nil, err
	}

	if err := s.compiled.Validate(tree); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, nil, err
		}
		return nil, flattenIssues(ve), nil
	}
	return value, nil, nil
}

func flattenIssues(ve *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, Issue{Message: e.Message, Path: e.InstanceLocation})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return issues
}
