package sections

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrDataInvalid marks section data that does not match its type's schema.
var ErrDataInvalid = errors.New("sections: data does not match schema")

var (
	schemasOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// IsKnown reports whether sectionType has a typed payload.
func IsKnown(sectionType string) bool {
	return slices.Contains(KnownTypes, sectionType)
}

// Schema returns the raw JSON schema document for a known type.
func Schema(sectionType string) ([]byte, error) {
	if !IsKnown(sectionType) {
		return nil, fmt.Errorf("sections: unknown type %q", sectionType)
	}
	return schemaFS.ReadFile("schemas/" + sectionType + ".json")
}

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		out := make(map[string]*jsonschema.Schema, len(KnownTypes))
		for _, sectionType := range KnownTypes {
			doc, err := Schema(sectionType)
			if err != nil {
				compileErr = err
				return
			}
			name := sectionType + ".json"
			if err := compiler.AddResource(name, bytes.NewReader(doc)); err != nil {
				compileErr = fmt.Errorf("sections: add schema %s: %w", sectionType, err)
				return
			}
			schema, err := compiler.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("sections: compile schema %s: %w", sectionType, err)
				return
			}
			out[sectionType] = schema
		}
		compiled = out
	})
	return compiled, compileErr
}

func validateData(sectionType string, raw json.RawMessage) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	schema, ok := schemas[sectionType]
	if !ok {
		return nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrDataInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrDataInvalid, describe(err))
	}
	return nil
}

// describe flattens a jsonschema validation error into "location: message" pairs.
func describe(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	var parts []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := node.InstanceLocation
			if location == "" {
				location = "#"
			}
			parts = append(parts, location+": "+node.Message)
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return strings.Join(parts, "; ")
}
