package records

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists why a document does not match its schema
type ValidationError struct {
	SchemaID string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document does not match %s: %s", e.SchemaID, strings.Join(e.Problems, "; "))
}

// Validator validates JSON documents against a set of compiled schemas
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidatorFromFS creates a Validator from the json files in dir of fsys. Files in dir/refs
// are only used to resolve references.
func NewValidatorFromFS(fsys fs.FS, dir string) (*Validator, error) {
	readDir := func(dir string) ([]string, error) {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("cannot read dir %s: %w", dir, err)
		}
		var docs []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("cannot read file '%s': %w", e.Name(), err)
			}
			docs = append(docs, string(b))
		}
		return docs, nil
	}

	schemas, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	refs, err := readDir(path.Join(dir, "refs"))
	if err != nil {
		return nil, err
	}
	return NewValidator(schemas, refs)
}

// NewValidator compiles the top level schemas. Each needs an $id; references may only point
// into refs.
func NewValidator(schemas []string, refs []string) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for _, str := range schemas {
		var head struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal([]byte(str), &head); err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, str)
		}
		if head.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: '%s'", str)
		}

		sl := gojsonschema.NewSchemaLoader()
		for _, ref := range refs {
			if err := sl.AddSchemas(gojsonschema.NewStringLoader(ref)); err != nil {
				return nil, fmt.Errorf("cannot add ref: %w", err)
			}
		}
		compiled, err := sl.Compile(gojsonschema.NewStringLoader(str))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s: %w", head.ID, err)
		}
		v.schemas[head.ID] = compiled
	}
	return v, nil
}

// HasSchema returns true if schemaID is known
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemas[schemaID]
	return ok
}

// Validate checks doc against schemaID, returning a *ValidationError when it does not match
func (v *Validator) Validate(doc []byte, schemaID string) error {
	schema, ok := v.schemas[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("cannot validate with schema %s: %w", schemaID, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{SchemaID: schemaID}
	for _, e := range result.Errors() {
		verr.Problems = append(verr.Problems, e.String())
	}
	return verr
}
