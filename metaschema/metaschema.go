// Package metaschema holds the fixed meta-schema that schema documents are
// checked against before compilation, and the validator that applies it.
//
// The meta-schema is reflected from the Go types below, so the keywords the
// compiler understands and the keywords the validator accepts cannot drift.
package metaschema

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
)

// SchemaID identifies the generated meta-schema.
const SchemaID = "https://github.com/reoring/dbgen/metaschema/document.json"

// Document is the top level of a database schema document.
type Document struct {
	Schema      string               `json:"$schema,omitempty"`
	ID          string               `json:"$id,omitempty"`
	Comment     string               `json:"$comment,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Type        string               `json:"type,omitempty" jsonschema:"enum=object"`
	Store       string               `json:"store,omitempty" jsonschema:"description=Backing format of the default store,minLength=1"`
	Include     []string             `json:"include,omitempty" jsonschema:"description=Extra headers included by the generated code"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Defs        map[string]*Property `json:"$defs,omitempty"`
	Definitions map[string]*Property `json:"definitions,omitempty"`
}

// Property describes one member of an object, an array item, a union
// variant or a shared definition.
type Property struct {
	Ref         string               `json:"$ref,omitempty"`
	Comment     string               `json:"$comment,omitempty"`
	Title       string               `json:"title,omitempty" jsonschema:"description=Union variant name"`
	Description string               `json:"description,omitempty"`
	Type        string               `json:"type,omitempty"`
	Store       string               `json:"store,omitempty" jsonschema:"description=Places this root property in a store of its own,minLength=1"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	OneOf       []*Property          `json:"oneOf,omitempty" jsonschema:"minItems=1"`
	Default     any                  `json:"default,omitempty"`
	Minimum     *float64             `json:"minimum,omitempty"`
	Maximum     *float64             `json:"maximum,omitempty"`
	Enum        []any                `json:"enum,omitempty" jsonschema:"minItems=1"`
	Alias       any                  `json:"alias,omitempty" jsonschema:"oneof_type=string;array,description=Alternate lookup names"`
	CType       string               `json:"ctype,omitempty" jsonschema:"description=Generated value type override,minLength=1"`
}

// Reflect builds the meta-schema.
func Reflect() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&Document{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "dbgen database schema"
	return s
}

// Generate renders the meta-schema as indented JSON.
func Generate() ([]byte, error) {
	data, err := json.MarshalIndent(Reflect(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode meta-schema: %w", err)
	}
	return append(data, '\n'), nil
}

// Validator checks raw documents against the meta-schema.
type Validator struct {
	schema *validator.Schema
}

// New compiles the meta-schema.
func New() (*Validator, error) {
	data, err := Generate()
	if err != nil {
		return nil, err
	}
	c := validator.NewCompiler()
	c.Draft = validator.Draft2020
	if err := c.AddResource(SchemaID, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load meta-schema: %w", err)
	}
	s, err := c.Compile(SchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile meta-schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate reports every structural problem in doc as a diag.Errors list.
func (v *Validator) Validate(doc *document.Document) error {
	err := v.schema.Validate(document.Plain(doc.Root))
	if err == nil {
		return nil
	}
	var ve *validator.ValidationError
	if !errors.As(err, &ve) {
		return diag.SchemaValidation(doc.File, "/", err.Error())
	}
	var errs diag.Errors
	leaves(ve, func(leaf *validator.ValidationError) {
		loc := leaf.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		errs = append(errs, diag.SchemaValidation(doc.File, loc, leaf.Message))
	})
	return errs
}

func leaves(ve *validator.ValidationError, fn func(*validator.ValidationError)) {
	if len(ve.Causes) == 0 {
		fn(ve)
		return
	}
	for _, c := range ve.Causes {
		leaves(c, fn)
	}
}
