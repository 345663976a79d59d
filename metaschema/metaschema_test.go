package metaschema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
	"github.com/reoring/dbgen/metaschema"
)

func TestGenerate(t *testing.T) {
	data, err := metaschema.Generate()
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("meta-schema is not JSON: %v", err)
	}
	if m["$id"] != metaschema.SchemaID {
		t.Fatalf("$id = %v", m["$id"])
	}
	for _, key := range []string{`"properties"`, `"oneOf"`, `"ctype"`, `"alias"`, `"store"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("meta-schema lacks %s", key)
		}
	}
}

func validate(t *testing.T, v *metaschema.Validator, src string) error {
	t.Helper()
	doc, err := document.Parse("test", "test.json", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return v.Validate(doc)
}

func TestValidator_AcceptsSchemas(t *testing.T) {
	v, err := metaschema.New()
	if err != nil {
		t.Fatal(err)
	}
	valid := []string{
		`{}`,
		`{"$schema":"http://json-schema.org/draft-07/schema","type":"object","properties":{"x":{"type":"integer","minimum":0,"maximum":300}}}`,
		`{"$defs":{"C":{"type":"object","properties":{}}},"properties":{"c":{"$ref":"#/$defs/C","alias":["old"]}}}`,
		`{"properties":{"u":{"oneOf":[{"title":"A","type":"object","properties":{}}]}}}`,
		`{"properties":{"l":{"type":"array","items":{"type":"string"},"default":["a"]}}}`,
	}
	for _, src := range valid {
		if err := validate(t, v, src); err != nil {
			t.Errorf("%s: %v", src, err)
		}
	}
}

func TestValidator_RejectsMalformed(t *testing.T) {
	v, err := metaschema.New()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name, src, path string
	}{
		{"properties not object", `{"properties":[1]}`, "/properties"},
		{"minimum not number", `{"properties":{"x":{"type":"integer","minimum":"0"}}}`, "/properties/x/minimum"},
		{"alias wrong type", `{"properties":{"x":{"type":"integer","alias":5}}}`, "/properties/x/alias"},
		{"empty oneOf", `{"properties":{"u":{"oneOf":[]}}}`, "/properties/u/oneOf"},
		{"include not list", `{"include":"x.h"}`, "/include"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, v, tt.src)
			if !errors.Is(err, diag.ErrSchemaValidation) {
				t.Fatalf("expected schema validation error, got %v", err)
			}
			var list diag.Errors
			if !errors.As(err, &list) || len(list) == 0 {
				t.Fatalf("expected a diagnostic list, got %T", err)
			}
			found := false
			for _, e := range list {
				if e.File != "test.json" {
					t.Fatalf("file = %q", e.File)
				}
				if e.Path == tt.path {
					found = true
				}
			}
			if !found {
				t.Fatalf("no diagnostic at %s: %v", tt.path, list)
			}
		})
	}
}
