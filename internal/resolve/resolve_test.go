package resolve_test

import (
	"errors"
	"testing"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
	"github.com/reoring/dbgen/internal/resolve"
)

func parse(t *testing.T, id, src string) *document.Document {
	t.Helper()
	doc, err := document.Parse(id, id+".json", []byte(src))
	if err != nil {
		t.Fatalf("parse %s: %v", id, err)
	}
	return doc
}

func frag(t *testing.T, doc *document.Document, ptr string) *document.Object {
	t.Helper()
	v, ok := document.Lookup(doc.Root, document.SplitPointer(ptr))
	if !ok {
		t.Fatalf("no fragment at %s", ptr)
	}
	return v.(*document.Object)
}

func TestResolve_NoRef(t *testing.T) {
	doc := parse(t, "a", `{"properties":{"x":{"type":"integer"}}}`)
	r := resolve.New()
	r.Add(doc)
	f := frag(t, doc, "/properties/x")
	res, err := r.Resolve(doc, f, "/properties/x")
	if err != nil {
		t.Fatal(err)
	}
	if res.Fragment != f || res.Ref != "" || res.Doc != doc {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestResolve_ScalarTemplateMerges(t *testing.T) {
	doc := parse(t, "a", `{
		"$defs": {
			"Pin": {"$ref": "#/$defs/Int", "maximum": 63},
			"Int": {"type": "integer", "minimum": 0, "maximum": 1000}
		},
		"properties": {"pin": {"$ref": "#/$defs/Pin", "default": 13}}
	}`)
	r := resolve.New()
	r.Add(doc)
	res, err := r.Resolve(doc, frag(t, doc, "/properties/pin"), "/properties/pin")
	if err != nil {
		t.Fatal(err)
	}
	if res.Ref != "" {
		t.Fatalf("scalars carry no ref key, got %q", res.Ref)
	}
	want := map[string]any{
		"type":    "integer",
		"minimum": document.Number("0"),
		"maximum": document.Number("63"),
		"default": document.Number("13"),
	}
	for k, v := range want {
		if got, _ := res.Fragment.Get(k); got != v {
			t.Errorf("%s = %#v, want %#v", k, got, v)
		}
	}
	if document.Has(res.Fragment, "$ref") {
		t.Fatalf("merged fragment must not keep $ref")
	}
}

func TestResolve_ContainerIdentity(t *testing.T) {
	doc := parse(t, "a", `{
		"$defs": {"Color": {"type": "object", "properties": {}}},
		"properties": {
			"one": {"$ref": "#/$defs/Color"},
			"two": {"$ref": "#/$defs/Color"}
		}
	}`)
	r := resolve.New()
	r.Add(doc)
	one, err := r.Resolve(doc, frag(t, doc, "/properties/one"), "/properties/one")
	if err != nil {
		t.Fatal(err)
	}
	two, err := r.Resolve(doc, frag(t, doc, "/properties/two"), "/properties/two")
	if err != nil {
		t.Fatal(err)
	}
	if one.Ref != "a#/$defs/Color" || one.Ref != two.Ref {
		t.Fatalf("refs = %q, %q", one.Ref, two.Ref)
	}
	if one.Fragment != two.Fragment || one.Name != "Color" {
		t.Fatalf("containers must resolve to the same definition")
	}
}

func TestResolve_CrossDocument(t *testing.T) {
	common := parse(t, "common", `{"$defs": {"Addr": {"type": "object", "properties": {}}}}`)
	tests := []string{"common#/$defs/Addr", "common/$defs/Addr", "common.json#/$defs/Addr"}
	for _, ref := range tests {
		doc := parse(t, "app", `{"properties": {"addr": {"$ref": "`+ref+`"}}}`)
		r := resolve.New()
		r.Add(common)
		r.Add(doc)
		res, err := r.Resolve(doc, frag(t, doc, "/properties/addr"), "/properties/addr")
		if err != nil {
			t.Fatalf("%s: %v", ref, err)
		}
		if res.Doc != common || res.Ref != "common#/$defs/Addr" {
			t.Fatalf("%s: doc %s ref %q", ref, res.Doc.ID, res.Ref)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		kind diag.Kind
	}{
		{"missing pointer", `{"properties":{"x":{"$ref":"#/$defs/Nope"}}}`, diag.ErrUnresolvedReference, diag.KindUnresolvedReference},
		{"missing document", `{"properties":{"x":{"$ref":"other#/$defs/A"}}}`, diag.ErrUnresolvedReference, diag.KindUnresolvedDocument},
		{"cycle", `{"$defs":{"A":{"$ref":"#/$defs/B"},"B":{"$ref":"#/$defs/A"}},"properties":{"x":{"$ref":"#/$defs/A"}}}`, diag.ErrUnresolvedReference, diag.KindCyclicReference},
		{"non-object target", `{"$defs":{"A":3},"properties":{"x":{"$ref":"#/$defs/A"}}}`, diag.ErrUnresolvedReference, diag.KindUnresolvedReference},
		{"non-string ref", `{"properties":{"x":{"$ref":7}}}`, diag.ErrInvalidSchema, diag.KindInvalidSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, "a", tt.src)
			r := resolve.New()
			r.Add(doc)
			_, err := r.Resolve(doc, frag(t, doc, "/properties/x"), "/properties/x")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			e, _ := diag.AsError(err)
			if e.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", e.Kind, tt.kind)
			}
			if e.File != "a.json" || e.Path != "/properties/x" {
				t.Fatalf("location = %s %s", e.File, e.Path)
			}
		})
	}
}

func TestIsContainer(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`{"type":"object"}`, true},
		{`{"type":"array","items":{}}`, true},
		{`{"oneOf":[]}`, true},
		{`{"properties":{}}`, true},
		{`{"type":"string"}`, false},
		{`{"enum":["a"]}`, false},
	}
	for _, tt := range tests {
		o, err := document.ParseJSON([]byte(tt.src))
		if err != nil {
			t.Fatal(err)
		}
		if got := resolve.IsContainer(o); got != tt.want {
			t.Errorf("IsContainer(%s) = %v", tt.src, got)
		}
	}
}

func TestDocuments_RegistrationOrder(t *testing.T) {
	r := resolve.New()
	r.Add(parse(t, "b", `{}`))
	r.Add(parse(t, "a", `{}`))
	docs := r.Documents()
	if len(docs) != 2 || docs[0].ID != "b" || docs[1].ID != "a" {
		t.Fatalf("order = %v", docs)
	}
	if _, ok := r.Document("a"); !ok {
		t.Fatalf("document a not registered")
	}
}
