// Package resolve follows $ref links between schema fragments, within one
// document or across loaded documents.
package resolve

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
)

// Resolver holds every loaded document by id.
type Resolver struct {
	docs  map[string]*document.Document
	order []string
}

// New returns an empty resolver.
func New() *Resolver {
	return &Resolver{docs: make(map[string]*document.Document)}
}

// Add registers a document. A later document with the same id replaces the
// earlier one.
func (r *Resolver) Add(doc *document.Document) {
	if _, ok := r.docs[doc.ID]; !ok {
		r.order = append(r.order, doc.ID)
	}
	r.docs[doc.ID] = doc
}

// Document returns a registered document.
func (r *Resolver) Document(id string) (*document.Document, bool) {
	d, ok := r.docs[id]
	return d, ok
}

// Documents returns registered documents in registration order.
func (r *Resolver) Documents() []*document.Document {
	out := make([]*document.Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	return out
}

// Resolved is the outcome of following a fragment's $ref chain.
type Resolved struct {
	// Fragment is the merged scalar template, or the verbatim container
	// definition.
	Fragment *document.Object
	// Doc is the document against which refs inside Fragment resolve.
	Doc *document.Document
	// Ref is the canonical "doc#/pointer" key of the terminal definition
	// when a container was reached through $ref; empty otherwise.
	Ref string
	// Name is the last pointer segment of the terminal definition.
	Name string
}

// Resolve follows frag's $ref chain. Scalar templates are merged with the
// referencing site taking precedence; containers are returned verbatim
// together with their de-duplication key.
func (r *Resolver) Resolve(doc *document.Document, frag *document.Object, path string) (Resolved, error) {
	if !document.Has(frag, "$ref") {
		return Resolved{Fragment: frag, Doc: doc}, nil
	}

	merged := document.NewObject()
	for p := frag.Oldest(); p != nil; p = p.Next() {
		if p.Key != "$ref" {
			merged.Set(p.Key, p.Value)
		}
	}

	seen := set.New[string](4)
	var chain []string
	cur, curDoc := frag, doc
	var key, name string
	for document.Has(cur, "$ref") {
		ref, ok := document.GetString(cur, "$ref")
		if !ok {
			return Resolved{}, diag.InvalidSchema(doc.File, path, "$ref must be a string")
		}
		targetDoc, pointer, err := r.locate(curDoc, ref, doc.File, path)
		if err != nil {
			return Resolved{}, err
		}
		key = targetDoc.ID + "#" + pointer
		chain = append(chain, key)
		if !seen.Insert(key) {
			return Resolved{}, diag.CyclicReference(doc.File, path, chain)
		}
		parts := document.SplitPointer(pointer)
		v, found := document.Lookup(targetDoc.Root, parts)
		if !found {
			return Resolved{}, diag.UnresolvedReference(doc.File, path, ref)
		}
		target, ok := v.(*document.Object)
		if !ok {
			return Resolved{}, diag.UnresolvedReference(doc.File, path,
				fmt.Sprintf("%s (target is %s, not an object)", ref, document.Describe(v)))
		}
		name = targetDoc.ID
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
		for p := target.Oldest(); p != nil; p = p.Next() {
			if p.Key == "$ref" || document.Has(merged, p.Key) {
				continue
			}
			merged.Set(p.Key, p.Value)
		}
		cur, curDoc = target, targetDoc
	}

	if IsContainer(cur) {
		return Resolved{Fragment: cur, Doc: curDoc, Ref: key, Name: name}, nil
	}
	return Resolved{Fragment: merged, Doc: curDoc, Name: name}, nil
}

// IsContainer reports whether a fragment describes an object, array or union.
func IsContainer(frag *document.Object) bool {
	if document.Has(frag, "oneOf") {
		return true
	}
	switch t, _ := document.GetString(frag, "type"); t {
	case "object", "array":
		return true
	case "":
		return document.Has(frag, "properties")
	}
	return false
}

// locate splits a ref into its target document and JSON pointer.
// Accepted forms: "#/a/b", "doc#/a/b", "doc/a/b", "doc.json#/a/b".
func (r *Resolver) locate(cur *document.Document, ref, file, path string) (*document.Document, string, error) {
	var docID, pointer string
	switch {
	case strings.HasPrefix(ref, "#"):
		return cur, ref[1:], nil
	case strings.Contains(ref, "#"):
		i := strings.Index(ref, "#")
		docID, pointer = ref[:i], ref[i+1:]
	case strings.Contains(ref, "/"):
		i := strings.Index(ref, "/")
		docID, pointer = ref[:i], ref[i:]
	default:
		docID = ref
	}
	docID = document.ID(docID)
	target, ok := r.docs[docID]
	if !ok {
		return nil, "", diag.UnresolvedDocument(file, path, ref, docID)
	}
	return target, pointer, nil
}
