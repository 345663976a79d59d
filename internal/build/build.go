// Package build turns resolved schema documents into the ir node graph.
package build

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/naming"
	"github.com/reoring/dbgen/internal/resolve"
	"github.com/reoring/dbgen/internal/strtab"
)

// DefaultNamespace is the backing format of a store without "store" key.
const DefaultNamespace = "json"

// Context carries the state shared by every document of one compiler run.
type Context struct {
	Arena    *ir.Arena
	Strings  *strtab.Table
	Resolver *resolve.Resolver
	Log      *zap.SugaredLogger
	Warnings []*diag.Warning

	objects   map[string]ir.NodeID // $ref key -> definition node
	databases map[string]ir.NodeID // document id -> database node
}

// NewContext returns a build context over the documents registered with r.
func NewContext(arena *ir.Arena, strings *strtab.Table, r *resolve.Resolver, log *zap.SugaredLogger) *Context {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Context{
		Arena:     arena,
		Strings:   strings,
		Resolver:  r,
		Log:       log,
		objects:   make(map[string]ir.NodeID),
		databases: make(map[string]ir.NodeID),
	}
}

// Lookup returns the node registered for a $ref key.
func (c *Context) Lookup(ref string) (ir.NodeID, bool) {
	id, ok := c.objects[ref]
	return id, ok
}

// Database returns the database node of a document, creating it on first use.
func (c *Context) Database(doc *document.Document) *ir.Node {
	if id, ok := c.databases[doc.ID]; ok {
		return c.Arena.Get(id)
	}
	db := c.Arena.New(ir.KindDatabase, doc.ID, ir.NoNode)
	db.TypeName = naming.TypeName(doc.ID)
	db.Doc = doc.ID
	db.File = doc.File
	db.Path = "/"
	c.databases[doc.ID] = db.ID
	c.Strings.Intern(doc.ID)
	return db
}

// Build constructs the database for one document.
func (c *Context) Build(doc *document.Document) (ir.NodeID, error) {
	db := c.Database(doc)
	root := document.Path{}

	namespace := DefaultNamespace
	if v, ok := doc.Root.Get("store"); ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return ir.NoNode, diag.InvalidSchema(doc.File, root.Field("store").String(), "\"store\" must be a non-empty string")
		}
		namespace = s
	}
	if v, ok := doc.Root.Get("include"); ok {
		list, ok := v.([]any)
		if !ok {
			return ir.NoNode, diag.InvalidSchema(doc.File, root.Field("include").String(), "\"include\" must be a list of strings")
		}
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return ir.NoNode, diag.InvalidSchema(doc.File, root.Field("include").Index(i).String(), "include entries must be strings")
			}
			db.Includes = append(db.Includes, s)
		}
	}

	rootObj := c.newStore(db, "", "Root", namespace, doc, root)

	props, err := propertiesOf(doc, doc.Root, root)
	if err != nil {
		return ir.NoNode, err
	}
	for p := props.Oldest(); p != nil; p = p.Next() {
		path := root.Field("properties").Field(p.Key)
		frag, ok := p.Value.(*document.Object)
		if !ok {
			return ir.NoNode, diag.InvalidSchema(doc.File, path.String(), "property must be an object")
		}
		if !document.Has(frag, "store") {
			if err := c.entry(rootObj, p.Key, frag, doc, path); err != nil {
				return ir.NoNode, err
			}
			continue
		}
		ns, ok := document.GetString(frag, "store")
		if !ok || ns == "" {
			return ir.NoNode, diag.InvalidSchema(doc.File, path.Field("store").String(), "\"store\" must be a non-empty string")
		}
		res, err := c.Resolver.Resolve(doc, frag, path.String())
		if err != nil {
			return ir.NoNode, err
		}
		if classify(res.Fragment) != classObject {
			return ir.NoNode, diag.InvalidSchema(doc.File, path.String(), "a store must be an object")
		}
		if err := siteDefault(res, frag, ir.KindObject, doc.File, path); err != nil {
			return ir.NoNode, err
		}
		obj := c.newStore(db, p.Key, naming.TypeName(p.Key), ns, doc, path)
		if err := c.objectBody(obj, res.Fragment, res.Doc, path); err != nil {
			return ir.NoNode, err
		}
	}

	nameMembers(rootObj)

	c.Log.Debugw("built database",
		"document", doc.ID,
		"stores", len(db.Stores),
		"definitions", len(db.Defs),
	)
	return db.ID, nil
}

// newStore adds a store to db and returns its root object.
func (c *Context) newStore(db *ir.Node, name, typeName, namespace string, doc *document.Document, path document.Path) *ir.Node {
	store := c.Arena.New(ir.KindStore, name, db.ID)
	store.Namespace = namespace
	store.StoreIndex = len(db.Stores)
	store.TypeName = typeName
	store.Doc, store.File, store.Path = doc.ID, doc.File, path.String()
	store.Store = store.ID
	db.Stores = append(db.Stores, store.ID)

	obj := c.Arena.New(ir.KindObject, name, store.ID)
	obj.TypeName = typeName
	obj.Doc, obj.File, obj.Path = doc.ID, doc.File, path.String()
	obj.Store = store.ID
	store.Children = append(store.Children, ir.Child{Name: name, Node: obj.ID})

	c.Strings.Intern(name)
	c.Strings.Intern(namespace)
	return obj
}

type fragClass int

const (
	classUnknown fragClass = iota
	classScalar
	classObject
	classArray
	classUnion
)

func classify(f *document.Object) fragClass {
	if document.Has(f, "oneOf") {
		return classUnion
	}
	t, _ := document.GetString(f, "type")
	switch t {
	case "object":
		return classObject
	case "array":
		return classArray
	case "string", "integer", "boolean", "number":
		return classScalar
	case "":
		if document.Has(f, "properties") {
			return classObject
		}
		if document.Has(f, "enum") {
			return classScalar
		}
	}
	return classUnknown
}

func propertiesOf(doc *document.Document, f *document.Object, path document.Path) (*document.Object, error) {
	v, ok := f.Get("properties")
	if !ok {
		return document.NewObject(), nil
	}
	props, ok := v.(*document.Object)
	if !ok {
		return nil, diag.InvalidSchema(doc.File, path.Field("properties").String(), "\"properties\" must be an object")
	}
	return props, nil
}

// entry adds one member of a "properties" map to parent.
func (c *Context) entry(parent *ir.Node, key string, frag *document.Object, doc *document.Document, path document.Path) error {
	if document.Has(frag, "store") {
		return diag.InvalidStoreAnnotation(doc.File, path.Field("store").String())
	}
	res, err := c.Resolver.Resolve(doc, frag, path.String())
	if err != nil {
		return err
	}
	alias, err := aliasesOf(doc, frag, path)
	if err != nil {
		return err
	}

	var (
		kind ir.Kind
		body bodyFunc
	)
	switch classify(res.Fragment) {
	case classScalar:
		prop, err := c.property(key, res.Fragment, res.Doc, path)
		if err != nil || prop == nil {
			return err
		}
		parent.Properties = append(parent.Properties, *prop)
		return nil
	case classObject:
		kind, body = ir.KindObject, c.objectBody
	case classUnion:
		kind, body = ir.KindUnion, c.unionBody
	case classArray:
		kind, err = c.arrayKind(res, path)
		if err != nil || kind == 0 {
			return err
		}
		body = c.arrayBody
	default:
		c.warn(diag.TypeNotImplemented(doc.File, path.String(), typeOf(res.Fragment)))
		return nil
	}
	if err := siteDefault(res, frag, kind, doc.File, path); err != nil {
		return err
	}
	id, err := c.container(parent, kind, key, res, path, body)
	if err != nil {
		return err
	}
	c.Strings.Intern(key)
	for _, a := range alias {
		c.Strings.Intern(a)
	}
	parent.Children = append(parent.Children, ir.Child{Name: key, Alias: alias, Node: id})
	c.assignStore(id, parent.Store)
	return nil
}

// siteDefault rejects a "default" written next to a $ref to a container.
// The target is one shared node, so a per-use default has nowhere to live;
// this holds for scalar arrays too.
func siteDefault(res resolve.Resolved, site *document.Object, kind ir.Kind, file string, path document.Path) error {
	if res.Ref == "" || !document.Has(site, "default") {
		return nil
	}
	what := kind.String()
	if kind == ir.KindArray {
		what = "shared Array"
	}
	return diag.InvalidDefault(file, path.Field("default").String(), what)
}

type bodyFunc func(n *ir.Node, frag *document.Object, doc *document.Document, path document.Path) error

// container returns the node for a container fragment. Fragments reached
// through $ref are built once per reference key and owned by the database
// of the document that defines them; every later use shares that node.
func (c *Context) container(parent *ir.Node, kind ir.Kind, key string, res resolve.Resolved, path document.Path, body bodyFunc) (ir.NodeID, error) {
	if res.Ref == "" {
		n := c.Arena.New(kind, key, parent.ID)
		n.TypeName = c.childTypeName(parent, key)
		n.Doc, n.File, n.Path = res.Doc.ID, res.Doc.File, path.String()
		n.Store = c.Arena.StoreOf(n.ID)
		if err := body(n, res.Fragment, res.Doc, path); err != nil {
			return ir.NoNode, err
		}
		return n.ID, nil
	}

	if id, ok := c.objects[res.Ref]; ok {
		if got := c.Arena.Get(id).Kind; got != kind {
			return ir.NoNode, diag.InvalidSchema(parent.File, path.String(),
				fmt.Sprintf("%s used as %s but defined as %s", res.Ref, kind, got))
		}
		return id, nil
	}

	owner := c.Database(res.Doc)
	defPath := document.PathOf(res.Ref[strings.Index(res.Ref, "#")+1:])
	n := c.Arena.New(kind, res.Name, owner.ID)
	n.Ref = res.Ref
	n.TypeName = naming.Unique("Contained"+naming.TypeName(res.Name), func(s string) bool {
		for _, d := range owner.Defs {
			if c.Arena.Get(d).TypeName == s {
				return true
			}
		}
		return false
	})
	n.Doc, n.File, n.Path = res.Doc.ID, res.Doc.File, defPath.String()
	owner.Defs = append(owner.Defs, n.ID)
	// register before walking the body so self references resolve to n
	c.objects[res.Ref] = n.ID
	c.Strings.Intern(res.Name)
	c.Log.Debugw("new definition", "ref", res.Ref, "kind", kind.String(), "type", n.TypeName)
	if err := body(n, res.Fragment, res.Doc, defPath); err != nil {
		return ir.NoNode, err
	}
	return n.ID, nil
}

func (c *Context) childTypeName(parent *ir.Node, key string) string {
	return naming.Unique(naming.TypeName(key), func(s string) bool {
		if s == parent.TypeName {
			return true
		}
		for _, ch := range parent.Children {
			if n := c.Arena.Get(ch.Node); n.Parent == parent.ID && n.TypeName == s {
				return true
			}
		}
		return false
	})
}

// assignStore gives id and everything it reaches the store of its first
// use. Shared definitions keep whichever store reached them first.
func (c *Context) assignStore(id, store ir.NodeID) {
	if store == ir.NoNode {
		return
	}
	n := c.Arena.Get(id)
	if n.Store != ir.NoNode {
		return
	}
	n.Store = store
	for _, ch := range n.Children {
		c.assignStore(ch.Node, store)
	}
	if n.Item != ir.NoNode {
		c.assignStore(n.Item, store)
	}
}

func (c *Context) objectBody(n *ir.Node, frag *document.Object, doc *document.Document, path document.Path) error {
	if document.Has(frag, "default") {
		return diag.InvalidDefault(doc.File, path.Field("default").String(), "Object")
	}
	props, err := propertiesOf(doc, frag, path)
	if err != nil {
		return err
	}
	for p := props.Oldest(); p != nil; p = p.Next() {
		ppath := path.Field("properties").Field(p.Key)
		f, ok := p.Value.(*document.Object)
		if !ok {
			return diag.InvalidSchema(doc.File, ppath.String(), "property must be an object")
		}
		if err := c.entry(n, p.Key, f, doc, ppath); err != nil {
			return err
		}
	}
	nameMembers(n)
	return nil
}

func (c *Context) warn(w *diag.Warning) {
	c.Warnings = append(c.Warnings, w)
	c.Log.Warnw(w.Message, "file", w.File, "path", w.Path)
}

func typeOf(f *document.Object) string {
	if t, ok := f.Get("type"); ok {
		if s, ok := t.(string); ok {
			return s
		}
		return document.Describe(t)
	}
	return "(untyped)"
}

func aliasesOf(doc *document.Document, f *document.Object, path document.Path) ([]string, error) {
	v, ok := f.Get("alias")
	if !ok {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, a := range t {
			s, ok := a.(string)
			if !ok {
				return nil, diag.InvalidSchema(doc.File, path.Field("alias").Index(i).String(), "alias must be a string")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, diag.InvalidSchema(doc.File, path.Field("alias").String(), "alias must be a string or list of strings")
}
