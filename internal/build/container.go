package build

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/go-set/v2"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/layout"
	"github.com/reoring/dbgen/internal/naming"
	"github.com/reoring/dbgen/internal/resolve"
)

// TagName is the synthetic union discriminator property.
const TagName = "tag"

func (c *Context) unionBody(n *ir.Node, frag *document.Object, doc *document.Document, path document.Path) error {
	if document.Has(frag, "default") {
		return diag.InvalidDefault(doc.File, path.Field("default").String(), "Union")
	}
	variants, ok := document.GetArray(frag, "oneOf")
	if !ok || len(variants) == 0 {
		return diag.InvalidUnionVariant(doc.File, path.Field("oneOf").String(), "oneOf must be a non-empty list")
	}

	names := set.New[string](len(variants))
	for i, v := range variants {
		vpath := path.Field("oneOf").Index(i)
		vfrag, ok := v.(*document.Object)
		if !ok {
			return diag.InvalidUnionVariant(doc.File, vpath.String(), "variant must be an object schema")
		}
		res, err := c.Resolver.Resolve(doc, vfrag, vpath.String())
		if err != nil {
			return err
		}
		if classify(res.Fragment) != classObject {
			return diag.InvalidUnionVariant(doc.File, vpath.String(),
				fmt.Sprintf("variant must be an object, got %s", typeOf(res.Fragment)))
		}
		name, _ := document.GetString(vfrag, "title")
		if name == "" && res.Ref != "" {
			name = res.Name
		}
		if name == "" {
			name, _ = document.GetString(res.Fragment, "title")
		}
		if name == "" {
			return diag.InvalidUnionVariant(doc.File, vpath.String(), "variant needs a title or a $ref")
		}
		if !names.Insert(name) {
			return diag.InvalidUnionVariant(doc.File, vpath.String(), fmt.Sprintf("duplicate variant %q", name))
		}

		if err := siteDefault(res, vfrag, ir.KindObject, doc.File, vpath); err != nil {
			return err
		}
		id, err := c.container(n, ir.KindObject, name, res, vpath, c.objectBody)
		if err != nil {
			return err
		}
		c.Strings.Intern(name)
		n.Children = append(n.Children, ir.Child{Name: name, Node: id})
	}

	tag := ir.Property{
		Name:       TagName,
		Path:       path.Field("oneOf").String(),
		Type:       ir.TypeInteger,
		Minimum:    new(big.Int),
		Maximum:    big.NewInt(int64(len(variants) - 1)),
		Default:    new(big.Int),
		HasDefault: true,
		Synthetic:  true,
	}
	if err := layout.ResolveProperty(doc.File, &tag); err != nil {
		return err
	}
	c.Strings.Intern(TagName)
	n.Properties = append(n.Properties, tag)
	nameMembers(n)
	return nil
}

// nameMembers gives every child and property of n a member identifier and
// an accessor stem that no sibling shares. Schema keys such as "max-speed"
// and "max_speed" map to one C++ name, so later keys get a numeric suffix.
// An enum property also claims "<stem>Index" for its ordinal accessors.
func nameMembers(n *ir.Node) {
	idents := set.New[string](len(n.Children) + len(n.Properties))
	stems := set.New[string](len(n.Children) + len(n.Properties))
	claim := func(taken *set.Set[string], base string, suffixes ...string) string {
		name := naming.Unique(base, func(s string) bool {
			if taken.Contains(s) {
				return true
			}
			for _, sfx := range suffixes {
				if taken.Contains(s + sfx) {
					return true
				}
			}
			return false
		})
		taken.Insert(name)
		for _, sfx := range suffixes {
			taken.Insert(name + sfx)
		}
		return name
	}
	for i := range n.Children {
		ch := &n.Children[i]
		ch.Ident = claim(idents, naming.Identifier(ch.Name))
		ch.Stem = claim(stems, naming.TypeName(ch.Name))
	}
	for i := range n.Properties {
		p := &n.Properties[i]
		p.Ident = claim(idents, naming.Identifier(p.Name))
		if p.IsEnum() {
			p.Stem = claim(stems, naming.TypeName(p.Name), "Index")
		} else {
			p.Stem = claim(stems, naming.TypeName(p.Name))
		}
	}
}

// arrayKind decides between a scalar Array and an ObjectArray from the
// element schema. It returns zero when the element type is not supported.
func (c *Context) arrayKind(res resolve.Resolved, path document.Path) (ir.Kind, error) {
	items, ok := document.GetObject(res.Fragment, "items")
	if !ok {
		return 0, diag.InvalidSchema(res.Doc.File, path.String(), "array requires an \"items\" schema")
	}
	ires, err := c.Resolver.Resolve(res.Doc, items, path.Field("items").String())
	if err != nil {
		return 0, err
	}
	switch classify(ires.Fragment) {
	case classObject, classUnion:
		return ir.KindObjectArray, nil
	case classScalar:
		return ir.KindArray, nil
	}
	c.warn(diag.TypeNotImplemented(res.Doc.File, path.Field("items").String(), "array of "+typeOf(ires.Fragment)))
	return 0, nil
}

func (c *Context) arrayBody(n *ir.Node, frag *document.Object, doc *document.Document, path document.Path) error {
	items, _ := document.GetObject(frag, "items")
	ipath := path.Field("items")
	ires, err := c.Resolver.Resolve(doc, items, ipath.String())
	if err != nil {
		return err
	}

	if n.Kind == ir.KindObjectArray {
		if document.Has(frag, "default") {
			return diag.InvalidDefault(doc.File, path.Field("default").String(), "ObjectArray")
		}
		kind, body := ir.KindObject, bodyFunc(c.objectBody)
		if classify(ires.Fragment) == classUnion {
			kind, body = ir.KindUnion, c.unionBody
		}
		if err := siteDefault(ires, items, kind, doc.File, ipath); err != nil {
			return err
		}
		id, err := c.container(n, kind, "item", ires, ipath, body)
		if err != nil {
			return err
		}
		if item := c.Arena.Get(id); item.Parent == n.ID {
			item.TypeName = "ItemType"
		}
		n.Item = id
		return nil
	}

	prop, err := c.property("item", ires.Fragment, ires.Doc, ipath)
	if err != nil {
		return err
	}
	prop.Ident, prop.Stem = naming.Identifier(prop.Name), naming.TypeName(prop.Name)
	n.ItemProperty = prop

	v, ok := frag.Get("default")
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return diag.InvalidSchema(doc.File, path.Field("default").String(), "array default must be a list")
	}
	for i, e := range list {
		epath := path.Field("default").Index(i)
		val, err := c.literal(prop.Type, e, doc.File, epath)
		if err != nil {
			return err
		}
		if prop.IsEnum() {
			ord, ok := ordinal(prop.Enum, val)
			if !ok {
				return diag.RangeViolation(doc.File, epath.String(), fmt.Sprintf("%v not in enum", describe(val)))
			}
			val = ord
		} else if err := layout.CheckValue(prop, val); err != nil {
			return diag.RangeViolation(doc.File, epath.String(), err.Error())
		}
		n.ArrayDefault = append(n.ArrayDefault, val)
	}
	return nil
}
