package dbgen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/reoring/dbgen/diag"
	"github.com/reoring/dbgen/document"
	"github.com/reoring/dbgen/internal/build"
	"github.com/reoring/dbgen/internal/emit"
	"github.com/reoring/dbgen/internal/ir"
	"github.com/reoring/dbgen/internal/layout"
	"github.com/reoring/dbgen/internal/manifest"
	"github.com/reoring/dbgen/internal/resolve"
	"github.com/reoring/dbgen/internal/strtab"
	"github.com/reoring/dbgen/metaschema"
)

// Compiler turns schema documents into generated sources. A Compiler holds
// only configuration; every call starts from a fresh string table and node
// graph, so one Compiler may be used for many runs.
type Compiler struct {
	log       *zap.SugaredLogger
	validator Validator
	validate  bool
	manifest  ManifestFormat
}

// New returns a compiler configured by opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		log:      zap.NewNop().Sugar(),
		validate: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileFiles loads and compiles the schema files at paths together.
func (c *Compiler) CompileFiles(ctx context.Context, paths ...string) (*Result, error) {
	docs := make([]*document.Document, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := document.Load(p)
		if err != nil {
			return nil, err
		}
		c.log.Debugw("loaded document", "id", doc.ID, "file", doc.File)
		docs = append(docs, doc)
	}
	return c.Compile(ctx, docs...)
}

// Compile compiles already loaded documents together. References between
// them resolve by document id. On error no Result is returned.
func (c *Compiler) Compile(ctx context.Context, docs ...*document.Document) (*Result, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("dbgen: no schema documents")
	}
	if _, err := manifest.ParseFormat(string(c.manifest)); err != nil {
		return nil, fmt.Errorf("dbgen: %w", err)
	}
	res := &Result{}

	if c.validate {
		warnings, err := c.validateAll(ctx, docs)
		res.Warnings = append(res.Warnings, warnings...)
		if err != nil {
			return nil, err
		}
	}

	r := resolve.New()
	for _, doc := range docs {
		if _, dup := r.Document(doc.ID); dup {
			return nil, diag.InvalidSchema(doc.File, "/", fmt.Sprintf("document id %q is used by more than one input", doc.ID))
		}
		r.Add(doc)
	}

	arena := ir.NewArena()
	strings := strtab.New()
	bc := build.NewContext(arena, strings, r, c.log)
	// allocate databases in input order before any cross-document use
	for _, doc := range docs {
		bc.Database(doc)
	}
	dbs := make([]ir.NodeID, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := bc.Build(doc)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, id)
	}
	res.Warnings = append(res.Warnings, bc.Warnings...)

	if err := layout.Analyze(arena); err != nil {
		return nil, err
	}

	for i, id := range dbs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := emit.Emit(arena, strings, id)
		if err != nil {
			return nil, err
		}
		o := Output{
			Document: docs[i].ID,
			Header:   out.Header,
			Source:   out.Source,
		}
		if f := manifest.Format(c.manifest); f != manifest.FormatNone {
			data, err := manifest.Marshal(manifest.Build(arena, strings, id), f)
			if err != nil {
				return nil, err
			}
			o.Manifest, o.ManifestExt = data, f.Ext()
		}
		res.Outputs = append(res.Outputs, o)
		c.log.Infow("compiled document",
			"id", o.Document,
			"stores", len(arena.Get(id).Stores),
			"definitions", len(arena.Get(id).Defs),
		)
	}
	return res, nil
}

// validateAll runs the validator over every document and reports all
// failures together. A validator that cannot be constructed degrades to a
// warning.
func (c *Compiler) validateAll(ctx context.Context, docs []*document.Document) ([]*Warning, error) {
	v := c.validator
	if v == nil {
		mv, err := metaschema.New()
		if err != nil {
			w := diag.ValidatorUnavailable(docs[0].File, err)
			c.log.Warnw(w.Message, "error", err)
			return []*Warning{w}, nil
		}
		v = mv
	}
	var all diag.Errors
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := v.Validate(doc)
		if err == nil {
			continue
		}
		list, ok := AsErrors(err)
		if !ok {
			return nil, fmt.Errorf("validate %s: %w", doc.File, err)
		}
		all = append(all, list...)
	}
	if len(all) > 0 {
		return nil, all
	}
	return nil, nil
}
