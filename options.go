package dbgen

import (
	"go.uber.org/zap"

	"github.com/reoring/dbgen/document"
)

// Validator checks a raw schema document before it is compiled.
type Validator interface {
	Validate(doc *document.Document) error
}

// ManifestFormat selects the optional layout manifest written next to the
// generated sources.
type ManifestFormat string

const (
	ManifestNone ManifestFormat = ""
	ManifestJSON ManifestFormat = "json"
	ManifestBSON ManifestFormat = "bson"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger routes progress logging to log.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Compiler) {
		if log != nil {
			c.log = log
		}
	}
}

// WithValidator replaces the built-in meta-schema validator.
func WithValidator(v Validator) Option {
	return func(c *Compiler) { c.validator = v }
}

// WithoutValidation skips meta-schema validation.
func WithoutValidation() Option {
	return func(c *Compiler) { c.validate = false }
}

// WithManifest adds a layout manifest in format f to every output.
func WithManifest(f ManifestFormat) Option {
	return func(c *Compiler) { c.manifest = f }
}
