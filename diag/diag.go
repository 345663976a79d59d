// Package diag defines the compiler's error taxonomy and recoverable warnings.
//
// Every fatal condition is a *Error carrying a Kind, the originating file and
// the JSON pointer of the offending schema fragment. Use errors.Is against the
// Err* sentinels to classify a failure:
//
//	if errors.Is(err, diag.ErrUnresolvedReference) { ... }
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind int

const (
	KindSchemaValidation Kind = iota + 1
	KindUnresolvedReference
	KindUnresolvedDocument
	KindCyclicReference
	KindInvalidPlacement
	KindRangeViolation
	KindInvalidUnionVariant
	KindTypeNotImplemented
	KindInvalidSchema
	KindRecursiveLayout
	KindIO
)

var kindNames = map[Kind]string{
	KindSchemaValidation:    "schema_validation",
	KindUnresolvedReference: "unresolved_reference",
	KindUnresolvedDocument:  "unresolved_document",
	KindCyclicReference:     "cyclic_reference",
	KindInvalidPlacement:    "invalid_placement",
	KindRangeViolation:      "range_violation",
	KindInvalidUnionVariant: "invalid_union_variant",
	KindTypeNotImplemented:  "type_not_implemented",
	KindInvalidSchema:       "invalid_schema",
	KindRecursiveLayout:     "recursive_layout",
	KindIO:                  "io",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a fatal compiler diagnostic.
type Error struct {
	Kind    Kind
	File    string // schema file (or document id when no file is known)
	Path    string // JSON pointer of the schema fragment
	Message string
	Cause   error
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	b := &strings.Builder{}
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel errors by kind. ErrUnresolvedReference also
// matches the unresolved-document and cyclic-reference kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.File != "" || t.Path != "" || t.Message != "" {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	if t.Kind == KindUnresolvedReference {
		return e.Kind == KindUnresolvedDocument || e.Kind == KindCyclicReference
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrSchemaValidation    = &Error{Kind: KindSchemaValidation}
	ErrUnresolvedReference = &Error{Kind: KindUnresolvedReference}
	ErrUnresolvedDocument  = &Error{Kind: KindUnresolvedDocument}
	ErrCyclicReference     = &Error{Kind: KindCyclicReference}
	ErrInvalidPlacement    = &Error{Kind: KindInvalidPlacement}
	ErrRangeViolation      = &Error{Kind: KindRangeViolation}
	ErrInvalidUnionVariant = &Error{Kind: KindInvalidUnionVariant}
	ErrTypeNotImplemented  = &Error{Kind: KindTypeNotImplemented}
	ErrInvalidSchema       = &Error{Kind: KindInvalidSchema}
	ErrRecursiveLayout     = &Error{Kind: KindRecursiveLayout}
	ErrIO                  = &Error{Kind: KindIO}
)

// Errors is a collection of diagnostics that implements error.
type Errors []*Error

// Error summarizes the first few errors.
func (errs Errors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(errs), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(errs[i].Error())
	}
	if len(errs) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(errs))
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is/As.
func (errs Errors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// AsError extracts the first *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
