package dbgen

import (
	"errors"

	"github.com/reoring/dbgen/diag"
)

type (
	// Error is a fatal diagnostic carrying file, JSON pointer and kind.
	Error = diag.Error
	// Errors is a list of diagnostics that implements error.
	Errors = diag.Errors
	// Warning is a recoverable diagnostic; compilation continues.
	Warning = diag.Warning
)

// Sentinels for errors.Is. ErrUnresolvedReference also matches missing
// documents and cyclic reference chains.
var (
	ErrSchemaValidation    = diag.ErrSchemaValidation
	ErrUnresolvedReference = diag.ErrUnresolvedReference
	ErrUnresolvedDocument  = diag.ErrUnresolvedDocument
	ErrCyclicReference     = diag.ErrCyclicReference
	ErrInvalidPlacement    = diag.ErrInvalidPlacement
	ErrRangeViolation      = diag.ErrRangeViolation
	ErrInvalidUnionVariant = diag.ErrInvalidUnionVariant
	ErrTypeNotImplemented  = diag.ErrTypeNotImplemented
	ErrInvalidSchema       = diag.ErrInvalidSchema
	ErrRecursiveLayout     = diag.ErrRecursiveLayout
	ErrIO                  = diag.ErrIO
)

// AsErrors flattens err into its individual diagnostics. Errors that carry
// no diagnostic are returned as false.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var list Errors
	if errors.As(err, &list) {
		return list, true
	}
	if e, ok := diag.AsError(err); ok {
		return Errors{e}, true
	}
	return nil, false
}
