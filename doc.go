// Package dbgen compiles database schema documents into C++ sources for the
// ConfigDB runtime.
//
// A run loads one or more JSON or YAML schema documents, validates them
// against a fixed meta-schema, resolves $ref links within and across the
// documents, builds one node graph, computes the packed binary layout of
// every object, and emits a declaration stream (<doc>.h) and a definition
// stream (<doc>.cpp) per document.
//
// Design policy:
//   - Keep only the public API in the root package; pipeline stages live under internal/.
//   - Errors are *diag.Error values classified with errors.Is against the Err* sentinels.
//   - Nothing is written to disk unless the whole run succeeds.
//
// Typical usage:
//
//	c := dbgen.New(dbgen.WithLogger(log))
//	res, err := c.CompileFiles(ctx, "config.json")
//	if err != nil {
//		return err
//	}
//	err = res.WriteOutputs("out")
package dbgen
