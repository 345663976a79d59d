package diag_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reoring/dbgen/diag"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same kind", diag.RangeViolation("a.json", "/x", "too big"), diag.ErrRangeViolation, true},
		{"other kind", diag.RangeViolation("a.json", "/x", "too big"), diag.ErrInvalidSchema, false},
		{"missing document", diag.UnresolvedDocument("a.json", "/x", "b#/y", "b"), diag.ErrUnresolvedReference, true},
		{"cycle", diag.CyclicReference("a.json", "/x", []string{"#/a", "#/b"}), diag.ErrUnresolvedReference, true},
		{"cycle is not missing document", diag.CyclicReference("a.json", "/x", nil), diag.ErrUnresolvedDocument, false},
		{"store annotation", diag.InvalidStoreAnnotation("a.json", "/x/store"), diag.ErrInvalidPlacement, true},
		{"wrapped", fmt.Errorf("build: %w", diag.InvalidSchema("a.json", "/", "bad")), diag.ErrInvalidSchema, true},
		{"non-sentinel target", diag.InvalidSchema("a.json", "/", "bad"), diag.InvalidSchema("a.json", "/", "bad"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Fatalf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	e := diag.UnresolvedReference("a.json", "/properties/x", "#/$defs/Missing")
	want := `a.json: /properties/x: cannot resolve $ref "#/$defs/Missing"`
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}

	io := diag.IO("out/a.h", errors.New("disk full"))
	if !strings.HasSuffix(io.Error(), "disk full") || !errors.Is(io, diag.ErrIO) {
		t.Fatalf("io error = %q", io.Error())
	}
}

func TestErrors_Summary(t *testing.T) {
	var errs diag.Errors
	for i := 0; i < 5; i++ {
		errs = append(errs, diag.SchemaValidation("a.json", fmt.Sprintf("/p%d", i), "bad"))
	}
	msg := errs.Error()
	if strings.Count(msg, "a.json") != 3 || !strings.HasSuffix(msg, "(total 5)") {
		t.Fatalf("summary = %q", msg)
	}
	if !errors.Is(errs, diag.ErrSchemaValidation) {
		t.Fatalf("list must match its members' kind")
	}
	if e, ok := diag.AsError(errs); !ok || e.Path != "/p0" {
		t.Fatalf("AsError = %v", e)
	}
}

func TestWarning_String(t *testing.T) {
	w := diag.TypeNotImplemented("a.json", "/properties/n", "null")
	if w.String() != "a.json: /properties/n: warning: null type not yet implemented" {
		t.Fatalf("got %q", w.String())
	}
	if w.Kind != diag.KindTypeNotImplemented || w.Kind.String() != "type_not_implemented" {
		t.Fatalf("kind = %v", w.Kind)
	}
}
