package emit

import (
	"fmt"
	"strings"
)

// writer accumulates tab-indented C++ text.
type writer struct {
	b     strings.Builder
	depth int
}

// p writes one indented line.
func (w *writer) p(format string, args ...any) {
	for i := 0; i < w.depth; i++ {
		w.b.WriteByte('\t')
	}
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// blank writes an empty line.
func (w *writer) blank() { w.b.WriteByte('\n') }

// open writes a line and indents the following ones.
func (w *writer) open(format string, args ...any) {
	w.p(format, args...)
	w.depth++
}

// close outdents and writes a line.
func (w *writer) close(format string, args ...any) {
	w.depth--
	w.p(format, args...)
}

// block writes "{" ... "}" around body.
func (w *writer) block(closing string, body func()) {
	w.open("{")
	body()
	w.close("}%s", closing)
}

func (w *writer) String() string { return w.b.String() }

const banner = `/****
 *
 * This file is auto-generated.
 *
 ****/
`
