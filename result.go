package dbgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reoring/dbgen/diag"
)

// Result is the outcome of a successful run.
type Result struct {
	Outputs  []Output
	Warnings []*Warning
}

// Output holds the generated files of one document.
type Output struct {
	Document    string // document id; file names derive from it
	Header      string
	Source      string
	Manifest    []byte
	ManifestExt string
}

// File is one generated file.
type File struct {
	Name string
	Data []byte
}

// Files lists the files of o in a fixed order.
func (o *Output) Files() []File {
	files := []File{
		{Name: o.Document + ".h", Data: []byte(o.Header)},
		{Name: o.Document + ".cpp", Data: []byte(o.Source)},
	}
	if o.Manifest != nil {
		files = append(files, File{Name: o.Document + o.ManifestExt, Data: o.Manifest})
	}
	return files
}

// WriteOutputs writes every generated file into dir, creating it if needed.
// All files are first written to temporaries and only renamed into place
// once every write has succeeded.
func (r *Result) WriteOutputs(dir string) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return diag.IO(dir, err)
	}

	type pending struct{ tmp, dst string }
	var staged []pending
	defer func() {
		if err != nil {
			for _, p := range staged {
				_ = os.Remove(p.tmp)
			}
		}
	}()

	for i := range r.Outputs {
		for _, f := range r.Outputs[i].Files() {
			dst := filepath.Join(dir, f.Name)
			tmp, err := writeTemp(dir, f)
			if err != nil {
				return diag.IO(dst, err)
			}
			staged = append(staged, pending{tmp: tmp, dst: dst})
		}
	}
	var errs []error
	for _, p := range staged {
		if err := os.Rename(p.tmp, p.dst); err != nil {
			errs = append(errs, diag.IO(p.dst, err))
		}
	}
	return errors.Join(errs...)
}

func writeTemp(dir string, f File) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+f.Name+".*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close: %w", err)
	}
	return tmp.Name(), nil
}
