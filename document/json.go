package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/dbgen/diag"
)

// ParseJSON decodes a JSON document whose root must be an object.
func ParseJSON(data []byte) (*Object, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	r := &jsonReader{dec: dec}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	v, err := r.value(tok, nil)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	root, ok := v.(*Object)
	if !ok {
		return nil, diag.InvalidSchema("", "", fmt.Sprintf("document root must be an object, got %s", Describe(v)))
	}
	return root, nil
}

type jsonReader struct {
	dec *j.Decoder
}

func (r *jsonReader) value(tok j.Token, path []string) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return r.object(path)
		case '[':
			return r.array(path)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
	case string:
		return v, nil
	case j.Number:
		return Number(string(v)), nil
	case float64:
		return Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		return v, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func (r *jsonReader) object(path []string) (*Object, error) {
	obj := NewObject()
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		if Has(obj, key) {
			return nil, diag.InvalidSchema("", Pointer(append(path, key)), fmt.Sprintf("duplicate key %q", key))
		}
		vt, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := r.value(vt, append(path, key))
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
}

func (r *jsonReader) array(path []string) ([]any, error) {
	out := []any{}
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == ']' {
			return out, nil
		}
		v, err := r.value(tok, append(path, strconv.Itoa(len(out))))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}
