package diag

import "fmt"

// Warning is a recoverable diagnostic. The compiler continues with degraded
// output after reporting one.
type Warning struct {
	Kind    Kind
	File    string
	Path    string
	Message string
}

func (w *Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: warning: %s", w.File, w.Message)
	}
	return fmt.Sprintf("%s: %s: warning: %s", w.File, w.Path, w.Message)
}

func TypeNotImplemented(file, path, typ string) *Warning {
	return &Warning{
		Kind:    KindTypeNotImplemented,
		File:    file,
		Path:    path,
		Message: fmt.Sprintf("%s type not yet implemented", typ),
	}
}

func ValidatorUnavailable(file string, cause error) *Warning {
	return &Warning{
		Kind:    KindSchemaValidation,
		File:    file,
		Message: fmt.Sprintf("schema validation skipped: %v", cause),
	}
}
