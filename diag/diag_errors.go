package diag

import "fmt"

func SchemaValidation(file, path, message string) *Error {
	return &Error{
		Kind:    KindSchemaValidation,
		File:    file,
		Path:    path,
		Message: message,
	}
}

func UnresolvedReference(file, path, ref string) *Error {
	return &Error{
		Kind:    KindUnresolvedReference,
		File:    file,
		Path:    path,
		Message: fmt.Sprintf("cannot resolve $ref %q", ref),
	}
}

func UnresolvedDocument(file, path, ref, doc string) *Error {
	return &Error{
		Kind:    KindUnresolvedDocument,
		File:    file,
		Path:    path,
		Message: fmt.Sprintf("$ref %q names document %q which is not loaded", ref, doc),
	}
}

func CyclicReference(file, path string, chain []string) *Error {
	return &Error{
		Kind:    KindCyclicReference,
		File:    file,
		Path:    path,
		Message: fmt.Sprintf("cyclic $ref chain %v", chain),
	}
}

func InvalidStoreAnnotation(file, path string) *Error {
	return &Error{
		Kind:    KindInvalidPlacement,
		File:    file,
		Path:    path,
		Message: "\"store\" is only permitted on properties directly under the schema root",
	}
}

func InvalidDefault(file, path, what string) *Error {
	return &Error{
		Kind:    KindInvalidPlacement,
		File:    file,
		Path:    path,
		Message: fmt.Sprintf("%s default not supported", what),
	}
}

func RangeViolation(file, path, message string) *Error {
	return &Error{
		Kind:    KindRangeViolation,
		File:    file,
		Path:    path,
		Message: message,
	}
}

func InvalidUnionVariant(file, path, message string) *Error {
	return &Error{
		Kind:    KindInvalidUnionVariant,
		File:    file,
		Path:    path,
		Message: message,
	}
}

func InvalidSchema(file, path, message string) *Error {
	return &Error{
		Kind:    KindInvalidSchema,
		File:    file,
		Path:    path,
		Message: message,
	}
}

func RecursiveLayout(file, path, name string) *Error {
	return &Error{
		Kind:    KindRecursiveLayout,
		File:    file,
		Path:    path,
		Message: fmt.Sprintf("%q contains itself by value", name),
	}
}

func IO(file string, cause error) *Error {
	return &Error{
		Kind:    KindIO,
		File:    file,
		Message: "i/o failure",
		Cause:   cause,
	}
}
