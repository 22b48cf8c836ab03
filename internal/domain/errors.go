package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every storage key the repository layer writes.
// Overridden by config.Storage.KeyPrefix at wiring time.
const KeyPrefix = "nestidx:"

// Sentinel errors surfaced by the core (spec.md §7). Callers should match
// with errors.Is; the structured variants below carry the offending path.
var (
	// ErrUnknownField signals a query/ingest reference to a path with no schema entry.
	ErrUnknownField = errors.New("unknown field")
	// ErrTypeMismatch signals a value shape violating the declared or inferred type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNestedNotEnabled signals a dotted path used without enable_nested_fields.
	ErrNestedNotEnabled = errors.New("nested fields not enabled")
	// ErrMissingRequiredField signals a non-optional field absent on ingest.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrInvalidRequest signals malformed search parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidSchema signals a malformed collection schema declaration.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrAlreadyExists signals a duplicate resource (collection or document, per operation).
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound signals a missing collection.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
)

// UnknownFieldError wraps ErrUnknownField with the offending dotted path.
type UnknownFieldError struct {
	Path string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("Could not find a field named `%s` in the schema.", e.Path)
}

// Unwrap allows errors.Is(err, ErrUnknownField).
func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// NewUnknownField creates an UnknownFieldError.
func NewUnknownField(path string) error { return &UnknownFieldError{Path: path} }

// TypeMismatchError wraps ErrTypeMismatch with the offending path and shapes.
type TypeMismatchError struct {
	Path     string
	Expected string
	Found    string
}

func (e *TypeMismatchError) Error() string {
	if e.Expected == "" && e.Found == "" {
		return fmt.Sprintf("Field `%s` was not found or has an incorrect type.", e.Path)
	}
	return fmt.Sprintf(
		"Field `%s` has type mismatch: expected %s, found %s.", e.Path, e.Expected, e.Found,
	)
}

// Unwrap allows errors.Is(err, ErrTypeMismatch).
func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// NewTypeMismatch creates a TypeMismatchError with expected/found shapes.
func NewTypeMismatch(path, expected, found string) error {
	return &TypeMismatchError{Path: path, Expected: expected, Found: found}
}

// NewFieldNotFoundOrWrongType creates the "not found or has an incorrect type" flavor
// used when a requested field's root is entirely absent from a document (§4.3).
func NewFieldNotFoundOrWrongType(path string) error {
	return &TypeMismatchError{Path: path}
}

// NestedNotEnabledError wraps ErrNestedNotEnabled with the offending path.
type NestedNotEnabledError struct {
	Path string
}

func (e *NestedNotEnabledError) Error() string {
	return fmt.Sprintf(
		"Field `%s` has parts that conflict with the rest of the schema, or "+
			"nested fields are not enabled.", e.Path,
	)
}

// Unwrap allows errors.Is(err, ErrNestedNotEnabled).
func (e *NestedNotEnabledError) Unwrap() error { return ErrNestedNotEnabled }

// NewNestedNotEnabled creates a NestedNotEnabledError.
func NewNestedNotEnabled(path string) error { return &NestedNotEnabledError{Path: path} }

// MissingRequiredFieldError wraps ErrMissingRequiredField with the offending path.
type MissingRequiredFieldError struct {
	Path string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("Field `%s` has been declared in the schema, but is not found in the document.", e.Path)
}

// Unwrap allows errors.Is(err, ErrMissingRequiredField).
func (e *MissingRequiredFieldError) Unwrap() error { return ErrMissingRequiredField }

// NewMissingRequiredField creates a MissingRequiredFieldError.
func NewMissingRequiredField(path string) error { return &MissingRequiredFieldError{Path: path} }

// InvalidRequestError wraps ErrInvalidRequest with a free-form message.
type InvalidRequestError struct {
	Msg string
}

func (e *InvalidRequestError) Error() string { return e.Msg }

// Unwrap allows errors.Is(err, ErrInvalidRequest).
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// NewInvalidRequest creates an InvalidRequestError.
func NewInvalidRequest(format string, args ...any) error {
	return &InvalidRequestError{Msg: fmt.Sprintf(format, args...)}
}
