// Package errors provides structured error types for taskdeck.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for taskdeck.
const (
	// Storage errors
	CodePersistenceFailed Code = "PERSISTENCE_FAILED"
	CodeStateCorrupt      Code = "STATE_CORRUPT"
	CodeStoreLocked       Code = "STORE_LOCKED"

	// Entity errors
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Session errors
	CodeNotAuthenticated   Code = "NOT_AUTHENTICATED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryUnauthorized
	CategoryConflict
	CategoryInternal
)

var codeCategories = map[Code]Category{
	CodePersistenceFailed:  CategoryInternal,
	CodeStateCorrupt:       CategoryInternal,
	CodeStoreLocked:        CategoryConflict,
	CodeNotFound:           CategoryNotFound,
	CodeInvalidInput:       CategoryBadRequest,
	CodeNotAuthenticated:   CategoryUnauthorized,
	CodeInvalidCredentials: CategoryUnauthorized,
	CodeConfigInvalid:      CategoryBadRequest,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryUnauthorized:
		return 401
	case CategoryConflict:
		return 409
	default:
		return 500
	}
}

// DeckError is the structured error type for taskdeck.
type DeckError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *DeckError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *DeckError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *DeckError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Category returns the error category for HTTP status mapping.
func (e *DeckError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *DeckError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
func (e *DeckError) MarshalJSON() ([]byte, error) {
	type alias DeckError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is a DeckError with the same code.
func (e *DeckError) Is(target error) bool {
	t, ok := target.(*DeckError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *DeckError) WithCause(err error) *DeckError {
	return &DeckError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrPersistenceFailed returns an error for a state write that did not complete.
func ErrPersistenceFailed(op string, cause error) *DeckError {
	return &DeckError{
		Code:  CodePersistenceFailed,
		What:  fmt.Sprintf("%s could not be saved", op),
		Why:   "The storage backend rejected the write; the previous state is still in effect",
		Fix:   "Check the storage configuration with 'taskdeck config' and retry",
		Cause: cause,
	}
}

// ErrStateCorrupt returns an error describing an unreadable persisted payload.
func ErrStateCorrupt(key string, cause error) *DeckError {
	return &DeckError{
		Code:  CodeStateCorrupt,
		What:  fmt.Sprintf("stored value %q is corrupt", key),
		Why:   "The payload could not be decoded",
		Cause: cause,
	}
}

// ErrStoreLocked returns an error when another process already owns the data directory.
func ErrStoreLocked(dir string, pid int) *DeckError {
	return &DeckError{
		Code: CodeStoreLocked,
		What: fmt.Sprintf("data directory %s is in use", dir),
		Why:  fmt.Sprintf("Process %d holds the writer guard", pid),
		Fix:  "Wait for the other taskdeck process to exit, or remove the stale .taskdeck.pid file",
	}
}

// ErrNotFound returns an error when an entity does not exist.
func ErrNotFound(kind, id string) *DeckError {
	return &DeckError{
		Code: CodeNotFound,
		What: fmt.Sprintf("%s %s not found", kind, id),
		Why:  fmt.Sprintf("No %s with this ID exists", kind),
		Fix:  fmt.Sprintf("Run 'taskdeck %ss' to list available IDs", kind),
	}
}

// ErrInvalidInput returns an error for a rejected mutation.
func ErrInvalidInput(what, reason string) *DeckError {
	return &DeckError{
		Code: CodeInvalidInput,
		What: what,
		Why:  reason,
	}
}

// ErrNotAuthenticated returns an error when a mutation is attempted while signed out.
func ErrNotAuthenticated() *DeckError {
	return &DeckError{
		Code: CodeNotAuthenticated,
		What: "not signed in",
		Why:  "Changes to projects and tasks require a signed-in session",
		Fix:  "Run 'taskdeck login' first",
	}
}

// ErrInvalidCredentials returns an error for a failed login.
func ErrInvalidCredentials() *DeckError {
	return &DeckError{
		Code: CodeInvalidCredentials,
		What: "Invalid credentials",
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *DeckError {
	return &DeckError{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Check .taskdeck/config.yaml and fix the invalid field",
	}
}

// AsDeckError attempts to convert an error to a DeckError.
// Returns nil if the error is not a DeckError.
func AsDeckError(err error) *DeckError {
	var deckErr *DeckError
	if stderrors.As(err, &deckErr) {
		return deckErr
	}
	return nil
}

// HasCode reports whether err is (or wraps) a DeckError with the given code.
func HasCode(err error, code Code) bool {
	if e := AsDeckError(err); e != nil {
		return e.Code == code
	}
	return false
}

// Wrap wraps a generic error into a DeckError with unknown code.
func Wrap(err error, what string) *DeckError {
	return &DeckError{
		Code:  Code("UNKNOWN"),
		What:  what,
		Cause: err,
	}
}
