package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the unified error type for contract violations.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code, so sentinel comparisons work with
// errors.Is regardless of message or details.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// As converts an error to an *Error if possible.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err is an *Error carrying code.
func HasCode(err error, code ErrorCode) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// --- Constructors ---

// InvalidName creates an Error for a name that is not a valid identifier.
func InvalidName(kind, name string) *Error {
	return &Error{
		Code: ErrCodeInvalidName, Message: fmt.Sprintf("%s name %q is not a valid identifier", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// ReservedName creates an Error for a name that collides with internal keys.
func ReservedName(kind, name string) *Error {
	return &Error{
		Code: ErrCodeReservedName, Message: fmt.Sprintf("%s name %q is reserved", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// NilOperation creates an Error for a registry entry without a function.
func NilOperation(name string) *Error {
	return &Error{
		Code: ErrCodeNilOperation, Message: fmt.Sprintf("operation %q is nil", name),
		Details: map[string]any{"name": name},
	}
}

// NameConflict creates an Error for a binding named after a registered
// operation.
func NameConflict(name string) *Error {
	return &Error{
		Code: ErrCodeNameConflict, Message: fmt.Sprintf("binding name %q is a registered operation", name),
		Details: map[string]any{"name": name},
	}
}

// PendingOpen creates an Error for a binding opened over an unconsumed one.
func PendingOpen(pending, next string) *Error {
	return &Error{
		Code:    ErrCodePendingOpen,
		Message: fmt.Sprintf("binding %q opened while %q is still pending", next, pending),
		Details: map[string]any{"pending": pending, "next": next},
	}
}

// NilResult creates an Error for a nil Result produced by source.
func NilResult(source string) *Error {
	return &Error{
		Code: ErrCodeNilResult, Message: fmt.Sprintf("%s produced a nil result", source),
		Details: map[string]any{"source": source},
	}
}

// Panic creates an Error from a recovered panic value.
func Panic(recovered any) *Error {
	e := &Error{
		Code: ErrCodePanic, Message: fmt.Sprintf("sequence panicked: %v", recovered),
		Details: map[string]any{"recovered": recovered},
	}
	if err, ok := recovered.(error); ok {
		e.Cause = err
	}
	return e
}

// StepLimit creates an Error for a run exceeding its step budget.
func StepLimit(limit int) *Error {
	return &Error{
		Code: ErrCodeStepLimit, Message: fmt.Sprintf("run exceeded %d steps", limit),
		Details: map[string]any{"limit": limit},
	}
}

// Cancelled creates an Error wrapping a context error.
func Cancelled(cause error) *Error {
	return &Error{Code: ErrCodeCancelled, Message: "run cancelled", Cause: cause}
}

// InvalidConfig creates an Error for configuration that failed validation.
func InvalidConfig(message string) *Error {
	return &Error{Code: ErrCodeInvalidConfig, Message: message}
}
