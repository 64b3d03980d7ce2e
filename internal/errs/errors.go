// Package errs provides the error type shared by the loader, the mapper,
// the file conversion and the database extractors.
//
// Every subsystem wraps its failures into *errs.Error before returning them.
// Callers use the Is* predicates to branch on the kind of failure:
//
//	if errs.IsMissingField(err) {
//	    // a required name or reference was absent
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error.
type ErrKind int

const (
	KindUnknown        ErrKind = iota
	KindMissingField           // required name/column/reference absent or empty
	KindMalformedInput         // value has an unexpected shape
	KindInvalidInput           // bad arguments: missing file, wrong extension, empty document
	KindIO                     // read or write failure
	KindConnection             // cannot reach the database
	KindQuery                  // catalog query failed
)

func (k ErrKind) String() string {
	switch k {
	case KindMissingField:
		return "missing_field"
	case KindMalformedInput:
		return "malformed_input"
	case KindInvalidInput:
		return "invalid_input"
	case KindIO:
		return "io"
	case KindConnection:
		return "connection_failed"
	case KindQuery:
		return "query_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by schemameta subsystems.
type Error struct {
	Kind ErrKind
	// Path locates the offending value, e.g. "tables[1].columns[0].name".
	// Empty when the error is not tied to a document location.
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// MissingField reports a required field that is absent or empty at path.
func MissingField(path string) *Error {
	return &Error{Kind: KindMissingField, Path: path, Message: "required field is missing or empty"}
}

// Malformed reports a value at path whose shape is not what the dialect expects.
func Malformed(path, msg string) *Error {
	return &Error{Kind: KindMalformedInput, Path: path, Message: msg}
}

// IsMissingField reports whether err is a missing required field.
func IsMissingField(err error) bool {
	return kindOf(err) == KindMissingField
}

// IsMalformedInput reports whether err is an input value of unexpected shape.
func IsMalformedInput(err error) bool {
	return kindOf(err) == KindMalformedInput
}

// IsInvalidInput reports whether err was caused by bad arguments from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == KindInvalidInput
}

// IsIO reports whether err is a filesystem read or write failure.
func IsIO(err error) bool {
	return kindOf(err) == KindIO
}

// IsConnectionFailed reports whether err is a database connectivity failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == KindConnection
}

// IsQueryFailed reports whether err is a failed catalog query.
func IsQueryFailed(err error) bool {
	return kindOf(err) == KindQuery
}

func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
