// Package chainerr defines the error-kind taxonomy shared by the server
// and the enforcement hook, so tool handlers can classify a failure once
// and let the dispatcher pick the right user-facing marker.
package chainerr

import "errors"

// Kind identifies a class of failure a tool handler can report.
type Kind string

const (
	InvalidInput   Kind = "INVALID_INPUT"
	PathUnsafe     Kind = "PATH_UNSAFE"
	ScopeMissing   Kind = "SCOPE_MISSING"
	SyntaxFail     Kind = "SYNTAX_FAIL"
	Timeout        Kind = "TIMEOUT"
	IOFail         Kind = "IO_FAIL"
	SubprocessFail Kind = "SUBPROCESS_FAIL"
	DBFail         Kind = "DB_FAIL"
	HTTPFail       Kind = "HTTP_FAIL"
	AuthRequired   Kind = "AUTH_REQUIRED"
	SnapshotStale  Kind = "SNAPSHOT_STALE"
	BlockedByAlert Kind = "BLOCKED_BY_ALERT"
	UnknownTool    Kind = "UNKNOWN_TOOL"
	Internal       Kind = "INTERNAL"
)

// Error wraps an underlying error with a Kind so handlers and the
// dispatcher can branch on classification without string matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, else Internal.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Internal
}
