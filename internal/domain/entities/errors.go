package entities

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can tell fatal conditions from
// per-file ones without inspecting messages
type ErrorKind string

// Error kinds
const (
	KindUnknown     ErrorKind = "unknown"
	KindUserInput   ErrorKind = "user_input"
	KindParse       ErrorKind = "parse"
	KindNetwork     ErrorKind = "network"
	KindConsistency ErrorKind = "consistency"
	KindConfig      ErrorKind = "config"
	KindIO          ErrorKind = "io"
	KindSignature   ErrorKind = "signature"
)

// Fatal reports whether an error of this kind aborts the whole run by default.
// KindConsistency is not fatal here; the orchestrator's MismatchPolicy decides.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindNetwork, KindSignature, KindConsistency:
		return false
	default:
		return true
	}
}

// Error is a classified error, optionally tied to a file path
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

// NewError creates a classified error
func NewError(kind ErrorKind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so errors.Is(err, &Error{Kind: KindParse}) works
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Path == "" && t.Err == nil
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Errorf builds a classified error from a format string
func Errorf(kind ErrorKind, path, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Path: path, Op: fmt.Sprintf(format, args...)}
}
