package services

import (
	"errors"
	"strings"
)

// Error kinds. Handlers map them onto HTTP statuses with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("not authorized")
	ErrConflict           = errors.New("conflict")
	ErrUpstream           = errors.New("upstream failure")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error pairs a kind with the message shown to the client. Err, when set, is
// the underlying failure; it shows up in logs but never in responses.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Msg
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Message returns the client-facing text of err, or "" for internal errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
