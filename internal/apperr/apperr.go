package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the action that produced it.
type Kind string

const (
	KindFetch      Kind = "fetch"
	KindSave       Kind = "save"
	KindUpload     Kind = "upload"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
)

// Error is a user-displayable failure caught at an action boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind) + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Fetch(message string, err error) *Error  { return New(KindFetch, message, err) }
func Save(message string, err error) *Error   { return New(KindSave, message, err) }
func Upload(message string, err error) *Error { return New(KindUpload, message, err) }
func Auth(message string, err error) *Error   { return New(KindAuth, message, err) }

// Validation errors are raised locally and never reach a collaborator.
func Validation(message string) *Error { return New(KindValidation, message, nil) }

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
