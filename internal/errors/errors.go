package errors

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindUnknown       Kind = "unknown"
)

// Error carries a kind for status mapping. Error() returns only the
// caller-facing message so it can be placed in a response envelope as is.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// Wrap tags err with kind. An err that is already an *Error keeps its kind.
// The message is left empty so Error() reports the cause's text.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	return &Error{
		Kind:  kind,
		Op:    op,
		Cause: err,
	}
}

func Validation(op, message string) *Error {
	return New(KindValidation, op, message)
}

func Configuration(op, message string) *Error {
	return New(KindConfiguration, op, message)
}

func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf maps an error to the HTTP status reported to callers.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
