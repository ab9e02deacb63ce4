// Package apperr defines the error kinds shared by the domain packages and
// their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindInsufficientStock
	KindOwnership
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindOwnership:
		return "ownership"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a domain failure with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Error() string { return e.Message }

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the status code the API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound, KindValidation, KindInsufficientStock:
		return http.StatusBadRequest
	case KindConflict, KindOwnership:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Describe returns the status and message to expose for err. Internal errors
// never leak their text.
func Describe(err error) (int, string) {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return HTTPStatus(e.Kind), e.Message
	}
	return http.StatusInternalServerError, "internal server error"
}
