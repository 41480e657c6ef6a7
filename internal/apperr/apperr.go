// Package apperr provides the error taxonomy shared by the content store, the
// session guard and the HTTP layer. Errors are go-errors values; each Kind
// maps to a go-errors category plus a text code, and to a single HTTP status.
// The Message is safe to show to callers while the source error is kept for
// logs only.
package apperr

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies an error for status mapping
type Kind string

const (
	KindValidation    Kind = "validation"
	KindUnauthorized  Kind = "unauthorized"
	KindForbidden     Kind = "forbidden"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindMisconfigured Kind = "misconfigured"
	KindInternal      Kind = "internal"
)

// GenericMessage is returned to callers for internal failures
const GenericMessage = "internal server error"

const (
	codeValidation    = "VALIDATION_FAILED"
	codeUnauthorized  = "UNAUTHORIZED"
	codeForbidden     = "FORBIDDEN"
	codeNotFound      = "NOT_FOUND"
	codeConflict      = "CONFLICT"
	codeMisconfigured = "MISCONFIGURED"
	codeInternal      = "INTERNAL_ERROR"
)

type classification struct {
	category goerrors.Category
	code     string
}

var kinds = map[Kind]classification{
	KindValidation:    {goerrors.CategoryValidation, codeValidation},
	KindUnauthorized:  {goerrors.CategoryAuth, codeUnauthorized},
	KindForbidden:     {goerrors.CategoryAuthz, codeForbidden},
	KindNotFound:      {goerrors.CategoryNotFound, codeNotFound},
	KindConflict:      {goerrors.CategoryConflict, codeConflict},
	KindMisconfigured: {goerrors.CategoryInternal, codeMisconfigured},
	KindInternal:      {goerrors.CategoryInternal, codeInternal},
}

func classify(kind Kind) classification {
	if c, ok := kinds[kind]; ok {
		return c
	}
	return kinds[KindInternal]
}

// New creates an error of the given kind
func New(kind Kind, message string) *goerrors.Error {
	c := classify(kind)
	return goerrors.New(message, c.category).WithTextCode(c.code)
}

// Wrap creates an error of the given kind around a cause
func Wrap(err error, kind Kind, message string) *goerrors.Error {
	if err == nil {
		return New(kind, message)
	}
	c := classify(kind)
	return goerrors.Wrap(err, c.category, message).WithTextCode(c.code)
}

func Validation(message string) *goerrors.Error { return New(KindValidation, message) }

func Unauthorized(message string) *goerrors.Error { return New(KindUnauthorized, message) }

func Forbidden(message string) *goerrors.Error { return New(KindForbidden, message) }

func NotFound(message string) *goerrors.Error { return New(KindNotFound, message) }

func Conflict(message string) *goerrors.Error { return New(KindConflict, message) }

func Misconfigured(message string) *goerrors.Error { return New(KindMisconfigured, message) }

// Internal wraps an unexpected failure; its message never reaches the caller
func Internal(message string, cause error) *goerrors.Error {
	return Wrap(cause, KindInternal, message)
}

// KindOf extracts the Kind from an error chain, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var ge *goerrors.Error
	if !errors.As(err, &ge) {
		return KindInternal
	}
	for kind, c := range kinds {
		if ge.TextCode == c.code {
			return kind
		}
	}
	// errors built elsewhere with go-errors carry no text code of ours
	for _, kind := range []Kind{KindValidation, KindUnauthorized, KindForbidden, KindNotFound, KindConflict} {
		if goerrors.IsCategory(err, kinds[kind].category) {
			return kind
		}
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its response status
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that may be shown to a caller.
// Internal failures and foreign errors collapse to GenericMessage so paths and
// OS error details never leave the process.
func PublicMessage(err error) string {
	var ge *goerrors.Error
	if !errors.As(err, &ge) || KindOf(err) == KindInternal {
		return GenericMessage
	}
	return ge.Message
}
