// Package apperr defines typed application errors shared by the service
// wrappers and the HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies failures for consistent HTTP mapping and user messaging.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
)

// Error is a typed application failure. Key, when set, names a catalog
// message to show the user instead of Message.
type Error struct {
	Kind    Kind
	Key     string
	Message string
	Err     error
}

// Error renders the human-readable message.
func (e Error) Error() string {
	if e.Message == "" {
		if e.Err != nil {
			return string(e.Kind) + ": " + e.Err.Error()
		}
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e Error) Unwrap() error { return e.Err }

// E builds a typed Error.
func E(kind Kind, message string) error {
	return Error{Kind: kind, Message: message}
}

// EK builds a typed Error with a localization key.
func EK(kind Kind, key, message string) error {
	return Error{Kind: kind, Key: strings.TrimSpace(key), Message: message}
}

// Wrap attaches a kind to an existing error.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err. Mongo "no documents" maps to not found;
// anything untyped is unknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return KindNotFound
	}
	return KindUnknown
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// LocalizationKey returns the catalog key to show for err. Typed errors
// without an explicit key fall back to "error.<kind>".
func LocalizationKey(err error) string {
	if err == nil {
		return ""
	}
	var appErr Error
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Key) != "" {
		return strings.TrimSpace(appErr.Key)
	}
	return "error." + string(KindOf(err))
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindForStatus maps a backend HTTP status onto a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindInvalidInput
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests, status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return KindUnavailable
	default:
		return KindUnknown
	}
}
