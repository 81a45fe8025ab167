package api

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// DefaultMessage is reported when the server gives no message of its own.
const DefaultMessage = "request failed"

// Kind classifies a failed request.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidCredentials is a 401 or 403.
	KindInvalidCredentials
	// KindValidation is a rejected payload (400, 409, 422) or a local empty-check.
	KindValidation
	// KindNetwork is a transport failure: DNS, refused connection, timeout.
	KindNetwork
	// KindServer is any other non-2xx, or an undecodable 2xx body.
	KindServer
	// KindCanceled means the caller's context ended first.
	KindCanceled
	// KindSuperseded means a newer session operation replaced this one.
	KindSuperseded
)

// String returns the kebab-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid-credentials"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindCanceled:
		return "canceled"
	case KindSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind render by name in JSON and YAML output
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindForStatus maps a non-2xx status code to a Kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindInvalidCredentials
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

// Error is a failed API request.
type Error struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	Kind       Kind
	// Message is the server's message or DefaultMessage.
	Message   string
	RequestID string
	Cause     error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("api error (%s): %s", e.Kind, msg)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error (status %d, request_id %s): %s", e.StatusCode, e.RequestID, msg)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, msg)
}

// Unwrap returns the transport error, if any
func (e *Error) Unwrap() error {
	return e.Cause
}

// MessageOf returns the user-facing message for err: the server's message
// for an *Error, DefaultMessage for anything else.
func MessageOf(err error) string {
	var apiErr *Error
	if stderrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return DefaultMessage
}

// KindOf returns the Kind of err, KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}
