package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories surfaced by the client.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindRemote
	KindMalformedResponse
	KindValidation
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK"
	case KindRemote:
		return "REMOTE"
	case KindMalformedResponse:
		return "MALFORMED_RESPONSE"
	case KindValidation:
		return "VALIDATION"
	case KindAuth:
		return "AUTH"
	default:
		return "UNKNOWN"
	}
}

// AuthReason refines KindAuth errors.
type AuthReason string

const (
	AuthInvalidCredentials AuthReason = "INVALID_CREDENTIALS"
	AuthNetwork            AuthReason = "NETWORK"
	AuthMalformedResponse  AuthReason = "MALFORMED_RESPONSE"
	AuthRefreshFailed      AuthReason = "REFRESH_FAILED"
	AuthNoSession          AuthReason = "NO_SESSION"
)

// MalformedMessage is the message carried by every KindMalformedResponse error.
const MalformedMessage = "malformed response"

// Error standardizes client failures.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Reason     AuthReason
	Entity     string
	Field      string
	Err        error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindRemote:
		msg = fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
	case KindAuth:
		msg = fmt.Sprintf("auth error %s: %s", e.Reason, e.Message)
	case KindValidation:
		msg = fmt.Sprintf("invalid %s: %s", e.Entity, e.Message)
	default:
		msg = e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewNetworkError marks a request that never reached the server or never got a response.
func NewNetworkError(err error) error {
	return &Error{Kind: KindNetwork, Message: "network request failed", Err: err}
}

// NewRemoteError marks a non-2xx response.
func NewRemoteError(status int, message string) error {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: KindRemote, StatusCode: status, Message: message}
}

// NewMalformedResponse marks a 2xx response whose body could not be decoded.
func NewMalformedResponse(err error) error {
	return &Error{Kind: KindMalformedResponse, StatusCode: 0, Message: MalformedMessage, Err: err}
}

// NewValidationError marks a decoded entity missing a required field.
func NewValidationError(entity, field string) error {
	return &Error{
		Kind:    KindValidation,
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf("missing required field %q", field),
	}
}

// NewAuthError builds a KindAuth error.
func NewAuthError(reason AuthReason, message string, cause error) error {
	if message == "" {
		message = string(reason)
	}
	return &Error{Kind: KindAuth, Reason: reason, Message: message, Err: cause}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsAuthReason reports whether err is a KindAuth error with the given reason.
func IsAuthReason(err error, reason AuthReason) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindAuth && appErr.Reason == reason
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindRemote && appErr.StatusCode == http.StatusUnauthorized
}

// UserMessage renders err as a short, human-readable sentence.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	appErr, ok := As(err)
	if !ok {
		return "Something went wrong. Please try again."
	}
	switch appErr.Kind {
	case KindNetwork:
		return "Cannot reach the server. Check your connection and try again."
	case KindRemote:
		if appErr.StatusCode >= http.StatusInternalServerError {
			return fmt.Sprintf("The server failed to handle the request (%d).", appErr.StatusCode)
		}
		return fmt.Sprintf("Request rejected: %s", appErr.Message)
	case KindMalformedResponse:
		return "The server sent a response that could not be read."
	case KindValidation:
		return fmt.Sprintf("The server sent an incomplete %s (missing %s).", appErr.Entity, appErr.Field)
	case KindAuth:
		switch appErr.Reason {
		case AuthInvalidCredentials:
			return "Invalid username or password."
		case AuthNetwork:
			return "Cannot reach the server to sign in."
		case AuthMalformedResponse:
			return "The sign-in response could not be read."
		case AuthRefreshFailed:
			return "Your session has expired. Please sign in again."
		case AuthNoSession:
			return "You are not signed in."
		}
		return "Authentication failed."
	}
	return "Something went wrong. Please try again."
}
