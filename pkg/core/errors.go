package core

import (
	"errors"
	"fmt"
)

// Error is the typed error used across the assistant core.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrCapability indicates a required host feature (capture or playback
	// device API) is missing. Not retryable in the same environment.
	ErrCapability ErrorType = "capability_error"
	// ErrPermission indicates microphone access was denied or the device
	// could not be acquired. Retryable after the user grants access.
	ErrPermission ErrorType = "permission_error"
	// ErrTransport indicates the duplex connection failed or closed
	// abnormally.
	ErrTransport ErrorType = "transport_error"
	// ErrDecode indicates a received audio payload could not be decoded.
	// Non-fatal for the session; only the chunk is lost.
	ErrDecode ErrorType = "decode_error"
	// ErrCredential indicates the remote service rejected the API key.
	ErrCredential ErrorType = "credential_error"
	// ErrAborted marks a user-initiated stop. Never surfaced as a failure.
	ErrAborted ErrorType = "aborted"
	// ErrAPI is a generic remote-service error for the single-shot calls.
	ErrAPI ErrorType = "api_error"
)

// NewCapabilityError creates a capability error.
func NewCapabilityError(message string) *Error {
	return &Error{Type: ErrCapability, Message: message}
}

// NewPermissionError creates a permission error wrapping the device failure.
func NewPermissionError(message string, cause error) *Error {
	return &Error{Type: ErrPermission, Message: message, Cause: cause}
}

// NewTransportError creates a transport error. Code carries the close code
// or status when one is known.
func NewTransportError(message, code string, cause error) *Error {
	return &Error{Type: ErrTransport, Message: message, Code: code, Cause: cause}
}

// NewDecodeError creates a per-chunk decode error.
func NewDecodeError(message string, cause error) *Error {
	return &Error{Type: ErrDecode, Message: message, Cause: cause}
}

// NewCredentialError creates a credential error.
func NewCredentialError(message string) *Error {
	return &Error{Type: ErrCredential, Message: message}
}

// NewAbortedError marks a user-initiated stop.
func NewAbortedError() *Error {
	return &Error{Type: ErrAborted, Message: "stopped by user"}
}

// NewAPIError creates a generic remote API error.
func NewAPIError(message string, cause error) *Error {
	return &Error{Type: ErrAPI, Message: message, Cause: cause}
}

// TypeOf returns the ErrorType of err, or ErrAPI when err is not a typed
// core error.
func TypeOf(err error) ErrorType {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrAPI
}

// IsAborted reports whether err marks a user-initiated stop rather than a
// failure.
func IsAborted(err error) bool {
	return TypeOf(err) == ErrAborted
}

// IsCredential reports whether err should trigger credential reselection
// instead of a generic error display.
func IsCredential(err error) bool {
	return TypeOf(err) == ErrCredential
}
