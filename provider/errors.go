package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// Kind classifies a provider-level failure.
type Kind string

const (
	// KindAuth means the vendor rejected the configured credentials.
	KindAuth Kind = "auth"
	// KindProvider means the vendor responded but the response was
	// semantically unusable, e.g. no choices.
	KindProvider Kind = "provider"
	// KindTransport covers network, timeout and serialization failures
	// talking to the vendor.
	KindTransport Kind = "transport"
)

// Error is a provider-level failure. It records which backend failed, how,
// and when; the original cause is preserved for errors.Is/As.
type Error struct {
	Backend   string
	Kind      Kind
	Message   string
	Timestamp strfmt.DateTime
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s error: %s: %v", e.Backend, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Backend, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewAuthError reports rejected or missing credentials for a backend.
func NewAuthError(backend, message string) *Error {
	return &Error{Backend: backend, Kind: KindAuth, Message: message, Timestamp: strfmt.DateTime(time.Now())}
}

// NewProviderError reports a semantically invalid vendor response.
func NewProviderError(backend, message string) *Error {
	return &Error{Backend: backend, Kind: KindProvider, Message: message, Timestamp: strfmt.DateTime(time.Now())}
}

// NewTransportError reports a network-level failure talking to a backend.
func NewTransportError(backend, message string, cause error) *Error {
	return &Error{Backend: backend, Kind: KindTransport, Message: message, Timestamp: strfmt.DateTime(time.Now()), Cause: cause}
}

func isKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return isKind(err, KindAuth) }

// IsProvider reports whether err is a semantically invalid vendor response.
func IsProvider(err error) bool { return isKind(err, KindProvider) }

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// ConfigError reports an invalid construction-time configuration: an unknown
// backend or provider id, a duplicate registration, a missing credential.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Message }

// NewConfigError builds a ConfigError from a format string.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError is returned by a validating provider once every attempt has
// been rejected. Reason is the last rejection reason.
type ValidationError struct {
	Backend  string
	Attempts int
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed after %d attempts: %s", e.Backend, e.Attempts, e.Reason)
}
