package notify

import (
	"errors"
	"fmt"
)

// ErrAmbiguousTransport is returned when neither SSL nor STARTTLS is
// requested and no port is given; the dispatcher refuses to guess.
var ErrAmbiguousTransport = errors.New("ambiguous transport: set use_ssl, use_starttls, or an explicit port")

// TemplateError indicates a required rendering field is absent.
type TemplateError struct {
	Field string
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error: required field %q is missing", e.Field)
}

// ConnectTimeoutError indicates the SMTP server could not be reached
// within the configured timeout.
type ConnectTimeoutError struct {
	Err  error
	Addr string
}

// Error implements the error interface.
func (e *ConnectTimeoutError) Error() string {
	return fmt.Sprintf("smtp connect to %s timed out: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConnectTimeoutError) Unwrap() error { return e.Err }

// AuthRejectedError indicates the SMTP server refused the credentials.
type AuthRejectedError struct {
	Err error
}

// Error implements the error interface.
func (e *AuthRejectedError) Error() string {
	return fmt.Sprintf("smtp auth rejected: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *AuthRejectedError) Unwrap() error { return e.Err }

// TransportError wraps any other SMTP protocol or connection failure.
type TransportError struct {
	Err   error
	Stage string // "connect", "starttls", "mail", "rcpt", "data", "quit"
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("smtp %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }
