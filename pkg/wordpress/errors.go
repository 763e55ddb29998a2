package wordpress

import (
	"errors"
	"fmt"
	"net"
)

// ErrAuthentication indicates the site rejected the application password
// (HTTP 401). Never retried; aborts the whole site sync.
var ErrAuthentication = errors.New("wordpress: invalid credentials")

// ErrNotFound indicates the plugin namespace or form does not exist on the
// remote site (HTTP 404). Never retried.
var ErrNotFound = errors.New("wordpress: not found")

// authError and notFoundError attach the failing operation to the
// package-level sentinels so errors.Is keeps working on wrapped values.
type authError struct{ op string }

func (e *authError) Error() string { return fmt.Sprintf("wordpress: %s: invalid credentials", e.op) }
func (e *authError) Unwrap() error { return ErrAuthentication }

type notFoundError struct{ op string }

func (e *notFoundError) Error() string { return fmt.Sprintf("wordpress: %s: not found", e.op) }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

// ConnectivityError wraps a transport-level failure (connection refused,
// DNS, timeout). These are the retryable errors.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("wordpress: %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a timeout rather than
// a refused or dropped connection.
func (e *ConnectivityError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// StatusError is an unexpected HTTP status from the remote site. 5xx codes
// are treated as transient and retried; everything else is terminal.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wordpress: %s: HTTP %d", e.Op, e.Code)
}

// MalformedResponseError is a response body that could not be decoded as
// the expected structure. Scoped to the single call that produced it and
// never retried.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("wordpress: %s: undecodable response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is transient per the retry policy:
// connectivity failures and 5xx statuses. Auth failures, 404s and
// undecodable payloads are terminal.
func IsRetryable(err error) bool {
	var ce *ConnectivityError
	if errors.As(err, &ce) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 && se.Code < 600
	}
	return false
}

// ErrorMessage converts a client error into the short operator-facing
// message used in sync results and diagnostics.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrAuthentication):
		return "Invalid credentials"
	case errors.Is(err, ErrNotFound):
		return "Forms plugin not active"
	}
	var ce *ConnectivityError
	if errors.As(err, &ce) {
		if ce.Timeout() {
			return "Connection timeout"
		}
		return "Could not connect to site"
	}
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("HTTP %d", se.Code)
	}
	var me *MalformedResponseError
	if errors.As(err, &me) {
		return "Invalid JSON response from site"
	}
	return err.Error()
}
