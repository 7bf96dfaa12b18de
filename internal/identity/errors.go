package identity

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Error codes reported by identity providers.
const (
	CodeEmailAlreadyInUse    = "email-already-in-use"
	CodeNetworkRequestFailed = "network-request-failed"
	CodeInvalidCredential    = "invalid-credential"
	CodeUserNotFound         = "user-not-found"
	CodeInvalidEmail         = "invalid-email"
	CodeWeakPassword         = "weak-password"
	CodeExpiredActionCode    = "expired-action-code"
	CodeInvalidActionCode    = "invalid-action-code"
	CodeUnknown              = "unknown"
)

// ErrNoCurrentUser is returned by operations that need a signed-in identity.
var ErrNoCurrentUser = errors.New("no signed-in user")

// Error is a provider failure carrying a distinguishable code.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "auth/" + e.Code
	}
	return fmt.Sprintf("auth/%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the provider code from err. Transport failures that were
// never classified by a provider are reported as network-request-failed.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var ierr *Error
	if errors.As(err, &ierr) {
		return ierr.Code
	}
	if isNetworkError(err) {
		return CodeNetworkRequestFailed
	}
	return CodeUnknown
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
