// ABOUTME: Distinguished error for expired sessions on protected calls
// ABOUTME: Returned as an error value instead of a result so it cannot be ignored

package apierr

import "errors"

// SessionRequiredError is returned when a protected call was rejected with
// 401 and the remote code AUTH_REQUIRED. It is the only error value the
// request pipeline returns; everything else is reported in the result.
type SessionRequiredError struct {
	Message string
}

func (e *SessionRequiredError) Error() string {
	return e.Message
}

// NewSessionRequired builds the signal, defaulting the message.
func NewSessionRequired(msg string) *SessionRequiredError {
	if msg == "" {
		msg = "Authentication required"
	}
	return &SessionRequiredError{Message: msg}
}

// IsSessionRequired reports whether err is, or wraps, a SessionRequiredError.
func IsSessionRequired(err error) bool {
	var target *SessionRequiredError
	return errors.As(err, &target)
}
