// Package apperr defines the error taxonomy shared by the gateway,
// the directory cache and the conversation assembler. Every remote
// failure carries a user-facing message separate from its diagnostic
// text; only the user-facing message ever reaches the notification
// surface.
package apperr

import (
	"errors"
	"fmt"
)

// User-facing messages. Diagnostic messages are logged, never shown.
const (
	UserMsgServer     = "The server had a problem. Please try again later."
	UserMsgConnection = "Could not reach the server. Check your internet connection."
	UserMsgUnexpected = "Something went wrong. Please try again."
	UserMsgOffline    = "You appear to be offline."
)

// RemoteError is any transport or HTTP-level failure talking to the
// remote data source. StatusCode is zero when the failure happened
// before an HTTP response existed (DNS, connection refused, offline).
type RemoteError struct {
	Op          string
	Message     string
	UserMessage string
	StatusCode  int
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NotFoundError is a lookup miss, distinct from any transport failure.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UserText returns the user-facing message for err, falling back to a
// generic message when err carries none.
func UserText(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.UserMessage != "" {
		return re.UserMessage
	}
	return UserMsgUnexpected
}
