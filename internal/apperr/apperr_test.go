package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestRemoteErrorMessage(t *testing.T) {
	err := &RemoteError{Op: "get clients", Message: "unexpected status", StatusCode: 503}
	want := "get clients: unexpected status (status 503)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &RemoteError{Op: "get clients", Message: "connection refused"}
	want = "get clients: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestUserTextPrefersRemoteError(t *testing.T) {
	err := fmt.Errorf("load thread: %w", &RemoteError{
		Op:          "get",
		Message:     "status 500",
		UserMessage: UserMsgServer,
		StatusCode:  500,
	})
	if got := UserText(err); got != UserMsgServer {
		t.Errorf("UserText() = %q, want %q", got, UserMsgServer)
	}
}

func TestUserTextFallback(t *testing.T) {
	if got := UserText(errors.New("boom")); got != UserMsgUnexpected {
		t.Errorf("UserText() = %q, want %q", got, UserMsgUnexpected)
	}
}

func TestIsNotFoundDistinctFromRemote(t *testing.T) {
	nf := fmt.Errorf("lookup: %w", &NotFoundError{Kind: "client", ID: "doesNotExist"})
	if !IsNotFound(nf) {
		t.Error("IsNotFound() = false for wrapped NotFoundError")
	}
	re := &RemoteError{Op: "get", Message: "status 500", StatusCode: 500}
	if IsNotFound(re) {
		t.Error("IsNotFound() = true for RemoteError")
	}
}
