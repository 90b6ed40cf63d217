package state

import (
	"errors"

	"github.com/campus-events/tui/internal/client"
)

var (
	// ErrBusy is returned when a command starts while another is pending.
	ErrBusy = errors.New("another operation is in progress")
	// ErrSignedOut is returned by commands that need a session.
	ErrSignedOut = errors.New("not signed in")
	// ErrUnknownRecord is returned when an id is not in the snapshot.
	ErrUnknownRecord = errors.New("record not in snapshot")
)

// Validation messages shown when a client-side precondition fails.
const (
	MsgSelectStudentSubscribe   = "Select a student to subscribe."
	MsgSelectStudentUnsubscribe = "Select a student to unsubscribe."
	MsgEventAlreadyCanceled     = "This event is already canceled."
	MsgEventCanceledNoSubscribe = "Canceled events do not accept subscriptions."
	MsgSignInFirst              = "Sign in first."
)

// ValidationError reports a client-side precondition that was not met.
// It never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// errorMessage picks the text routed into the status line.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if errors.Is(err, ErrSignedOut) {
		return MsgSignInFirst
	}
	return err.Error()
}
