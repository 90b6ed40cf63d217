package client

import (
	"encoding/json"
	"errors"
	"strings"
)

// GenericErrorMessage is shown when the server gives no usable message.
const GenericErrorMessage = "Something went wrong. Please try again later."

// ErrTransport marks failures that happened before an HTTP status was known.
var ErrTransport = errors.New("transport failure")

// APIError is the single error type returned by Request. StatusCode is 0
// for transport failures.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NormalizeError decides the user-facing text for an error payload.
// A string message is used verbatim, a non-empty array of messages is
// joined with ", ", anything else yields fallback.
func NormalizeError(payload json.RawMessage, fallback string) string {
	if len(payload) == 0 {
		return fallback
	}
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Message) == 0 {
		return fallback
	}
	if string(body.Message) == "null" {
		return fallback
	}

	var s string
	if err := json.Unmarshal(body.Message, &s); err == nil {
		return s
	}

	var list []any
	if err := json.Unmarshal(body.Message, &list); err == nil && len(list) > 0 {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case string:
				parts = append(parts, v)
			default:
				raw, _ := json.Marshal(v)
				parts = append(parts, string(raw))
			}
		}
		return strings.Join(parts, ", ")
	}

	return fallback
}
