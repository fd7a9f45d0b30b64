package ai

import (
	"encoding/json"
	"fmt"
)

// ExternalServiceError indicates the language-model call failed at the
// transport level or came back with no content. Callers decide whether
// to retry or surface the failure.
type ExternalServiceError struct {
	Err error
}

func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("language model unavailable: %v", e.Err)
	}
	return "language model unavailable"
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// MalformedResponseError indicates the model returned content that is
// not valid JSON or does not match the requested schema. This is a
// processing failure distinct from an outage and is never silently
// coerced.
type MalformedResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
