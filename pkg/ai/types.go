package ai

import (
	"context"
	"encoding/json"
)

// Message is a single role-tagged turn sent to the language model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Schema declares the JSON document shape a structured completion must
// match. Definition is a raw JSON Schema; responses are validated
// against it before the caller ever sees them.
type Schema struct {
	Name       string
	Definition string
}

// Client is the opaque language-model backend. Complete returns the
// next free-text reply for a role-tagged conversation; CompleteJSON
// requests a response in the model's JSON mode and validates it
// against the declared schema.
type Client interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
	CompleteJSON(ctx context.Context, system string, user string, schema *Schema) (json.RawMessage, error)
}
