// Package provider abstracts the assistant backends that generate
// responses for a conversation history.
package provider

import (
	"context"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/params"
)

// Reply is one assistant response. Token counts are zero when the
// backend does not report usage.
type Reply struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Provider generates one assistant reply from a conversation history.
type Provider interface {
	// Name identifies the backend ("echo", "ollama") for logging and
	// the ?provider= override.
	Name() string

	// Chat returns the assistant reply for the given history.
	Chat(ctx context.Context, history []chat.Message, model string, p params.Params) (Reply, error)
}
