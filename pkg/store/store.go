// Package store persists conversations and their message logs.
package store

import (
	"context"
	"time"

	"github.com/twakeham/pathfinder/pkg/chat"
)

// Conversation is a named message log owned by the server.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a persisted log entry. Unlike the ephemeral chat.Message it
// remembers which conversation and model produced it, and the token
// usage the backend reported (zero when unreported).
type Message struct {
	ID               string       `json:"id"`
	ConversationID   string       `json:"conversation_id"`
	Role             chat.Role    `json:"role"`
	Variant          chat.Variant `json:"variant,omitempty"`
	Content          string       `json:"content"`
	Model            string       `json:"model,omitempty"`
	PromptTokens     int          `json:"prompt_tokens,omitempty"`
	CompletionTokens int          `json:"completion_tokens,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Chat strips the persistence fields, leaving the log entry the turn
// reconstructor consumes.
func (m *Message) Chat() chat.Message {
	return chat.Message{
		ID:      m.ID,
		Role:    m.Role,
		Variant: m.Variant,
		Content: m.Content,
	}
}

// Log converts a persisted message slice into a chat log in the same
// order.
func Log(messages []*Message) []chat.Message {
	log := make([]chat.Message, 0, len(messages))
	for _, m := range messages {
		log = append(log, m.Chat())
	}
	return log
}

// Store persists conversations and messages. Implementations assign IDs
// and timestamps on insert and keep message order stable per
// conversation (insertion order).
type Store interface {
	// CreateConversation creates a conversation with the given title
	// (may be empty).
	CreateConversation(ctx context.Context, title string) (*Conversation, error)

	// ListConversations returns all conversations, most recently
	// updated first.
	ListConversations(ctx context.Context) ([]*Conversation, error)

	// GetConversation returns a conversation by ID, or ErrNotFound.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// AppendMessage appends a message to its conversation's log, fills
	// in ID and CreatedAt, and bumps the conversation's UpdatedAt.
	// Returns ErrNotFound when the conversation doesn't exist.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages returns a conversation's log in insertion order, or
	// ErrNotFound when the conversation doesn't exist.
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a conversation doesn't exist.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "conversation not found"
	}

	return "conversation not found: " + e.ID
}
