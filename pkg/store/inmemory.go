package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store for tests and serverless default mode.
type Memory struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	messages      map[string][]*Message // conversation ID -> ordered log
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]*Message),
	}
}

func (s *Memory) CreateConversation(_ context.Context, title string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	convo := &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[convo.ID] = convo
	s.messages[convo.ID] = []*Message{}

	copied := *convo
	return &copied, nil
}

func (s *Memory) ListConversations(_ context.Context) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conversation, 0, len(s.conversations))
	for _, convo := range s.conversations {
		copied := *convo
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out, nil
}

func (s *Memory) GetConversation(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convo, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}

	copied := *convo
	return &copied, nil
}

func (s *Memory) AppendMessage(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	convo, ok := s.conversations[msg.ConversationID]
	if !ok {
		return ErrNotFound{ID: msg.ConversationID}
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	convo.UpdatedAt = msg.CreatedAt

	copied := *msg
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], &copied)

	return nil
}

func (s *Memory) ListMessages(_ context.Context, conversationID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.messages[conversationID]
	if !ok {
		return nil, ErrNotFound{ID: conversationID}
	}

	out := make([]*Message, 0, len(log))
	for _, msg := range log {
		copied := *msg
		out = append(out, &copied)
	}

	return out, nil
}

func (s *Memory) Close() error { return nil }
