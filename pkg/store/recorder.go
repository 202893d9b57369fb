package store

import "context"

// Recorder appends a live session's messages to one conversation, so an
// interactive chat leaves the same log the server writes.
type Recorder struct {
	store          Store
	conversationID string
}

// NewRecorder creates the conversation the session records into.
func NewRecorder(ctx context.Context, s Store, title string) (*Recorder, error) {
	convo, err := s.CreateConversation(ctx, title)
	if err != nil {
		return nil, err
	}

	return &Recorder{store: s, conversationID: convo.ID}, nil
}

// ConversationID identifies the conversation being recorded.
func (r *Recorder) ConversationID() string {
	return r.conversationID
}

// Record appends one message to the session's conversation, overwriting
// msg.ConversationID.
func (r *Recorder) Record(ctx context.Context, msg *Message) error {
	msg.ConversationID = r.conversationID
	return r.store.AppendMessage(ctx, msg)
}
