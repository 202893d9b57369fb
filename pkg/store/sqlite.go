package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/twakeham/pathfinder/pkg/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id                TEXT PRIMARY KEY,
	conversation_id   TEXT NOT NULL REFERENCES conversations(id),
	seq               INTEGER NOT NULL,
	role              TEXT NOT NULL,
	variant           TEXT NOT NULL DEFAULT '',
	content           TEXT NOT NULL DEFAULT '',
	model             TEXT NOT NULL DEFAULT '',
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, seq);
`

// SQLite is a Store backed by a single SQLite database file. Use
// ":memory:" for an ephemeral database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	now := time.Now().UTC()
	convo := &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		convo.ID, convo.Title, convo.CreatedAt, convo.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	return convo, nil
}

func (s *SQLite) ListConversations(ctx context.Context) ([]*Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	out := []*Conversation{}
	for rows.Next() {
		convo := &Conversation{}
		if err := rows.Scan(&convo.ID, &convo.Title, &convo.CreatedAt, &convo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, convo)
	}

	return out, rows.Err()
}

func (s *SQLite) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	convo := &Conversation{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&convo.ID, &convo.Title, &convo.CreatedAt, &convo.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	return convo, nil
}

func (s *SQLite) AppendMessage(ctx context.Context, msg *Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM conversations WHERE id = ?)`, msg.ConversationID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking conversation: %w", err)
	}
	if !exists {
		return ErrNotFound{ID: msg.ConversationID}
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, seq, role, variant, content, model, prompt_tokens, completion_tokens, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?), ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.ConversationID,
		string(msg.Role), string(msg.Variant), msg.Content, msg.Model,
		msg.PromptTokens, msg.CompletionTokens, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		msg.CreatedAt, msg.ConversationID,
	)
	if err != nil {
		return fmt.Errorf("touching conversation: %w", err)
	}

	return tx.Commit()
}

func (s *SQLite) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, variant, content, model, prompt_tokens, completion_tokens, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY seq ASC`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	out := []*Message{}
	for rows.Next() {
		msg := &Message{}
		var role, variant string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &variant, &msg.Content, &msg.Model,
			&msg.PromptTokens, &msg.CompletionTokens, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = chat.Role(role)
		msg.Variant = chat.Variant(variant)
		out = append(out, msg)
	}

	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
