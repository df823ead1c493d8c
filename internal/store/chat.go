package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fitdesert/fitdesert/internal/model"
)

type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

func scanChatMessage(scanner interface{ Scan(...any) error }) (*model.ChatMessage, error) {
	var m model.ChatMessage
	err := scanner.Scan(&m.ID, &m.UserID, &m.Role, &m.Message, &m.Timestamp)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const chatCols = `id, user_id, role, message, timestamp`

func (s *ChatStore) Create(ctx context.Context, userID, role, message string) (*model.ChatMessage, error) {
	id := newID("chat")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, message) VALUES (?, ?, ?, ?)`,
		id, userID, role, message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+chatCols+` FROM chat_messages WHERE id = ?`, id)
	return scanChatMessage(row)
}

// ListByUser returns the user's conversation, oldest first.
func (s *ChatStore) ListByUser(ctx context.Context, userID string, limit int) ([]*model.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chatCols+` FROM chat_messages WHERE user_id = ?
		 ORDER BY timestamp, rowid LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.ChatMessage
	for rows.Next() {
		m, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
