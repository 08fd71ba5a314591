package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chatty/internal/app/message"
	"chatty/internal/pkg/randx"
)

// MessageStore is the pgx-backed implementation of message.Store.
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore constructs a MessageStore over the given pool.
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// Create inserts the message and fills its ID and CreatedAt from the database.
func (s *MessageStore) Create(ctx context.Context, msg *message.Message) error {
	id := randx.NewID()

	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, text, file_url, file_type, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		id, msg.SenderID, msg.ReceiverID, msg.Text, msg.FileURL, string(msg.FileType), msg.FileName,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// Conversation returns every message between the two users, oldest first.
func (s *MessageStore) Conversation(ctx context.Context, userA, userB string) ([]message.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, text, file_url, file_type, file_name, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at`, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	defer rows.Close()

	messages := []message.Message{}
	for rows.Next() {
		var m message.Message
		var fileType string
		err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.FileURL, &fileType, &m.FileName, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.FileType = message.Kind(fileType)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return messages, nil
}
