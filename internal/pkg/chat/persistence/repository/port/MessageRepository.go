package repository

import (
	"context"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
)

// MessageRepository defines persistence operations over the durable
// message log. FindByID and UpdateContent return (nil, nil) when the id
// is absent; Delete reports whether a row was removed.
type MessageRepository interface {
	Insert(ctx context.Context, m chat.Message) (string, error)
	FindByID(ctx context.Context, id string) (*chat.Message, error)
	UpdateContent(ctx context.Context, id string, content string, updatedAt time.Time) (*chat.Message, error)
	Delete(ctx context.Context, id string) (bool, error)

	// FindConversation returns all messages between the two users, both
	// directions, ordered by timestamp ascending.
	FindConversation(ctx context.Context, userA, userB string) ([]chat.Message, error)

	// MarkRead flips every unread message from senderID to receiverID to
	// read and returns the number of rows updated.
	MarkRead(ctx context.Context, senderID, receiverID string) (int64, error)
}
