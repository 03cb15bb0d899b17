package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Typed failures for the messaging core. Callers dispatch with errors.Is;
// all of them are local to the triggering event and never close the
// connection.
var (
	ErrValidation = errors.New("invalid message data")
	ErrNotFound   = errors.New("message not found")
	ErrNotOwner   = errors.New("not the message owner")
)

// Message is one persisted direct-message record. SenderID and ReceiverID
// are immutable after creation; Read only ever transitions false->true.
type Message struct {
	ID         string     `db:"id"`
	SenderID   string     `db:"sender_id"`
	ReceiverID string     `db:"receiver_id"`
	Content    string     `db:"content"`
	Timestamp  time.Time  `db:"timestamp"`
	Read       bool       `db:"read"`
	IsEdited   bool       `db:"is_edited"`
	UpdatedAt  *time.Time `db:"updated_at"`
}

// NewMessage validates and constructs an unread message. Content is
// trimmed; whitespace-only content is rejected.
func NewMessage(senderID, receiverID, content string) (*Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, fmt.Errorf("%w: senderId and receiverId are required", ErrValidation)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	return &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now(),
		Read:       false,
	}, nil
}
