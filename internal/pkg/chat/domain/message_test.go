package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	req := require.New(t)

	msg, err := NewMessage("alice", "bob", "  hello  ")
	req.NoError(err)
	req.Equal("hello", msg.Content, "content is trimmed")
	req.False(msg.Read, "new messages start unread")
	req.False(msg.IsEdited)
	req.Nil(msg.UpdatedAt)
	req.False(msg.Timestamp.IsZero())
}

func TestNewMessage_Validation(t *testing.T) {
	tests := []struct {
		name       string
		senderID   string
		receiverID string
		content    string
	}{
		{"missing sender", "", "bob", "hi"},
		{"missing receiver", "alice", "", "hi"},
		{"empty content", "alice", "bob", ""},
		{"whitespace-only content", "alice", "bob", "   \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMessage(tt.senderID, tt.receiverID, tt.content)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}
