package realtime

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the live connection channel. The names are the
// wire contract; inbound and outbound "message" intentionally share a name
// (inbound is a send request, outbound is a delivery).
const (
	EventAuthenticate  = "authenticate"
	EventMessage       = "message"
	EventReadMessages  = "read_messages"
	EventTyping        = "typing"
	EventEditMessage   = "edit_message"
	EventDeleteMessage = "delete_message"

	EventUsers          = "users"
	EventUserStatus     = "user_status"
	EventMessageSent    = "message_sent"
	EventMessagesRead   = "messages_read"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
	EventError          = "error"
)

// Inbound is the tagged variant decoded from every client frame. Type
// selects the event kind; the remaining fields are per-kind payload and
// are only meaningful for the kinds that define them.
type Inbound struct {
	Type       string `json:"type"`
	Token      string `json:"token,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	Content    string `json:"content,omitempty"`
	MessageID  string `json:"messageId,omitempty"`
	NewContent string `json:"newContent,omitempty"`
	UserID     string `json:"userId,omitempty"`
}

// MessagePayload is the wire shape of a message carried in message /
// message_sent deliveries.
type MessagePayload struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"senderId"`
	ReceiverID string     `json:"receiverId"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Read       bool       `json:"read"`
	IsEdited   bool       `json:"isEdited,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// UserPayload is one entry of the users roster snapshot. Credential
// fields are never part of this shape.
type UserPayload struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

type UsersEvent struct {
	Type  string        `json:"type"`
	Users []UserPayload `json:"users"`
}

type UserStatusEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

type MessageEvent struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

type MessagesReadEvent struct {
	Type       string `json:"type"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	SenderID string `json:"senderId"`
}

type MessageEditedEvent struct {
	Type       string     `json:"type"`
	MessageID  string     `json:"messageId"`
	NewContent string     `json:"newContent"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

type MessageDeletedEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Encode marshals an outbound event. Events are plain structs whose Type
// field must already carry the event kind.
func Encode(event any) ([]byte, error) {
	return json.Marshal(event)
}
