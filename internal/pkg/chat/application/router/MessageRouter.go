package router

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"go-courier/internal/infrastructure/realtime"
	chat "go-courier/internal/pkg/chat/domain"
	"go-courier/internal/pkg/chat/application/usecase"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// MessageRouter is the single authority for "persist, then notify". Both
// the live channel and the REST entry points delegate here, so every
// mutation produces exactly one notification per live connection.
//
// Persistence always completes before any event is emitted. Delivery is
// at-most-once per live connection: a peer with no connection at emission
// time simply misses the event and recovers via its own history fetch.
type MessageRouter struct {
	registry *realtime.Registry

	sendUC     *usecase.SendMessageUseCase
	markReadUC *usecase.MarkReadUseCase
	editUC     *usecase.EditMessageUseCase
	deleteUC   *usecase.DeleteMessageUseCase

	log *logrus.Entry
}

func NewMessageRouter(repo repository.MessageRepository, registry *realtime.Registry) *MessageRouter {
	return &MessageRouter{
		registry:   registry,
		sendUC:     usecase.NewSendMessageUseCase(repo),
		markReadUC: usecase.NewMarkReadUseCase(repo),
		editUC:     usecase.NewEditMessageUseCase(repo),
		deleteUC:   usecase.NewDeleteMessageUseCase(repo),
		log:        logrus.WithField("component", "message_router"),
	}
}

// Send persists a new message, then delivers message_sent to all of the
// sender's live connections (multi-tab sync) and message to all of the
// receiver's. An offline receiver gets nothing live; the persisted row is
// picked up by their next history fetch.
func (r *MessageRouter) Send(ctx context.Context, senderID, receiverID, content string) (*chat.Message, error) {
	msg, err := r.sendUC.Execute(ctx, usecase.SendMessageInput{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	})
	if err != nil {
		return nil, err
	}

	payload := toPayload(*msg)
	r.emitToUser(msg.SenderID, realtime.MessageEvent{Type: realtime.EventMessageSent, Message: payload})
	r.emitToUser(msg.ReceiverID, realtime.MessageEvent{Type: realtime.EventMessage, Message: payload})
	return msg, nil
}

// MarkRead flips all unread messages from senderID to receiverID, then
// tells the original author their messages were seen. Note the naming
// asymmetry: the caller is the reader; senderID is the author who gets
// the messages_read event, and only if they have a live connection.
func (r *MessageRouter) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	count, err := r.markReadUC.Execute(ctx, usecase.MarkReadInput{
		SenderID:   senderID,
		ReceiverID: receiverID,
	})
	if err != nil {
		return 0, err
	}

	r.emitToUser(senderID, realtime.MessagesReadEvent{
		Type:       realtime.EventMessagesRead,
		SenderID:   senderID,
		ReceiverID: receiverID,
	})
	return count, nil
}

// Typing forwards a typing indicator to the receiver's live connections.
// Nothing is persisted and no debouncing happens server-side; the client
// expires its own indicator.
func (r *MessageRouter) Typing(senderID, receiverID string) error {
	if senderID == "" || receiverID == "" {
		return fmt.Errorf("%w: senderId and receiverId are required", chat.ErrValidation)
	}
	r.emitToUser(receiverID, realtime.TypingEvent{Type: realtime.EventTyping, SenderID: senderID})
	return nil
}

// Edit rewrites a message and notifies every live connection of both
// parties, the editor's own other tabs included.
func (r *MessageRouter) Edit(ctx context.Context, messageID, newContent, userID string) (*chat.Message, error) {
	msg, err := r.editUC.Execute(ctx, usecase.EditMessageInput{
		MessageID:  messageID,
		NewContent: newContent,
		UserID:     userID,
	})
	if err != nil {
		return nil, err
	}

	event := realtime.MessageEditedEvent{
		Type:       realtime.EventMessageEdited,
		MessageID:  msg.ID,
		NewContent: msg.Content,
		UpdatedAt:  msg.UpdatedAt,
	}
	r.emitToUser(msg.SenderID, event)
	r.emitToUser(msg.ReceiverID, event)
	return msg, nil
}

// Delete hard-deletes a message and notifies every live connection of
// both parties.
func (r *MessageRouter) Delete(ctx context.Context, messageID, userID string) error {
	msg, err := r.deleteUC.Execute(ctx, usecase.DeleteMessageInput{
		MessageID: messageID,
		UserID:    userID,
	})
	if err != nil {
		return err
	}

	event := realtime.MessageDeletedEvent{Type: realtime.EventMessageDeleted, MessageID: messageID}
	r.emitToUser(msg.SenderID, event)
	r.emitToUser(msg.ReceiverID, event)
	return nil
}

func (r *MessageRouter) emitToUser(userID string, event any) {
	payload, err := realtime.Encode(event)
	if err != nil {
		r.log.WithFields(logrus.Fields{"userId": userID, "error": err}).Error("encode event")
		return
	}
	r.registry.SendToUser(userID, payload)
}

func toPayload(m chat.Message) realtime.MessagePayload {
	return realtime.MessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Timestamp:  m.Timestamp,
		Read:       m.Read,
		IsEdited:   m.IsEdited,
		UpdatedAt:  m.UpdatedAt,
	}
}
