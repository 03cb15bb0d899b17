package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// DeleteMessageInput identifies the message and the actor requesting the
// delete.
type DeleteMessageInput struct {
	MessageID string
	UserID    string
}

// DeleteMessageUseCase hard-deletes a message. Only the original sender
// may delete. There is no tombstone: an offline peer converges on its
// next full history fetch, which simply omits the row.
type DeleteMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewDeleteMessageUseCase(repo repository.MessageRepository) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo}
}

// Execute removes the message and returns the record as it was, so the
// caller still knows both parties for notification.
func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) (*chat.Message, error) {
	if in.MessageID == "" || in.UserID == "" {
		return nil, fmt.Errorf("%w: messageId and userId are required", chat.ErrValidation)
	}

	msg, err := uc.Repo.FindByID(ctx, in.MessageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msg == nil {
		return nil, chat.ErrNotFound
	}
	if msg.SenderID != in.UserID {
		return nil, chat.ErrNotOwner
	}

	deleted, err := uc.Repo.Delete(ctx, in.MessageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !deleted {
		return nil, chat.ErrNotFound
	}
	return msg, nil
}
