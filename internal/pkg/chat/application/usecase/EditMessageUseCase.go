package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// EditMessageInput identifies the message, its replacement content, and
// the actor requesting the edit.
type EditMessageInput struct {
	MessageID  string
	NewContent string
	UserID     string
}

// EditMessageUseCase rewrites a message's content. Only the original
// sender may edit; the edit marks the record and stamps updatedAt.
type EditMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewEditMessageUseCase(repo repository.MessageRepository) *EditMessageUseCase {
	return &EditMessageUseCase{Repo: repo}
}

// Execute applies the edit and returns the updated message.
func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (*chat.Message, error) {
	if in.MessageID == "" || in.UserID == "" {
		return nil, fmt.Errorf("%w: messageId and userId are required", chat.ErrValidation)
	}
	content := strings.TrimSpace(in.NewContent)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", chat.ErrValidation)
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

	updated, err := uc.Repo.UpdateContent(ctx, in.MessageID, content, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if updated == nil {
		// Deleted between the lookup and the update.
		return nil, chat.ErrNotFound
	}
	return updated, nil
}
