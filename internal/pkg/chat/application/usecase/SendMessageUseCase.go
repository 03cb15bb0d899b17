package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	Content    string
}

// SendMessageUseCase persists a new direct message. Validation lives in
// chat.NewMessage so every entry point shares the same rules.
type SendMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewSendMessageUseCase(repo repository.MessageRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

// Execute validates and persists the message, returning it with the
// store-generated id.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(in.SenderID, in.ReceiverID, in.Content)
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.Insert(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id
	return msg, nil
}
