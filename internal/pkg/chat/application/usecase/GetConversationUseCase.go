package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// GetConversationInput names the two parties of the conversation.
type GetConversationInput struct {
	UserA string
	UserB string
}

// GetConversationUseCase fetches the full message history between two
// users, both directions, timestamp ascending.
type GetConversationUseCase struct {
	Repo repository.MessageRepository
}

func NewGetConversationUseCase(repo repository.MessageRepository) *GetConversationUseCase {
	return &GetConversationUseCase{Repo: repo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, in GetConversationInput) ([]chat.Message, error) {
	if in.UserA == "" || in.UserB == "" {
		return nil, fmt.Errorf("%w: senderId and receiverId are required", chat.ErrValidation)
	}

	msgs, err := uc.Repo.FindConversation(ctx, in.UserA, in.UserB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
