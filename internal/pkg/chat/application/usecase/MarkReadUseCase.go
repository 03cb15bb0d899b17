package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput identifies the messages to flip: everything unread that
// SenderID wrote to ReceiverID. The caller is the reader, SenderID the
// original author.
type MarkReadInput struct {
	SenderID   string
	ReceiverID string
}

// MarkReadUseCase applies the read receipt to the durable log. The read
// flag only ever transitions false->true; already-read rows are untouched.
type MarkReadUseCase struct {
	Repo repository.MessageRepository
}

func NewMarkReadUseCase(repo repository.MessageRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

// Execute marks all matching unread messages as read and returns how many
// were flipped.
func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (int64, error) {
	if in.SenderID == "" || in.ReceiverID == "" {
		return 0, fmt.Errorf("%w: senderId and receiverId are required", chat.ErrValidation)
	}

	count, err := uc.Repo.MarkRead(ctx, in.SenderID, in.ReceiverID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
