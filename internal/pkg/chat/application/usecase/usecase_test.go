package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	chat "go-courier/internal/pkg/chat/domain"
)

func TestSendMessage_PersistsUnread(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	uc := NewSendMessageUseCase(repo)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "hi",
	})
	req.NoError(err)
	req.NotEmpty(msg.ID)

	stored, ok := repo.get(msg.ID)
	req.True(ok)
	req.False(stored.Read)
	req.Equal("hi", stored.Content)
}

func TestSendMessage_RejectsWhitespaceContent(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	uc := NewSendMessageUseCase(repo)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "   ",
	})
	req.ErrorIs(err, chat.ErrValidation)
	req.Zero(repo.count(), "no record is persisted on validation failure")
}

func TestSendMessage_StoreFailureAborts(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	repo.failNext = true
	uc := NewSendMessageUseCase(repo)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "hi",
	})
	req.ErrorIs(err, ErrPersistence)
}

func TestMarkRead_FlipsOnlyMatchingUnread(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	send := NewSendMessageUseCase(repo)
	ctx := context.Background()

	m1, err := send.Execute(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "one"})
	req.NoError(err)
	m2, err := send.Execute(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "two"})
	req.NoError(err)
	m3, err := send.Execute(ctx, SendMessageInput{SenderID: "bob", ReceiverID: "alice", Content: "reply"})
	req.NoError(err)

	count, err := NewMarkReadUseCase(repo).Execute(ctx, MarkReadInput{SenderID: "alice", ReceiverID: "bob"})
	req.NoError(err)
	req.EqualValues(2, count)

	for _, id := range []string{m1.ID, m2.ID} {
		stored, _ := repo.get(id)
		req.True(stored.Read)
	}
	stored, _ := repo.get(m3.ID)
	req.False(stored.Read, "the opposite direction is untouched")
}

func TestMarkRead_Validation(t *testing.T) {
	_, err := NewMarkReadUseCase(newMemMessageRepository()).
		Execute(context.Background(), MarkReadInput{SenderID: "alice"})
	require.ErrorIs(t, err, chat.ErrValidation)
}

func TestEditMessage_ByOwner(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	ctx := context.Background()

	msg, err := NewSendMessageUseCase(repo).Execute(ctx, SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "helo",
	})
	req.NoError(err)

	updated, err := NewEditMessageUseCase(repo).Execute(ctx, EditMessageInput{
		MessageID: msg.ID, NewContent: "hello", UserID: "alice",
	})
	req.NoError(err)
	req.Equal("hello", updated.Content)
	req.True(updated.IsEdited)
	req.NotNil(updated.UpdatedAt)
	req.Equal("alice", updated.SenderID, "sender is immutable")
}

func TestEditMessage_NonOwnerLeavesRecordUnchanged(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	ctx := context.Background()

	msg, err := NewSendMessageUseCase(repo).Execute(ctx, SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "original",
	})
	req.NoError(err)

	_, err = NewEditMessageUseCase(repo).Execute(ctx, EditMessageInput{
		MessageID: msg.ID, NewContent: "tampered", UserID: "bob",
	})
	req.ErrorIs(err, chat.ErrNotOwner)

	stored, _ := repo.get(msg.ID)
	req.Equal("original", stored.Content)
	req.False(stored.IsEdited)
}

func TestEditMessage_NotFound(t *testing.T) {
	_, err := NewEditMessageUseCase(newMemMessageRepository()).Execute(context.Background(), EditMessageInput{
		MessageID: "missing", NewContent: "x", UserID: "alice",
	})
	require.ErrorIs(t, err, chat.ErrNotFound)
}

func TestEditMessage_EmptyContentRejected(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	ctx := context.Background()

	msg, err := NewSendMessageUseCase(repo).Execute(ctx, SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "keep",
	})
	req.NoError(err)

	_, err = NewEditMessageUseCase(repo).Execute(ctx, EditMessageInput{
		MessageID: msg.ID, NewContent: "  ", UserID: "alice",
	})
	req.ErrorIs(err, chat.ErrValidation)
}

func TestDeleteMessage_ByOwner(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	ctx := context.Background()

	msg, err := NewSendMessageUseCase(repo).Execute(ctx, SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "bye",
	})
	req.NoError(err)

	deleted, err := NewDeleteMessageUseCase(repo).Execute(ctx, DeleteMessageInput{
		MessageID: msg.ID, UserID: "alice",
	})
	req.NoError(err)
	req.Equal("bob", deleted.ReceiverID, "the record is returned for notification targeting")

	found, err := repo.FindByID(ctx, msg.ID)
	req.NoError(err)
	req.Nil(found, "hard delete leaves nothing behind")
}

func TestDeleteMessage_NonOwner(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	ctx := context.Background()

	msg, err := NewSendMessageUseCase(repo).Execute(ctx, SendMessageInput{
		SenderID: "alice", ReceiverID: "bob", Content: "mine",
	})
	req.NoError(err)

	_, err = NewDeleteMessageUseCase(repo).Execute(ctx, DeleteMessageInput{
		MessageID: msg.ID, UserID: "bob",
	})
	req.ErrorIs(err, chat.ErrNotOwner)
	req.Equal(1, repo.count())
}

func TestGetConversation_BothDirectionsAscending(t *testing.T) {
	req := require.New(t)
	repo := newMemMessageRepository()
	send := NewSendMessageUseCase(repo)
	ctx := context.Background()

	_, err := send.Execute(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "bob", Content: "first"})
	req.NoError(err)
	_, err = send.Execute(ctx, SendMessageInput{SenderID: "bob", ReceiverID: "alice", Content: "second"})
	req.NoError(err)
	_, err = send.Execute(ctx, SendMessageInput{SenderID: "alice", ReceiverID: "carol", Content: "other thread"})
	req.NoError(err)

	msgs, err := NewGetConversationUseCase(repo).Execute(ctx, GetConversationInput{UserA: "alice", UserB: "bob"})
	req.NoError(err)
	req.Len(msgs, 2)
	for i := 1; i < len(msgs); i++ {
		req.False(msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
	}
}
