package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
)

// memMessageRepository is an in-memory MessageRepository used across the
// use case tests. failNext forces the next call to fail, simulating a
// store outage.
type memMessageRepository struct {
	mu       sync.Mutex
	seq      int
	messages map[string]chat.Message
	failNext bool
}

var errStoreDown = errors.New("store down")

func newMemMessageRepository() *memMessageRepository {
	return &memMessageRepository{messages: make(map[string]chat.Message)}
}

func (r *memMessageRepository) checkFail() error {
	if r.failNext {
		r.failNext = false
		return errStoreDown
	}
	return nil
}

func (r *memMessageRepository) Insert(_ context.Context, m chat.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFail(); err != nil {
		return "", err
	}
	r.seq++
	m.ID = "msg-" + strconv.Itoa(r.seq)
	r.messages[m.ID] = m
	return m.ID, nil
}

func (r *memMessageRepository) FindByID(_ context.Context, id string) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFail(); err != nil {
		return nil, err
	}
	m, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memMessageRepository) UpdateContent(_ context.Context, id string, content string, updatedAt time.Time) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFail(); err != nil {
		return nil, err
	}
	m, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	m.Content = content
	m.IsEdited = true
	m.UpdatedAt = &updatedAt
	r.messages[id] = m
	return &m, nil
}

func (r *memMessageRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFail(); err != nil {
		return false, err
	}
	if _, ok := r.messages[id]; !ok {
		return false, nil
	}
	delete(r.messages, id)
	return true, nil
}

func (r *memMessageRepository) FindConversation(_ context.Context, userA, userB string) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFail(); err != nil {
		return nil, err
	}
	var out []chat.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	// Timestamp-ascending, matching the store contract.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Timestamp.Before(out[j-1].Timestamp); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (r *memMessageRepository) MarkRead(_ context.Context, senderID, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkFail(); err != nil {
		return 0, err
	}
	var count int64
	for id, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			r.messages[id] = m
			count++
		}
	}
	return count, nil
}

func (r *memMessageRepository) get(id string) (chat.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	return m, ok
}

func (r *memMessageRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
