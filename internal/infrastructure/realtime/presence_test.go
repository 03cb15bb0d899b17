package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStatusStore struct {
	mu       sync.Mutex
	online   map[string]bool
	lastSeen map[string]time.Time
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{
		online:   make(map[string]bool),
		lastSeen: make(map[string]time.Time),
	}
}

func (s *fakeStatusStore) SetOnline(_ context.Context, userID string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[userID] = online
	return nil
}

func (s *fakeStatusStore) SetLastSeen(_ context.Context, userID string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen[userID] = t
	return nil
}

func (s *fakeStatusStore) isOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[userID]
}

func (s *fakeStatusStore) hasLastSeen(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lastSeen[userID]
	return ok
}

func decodeStatuses(t *testing.T, payloads [][]byte) []UserStatusEvent {
	t.Helper()
	var out []UserStatusEvent
	for _, p := range payloads {
		var ev UserStatusEvent
		require.NoError(t, json.Unmarshal(p, &ev))
		if ev.Type == EventUserStatus {
			out = append(out, ev)
		}
	}
	return out
}

func TestTracker_Connect_BroadcastsOnlineOnce(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	store := newFakeStatusStore()
	tracker := NewTracker(registry, store)
	ctx := context.Background()

	observer := newTestConn()
	tracker.Connect(ctx, "bob", observer)
	drain(observer) // not interested in bob's own transition here

	a1 := newTestConn()
	tracker.Connect(ctx, "alice", a1)

	statuses := decodeStatuses(t, drain(observer))
	req.Len(statuses, 1, "0->1 transition broadcasts exactly once")
	req.Equal("alice", statuses[0].UserID)
	req.True(statuses[0].IsOnline)
	req.True(store.isOnline("alice"))
	req.Empty(drain(a1), "the transitioning connection is excluded from its own broadcast")

	a2 := newTestConn()
	tracker.Connect(ctx, "alice", a2)
	req.Empty(decodeStatuses(t, drain(observer)), "a second tab opening is not a transition")
}

func TestTracker_Disconnect_BroadcastsOfflineOnLastConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	store := newFakeStatusStore()
	tracker := NewTracker(registry, store)
	ctx := context.Background()

	observer := newTestConn()
	tracker.Connect(ctx, "bob", observer)
	drain(observer)

	a1, a2 := newTestConn(), newTestConn()
	tracker.Connect(ctx, "alice", a1)
	tracker.Connect(ctx, "alice", a2)
	drain(observer)

	tracker.Disconnect(ctx, a1)
	req.Empty(decodeStatuses(t, drain(observer)), "closing one of several tabs stays silent")
	req.True(store.isOnline("alice"))
	req.False(store.hasLastSeen("alice"))

	tracker.Disconnect(ctx, a2)
	statuses := decodeStatuses(t, drain(observer))
	req.Len(statuses, 1)
	req.Equal("alice", statuses[0].UserID)
	req.False(statuses[0].IsOnline)
	req.False(store.isOnline("alice"))
	req.True(store.hasLastSeen("alice"), "lastSeen is persisted on full disconnect")
}

func TestTracker_Disconnect_UnauthenticatedIsSilent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	store := newFakeStatusStore()
	tracker := NewTracker(registry, store)
	ctx := context.Background()

	observer := newTestConn()
	tracker.Connect(ctx, "bob", observer)
	drain(observer)

	// Never bound: the connection closed before authenticating.
	tracker.Disconnect(ctx, newTestConn())
	req.Empty(decodeStatuses(t, drain(observer)))
	req.False(store.hasLastSeen(""))
}
