package task

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	qport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	userport "go-courier/internal/repository/port"
)

type captureServer struct {
	handlers map[string]qport.Handler
}

func (s *captureServer) Register(taskType string, h qport.Handler) {
	if s.handlers == nil {
		s.handlers = make(map[string]qport.Handler)
	}
	s.handlers[taskType] = h
}

func (s *captureServer) Run(ctx context.Context) error  { <-ctx.Done(); return nil }
func (s *captureServer) Stop(ctx context.Context) error { return nil }

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]userport.User
}

func newMemUserRepo(users ...userport.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]userport.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u userport.User) (string, error) {
	return "", nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*userport.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepo) FindByEmail(context.Context, string) (*userport.User, error) {
	return nil, nil
}

func (r *memUserRepo) FindAll(context.Context) ([]userport.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]userport.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) SetOnline(_ context.Context, id string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.IsOnline = online
	r.users[id] = u
	return nil
}

func (r *memUserRepo) SetLastSeen(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.LastSeen = &t
	r.users[id] = u
	return nil
}

type nopConn struct{}

func (nopConn) WriteMessage(int, []byte) error                  { return nil }
func (nopConn) WriteControl(int, []byte, time.Time) error       { return nil }
func (nopConn) SetWriteDeadline(time.Time) error                { return nil }
func (nopConn) Close() error                                    { return nil }

func TestPresenceReconcile_ResetsStaleFlagsOnly(t *testing.T) {
	req := require.New(t)

	// Alice is genuinely online; Bob's flag is stale from a crash; Carol
	// is offline and clean.
	users := newMemUserRepo(
		userport.User{ID: "alice", IsOnline: true},
		userport.User{ID: "bob", IsOnline: true},
		userport.User{ID: "carol", IsOnline: false},
	)
	registry := realtime.NewRegistry()
	registry.Bind("alice", realtime.NewConnection(nopConn{}))

	srv := &captureServer{}
	RegisterPresenceReconcileTask(srv, users, registry)
	handler := srv.handlers[PresenceReconcileTaskType]
	req.NotNil(handler)

	payload, err := json.Marshal(PresenceReconcilePayload{RequestedAt: time.Now()})
	req.NoError(err)
	req.NoError(handler(context.Background(), qport.Task{Type: PresenceReconcileTaskType, Payload: payload}))

	a, _ := users.FindByID(context.Background(), "alice")
	req.True(a.IsOnline, "a user with a live connection is untouched")

	b, _ := users.FindByID(context.Background(), "bob")
	req.False(b.IsOnline, "the stale flag is reset")
	req.NotNil(b.LastSeen)

	c, _ := users.FindByID(context.Background(), "carol")
	req.False(c.IsOnline)
	req.Nil(c.LastSeen, "already-clean records are untouched")
}

func TestPresenceReconcile_Idempotent(t *testing.T) {
	req := require.New(t)
	users := newMemUserRepo(userport.User{ID: "bob", IsOnline: true})
	registry := realtime.NewRegistry()

	srv := &captureServer{}
	RegisterPresenceReconcileTask(srv, users, registry)
	handler := srv.handlers[PresenceReconcileTaskType]

	payload, err := json.Marshal(PresenceReconcilePayload{RequestedAt: time.Now()})
	req.NoError(err)
	req.NoError(handler(context.Background(), qport.Task{Payload: payload}))

	b, _ := users.FindByID(context.Background(), "bob")
	first := *b.LastSeen

	req.NoError(handler(context.Background(), qport.Task{Payload: payload}))
	b, _ = users.FindByID(context.Background(), "bob")
	req.Equal(first, *b.LastSeen, "a repeat sweep changes nothing")
}

func TestPresenceReconcile_MalformedPayloadNotRetried(t *testing.T) {
	srv := &captureServer{}
	RegisterPresenceReconcileTask(srv, newMemUserRepo(), realtime.NewRegistry())
	handler := srv.handlers[PresenceReconcileTaskType]
	require.NoError(t, handler(context.Background(), qport.Task{Payload: []byte("not json")}))
}
