package realtime

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// StatusStore is the slice of the user directory the presence tracker
// writes to. The live registry remains the primary truth for presence;
// the store only holds the durable projection.
type StatusStore interface {
	SetOnline(ctx context.Context, userID string, online bool) error
	SetLastSeen(ctx context.Context, userID string, t time.Time) error
}

// Tracker derives online/offline transitions from registry bind/unbind
// and broadcasts them. Only 0<->1 connection-count crossings produce a
// broadcast: a second tab opening, or one of several tabs closing, stays
// silent.
type Tracker struct {
	registry *Registry
	store    StatusStore
	log      *logrus.Entry
}

// NewTracker constructs a presence tracker over the given registry.
func NewTracker(registry *Registry, store StatusStore) *Tracker {
	return &Tracker{
		registry: registry,
		store:    store,
		log:      logrus.WithField("component", "presence"),
	}
}

// Connect binds conn under userID. If this is the user's first live
// connection, the durable online flag is set and user_status is broadcast
// to every other live connection. Store failures are logged, not fatal:
// the registry, not the store, decides presence.
func (t *Tracker) Connect(ctx context.Context, userID string, conn *Connection) {
	first := t.registry.Bind(userID, conn)
	if !first {
		return
	}

	if err := t.store.SetOnline(ctx, userID, true); err != nil {
		t.log.WithFields(logrus.Fields{"userId": userID, "error": err}).Warn("persist online flag failed")
	}

	t.broadcastStatus(userID, true, conn.ID)
}

// Disconnect unbinds conn. If the user has no live connection left, the
// durable record is marked offline with lastSeen=now and user_status is
// broadcast. Unauthenticated connections unwind silently.
func (t *Tracker) Disconnect(ctx context.Context, conn *Connection) {
	userID, last := t.registry.Unbind(conn)
	if userID == "" || !last {
		return
	}

	if err := t.store.SetOnline(ctx, userID, false); err != nil {
		t.log.WithFields(logrus.Fields{"userId": userID, "error": err}).Warn("persist offline flag failed")
	}
	if err := t.store.SetLastSeen(ctx, userID, time.Now()); err != nil {
		t.log.WithFields(logrus.Fields{"userId": userID, "error": err}).Warn("persist last seen failed")
	}

	t.broadcastStatus(userID, false, conn.ID)
}

func (t *Tracker) broadcastStatus(userID string, online bool, excludeConnID string) {
	payload, err := Encode(UserStatusEvent{Type: EventUserStatus, UserID: userID, IsOnline: online})
	if err != nil {
		t.log.WithField("error", err).Error("encode user_status")
		return
	}
	t.registry.Broadcast(payload, excludeConnID)
}
