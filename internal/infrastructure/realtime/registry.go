package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Registry maps authenticated user identities to their live connections.
// A user may hold several simultaneous connections (multiple tabs); a
// connection belongs to at most one identity. All reads and writes are
// serialized behind one lock, and no store or network I/O ever happens
// inside the critical section.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Connection // userID -> connID -> conn
	owner  map[string]string                 // connID -> userID
}

// NewRegistry constructs an initialized Registry. It is created once at
// service start; Close tears it down at shutdown.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]*Connection),
		owner:  make(map[string]string),
	}
}

// Bind adds conn under userID and reports whether this took the user from
// zero to one live connection. Binding the same connection twice is a
// no-op; a connection already bound to another identity is moved.
func (r *Registry) Bind(userID string, conn *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.owner[conn.ID]; ok {
		if current == userID {
			return false
		}
		r.unbindLocked(conn.ID)
	}

	set := r.byUser[userID]
	first := len(set) == 0
	if set == nil {
		set = make(map[string]*Connection)
		r.byUser[userID] = set
	}
	set[conn.ID] = conn
	r.owner[conn.ID] = userID
	return first
}

// Unbind removes conn from whichever identity it was bound to. It returns
// that identity and whether the user now has no live connection left.
// Unbinding an untracked connection is a no-op.
func (r *Registry) Unbind(conn *Connection) (userID string, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owner[conn.ID]
	if !ok {
		return "", false
	}
	r.unbindLocked(conn.ID)
	return userID, len(r.byUser[userID]) == 0
}

func (r *Registry) unbindLocked(connID string) {
	userID, ok := r.owner[connID]
	if !ok {
		return
	}
	delete(r.owner, connID)
	if set := r.byUser[userID]; set != nil {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.byUser, userID)
		}
	}
}

// ConnectionsFor returns the user's live connections, possibly empty.
func (r *Registry) ConnectionsFor(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	if len(set) == 0 {
		return nil
	}
	conns := make([]*Connection, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// OnlineUserIDs returns the identities currently holding at least one
// live connection.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	return ids
}

// SendToUser delivers payload to every live connection of userID and
// returns the number of connections delivered to. Delivery to a vanished
// connection is skipped, never an error.
func (r *Registry) SendToUser(userID string, payload []byte) int {
	conns := r.ConnectionsFor(userID)
	delivered := 0
	for _, c := range conns {
		if c.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// Broadcast delivers payload to every bound connection except the one
// with excludeConnID (pass "" to deliver to all).
func (r *Registry) Broadcast(payload []byte, excludeConnID string) int {
	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.owner))
	for _, set := range r.byUser {
		for _, c := range set {
			if c.ID == excludeConnID {
				continue
			}
			conns = append(conns, c)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range conns {
		if c.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked connections and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.owner))
	for _, set := range r.byUser {
		for _, c := range set {
			conns = append(conns, c)
		}
	}
	r.byUser = make(map[string]map[string]*Connection)
	r.owner = make(map[string]string)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close(websocket.CloseGoingAway, "registry shutdown")
	}
}
