package realtime

import "sync"

// Peer is a live connection the engine can push events to
type Peer interface {
	SendEvent(event string, data interface{}) error
	Close() error
}

// Registry maps a user identity to at most one live connection and back.
// It is the only structure shared across all connection workers; both maps
// are guarded by a single RWMutex. Presence lives purely in process memory
// and is rebuilt from scratch on restart, which is correct because the
// sockets themselves do not survive one either.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Peer
	byPeer map[Peer]string
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Peer),
		byPeer: make(map[Peer]string),
	}
}

// Register binds the connection to the user, replacing any previous binding
// for that user. The replaced connection stays in the reverse map so its own
// eventual Unregister cannot evict the newer binding.
func (r *Registry) Register(userID string, p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = p
	r.byPeer[p] = userID
}

// Unregister removes the connection's presence entry. Keyed by the
// connection: a stale connection only clears the forward mapping when it
// still owns it.
func (r *Registry) Unregister(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byPeer[p]
	if !ok {
		return
	}
	delete(r.byPeer, p)
	if r.byUser[userID] == p {
		delete(r.byUser, userID)
	}
}

// Lookup resolves the user's live connection, if any
func (r *Registry) Lookup(userID string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byUser[userID]
	return p, ok
}

// UserOf resolves the user identity bound to a connection, if any
func (r *Registry) UserOf(p Peer) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byPeer[p]
	return userID, ok
}
