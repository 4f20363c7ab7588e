package ws

import "sync"

// Session is an authorized connection: the project it is bound to and the
// owner that opened it. Ownership is checked once at open and trusted for
// the life of the connection; the persisted store stays authoritative
// across restarts.
type Session struct {
	ConnectionID string
	ProjectID    string
	UserID       string
}

// Registry is the shared in-memory map of live sessions, keyed by
// connection id. It is an ephemeral cache: losing it on restart is safe
// because ownership is always re-derived from the store on open.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for a connection id, or nil
func (r *Registry) Get(connectionID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[connectionID]
}

// Put stores a session under its connection id
func (r *Registry) Put(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ConnectionID] = session
}

// Remove evicts a connection's session. Persisted state is untouched.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, connectionID)
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
