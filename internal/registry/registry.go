package registry

import (
	"sync"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
)

// SessionRegistry maps ephemeral session ids to live connection
// handles. A session that is absent or already closed is simply not a
// delivery target; callers never get an error for it.
type SessionRegistry struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{clients: make(map[string]*domain.Client)}
}

func (r *SessionRegistry) Register(client *domain.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.SessionID] = client
}

func (r *SessionRegistry) Lookup(sessionID string) (*domain.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[sessionID]
	return client, ok
}

func (r *SessionRegistry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, sessionID)
}
