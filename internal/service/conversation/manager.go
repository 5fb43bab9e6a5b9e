package conversation

import (
	"context"
	"sync"
)

// Manager tracks live conversation controllers by conversation ID.
type Manager struct {
	mu            sync.RWMutex
	conversations map[string]*Controller

	deps         Deps
	newResponder func() Responder
}

// NewManager builds a manager. Each opened conversation receives its
// own responder from the factory, so streaming channels are never
// shared across sessions.
func NewManager(deps Deps, newResponder func() Responder) *Manager {
	return &Manager{
		conversations: make(map[string]*Controller),
		deps:          deps,
		newResponder:  newResponder,
	}
}

// Open mounts a new conversation: local session immediately, upgrade in
// the background.
func (m *Manager) Open(ctx context.Context) *Controller {
	deps := m.deps
	deps.Responder = m.newResponder()

	ctrl := NewController(deps)
	ctrl.Bootstrap(ctx)

	m.mu.Lock()
	m.conversations[ctrl.ID()] = ctrl
	m.mu.Unlock()
	return ctrl
}

// Get returns a live conversation by ID.
func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctrl, ok := m.conversations[id]
	return ctrl, ok
}

// CloseAll tears down every conversation's streaming channel.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ctrl := range m.conversations {
		ctrl.Close()
		delete(m.conversations, id)
	}
}
