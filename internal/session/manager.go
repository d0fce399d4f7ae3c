// ABOUTME: Manager serializes turns per session on top of a Store
// ABOUTME: Load, mutate and save happen under the session's lock
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/harper/dongne/internal/models"
)

// Manager hands out sessions and runs updates one at a time per session.
// Locks are process-local; a shared Redis store does not coordinate processes.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from the map once nobody holds or waits on it
type sessionLock struct {
	sync.Mutex
	refs int
}

// NewManager creates a Manager over store
func NewManager(store Store) *Manager {
	return &Manager{store: store, locks: make(map[string]*sessionLock)}
}

func (m *Manager) acquire(id string) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.locks[id]
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
	l.Unlock()
}

func (m *Manager) lockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Create stores a new session for userID after init has prepared it
func (m *Manager) Create(ctx context.Context, userID string, init func(*models.Session)) (*models.Session, error) {
	sess, err := models.NewSession(userID)
	if err != nil {
		return nil, err
	}
	if init != nil {
		init(sess)
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}
	return sess, nil
}

// Get returns a copy of the stored session
func (m *Manager) Get(ctx context.Context, id string) (*models.Session, error) {
	return m.store.Get(ctx, id)
}

// Update loads the session, applies fn and saves the result. The session is
// saved even when fn returns an error so transcript lines written before the
// failure survive; fn's error is returned after the save.
func (m *Manager) Update(ctx context.Context, id string, fn func(*models.Session) error) (*models.Session, error) {
	m.acquire(id)
	defer m.release(id)

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fnErr := fn(sess)
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, fnErr
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.acquire(id)
	defer m.release(id)
	return m.store.Delete(ctx, id)
}
