package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
)

// SessionManagerConfig controls session lifetime.
type SessionManagerConfig struct {
	TTL             time.Duration
	JanitorInterval time.Duration
	EventBuffer     int
}

// SessionManager keeps independent in-memory sessions keyed by id.
type SessionManager struct {
	strategist Strategist
	renderer   Renderer
	cfg        SessionManagerConfig
	opts       []SessionOption

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a manager whose sessions share the given clients.
func NewSessionManager(strategist Strategist, renderer Renderer, cfg SessionManagerConfig, opts ...SessionOption) *SessionManager {
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = 5 * time.Minute
	}
	return &SessionManager{
		strategist: strategist,
		renderer:   renderer,
		cfg:        cfg,
		opts:       opts,
		sessions:   make(map[string]*Session),
	}
}

// Create starts a new idle session.
func (m *SessionManager) Create() *Session {
	opts := append([]SessionOption{WithEventBuffer(m.cfg.EventBuffer)}, m.opts...)
	s := NewSession(uuid.New().String(), m.strategist, m.renderer, opts...)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete resets and removes a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.Close()
	return nil
}

// List returns the ids of live sessions, sorted.
func (m *SessionManager) List() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// DroppedEvents sums the skipped event deliveries of all live sessions.
func (m *SessionManager) DroppedEvents() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, s := range m.sessions {
		total += s.DroppedEvents()
	}
	return total
}

// Expire removes idle sessions whose last activity is older than the TTL.
// Running sessions are kept. Returns the number removed.
func (m *SessionManager) Expire(now time.Time) int {
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Status().Loading {
			continue
		}
		if now.Sub(s.LastActive()) > m.cfg.TTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// RunJanitor expires sessions every JanitorInterval until ctx is done.
func (m *SessionManager) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Expire(now); n > 0 {
				logger.With(logger.Fields{logger.FieldCount: n}).Info(ctx, "Expired idle sessions")
			}
		}
	}
}

// Shutdown closes every session, cancelling in-flight work.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
