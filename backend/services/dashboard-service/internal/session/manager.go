package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Manager tracks live sessions and keeps their connections alive.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[uuid.UUID]*Session
	pingInterval time.Duration
	logger       *zap.Logger
}

// NewManager builds a session manager.
func NewManager(pingInterval time.Duration, logger *zap.Logger) *Manager {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Manager{
		sessions:     make(map[uuid.UUID]*Session),
		pingInterval: pingInterval,
		logger:       logger,
	}
}

// Add registers a session.
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

// Remove forgets a session.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Start pings every session until ctx is done, then closes them all.
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case <-ticker.C:
			m.mu.RLock()
			for id, s := range m.sessions {
				if err := s.Ping(websocket.PingMessage); err != nil {
					m.logger.Debug("session ping failed", zap.String("session_id", id.String()), zap.Error(err))
				}
			}
			m.mu.RUnlock()
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		_ = s.Close()
	}
	if n := len(m.sessions); n > 0 {
		m.logger.Info("closed sessions on shutdown", zap.Int("count", n))
	}
}
