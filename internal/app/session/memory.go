package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"groundchat/internal/pkg/logx"
	"groundchat/internal/pkg/randx"
)

// MemoryRegistry keeps sessions in process memory. Sessions do not survive a restart.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session

	now    func() time.Time
	stop   chan struct{}
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewMemoryRegistry returns a registry that sweeps expired sessions every sweepEvery.
// A non-positive sweepEvery disables the sweeper; expired sessions are still rejected by Get.
func NewMemoryRegistry(sweepEvery time.Duration) *MemoryRegistry {
	m := &MemoryRegistry{
		sessions: make(map[string]Session),
		now:      time.Now,
		stop:     make(chan struct{}),
		logger:   logx.Component("session_registry"),
	}

	if sweepEvery > 0 {
		m.wg.Add(1)
		go m.runSweepLoop(sweepEvery)
	}

	return m
}

func (m *MemoryRegistry) Create(_ context.Context, userID string, ttl time.Duration) (Session, error) {
	id, err := randx.SessionID()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	now := m.now()
	s := Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	return s, nil
}

func (m *MemoryRegistry) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || s.Expired(m.now()) {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryRegistry) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the sweeper and waits for it to exit.
func (m *MemoryRegistry) Close() error {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	m.wg.Wait()
	return nil
}

func (m *MemoryRegistry) runSweepLoop(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if removed := m.sweep(); removed > 0 {
				m.logger.Debug().Int("removed", removed).Msg("expired sessions swept")
			}
		}
	}
}

func (m *MemoryRegistry) sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
