package sessions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kotche/femhealth/internal/model"
)

// MemoryRepository keeps sessions for the life of the process.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[model.UserID]*model.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[model.UserID]*model.Session)}
}

func (m *MemoryRepository) SaveUser(_ context.Context, user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[user.ID] = &model.Session{User: user, Permission: model.PermissionDefault}
	return nil
}

func (m *MemoryRepository) GetSession(_ context.Context, userID model.UserID) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) DeleteSession(_ context.Context, userID model.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[userID]; !ok {
		return model.ErrSessionNotFound
	}
	delete(m.sessions, userID)
	return nil
}

func (m *MemoryRepository) ListSessions(_ context.Context) ([]model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		cp := *s
		cp.Logs = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
	return out, nil
}

func (m *MemoryRepository) PrependLog(_ context.Context, userID model.UserID, entry model.NotificationLog) error {
	return m.update(userID, func(s *model.Session) {
		s.Logs = s.Logs.Prepend(entry)
	})
}

func (m *MemoryRepository) SetPermission(_ context.Context, userID model.UserID, permission model.AlertPermission) error {
	return m.update(userID, func(s *model.Session) {
		s.Permission = permission
	})
}

func (m *MemoryRepository) MarkNotified(_ context.Context, userID model.UserID, predicted time.Time) error {
	return m.update(userID, func(s *model.Session) {
		s.NotifiedFor = predicted
	})
}

func (m *MemoryRepository) update(userID model.UserID, fn func(s *model.Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return model.ErrSessionNotFound
	}
	fn(s)
	return nil
}
