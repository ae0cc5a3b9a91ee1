package chatsession

import (
	"context"
	"sort"
	"sync"

	"github.com/folio/portfolio/backend/go-services/internal/models"
)

// MemoryRepo is an in-memory Repository used in tests and when MongoDB is
// unavailable. Returned records are copies.
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
	messages map[string]*models.Message
	seq      map[string]int
	next     int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		sessions: make(map[string]*models.ChatSession),
		messages: make(map[string]*models.Message),
		seq:      make(map[string]int),
	}
}

func copySession(s *models.ChatSession) *models.ChatSession {
	c := *s
	if s.EndTime != nil {
		v := *s.EndTime
		c.EndTime = &v
	}
	return &c
}

func copyMessage(m *models.Message) *models.Message {
	c := *m
	if m.Feedback != nil {
		fb := *m.Feedback
		c.Feedback = &fb
	}
	return &c
}

func (m *MemoryRepo) FindOrCreateByEmail(ctx context.Context, s *models.ChatSession) (*models.ChatSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.ChatSession
	for _, cur := range m.sessions {
		if cur.UserEmail != s.UserEmail {
			continue
		}
		if latest == nil || cur.StartTime > latest.StartTime {
			latest = cur
		}
	}
	if latest != nil {
		latest.EndTime = nil
		return copySession(latest), false, nil
	}
	m.sessions[s.ID] = copySession(s)
	return copySession(s), true, nil
}

func (m *MemoryRepo) CreateSession(ctx context.Context, s *models.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *MemoryRepo) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(s), nil
}

func (m *MemoryRepo) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.ChatSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, copySession(s))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime > out[j].StartTime })
	return out, nil
}

func (m *MemoryRepo) TouchSession(ctx context.Context, id, lastMessage string, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.LastMessage = lastMessage
	s.LastActivityTime = at
	return nil
}

func (m *MemoryRepo) EndSession(ctx context.Context, id string, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && s.EndTime == nil {
		s.EndTime = &at
	}
	return nil
}

func (m *MemoryRepo) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryRepo) InsertMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ID] = copyMessage(msg)
	m.next++
	m.seq[msg.ID] = m.next
	return nil
}

func (m *MemoryRepo) ListMessages(ctx context.Context, sessionID string) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Message{}
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, copyMessage(msg))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp == out[j].Timestamp {
			return m.seq[out[i].ID] < m.seq[out[j].ID]
		}
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}

func (m *MemoryRepo) SetFeedback(ctx context.Context, messageID, sessionID string, fb models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok || msg.SessionID != sessionID {
		return ErrNotFound
	}
	msg.Feedback = &fb
	return nil
}

func (m *MemoryRepo) DeleteMessages(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, msg := range m.messages {
		if msg.SessionID == sessionID {
			delete(m.messages, id)
			delete(m.seq, id)
		}
	}
	return nil
}
