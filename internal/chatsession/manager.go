package chatsession

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/google/uuid"
)

// InitResult is what a visitor gets back when the chat window opens.
type InitResult struct {
	SessionID string            `json:"sessionId"`
	Messages  []*models.Message `json:"messages"`
	Resumed   bool              `json:"resumed"`
}

// Manager owns chat session lifecycle: init/resume, message append,
// end and feedback. It holds no per-session state.
type Manager struct {
	repo Repository
	now  func() time.Time

	mu     sync.Mutex
	lastTS int64
}

func NewManager(r Repository) *Manager {
	return &Manager{repo: r, now: time.Now}
}

// NormalizeEmail trims and lowercases; empty becomes "anonymous".
func NormalizeEmail(email string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return models.AnonymousEmail
	}
	return e
}

// timestamp returns epoch millis, strictly increasing within the process so
// messages written in the same millisecond keep their order.
func (m *Manager) timestamp() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := models.EpochMillis(m.now())
	if ts <= m.lastTS {
		ts = m.lastTS + 1
	}
	m.lastTS = ts
	return ts
}

func (m *Manager) InitSession(ctx context.Context, email string, device models.DeviceInfo) (*InitResult, error) {
	email = NormalizeEmail(email)
	now := m.timestamp()
	candidate := &models.ChatSession{
		ID:               uuid.NewString(),
		StartTime:        now,
		UserEmail:        email,
		DeviceInfo:       device,
		LastActivityTime: now,
	}

	if email == models.AnonymousEmail {
		if err := m.repo.CreateSession(ctx, candidate); err != nil {
			return nil, err
		}
		logger.Debugf("chat session created: id=%s anonymous", candidate.ID)
		return &InitResult{SessionID: candidate.ID, Messages: []*models.Message{}}, nil
	}

	sess, created, err := m.repo.FindOrCreateByEmail(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Debugf("chat session created: id=%s email=%s", sess.ID, email)
		return &InitResult{SessionID: sess.ID, Messages: []*models.Message{}}, nil
	}
	msgs, err := m.repo.ListMessages(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	logger.Debugf("chat session resumed: id=%s email=%s messages=%d", sess.ID, email, len(msgs))
	return &InitResult{SessionID: sess.ID, Messages: msgs, Resumed: true}, nil
}

// SaveMessage stamps msg with the session id and server time, inserts it and
// then updates the session's last-activity fields. The two writes are not atomic.
func (m *Manager) SaveMessage(ctx context.Context, msg *models.Message, sessionID string) (*models.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if !models.ValidRole(msg.Role) {
		return nil, fmt.Errorf("invalid role %q", msg.Role)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.SessionID = sessionID
	msg.Timestamp = m.timestamp()
	if err := m.repo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := m.repo.TouchSession(ctx, sessionID, msg.Content, msg.Timestamp); err != nil {
		return msg, fmt.Errorf("message saved but session not updated: %w", err)
	}
	return msg, nil
}

// EndSession records endTime. It is a no-op without a session id or when the
// session already ended.
func (m *Manager) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.repo.EndSession(ctx, sessionID, m.timestamp())
}

func (m *Manager) RecordFeedback(ctx context.Context, messageID, sessionID string, helpful bool) (*models.Feedback, error) {
	fb := models.Feedback{Helpful: helpful, Timestamp: m.timestamp(), MessageID: messageID}
	if err := m.repo.SetFeedback(ctx, messageID, sessionID, fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (m *Manager) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	return m.repo.GetSession(ctx, id)
}

func (m *Manager) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	return m.repo.ListSessions(ctx)
}

func (m *Manager) SessionMessages(ctx context.Context, sessionID string) ([]*models.Message, error) {
	if _, err := m.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.repo.ListMessages(ctx, sessionID)
}

// DeleteSession removes the transcript first, then the session record.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := m.repo.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if err := m.repo.DeleteMessages(ctx, sessionID); err != nil {
		return err
	}
	return m.repo.DeleteSession(ctx, sessionID)
}
