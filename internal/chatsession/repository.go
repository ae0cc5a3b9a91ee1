package chatsession

import (
	"context"
	"errors"

	"github.com/folio/portfolio/backend/go-services/internal/models"
)

const (
	SessionsCollection = "chatSessions"
	MessagesCollection = "messages"
)

var ErrNotFound = errors.New("chat record not found")

// Repository persists chat sessions and their messages.
type Repository interface {
	// FindOrCreateByEmail returns the most recent session for s.UserEmail with
	// its endTime cleared, or inserts s when none exists. created reports which.
	FindOrCreateByEmail(ctx context.Context, s *models.ChatSession) (sess *models.ChatSession, created bool, err error)
	CreateSession(ctx context.Context, s *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	ListSessions(ctx context.Context) ([]*models.ChatSession, error)
	TouchSession(ctx context.Context, id, lastMessage string, at int64) error
	// EndSession sets endTime unless it is already set.
	EndSession(ctx context.Context, id string, at int64) error
	DeleteSession(ctx context.Context, id string) error

	InsertMessage(ctx context.Context, m *models.Message) error
	// ListMessages returns a session's messages by ascending timestamp.
	ListMessages(ctx context.Context, sessionID string) ([]*models.Message, error)
	SetFeedback(ctx context.Context, messageID, sessionID string, fb models.Feedback) error
	DeleteMessages(ctx context.Context, sessionID string) error
}
