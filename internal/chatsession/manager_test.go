package chatsession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	m := NewManager(repo)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	return m, repo
}

var device = models.DeviceInfo{UserAgent: "test-agent", Platform: "linux", ScreenSize: "1920x1080"}

func TestInitSessionAnonymousAlwaysCreates(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	a, err := m.InitSession(ctx, "", device)
	require.NoError(t, err)
	b, err := m.InitSession(ctx, "  ", device)
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.False(t, a.Resumed)
	assert.Empty(t, a.Messages)

	s, err := repo.GetSession(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousEmail, s.UserEmail)
	assert.Equal(t, device, s.DeviceInfo)
}

func TestInitSessionResumesWithOrderedHistory(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	first, err := m.InitSession(ctx, "Visitor@Example.com", device)
	require.NoError(t, err)
	require.False(t, first.Resumed)

	contents := []string{"one", "two", "three", "four"}
	for i, c := range contents {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		_, err := m.SaveMessage(ctx, &models.Message{Role: role, Content: c}, first.SessionID)
		require.NoError(t, err)
	}
	require.NoError(t, m.EndSession(ctx, first.SessionID))

	again, err := m.InitSession(ctx, " visitor@example.com", device)
	require.NoError(t, err)
	assert.True(t, again.Resumed)
	assert.Equal(t, first.SessionID, again.SessionID)
	require.Len(t, again.Messages, len(contents))
	for i, msg := range again.Messages {
		assert.Equal(t, contents[i], msg.Content)
		if i > 0 {
			assert.Greater(t, msg.Timestamp, again.Messages[i-1].Timestamp)
		}
	}
}

func TestInitSessionReopenClearsEndTime(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	r, err := m.InitSession(ctx, "a@b.c", device)
	require.NoError(t, err)
	require.NoError(t, m.EndSession(ctx, r.SessionID))
	s, _ := repo.GetSession(ctx, r.SessionID)
	require.NotNil(t, s.EndTime)

	_, err = m.InitSession(ctx, "a@b.c", device)
	require.NoError(t, err)
	s, _ = repo.GetSession(ctx, r.SessionID)
	assert.Nil(t, s.EndTime)
}

func TestSaveMessageUpdatesSession(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()
	r, err := m.InitSession(ctx, "", device)
	require.NoError(t, err)

	msg, err := m.SaveMessage(ctx, &models.Message{Role: models.RoleUser, Content: "hello"}, r.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, r.SessionID, msg.SessionID)

	s, err := repo.GetSession(ctx, r.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "hello", s.LastMessage)
	assert.Equal(t, msg.Timestamp, s.LastActivityTime)

	_, err = m.SaveMessage(ctx, &models.Message{Role: "tool", Content: "x"}, r.SessionID)
	assert.Error(t, err)
	_, err = m.SaveMessage(ctx, &models.Message{Role: models.RoleUser, Content: "x"}, "")
	assert.Error(t, err)
}

func TestEndSessionIdempotent(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.EndSession(ctx, ""))

	r, err := m.InitSession(ctx, "", device)
	require.NoError(t, err)
	require.NoError(t, m.EndSession(ctx, r.SessionID))
	s, _ := repo.GetSession(ctx, r.SessionID)
	require.NotNil(t, s.EndTime)
	firstEnd := *s.EndTime

	require.NoError(t, m.EndSession(ctx, r.SessionID))
	s, _ = repo.GetSession(ctx, r.SessionID)
	assert.Equal(t, firstEnd, *s.EndTime)
}

func TestRecordFeedback(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	r, err := m.InitSession(ctx, "", device)
	require.NoError(t, err)
	msg, err := m.SaveMessage(ctx, &models.Message{Role: models.RoleAssistant, Content: "answer"}, r.SessionID)
	require.NoError(t, err)

	fb, err := m.RecordFeedback(ctx, msg.ID, r.SessionID, true)
	require.NoError(t, err)
	assert.True(t, fb.Helpful)
	assert.Equal(t, msg.ID, fb.MessageID)

	msgs, err := m.SessionMessages(ctx, r.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Feedback)
	assert.True(t, msgs[0].Feedback.Helpful)

	_, err = m.RecordFeedback(ctx, msg.ID, "other-session", false)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()
	r, err := m.InitSession(ctx, "", device)
	require.NoError(t, err)
	_, err = m.SaveMessage(ctx, &models.Message{Role: models.RoleUser, Content: "bye"}, r.SessionID)
	require.NoError(t, err)

	require.NoError(t, m.DeleteSession(ctx, r.SessionID))
	msgs, err := repo.ListMessages(ctx, r.SessionID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	_, err = m.SessionMessages(ctx, r.SessionID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(m.DeleteSession(ctx, r.SessionID), ErrNotFound))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "anonymous", NormalizeEmail(""))
	assert.Equal(t, "me@x.io", NormalizeEmail("  ME@x.IO "))
}
