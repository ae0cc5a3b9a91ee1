package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/chatsession"
	"github.com/folio/portfolio/backend/go-services/internal/completion"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reqs    []*completion.Request
	reply   string
	err     error
	release chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, req *completion.Request) (*completion.Response, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &completion.Response{Message: f.reply}, nil
}

type countingPortfolio struct {
	mu    sync.Mutex
	calls int
}

func (p *countingPortfolio) Portfolio(ctx context.Context) (*models.Portfolio, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return samplePortfolio(), nil
}

// failingStore creates sessions but fails every write after that.
type failingStore struct {
	*chatsession.Manager
}

func (f failingStore) SaveMessage(ctx context.Context, msg *models.Message, sessionID string) (*models.Message, error) {
	return nil, errors.New("store down")
}

func newController(t *testing.T, comp Completer, store SessionStore, email string) *Controller {
	t.Helper()
	c := NewController(Options{
		Completer: comp,
		Sessions:  store,
		Portfolio: &countingPortfolio{},
		Email:     email,
		Device:    models.DeviceInfo{UserAgent: "test"},
	})
	t.Cleanup(c.Shutdown)
	return c
}

func TestSubmitPersistsInOrder(t *testing.T) {
	repo := chatsession.NewMemoryRepo()
	mgr := chatsession.NewManager(repo)
	comp := &fakeCompleter{reply: "Hi! Ask me about Ada."}
	src := &countingPortfolio{}
	c := NewController(Options{Completer: comp, Sessions: mgr, Portfolio: src})

	ctx := context.Background()
	require.NoError(t, c.Open(ctx))
	assert.Equal(t, StateOpen, c.State())
	sid := c.SessionID()
	require.NotEmpty(t, sid)

	c.SetInput("  hello  ")
	reply, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Hi! Ask me about Ada.", reply.Content)
	assert.Equal(t, "", c.Input())
	assert.False(t, c.Loading())

	c.SetInput("second")
	_, err = c.Submit(ctx)
	require.NoError(t, err)
	c.Shutdown()

	msgs, err := repo.ListMessages(ctx, sid)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"hello", "Hi! Ask me about Ada.", "second", "Hi! Ask me about Ada."},
		[]string{msgs[0].Content, msgs[1].Content, msgs[2].Content, msgs[3].Content})

	local := c.Messages()
	require.Len(t, local, 4)
	assert.Equal(t, local[1].ID, msgs[1].ID)

	// system prompt regenerated and prepended on every call
	require.Len(t, comp.reqs, 2)
	assert.Equal(t, 2, src.calls)
	last := comp.reqs[1].Messages
	assert.Equal(t, models.RoleSystem, last[0].Role)
	assert.Contains(t, last[0].Content, "Skills: TypeScript, React")
	assert.Len(t, last, 4)
	assert.Equal(t, "second", last[3].Content)
}

func TestSubmitRejections(t *testing.T) {
	c := newController(t, &fakeCompleter{reply: "x"}, chatsession.NewManager(chatsession.NewMemoryRepo()), "")
	ctx := context.Background()

	c.SetInput("hi")
	_, err := c.Submit(ctx)
	assert.True(t, errors.Is(err, ErrNotOpen))

	require.NoError(t, c.Open(ctx))
	c.SetInput("   ")
	_, err = c.Submit(ctx)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Empty(t, c.Messages())
}

func TestSubmitRejectedWhileLoading(t *testing.T) {
	comp := &fakeCompleter{reply: "done", release: make(chan struct{})}
	c := newController(t, comp, chatsession.NewManager(chatsession.NewMemoryRepo()), "")
	ctx := context.Background()
	require.NoError(t, c.Open(ctx))

	c.SetInput("first")
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(ctx)
		done <- err
	}()
	require.Eventually(t, c.Loading, time.Second, 5*time.Millisecond)

	c.SetInput("second")
	_, err := c.Submit(ctx)
	assert.True(t, errors.Is(err, ErrBusy))
	assert.Equal(t, "second", c.Input())

	close(comp.release)
	require.NoError(t, <-done)
	assert.False(t, c.Loading())
	assert.Len(t, c.Messages(), 2)
}

func TestCompletionErrorBecomesAssistantMessage(t *testing.T) {
	repo := chatsession.NewMemoryRepo()
	comp := &fakeCompleter{err: completion.Classify(completion.ErrRateLimited)}
	c := newController(t, comp, chatsession.NewManager(repo), "")
	ctx := context.Background()
	require.NoError(t, c.Open(ctx))

	c.SetInput("hi")
	reply, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Sorry, I ran into a problem: Rate limit exceeded, please try again later", reply.Content)

	sid := c.SessionID()
	c.Shutdown()
	msgs, err := repo.ListMessages(ctx, sid)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, reply.Content, msgs[1].Content)
}

func TestPersistenceFailureDoesNotBlockConversation(t *testing.T) {
	before := testutil.ToFloat64(metrics.PersistenceFailures.WithLabelValues("save_message"))
	store := failingStore{chatsession.NewManager(chatsession.NewMemoryRepo())}
	c := newController(t, &fakeCompleter{reply: "still here"}, store, "")
	ctx := context.Background()
	require.NoError(t, c.Open(ctx))

	c.SetInput("hi")
	reply, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "still here", reply.Content)
	c.Shutdown()

	after := testutil.ToFloat64(metrics.PersistenceFailures.WithLabelValues("save_message"))
	assert.Equal(t, before+2, after)
}

func TestOpenResumesHistoryAndCloseEndsSession(t *testing.T) {
	repo := chatsession.NewMemoryRepo()
	mgr := chatsession.NewManager(repo)
	ctx := context.Background()

	prev, err := mgr.InitSession(ctx, "ada@example.com", models.DeviceInfo{})
	require.NoError(t, err)
	_, err = mgr.SaveMessage(ctx, &models.Message{Role: models.RoleUser, Content: "earlier"}, prev.SessionID)
	require.NoError(t, err)

	c := newController(t, &fakeCompleter{reply: "x"}, mgr, "Ada@Example.com")
	require.NoError(t, c.Open(ctx))
	assert.Equal(t, prev.SessionID, c.SessionID())
	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "earlier", msgs[0].Content)

	c.Close(ctx)
	assert.Equal(t, StateMinimized, c.State())
	c.Shutdown()
	s, err := repo.GetSession(ctx, prev.SessionID)
	require.NoError(t, err)
	assert.NotNil(t, s.EndTime)
}

func TestRecordFeedbackLocalThenRemote(t *testing.T) {
	repo := chatsession.NewMemoryRepo()
	c := newController(t, &fakeCompleter{reply: "answer"}, chatsession.NewManager(repo), "")
	ctx := context.Background()
	require.NoError(t, c.Open(ctx))
	c.SetInput("q")
	reply, err := c.Submit(ctx)
	require.NoError(t, err)

	require.NoError(t, c.RecordFeedback(reply.ID, true))
	local := c.Messages()
	require.NotNil(t, local[1].Feedback)
	assert.True(t, local[1].Feedback.Helpful)

	assert.True(t, errors.Is(c.RecordFeedback("nope", true), ErrUnknownMessage))

	sid := c.SessionID()
	c.Shutdown()
	msgs, err := repo.ListMessages(ctx, sid)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[1].Feedback)
	assert.True(t, msgs[1].Feedback.Helpful)
}
