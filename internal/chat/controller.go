// Package chat drives the visitor-facing chat window: open/close lifecycle,
// message submission against the completion gateway and best-effort
// persistence of the transcript.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/chatsession"
	"github.com/folio/portfolio/backend/go-services/internal/completion"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/google/uuid"
)

type State int

const (
	StateMinimized State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "minimized"
}

var (
	ErrEmptyInput     = errors.New("message is empty")
	ErrBusy           = errors.New("a message is already being answered")
	ErrNotOpen        = errors.New("chat window is not open")
	ErrUnknownMessage = errors.New("unknown message")
)

// ErrorReplyPrefix starts the assistant message shown when a completion fails.
const ErrorReplyPrefix = "Sorry, I ran into a problem: "

// Completer answers a chat transcript.
type Completer interface {
	Complete(ctx context.Context, req *completion.Request) (*completion.Response, error)
}

// SessionStore is the session manager as seen by the controller.
type SessionStore interface {
	InitSession(ctx context.Context, email string, device models.DeviceInfo) (*chatsession.InitResult, error)
	SaveMessage(ctx context.Context, msg *models.Message, sessionID string) (*models.Message, error)
	EndSession(ctx context.Context, sessionID string) error
	RecordFeedback(ctx context.Context, messageID, sessionID string, helpful bool) (*models.Feedback, error)
}

// PortfolioSource supplies the content the system prompt is built from.
type PortfolioSource interface {
	Portfolio(ctx context.Context) (*models.Portfolio, error)
}

type Options struct {
	Completer Completer
	Sessions  SessionStore
	Portfolio PortfolioSource
	Email     string
	Device    models.DeviceInfo
	// Model is forwarded to the gateway; empty uses the gateway default.
	Model string
}

// Controller is the chat window state machine. Methods are safe for
// concurrent use; Submit rejects a second submission while one is in flight.
type Controller struct {
	opts    Options
	persist *persister
	now     func() time.Time

	mu        sync.Mutex
	state     State
	loading   bool
	input     string
	messages  []*models.Message
	sessionID string
}

func NewController(opts Options) *Controller {
	return &Controller{opts: opts, persist: newPersister(), now: time.Now}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	c.input = s
	c.mu.Unlock()
}

func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Messages returns a copy of the local transcript.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = *m
	}
	return out
}

// initSession asks the store for a session and adopts resumed history.
// Called without c.mu held.
func (c *Controller) initSession(ctx context.Context) error {
	res, err := c.opts.Sessions.InitSession(ctx, c.opts.Email, c.opts.Device)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != "" {
		return nil
	}
	c.sessionID = res.SessionID
	if res.Resumed && len(c.messages) == 0 {
		c.messages = append(c.messages, res.Messages...)
	}
	return nil
}

// Open moves minimized → open, starting or resuming a session when none is held.
// A failed init leaves the window open; Submit retries it lazily.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateOpen {
		c.mu.Unlock()
		return nil
	}
	c.state = StateOpen
	needInit := c.sessionID == ""
	c.mu.Unlock()

	if !needInit {
		return nil
	}
	if err := c.initSession(ctx); err != nil {
		logger.Warnf("chat: session init failed: %v", err)
		return err
	}
	return nil
}

// Close moves open → minimized after queueing EndSession.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return
	}
	sid := c.sessionID
	c.persist.enqueue("end_session", func(ctx context.Context) error {
		return c.opts.Sessions.EndSession(ctx, sid)
	})
	c.state = StateMinimized
}

// Submit sends the current input. The reply (or an error reply) is appended
// to the transcript and returned.
func (c *Controller) Submit(ctx context.Context) (*models.Message, error) {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return nil, ErrNotOpen
	}
	text := strings.TrimSpace(c.input)
	if text == "" {
		c.mu.Unlock()
		return nil, ErrEmptyInput
	}
	if c.loading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	userMsg := c.newMessage(models.RoleUser, text)
	c.messages = append(c.messages, userMsg)
	c.input = ""
	c.loading = true
	needInit := c.sessionID == ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	if needInit {
		if err := c.initSession(ctx); err != nil {
			logger.Warnf("chat: lazy session init failed: %v", err)
		}
	}
	c.save(userMsg)

	reply := c.complete(ctx)

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.mu.Unlock()
	c.save(reply)
	return copyOf(reply), nil
}

func (c *Controller) complete(ctx context.Context) *models.Message {
	var pf *models.Portfolio
	if c.opts.Portfolio != nil {
		p, err := c.opts.Portfolio.Portfolio(ctx)
		if err != nil {
			logger.Warnf("chat: portfolio unavailable for prompt: %v", err)
		} else {
			pf = p
		}
	}

	c.mu.Lock()
	transcript := make([]completion.Message, 0, len(c.messages)+1)
	transcript = append(transcript, completion.Message{Role: models.RoleSystem, Content: BuildSystemPrompt(pf)})
	for _, m := range c.messages {
		if m.Role == models.RoleSystem {
			continue
		}
		transcript = append(transcript, completion.Message{Role: m.Role, Content: m.Content})
	}
	c.mu.Unlock()

	req := &completion.Request{Messages: transcript}
	if c.opts.Model != "" {
		model := c.opts.Model
		req.Model = &model
	}
	resp, err := c.opts.Completer.Complete(ctx, req)
	if err != nil {
		return c.newMessage(models.RoleAssistant, ErrorReplyPrefix+errorText(err))
	}
	return c.newMessage(models.RoleAssistant, resp.Message)
}

func errorText(err error) string {
	var ce *completion.Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}

// newMessage touches no shared state, so c.mu may or may not be held.
func (c *Controller) newMessage(role, content string) *models.Message {
	return &models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: models.EpochMillis(c.now()),
	}
}

func copyOf(m *models.Message) *models.Message {
	cp := *m
	return &cp
}

// save queues msg for the store under the current session.
func (c *Controller) save(msg *models.Message) {
	c.mu.Lock()
	sid := c.sessionID
	c.mu.Unlock()
	if sid == "" {
		logger.Warnf("chat: no session, message %s not persisted", msg.ID)
		return
	}
	out := copyOf(msg)
	c.persist.enqueue("save_message", func(ctx context.Context) error {
		_, err := c.opts.Sessions.SaveMessage(ctx, out, sid)
		return err
	})
}

// RecordFeedback marks a message helpful or not locally, then patches the
// store in the background. The two can diverge if the patch fails.
func (c *Controller) RecordFeedback(messageID string, helpful bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var target *models.Message
	for _, m := range c.messages {
		if m.ID == messageID {
			target = m
			break
		}
	}
	if target == nil {
		return ErrUnknownMessage
	}
	target.Feedback = &models.Feedback{Helpful: helpful, Timestamp: models.EpochMillis(c.now()), MessageID: messageID}
	sid := c.sessionID
	if sid == "" {
		return nil
	}
	c.persist.enqueue("feedback", func(ctx context.Context) error {
		_, err := c.opts.Sessions.RecordFeedback(ctx, messageID, sid, helpful)
		return err
	})
	return nil
}

// Shutdown waits for queued writes. The controller must not be used afterwards.
func (c *Controller) Shutdown() {
	c.persist.close()
}
