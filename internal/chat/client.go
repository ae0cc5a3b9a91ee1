package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/chatsession"
	"github.com/folio/portfolio/backend/go-services/internal/completion"
	"github.com/folio/portfolio/backend/go-services/internal/models"
)

// HTTPClient talks to the portfolio API. It satisfies Completer,
// SessionStore and PortfolioSource so a Controller can run out of process.
type HTTPClient struct {
	base string
	http *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPClient{base: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

// apiError is returned for non-2xx responses outside /api/chat.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out interface{}) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return 0, nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, raw, nil
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, raw, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, raw, nil
}

func failure(status int, raw []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return &apiError{Status: status, Message: body.Error}
	}
	return &apiError{Status: status, Message: strings.TrimSpace(string(raw))}
}

func (c *HTTPClient) Complete(ctx context.Context, req *completion.Request) (*completion.Response, error) {
	var out completion.Response
	status, raw, err := c.do(ctx, http.MethodPost, "/api/chat", req, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		var eb completion.ErrorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			return nil, &completion.Error{Code: eb.Code, Status: status, Message: eb.Error, Details: eb.Details}
		}
		return nil, failure(status, raw)
	}
	return &out, nil
}

func (c *HTTPClient) InitSession(ctx context.Context, email string, device models.DeviceInfo) (*chatsession.InitResult, error) {
	in := map[string]interface{}{"email": email, "deviceInfo": device}
	var out chatsession.InitResult
	status, raw, err := c.do(ctx, http.MethodPost, "/api/sessions", in, &out)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, failure(status, raw)
	}
	return &out, nil
}

func sessionPath(id string, rest ...string) string {
	return "/api/sessions/" + url.PathEscape(id) + strings.Join(rest, "")
}

func (c *HTTPClient) SaveMessage(ctx context.Context, msg *models.Message, sessionID string) (*models.Message, error) {
	in := map[string]string{"id": msg.ID, "role": msg.Role, "content": msg.Content}
	var out models.Message
	status, raw, err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/messages"), in, &out)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, failure(status, raw)
	}
	return &out, nil
}

func (c *HTTPClient) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	status, raw, err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/end"), nil, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return failure(status, raw)
	}
	return nil
}

func (c *HTTPClient) RecordFeedback(ctx context.Context, messageID, sessionID string, helpful bool) (*models.Feedback, error) {
	var out models.Feedback
	path := sessionPath(sessionID, "/messages/", url.PathEscape(messageID), "/feedback")
	status, raw, err := c.do(ctx, http.MethodPost, path, map[string]bool{"helpful": helpful}, &out)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, failure(status, raw)
	}
	return &out, nil
}

func (c *HTTPClient) Portfolio(ctx context.Context) (*models.Portfolio, error) {
	var out models.Portfolio
	status, raw, err := c.do(ctx, http.MethodGet, "/api/portfolio", nil, &out)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, failure(status, raw)
	}
	return &out, nil
}
