package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/folio/portfolio/backend/go-services/internal/admins"
	"github.com/folio/portfolio/backend/go-services/internal/chatsession"
	"github.com/folio/portfolio/backend/go-services/internal/content"
	"github.com/folio/portfolio/backend/go-services/internal/storage"
	"github.com/folio/portfolio/backend/go-services/internal/tokens"
	"github.com/folio/portfolio/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticToken map[string]interface{}

func (t staticToken) Claims(v interface{}) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// tokenVerifier accepts the single bearer token "admin-token".
type tokenVerifier struct{}

func (tokenVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if raw != "admin-token" {
		return nil, io.EOF
	}
	return staticToken{"sub": "admin-1", "email": "owner@example.com", "name": "Owner"}, nil
}

type testServer struct {
	engine  *gin.Engine
	content *content.Service
	mgr     *chatsession.Manager
	images  *storage.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	images := storage.NewMemoryStore()
	svc := content.NewService(content.NewMemoryRepo(), images)
	mgr := chatsession.NewManager(chatsession.NewMemoryRepo())

	g := gin.New()
	ch := NewContentHandler(svc)
	sh := NewSessionsHandler(mgr)
	ch.RegisterPublic(g)
	sh.Register(g)
	ok := (&AdminRoutes{
		Verifier:    tokenVerifier{},
		Admins:      admins.NewService(admins.NewMemoryRepository()),
		Content:     ch,
		Sessions:    sh,
		Revocations: tokens.NewMemoryRevocations(),
	}).Register(g)
	require.True(t, ok)
	return &testServer{engine: g, content: svc, mgr: mgr, images: images}
}

func (s *testServer) do(t *testing.T, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer admin-token")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, path, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	boundary := "portfolio-test-boundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString(`Content-Disposition: form-data; name="file"; filename="` + filename + "\"\r\n")
	buf.WriteString("Content-Type: " + contentType + "\r\n\r\n")
	buf.Write(data)
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
