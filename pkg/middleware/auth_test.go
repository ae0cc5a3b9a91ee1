package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier accepts exactly one raw token
type fakeVerifier struct{ accept string }

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == f.accept {
		return &fakeToken{data: map[string]interface{}{"sub": "admin-" + raw, "email": "owner@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serveWithAuth(t *testing.T, ver Verifier, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(ver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"claims": ClaimsFromContext(c), "token": BearerFromContext(c)})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := serveWithAuth(t, &fakeVerifier{accept: "goodtoken"}, "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	rw := serveWithAuth(t, &fakeVerifier{accept: "goodtoken"}, "BadHeader")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serveWithAuth(t, &fakeVerifier{accept: "goodtoken"}, "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	var got struct {
		Claims map[string]interface{} `json:"claims"`
		Token  string                 `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "admin-goodtoken", got.Claims["sub"])
	require.Equal(t, "goodtoken", got.Token)
}

func TestAnyVerifier(t *testing.T) {
	ver := AnyVerifier{nil, &fakeVerifier{accept: "oidc"}, &fakeVerifier{accept: "hmac"}}

	require.Equal(t, http.StatusOK, serveWithAuth(t, ver, "Bearer oidc").Code)
	require.Equal(t, http.StatusOK, serveWithAuth(t, ver, "Bearer hmac").Code)
	require.Equal(t, http.StatusUnauthorized, serveWithAuth(t, ver, "Bearer other").Code)

	_, err := AnyVerifier{nil}.Verify(context.Background(), "x")
	require.Error(t, err)
}
