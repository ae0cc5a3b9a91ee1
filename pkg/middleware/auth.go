package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AnyVerifier accepts a token when any of its verifiers accepts it.
// Nil entries are skipped.
type AnyVerifier []Verifier

func (a AnyVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	var errs []error
	for _, v := range a {
		if v == nil {
			continue
		}
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no token verifier configured")
	}
	return nil, errors.Join(errs...)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
// and stores the token claims under the "claims" context key and the raw token under "token".
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header", "code": "UNAUTHORIZED"})
			return
		}
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header", "code": "UNAUTHORIZED"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "UNAUTHORIZED", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims", "code": "UNAUTHORIZED"})
			return
		}

		c.Set("claims", claims)
		c.Set("token", token)
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware, or nil.
func ClaimsFromContext(c *gin.Context) map[string]interface{} {
	v, ok := c.Get("claims")
	if !ok {
		return nil
	}
	cm, _ := v.(map[string]interface{})
	return cm
}

// BearerFromContext returns the raw token accepted by AuthMiddleware.
func BearerFromContext(c *gin.Context) string {
	return c.GetString("token")
}
