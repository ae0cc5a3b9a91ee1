package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/admins"
	"github.com/folio/portfolio/backend/go-services/internal/tokens"
	"github.com/folio/portfolio/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// AdminRoutes bundles everything mounted under /api/admin.
type AdminRoutes struct {
	Verifier middleware.Verifier
	Admins   *admins.Service
	Content  *ContentHandler
	Sessions *SessionsHandler
	// Revocations enables POST /logout; nil leaves tokens valid until expiry.
	Revocations tokens.Revocations
}

// Register mounts /api/admin behind bearer-token auth. It returns false and
// mounts nothing when no verifier is configured.
func (a *AdminRoutes) Register(r gin.IRouter) bool {
	if a.Verifier == nil {
		return false
	}
	ver := a.Verifier
	if a.Revocations != nil {
		ver = tokens.RevocableVerifier{Verifier: ver, Store: a.Revocations}
	}
	admin := r.Group("/api/admin", middleware.AuthMiddleware(ver))
	admin.GET("/me", a.Me)
	if a.Revocations != nil {
		admin.POST("/logout", a.Logout)
	}
	if a.Content != nil {
		a.Content.RegisterAdmin(admin)
	}
	if a.Sessions != nil {
		a.Sessions.RegisterAdmin(admin)
	}
	return true
}

// Me records the caller in the admins collection and returns the record.
func (a *AdminRoutes) Me(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if a.Admins == nil {
		c.JSON(http.StatusOK, gin.H{"claims": claims})
		return
	}
	adm, err := a.Admins.UpsertFromClaims(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, admins.ErrNoSubject) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "UNAUTHORIZED"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": adm})
}

// Logout revokes the caller's bearer token for the rest of its lifetime.
func (a *AdminRoutes) Logout(c *gin.Context) {
	ttl := tokens.RemainingLifetime(middleware.ClaimsFromContext(c), time.Now())
	if err := a.Revocations.Revoke(c.Request.Context(), middleware.BearerFromContext(c), ttl); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
