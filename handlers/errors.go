package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/folio/portfolio/backend/go-services/internal/chatsession"
	"github.com/folio/portfolio/backend/go-services/internal/content"
	"github.com/folio/portfolio/backend/go-services/internal/storage"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, chatsession.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, content.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), content.ErrValidation.Error()+": ")
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, content.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
