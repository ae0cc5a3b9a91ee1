package handlers

import (
	"io"
	"net/http"

	"github.com/folio/portfolio/backend/go-services/internal/completion"
	"github.com/gin-gonic/gin"
)

const maxChatBody = 1 << 20

// ChatHandler serves the completion gateway.
type ChatHandler struct {
	gw *completion.Gateway
}

func NewChatHandler(gw *completion.Gateway) *ChatHandler {
	return &ChatHandler{gw: gw}
}

// Register mounts POST /api/chat behind the given middlewares (rate limiting).
func (h *ChatHandler) Register(r gin.IRouter, mw ...gin.HandlerFunc) {
	r.POST("/api/chat", append(mw, h.Chat)...)
}

func (h *ChatHandler) Chat(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxChatBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, completion.ErrorBody{Error: "Invalid JSON in request body", Code: completion.CodeParse})
		return
	}
	req, ce := completion.DecodeRequest(body)
	if ce != nil {
		c.JSON(ce.Status, ce.Body())
		return
	}
	resp, err := h.gw.Complete(c.Request.Context(), req)
	if err != nil {
		ce := completion.Classify(err)
		c.JSON(ce.Status, ce.Body())
		return
	}
	c.JSON(http.StatusOK, resp)
}
