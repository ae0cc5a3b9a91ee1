package handlers

import (
	"net/http"
	"strings"

	"github.com/folio/portfolio/backend/go-services/internal/chatsession"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionsHandler exposes the chat session manager.
type SessionsHandler struct {
	mgr *chatsession.Manager
}

func NewSessionsHandler(m *chatsession.Manager) *SessionsHandler {
	return &SessionsHandler{mgr: m}
}

// Register mounts the visitor-facing session routes.
func (h *SessionsHandler) Register(r gin.IRouter) {
	s := r.Group("/api/sessions")
	s.POST("", h.Init)
	s.POST("/:id/messages", h.SaveMessage)
	s.POST("/:id/end", h.End)
	s.POST("/:id/messages/:messageId/feedback", h.Feedback)
}

// RegisterAdmin mounts the session browsing routes on an authenticated group.
func (h *SessionsHandler) RegisterAdmin(admin gin.IRouter) {
	admin.GET("/sessions", h.List)
	admin.GET("/sessions/:id/messages", h.Messages)
	admin.DELETE("/sessions/:id", h.Delete)
}

type initRequest struct {
	Email      string            `json:"email"`
	DeviceInfo models.DeviceInfo `json:"deviceInfo"`
}

func (h *SessionsHandler) Init(c *gin.Context) {
	var req initRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if req.DeviceInfo.UserAgent == "" {
		req.DeviceInfo.UserAgent = c.Request.UserAgent()
	}
	res, err := h.mgr.InitSession(c.Request.Context(), req.Email, req.DeviceInfo)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if res.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

type messageRequest struct {
	ID      string  `json:"id"`
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

func (h *SessionsHandler) SaveMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !models.ValidRole(req.Role) {
		badRequest(c, "role must be one of system, user, assistant")
		return
	}
	if req.Content == nil {
		badRequest(c, "content is required")
		return
	}
	sid := c.Param("id")
	if _, err := h.mgr.GetSession(c.Request.Context(), sid); err != nil {
		respondError(c, err)
		return
	}
	msg := &models.Message{Role: req.Role, Content: *req.Content}
	if _, err := uuid.Parse(req.ID); err == nil {
		msg.ID = strings.ToLower(req.ID)
	}
	saved, err := h.mgr.SaveMessage(c.Request.Context(), msg, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *SessionsHandler) End(c *gin.Context) {
	if err := h.mgr.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type feedbackRequest struct {
	Helpful *bool `json:"helpful"`
}

func (h *SessionsHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Helpful == nil {
		badRequest(c, "helpful (boolean) is required")
		return
	}
	fb, err := h.mgr.RecordFeedback(c.Request.Context(), c.Param("messageId"), c.Param("id"), *req.Helpful)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

func (h *SessionsHandler) List(c *gin.Context) {
	list, err := h.mgr.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SessionsHandler) Messages(c *gin.Context) {
	msgs, err := h.mgr.SessionMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *SessionsHandler) Delete(c *gin.Context) {
	if err := h.mgr.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	list, err := h.mgr.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
