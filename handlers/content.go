package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/folio/portfolio/backend/go-services/internal/content"
	"github.com/folio/portfolio/backend/go-services/internal/icons"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

// ContentHandler serves portfolio content: public reads and admin CRUD.
type ContentHandler struct {
	svc *content.Service
}

func NewContentHandler(s *content.Service) *ContentHandler {
	return &ContentHandler{svc: s}
}

// RegisterPublic mounts the read-only routes used by the public site.
func (h *ContentHandler) RegisterPublic(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/profile", h.GetProfile)
	api.GET("/projects", h.ListProjects)
	api.GET("/projects/:slug", h.GetProjectBySlug)
	api.GET("/skills", h.ListSkills)
	api.GET("/experiences", h.ListExperiences)
	api.GET("/portfolio", h.Portfolio)
	api.GET("/icons", func(c *gin.Context) { c.JSON(http.StatusOK, icons.All()) })
}

// RegisterAdmin mounts CRUD routes on an authenticated group.
// Every mutation answers with the refreshed list.
func (h *ContentHandler) RegisterAdmin(admin gin.IRouter) {
	admin.GET("/profile", h.GetProfile)
	admin.PUT("/profile", h.SaveProfile)
	admin.POST("/profile/photo", h.UploadProfilePhoto)

	admin.GET("/projects", h.ListProjects)
	admin.POST("/projects", h.CreateProject)
	admin.GET("/projects/:id", h.GetProject)
	admin.PUT("/projects/:id", h.UpdateProject)
	admin.DELETE("/projects/:id", h.DeleteProject)
	admin.POST("/projects/:id/featured", h.SetFeatured)
	admin.POST("/projects/:id/cover", h.UploadProjectCover)

	admin.GET("/skills", h.ListSkills)
	admin.POST("/skills", h.CreateSkill)
	admin.PUT("/skills/:id", h.UpdateSkill)
	admin.DELETE("/skills/:id", h.DeleteSkill)

	admin.GET("/experiences", h.ListExperiences)
	admin.POST("/experiences", h.CreateExperience)
	admin.PUT("/experiences/:id", h.UpdateExperience)
	admin.DELETE("/experiences/:id", h.DeleteExperience)

	admin.GET("/images", h.ListImages)
	admin.DELETE("/images/*key", h.DeleteImage)
}

// --- profile ---

func (h *ContentHandler) GetProfile(c *gin.Context) {
	p, err := h.svc.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ContentHandler) SaveProfile(c *gin.Context) {
	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err.Error())
		return
	}
	saved, err := h.svc.SaveProfile(c.Request.Context(), &p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ContentHandler) upload(c *gin.Context) (content.Upload, func(), bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return content.Upload{}, nil, false
	}
	if fh.Size > maxUploadBytes {
		badRequest(c, "file too large")
		return content.Upload{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return content.Upload{}, nil, false
	}
	up := content.Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Size: fh.Size, Body: f}
	return up, func() { _ = f.Close() }, true
}

func (h *ContentHandler) UploadProfilePhoto(c *gin.Context) {
	up, done, ok := h.upload(c)
	if !ok {
		return
	}
	defer done()
	p, err := h.svc.UploadProfilePhoto(c.Request.Context(), up)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// --- projects ---

func (h *ContentHandler) ListProjects(c *gin.Context) {
	featured, _ := strconv.ParseBool(c.Query("featured"))
	carousel, _ := strconv.ParseBool(c.Query("carousel"))
	list, err := h.svc.ListProjects(c.Request.Context(), content.ProjectFilter{FeaturedOnly: featured, CarouselOnly: carousel})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) projectsAfterWrite(c *gin.Context, status int, p *models.Project) {
	list, err := h.svc.ListProjects(c.Request.Context(), content.ProjectFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"project": p, "projects": list})
}

// GetProjectBySlug falls back to id lookup so older links keep working.
func (h *ContentHandler) GetProjectBySlug(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.svc.GetProjectBySlug(ctx, c.Param("slug"))
	if errors.Is(err, content.ErrNotFound) {
		p, err = h.svc.GetProject(ctx, c.Param("slug"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ContentHandler) GetProject(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ContentHandler) CreateProject(c *gin.Context) {
	var p models.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.svc.CreateProject(c.Request.Context(), &p)
	if err != nil {
		respondError(c, err)
		return
	}
	h.projectsAfterWrite(c, http.StatusCreated, created)
}

func (h *ContentHandler) UpdateProject(c *gin.Context) {
	var p models.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.svc.UpdateProject(c.Request.Context(), c.Param("id"), &p)
	if err != nil {
		respondError(c, err)
		return
	}
	h.projectsAfterWrite(c, http.StatusOK, updated)
}

func (h *ContentHandler) DeleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.projectsAfterWrite(c, http.StatusOK, nil)
}

func (h *ContentHandler) SetFeatured(c *gin.Context) {
	p, err := h.svc.SetFeatured(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.projectsAfterWrite(c, http.StatusOK, p)
}

func (h *ContentHandler) UploadProjectCover(c *gin.Context) {
	up, done, ok := h.upload(c)
	if !ok {
		return
	}
	defer done()
	p, err := h.svc.UploadProjectCover(c.Request.Context(), c.Param("id"), up)
	if err != nil {
		respondError(c, err)
		return
	}
	h.projectsAfterWrite(c, http.StatusOK, p)
}

// --- skills ---

func (h *ContentHandler) ListSkills(c *gin.Context) {
	list, err := h.svc.ListSkills(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) skillsAfterWrite(c *gin.Context, status int, s *models.Skill) {
	list, err := h.svc.ListSkills(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"skill": s, "skills": list})
}

func (h *ContentHandler) CreateSkill(c *gin.Context) {
	var s models.Skill
	if err := c.ShouldBindJSON(&s); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.svc.CreateSkill(c.Request.Context(), &s)
	if err != nil {
		respondError(c, err)
		return
	}
	h.skillsAfterWrite(c, http.StatusCreated, created)
}

func (h *ContentHandler) UpdateSkill(c *gin.Context) {
	var s models.Skill
	if err := c.ShouldBindJSON(&s); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.svc.UpdateSkill(c.Request.Context(), c.Param("id"), &s)
	if err != nil {
		respondError(c, err)
		return
	}
	h.skillsAfterWrite(c, http.StatusOK, updated)
}

func (h *ContentHandler) DeleteSkill(c *gin.Context) {
	if err := h.svc.DeleteSkill(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.skillsAfterWrite(c, http.StatusOK, nil)
}

// --- experiences ---

func (h *ContentHandler) ListExperiences(c *gin.Context) {
	list, err := h.svc.ListExperiences(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) experiencesAfterWrite(c *gin.Context, status int, e *models.Experience) {
	list, err := h.svc.ListExperiences(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"experience": e, "experiences": list})
}

func (h *ContentHandler) CreateExperience(c *gin.Context) {
	var e models.Experience
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.svc.CreateExperience(c.Request.Context(), &e)
	if err != nil {
		respondError(c, err)
		return
	}
	h.experiencesAfterWrite(c, http.StatusCreated, created)
}

func (h *ContentHandler) UpdateExperience(c *gin.Context) {
	var e models.Experience
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.svc.UpdateExperience(c.Request.Context(), c.Param("id"), &e)
	if err != nil {
		respondError(c, err)
		return
	}
	h.experiencesAfterWrite(c, http.StatusOK, updated)
}

func (h *ContentHandler) DeleteExperience(c *gin.Context) {
	if err := h.svc.DeleteExperience(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.experiencesAfterWrite(c, http.StatusOK, nil)
}

// --- images ---

func (h *ContentHandler) ListImages(c *gin.Context) {
	list, err := h.svc.ListImages(c.Request.Context(), c.Query("folder"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) DeleteImage(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	if err := h.svc.DeleteImage(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- aggregate ---

func (h *ContentHandler) Portfolio(c *gin.Context) {
	pf, err := h.svc.Portfolio(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pf)
}
