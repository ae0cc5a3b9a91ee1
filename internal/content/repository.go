package content

import (
	"context"
	"errors"

	"github.com/folio/portfolio/backend/go-services/internal/models"
)

const (
	ProfileCollection     = "profile"
	ProjectsCollection    = "projects"
	SkillsCollection      = "skills"
	ExperiencesCollection = "experiences"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// Repository persists the portfolio content collections.
type Repository interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, p *models.Profile) error

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error)
	InsertProject(ctx context.Context, p *models.Project) error
	ReplaceProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
	// ClearFeatured unsets isFeatured on every project except exceptID.
	ClearFeatured(ctx context.Context, exceptID string) error
	MarkFeatured(ctx context.Context, id string) error

	ListSkills(ctx context.Context) ([]models.Skill, error)
	InsertSkill(ctx context.Context, s *models.Skill) error
	ReplaceSkill(ctx context.Context, s *models.Skill) error
	DeleteSkill(ctx context.Context, id string) error

	ListExperiences(ctx context.Context) ([]models.Experience, error)
	InsertExperience(ctx context.Context, e *models.Experience) error
	ReplaceExperience(ctx context.Context, e *models.Experience) error
	DeleteExperience(ctx context.Context, id string) error
}
