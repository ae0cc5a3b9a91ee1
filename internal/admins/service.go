package admins

import (
	"context"
	"errors"

	"github.com/folio/portfolio/backend/go-services/internal/models"
)

var ErrNoSubject = errors.New("token has no subject")

// Service records who is using the admin surface.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or refreshes the admin described by verified token claims.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.Admin, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return nil, ErrNoSubject
	}
	if name == "" {
		name, _ = claims["preferred_username"].(string)
	}
	return s.repo.UpsertBySub(ctx, &models.Admin{Sub: sub, Email: email, Name: name})
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.Admin, error) {
	return s.repo.GetBySub(ctx, sub)
}
