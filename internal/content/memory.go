package content

import (
	"context"
	"sync"

	"github.com/folio/portfolio/backend/go-services/internal/models"
)

// MemoryRepo is an in-memory Repository for tests and for running without MongoDB.
type MemoryRepo struct {
	mu          sync.RWMutex
	profile     *models.Profile
	projects    map[string]models.Project
	skills      map[string]models.Skill
	experiences map[string]models.Experience
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		projects:    make(map[string]models.Project),
		skills:      make(map[string]models.Skill),
		experiences: make(map[string]models.Experience),
	}
}

func (m *MemoryRepo) GetProfile(ctx context.Context) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return nil, ErrNotFound
	}
	p := *m.profile
	return &p, nil
}

func (m *MemoryRepo) SaveProfile(ctx context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profile = &cp
	return nil
}

func (m *MemoryRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryRepo) GetProject(ctx context.Context, id string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryRepo) GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if p.Slug != "" && p.Slug == slug {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) InsertProject(ctx context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = *p
	return nil
}

func (m *MemoryRepo) ReplaceProject(ctx context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; !ok {
		return ErrNotFound
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *MemoryRepo) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *MemoryRepo) ClearFeatured(ctx context.Context, exceptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.projects {
		if p.IsFeatured && id != exceptID {
			p.IsFeatured = false
			m.projects[id] = p
		}
	}
	return nil
}

func (m *MemoryRepo) MarkFeatured(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return ErrNotFound
	}
	p.IsFeatured = true
	m.projects[id] = p
	return nil
}

func (m *MemoryRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Skill, 0, len(m.skills))
	for _, s := range m.skills {
		out = append(out, s)
	}
	return out, nil
}

func (m *MemoryRepo) InsertSkill(ctx context.Context, s *models.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skills[s.ID] = *s
	return nil
}

func (m *MemoryRepo) ReplaceSkill(ctx context.Context, s *models.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.skills[s.ID]; !ok {
		return ErrNotFound
	}
	m.skills[s.ID] = *s
	return nil
}

func (m *MemoryRepo) DeleteSkill(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.skills[id]; !ok {
		return ErrNotFound
	}
	delete(m.skills, id)
	return nil
}

func (m *MemoryRepo) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Experience, 0, len(m.experiences))
	for _, e := range m.experiences {
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryRepo) InsertExperience(ctx context.Context, e *models.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experiences[e.ID] = *e
	return nil
}

func (m *MemoryRepo) ReplaceExperience(ctx context.Context, e *models.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.experiences[e.ID]; !ok {
		return ErrNotFound
	}
	m.experiences[e.ID] = *e
	return nil
}

func (m *MemoryRepo) DeleteExperience(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.experiences[id]; !ok {
		return ErrNotFound
	}
	delete(m.experiences, id)
	return nil
}
