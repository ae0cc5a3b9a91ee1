package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/icons"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/internal/storage"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var ErrStorageUnavailable = errors.New("image storage is not configured")

// Upload is an image received from an admin form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProjectFilter narrows public project listings.
type ProjectFilter struct {
	FeaturedOnly bool
	CarouselOnly bool
}

// Service implements the admin CRUD and public reads over Repository.
// Rich text is sanitized on write; images go to the ImageStore.
type Service struct {
	repo   Repository
	images storage.ImageStore
	policy *bluemonday.Policy
	now    func() time.Time
}

// NewService wires a content service. images may be nil when object storage is not configured.
func NewService(r Repository, images storage.ImageStore) *Service {
	return &Service{repo: r, images: images, policy: bluemonday.UGCPolicy(), now: time.Now}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}

// photoURL resolves a stored photo reference. Keys under the image folders go
// through the ImageStore on every read, so signed links are always fresh.
// Anything else (an absolute URL from a seed file) is returned unchanged.
func (s *Service) photoURL(ctx context.Context, ref string) string {
	folder, _, ok := strings.Cut(ref, "/")
	if !ok || !storage.ValidFolder(folder) || s.images == nil {
		return ref
	}
	u, err := s.images.URL(ctx, ref)
	if err != nil {
		logger.Warnf("resolve photo %s: %v", ref, err)
		return ""
	}
	return u
}

func (s *Service) resolveProfile(ctx context.Context, p *models.Profile, err error) (*models.Profile, error) {
	if err != nil {
		return nil, err
	}
	p.PhotoURL = s.photoURL(ctx, p.Photo)
	return p, nil
}

func (s *Service) resolveProject(ctx context.Context, p *models.Project, err error) (*models.Project, error) {
	if err != nil {
		return nil, err
	}
	p.PhotoURL = s.photoURL(ctx, p.Photo)
	return p, nil
}

// --- profile ---

func (s *Service) GetProfile(ctx context.Context) (*models.Profile, error) {
	p, err := s.repo.GetProfile(ctx)
	return s.resolveProfile(ctx, p, err)
}

// SaveProfile upserts the singleton profile and returns the stored record.
func (s *Service) SaveProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, invalid("name is required")
	}
	p.ID = models.ProfileID
	p.Title = strings.TrimSpace(p.Title)
	p.About = s.policy.Sanitize(p.About)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx)
}

func (s *Service) upload(ctx context.Context, folder string, up Upload) (*storage.Object, error) {
	if s.images == nil {
		return nil, ErrStorageUnavailable
	}
	key, err := storage.ObjectKey(folder, up.Filename)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if up.ContentType != "" && !strings.HasPrefix(up.ContentType, "image/") {
		return nil, invalid("only image uploads are accepted, got %s", up.ContentType)
	}
	obj, err := s.images.Upload(ctx, key, up.Body, up.Size, up.ContentType)
	if err != nil {
		return nil, err
	}
	logger.Infof("image uploaded: key=%s size=%d", obj.Key, obj.Size)
	return obj, nil
}

// UploadProfilePhoto stores profile/<filename> and points the profile photo at
// its object key. The profile must exist first since its name is required.
func (s *Service) UploadProfilePhoto(ctx context.Context, up Upload) (*models.Profile, error) {
	p, err := s.repo.GetProfile(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid("create the profile before uploading a photo")
	} else if err != nil {
		return nil, err
	}
	obj, err := s.upload(ctx, storage.ProfileFolder, up)
	if err != nil {
		return nil, err
	}
	p.Photo = obj.Key
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return s.resolveProfile(ctx, p, nil)
}

// --- projects ---

func (s *Service) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	all, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Project, 0, len(all))
	for _, p := range all {
		if f.FeaturedOnly && !p.IsFeatured {
			continue
		}
		if f.CarouselOnly && (p.InCarousel == nil || !*p.InCarousel) {
			continue
		}
		p.PhotoURL = s.photoURL(ctx, p.Photo)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	return s.resolveProject(ctx, p, err)
}

func (s *Service) GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	p, err := s.repo.GetProjectBySlug(ctx, Slugify(slug))
	return s.resolveProject(ctx, p, err)
}

func (s *Service) prepareProject(ctx context.Context, p *models.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name is required")
	}
	p.Description = s.policy.Sanitize(p.Description)
	p.ButtonLink = strings.TrimSpace(p.ButtonLink)
	p.Slug = Slugify(p.Slug)
	if p.Icon != "" {
		p.Icon = string(icons.Normalize(p.Icon))
	}
	tags := p.Tags[:0]
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags
	if p.Slug != "" {
		other, err := s.repo.GetProjectBySlug(ctx, p.Slug)
		switch {
		case err == nil && other.ID != p.ID:
			return invalid("slug %q is already used by another project", p.Slug)
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}
	}
	return nil
}

func (s *Service) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.ID = uuid.NewString()
	if err := s.prepareProject(ctx, p); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	featured := p.IsFeatured
	p.IsFeatured = false
	if err := s.repo.InsertProject(ctx, p); err != nil {
		return nil, err
	}
	if featured {
		return s.SetFeatured(ctx, p.ID)
	}
	return s.resolveProject(ctx, p, nil)
}

// UpdateProject replaces the project; id and createdAt are preserved.
func (s *Service) UpdateProject(ctx context.Context, id string, p *models.Project) (*models.Project, error) {
	cur, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.prepareProject(ctx, p); err != nil {
		return nil, err
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now().UTC()
	featured := p.IsFeatured && !cur.IsFeatured
	if featured {
		p.IsFeatured = false
	}
	if err := s.repo.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}
	if featured {
		return s.SetFeatured(ctx, id)
	}
	return s.resolveProject(ctx, p, nil)
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return s.repo.DeleteProject(ctx, id)
}

// SetFeatured makes id the featured project: first every other featured
// project is unset, then id is set. The two writes are not atomic.
func (s *Service) SetFeatured(ctx context.Context, id string) (*models.Project, error) {
	if _, err := s.repo.GetProject(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.ClearFeatured(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.MarkFeatured(ctx, id); err != nil {
		return nil, err
	}
	logger.Infof("featured project set: id=%s", id)
	return s.GetProject(ctx, id)
}

// UploadProjectCover stores projects/<filename> and sets its key as the project photo.
func (s *Service) UploadProjectCover(ctx context.Context, id string, up Upload) (*models.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	obj, err := s.upload(ctx, storage.ProjectsFolder, up)
	if err != nil {
		return nil, err
	}
	p.Photo = obj.Key
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}
	return s.resolveProject(ctx, p, nil)
}

// --- skills ---

func validateSkill(sk *models.Skill) error {
	sk.Name = strings.TrimSpace(sk.Name)
	if sk.Name == "" {
		return invalid("name is required")
	}
	if sk.Level < 0 || sk.Level > 100 {
		return invalid("level must be between 0 and 100, got %d", sk.Level)
	}
	return nil
}

// ListSkills orders by level (highest first), then name.
func (s *Service) ListSkills(ctx context.Context) ([]models.Skill, error) {
	out, err := s.repo.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Service) CreateSkill(ctx context.Context, sk *models.Skill) (*models.Skill, error) {
	if err := validateSkill(sk); err != nil {
		return nil, err
	}
	sk.ID = uuid.NewString()
	if err := s.repo.InsertSkill(ctx, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (s *Service) UpdateSkill(ctx context.Context, id string, sk *models.Skill) (*models.Skill, error) {
	if err := validateSkill(sk); err != nil {
		return nil, err
	}
	sk.ID = id
	if err := s.repo.ReplaceSkill(ctx, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (s *Service) DeleteSkill(ctx context.Context, id string) error {
	return s.repo.DeleteSkill(ctx, id)
}

// --- experiences ---

func (s *Service) prepareExperience(e *models.Experience) error {
	e.Title = strings.TrimSpace(e.Title)
	e.Company = strings.TrimSpace(e.Company)
	if e.Title == "" || e.Company == "" {
		return invalid("title and company are required")
	}
	e.Description = s.policy.Sanitize(e.Description)
	if e.Technologies == nil {
		e.Technologies = []string{}
	}
	return nil
}

// ListExperiences returns experiences by ascending order.
func (s *Service) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	out, err := s.repo.ListExperiences(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Service) CreateExperience(ctx context.Context, e *models.Experience) (*models.Experience, error) {
	if err := s.prepareExperience(e); err != nil {
		return nil, err
	}
	e.ID = uuid.NewString()
	if err := s.repo.InsertExperience(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) UpdateExperience(ctx context.Context, id string, e *models.Experience) (*models.Experience, error) {
	if err := s.prepareExperience(e); err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.repo.ReplaceExperience(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	return s.repo.DeleteExperience(ctx, id)
}

// --- images ---

func (s *Service) ListImages(ctx context.Context, folder string) ([]storage.Object, error) {
	if s.images == nil {
		return nil, ErrStorageUnavailable
	}
	if folder != "" && !storage.ValidFolder(folder) {
		return nil, invalid("unknown folder %q", folder)
	}
	return s.images.List(ctx, folder)
}

func (s *Service) DeleteImage(ctx context.Context, key string) error {
	if s.images == nil {
		return ErrStorageUnavailable
	}
	folder, _, ok := strings.Cut(key, "/")
	if !ok || !storage.ValidFolder(folder) {
		return invalid("key must be under profile/ or projects/")
	}
	if err := s.images.Delete(ctx, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// --- aggregate ---

// Portfolio gathers everything the public site and the chat assistant need.
// A missing profile is not an error.
func (s *Service) Portfolio(ctx context.Context) (*models.Portfolio, error) {
	out := &models.Portfolio{}
	p, err := s.GetProfile(ctx)
	switch {
	case err == nil:
		out.Profile = p
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	if out.Projects, err = s.ListProjects(ctx, ProjectFilter{}); err != nil {
		return nil, err
	}
	if out.Skills, err = s.ListSkills(ctx); err != nil {
		return nil, err
	}
	if out.Experiences, err = s.ListExperiences(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
