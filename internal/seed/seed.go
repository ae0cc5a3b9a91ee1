// Package seed loads portfolio content from a YAML file into the content service.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/folio/portfolio/backend/go-services/internal/content"
	"github.com/folio/portfolio/backend/go-services/internal/icons"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"gopkg.in/yaml.v3"
)

type Profile struct {
	Name    string         `yaml:"name"`
	Title   string         `yaml:"title"`
	Photo   string         `yaml:"photo"`
	About   string         `yaml:"about"`
	Email   string         `yaml:"email"`
	Phone   string         `yaml:"phone"`
	Socials models.Socials `yaml:"socials"`
}

type Project struct {
	Name        string   `yaml:"name"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	Photo       string   `yaml:"photo"`
	ButtonLink  string   `yaml:"buttonLink"`
	ButtonType  string   `yaml:"buttonType"`
	Icon        string   `yaml:"icon"`
	Tags        []string `yaml:"tags"`
	Featured    bool     `yaml:"featured"`
	InCarousel  *bool    `yaml:"inCarousel"`
}

type Skill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

type Experience struct {
	Title        string   `yaml:"title"`
	Company      string   `yaml:"company"`
	Logo         string   `yaml:"logo"`
	Location     string   `yaml:"location"`
	StartDate    string   `yaml:"startDate"`
	EndDate      string   `yaml:"endDate"`
	Description  string   `yaml:"description"`
	Technologies []string `yaml:"technologies"`
	Order        int      `yaml:"order"`
}

// File is the seed document layout.
type File struct {
	Profile     *Profile     `yaml:"profile"`
	Projects    []Project    `yaml:"projects"`
	Skills      []Skill      `yaml:"skills"`
	Experiences []Experience `yaml:"experiences"`
}

// Summary counts what Apply wrote.
type Summary struct {
	Profile bool
	Created int
	Updated int
}

func (s Summary) String() string {
	return fmt.Sprintf("profile=%v created=%d updated=%d", s.Profile, s.Created, s.Updated)
}

// Parse decodes a seed file. Unknown keys are rejected so typos surface early.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply writes f through svc. Existing records are matched (projects by slug,
// skills by name, experiences by title and company) and replaced, so running
// the same file twice leaves one copy of everything.
func Apply(ctx context.Context, svc *content.Service, f *File) (Summary, error) {
	var sum Summary
	if f.Profile != nil {
		p := f.Profile
		if _, err := svc.SaveProfile(ctx, &models.Profile{
			Name: p.Name, Title: p.Title, Photo: p.Photo, About: p.About,
			Email: p.Email, Phone: p.Phone, Socials: p.Socials,
		}); err != nil {
			return sum, fmt.Errorf("profile: %w", err)
		}
		sum.Profile = true
	}

	projects, err := svc.ListProjects(ctx, content.ProjectFilter{})
	if err != nil {
		return sum, err
	}
	bySlug := make(map[string]string, len(projects))
	for _, p := range projects {
		if p.Slug != "" {
			bySlug[p.Slug] = p.ID
		}
	}
	for _, sp := range f.Projects {
		p := &models.Project{
			Name: sp.Name, Slug: sp.Slug, Description: sp.Description, Photo: sp.Photo,
			ButtonLink: sp.ButtonLink, ButtonType: sp.ButtonType, Icon: sp.Icon,
			Tags: sp.Tags, IsFeatured: sp.Featured, InCarousel: sp.InCarousel,
		}
		if p.Slug == "" {
			p.Slug = content.Slugify(sp.Name)
		}
		if sp.Icon != "" && !icons.Known(sp.Icon) {
			logger.Warnf("seed: project %q has unknown icon %q, using %q", sp.Name, sp.Icon, icons.Default)
		}
		if id, ok := bySlug[content.Slugify(p.Slug)]; ok {
			if _, err := svc.UpdateProject(ctx, id, p); err != nil {
				return sum, fmt.Errorf("project %q: %w", sp.Name, err)
			}
			sum.Updated++
			continue
		}
		created, err := svc.CreateProject(ctx, p)
		if err != nil {
			return sum, fmt.Errorf("project %q: %w", sp.Name, err)
		}
		bySlug[created.Slug] = created.ID
		sum.Created++
	}

	skills, err := svc.ListSkills(ctx)
	if err != nil {
		return sum, err
	}
	byName := make(map[string]string, len(skills))
	for _, s := range skills {
		byName[strings.ToLower(s.Name)] = s.ID
	}
	for _, ss := range f.Skills {
		sk := &models.Skill{Name: ss.Name, Level: ss.Level}
		if id, ok := byName[strings.ToLower(strings.TrimSpace(ss.Name))]; ok {
			if _, err := svc.UpdateSkill(ctx, id, sk); err != nil {
				return sum, fmt.Errorf("skill %q: %w", ss.Name, err)
			}
			sum.Updated++
			continue
		}
		created, err := svc.CreateSkill(ctx, sk)
		if err != nil {
			return sum, fmt.Errorf("skill %q: %w", ss.Name, err)
		}
		byName[strings.ToLower(created.Name)] = created.ID
		sum.Created++
	}

	exps, err := svc.ListExperiences(ctx)
	if err != nil {
		return sum, err
	}
	expKey := func(title, company string) string {
		return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(company))
	}
	byKey := make(map[string]string, len(exps))
	for _, e := range exps {
		byKey[expKey(e.Title, e.Company)] = e.ID
	}
	for _, se := range f.Experiences {
		e := &models.Experience{
			Title: se.Title, Company: se.Company, Logo: se.Logo, Location: se.Location,
			StartDate: se.StartDate, EndDate: se.EndDate, Description: se.Description,
			Technologies: se.Technologies, Order: se.Order,
		}
		if id, ok := byKey[expKey(se.Title, se.Company)]; ok {
			if _, err := svc.UpdateExperience(ctx, id, e); err != nil {
				return sum, fmt.Errorf("experience %q: %w", se.Title, err)
			}
			sum.Updated++
			continue
		}
		created, err := svc.CreateExperience(ctx, e)
		if err != nil {
			return sum, fmt.Errorf("experience %q: %w", se.Title, err)
		}
		byKey[expKey(created.Title, created.Company)] = created.ID
		sum.Created++
	}
	logger.Infof("seed applied: %s", sum)
	return sum, nil
}
