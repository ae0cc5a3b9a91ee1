package chat

import (
	"fmt"
	"html"
	"strings"

	"github.com/folio/portfolio/backend/go-services/internal/icons"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// plain strips markup from rich text and collapses whitespace.
func plain(s string) string {
	s = strings.NewReplacer("<br>", " ", "<br/>", " ", "</p>", " ", "</li>", " ").Replace(s)
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}

// BuildSystemPrompt renders the assistant's instructions from the current
// portfolio. Output is deterministic for a given input.
func BuildSystemPrompt(p *models.Portfolio) string {
	if p == nil {
		p = &models.Portfolio{}
	}
	prof := p.Profile
	if prof == nil {
		prof = &models.Profile{}
	}
	owner := strings.TrimSpace(prof.Name)
	if owner == "" {
		owner = "the site owner"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the assistant on %s's portfolio website. Answer visitors' questions about %s's background, skills, experience and projects using only the information below. If something is not covered, say you don't know. Keep answers short and use markdown where it helps.\n\n", owner, owner)

	fmt.Fprintf(&b, "Name: %s\n", strings.TrimSpace(prof.Name))
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(prof.Title))
	fmt.Fprintf(&b, "About: %s\n", plain(prof.About))

	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	fmt.Fprintf(&b, "\nSkills: %s\n", strings.Join(names, ", "))

	if prof.Email != "" || prof.Phone != "" {
		b.WriteString("\n")
		if prof.Email != "" {
			fmt.Fprintf(&b, "Contact email: %s\n", prof.Email)
		}
		if prof.Phone != "" {
			fmt.Fprintf(&b, "Contact phone: %s\n", prof.Phone)
		}
		b.WriteString("Only share the contact details above when the visitor explicitly asks how to get in touch.\n")
	}

	if len(p.Experiences) > 0 {
		b.WriteString("\nExperience:\n")
		for _, e := range p.Experiences {
			end := e.EndDate
			if end == "" {
				end = "present"
			}
			fmt.Fprintf(&b, "- %s at %s (%s - %s)", e.Title, e.Company, e.StartDate, end)
			if len(e.Technologies) > 0 {
				fmt.Fprintf(&b, " [Technologies: %s]", strings.Join(e.Technologies, ", "))
			}
			b.WriteString("\n")
		}
	}

	if len(p.Projects) > 0 {
		b.WriteString("\nProjects:\n")
		for _, pr := range p.Projects {
			fmt.Fprintf(&b, "- %s: %s", pr.Name, plain(pr.Description))
			if len(pr.Tags) > 0 {
				fmt.Fprintf(&b, " [Tags: %s]", strings.Join(pr.Tags, ", "))
			}
			if pr.ButtonLink != "" {
				fmt.Fprintf(&b, " [Link: %s]", pr.ButtonLink)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ProjectList renders projects as a markdown list for terminal output, each
// line prefixed with the project's icon glyph. The featured project comes first.
func ProjectList(projects []models.Project) string {
	if len(projects) == 0 {
		return "_No projects yet._\n"
	}
	ordered := make([]models.Project, 0, len(projects))
	for _, pr := range projects {
		if pr.IsFeatured {
			ordered = append(ordered, pr)
		}
	}
	for _, pr := range projects {
		if !pr.IsFeatured {
			ordered = append(ordered, pr)
		}
	}
	var b strings.Builder
	for _, pr := range ordered {
		fmt.Fprintf(&b, "- %s **%s**", icons.Render(pr.Icon), pr.Name)
		if pr.IsFeatured {
			b.WriteString(" (featured)")
		}
		if d := plain(pr.Description); d != "" {
			fmt.Fprintf(&b, ": %s", d)
		}
		if pr.ButtonLink != "" {
			fmt.Fprintf(&b, " <%s>", pr.ButtonLink)
		}
		b.WriteString("\n")
	}
	return b.String()
}
