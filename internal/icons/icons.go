// Package icons maps the closed set of project icon identifiers stored in the
// document store to their rendered form. Unknown identifiers resolve to Default.
package icons

import (
	"sort"
	"strings"
)

type ID string

const (
	Code     ID = "code"
	Globe    ID = "globe"
	Mobile   ID = "mobile"
	Database ID = "database"
	Server   ID = "server"
	Cloud    ID = "cloud"
	Robot    ID = "robot"
	Game     ID = "game"
	Chart    ID = "chart"
	Terminal ID = "terminal"
	Shop     ID = "shop"
	Book     ID = "book"

	Default = Code
)

// Icon is one entry of the catalogue.
type Icon struct {
	ID    ID     `json:"id"`
	Label string `json:"label"`
	Glyph string `json:"glyph"`
}

var catalogue = map[ID]Icon{
	Code:     {Code, "Code", "</>"},
	Globe:    {Globe, "Website", "🌐"},
	Mobile:   {Mobile, "Mobile app", "📱"},
	Database: {Database, "Database", "🗄"},
	Server:   {Server, "Backend service", "🖥"},
	Cloud:    {Cloud, "Cloud", "☁"},
	Robot:    {Robot, "AI / ML", "🤖"},
	Game:     {Game, "Game", "🎮"},
	Chart:    {Chart, "Data / analytics", "📈"},
	Terminal: {Terminal, "CLI tool", "⌨"},
	Shop:     {Shop, "E-commerce", "🛒"},
	Book:     {Book, "Docs / writing", "📖"},
}

// Known reports whether name is in the catalogue (case-insensitive).
func Known(name string) bool {
	_, ok := catalogue[ID(strings.ToLower(strings.TrimSpace(name)))]
	return ok
}

// Normalize returns the catalogue id for name, or Default when unknown or empty.
func Normalize(name string) ID {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := catalogue[id]; ok {
		return id
	}
	return Default
}

// Lookup returns the icon for name, falling back to Default.
func Lookup(name string) Icon {
	return catalogue[Normalize(name)]
}

// Render returns the glyph used to draw the icon in text output.
func Render(name string) string {
	return Lookup(name).Glyph
}

// All lists the catalogue ordered by id.
func All() []Icon {
	out := make([]Icon, 0, len(catalogue))
	for _, ic := range catalogue {
		out = append(out, ic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
