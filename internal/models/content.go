package models

import "time"

// ProfileID is the fixed document id of the profile singleton.
const ProfileID = "profile"

type Socials struct {
	GitHub   string `bson:"github,omitempty" json:"github,omitempty"`
	LinkedIn string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Twitter  string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Website  string `bson:"website,omitempty" json:"website,omitempty"`
}

// Profile is the site owner's singleton record.
type Profile struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Title     string    `bson:"title" json:"title"`
	Photo     string    `bson:"photo,omitempty" json:"photo,omitempty"` // object key or absolute URL
	PhotoURL  string    `bson:"-" json:"photoUrl,omitempty"`
	About     string    `bson:"about" json:"about"`
	Socials   Socials   `bson:"socials" json:"socials"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Project struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"` // sanitized HTML
	Photo       string    `bson:"photo,omitempty" json:"photo,omitempty"`
	PhotoURL    string    `bson:"-" json:"photoUrl,omitempty"`
	ButtonLink  string    `bson:"buttonLink,omitempty" json:"buttonLink,omitempty"`
	ButtonType  string    `bson:"buttonType,omitempty" json:"buttonType,omitempty"`
	Slug        string    `bson:"slug,omitempty" json:"slug,omitempty"`
	IsFeatured  bool      `bson:"isFeatured" json:"isFeatured"`
	InCarousel  *bool     `bson:"inCarousel,omitempty" json:"inCarousel,omitempty"`
	Icon        string    `bson:"icon,omitempty" json:"icon,omitempty"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Skill level is display-only, 0..100.
type Skill struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Level int    `bson:"level" json:"level"`
}

type Experience struct {
	ID           string   `bson:"_id" json:"id"`
	Title        string   `bson:"title" json:"title"`
	Company      string   `bson:"company" json:"company"`
	Logo         string   `bson:"logo,omitempty" json:"logo,omitempty"`
	Location     string   `bson:"location" json:"location"`
	StartDate    string   `bson:"startDate" json:"startDate"`
	EndDate      string   `bson:"endDate" json:"endDate"`
	Description  string   `bson:"description" json:"description"`
	Technologies []string `bson:"technologies" json:"technologies"`
	Order        int      `bson:"order" json:"order"`
}

// Portfolio is the public snapshot the chat assistant is primed with.
type Portfolio struct {
	Profile     *Profile     `json:"profile,omitempty"`
	Projects    []Project    `json:"projects"`
	Skills      []Skill      `json:"skills"`
	Experiences []Experience `json:"experiences"`
}
