package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// Folders images may be stored under.
const (
	ProfileFolder  = "profile"
	ProjectsFolder = "projects"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrInvalidFolder = errors.New("unknown image folder")
)

// Object describes a stored image.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
}

// ImageStore is plain upload/list/delete object storage, no versioning.
type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// ValidFolder reports whether f is one of the image folders.
func ValidFolder(f string) bool {
	return f == ProfileFolder || f == ProjectsFolder
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds "<folder>/<filename>" with the filename reduced to a safe base name.
func ObjectKey(folder, filename string) (string, error) {
	if !ValidFolder(folder) {
		return "", ErrInvalidFolder
	}
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		return "", errors.New("filename is required")
	}
	return folder + "/" + name, nil
}
