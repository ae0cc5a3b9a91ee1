package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	k, err := ObjectKey(ProfileFolder, "me photo.png")
	require.NoError(t, err)
	assert.Equal(t, "profile/me-photo.png", k)

	k, err = ObjectKey(ProjectsFolder, "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "projects/passwd", k)

	_, err = ObjectKey("secrets", "a.png")
	assert.True(t, errors.Is(err, ErrInvalidFolder))

	_, err = ObjectKey(ProfileFolder, "..")
	assert.Error(t, err)
}

func TestMemoryStoreUploadListDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Upload(ctx, "profile/a.png", strings.NewReader("aaa"), 3, "image/png")
	require.NoError(t, err)
	_, err = s.Upload(ctx, "projects/b.png", strings.NewReader("bb"), 2, "image/png")
	require.NoError(t, err)

	list, err := s.List(ctx, "profile")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "profile/a.png", list[0].Key)
	assert.Equal(t, int64(3), list[0].Size)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Delete(ctx, "profile/a.png"))
	assert.True(t, errors.Is(s.Delete(ctx, "profile/a.png"), ErrNotFound))
}

func TestLoadMinIOConfigDefaults(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MINIO_PUBLIC_URL", "https://cdn.example.com/")
	cfg := LoadMinIOConfig()
	assert.Equal(t, "localhost:9000", cfg.Endpoint)
	assert.True(t, cfg.UseSSL)
	assert.Equal(t, "portfolio", cfg.Bucket)
	assert.Equal(t, "https://cdn.example.com", cfg.PublicBaseURL)
}
