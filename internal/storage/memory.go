package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process ImageStore for tests and local runs without MinIO.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

func (m *MemoryStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	o := memObject{data: buf.Bytes(), contentType: contentType, modified: time.Now().UTC()}
	m.mu.Lock()
	m.objects[key] = o
	m.mu.Unlock()
	return &Object{Key: key, Size: int64(len(o.data)), ContentType: contentType, LastModified: o.modified, URL: "/" + key}, nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]Object, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Object{}
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Object{Key: k, Size: int64(len(o.data)), ContentType: o.contentType, LastModified: o.modified, URL: "/" + k})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) URL(ctx context.Context, key string) (string, error) {
	return "/" + key, nil
}
