package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	estimateapp "github.com/pressureflow/backend/internal/application/estimate"
)

var _ estimateapp.PhotoStorage = (*MemoryPhotoStorage)(nil)

// Object is a stored photo
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryPhotoStorage keeps photos in process memory. Used for local
// development and tests; objects are lost on restart.
type MemoryPhotoStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryPhotoStorage creates an empty in-memory store
func NewMemoryPhotoStorage(baseURL string) *MemoryPhotoStorage {
	if baseURL == "" {
		baseURL = "memory://photos"
	}
	return &MemoryPhotoStorage{
		BaseURL: baseURL,
		objects: make(map[string]Object),
	}
}

func (m *MemoryPhotoStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = Object{Data: buf, ContentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryPhotoStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, errors.New("object not found: " + key)
	}

	expiresAt := time.Now().Add(expiresIn)
	return m.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}

func (m *MemoryPhotoStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Get returns a stored object
func (m *MemoryPhotoStorage) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (m *MemoryPhotoStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
