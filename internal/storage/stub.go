package storage

import (
	"context"
	"strings"
	"sync"
)

var _ ObjectStorage = (*MemoryStorage)(nil)

type storedObject struct {
	ContentType string
	Data        []byte
}

// MemoryStorage keeps objects in process memory. Used in development when no
// bucket is configured, and in tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]storedObject
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]storedObject),
	}
}

func (m *MemoryStorage) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = storedObject{ContentType: contentType, Data: buf}
	m.mu.Unlock()

	return m.baseURL + "/" + key, nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Get returns a stored object, for tests.
func (m *MemoryStorage) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.Data, obj.ContentType, ok
}

func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
