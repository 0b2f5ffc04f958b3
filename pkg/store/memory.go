package store

import (
	"context"
	"sync"
	"time"

	"aqevent/pkg/model"
)

// MemoryStore keeps encoded collections in memory. Reads return copies.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]byte
	files       map[string][]byte
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]byte),
		files:       make(map[string][]byte),
		now:         time.Now,
	}
}

func (m *MemoryStore) ReadCollection(ctx context.Context, name string) (*model.Collection, error) {
	if err := ValidateCollection(name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.collections[name]
	m.mu.RUnlock()
	if !ok {
		return model.EmptyCollection(), nil
	}
	return DecodeCollection(data)
}

func (m *MemoryStore) WriteCollection(ctx context.Context, name string, events []*model.Event, description string) error {
	if err := ValidateCollection(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeCollection(model.NewCollection(events, description, m.now()))
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.collections[name] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Upload(ctx context.Context, name string, data []byte, ownerID string) (*model.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := FilePath(ownerID, name)
	m.mu.Lock()
	m.files[path] = append([]byte(nil), data...)
	m.mu.Unlock()
	return &model.StoredFile{
		OriginalName: name,
		StoredPath:   path,
		DownloadURL:  "memory://" + path,
		UploadedAt:   m.now(),
		Size:         int64(len(data)),
	}, nil
}

// File returns a stored attachment, mainly for tests.
func (m *MemoryStore) File(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	return data, ok
}
