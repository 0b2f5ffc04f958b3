package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"aqevent/pkg/model"
)

// FileSystemStore lays collections and attachments out under a directory
// with the same paths the GitHub backend uses.
type FileSystemStore struct {
	root string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if root == "" {
		return nil, errors.New("store directory is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, DataFolder), 0o755); err != nil {
		return nil, err
	}
	return &FileSystemStore{root: abs, now: time.Now}, nil
}

func (s *FileSystemStore) ReadCollection(ctx context.Context, name string) (*model.Collection, error) {
	if err := ValidateCollection(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(CollectionPath(name))))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.EmptyCollection(), nil
		}
		return nil, err
	}
	return DecodeCollection(data)
}

func (s *FileSystemStore) WriteCollection(ctx context.Context, name string, events []*model.Event, description string) error {
	if err := ValidateCollection(name); err != nil {
		return err
	}
	data, err := EncodeCollection(model.NewCollection(events, description, s.now()))
	if err != nil {
		return err
	}
	return s.writeAtomic(ctx, CollectionPath(name), data)
}

func (s *FileSystemStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}
	return nil
}

func (s *FileSystemStore) Upload(ctx context.Context, name string, data []byte, ownerID string) (*model.StoredFile, error) {
	path := FilePath(ownerID, name)
	if err := s.writeAtomic(ctx, path, data); err != nil {
		return nil, err
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	return &model.StoredFile{
		OriginalName: name,
		StoredPath:   path,
		DownloadURL:  "file://" + filepath.ToSlash(full),
		UploadedAt:   s.now(),
		Size:         int64(len(data)),
	}, nil
}

// writeAtomic writes through a temp file in the target directory and renames it.
func (s *FileSystemStore) writeAtomic(ctx context.Context, rel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.root, filepath.FromSlash(rel))
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".aqevent-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
