package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aqevent/pkg/client"
	"aqevent/pkg/logger"
	"aqevent/pkg/model"
)

// GitHubStore keeps collections as JSON files in a repository. The blob sha
// is the version token; a write that loses a race re-reads the sha once and
// overwrites, so the last writer wins.
type GitHubStore struct {
	client *client.GitHubClient
	logger *logger.Logger
	now    func() time.Time
}

func NewGitHubStore(c *client.GitHubClient, log *logger.Logger) *GitHubStore {
	return &GitHubStore{client: c, logger: log, now: time.Now}
}

func (s *GitHubStore) ReadCollection(ctx context.Context, name string) (*model.Collection, error) {
	if err := ValidateCollection(name); err != nil {
		return nil, err
	}
	file, err := s.client.GetContent(ctx, CollectionPath(name))
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return model.EmptyCollection(), nil
		}
		return nil, err
	}
	data, err := file.Decoded()
	if err != nil {
		return nil, err
	}
	return DecodeCollection(data)
}

func (s *GitHubStore) WriteCollection(ctx context.Context, name string, events []*model.Event, description string) error {
	if err := ValidateCollection(name); err != nil {
		return err
	}
	data, err := EncodeCollection(model.NewCollection(events, description, s.now()))
	if err != nil {
		return err
	}
	message := description
	if message == "" {
		message = fmt.Sprintf("Update %s - %s", CollectionPath(name), s.now().UTC().Format(time.RFC3339))
	}

	path := CollectionPath(name)
	for attempt := 0; ; attempt++ {
		sha, err := s.currentSHA(ctx, path)
		if err != nil {
			return err
		}
		_, err = s.client.PutContent(ctx, path, data, message, sha)
		if err == nil {
			return nil
		}
		if !errors.Is(err, client.ErrConflict) || attempt > 0 {
			return err
		}
		s.logger.Warn("Collection changed during write, retrying with fresh sha",
			"collection", name,
		)
	}
}

func (s *GitHubStore) currentSHA(ctx context.Context, path string) (string, error) {
	file, err := s.client.GetContent(ctx, path)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return file.SHA, nil
}

func (s *GitHubStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *GitHubStore) Upload(ctx context.Context, name string, data []byte, ownerID string) (*model.StoredFile, error) {
	path := FilePath(ownerID, name)
	sha, err := s.currentSHA(ctx, path)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Upload file: %s", name)
	if ownerID != "" {
		message += " for event " + ownerID
	}
	file, err := s.client.PutContent(ctx, path, data, message, sha)
	if err != nil {
		return nil, err
	}
	return &model.StoredFile{
		OriginalName: name,
		StoredPath:   path,
		DownloadURL:  file.DownloadURL,
		UploadedAt:   s.now(),
		Size:         file.Size,
		Ref:          file.SHA,
	}, nil
}
