// Package store persists the pending and approved event lists and the files
// attached to events. Every backend behaves as a last-write-wins document
// store keyed by collection name.
package store

import (
	"context"
	"errors"
	"regexp"

	"aqevent/pkg/model"
	"aqevent/pkg/sanitizer"
)

const (
	DataFolder  = "data"
	FilesFolder = "event-files"
)

var (
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrEventNotFound     = errors.New("event not found in collection")
)

var reCollectionName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type Store interface {
	// ReadCollection returns an empty collection when name does not exist yet.
	ReadCollection(ctx context.Context, name string) (*model.Collection, error)
	// WriteCollection replaces the whole list. The backend stamps the envelope.
	WriteCollection(ctx context.Context, name string, events []*model.Event, description string) error
	Ping(ctx context.Context) error
}

type FileStore interface {
	Upload(ctx context.Context, name string, data []byte, ownerID string) (*model.StoredFile, error)
}

// Transitioner is implemented by backends that can move an event between
// collections atomically.
type Transitioner interface {
	MoveEvent(ctx context.Context, id, from, to string, update func(*model.Event), description string) (*model.Event, error)
}

// EventStore is what every backend provides.
type EventStore interface {
	Store
	FileStore
}

func ValidateCollection(name string) error {
	if !reCollectionName.MatchString(name) {
		return ErrInvalidCollection
	}
	return nil
}

func CollectionPath(name string) string {
	return DataFolder + "/" + name + ".json"
}

// FilePath is where an attachment of ownerID is stored.
func FilePath(ownerID, name string) string {
	return FilesFolder + "/" + ownerID + "_" + sanitizer.SanitizeFileName(name)
}

// Corpus exposes both lists to the conflict engine, tagged by source. It
// reads through on every call.
type Corpus struct {
	store Store
}

func NewCorpus(s Store) *Corpus {
	return &Corpus{store: s}
}

func (c *Corpus) LoadCorpus(ctx context.Context) ([]model.CorpusEvent, error) {
	var out []model.CorpusEvent
	sources := []struct {
		name   string
		source model.Source
	}{
		{model.CollectionPending, model.SourcePending},
		{model.CollectionApproved, model.SourceApproved},
	}
	for _, s := range sources {
		coll, err := c.store.ReadCollection(ctx, s.name)
		if err != nil {
			return nil, err
		}
		for _, ev := range coll.Events {
			out = append(out, model.CorpusEvent{Event: ev, Source: s.source})
		}
	}
	return out, nil
}

func indexOf(events []*model.Event, id string) int {
	for i, ev := range events {
		if ev != nil && ev.ID == id {
			return i
		}
	}
	return -1
}

// moveBetween is the pure part of a pending to approved style transition.
func moveBetween(from, to []*model.Event, id string, update func(*model.Event)) ([]*model.Event, []*model.Event, *model.Event, error) {
	i := indexOf(from, id)
	if i < 0 {
		return nil, nil, nil, ErrEventNotFound
	}
	ev := from[i].Clone()
	if update != nil {
		update(ev)
	}
	remaining := make([]*model.Event, 0, len(from)-1)
	remaining = append(remaining, from[:i]...)
	remaining = append(remaining, from[i+1:]...)
	return remaining, append(append([]*model.Event{}, to...), ev), ev, nil
}
