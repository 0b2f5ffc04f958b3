package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	eventserrors "aqevent/internal/events/errors"
	"aqevent/pkg/logger"
	"aqevent/pkg/model"
	"aqevent/pkg/store"
)

var reEventID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

type EventRepository interface {
	FindPending(ctx context.Context) ([]*model.Event, error)
	FindApproved(ctx context.Context) ([]*model.Event, error)
	FindAll(ctx context.Context) (pending []*model.Event, approved []*model.Event, err error)
	FindByID(ctx context.Context, id string) (*model.CorpusEvent, error)
	AppendPending(ctx context.Context, ev *model.Event, description string) error
	Approve(ctx context.Context, id string, update func(*model.Event)) (*model.Event, error)
	RemovePending(ctx context.Context, id string, describe func(*model.Event) string) (*model.Event, error)
	UploadFile(ctx context.Context, name string, data []byte, ownerID string) (*model.StoredFile, error)
	Ping(ctx context.Context) error
}

// storeEventRepository serializes writes in this process. The backends are
// last-write-wins, so two concurrent read-modify-write cycles would lose one.
type storeEventRepository struct {
	store store.EventStore
	log   *logger.Logger
	mu    sync.Mutex
}

func NewEventRepository(s store.EventStore, log *logger.Logger) EventRepository {
	return &storeEventRepository{
		store: s,
		log:   log,
	}
}

func ValidID(id string) bool {
	return reEventID.MatchString(id)
}

func (r *storeEventRepository) read(ctx context.Context, name string) ([]*model.Event, error) {
	coll, err := r.store.ReadCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", eventserrors.ErrStoreUnavailable, name, err)
	}
	return coll.Events, nil
}

func (r *storeEventRepository) FindPending(ctx context.Context) ([]*model.Event, error) {
	return r.read(ctx, model.CollectionPending)
}

func (r *storeEventRepository) FindApproved(ctx context.Context) ([]*model.Event, error) {
	return r.read(ctx, model.CollectionApproved)
}

func (r *storeEventRepository) FindAll(ctx context.Context) ([]*model.Event, []*model.Event, error) {
	var pending, approved []*model.Event
	var errPending, errApproved error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		pending, errPending = r.FindPending(ctx)
	}()

	go func() {
		defer wg.Done()
		approved, errApproved = r.FindApproved(ctx)
	}()

	wg.Wait()
	if errPending != nil {
		return nil, nil, errPending
	}
	if errApproved != nil {
		return nil, nil, errApproved
	}
	return pending, approved, nil
}

func (r *storeEventRepository) FindByID(ctx context.Context, id string) (*model.CorpusEvent, error) {
	if !ValidID(id) {
		return nil, eventserrors.ErrInvalidID
	}
	pending, approved, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if ev := find(pending, id); ev != nil {
		return &model.CorpusEvent{Event: ev, Source: model.SourcePending}, nil
	}
	if ev := find(approved, id); ev != nil {
		return &model.CorpusEvent{Event: ev, Source: model.SourceApproved}, nil
	}
	return nil, eventserrors.ErrNotFound
}

func (r *storeEventRepository) AppendPending(ctx context.Context, ev *model.Event, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, err := r.FindPending(ctx)
	if err != nil {
		return err
	}
	events := append(append([]*model.Event{}, pending...), ev)
	if err := r.store.WriteCollection(ctx, model.CollectionPending, events, description); err != nil {
		return fmt.Errorf("failed to append event %s: %w", ev.ID, err)
	}
	return nil
}

// Approve moves id from pending to approved. Transactional backends do it
// in one step; otherwise approved is written first, then pending, and a
// failure between the two leaves the event in both lists.
func (r *storeEventRepository) Approve(ctx context.Context, id string, update func(*model.Event)) (*model.Event, error) {
	if !ValidID(id) {
		return nil, eventserrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx, ok := r.store.(store.Transitioner); ok {
		ev, err := tx.MoveEvent(ctx, id, model.CollectionPending, model.CollectionApproved, update,
			fmt.Sprintf("Approve event: %s", id))
		if errors.Is(err, store.ErrEventNotFound) {
			return nil, r.missingFromPending(ctx, id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to approve event %s: %w", id, err)
		}
		return ev, nil
	}

	pending, approved, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(pending, id)
	if i < 0 {
		if find(approved, id) != nil {
			return nil, eventserrors.ErrAlreadyApproved
		}
		return nil, eventserrors.ErrNotFound
	}

	ev := pending[i].Clone()
	if update != nil {
		update(ev)
	}
	remaining := without(pending, i)
	appended := append(append([]*model.Event{}, approved...), ev)

	if err := r.store.WriteCollection(ctx, model.CollectionApproved, appended,
		fmt.Sprintf("Approve event: %s (%s)", ev.Name, id)); err != nil {
		return nil, fmt.Errorf("failed to append approved event %s: %w", id, err)
	}
	if err := r.store.WriteCollection(ctx, model.CollectionPending, remaining,
		fmt.Sprintf("Remove approved event: %s (%s)", ev.Name, id)); err != nil {
		r.log.Error("Approved event left in pending list",
			"event_id", id,
			"error", err,
		)
		return nil, fmt.Errorf("failed to remove approved event %s from pending: %w", id, err)
	}
	return ev, nil
}

func (r *storeEventRepository) missingFromPending(ctx context.Context, id string) error {
	approved, err := r.FindApproved(ctx)
	if err != nil {
		return err
	}
	if find(approved, id) != nil {
		return eventserrors.ErrAlreadyApproved
	}
	return eventserrors.ErrNotFound
}

// RemovePending deletes id from the pending list. describe builds the change
// description from the removed event.
func (r *storeEventRepository) RemovePending(ctx context.Context, id string, describe func(*model.Event) string) (*model.Event, error) {
	if !ValidID(id) {
		return nil, eventserrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, err := r.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(pending, id)
	if i < 0 {
		return nil, eventserrors.ErrNotPending
	}
	ev := pending[i]

	description := "Remove event: " + id
	if describe != nil {
		description = describe(ev)
	}
	if err := r.store.WriteCollection(ctx, model.CollectionPending, without(pending, i), description); err != nil {
		return nil, fmt.Errorf("failed to remove event %s: %w", id, err)
	}
	return ev, nil
}

func (r *storeEventRepository) UploadFile(ctx context.Context, name string, data []byte, ownerID string) (*model.StoredFile, error) {
	return r.store.Upload(ctx, name, data, ownerID)
}

func (r *storeEventRepository) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", eventserrors.ErrStoreUnavailable, err)
	}
	return nil
}

func indexOf(events []*model.Event, id string) int {
	for i, ev := range events {
		if ev != nil && ev.ID == id {
			return i
		}
	}
	return -1
}

func find(events []*model.Event, id string) *model.Event {
	if i := indexOf(events, id); i >= 0 {
		return events[i]
	}
	return nil
}

func without(events []*model.Event, i int) []*model.Event {
	out := make([]*model.Event, 0, len(events)-1)
	out = append(out, events[:i]...)
	return append(out, events[i+1:]...)
}
