package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Armandk18/taskmanager/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) CreateEvent(_ context.Context, e event.Event) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = uuid.New().String()
	stored := e
	repo.db.t[e.ID] = &stored
	return e, nil
}

func (repo *eventRepository) GetEvent(_ context.Context, id string) (event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.t[id]; ok {
		return *e, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *event.QueryFilter) ([]event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]event.Event, 0)
	for _, e := range repo.db.t {
		if filter.Matches(*e) {
			events = append(events, *e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if event.Less(events[i], events[j]) != event.Less(events[j], events[i]) {
			return event.Less(events[i], events[j])
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, id string, ue event.UpdateEvent) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e, ok := repo.db.t[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	ue.Apply(e)
	return *e, nil
}

func (repo *eventRepository) DeleteEvent(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return event.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}
