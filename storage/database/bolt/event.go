package boltrepos

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/Armandk18/taskmanager/core/event"
)

type eventRepository struct {
	db *bbolt.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *bbolt.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(_ context.Context, e event.Event) (event.Event, error) {
	e.ID = uuid.New().String()
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		return putDoc(tx, eventsBucket, e.ID, e)
	})
	if err != nil {
		return event.Event{}, errors.Wrap(err, "storing event")
	}
	return e, nil
}

func (repo *eventRepository) GetEvent(_ context.Context, id string) (event.Event, error) {
	var e event.Event
	err := repo.db.View(func(tx *bbolt.Tx) error {
		var err error
		e, err = getDoc[event.Event](tx, eventsBucket, id, event.ErrNotFound)
		return err
	})
	return e, err
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *event.QueryFilter) ([]event.Event, error) {
	var events []event.Event
	err := repo.db.View(func(tx *bbolt.Tx) error {
		var err error
		events, err = allDocs(tx, eventsBucket, filter.Matches)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
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
	var e event.Event
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		var err error
		e, err = getDoc[event.Event](tx, eventsBucket, id, event.ErrNotFound)
		if err != nil {
			return err
		}
		ue.Apply(&e)
		return putDoc(tx, eventsBucket, id, e)
	})
	return e, err
}

func (repo *eventRepository) DeleteEvent(_ context.Context, id string) error {
	return repo.db.Update(func(tx *bbolt.Tx) error {
		return deleteDoc(tx, eventsBucket, id, event.ErrNotFound)
	})
}
