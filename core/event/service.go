package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

var ErrNotFound = errors.New("event not found")

type (
	Repository interface {
		CreateEvent(ctx context.Context, e Event) (Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		// QueryEvents returns events ordered by StartDate, StartTime then CreatedAt.
		QueryEvents(ctx context.Context, filter *QueryFilter) ([]Event, error)
		UpdateEvent(ctx context.Context, id string, ue UpdateEvent) (Event, error)
		DeleteEvent(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, usrRepo: usrRepo}
}

// List returns the events visible to `actor`, optionally within the [from, to] window.
func (svc *Service) List(ctx context.Context, actor user.Actor, from, to string) ([]Event, error) {
	return svc.repo.QueryEvents(ctx, ReadFilter(actor, from, to))
}

// Create stores a new event. `ne` must be validated.
func (svc *Service) Create(ctx context.Context, actor user.Actor, ne NewEvent) (Event, error) {
	createdByName := DefaultCreatedByName
	if usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: actor.ID}); err == nil && usr.Name != "" {
		createdByName = usr.Name
	}
	color := ne.Color
	if color == "" {
		color = DefaultColor
	}
	return svc.repo.CreateEvent(ctx, Event{
		Title:         ne.Title,
		Description:   ne.Description,
		StartDate:     ne.StartDate,
		EndDate:       ne.EndDate,
		StartTime:     ne.StartTime,
		EndTime:       ne.EndTime,
		CreatedBy:     actor.ID,
		CreatedByName: createdByName,
		Visibility:    EffectiveVisibility(actor, ne.Visibility),
		Color:         color,
		CreatedAt:     time.Now().UTC(),
	})
}

// Update edits the event if `actor` may mutate it. `ue` must be validated.
func (svc *Service) Update(ctx context.Context, actor user.Actor, id string, ue UpdateEvent) (Event, error) {
	e, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if !CanMutate(actor, e) {
		return Event{}, core.ErrPermissionDenied
	}
	if ue.Visibility != nil {
		vis := EffectiveVisibility(actor, *ue.Visibility)
		ue.Visibility = &vis
	}
	if ue.Color != nil && *ue.Color == "" {
		color := DefaultColor
		ue.Color = &color
	}

	merged := e
	ue.Apply(&merged)
	if merged.EndDate < merged.StartDate {
		return Event{}, dateOrderError()
	}
	return svc.repo.UpdateEvent(ctx, id, ue)
}

func (svc *Service) Delete(ctx context.Context, actor user.Actor, id string) error {
	e, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(actor, e) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteEvent(ctx, id)
}
