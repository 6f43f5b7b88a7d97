package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Armandk18/taskmanager/core/event"
)

type eventRow struct {
	ID            string      `db:"id"`
	Title         string      `db:"title"`
	Description   string      `db:"description"`
	StartDate     string      `db:"start_date"`
	EndDate       string      `db:"end_date"`
	StartTime     null.String `db:"start_time"`
	EndTime       null.String `db:"end_time"`
	CreatedBy     string      `db:"created_by"`
	CreatedByName string      `db:"created_by_name"`
	Visibility    string      `db:"visibility"`
	Color         string      `db:"color"`
	CreatedAt     time.Time   `db:"created_at"`
}

func toEventRow(e event.Event) eventRow {
	return eventRow{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		StartTime:     nullableString(e.StartTime),
		EndTime:       nullableString(e.EndTime),
		CreatedBy:     e.CreatedBy,
		CreatedByName: e.CreatedByName,
		Visibility:    string(e.Visibility),
		Color:         e.Color,
		CreatedAt:     e.CreatedAt.UTC(),
	}
}

func (r eventRow) event() event.Event {
	return event.Event{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		StartTime:     r.StartTime.String,
		EndTime:       r.EndTime.String,
		CreatedBy:     r.CreatedBy,
		CreatedByName: r.CreatedByName,
		Visibility:    event.Visibility(r.Visibility),
		Color:         r.Color,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

func nullableString(s string) null.String {
	return null.NewString(s, s != "")
}

const eventColumns = "id, title, description, start_date, end_date, start_time, end_time, created_by, created_by_name, visibility, color, created_at"

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	e.ID = uuid.New().String()
	q := `INSERT INTO events (` + eventColumns + `)
		VALUES (:id, :title, :description, :start_date, :end_date, :start_time, :end_time, :created_by, :created_by_name, :visibility, :color, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toEventRow(e)); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return e, nil
}

func getEvent(ctx context.Context, q sqlx.ExtContext, id string) (event.Event, error) {
	var row eventRow
	query := q.Rebind("SELECT " + eventColumns + " FROM events WHERE id = ?")
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		return event.Event{}, trapNoRowsErr(err, event.ErrNotFound, "selecting event")
	}
	return row.event(), nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	return getEvent(ctx, repo.db, id)
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter *event.QueryFilter) ([]event.Event, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.VisibleTo != "" {
			where = append(where, "(visibility = ? OR created_by = ?)")
			args = append(args, string(event.VisibilityPublic), filter.VisibleTo)
		}
		if filter.To != "" {
			where = append(where, "start_date <= ?")
			args = append(args, filter.To)
		}
		if filter.From != "" {
			where = append(where, "end_date >= ?")
			args = append(args, filter.From)
		}
	}
	q := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY start_date, COALESCE(start_time, ''), created_at, id"

	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting events")
	}
	events := make([]event.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.event())
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, id string, ue event.UpdateEvent) (event.Event, error) {
	var e event.Event
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var set setClause
		if ue.Title != nil {
			set.add("title", *ue.Title)
		}
		if ue.Description != nil {
			set.add("description", *ue.Description)
		}
		if ue.StartDate != nil {
			set.add("start_date", *ue.StartDate)
		}
		if ue.EndDate != nil {
			set.add("end_date", *ue.EndDate)
		}
		if ue.StartTime != nil {
			set.add("start_time", nullableString(*ue.StartTime))
		}
		if ue.EndTime != nil {
			set.add("end_time", nullableString(*ue.EndTime))
		}
		if ue.Visibility != nil {
			set.add("visibility", string(*ue.Visibility))
		}
		if ue.Color != nil {
			set.add("color", *ue.Color)
		}
		if !set.empty() {
			found, err := set.update(ctx, tx, "events", id)
			if err != nil {
				return errors.Wrap(err, "updating event")
			}
			if !found {
				return event.ErrNotFound
			}
		}
		var err error
		e, err = getEvent(ctx, tx, id)
		return err
	})
	return e, err
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "events", id, event.ErrNotFound)
}
