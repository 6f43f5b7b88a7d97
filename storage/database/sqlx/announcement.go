package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Armandk18/taskmanager/core/announcement"
)

type announcementRow struct {
	ID         string      `db:"id"`
	Title      string      `db:"title"`
	Content    string      `db:"content"`
	AuthorID   null.String `db:"author_id"` // NULL once the author is deleted
	AuthorName string      `db:"author_name"`
	Priority   string      `db:"priority"`
	CreatedAt  time.Time   `db:"created_at"`
}

func toAnnouncementRow(a announcement.Announcement) announcementRow {
	return announcementRow{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		AuthorID:   null.NewString(a.AuthorID, a.AuthorID != ""),
		AuthorName: a.AuthorName,
		Priority:   a.Priority,
		CreatedAt:  a.CreatedAt.UTC(),
	}
}

func (r announcementRow) announcement() announcement.Announcement {
	return announcement.Announcement{
		ID:         r.ID,
		Title:      r.Title,
		Content:    r.Content,
		AuthorID:   r.AuthorID.String,
		AuthorName: r.AuthorName,
		Priority:   r.Priority,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

const announcementColumns = "id, title, content, author_id, author_name, priority, created_at"

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) *announcementRepository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	a.ID = uuid.New().String()
	q := `INSERT INTO announcements (` + announcementColumns + `)
		VALUES (:id, :title, :content, :author_id, :author_name, :priority, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toAnnouncementRow(a)); err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return a, nil
}

func getAnnouncement(ctx context.Context, q sqlx.ExtContext, id string) (announcement.Announcement, error) {
	var row announcementRow
	query := q.Rebind("SELECT " + announcementColumns + " FROM announcements WHERE id = ?")
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		return announcement.Announcement{}, trapNoRowsErr(err, announcement.ErrNotFound, "selecting announcement")
	}
	return row.announcement(), nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, id string) (announcement.Announcement, error) {
	return getAnnouncement(ctx, repo.db, id)
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	var rows []announcementRow
	q := "SELECT " + announcementColumns + " FROM announcements ORDER BY created_at DESC, id"
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting announcements")
	}
	anns := make([]announcement.Announcement, 0, len(rows))
	for _, r := range rows {
		anns = append(anns, r.announcement())
	}
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, id string, ua announcement.UpdateAnnouncement) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var set setClause
		if ua.Title != nil {
			set.add("title", *ua.Title)
		}
		if ua.Content != nil {
			set.add("content", *ua.Content)
		}
		if ua.Priority != nil {
			set.add("priority", *ua.Priority)
		}
		if !set.empty() {
			found, err := set.update(ctx, tx, "announcements", id)
			if err != nil {
				return errors.Wrap(err, "updating announcement")
			}
			if !found {
				return announcement.ErrNotFound
			}
		}
		var err error
		a, err = getAnnouncement(ctx, tx, id)
		return err
	})
	return a, err
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "announcements", id, announcement.ErrNotFound)
}
