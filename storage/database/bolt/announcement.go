package boltrepos

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/Armandk18/taskmanager/core/announcement"
)

type announcementRepository struct {
	db *bbolt.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *bbolt.DB) *announcementRepository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	a.ID = uuid.New().String()
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		return putDoc(tx, announcementsBucket, a.ID, a)
	})
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "storing announcement")
	}
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id string) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := repo.db.View(func(tx *bbolt.Tx) error {
		var err error
		a, err = getDoc[announcement.Announcement](tx, announcementsBucket, id, announcement.ErrNotFound)
		return err
	})
	return a, err
}

func (repo *announcementRepository) QueryAnnouncements(context.Context) ([]announcement.Announcement, error) {
	var anns []announcement.Announcement
	err := repo.db.View(func(tx *bbolt.Tx) error {
		var err error
		anns, err = allDocs[announcement.Announcement](tx, announcementsBucket, nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	sort.Slice(anns, func(i, j int) bool {
		if !anns[i].CreatedAt.Equal(anns[j].CreatedAt) {
			return announcement.Less(anns[i], anns[j])
		}
		return anns[i].ID < anns[j].ID
	})
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, id string, ua announcement.UpdateAnnouncement) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		var err error
		a, err = getDoc[announcement.Announcement](tx, announcementsBucket, id, announcement.ErrNotFound)
		if err != nil {
			return err
		}
		ua.Apply(&a)
		return putDoc(tx, announcementsBucket, id, a)
	})
	return a, err
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	return repo.db.Update(func(tx *bbolt.Tx) error {
		return deleteDoc(tx, announcementsBucket, id, announcement.ErrNotFound)
	})
}
