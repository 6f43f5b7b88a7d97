package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Armandk18/taskmanager/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) *announcementRepository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = uuid.New().String()
	stored := a
	repo.db.t[a.ID] = &stored
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.t[id]; ok {
		return *a, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(context.Context) ([]announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	anns := make([]announcement.Announcement, 0, len(repo.db.t))
	for _, a := range repo.db.t {
		anns = append(anns, *a)
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
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.t[id]
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	ua.Apply(a)
	return *a, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return announcement.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}
