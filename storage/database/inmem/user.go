package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Armandk18/taskmanager/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.t {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = uuid.New().String()
	repo.db.t[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID == "" && filter.Email == "" {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range repo.db.t {
		if (filter.ID == "" || u.ID == filter.ID) && (filter.Email == "" || u.Email == filter.Email) {
			return *u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.t))
	for _, u := range repo.db.t {
		if filter != nil && filter.Role != "" && u.Role != filter.Role {
			continue
		}
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, id string, uu user.UpdateUser, pwdHash []byte) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	usr, ok := repo.db.t[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if uu.Name != nil {
		usr.Name = *uu.Name
	}
	if uu.Role != nil {
		usr.Role = *uu.Role
	}
	if pwdHash != nil {
		usr.PasswordHash = pwdHash
	}
	return *usr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}
