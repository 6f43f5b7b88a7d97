package boltrepos

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/Armandk18/taskmanager/core/user"
)

// userDoc is the stored form of a user.User, password hash included.
type userDoc struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"passwordHash"`
	Name         string    `json:"name"`
	Role         user.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toUserDoc(usr user.User) userDoc {
	return userDoc{
		ID:           usr.ID,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		Name:         usr.Name,
		Role:         usr.Role,
		CreatedAt:    usr.CreatedAt.UTC(),
	}
}

func (d userDoc) user() user.User {
	return user.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type userRepository struct {
	db *bbolt.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *bbolt.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(userEmailsBucket)
		if emails.Get([]byte(usr.Email)) != nil {
			return user.ErrEmailExists
		}
		if err := emails.Put([]byte(usr.Email), []byte(usr.ID)); err != nil {
			return errors.Wrap(err, "indexing user email")
		}
		return putDoc(tx, usersBucket, usr.ID, toUserDoc(usr))
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	var usr user.User
	err := repo.db.View(func(tx *bbolt.Tx) error {
		id := filter.ID
		if filter.Email != "" {
			idByEmail := tx.Bucket(userEmailsBucket).Get([]byte(filter.Email))
			if idByEmail == nil || (id != "" && id != string(idByEmail)) {
				return user.ErrNotFound
			}
			id = string(idByEmail)
		}
		if id == "" {
			return user.ErrNotFound
		}
		doc, err := getDoc[userDoc](tx, usersBucket, id, user.ErrNotFound)
		usr = doc.user()
		return err
	})
	return usr, err
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter) ([]user.User, error) {
	var docs []userDoc
	err := repo.db.View(func(tx *bbolt.Tx) error {
		var err error
		docs, err = allDocs(tx, usersBucket, func(d userDoc) bool {
			return filter == nil || filter.Role == "" || d.Role == filter.Role
		})
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.user())
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
	var usr user.User
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		doc, err := getDoc[userDoc](tx, usersBucket, id, user.ErrNotFound)
		if err != nil {
			return err
		}
		if uu.Name != nil {
			doc.Name = *uu.Name
		}
		if uu.Role != nil {
			doc.Role = *uu.Role
		}
		if pwdHash != nil {
			doc.PasswordHash = pwdHash
		}
		usr = doc.user()
		return putDoc(tx, usersBucket, id, doc)
	})
	return usr, err
}

func (repo *userRepository) DeleteUser(_ context.Context, id string) error {
	return repo.db.Update(func(tx *bbolt.Tx) error {
		doc, err := getDoc[userDoc](tx, usersBucket, id, user.ErrNotFound)
		if err != nil {
			return err
		}
		if err = tx.Bucket(userEmailsBucket).Delete([]byte(doc.Email)); err != nil {
			return errors.Wrap(err, "unindexing user email")
		}
		return deleteDoc(tx, usersBucket, id, user.ErrNotFound)
	})
}
