package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core/user"
)

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Email:        usr.Email,
		PasswordHash: string(usr.PasswordHash),
		Name:         usr.Name,
		Role:         string(usr.Role),
		CreatedAt:    usr.CreatedAt.UTC(),
	}
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: []byte(r.PasswordHash),
		Name:         r.Name,
		Role:         user.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const userColumns = "id, email, password_hash, name, role, created_at"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :password_hash, :name, :role, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toUserRow(usr)); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ID != "" {
		where = append(where, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.Email != "" {
		where = append(where, "email = ?")
		args = append(args, filter.Email)
	}
	if len(where) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + strings.Join(where, " AND "))
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user")
	}
	return row.user(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	var args []interface{}
	if filter != nil && filter.Role != "" {
		q += " WHERE role = ?"
		args = append(args, string(filter.Role))
	}
	q += " ORDER BY created_at, id"

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, id string, uu user.UpdateUser, pwdHash []byte) (user.User, error) {
	var usr user.User
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var set setClause
		if uu.Name != nil {
			set.add("name", *uu.Name)
		}
		if uu.Role != nil {
			set.add("role", string(*uu.Role))
		}
		if pwdHash != nil {
			set.add("password_hash", string(pwdHash))
		}
		if !set.empty() {
			found, err := set.update(ctx, tx, "users", id)
			if err != nil {
				return errors.Wrap(err, "updating user")
			}
			if !found {
				return user.ErrNotFound
			}
		}

		var row userRow
		q := tx.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
		if err := tx.GetContext(ctx, &row, q, id); err != nil {
			return trapNoRowsErr(err, user.ErrNotFound, "selecting user")
		}
		usr = row.user()
		return nil
	})
	return usr, err
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "users", id, user.ErrNotFound)
}
