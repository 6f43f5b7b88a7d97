package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CreateUser assigns the ID. Returns ErrEmailExists on duplicate emails.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers returns users ordered by CreatedAt.
		QueryUsers(ctx context.Context, filter *QueryFilter) ([]User, error)
		// UpdateUser applies the non-nil fields of `uu` on the stored user.
		// A non-nil uu.Password must already be hashed into `pwdHash`.
		UpdateUser(ctx context.Context, id string, uu UpdateUser, pwdHash []byte) (User, error)
		DeleteUser(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new user. `nu` must be validated.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Email:     nu.Email,
		Name:      nu.Name,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if errors.Cause(err) == ErrEmailExists {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return usr, err
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter)
}

// Students returns every current student.
func (svc *Service) Students(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, &QueryFilter{Role: RoleStudent})
}

// Update modifies an existing user. `uu` must be validated.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	var hash []byte
	if uu.Password != nil {
		var usr User
		if err := usr.SetPassword(*uu.Password); err != nil {
			return User{}, err
		}
		hash = usr.PasswordHash
	}
	return svc.repo.UpdateUser(ctx, id, uu, hash)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUser(ctx, id)
}
