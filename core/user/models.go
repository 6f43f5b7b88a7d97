package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Armandk18/taskmanager/core"
)

// Role is one of the closed set of roles a User can hold.
type Role string

// Roles
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole normalizes `s` into a Role. Unknown spellings are rejected.
func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// IsStaff reports whether the actor is a teacher or an admin.
func (a Actor) IsStaff() bool { return a.IsTeacher() || a.IsAdmin() }

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (u User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,notblank"`
	Role     Role   `json:"role" validate:"required,role"`
	Password string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Email is immutable.
type UpdateUser struct {
	Name     *string `json:"name" validate:"omitempty,notblank"`
	Role     *Role   `json:"role" validate:"omitempty,role"`
	Password *string `json:"password"`

	// attributes the password is compared against
	email string
}

func (uu *UpdateUser) Validate(validate *validator.Validate, origUsr User) error {
	if uu.Name != nil {
		name := core.CleanString(*uu.Name)
		uu.Name = &name
	}
	uu.email = origUsr.Email
	return validate.Struct(uu)
}

// GetFilter selects a single User by ID or Email.
type GetFilter struct {
	ID    string
	Email string
}

// QueryFilter narrows down a list of Users. Zero fields match everything.
type QueryFilter struct {
	Role Role `query:"role"`
}
