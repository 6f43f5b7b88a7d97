package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type DemoAccount struct {
	Email    string
	Name     string
	Role     Role
	Password string
}

// DemoAccounts are the accounts created by SeedDemo.
var DemoAccounts = []DemoAccount{
	{Email: "admin@university.edu", Name: "Administrateur", Role: RoleAdmin, Password: "admin123"},
	{Email: "student@university.edu", Name: "Étudiant Test", Role: RoleStudent, Password: "student123"},
	{Email: "teacher@university.edu", Name: "Enseignant Test", Role: RoleTeacher, Password: "enseignant123"},
}

// SeedDemo creates the missing DemoAccounts and returns the ones it created.
// The demo passwords skip the password policy.
func (svc *Service) SeedDemo(ctx context.Context) ([]User, error) {
	created := make([]User, 0, len(DemoAccounts))
	for i, acc := range DemoAccounts {
		_, err := svc.repo.GetUser(ctx, GetFilter{Email: acc.Email})
		if err == nil {
			continue
		}
		if errors.Cause(err) != ErrNotFound {
			return created, errors.Wrapf(err, "finding %s", acc.Email)
		}

		usr := User{
			Email: acc.Email,
			Name:  acc.Name,
			Role:  acc.Role,
			// keeps the listing order stable
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		}
		if err = usr.SetPassword(acc.Password); err != nil {
			return created, err
		}
		if usr, err = svc.repo.CreateUser(ctx, usr); err != nil {
			return created, errors.Wrapf(err, "creating %s", acc.Email)
		}
		created = append(created, usr)
	}
	return created, nil
}
