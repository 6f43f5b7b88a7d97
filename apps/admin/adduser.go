package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, name, role, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		nu := user.NewUser{Email: email, Name: name, Role: user.Role(role), Password: pwd}
		if err = nu.Validate(cli.validate); err != nil {
			return err
		}
		if usr, err = cli.usrSvc.Create(ctx, nu); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "user %s created (%s)\n", usr.Email, usr.Role)
		return nil
	}

	r := user.Role(core.CleanString(role, true /* lower */))
	uu := user.UpdateUser{Name: &name, Role: &r, Password: &pwd}
	if err = uu.Validate(cli.validate, usr); err != nil {
		return err
	}
	if usr, err = cli.usrSvc.Update(ctx, usr.ID, uu); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %s updated (%s)\n", usr.Email, usr.Role)
	return nil
}
