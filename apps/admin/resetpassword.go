package main

import (
	"context"
	"fmt"

	"github.com/Armandk18/taskmanager/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	uu := user.UpdateUser{Password: &pwd}
	if err = uu.Validate(cli.validate, usr); err != nil {
		return err
	}
	if _, err = cli.usrSvc.Update(ctx, usr.ID, uu); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %s reset\n", usr.Email)
	return nil
}

func (cli *commandLine) seed() error {
	created, err := cli.usrSvc.SeedDemo(context.Background())
	if err != nil {
		return err
	}
	for _, usr := range created {
		fmt.Fprintf(cli.out, "demo account %s created (%s)\n", usr.Email, usr.Role)
	}
	if len(created) == 0 {
		fmt.Fprintln(cli.out, "demo accounts already exist")
	}
	return nil
}
