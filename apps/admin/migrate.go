package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/storage/database"
)

var gooseRunFunc = database.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.repos.SQL == nil {
		return errors.Errorf("the %s engine has no migrations", cli.engine)
	}
	return gooseRunFunc(context.Background(), args[0], cli.repos.SQL, args[1:]...)
}
