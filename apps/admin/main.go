package main

import (
	"context"
	"log"
	"os"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/storage"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up storage; SQL databases come out migrated
	repos, err := storage.Open(context.Background(), conf.Database)
	if err != nil {
		logger.Fatal(err)
	}

	cli := newCommandLine(conf.Database.Engine, repos, os.Stdout)
	err = cli.run(os.Args)
	if cerr := repos.Close(); cerr != nil {
		logger.Printf("closing database: %v", cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", cli.explain(err))
		}
		os.Exit(1)
	}
}
