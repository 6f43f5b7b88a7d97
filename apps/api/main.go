package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/Armandk18/taskmanager/apps/api/echo"
	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
	emailsvc "github.com/Armandk18/taskmanager/services/email"
	logsvc "github.com/Armandk18/taskmanager/services/logger"
	"github.com/Armandk18/taskmanager/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	repos, err := storage.Open(context.Background(), conf.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()
	dbLogger.Info(fmt.Sprintf("%s database ready", conf.Database.Engine))

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(
			conf,
			log.New(os.Stdout, "MAIL : ", log.LstdFlags|log.Lmicroseconds),
			logger,
		)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(repos.Users)

	if conf.SeedDemo {
		created, err := usrSvc.SeedDemo(context.Background())
		if err != nil {
			logger.Fatal(fmt.Sprintf("seeding demo accounts: %v", err), err)
		}
		for _, usr := range created {
			logger.Info(fmt.Sprintf("demo account created: %s (%s)", usr.Email, usr.Role))
		}
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("database").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			Auth: user.NewAuthenticator(repos.Users, user.AuthenticatorOptions{
				SecretKey:  conf.SecretKey,
				Issuer:     conf.AppName,
				SessionTTL: conf.Auth.SessionTTL,
				DemoBypass: conf.Auth.DemoBypass,
			}),
			UserSvc:         usrSvc,
			TaskSvc:         task.NewService(repos.Tasks, repos.Users, mailSvc, logger),
			AnnouncementSvc: announcement.NewService(repos.Announcements, repos.Users),
			EventSvc:        event.NewService(repos.Events, repos.Users),
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
