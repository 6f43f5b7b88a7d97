package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		Auth            *user.Authenticator
		UserSvc         *user.Service
		TaskSvc         *task.Service
		AnnouncementSvc *announcement.Service
		EventSvc        *event.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = s.newAppHTTPErrorHandler(s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	session := s.sessionMiddleware()

	s.registerAuthAPI(api, session)
	s.registerUserAPI(api, session)
	s.registerTaskAPI(api, session)
	s.registerAnnouncementAPI(api, session)
	s.registerEventAPI(api, session)
}

// Start listens on the configured address. Failures are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "starting server")
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, echo.Map{"message": "Welcome to " + s.deps.Conf.AppName + " API!"})
}

// respond writes the success envelope: {"success": true, <data>...}.
func respond(ctx echo.Context, code int, data echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}
	return ctx.JSON(code, body)
}
