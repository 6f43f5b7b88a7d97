package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/task"
)

type (
	ShareRequest struct {
		StudentIDs []string `json:"studentIds"`
	}

	UnshareRequest struct {
		StudentID string `json:"studentId" validate:"required,notblank"`
	}
)

func (sr *ShareRequest) Validate() error {
	if len(core.StringSet(sr.StudentIDs...)) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "studentIds", Error: "this field is required"})
	}
	return nil
}

func (ur *UnshareRequest) Validate(validate *validator.Validate) error {
	ur.StudentID = core.CleanString(ur.StudentID)
	return validate.Struct(ur)
}

func (s *Server) registerTaskAPI(g *echo.Group, session echo.MiddlewareFunc) {
	tg := g.Group("/tasks", session)
	tg.GET("", s.listTasks)
	tg.POST("", s.createTasks)
	tg.GET("/:id", s.retrieveTask)
	tg.PUT("/:id", s.updateTask)
	tg.DELETE("/:id", s.destroyTask)
	tg.POST("/:id/share", s.shareTask)
	tg.DELETE("/:id/share", s.unshareTask)
}

func (s *Server) listTasks(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	tasks, err := s.deps.TaskSvc.List(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing tasks")
	}
	return respond(ctx, http.StatusOK, echo.Map{"tasks": tasks})
}

func (s *Server) createTasks(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data task.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err = data.Validate(s.deps.Validate); err != nil {
		return err
	}

	tasks, err := s.deps.TaskSvc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, echo.Map{"tasks": tasks})
}

func (s *Server) retrieveTask(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	t, err := s.deps.TaskSvc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving task")
	}
	return respond(ctx, http.StatusOK, echo.Map{"task": t})
}

func (s *Server) updateTask(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data task.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err = data.Validate(s.deps.Validate); err != nil {
		return err
	}

	t, err := s.deps.TaskSvc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return respond(ctx, http.StatusOK, echo.Map{"task": t})
}

func (s *Server) destroyTask(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	if err = s.deps.TaskSvc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return respond(ctx, http.StatusOK, nil)
}

func (s *Server) shareTask(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data ShareRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ShareRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	t, err := s.deps.TaskSvc.Share(ctx.Request().Context(), actor, ctx.Param("id"), data.StudentIDs)
	if err != nil {
		return errors.Wrap(err, "sharing task")
	}
	return respond(ctx, http.StatusOK, echo.Map{"task": t})
}

func (s *Server) unshareTask(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data UnshareRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UnshareRequest")
	}
	if err = data.Validate(s.deps.Validate); err != nil {
		return err
	}

	t, err := s.deps.TaskSvc.Unshare(ctx.Request().Context(), actor, ctx.Param("id"), data.StudentID)
	if err != nil {
		return errors.Wrap(err, "unsharing task")
	}
	return respond(ctx, http.StatusOK, echo.Map{"task": t})
}
