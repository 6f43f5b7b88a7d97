package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/event"
)

// EventRange is the optional [start, end] window of an event listing.
type EventRange struct {
	Start string `json:"start" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" query:"end" validate:"omitempty,datetime=2006-01-02"`
}

func (er *EventRange) Validate(validate *validator.Validate) error {
	er.Start = core.CleanString(er.Start)
	er.End = core.CleanString(er.End)
	return validate.Struct(er)
}

func (s *Server) registerEventAPI(g *echo.Group, session echo.MiddlewareFunc) {
	eg := g.Group("/events", session)
	eg.GET("", s.listEvents)
	eg.POST("", s.createEvent)
	eg.PUT("/:id", s.updateEvent)
	eg.DELETE("/:id", s.destroyEvent)
}

func (s *Server) listEvents(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	rng := EventRange{Start: ctx.QueryParam("start"), End: ctx.QueryParam("end")}
	if err = rng.Validate(s.deps.Validate); err != nil {
		return err
	}

	events, err := s.deps.EventSvc.List(ctx.Request().Context(), actor, rng.Start, rng.End)
	if err != nil {
		return errors.Wrap(err, "listing events")
	}
	return respond(ctx, http.StatusOK, echo.Map{"events": events})
}

func (s *Server) createEvent(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data event.NewEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err = data.Validate(s.deps.Validate); err != nil {
		return err
	}

	e, err := s.deps.EventSvc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return respond(ctx, http.StatusCreated, echo.Map{"event": e})
}

func (s *Server) updateEvent(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data event.UpdateEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err = data.Validate(s.deps.Validate); err != nil {
		return err
	}

	e, err := s.deps.EventSvc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return respond(ctx, http.StatusOK, echo.Map{"event": e})
}

func (s *Server) destroyEvent(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	if err = s.deps.EventSvc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return respond(ctx, http.StatusOK, nil)
}
