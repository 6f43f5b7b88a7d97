package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/user"
)

func (s *Server) registerAnnouncementAPI(g *echo.Group, session echo.MiddlewareFunc) {
	ag := g.Group("/announcements", session)
	ag.GET("", s.listAnnouncements)

	admin := roleMiddleware(user.RoleAdmin)
	ag.POST("", s.createAnnouncement, admin)
	ag.PUT("/:id", s.updateAnnouncement, admin)
	ag.DELETE("/:id", s.destroyAnnouncement, admin)
}

func (s *Server) listAnnouncements(ctx echo.Context) error {
	anns, err := s.deps.AnnouncementSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing announcements")
	}
	return respond(ctx, http.StatusOK, echo.Map{"announcements": anns})
}

func (s *Server) createAnnouncement(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data announcement.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(s.deps.Validate); err != nil {
		return err
	}

	a, err := s.deps.AnnouncementSvc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return respond(ctx, http.StatusCreated, echo.Map{"announcement": a})
}

func (s *Server) updateAnnouncement(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	var data announcement.UpdateAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAnnouncement")
	}
	if err = data.Validate(s.deps.Validate); err != nil {
		return err
	}

	a, err := s.deps.AnnouncementSvc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return respond(ctx, http.StatusOK, echo.Map{"announcement": a})
}

func (s *Server) destroyAnnouncement(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	if err = s.deps.AnnouncementSvc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return respond(ctx, http.StatusOK, nil)
}
