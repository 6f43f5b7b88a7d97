package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

func (s *Server) registerUserAPI(g *echo.Group, session echo.MiddlewareFunc) {
	ug := g.Group("/users", session)
	ug.GET("", s.queryUsers, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	ug.POST("", s.createUser, roleMiddleware(user.RoleAdmin))
	ug.DELETE("/:id", s.destroyUser, roleMiddleware(user.RoleAdmin))
}

func (s *Server) queryUsers(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if roleParam := ctx.QueryParam("role"); roleParam != "" {
		role, err := user.ParseRole(roleParam)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "role", Error: err.Error()})
		}
		filter.Role = role
	}

	users, err := s.deps.UserSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	infos := make([]userInfo, 0, len(users))
	for _, usr := range users {
		infos = append(infos, newUserInfo(usr))
	}
	return respond(ctx, http.StatusOK, echo.Map{"users": infos})
}

func (s *Server) createUser(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		return err
	}

	usr, err := s.deps.UserSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return respond(ctx, http.StatusCreated, echo.Map{"user": newUserInfo(usr)})
}

// destroyUser deletes an account. Admins cannot delete their own.
func (s *Server) destroyUser(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	if id == actor.ID {
		return core.ErrPermissionDenied
	}
	if err = s.deps.UserSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return respond(ctx, http.StatusOK, nil)
}
