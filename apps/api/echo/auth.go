package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

var contextSessionKey = "session"

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// userInfo is the public projection of a User.
	userInfo struct {
		ID    string    `json:"id"`
		Email string    `json:"email"`
		Name  string    `json:"name"`
		Role  user.Role `json:"role"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func newUserInfo(usr user.User) userInfo {
	return userInfo{ID: usr.ID, Email: usr.Email, Name: usr.Name, Role: usr.Role}
}

// sessionToken reads the session token from the auth cookie, then from the Authorization header.
func (s *Server) sessionToken(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(s.deps.Conf.Auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// sessionMiddleware rejects requests without a valid session and stores its claims in the context.
func (s *Server) sessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, ok := s.deps.Auth.Verify(s.sessionToken(ctx))
			if !ok {
				return errUnauthorized
			}
			ctx.Set(contextSessionKey, claims)
			return next(ctx)
		}
	}
}

func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := contextActor(ctx)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if actor.Role == role {
					return next(ctx)
				}
			}
			return errForbidden
		}
	}
}

func contextActor(ctx echo.Context) (user.Actor, error) {
	if claims, ok := ctx.Get(contextSessionKey).(*user.SessionClaims); ok {
		return claims.Actor(), nil
	}
	return user.Actor{}, errUnauthorized
}

func (s *Server) registerAuthAPI(g *echo.Group, session echo.MiddlewareFunc) {
	ag := g.Group("/auth")
	ag.POST("/login", s.login)
	ag.POST("/logout", s.logout)
	ag.GET("/me", s.me, session)
}

func (s *Server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		return err
	}

	usr, token, err := s.deps.Auth.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	ctx.SetCookie(s.sessionCookie(token, int(s.deps.Auth.TTL().Seconds())))
	return respond(ctx, http.StatusOK, echo.Map{"user": newUserInfo(usr), "token": token})
}

func (s *Server) logout(ctx echo.Context) error {
	ctx.SetCookie(s.sessionCookie("", -1))
	return respond(ctx, http.StatusOK, nil)
}

func (s *Server) me(ctx echo.Context) error {
	actor, err := contextActor(ctx)
	if err != nil {
		return err
	}
	usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), actor.ID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUnauthorized
		}
		return errors.Wrap(err, "finding user by ID")
	}
	return respond(ctx, http.StatusOK, echo.Map{"user": newUserInfo(usr)})
}

// sessionCookie builds the auth cookie. A negative maxAge expires it.
func (s *Server) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.deps.Conf.Auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !s.deps.Conf.Debug,
		SameSite: http.SameSiteLaxMode,
	}
}
