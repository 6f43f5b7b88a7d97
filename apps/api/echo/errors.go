package echoapi

import (
	"fmt"
	"net/http"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")

	msgValidation = "validation failed"
	msgInternal   = "internal server error"
)

// errorResponse is the envelope of every failed request.
type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func (s *Server) newAppHTTPErrorHandler(signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, res := s.errorResponse(err, ctx)
		if code >= http.StatusInternalServerError && core.IsShutdown(err) {
			signalShutdown()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func (s *Server) errorResponse(err error, ctx echo.Context) (int, errorResponse) {
	res := errorResponse{Success: false}
	cause := errors.Cause(err)

	switch cause {
	case core.ErrPermissionDenied:
		res.Message = cause.Error()
		return http.StatusForbidden, res
	case user.ErrNotFound, task.ErrNotFound, announcement.ErrNotFound, event.ErrNotFound:
		res.Message = cause.Error()
		return http.StatusNotFound, res
	case user.ErrInvalidCredentials:
		res.Message = cause.Error()
		return http.StatusUnauthorized, res
	}

	switch origErr := cause.(type) {
	case *echo.HTTPError:
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		res.Message = fmt.Sprint(origErr.Message)
		if origErr.Code >= http.StatusInternalServerError {
			s.logError(ctx, err)
		}
		return origErr.Code, res
	case validator.ValidationErrors:
		res.Message = msgValidation
		res.Errors = core.TranslateErrors(origErr, s.deps.Translator)
		return http.StatusBadRequest, res
	case *core.ValidationError:
		if len(origErr.Fields) > 0 {
			res.Errors = make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				res.Errors[fErr.Field] = fErr.Error
			}
		}
		res.Message = origErr.Error()
		if res.Message == "" {
			res.Message = msgValidation
		}
		return http.StatusBadRequest, res
	case *task.BroadcastError:
		// the tasks created before the failure are kept
		s.logError(ctx, err)
		res.Message = origErr.Error()
		return http.StatusInternalServerError, res
	}

	// any other error is a server error
	s.logError(ctx, err)
	res.Message = msgInternal
	if ctx.Echo().Debug {
		res.Message = err.Error()
	}
	return http.StatusInternalServerError, res
}

func (s *Server) logError(ctx echo.Context, err error) {
	var usr user.User
	if claims, ok := ctx.Get(contextSessionKey).(*user.SessionClaims); ok {
		usr.ID = claims.Subject
		usr.Email = claims.Email
		usr.Role = claims.Role
	}
	s.deps.Logger.Error(msgInternal, errors.Wrap(err, ctx.Request().Method+" "+ctx.Path()), usr)
}

// signalShutdown asks the running server to shut down gracefully.
func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}
