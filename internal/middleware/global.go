package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/sqlerr"
)

// MaxBodySize caps request bodies. Forms and Stripe events are far below it.
const MaxBodySize = "256K"

// GlobalMiddlewares groups the middleware installed on every route and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS allows the marketing site origins. The admin dashboard sends a
// bearer token, so Authorization is an allowed header.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{
			RequestIDHeader,
			HeaderRateLimitLimit,
			HeaderRateLimitRemaining,
			HeaderRateLimitReset,
			echo.HeaderRetryAfter,
		},
	})
}

// quietPaths are polled by monitors and the docs page; they only log on
// failure.
var quietPaths = []string{"/status", "/static/"}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// RequestLogger writes one "API" line per request through the request
// logger. Level follows the final status: 5xx error, 4xx warn, else info.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler runs after this, so the response status is
			// still 200 when a handler returned an error.
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			status := v.Status
			var httpErr *errs.HTTPError
			if v.Error != nil {
				httpErr = toHTTPError(v.Error)
				status = httpErr.Status
			}

			if status < http.StatusBadRequest && isQuiet(v.URIPath) {
				return nil
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				e = logger.Error().Err(v.Error)
			case status >= http.StatusBadRequest:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if httpErr != nil {
				e = e.Str("error_code", httpErr.Code)
			}

			if route := c.Path(); route != "" {
				e = e.Str("route", route)
			}
			if remaining := c.Response().Header().Get(HeaderRateLimitRemaining); remaining != "" {
				e = e.Str("rate_limit_remaining", remaining)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", status).
				Str("uri", v.URI).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns a panic into a 500 and logs the stack with the request
// logger.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().
				Err(err).
				Str("stack", string(stack)).
				Msg("panic recovered")
			return err
		},
	})
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(MaxBodySize)
}

// toHTTPError normalizes any error into the response shape.
//
// Echo's own errors keep their status (404 becomes a "Route not found"
// with the NOT_FOUND code). Database errors go through sqlerr. Anything
// else is a plain 500 so internals never reach the client.
func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusNotFound {
			return errs.NewNotFoundError("Route not found", false, nil)
		}
		message := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		}
		return &errs.HTTPError{
			Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
			Message: message,
			Status:  echoErr.Code,
		}
	}

	if errors.As(sqlerr.HandleError(err), &httpErr) {
		return httpErr
	}

	return errs.NewInternalServerError()
}

// GlobalErrorHandler writes every error as errs.HTTPError JSON and logs
// the original error: 5xx at error level with a stack, the rest at warn.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	logger := GetLogger(c)

	var event *zerolog.Event
	if httpErr.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	} else {
		event = logger.Warn()
	}
	event.
		Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Str("error_type", fmt.Sprintf("%T", err)).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}

	_ = c.JSON(httpErr.Status, errs.HTTPError{
		Code:     httpErr.Code,
		Message:  httpErr.Message,
		Status:   httpErr.Status,
		Override: httpErr.Override,
		Errors:   httpErr.Errors,
		Action:   httpErr.Action,
	})
}
