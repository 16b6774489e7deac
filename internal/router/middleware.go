package router

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"learnpath/internal/auth"
	apperrors "learnpath/internal/errors"
	"learnpath/internal/metrics"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Status >= http.StatusInternalServerError {
				event = logger.Error().Err(internalError(v.Error))
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	})
}

// internalError unwraps the cause attached to an echo HTTP error.
func internalError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Internal != nil {
		return he.Internal
	}
	return err
}

// Metrics records request counts, durations and in-flight requests per route.
func Metrics(m *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" || c.Path() == "/healthz" || strings.HasPrefix(c.Path(), "/swagger") {
				return next(c)
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(responseStatus(c, err))).Inc()
			m.RequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// responseStatus returns the status the response will be sent with, taking
// into account errors not yet rendered by the error handler.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func unauthorized(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

// RequireAuth verifies the bearer token and rejects revoked tokens.
// Only access tokens are accepted as bearers.
func RequireAuth(secret []byte, tokens auth.TokenStoreInterface, m *metrics.Collector) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		ContextKey: auth.ContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			reason := "invalid_token"
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				reason = "missing_token"
			}
			m.AuthFailures.WithLabelValues(reason).Inc()
			return unauthorized("missing or invalid token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims, ok := auth.ClaimsFromContext(c)
			if !ok || !claims.IsAccess() {
				m.AuthFailures.WithLabelValues("invalid_token").Inc()
				return unauthorized("missing or invalid token")
			}
			revoked, err := tokens.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err == nil && revoked {
				m.AuthFailures.WithLabelValues("revoked_token").Inc()
				return unauthorized("token has been revoked")
			}
			return next(c)
		})
	}
}

// RequireAdmin rejects requests whose token was not issued to an admin.
// It must run after RequireAuth.
func RequireAdmin(m *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.ClaimsFromContext(c)
			if !ok || !claims.IsAdmin() {
				m.AuthFailures.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: apperrors.ErrForbidden.Error(),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
