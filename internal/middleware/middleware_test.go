package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/token"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/ratelimit"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

const (
	testJWTSecret   = "supabase-jwt-secret-for-tests"
	testCalendlyURL = "https://calendly.com/riva/strategy"
)

func newTestServer(limiter ratelimit.Limiter) *server.Server {
	logger := zerolog.New(io.Discard)
	return &server.Server{
		Config: &config.Config{
			Server:      config.ServerConfig{CORSAllowedOrigins: []string{"https://riva.com"}},
			Integration: config.IntegrationConfig{CalendlyURL: testCalendlyURL},
		},
		Logger:  &logger,
		Limiter: limiter,
		Admins:  token.NewSupabaseVerifier(testJWTSecret, []string{"owner@riva.com"}),
	}
}

func newTestEcho(s *server.Server) (*echo.Echo, *Middlewares) {
	m := NewMiddlewares(s)
	e := echo.New()
	e.HTTPErrorHandler = m.Global.GlobalErrorHandler
	e.Use(RequestID(), m.ContextEnhancer.EnhanceContext())
	return e, m
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	s := newTestServer(ratelimit.NewMemoryLimiter(2, time.Minute))
	e, m := newTestEcho(s)
	e.POST("/api/contact", ok, m.RateLimit.Limit("contact"))
	e.POST("/api/lead-magnet", ok, m.RateLimit.Limit("lead-magnet"))

	post := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		return rec
	}

	first := post("/api/contact")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get(HeaderRateLimitLimit))
	assert.Equal(t, "1", first.Header().Get(HeaderRateLimitRemaining))

	assert.Equal(t, http.StatusOK, post("/api/contact").Code)

	rejected := post("/api/contact")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "60", rejected.Header().Get(echo.HeaderRetryAfter))

	body := decodeError(t, rejected)
	assert.Equal(t, errs.CodeRateLimited, body.Code)
	require.NotNil(t, body.Action)
	assert.Equal(t, errs.ActionTypeSchedule, body.Action.Type)
	assert.Equal(t, testCalendlyURL, body.Action.Value)

	assert.Equal(t, http.StatusOK, post("/api/lead-magnet").Code, "routes have separate budgets")
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis: connection refused")
}

func TestRateLimitFailsOpen(t *testing.T) {
	e, m := newTestEcho(newTestServer(failingLimiter{}))
	e.POST("/api/contact", ok, m.RateLimit.Limit("contact"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderRateLimitLimit))
}

func TestRateLimitDisabled(t *testing.T) {
	e, m := newTestEcho(newTestServer(ratelimit.NewMemoryLimiter(0, time.Minute)))
	e.POST("/api/contact", ok, m.RateLimit.Limit("contact"))

	for range 5 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func signSession(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func TestRequireAdmin(t *testing.T) {
	e, m := newTestEcho(newTestServer(nil))
	e.GET("/api/admin/stats", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"user":  GetUserID(c),
			"email": GetUserEmail(c),
		})
	}, m.Auth.RequireAdmin)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{
			"not an admin",
			"Bearer " + signSession(t, jwt.MapClaims{"sub": "u1", "role": "authenticated", "email": "jane@cooperbakery.com"}),
			http.StatusForbidden,
		},
		{
			"allowlisted email",
			"Bearer " + signSession(t, jwt.MapClaims{"sub": "u2", "role": "authenticated", "email": "Owner@riva.com"}),
			http.StatusOK,
		},
		{
			"admin app metadata",
			"Bearer " + signSession(t, jwt.MapClaims{
				"sub": "u3", "role": "authenticated", "email": "staff@riva.com",
				"app_metadata": map[string]any{"role": "admin"},
			}),
			http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"user":"u`)
			}
		})
	}
}

func TestEnhanceContextStoresLoggerInRequestContext(t *testing.T) {
	e, _ := newTestEcho(newTestServer(nil))

	var fromCtx *zerolog.Logger
	e.GET("/health", func(c echo.Context) error {
		fromCtx = zerolog.Ctx(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	require.NotNil(t, fromCtx)
	assert.NotEqual(t, zerolog.Disabled, fromCtx.GetLevel())
}

func TestGlobalErrorHandler(t *testing.T) {
	e, _ := newTestEcho(newTestServer(nil))
	e.GET("/http-error", func(echo.Context) error {
		return errs.NewBadRequestError("Check the form", true, nil,
			[]errs.FieldError{{Field: "email", Error: "is required"}}, nil)
	})
	e.GET("/no-rows", func(echo.Context) error {
		return pgx.ErrNoRows
	})
	e.GET("/boom", func(echo.Context) error {
		return errors.New("driver exploded")
	})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/http-error", http.StatusBadRequest, "BAD_REQUEST"},
		{"/no-rows", http.StatusNotFound, "NOT_FOUND"},
		{"/boom", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"/missing", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.status, body.Status)
			assert.NotContains(t, rec.Body.String(), "driver exploded")
		})
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/http-error", nil))
	body := decodeError(t, rec)
	assert.True(t, body.Override)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "email", body.Errors[0].Field)
}

func TestRequestIDReplacesUnsafeValues(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", ok)

	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"edge id", "9f1c2a7e-req", true},
		{"empty", "", false},
		{"spaces", "hello world", false},
		{"newline", "abc\ninjected", false},
		{"too long", strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.in)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.keep {
				assert.Equal(t, tt.in, got)
			} else {
				assert.NotEqual(t, tt.in, got)
				assert.Len(t, got, 36)
			}
		})
	}
}
