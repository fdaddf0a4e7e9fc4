package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/token"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

const bearerPrefix = "Bearer "

// AuthMiddleware guards the admin API with Supabase Auth sessions.
type AuthMiddleware struct {
	server   *server.Server
	verifier *token.SupabaseVerifier
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server:   s,
		verifier: s.Admins,
	}
}

// RequireAdmin accepts a Supabase access token in the Authorization
// header. A missing or invalid token is a 401; a valid session that is not
// an admin is a 403. On success the user is stored on the Echo context and
// added to the request logger.
func (auth *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		claims, err := auth.verifier.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			GetLogger(c).Warn().Err(err).Msg("rejected admin token")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		if !auth.verifier.IsAdmin(claims) {
			GetLogger(c).Warn().
				Str("user_id", claims.Subject).
				Str("email", claims.Email).
				Msg("non-admin session on admin route")
			return errs.NewForbiddenError("Admin access required", false)
		}

		role := claims.AdminRole()
		if role == "" {
			role = "admin"
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, role)
		c.Set(UserEmailKey, claims.Email)

		setLogger(c, GetLogger(c).With().
			Str("user_id", claims.Subject).
			Str("user_role", role).
			Logger())

		return next(c)
	}
}
