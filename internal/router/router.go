// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the route groups, mapping
// paths to their handlers.
package router

import (
	"net"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/handler"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/middleware"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.IPExtractor = ipExtractor(s.Config.Server.TrustedProxies)

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Pre(echoMiddleware.RemoveTrailingSlash())

	// RequestID must run before EnhanceContext, which reads it.
	router.Use(
		middlewares.Global.Recover(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)
	registerPublicRoutes(router, h, middlewares)
	registerWebhookRoutes(router, h)
	registerAdminRoutes(router, h, middlewares)

	return router
}

// ipExtractor decides what c.RealIP returns, and so which client a rate
// limit bucket belongs to. Forwarding headers are ignored unless the peer
// is one of the trusted proxy ranges.
func ipExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
			options = append(options, echo.TrustIPRange(ipNet))
		}
	}
	return echo.ExtractIPFromXFFHeader(options...)
}
