package limeblog

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminKeyHeader carries the pre-shared credential that authorizes post
// creation.
const AdminKeyHeader = "X-Admin-Key"

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.Config.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType, AdminKeyHeader},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Multipart submissions are bounded by the upload cap plus slack for the
	// text fields.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", a.Config.MaxUploadBytes+(1<<20))))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/uploads/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/feed.xml":
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		default:
			c.Response().Header().Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

// requireAdminKey gates post creation behind the pre-shared admin key. An
// unconfigured key disables creation entirely rather than silently allowing
// it, and repeated wrong keys from one IP are rate limited.
func (a *App) requireAdminKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if a.Config.AdminKey == "" {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "post creation is disabled: no admin key configured")
		}
		ip := c.RealIP()
		if !a.keyLimiter.Check(ip) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
		}
		key := c.Request().Header.Get(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(a.Config.AdminKey)) != 1 {
			a.keyLimiter.Record(ip)
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid admin key")
		}
		return next(c)
	}
}
