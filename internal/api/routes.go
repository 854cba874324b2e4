// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"crypto/subtle"
	"net"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/inpressign/internal/metrics"
)

const healthPath = "/api/health"

// NewEcho builds the echo instance with middleware and every route
// registered. An empty token leaves /api open. Requests must name a
// loopback host, so a page on another origin cannot reach the API by
// rebinding its DNS name to 127.0.0.1.
func NewEcho(h *Handler, m *metrics.Metrics, token string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(h.logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(h.logger))
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	e.Use(loopbackHost())

	g := e.Group("/api")
	if token != "" {
		g.Use(keyAuth(token))
	}
	RegisterRoutes(g, h)
	return e
}

// RegisterRoutes registers the API routes on g.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/health", h.HandleHealth)

	cmds := g.Group("/commands")
	cmds.GET("", h.HandleListCommands)
	cmds.POST("/greet", h.HandleGreet)
	cmds.POST("/extract", h.HandleExtract)
	cmds.POST("/save_and_extract", h.HandleSaveAndExtract)

	projects := g.Group("/projects")
	projects.GET("", h.HandleListProjects)
	projects.POST("", h.HandleCreateProject)
	projects.GET("/:id/news", h.HandleListNews)
	projects.POST("/:id/news", h.HandleAddNews)

	g.GET("/trace/:entity_id", h.HandleTrace)
}

// keyAuth requires "Authorization: Bearer <token>" on every route except
// the health check.
func keyAuth(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == healthPath
		},
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return NewUnauthorizedError()
		},
	})
}

// loopbackHost rejects requests whose Host header is not localhost or a
// loopback address.
func loopbackHost() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host := c.Request().Host
			if !isLoopbackHost(host) {
				return NewForbiddenHostError(host)
			}
			return next(c)
		}
	}
}

func isLoopbackHost(hostport string) bool {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == healthPath
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}
