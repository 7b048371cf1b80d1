// Package server provides the HTTP API for the visa service.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visaserbia/internal/observability"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	AdminUsername   string // Basic auth username for /api/admin routes
	AdminPassword   string // Basic auth password for /api/admin routes
	MetricsEnabled  bool   // Whether to expose Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for metrics endpoint (default: /metrics)
	BodySizeLimit   int64  // Max request body size in bytes (default: 10MB)
}

// New creates a new HTTP server
func New(handler *Handler, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware stack (order matters)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	// The mobile app and browser clients load from other origins; the API
	// keeps the open policy the clients were built against.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(observability.Middleware())

	// Body size limit (default: 10MB). Document uploads carry base64
	// payloads, so the limit has to leave room for the encoding overhead.
	bodySizeLimit := int64(10 * 1024 * 1024)
	if cfg != nil && cfg.BodySizeLimit > 0 {
		bodySizeLimit = cfg.BodySizeLimit
	}
	e.Use(middleware.BodyLimit(strconv.FormatInt(bodySizeLimit, 10)))

	if cfg != nil && cfg.MetricsEnabled {
		metricsPath := "/metrics"
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal attacks
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	// Public routes
	api := e.Group("/api")
	api.GET("/", handler.Welcome)
	api.GET("/health", handler.Health)
	api.GET("/visa-types", handler.VisaTypes)
	api.GET("/testimonials", handler.Testimonials)
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)
	api.GET("/user/:id", handler.GetUser)
	api.POST("/applications", handler.CreateApplication)
	api.GET("/applications/user/:id", handler.ListUserApplications)
	api.GET("/applications/:id", handler.GetApplication)
	api.POST("/applications/:id/documents", handler.UploadDocument)

	// Admin routes behind basic auth
	var adminUser, adminPass string
	if cfg != nil {
		adminUser, adminPass = cfg.AdminUsername, cfg.AdminPassword
	}
	admin := api.Group("/admin", BasicAuthMiddleware(adminUser, adminPass))
	admin.GET("/applications", handler.AdminListApplications)
	admin.GET("/applications/:id", handler.AdminGetApplication)
	admin.PUT("/applications/:id", handler.AdminUpdateApplication)
	admin.DELETE("/applications/:id", handler.AdminDeleteApplication)
	admin.GET("/stats", handler.AdminStats)
	admin.GET("/users", handler.AdminListUsers)
	admin.POST("/testimonials", handler.AdminCreateTestimonial)
	admin.GET("/testimonials", handler.AdminListTestimonials)
	admin.DELETE("/testimonials/:id", handler.AdminDeleteTestimonial)
	admin.PUT("/testimonials/:id/toggle", handler.AdminToggleTestimonial)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
