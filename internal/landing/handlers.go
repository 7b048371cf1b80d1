package landing

import (
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"visaserbia/config"
	"visaserbia/internal/core"
	"visaserbia/internal/observability"
)

// Server renders the landing pages.
type Server struct {
	echo    *echo.Echo
	client  *TestimonialsClient
	catalog *core.Catalog
	cfg     config.LandingConfig
}

type templateRenderer struct {
	tmpl *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// New creates the landing server.
func New(catalog *core.Catalog, client *TestimonialsClient, cfg config.LandingConfig) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &templateRenderer{tmpl: tmpl}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(observability.Middleware())

	s := &Server{echo: e, client: client, catalog: catalog, cfg: cfg}

	e.GET("/", s.Home)
	e.GET("/login", s.Login)
	e.GET("/register", s.Register)
	e.GET("/admin", s.Admin)
	e.GET("/go/whatsapp", s.WhatsApp)
	e.GET("/go/paypal", s.PayPal)

	return s, nil
}

// Home handles GET /. The testimonial fetch can fail without failing
// the page: the carousel section just renders its empty state.
func (s *Server) Home(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	data := PageData{
		Title:        "Visa Serbia — Servicio de Visados",
		Pricing:      pricingCards(s.catalog),
		Testimonials: s.client.Fetch(ctx),
		WhatsAppURL:  BuildWhatsAppURL(s.cfg.WhatsAppPhone, DefaultWhatsAppMessage),
		PayPalURL:    s.cfg.PayPalURL,
	}
	return c.Render(http.StatusOK, "home.html", data)
}

// Login handles GET /login
func (s *Server) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", PageData{Title: "Iniciar Sesión"})
}

// Register handles GET /register
func (s *Server) Register(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", PageData{Title: "Crear Cuenta"})
}

// Admin handles GET /admin
func (s *Server) Admin(c echo.Context) error {
	return c.Render(http.StatusOK, "admin.html", PageData{Title: "Panel de Administración"})
}

// WhatsApp handles GET /go/whatsapp
func (s *Server) WhatsApp(c echo.Context) error {
	return c.Redirect(http.StatusFound, BuildWhatsAppURL(s.cfg.WhatsAppPhone, DefaultWhatsAppMessage))
}

// PayPal handles GET /go/paypal
func (s *Server) PayPal(c echo.Context) error {
	return c.Redirect(http.StatusFound, s.cfg.PayPalURL)
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
