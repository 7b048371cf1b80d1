package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"visaserbia/internal/applications"
	"visaserbia/internal/core"
	"visaserbia/internal/storage"
	"visaserbia/internal/testimonials"
	"visaserbia/internal/users"
)

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	catalog *core.Catalog
	users   users.Store
	apps    applications.Store
	stories testimonials.Store
	public  *testimonials.CachedReader
	store   storage.Storage
}

// NewHandler creates a new handler over the given stores. public serves
// the cached listing for GET /api/testimonials; stories is the direct
// store used by the admin endpoints.
func NewHandler(catalog *core.Catalog, userStore users.Store, appStore applications.Store,
	storyStore testimonials.Store, public *testimonials.CachedReader, store storage.Storage) *Handler {
	return &Handler{
		catalog: catalog,
		users:   userStore,
		apps:    appStore,
		stories: storyStore,
		public:  public,
		store:   store,
	}
}

// Welcome handles GET /api/
func (h *Handler) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Bienvenido a Cuban-Serbia Visa API",
		"version": "1.0",
	})
}

// Health handles GET /api/health
func (h *Handler) Health(c echo.Context) error {
	svcStatus := "ok"
	dbStatus := "ok"
	status := http.StatusOK
	if err := h.store.Ping(c.Request().Context()); err != nil {
		slog.Warn("health check database ping failed", "error", err)
		svcStatus = "degraded"
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]string{
		"status":   svcStatus,
		"database": dbStatus,
	})
}

// VisaTypes handles GET /api/visa-types
func (h *Handler) VisaTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog)
}

// Testimonials handles GET /api/testimonials. Responses carry an ETag
// so the landing page can revalidate cheaply.
func (h *Handler) Testimonials(c echo.Context) error {
	list, err := h.public.ListActive(c.Request().Context())
	if err != nil {
		return handleError(c, core.NewInternalError("error al obtener testimonios", err))
	}
	if list == nil {
		list = []core.Testimonial{}
	}

	etag := testimonials.ETag(list)
	if etag != "" {
		c.Response().Header().Set("ETag", etag)
		if c.Request().Header.Get("If-None-Match") == etag {
			return c.NoContent(http.StatusNotModified)
		}
	}

	out := make([]map[string]interface{}, 0, len(list))
	for i := range list {
		out = append(out, list[i].PublicView())
	}
	return c.JSON(http.StatusOK, out)
}

// Register handles POST /api/auth/register
func (h *Handler) Register(c echo.Context) error {
	var req core.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("cuerpo de solicitud inválido", err))
	}
	if req.Email == "" || req.Password == "" {
		return handleError(c, core.NewInvalidRequestError("email y contraseña son requeridos", nil))
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return handleError(c, core.NewInternalError("error al registrar usuario", err))
	}

	user := &core.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		PasswordHash:   hash,
		FullName:       req.FullName,
		Phone:          req.Phone,
		PassportNumber: req.PassportNumber,
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}
	if err := h.users.Create(c.Request().Context(), user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return handleError(c, core.NewInvalidRequestError("El email ya está registrado", nil))
		}
		return handleError(c, core.NewInternalError("error al registrar usuario", err))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Usuario registrado exitosamente",
		"user":    user.PublicProfile(),
	})
}

// Login handles POST /api/auth/login. Unknown email and wrong password
// return the same message so the endpoint doesn't confirm which emails
// are registered.
func (h *Handler) Login(c echo.Context) error {
	var req core.LoginRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("cuerpo de solicitud inválido", err))
	}

	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return handleError(c, core.NewAuthenticationError("Credenciales incorrectas"))
		}
		return handleError(c, core.NewInternalError("error al iniciar sesión", err))
	}
	if !users.CheckPassword(req.Password, user.PasswordHash) {
		return handleError(c, core.NewAuthenticationError("Credenciales incorrectas"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login exitoso",
		"user":    user.PublicProfile(),
	})
}

// GetUser handles GET /api/user/:id
func (h *Handler) GetUser(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Usuario no encontrado"))
		}
		return handleError(c, core.NewInternalError("error al obtener usuario", err))
	}
	return c.JSON(http.StatusOK, user.PublicProfile())
}

// CreateApplication handles POST /api/applications?user_id=...
// User fields and the catalog price are snapshotted onto the application.
func (h *Handler) CreateApplication(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return handleError(c, core.NewInvalidRequestError("user_id es requerido", nil))
	}

	var req core.ApplicationCreate
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("cuerpo de solicitud inválido", err))
	}

	user, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Usuario no encontrado"))
		}
		return handleError(c, core.NewInternalError("error al crear solicitud", err))
	}

	visa, ok := h.catalog.Get(req.VisaType)
	if !ok {
		return handleError(c, core.NewInvalidRequestError("Tipo de visa inválido", nil))
	}

	now := time.Now().UTC()
	app := &core.VisaApplication{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		UserEmail:      user.Email,
		UserName:       user.FullName,
		UserPhone:      user.Phone,
		PassportNumber: user.PassportNumber,
		VisaType:       visa.Code,
		VisaName:       visa.Name,
		Price:          visa.Price,
		Status:         core.StatusPendiente,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.apps.Create(c.Request().Context(), app); err != nil {
		return handleError(c, core.NewInternalError("error al crear solicitud", err))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Solicitud creada exitosamente",
		"application": app,
	})
}

// ListUserApplications handles GET /api/applications/user/:id
func (h *Handler) ListUserApplications(c echo.Context) error {
	list, err := h.apps.ListByUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleError(c, core.NewInternalError("error al obtener solicitudes", err))
	}
	if list == nil {
		list = []core.VisaApplication{}
	}
	return c.JSON(http.StatusOK, list)
}

// GetApplication handles GET /api/applications/:id
func (h *Handler) GetApplication(c echo.Context) error {
	app, err := h.apps.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Solicitud no encontrada"))
		}
		return handleError(c, core.NewInternalError("error al obtener solicitud", err))
	}
	return c.JSON(http.StatusOK, app)
}

// UploadDocument handles POST /api/applications/:id/documents. The file
// arrives as form fields with a base64 payload; only the owning user may
// attach documents.
func (h *Handler) UploadDocument(c echo.Context) error {
	userID := c.QueryParam("user_id")
	fileName := c.FormValue("file_name")
	fileType := c.FormValue("file_type")
	fileData := c.FormValue("file_data")
	if fileName == "" || fileType == "" || fileData == "" {
		return handleError(c, core.NewInvalidRequestError("file_name, file_type y file_data son requeridos", nil))
	}

	app, err := h.apps.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Solicitud no encontrada"))
		}
		return handleError(c, core.NewInternalError("error al subir documento", err))
	}
	if app.UserID != userID {
		return handleError(c, core.NewPermissionError("No autorizado"))
	}

	doc := core.DocumentInfo{
		ID:         uuid.NewString(),
		Name:       fileName,
		Type:       fileType,
		UploadedAt: time.Now().UTC(),
		Data:       fileData,
	}
	if err := h.apps.AddDocument(c.Request().Context(), app.ID, doc); err != nil {
		return handleError(c, core.NewInternalError("error al subir documento", err))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":     "Documento subido exitosamente",
		"document_id": doc.ID,
	})
}

// handleError converts service errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Err != nil {
			slog.Error("request failed", "type", apiErr.Type, "error", apiErr.Err)
		}
		return c.JSON(apiErr.HTTPStatusCode(), apiErr.ToJSON())
	}

	// Fallback for unexpected errors
	slog.Error("unexpected error", "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
