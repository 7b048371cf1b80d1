package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"visaserbia/internal/applications"
	"visaserbia/internal/core"
	"visaserbia/internal/testimonials"
)

// AdminListApplications handles GET /api/admin/applications
func (h *Handler) AdminListApplications(c echo.Context) error {
	list, err := h.apps.ListAll(c.Request().Context())
	if err != nil {
		return handleError(c, core.NewInternalError("error al obtener solicitudes", err))
	}
	if list == nil {
		list = []core.VisaApplication{}
	}
	return c.JSON(http.StatusOK, list)
}

// AdminGetApplication handles GET /api/admin/applications/:id
func (h *Handler) AdminGetApplication(c echo.Context) error {
	app, err := h.apps.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Solicitud no encontrada"))
		}
		return handleError(c, core.NewInternalError("error al obtener solicitud", err))
	}
	return c.JSON(http.StatusOK, app)
}

// AdminUpdateApplication handles PUT /api/admin/applications/:id.
// Only the fields present in the body change; updated_at always bumps.
func (h *Handler) AdminUpdateApplication(c echo.Context) error {
	var req core.ApplicationUpdate
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("cuerpo de solicitud inválido", err))
	}
	if req.Status != nil && !core.ValidStatus(*req.Status) {
		return handleError(c, core.NewInvalidRequestError("estado inválido: "+*req.Status, nil))
	}

	updated, err := h.apps.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Solicitud no encontrada"))
		}
		return handleError(c, core.NewInternalError("error al actualizar solicitud", err))
	}
	return c.JSON(http.StatusOK, updated)
}

// AdminDeleteApplication handles DELETE /api/admin/applications/:id
func (h *Handler) AdminDeleteApplication(c echo.Context) error {
	if err := h.apps.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Solicitud no encontrada"))
		}
		return handleError(c, core.NewInternalError("error al eliminar solicitud", err))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Solicitud eliminada exitosamente"})
}

// AdminStats handles GET /api/admin/stats
func (h *Handler) AdminStats(c echo.Context) error {
	stats, err := h.apps.Stats(c.Request().Context())
	if err != nil {
		return handleError(c, core.NewInternalError("error al calcular estadísticas", err))
	}
	return c.JSON(http.StatusOK, stats)
}

// AdminListUsers handles GET /api/admin/users. Password hashes never
// appear in the payload.
func (h *Handler) AdminListUsers(c echo.Context) error {
	list, err := h.users.List(c.Request().Context())
	if err != nil {
		return handleError(c, core.NewInternalError("error al obtener usuarios", err))
	}

	out := make([]map[string]interface{}, 0, len(list))
	for i := range list {
		profile := list[i].PublicProfile()
		profile["created_at"] = list[i].CreatedAt
		out = append(out, profile)
	}
	return c.JSON(http.StatusOK, out)
}

// AdminCreateTestimonial handles POST /api/admin/testimonials
func (h *Handler) AdminCreateTestimonial(c echo.Context) error {
	var req core.TestimonialCreate
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("cuerpo de solicitud inválido", err))
	}
	if req.ClientName == "" || req.VisaType == "" || req.Description == "" || req.ImageData == "" {
		return handleError(c, core.NewInvalidRequestError("client_name, visa_type, description e image_data son requeridos", nil))
	}

	story := &core.Testimonial{
		ID:          uuid.NewString(),
		ClientName:  req.ClientName,
		VisaType:    req.VisaType,
		Description: req.Description,
		ImageData:   req.ImageData,
		CreatedAt:   time.Now().UTC(),
		IsActive:    true,
	}
	if err := h.stories.Create(c.Request().Context(), story); err != nil {
		return handleError(c, core.NewInternalError("error al crear testimonio", err))
	}
	h.public.Invalidate(c.Request().Context())

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Testimonio creado exitosamente",
		"testimonial": story,
	})
}

// AdminListTestimonials handles GET /api/admin/testimonials
func (h *Handler) AdminListTestimonials(c echo.Context) error {
	list, err := h.stories.ListAll(c.Request().Context())
	if err != nil {
		return handleError(c, core.NewInternalError("error al obtener testimonios", err))
	}
	if list == nil {
		list = []core.Testimonial{}
	}
	return c.JSON(http.StatusOK, list)
}

// AdminDeleteTestimonial handles DELETE /api/admin/testimonials/:id
func (h *Handler) AdminDeleteTestimonial(c echo.Context) error {
	if err := h.stories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, testimonials.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Testimonio no encontrado"))
		}
		return handleError(c, core.NewInternalError("error al eliminar testimonio", err))
	}
	h.public.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"message": "Testimonio eliminado exitosamente"})
}

// AdminToggleTestimonial handles PUT /api/admin/testimonials/:id/toggle
func (h *Handler) AdminToggleTestimonial(c echo.Context) error {
	active, err := h.stories.Toggle(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, testimonials.ErrNotFound) {
			return handleError(c, core.NewNotFoundError("Testimonio no encontrado"))
		}
		return handleError(c, core.NewInternalError("error al actualizar testimonio", err))
	}
	h.public.Invalidate(c.Request().Context())

	message := "Testimonio desactivado"
	if active {
		message = "Testimonio activado"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   message,
		"is_active": active,
	})
}
