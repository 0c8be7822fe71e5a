package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/internal/catalog/service"
	"salon_booking_backend/platform/httpkit"
)

const msgInvalidServiceID = "invalid service ID"

// Handler handles HTTP requests for the catalog.
type Handler struct {
	svc *service.Service
}

// New creates a new catalog handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListServices returns the active services.
// GET /api/v1/services
func (h *Handler) ListServices(c *gin.Context) {
	result, err := h.svc.ListServices(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetService returns a single service.
// GET /api/v1/services/:id
func (h *Handler) GetService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidServiceID, nil)
		return
	}

	result, err := h.svc.GetService(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetServiceBySlug returns a single service.
// GET /api/v1/services/slug/:slug
func (h *Handler) GetServiceBySlug(c *gin.Context) {
	result, err := h.svc.GetServiceBySlug(c.Request.Context(), c.Param("slug"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListLocations returns all salon locations.
// GET /api/v1/locations
func (h *Handler) ListLocations(c *gin.Context) {
	result, err := h.svc.ListLocations(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetLocation returns a single location.
// GET /api/v1/locations/:id
func (h *Handler) GetLocation(c *gin.Context) {
	result, err := h.svc.GetLocation(c.Request.Context(), domain.LocationID(c.Param("id")))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
