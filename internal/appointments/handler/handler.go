package handler

import (
	"net/http"

	"salon_booking_backend/internal/appointments/service"
	"salon_booking_backend/internal/appointments/transport"
	"salon_booking_backend/platform/httpkit"
	"salon_booking_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid ID"
)

// Handler handles HTTP requests for availability and bookings.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new appointments handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes registers the anonymous booking-site routes.
// writeLimit throttles submissions; it may be nil.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	availability := rg.Group("/availability")
	availability.GET("/locations", h.AvailableLocations)
	availability.GET("/dates", h.AvailableDates)
	availability.GET("/slots", h.Slots)

	bookings := rg.Group("/bookings")
	bookings.GET("/:code", h.GetByCode)
	writes := bookings.Group("")
	if writeLimit != nil {
		writes.Use(writeLimit)
	}
	writes.POST("", h.Create)
	writes.POST("/:code/cancel", h.CancelByClient)
	writes.POST("/:code/reschedule", h.RescheduleByClient)
}

// RegisterAdminRoutes registers the back-office routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	bookings.GET("", h.List)
	bookings.GET("/:id", h.GetByID)
	bookings.PATCH("/:id/status", h.UpdateStatus)
	bookings.POST("/:id/cancel", h.Cancel)
	bookings.POST("/:id/reschedule", h.Reschedule)

	blocked := rg.Group("/blocked-dates")
	blocked.GET("", h.ListBlockedDates)
	blocked.POST("", h.CreateBlockedDate)
	blocked.DELETE("/:id", h.DeleteBlockedDate)
}

// AvailableLocations handles GET /api/v1/availability/locations
func (h *Handler) AvailableLocations(c *gin.Context) {
	var req transport.AvailableLocationsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.svc.AvailableLocations(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AvailableDates handles GET /api/v1/availability/dates
func (h *Handler) AvailableDates(c *gin.Context) {
	var req transport.AvailableDatesRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.svc.AvailableDates(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Slots handles GET /api/v1/availability/slots
func (h *Handler) Slots(c *gin.Context) {
	var req transport.SlotsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.svc.Slots(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/bookings
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Create(httpkit.RequestContext(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetByCode handles GET /api/v1/bookings/:code?email=
func (h *Handler) GetByCode(c *gin.Context) {
	email := c.Query("email")
	if err := h.val.Var(email, "required,email"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.GetByCode(c.Request.Context(), c.Param("code"), email)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CancelByClient handles POST /api/v1/bookings/:code/cancel
func (h *Handler) CancelByClient(c *gin.Context) {
	var req transport.CancelBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.CancelByClient(httpkit.RequestContext(c), c.Param("code"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RescheduleByClient handles POST /api/v1/bookings/:code/reschedule
func (h *Handler) RescheduleByClient(c *gin.Context) {
	var req transport.RescheduleBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.RescheduleByClient(httpkit.RequestContext(c), c.Param("code"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// List handles GET /api/v1/admin/bookings
func (h *Handler) List(c *gin.Context) {
	var req transport.ListBookingsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/admin/bookings/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStatus handles PATCH /api/v1/admin/bookings/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.UpdateStatus(httpkit.RequestContext(c), id, req, httpkit.Actor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Cancel handles POST /api/v1/admin/bookings/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.Cancel(httpkit.RequestContext(c), id, httpkit.Actor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Reschedule handles POST /api/v1/admin/bookings/:id/reschedule
func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.RescheduleBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Reschedule(httpkit.RequestContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListBlockedDates handles GET /api/v1/admin/blocked-dates?from=&to=
func (h *Handler) ListBlockedDates(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if h.val.Var(from, "required,isodate") != nil || h.val.Var(to, "required,isodate") != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "from and to must be YYYY-MM-DD")
		return
	}

	result, err := h.svc.ListBlockedDates(c.Request.Context(), from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateBlockedDate handles POST /api/v1/admin/blocked-dates
func (h *Handler) CreateBlockedDate(c *gin.Context) {
	var req transport.CreateBlockedDateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.CreateBlockedDate(httpkit.RequestContext(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// DeleteBlockedDate handles DELETE /api/v1/admin/blocked-dates/:id
func (h *Handler) DeleteBlockedDate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteBlockedDate(httpkit.RequestContext(c), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
