package handler

import (
	"net/http"

	"salon_booking_backend/internal/leads/management"
	"salon_booking_backend/internal/leads/transport"
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

// Handler handles HTTP requests for enquiries and the lead back office.
type Handler struct {
	mgmt *management.Service
	val  *validator.Validator
}

// New creates a new leads handler.
func New(mgmt *management.Service, val *validator.Validator) *Handler {
	return &Handler{mgmt: mgmt, val: val}
}

// RegisterPublicRoutes registers the enquiry and tracking endpoints.
// writeLimit throttles both; it may be nil.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	leads := rg.Group("/leads")
	if writeLimit != nil {
		leads.Use(writeLimit)
	}
	leads.POST("", h.CreateEnquiry)
	leads.POST("/track", h.Track)
}

// RegisterAdminRoutes registers the back-office routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	leads.GET("", h.List)
	leads.POST("/stage-sweep", h.SweepStages)
	leads.GET("/:id", h.GetByID)
	leads.PUT("/:id", h.UpdateProfile)
	leads.PATCH("/:id/stage", h.UpdateStage)
	leads.GET("/:id/history", h.History)
	leads.GET("/:id/insights", h.Insights)
	leads.POST("/:id/activities", h.LogActivity)
	leads.POST("/:id/recalculate", h.Recalculate)
}

// CreateEnquiry handles POST /api/v1/leads
func (h *Handler) CreateEnquiry(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.mgmt.CreateEnquiry(httpkit.RequestContext(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	httpkit.JSON(c, status, result)
}

// Track handles POST /api/v1/leads/track. It always accepts.
func (h *Handler) Track(c *gin.Context) {
	var req transport.TrackActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.mgmt.Track(httpkit.RequestContext(c), req)
	c.Status(http.StatusAccepted)
}

// List handles GET /api/v1/admin/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.mgmt.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/admin/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.mgmt.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateProfile handles PUT /api/v1/admin/leads/:id
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.mgmt.UpdateProfile(httpkit.RequestContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStage handles PATCH /api/v1/admin/leads/:id/stage
func (h *Handler) UpdateStage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateStageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.mgmt.UpdateStage(httpkit.RequestContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// History handles GET /api/v1/admin/leads/:id/history
func (h *Handler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.mgmt.History(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Insights handles GET /api/v1/admin/leads/:id/insights
func (h *Handler) Insights(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.mgmt.Insights(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LogActivity handles POST /api/v1/admin/leads/:id/activities
func (h *Handler) LogActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.LogActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.mgmt.LogActivity(httpkit.RequestContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Recalculate handles POST /api/v1/admin/leads/:id/recalculate
func (h *Handler) Recalculate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.mgmt.Recalculate(httpkit.RequestContext(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SweepStages handles POST /api/v1/admin/leads/stage-sweep
func (h *Handler) SweepStages(c *gin.Context) {
	result, err := h.mgmt.SweepStages(httpkit.RequestContext(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
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

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
