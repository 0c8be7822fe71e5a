// Package leads provides the lead CRM bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"salon_booking_backend/internal/events"
	apphttp "salon_booking_backend/internal/http"
	"salon_booking_backend/internal/leads/handler"
	"salon_booking_backend/internal/leads/management"
	"salon_booking_backend/internal/leads/repository"
	"salon_booking_backend/internal/leads/scoring"
	"salon_booking_backend/platform/logger"
	"salon_booking_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	management *management.Service
	scoring    *scoring.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	scoringSvc := scoring.New(repo, eventBus, log)
	mgmtSvc := management.New(repo, scoringSvc, eventBus, log)

	return &Module{
		handler:    handler.New(mgmtSvc, val),
		management: mgmtSvc,
		scoring:    scoringSvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// ScoringService returns the scoring service; the worker uses it for the stage sweep.
func (m *Module) ScoringService() *scoring.Service {
	return m.scoring
}

// RegisterRoutes mounts the public enquiry routes and the admin lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if ctx.PublicWriteLimiter != nil {
		m.handler.RegisterPublicRoutes(ctx.Public, ctx.PublicWriteLimiter.RateLimit())
	} else {
		m.handler.RegisterPublicRoutes(ctx.Public, nil)
	}
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
