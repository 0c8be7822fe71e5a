// Package catalog provides the salon's reference data: services and locations.
package catalog

import (
	"salon_booking_backend/internal/catalog/handler"
	"salon_booking_backend/internal/catalog/repository"
	"salon_booking_backend/internal/catalog/service"
	apphttp "salon_booking_backend/internal/http"
	"salon_booking_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the catalog store to other modules and the seed loader.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes. All catalog routes are public.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/services", m.handler.ListServices)
	ctx.Public.GET("/services/:id", m.handler.GetService)
	ctx.Public.GET("/services/slug/:slug", m.handler.GetServiceBySlug)
	ctx.Public.GET("/locations", m.handler.ListLocations)
	ctx.Public.GET("/locations/:id", m.handler.GetLocation)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
