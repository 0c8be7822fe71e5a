// Package appointments provides availability, slot selection and the
// booking lifecycle.
package appointments

import (
	"fmt"
	"time"

	"salon_booking_backend/internal/appointments/domain"
	"salon_booking_backend/internal/appointments/handler"
	"salon_booking_backend/internal/appointments/repository"
	"salon_booking_backend/internal/appointments/service"
	"salon_booking_backend/internal/events"
	apphttp "salon_booking_backend/internal/http"
	"salon_booking_backend/platform/config"
	"salon_booking_backend/platform/logger"
	"salon_booking_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the appointments domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
	repo    repository.Repository
}

// NewModule creates a new appointments module with all dependencies wired
func NewModule(pool *pgxpool.Pool, catalogReader service.CatalogReader, bus events.Bus, policy domain.BookingPolicy, val *validator.Validator, log *logger.Logger) *Module {
	loc := policy.Location
	if loc == nil {
		loc = time.UTC
	}
	repo := repository.New(pool, loc)
	svc := service.New(repo, catalogReader, bus, policy, log)

	return &Module{
		handler: handler.New(svc, val),
		Service: svc,
		repo:    repo,
	}
}

// PolicyFromConfig builds the booking rules from configuration.
func PolicyFromConfig(cfg config.BookingPolicyConfig) (domain.BookingPolicy, error) {
	loc, err := time.LoadLocation(cfg.GetSalonTimezone())
	if err != nil {
		return domain.BookingPolicy{}, fmt.Errorf("load salon timezone: %w", err)
	}
	policy := domain.DefaultBookingPolicy(loc)
	policy.MinNotice = time.Duration(cfg.GetMinNoticeHours()) * time.Hour
	policy.CancellationNotice = time.Duration(cfg.GetCancellationNoticeHours()) * time.Hour
	if weeks := cfg.GetMaxAdvanceWeeks(); weeks > 0 {
		policy.MaxAdvanceWeeks = weeks
	}
	if interval := cfg.GetSlotIntervalMinutes(); interval > 0 {
		policy.SlotIntervalMinutes = interval
	}
	policy.ApplyLunchBreak = cfg.GetApplyLunchBreak()
	return policy, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "appointments"
}

// Repository exposes the booking store to the worker and seed loader.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes registers public booking routes and admin management routes.
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
