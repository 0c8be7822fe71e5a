package service

import (
	"context"

	"github.com/google/uuid"

	"salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/internal/catalog/repository"
	"salon_booking_backend/internal/catalog/transport"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/logger"
)

// Service exposes the catalog's reference data.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListServices returns the active services.
func (s *Service) ListServices(ctx context.Context) (transport.ServiceListResponse, error) {
	items, err := s.repo.ListServices(ctx, true)
	if err != nil {
		return transport.ServiceListResponse{}, err
	}
	out := make([]transport.ServiceResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToServiceResponse(item))
	}
	return transport.ServiceListResponse{Items: out, Total: len(out)}, nil
}

// GetService retrieves a service by ID.
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return ToServiceResponse(svc), nil
}

// GetServiceBySlug retrieves a service by slug.
func (s *Service) GetServiceBySlug(ctx context.Context, slug string) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return ToServiceResponse(svc), nil
}

// ListLocations returns all salon locations.
func (s *Service) ListLocations(ctx context.Context) (transport.LocationListResponse, error) {
	items, err := s.repo.ListLocations(ctx)
	if err != nil {
		return transport.LocationListResponse{}, err
	}
	out := make([]transport.LocationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToLocationResponse(item))
	}
	return transport.LocationListResponse{Items: out, Total: len(out)}, nil
}

// GetLocation retrieves a location by ID. Unknown identifiers are rejected
// before the database is consulted.
func (s *Service) GetLocation(ctx context.Context, id domain.LocationID) (transport.LocationResponse, error) {
	if !domain.IsKnownLocation(id) {
		return transport.LocationResponse{}, apperr.NotFound("location not found")
	}
	loc, err := s.repo.GetLocation(ctx, id)
	if err != nil {
		return transport.LocationResponse{}, err
	}
	return ToLocationResponse(loc), nil
}

// ToServiceResponse maps a domain service to its API shape.
func ToServiceResponse(svc domain.Service) transport.ServiceResponse {
	return transport.ServiceResponse{
		ID:              svc.ID,
		Name:            svc.Name,
		Slug:            svc.Slug,
		Description:     svc.Description,
		Price:           svc.Price.StringFixed(2),
		DurationMinutes: svc.DurationMinutes,
		RequiresDeposit: svc.RequiresDeposit,
		DepositAmount:   svc.DepositAmount.StringFixed(2),
	}
}

// ToLocationResponse maps a domain location to its API shape.
func ToLocationResponse(loc domain.Location) transport.LocationResponse {
	return transport.LocationResponse{
		ID:           string(loc.ID),
		Name:         loc.Name,
		SalonName:    loc.SalonName,
		AddressLine1: loc.AddressLine1,
		AddressLine2: loc.AddressLine2,
		City:         loc.City,
		Postcode:     loc.Postcode,
		Phone:        loc.Phone,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		ParkingNote:  loc.ParkingNote,
	}
}
