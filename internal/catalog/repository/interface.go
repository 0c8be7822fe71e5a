package repository

import (
	"context"

	"github.com/google/uuid"

	"salon_booking_backend/internal/catalog/domain"
)

// ServiceReader provides read access to bookable services.
type ServiceReader interface {
	ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (domain.Service, error)
	GetServiceBySlug(ctx context.Context, slug string) (domain.Service, error)
}

// LocationReader provides read access to salon locations.
type LocationReader interface {
	ListLocations(ctx context.Context) ([]domain.Location, error)
	GetLocation(ctx context.Context, id domain.LocationID) (domain.Location, error)
}

// ServiceWriter maintains the service list. Only the seed loader writes;
// the API never does.
type ServiceWriter interface {
	UpsertService(ctx context.Context, svc domain.Service, displayOrder int) error
}

// Repository combines all catalog operations.
type Repository interface {
	ServiceReader
	LocationReader
	ServiceWriter
}
