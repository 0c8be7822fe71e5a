package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/platform/apperr"
)

const (
	serviceNotFoundMessage  = "service not found"
	locationNotFoundMessage = "location not found"

	serviceColumns  = `id, name, slug, COALESCE(description, ''), price, duration_minutes, requires_deposit, deposit_amount, is_active`
	locationColumns = `id, name, salon_name, address_line1, COALESCE(address_line2, ''), city, postcode, phone, latitude, longitude, COALESCE(parking_note, '')`
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListServices returns services ordered for display.
func (r *Repo) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services
		WHERE ($1::boolean = false OR is_active = true)
		ORDER BY display_order ASC, name ASC`

	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return items, nil
}

// GetService retrieves a service by its ID.
func (r *Repo) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return domain.Service{}, fmt.Errorf("get service by id: %w", err)
	}
	return svc, nil
}

// GetServiceBySlug retrieves a service by its slug.
func (r *Repo) GetServiceBySlug(ctx context.Context, slug string) (domain.Service, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return domain.Service{}, fmt.Errorf("get service by slug: %w", err)
	}
	return svc, nil
}

// ListLocations returns every salon location.
func (r *Repo) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Location, 0)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return items, nil
}

// GetLocation retrieves a location by its ID.
func (r *Repo) GetLocation(ctx context.Context, id domain.LocationID) (domain.Location, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, string(id))
	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, apperr.NotFound(locationNotFoundMessage)
		}
		return domain.Location{}, fmt.Errorf("get location: %w", err)
	}
	return loc, nil
}

// UpsertService inserts a service or updates the one with the same slug.
// The stored ID wins on update so existing bookings keep their reference.
func (r *Repo) UpsertService(ctx context.Context, svc domain.Service, displayOrder int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (
			id, name, slug, description, price, duration_minutes,
			requires_deposit, deposit_amount, is_active, display_order
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			duration_minutes = EXCLUDED.duration_minutes,
			requires_deposit = EXCLUDED.requires_deposit,
			deposit_amount = EXCLUDED.deposit_amount,
			is_active = EXCLUDED.is_active,
			display_order = EXCLUDED.display_order,
			updated_at = now()`,
		svc.ID, svc.Name, svc.Slug, svc.Description, svc.Price, svc.DurationMinutes,
		svc.RequiresDeposit, svc.DepositAmount, svc.IsActive, displayOrder)
	if err != nil {
		return fmt.Errorf("upsert service: %w", err)
	}
	return nil
}

func scanService(row pgx.Row) (domain.Service, error) {
	var svc domain.Service
	err := row.Scan(
		&svc.ID, &svc.Name, &svc.Slug, &svc.Description, &svc.Price,
		&svc.DurationMinutes, &svc.RequiresDeposit, &svc.DepositAmount, &svc.IsActive,
	)
	return svc, err
}

func scanLocation(row pgx.Row) (domain.Location, error) {
	var (
		loc domain.Location
		id  string
	)
	err := row.Scan(
		&id, &loc.Name, &loc.SalonName, &loc.AddressLine1, &loc.AddressLine2, &loc.City,
		&loc.Postcode, &loc.Phone, &loc.Latitude, &loc.Longitude, &loc.ParkingNote,
	)
	loc.ID = domain.LocationID(id)
	return loc, err
}
