// Package domain holds the salon's immutable reference data: the services
// on offer and the locations they are offered at.
package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocationID identifies a salon location. The set is closed.
type LocationID string

const (
	LocationReading LocationID = "reading"
	LocationLondon  LocationID = "london"
	LocationOxford  LocationID = "oxford"
)

var knownLocations = map[LocationID]struct{}{
	LocationReading: {},
	LocationLondon:  {},
	LocationOxford:  {},
}

// IsKnownLocation reports whether id belongs to the closed location set.
func IsKnownLocation(id LocationID) bool {
	_, ok := knownLocations[id]
	return ok
}

// Location is a salon site.
type Location struct {
	ID           LocationID
	Name         string
	SalonName    string
	AddressLine1 string
	AddressLine2 string
	City         string
	Postcode     string
	Phone        string
	Latitude     float64
	Longitude    float64
	ParkingNote  string
}

// Service is a bookable treatment.
type Service struct {
	ID              uuid.UUID
	Name            string
	Slug            string
	Description     string
	Price           decimal.Decimal
	DurationMinutes int
	RequiresDeposit bool
	DepositAmount   decimal.Decimal
	IsActive        bool
}
