package transport

import "github.com/google/uuid"

// ServiceResponse represents a bookable service in API responses.
// Money is rendered as a fixed two-decimal string.
type ServiceResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	Price           string    `json:"price"`
	DurationMinutes int       `json:"durationMinutes"`
	RequiresDeposit bool      `json:"requiresDeposit"`
	DepositAmount   string    `json:"depositAmount"`
}

// ServiceListResponse wraps a list of services.
type ServiceListResponse struct {
	Items []ServiceResponse `json:"items"`
	Total int               `json:"total"`
}

// LocationResponse represents a salon location in API responses.
type LocationResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SalonName    string  `json:"salonName"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	Postcode     string  `json:"postcode"`
	Phone        string  `json:"phone"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ParkingNote  string  `json:"parkingNote,omitempty"`
}

// LocationListResponse wraps a list of locations.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Total int                `json:"total"`
}
