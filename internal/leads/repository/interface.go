package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salon_booking_backend/internal/leads/domain"
)

// ListParams filters the admin lead list.
type ListParams struct {
	Stage    *domain.Stage
	MinScore *int
	MaxScore *int
	Search   string
	Tag      string
	Offset   int
	Limit    int
}

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	GetLeadByEmail(ctx context.Context, email string) (domain.Lead, error)
	ListLeads(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
	// ListOpenLeads returns every lead not yet converted or lost.
	ListOpenLeads(ctx context.Context) ([]domain.Lead, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	CreateLead(ctx context.Context, lead domain.Lead) error
	UpdateProfile(ctx context.Context, lead domain.Lead) error
	// UpdateStage applies only if the stored stage still equals from. Moving
	// to contacted stamps last_contact_at.
	UpdateStage(ctx context.Context, id uuid.UUID, from, to domain.Stage, at time.Time) error
	UpdateScore(ctx context.Context, id uuid.UUID, score domain.ScoreBreakdown, at time.Time) error
}

// ActivityStore is the append-only activity log.
type ActivityStore interface {
	// InsertActivity appends the activity and bumps the lead's
	// last_activity_at, and last_contact_at for contact activities.
	InsertActivity(ctx context.Context, activity domain.Activity) error
	ListActivities(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error)
}

// ScoreHistoryStore is the append-only score audit trail.
type ScoreHistoryStore interface {
	InsertScoreHistory(ctx context.Context, entry domain.ScoreHistory) error
	ListScoreHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.ScoreHistory, error)
}

// LeadsRepository combines all lead repository operations.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	ActivityStore
	ScoreHistoryStore
}
