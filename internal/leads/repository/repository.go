package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/platform/apperr"
)

const (
	leadNotFoundMsg = "lead not found"

	pgUniqueViolation = "23505"

	leadColumns = `id, first_name, last_name, email, phone, course_interest, source,
		score, behavioral_score, engagement_score, profile_score, stage, custom_fields, tags,
		last_contact_at, last_activity_at, created_at, updated_at`
)

// Repository implements LeadsRepository with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ LeadsRepository = (*Repository)(nil)

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return domain.Lead{}, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetLeadByEmail(ctx context.Context, email string) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return domain.Lead{}, fmt.Errorf("failed to get lead by email: %w", err)
	}
	return lead, nil
}

func (r *Repository) ListLeads(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	var stage, minScore, maxScore, search, tag any
	if params.Stage != nil {
		stage = string(*params.Stage)
	}
	if params.MinScore != nil {
		minScore = *params.MinScore
	}
	if params.MaxScore != nil {
		maxScore = *params.MaxScore
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		search = "%" + strings.ToLower(s) + "%"
	}
	if params.Tag != "" {
		tag = params.Tag
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`, count(*) OVER() AS total
		FROM leads
		WHERE ($1::text IS NULL OR stage = $1)
		  AND ($2::int IS NULL OR score >= $2)
		  AND ($3::int IS NULL OR score <= $3)
		  AND ($4::text IS NULL OR lower(first_name || ' ' || last_name || ' ' || email) LIKE $4)
		  AND ($5::text IS NULL OR $5 = ANY(tags))
		ORDER BY score DESC, created_at DESC
		LIMIT $6 OFFSET $7`,
		stage, minScore, maxScore, search, tag, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	total := 0
	for rows.Next() {
		var row leadRow
		if err := rows.Scan(append(row.dest(), &total)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		lead, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return items, total, nil
}

func (r *Repository) ListOpenLeads(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE stage NOT IN ('converted', 'lost')
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open leads: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return items, nil
}

func (r *Repository) CreateLead(ctx context.Context, lead domain.Lead) error {
	fields, err := domain.MarshalProfile(lead.Profile)
	if err != nil {
		return fmt.Errorf("encode custom fields: %w", err)
	}
	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO leads (
			id, first_name, last_name, email, phone, course_interest, source,
			score, behavioral_score, engagement_score, profile_score, stage, custom_fields, tags,
			last_contact_at, last_activity_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.CourseInterest, lead.Source,
		lead.Score.Total, lead.Score.Behavioral, lead.Score.Engagement, lead.Score.Profile,
		string(lead.Stage), fields, tags,
		lead.LastContactAt, lead.LastActivityAt, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("a lead with this email already exists")
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *Repository) UpdateProfile(ctx context.Context, lead domain.Lead) error {
	fields, err := domain.MarshalProfile(lead.Profile)
	if err != nil {
		return fmt.Errorf("encode custom fields: %w", err)
	}
	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			first_name = $2, last_name = $3, phone = $4, course_interest = $5,
			custom_fields = $6, tags = $7, updated_at = $8
		WHERE id = $1`,
		lead.ID, lead.FirstName, lead.LastName, lead.Phone, lead.CourseInterest, fields, tags, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, from, to domain.Stage, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			stage = $3,
			last_contact_at = CASE WHEN $3 = 'contacted' THEN $4 ELSE last_contact_at END,
			updated_at = $4
		WHERE id = $1 AND stage = $2`,
		id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("failed to update lead stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("lead stage changed, reload and try again")
	}
	return nil
}

func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, score domain.ScoreBreakdown, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			score = $2, behavioral_score = $3, engagement_score = $4, profile_score = $5, updated_at = $6
		WHERE id = $1`,
		id, score.Total, score.Behavioral, score.Engagement, score.Profile, at)
	if err != nil {
		return fmt.Errorf("failed to update lead score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

func (r *Repository) InsertActivity(ctx context.Context, a domain.Activity) error {
	payload, err := json.Marshal(nonNilPayload(a.Payload))
	if err != nil {
		return fmt.Errorf("encode activity payload: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_activities (id, lead_id, activity_type, payload, automated, score_impact, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, a.LeadID, string(a.Type), payload, a.Automated, a.ScoreImpact, a.OccurredAt); err != nil {
			return fmt.Errorf("failed to insert lead activity: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE leads SET
				last_activity_at = GREATEST(COALESCE(last_activity_at, $2), $2),
				last_contact_at = CASE WHEN $3 THEN GREATEST(COALESCE(last_contact_at, $2), $2) ELSE last_contact_at END
			WHERE id = $1`,
			a.LeadID, a.OccurredAt, a.Type.IsContact())
		if err != nil {
			return fmt.Errorf("failed to touch lead activity: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound(leadNotFoundMsg)
		}
		return nil
	})
}

func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, activity_type, payload, automated, score_impact, occurred_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY occurred_at`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead activities: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Activity, 0)
	for rows.Next() {
		var (
			a          domain.Activity
			typ        string
			rawPayload []byte
		)
		if err := rows.Scan(&a.ID, &a.LeadID, &typ, &rawPayload, &a.Automated, &a.ScoreImpact, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead activity: %w", err)
		}
		a.Type = domain.ActivityType(typ)
		if len(rawPayload) > 0 {
			if err := json.Unmarshal(rawPayload, &a.Payload); err != nil {
				return nil, fmt.Errorf("decode activity payload for %s: %w", a.ID, err)
			}
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead activities: %w", err)
	}
	return items, nil
}

func (r *Repository) InsertScoreHistory(ctx context.Context, h domain.ScoreHistory) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_score_history (
			id, lead_id, previous_score, new_score, delta, reason,
			behavioral_score, engagement_score, profile_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		h.ID, h.LeadID, h.PreviousScore, h.NewScore, h.Delta, h.Reason,
		h.Breakdown.Behavioral, h.Breakdown.Engagement, h.Breakdown.Profile, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert score history: %w", err)
	}
	return nil
}

func (r *Repository) ListScoreHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.ScoreHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, previous_score, new_score, delta, reason,
			behavioral_score, engagement_score, profile_score, created_at
		FROM lead_score_history
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list score history: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ScoreHistory, 0)
	for rows.Next() {
		var h domain.ScoreHistory
		if err := rows.Scan(&h.ID, &h.LeadID, &h.PreviousScore, &h.NewScore, &h.Delta, &h.Reason,
			&h.Breakdown.Behavioral, &h.Breakdown.Engagement, &h.Breakdown.Profile, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score history: %w", err)
		}
		h.Breakdown.Total = h.NewScore
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score history: %w", err)
	}
	return items, nil
}

type leadRow struct {
	lead       domain.Lead
	stage      string
	rawProfile []byte
}

func (row *leadRow) dest() []any {
	l := &row.lead
	return []any{
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.CourseInterest, &l.Source,
		&l.Score.Total, &l.Score.Behavioral, &l.Score.Engagement, &l.Score.Profile, &row.stage, &row.rawProfile, &l.Tags,
		&l.LastContactAt, &l.LastActivityAt, &l.CreatedAt, &l.UpdatedAt,
	}
}

func (row *leadRow) toDomain() (domain.Lead, error) {
	lead := row.lead
	lead.Stage = domain.Stage(row.stage)
	profile, err := domain.UnmarshalProfile(row.rawProfile)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("decode custom fields for %s: %w", lead.ID, err)
	}
	lead.Profile = profile
	return lead, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lr leadRow
	if err := row.Scan(lr.dest()...); err != nil {
		return domain.Lead{}, err
	}
	return lr.toDomain()
}

func nonNilPayload(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}
