package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"salon_booking_backend/internal/appointments/domain"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/platform/apperr"
)

type blockedSlotRecord struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ListWorkingDays returns every opening rule across both regimes.
func (r *Repo) ListWorkingDays(ctx context.Context) ([]domain.WorkingDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, location_id, day_of_week, regime, start_time, end_time, lunch_start, lunch_end
		FROM working_days
		ORDER BY location_id, day_of_week`)
	if err != nil {
		return nil, fmt.Errorf("list working days: %w", err)
	}
	defer rows.Close()

	days := make([]domain.WorkingDay, 0)
	for rows.Next() {
		var (
			wd                   domain.WorkingDay
			location, regime     string
			dow                  int16
			start, end           pgtype.Time
			lunchStart, lunchEnd pgtype.Time
		)
		if err := rows.Scan(&wd.ID, &location, &dow, &regime, &start, &end, &lunchStart, &lunchEnd); err != nil {
			return nil, fmt.Errorf("scan working day: %w", err)
		}
		wd.LocationID = catalog.LocationID(location)
		wd.Weekday = time.Weekday(dow)
		wd.Regime = domain.Regime(regime)
		wd.Hours = domain.TimeRange{Start: fromPgTime(start), End: fromPgTime(end)}
		if lunchStart.Valid && lunchEnd.Valid {
			wd.Lunch = &domain.TimeRange{Start: fromPgTime(lunchStart), End: fromPgTime(lunchEnd)}
		}
		days = append(days, wd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate working days: %w", err)
	}
	return days, nil
}

// ListBlockedDates returns blocks whose date falls within [from, to].
func (r *Repo) ListBlockedDates(ctx context.Context, from, to civil.Date) ([]domain.BlockedDate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, blocked_on, location_id, reason, all_day, blocked_slots
		FROM blocked_dates
		WHERE blocked_on BETWEEN $1 AND $2
		ORDER BY blocked_on`, toPgDate(from), toPgDate(to))
	if err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", err)
	}
	defer rows.Close()

	blocks := make([]domain.BlockedDate, 0)
	for rows.Next() {
		var (
			b        domain.BlockedDate
			day      time.Time
			location *string
			rawSlots []byte
		)
		if err := rows.Scan(&b.ID, &day, &location, &b.Reason, &b.AllDay, &rawSlots); err != nil {
			return nil, fmt.Errorf("scan blocked date: %w", err)
		}
		b.Date = civil.DateOf(day)
		if location != nil {
			id := catalog.LocationID(*location)
			b.LocationID = &id
		}
		slots, err := decodeBlockedSlots(rawSlots)
		if err != nil {
			return nil, fmt.Errorf("decode blocked slots for %s: %w", b.ID, err)
		}
		b.Slots = slots
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked dates: %w", err)
	}
	return blocks, nil
}

// CreateBlockedDate stores a closure.
func (r *Repo) CreateBlockedDate(ctx context.Context, b domain.BlockedDate) error {
	rawSlots, err := encodeBlockedSlots(b.Slots)
	if err != nil {
		return err
	}

	var location *string
	if b.LocationID != nil {
		id := string(*b.LocationID)
		location = &id
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO blocked_dates (id, blocked_on, location_id, reason, all_day, blocked_slots)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, toPgDate(b.Date), location, b.Reason, b.AllDay, rawSlots)
	if err != nil {
		return fmt.Errorf("failed to create blocked date: %w", err)
	}
	return nil
}

// DeleteBlockedDate reopens a previously blocked date.
func (r *Repo) DeleteBlockedDate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocked_dates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blocked date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("blocked date not found")
	}
	return nil
}

// UpsertWorkingDay inserts or replaces the rule for (location, weekday, regime).
func (r *Repo) UpsertWorkingDay(ctx context.Context, wd domain.WorkingDay) error {
	var lunchStart, lunchEnd pgtype.Time
	if wd.Lunch != nil {
		lunchStart, lunchEnd = toPgTime(wd.Lunch.Start), toPgTime(wd.Lunch.End)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO working_days (id, location_id, day_of_week, regime, start_time, end_time, lunch_start, lunch_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (location_id, day_of_week, regime) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			lunch_start = EXCLUDED.lunch_start,
			lunch_end = EXCLUDED.lunch_end`,
		wd.ID, string(wd.LocationID), int16(wd.Weekday), string(wd.Regime),
		toPgTime(wd.Hours.Start), toPgTime(wd.Hours.End), lunchStart, lunchEnd)
	if err != nil {
		return fmt.Errorf("failed to upsert working day: %w", err)
	}
	return nil
}

func decodeBlockedSlots(raw []byte) ([]domain.TimeRange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []blockedSlotRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	slots := make([]domain.TimeRange, 0, len(records))
	for _, rec := range records {
		start, err := domain.ParseTimeOfDay(rec.Start)
		if err != nil {
			return nil, err
		}
		end, err := domain.ParseTimeOfDay(rec.End)
		if err != nil {
			return nil, err
		}
		slots = append(slots, domain.TimeRange{Start: start, End: end})
	}
	return slots, nil
}

func encodeBlockedSlots(slots []domain.TimeRange) ([]byte, error) {
	records := make([]blockedSlotRecord, 0, len(slots))
	for _, s := range slots {
		records = append(records, blockedSlotRecord{Start: s.Start.String(), End: s.End.String()})
	}
	return json.Marshal(records)
}

const microsPerMinute = int64(time.Minute / time.Microsecond)

func toPgTime(t domain.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * microsPerMinute, Valid: true}
}

func fromPgTime(t pgtype.Time) domain.TimeOfDay {
	return domain.TimeOfDay(t.Microseconds / microsPerMinute)
}

func toPgDate(d civil.Date) pgtype.Date {
	return pgtype.Date{Time: d.In(time.UTC), Valid: true}
}
