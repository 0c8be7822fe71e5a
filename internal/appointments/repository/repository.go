package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"salon_booking_backend/internal/appointments/domain"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/platform/apperr"
)

const (
	bookingNotFoundMsg = "booking not found"
	slotTakenMsg       = "the selected time is no longer available"

	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"

	confirmationCodeConstraint = "bookings_confirmation_code_key"

	bookingColumns = `id, confirmation_code, service_id, service_name, duration_minutes, location_id, location_name,
		booking_date, start_time, end_time, client_first_name, client_last_name, client_email, client_phone,
		COALESCE(client_notes, ''), deposit_required, deposit_amount, deposit_paid, total_price, recurrence,
		status, reminder_sent, cancelled_at, created_at, updated_at`
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// New creates a new appointments repository. loc is the salon timezone used
// to derive the starts_at and ends_at instants stored alongside the wall-clock
// date and times.
func New(pool *pgxpool.Pool, loc *time.Location) *Repo {
	if loc == nil {
		loc = time.UTC
	}
	return &Repo{pool: pool, loc: loc}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetBooking retrieves a booking by ID.
func (r *Repo) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, apperr.NotFound(bookingNotFoundMsg)
		}
		return domain.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// GetBookingByCode retrieves a booking by its confirmation code.
func (r *Repo) GetBookingByCode(ctx context.Context, code string) (domain.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE confirmation_code = $1`, strings.ToUpper(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, apperr.NotFound(bookingNotFoundMsg)
		}
		return domain.Booking{}, fmt.Errorf("failed to get booking by code: %w", err)
	}
	return b, nil
}

// ListBookingsForDay returns the non-cancelled bookings at a location on a date.
func (r *Repo) ListBookingsForDay(ctx context.Context, location catalog.LocationID, date civil.Date) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE location_id = $1 AND booking_date = $2 AND status <> 'cancelled'
		ORDER BY start_time`, string(location), toPgDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for day: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListBookings returns a filtered page of bookings and the total match count.
func (r *Repo) ListBookings(ctx context.Context, params ListParams) ([]domain.Booking, int, error) {
	var location, date, status, email any
	if params.LocationID != nil {
		location = string(*params.LocationID)
	}
	if params.Date != nil {
		date = toPgDate(*params.Date)
	}
	if params.Status != nil {
		status = string(*params.Status)
	}
	if params.Email != "" {
		email = strings.ToLower(params.Email)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`, count(*) OVER() AS total
		FROM bookings
		WHERE ($1::text IS NULL OR location_id = $1)
		  AND ($2::date IS NULL OR booking_date = $2)
		  AND ($3::text IS NULL OR status = $3)
		  AND ($4::text IS NULL OR lower(client_email) = $4)
		ORDER BY starts_at ASC
		LIMIT $5 OFFSET $6`,
		location, date, status, email, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Booking, 0)
	total := 0
	for rows.Next() {
		var row bookingRow
		if err := rows.Scan(append(row.dest(), &total)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		b, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return items, total, nil
}

// ListDueReminders returns live bookings starting within [from, to) whose
// reminder has not been sent.
func (r *Repo) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status IN ('pending', 'confirmed', 'rescheduled')
		  AND reminder_sent = false
		  AND starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// InsertBooking commits a new booking. The transaction takes an advisory
// lock on the location and date, re-checks overlap against live bookings,
// then inserts. The exclusion constraint on the table catches anything the
// lock does not.
func (r *Repo) InsertBooking(ctx context.Context, b domain.Booking) error {
	recurrence, err := encodeRecurrence(b.Recurrence)
	if err != nil {
		return err
	}
	startsAt, endsAt := b.StartsAt(r.loc), b.EndsAt(r.loc)

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockDay(ctx, tx, b.LocationID, b.Date); err != nil {
			return err
		}
		if err := ensureNoOverlap(ctx, tx, b.ID, b.LocationID, startsAt, endsAt); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO bookings (
				id, confirmation_code, service_id, service_name, duration_minutes, location_id, location_name,
				booking_date, start_time, end_time, starts_at, ends_at,
				client_first_name, client_last_name, client_email, client_phone, client_notes,
				deposit_required, deposit_amount, deposit_paid, total_price, recurrence,
				status, reminder_sent, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
				$18, $19, $20, $21, $22, $23, $24, $25, $26
			)`,
			b.ID, b.ConfirmationCode, b.ServiceID, b.ServiceName, b.DurationMinutes, string(b.LocationID), b.LocationName,
			toPgDate(b.Date), toPgTime(b.Start), toPgTime(b.End), startsAt, endsAt,
			b.Client.FirstName, b.Client.LastName, b.Client.Email, b.Client.Phone, nullableText(b.Client.Notes),
			b.DepositRequired, b.DepositAmount, b.DepositPaid, b.TotalPrice, recurrence,
			string(b.Status), b.ReminderSent, b.CreatedAt, b.UpdatedAt,
		)
		return err
	})
	return mapWriteError(err, "failed to insert booking")
}

// RescheduleBooking moves an existing booking under the same lock and
// overlap re-check as InsertBooking, ignoring the booking itself.
func (r *Repo) RescheduleBooking(ctx context.Context, b domain.Booking) error {
	startsAt, endsAt := b.StartsAt(r.loc), b.EndsAt(r.loc)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockDay(ctx, tx, b.LocationID, b.Date); err != nil {
			return err
		}
		if err := ensureNoOverlap(ctx, tx, b.ID, b.LocationID, startsAt, endsAt); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE bookings SET
				booking_date = $2, start_time = $3, end_time = $4, starts_at = $5, ends_at = $6,
				status = $7, reminder_sent = $8, updated_at = $9
			WHERE id = $1 AND status <> 'cancelled'`,
			b.ID, toPgDate(b.Date), toPgTime(b.Start), toPgTime(b.End), startsAt, endsAt,
			string(b.Status), b.ReminderSent, b.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound(bookingNotFoundMsg)
		}
		return nil
	})
	return mapWriteError(err, "failed to reschedule booking")
}

// UpdateStatus moves a booking from one status to another. The update only
// applies if the stored status still equals from.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, at time.Time) error {
	var cancelledAt *time.Time
	if to == domain.StatusCancelled {
		cancelledAt = &at
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = $3, cancelled_at = COALESCE($4, cancelled_at), updated_at = $5
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), cancelledAt, at)
	if err != nil {
		return mapWriteError(err, "failed to update booking status")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("booking status changed, reload and try again")
	}
	return nil
}

// MarkReminderSent flags the reminder as delivered.
func (r *Repo) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bookings SET reminder_sent = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(bookingNotFoundMsg)
	}
	return nil
}

func lockDay(ctx context.Context, tx pgx.Tx, location catalog.LocationID, date civil.Date) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, SlotLockKey(location, date)); err != nil {
		return fmt.Errorf("acquire booking day lock: %w", err)
	}
	return nil
}

func ensureNoOverlap(ctx context.Context, tx pgx.Tx, self uuid.UUID, location catalog.LocationID, startsAt, endsAt time.Time) error {
	var clash bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE location_id = $1
			  AND id <> $2
			  AND status <> 'cancelled'
			  AND tstzrange(starts_at, ends_at, '[)') && tstzrange($3, $4, '[)')
		)`, string(location), self, startsAt, endsAt).Scan(&clash)
	if err != nil {
		return fmt.Errorf("check booking overlap: %w", err)
	}
	if clash {
		return apperr.Conflict(slotTakenMsg).AsRetryable()
	}
	return nil
}

// SlotLockKey is the key bookings for one location and date serialise on.
func SlotLockKey(location catalog.LocationID, date civil.Date) string {
	return "booking:" + string(location) + ":" + date.String()
}

func mapWriteError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return apperr.Conflict(slotTakenMsg).AsRetryable()
		case pgUniqueViolation:
			if pgErr.ConstraintName == confirmationCodeConstraint {
				return ErrDuplicateConfirmationCode
			}
			return apperr.Conflict("booking already exists")
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

type bookingRow struct {
	b             domain.Booking
	location      string
	status        string
	date          time.Time
	start, end    pgtype.Time
	rawRecurrence []byte
}

func (row *bookingRow) dest() []any {
	b := &row.b
	return []any{
		&b.ID, &b.ConfirmationCode, &b.ServiceID, &b.ServiceName, &b.DurationMinutes, &row.location, &b.LocationName,
		&row.date, &row.start, &row.end, &b.Client.FirstName, &b.Client.LastName, &b.Client.Email, &b.Client.Phone,
		&b.Client.Notes, &b.DepositRequired, &b.DepositAmount, &b.DepositPaid, &b.TotalPrice, &row.rawRecurrence,
		&row.status, &b.ReminderSent, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt,
	}
}

func (row *bookingRow) toDomain() (domain.Booking, error) {
	b := row.b
	b.LocationID = catalog.LocationID(row.location)
	b.Status = domain.BookingStatus(row.status)
	b.Date = civil.DateOf(row.date)
	b.Start = fromPgTime(row.start)
	b.End = fromPgTime(row.end)
	if len(row.rawRecurrence) > 0 {
		var rec domain.Recurrence
		if err := json.Unmarshal(row.rawRecurrence, &rec); err != nil {
			return domain.Booking{}, fmt.Errorf("decode recurrence for %s: %w", b.ID, err)
		}
		b.Recurrence = &rec
	}
	return b, nil
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var br bookingRow
	if err := row.Scan(br.dest()...); err != nil {
		return domain.Booking{}, err
	}
	return br.toDomain()
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	items := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return items, nil
}

func encodeRecurrence(rec *domain.Recurrence) (any, error) {
	if rec == nil {
		return nil, nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode recurrence: %w", err)
	}
	return raw, nil
}

func nullableText(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
