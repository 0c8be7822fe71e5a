package service

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"salon_booking_backend/internal/appointments/domain"
	"salon_booking_backend/internal/appointments/repository"
	"salon_booking_backend/internal/appointments/transport"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/internal/events"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/lock"
	"salon_booking_backend/platform/phone"
	"salon_booking_backend/platform/sanitize"
)

const (
	maxConfirmationCodeAttempts = 5
	defaultPageSize             = 20
	maxPageSize                 = 100

	msgBookingNotFound = "booking not found"
)

// Create validates and commits a new booking in status pending.
func (s *Service) Create(ctx context.Context, req transport.CreateBookingRequest) (transport.BookingResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	start, err := parseTime(req.Time)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	clientPhone, err := phone.Parse(req.Phone)
	if err != nil {
		return transport.BookingResponse{}, apperr.Validation(err.Error())
	}
	now := s.now()
	if err := s.policy.CheckSlotTiming(date, start, now); err != nil {
		return transport.BookingResponse{}, err
	}

	location := catalog.LocationID(req.LocationID)
	release, err := s.acquireDay(ctx, location, date)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	defer release()

	day, err := s.loadDay(ctx, req.ServiceID, location, date)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	if err := checkSlot(day, date, location, start, day.bookings); err != nil {
		return transport.BookingResponse{}, err
	}

	client := domain.ClientDetails{
		FirstName: sanitize.Text(req.FirstName),
		LastName:  sanitize.Text(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     clientPhone,
		Notes:     sanitize.Message(req.Notes),
	}

	var booking domain.Booking
	for attempt := 1; ; attempt++ {
		code, err := domain.NewConfirmationCode()
		if err != nil {
			return transport.BookingResponse{}, err
		}
		booking = domain.NewBooking(day.service, day.location, date, start, client, code, now)
		if req.Recurrence != nil {
			booking.Recurrence = &domain.Recurrence{Frequency: req.Recurrence.Frequency, Occurrences: req.Recurrence.Occurrences}
		}

		err = s.repo.InsertBooking(ctx, booking)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateConfirmationCode) && attempt < maxConfirmationCodeAttempts {
			continue
		}
		return transport.BookingResponse{}, err
	}

	log := s.log.WithContext(ctx)
	log.Info("booking created",
		"bookingId", booking.ID,
		"code", booking.ConfirmationCode,
		"location", booking.LocationID,
		"date", booking.Date.String(),
		"time", booking.Start.String(),
	)

	startsAt := booking.StartsAt(s.policy.Location)
	s.bus.Publish(ctx, events.BookingCreated{
		BaseEvent:        events.NewBaseEvent(),
		BookingID:        booking.ID,
		ConfirmationCode: booking.ConfirmationCode,
		ServiceID:        booking.ServiceID,
		ServiceName:      booking.ServiceName,
		LocationID:       string(booking.LocationID),
		StartsAt:         startsAt,
		ClientName:       strings.TrimSpace(client.FirstName + " " + client.LastName),
		ClientEmail:      client.Email,
		ClientPhone:      client.Phone,
		DepositRequired:  booking.DepositRequired,
	})
	s.scheduleReminder(ctx, booking)

	return s.toResponse(booking), nil
}

// Get retrieves a booking by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.BookingResponse, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	return s.toResponse(booking), nil
}

// GetByCode retrieves a booking by confirmation code for the client who made it.
func (s *Service) GetByCode(ctx context.Context, code, email string) (transport.BookingResponse, error) {
	booking, err := s.bookingForClient(ctx, code, email)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	return s.toResponse(booking), nil
}

// List returns a filtered page of bookings for the admin calendar.
func (s *Service) List(ctx context.Context, req transport.ListBookingsRequest) (transport.BookingListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		Email:  req.Email,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if req.LocationID != "" {
		loc := catalog.LocationID(req.LocationID)
		params.LocationID = &loc
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return transport.BookingListResponse{}, err
		}
		params.Date = &date
	}
	if req.Status != "" {
		status := domain.BookingStatus(req.Status)
		params.Status = &status
	}

	items, total, err := s.repo.ListBookings(ctx, params)
	if err != nil {
		return transport.BookingListResponse{}, err
	}

	out := make([]transport.BookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, s.toResponse(b))
	}
	return transport.BookingListResponse{Items: out, Total: total, Page: page, PageSize: pageSize}, nil
}

// CancelByClient cancels a booking identified by confirmation code and
// client email.
func (s *Service) CancelByClient(ctx context.Context, code string, req transport.CancelBookingRequest) (transport.CancelBookingResponse, error) {
	booking, err := s.bookingForClient(ctx, code, req.Email)
	if err != nil {
		return transport.CancelBookingResponse{}, err
	}
	return s.cancel(ctx, booking, "client", req.Reason)
}

// Cancel cancels a booking on behalf of an admin.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor string) (transport.CancelBookingResponse, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return transport.CancelBookingResponse{}, err
	}
	return s.cancel(ctx, booking, actor, "")
}

func (s *Service) cancel(ctx context.Context, booking domain.Booking, actor, reason string) (transport.CancelBookingResponse, error) {
	if !domain.CanTransition(booking.Status, domain.StatusCancelled) {
		return transport.CancelBookingResponse{}, apperr.Validation("booking can no longer be cancelled").
			WithDetails(map[string]any{"status": booking.Status})
	}

	now := s.now()
	penaltyFree := s.policy.CanCancel(booking.Date, booking.Start, now)
	if err := s.repo.UpdateStatus(ctx, booking.ID, booking.Status, domain.StatusCancelled, now); err != nil {
		return transport.CancelBookingResponse{}, err
	}
	booking.Status = domain.StatusCancelled
	booking.CancelledAt = &now
	booking.UpdatedAt = now

	s.log.WithContext(ctx).Info("booking cancelled",
		"bookingId", booking.ID,
		"penaltyFree", penaltyFree,
		"cancelledBy", actor,
		"reason", reason,
	)
	s.bus.Publish(ctx, events.BookingCancelled{
		BaseEvent:   events.NewBaseEvent(),
		BookingID:   booking.ID,
		ClientEmail: booking.Client.Email,
		PenaltyFree: penaltyFree,
		CancelledBy: actor,
	})

	return transport.CancelBookingResponse{
		Booking:           s.toResponse(booking),
		PenaltyFree:       penaltyFree,
		DepositRefundable: penaltyFree && booking.DepositRequired,
	}, nil
}

// UpdateStatus moves a booking through its lifecycle on behalf of an admin.
// Cancellation and rescheduling have dedicated flows.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest, actor string) (transport.BookingResponse, error) {
	to := domain.BookingStatus(req.Status)
	switch to {
	case domain.StatusCancelled:
		result, err := s.Cancel(ctx, id, actor)
		return result.Booking, err
	case domain.StatusRescheduled:
		return transport.BookingResponse{}, apperr.BadRequest("use the reschedule endpoint to move a booking")
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	if !domain.CanTransition(booking.Status, to) {
		return transport.BookingResponse{}, apperr.Validation("invalid status transition").
			WithDetails(map[string]any{"from": booking.Status, "to": to})
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, booking.Status, to, now); err != nil {
		return transport.BookingResponse{}, err
	}
	from := booking.Status
	booking.Status = to
	booking.UpdatedAt = now

	s.log.WithContext(ctx).Info("booking status changed", "bookingId", id, "from", from, "to", to)
	s.bus.Publish(ctx, events.BookingStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		BookingID: id,
		OldStatus: string(from),
		NewStatus: string(to),
		ChangedBy: actor,
	})

	return s.toResponse(booking), nil
}

// RescheduleByClient moves a booking identified by confirmation code and email.
func (s *Service) RescheduleByClient(ctx context.Context, code string, req transport.RescheduleBookingRequest) (transport.BookingResponse, error) {
	if req.Email == "" {
		return transport.BookingResponse{}, apperr.Validation("email is required")
	}
	booking, err := s.bookingForClient(ctx, code, req.Email)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	return s.reschedule(ctx, booking, req)
}

// Reschedule moves a booking on behalf of an admin.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req transport.RescheduleBookingRequest) (transport.BookingResponse, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	return s.reschedule(ctx, booking, req)
}

func (s *Service) reschedule(ctx context.Context, booking domain.Booking, req transport.RescheduleBookingRequest) (transport.BookingResponse, error) {
	if !domain.CanTransition(booking.Status, domain.StatusRescheduled) {
		return transport.BookingResponse{}, apperr.Validation("booking can no longer be rescheduled").
			WithDetails(map[string]any{"status": booking.Status})
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	start, err := parseTime(req.Time)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	now := s.now()
	if err := s.policy.CheckSlotTiming(date, start, now); err != nil {
		return transport.BookingResponse{}, err
	}

	release, err := s.acquireDay(ctx, booking.LocationID, date)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	defer release()

	day, err := s.loadDay(ctx, booking.ServiceID, booking.LocationID, date)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	others := make([]domain.Booking, 0, len(day.bookings))
	for _, b := range day.bookings {
		if b.ID != booking.ID {
			others = append(others, b)
		}
	}
	if err := checkSlot(day, date, booking.LocationID, start, others); err != nil {
		return transport.BookingResponse{}, err
	}

	previousAt := booking.StartsAt(s.policy.Location)
	booking.Reschedule(date, start, now)
	if err := s.repo.RescheduleBooking(ctx, booking); err != nil {
		return transport.BookingResponse{}, err
	}

	startsAt := booking.StartsAt(s.policy.Location)
	s.log.WithContext(ctx).Info("booking rescheduled", "bookingId", booking.ID, "from", previousAt, "to", startsAt)
	s.bus.Publish(ctx, events.BookingRescheduled{
		BaseEvent:   events.NewBaseEvent(),
		BookingID:   booking.ID,
		PreviousAt:  previousAt,
		StartsAt:    startsAt,
		ClientEmail: booking.Client.Email,
	})
	s.scheduleReminder(ctx, booking)

	return s.toResponse(booking), nil
}

// bookingForClient loads a booking by code and hides it unless email matches.
func (s *Service) bookingForClient(ctx context.Context, code, email string) (domain.Booking, error) {
	booking, err := s.repo.GetBookingByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return domain.Booking{}, err
	}
	if !strings.EqualFold(booking.Client.Email, strings.TrimSpace(email)) {
		return domain.Booking{}, apperr.NotFound(msgBookingNotFound)
	}
	return booking, nil
}

// acquireDay serialises booking writes for one location and date across
// instances. The database transaction re-checks regardless.
func (s *Service) acquireDay(ctx context.Context, location catalog.LocationID, date civil.Date) (func(), error) {
	release, err := s.locker.Acquire(ctx, repository.SlotLockKey(location, date), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, apperr.Conflict("another booking for this day is in progress, please retry").AsRetryable()
		}
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release slot lock", "location", location, "date", date.String(), "error", err)
		}
	}, nil
}

// checkSlot rejects a start time that is closed or not an available slot.
func checkSlot(day dayView, date civil.Date, location catalog.LocationID, start domain.TimeOfDay, existing []domain.Booking) error {
	if !day.resolver.IsLocationOpen(date, location) {
		return apperr.Validation("location is closed on this date").AsRetryable()
	}

	slot, ok := day.generator().IsSlotAvailable(date, day.service, location, start, existing)
	if ok {
		return nil
	}
	if slot.Reason == domain.ReasonBooked {
		return apperr.Conflict("the selected time is no longer available").AsRetryable()
	}
	details := map[string]any{"time": start.String()}
	if slot.Reason != "" {
		details["reason"] = string(slot.Reason)
	}
	return apperr.Validation("the selected time is not an available slot").AsRetryable().WithDetails(details)
}
