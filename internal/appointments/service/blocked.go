package service

import (
	"context"

	"github.com/google/uuid"

	"salon_booking_backend/internal/appointments/domain"
	"salon_booking_backend/internal/appointments/transport"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/sanitize"
)

// CreateBlockedDate closes a date. Without slots the whole day is closed;
// with slots only those ranges are blocked.
func (s *Service) CreateBlockedDate(ctx context.Context, req transport.CreateBlockedDateRequest) (transport.BlockedDateResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return transport.BlockedDateResponse{}, err
	}

	blocked := domain.BlockedDate{
		ID:     uuid.New(),
		Date:   date,
		Reason: sanitize.Text(req.Reason),
		AllDay: len(req.Slots) == 0,
	}
	if req.LocationID != "" {
		loc := catalog.LocationID(req.LocationID)
		blocked.LocationID = &loc
	}
	for _, slot := range req.Slots {
		start, err := parseTime(slot.Start)
		if err != nil {
			return transport.BlockedDateResponse{}, err
		}
		end, err := parseTime(slot.End)
		if err != nil {
			return transport.BlockedDateResponse{}, err
		}
		if end <= start {
			return transport.BlockedDateResponse{}, apperr.Validation("blocked slot must end after it starts").
				WithDetails(map[string]any{"start": slot.Start, "end": slot.End})
		}
		blocked.Slots = append(blocked.Slots, domain.TimeRange{Start: start, End: end})
	}

	if err := s.repo.CreateBlockedDate(ctx, blocked); err != nil {
		return transport.BlockedDateResponse{}, err
	}
	s.log.WithContext(ctx).Info("date blocked", "id", blocked.ID, "date", date.String(), "allDay", blocked.AllDay)
	return toBlockedDateResponse(blocked), nil
}

// ListBlockedDates returns closures in [from, to].
func (s *Service) ListBlockedDates(ctx context.Context, from, to string) ([]transport.BlockedDateResponse, error) {
	fromDate, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate(to)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListBlockedDates(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	out := make([]transport.BlockedDateResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toBlockedDateResponse(item))
	}
	return out, nil
}

// DeleteBlockedDate reopens a date.
func (s *Service) DeleteBlockedDate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteBlockedDate(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("blocked date removed", "id", id)
	return nil
}
