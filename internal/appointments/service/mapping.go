package service

import (
	"salon_booking_backend/internal/appointments/domain"
	"salon_booking_backend/internal/appointments/transport"
)

func (s *Service) toResponse(b domain.Booking) transport.BookingResponse {
	resp := transport.BookingResponse{
		ID:               b.ID,
		ConfirmationCode: b.ConfirmationCode,
		ServiceID:        b.ServiceID,
		ServiceName:      b.ServiceName,
		DurationMinutes:  b.DurationMinutes,
		LocationID:       string(b.LocationID),
		LocationName:     b.LocationName,
		Date:             b.Date.String(),
		StartTime:        b.Start.String(),
		EndTime:          b.End.String(),
		StartsAt:         b.StartsAt(s.policy.Location),
		Client: transport.ClientResponse{
			FirstName: b.Client.FirstName,
			LastName:  b.Client.LastName,
			Email:     b.Client.Email,
			Phone:     b.Client.Phone,
			Notes:     b.Client.Notes,
		},
		DepositRequired: b.DepositRequired,
		DepositAmount:   b.DepositAmount.StringFixed(2),
		DepositPaid:     b.DepositPaid,
		TotalPrice:      b.TotalPrice.StringFixed(2),
		Status:          string(b.Status),
		ReminderSent:    b.ReminderSent,
		CancelledAt:     b.CancelledAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Recurrence != nil {
		resp.Recurrence = &transport.RecurrenceResponse{
			Frequency:   b.Recurrence.Frequency,
			Occurrences: b.Recurrence.Occurrences,
		}
	}
	return resp
}

func toBlockedDateResponse(b domain.BlockedDate) transport.BlockedDateResponse {
	resp := transport.BlockedDateResponse{
		ID:     b.ID,
		Date:   b.Date.String(),
		Reason: b.Reason,
		AllDay: b.AllDay,
	}
	if b.LocationID != nil {
		resp.LocationID = string(*b.LocationID)
	}
	for _, slot := range b.Slots {
		resp.Slots = append(resp.Slots, transport.TimeRangeRequest{Start: slot.Start.String(), End: slot.End.String()})
	}
	return resp
}
