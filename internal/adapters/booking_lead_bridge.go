package adapters

import (
	"context"

	"salon_booking_backend/internal/events"
	"salon_booking_backend/internal/leads"
	leadsdomain "salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/platform/besteffort"
	"salon_booking_backend/platform/logger"
)

// BookingLeadBridge feeds committed bookings into lead scoring. A booking
// whose client email matches no lead is ignored.
type BookingLeadBridge struct {
	recorder leads.ActivityRecorder
	log      *logger.Logger
}

// NewBookingLeadBridge creates a new booking to lead bridge.
func NewBookingLeadBridge(recorder leads.ActivityRecorder, log *logger.Logger) *BookingLeadBridge {
	return &BookingLeadBridge{recorder: recorder, log: log}
}

// Register subscribes the bridge to booking events on bus.
func (b *BookingLeadBridge) Register(bus events.Bus) {
	bus.Subscribe(events.BookingCreated{}.EventName(), events.HandlerFunc(b.handleBookingCreated))
}

// Never fails: the booking is already committed.
func (b *BookingLeadBridge) handleBookingCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.BookingCreated)
	if !ok || e.ClientEmail == "" {
		return nil
	}

	payload := map[string]any{
		"bookingId":        e.BookingID.String(),
		"confirmationCode": e.ConfirmationCode,
		"serviceName":      e.ServiceName,
		"locationId":       e.LocationID,
		"startsAt":         e.StartsAt,
	}
	besteffort.Run(ctx, b.log, "record_booking_on_lead", func(ctx context.Context) error {
		found, err := b.recorder.RecordActivityByEmail(ctx, e.ClientEmail, leadsdomain.ActivityBookingCompleted, payload, true)
		if err == nil && found {
			b.log.WithContext(ctx).Debug("booking recorded on lead", "bookingId", e.BookingID)
		}
		return err
	}, "bookingId", e.BookingID)
	return nil
}
