package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"salon_booking_backend/internal/events"
	leadsdomain "salon_booking_backend/internal/leads/domain"
	"salon_booking_backend/platform/logger"
)

type recordedActivity struct {
	email     string
	kind      leadsdomain.ActivityType
	payload   map[string]any
	automated bool
}

type fakeRecorder struct {
	calls []recordedActivity
	found bool
	err   error
}

func (f *fakeRecorder) RecordActivityByEmail(_ context.Context, email string, kind leadsdomain.ActivityType, payload map[string]any, automated bool) (bool, error) {
	f.calls = append(f.calls, recordedActivity{email: email, kind: kind, payload: payload, automated: automated})
	return f.found, f.err
}

func bookingCreated(email string) events.BookingCreated {
	return events.BookingCreated{
		BaseEvent:        events.NewBaseEvent(),
		BookingID:        uuid.New(),
		ConfirmationCode: "K7MPQ2XR",
		ServiceName:      "Lash lift",
		LocationID:       "london",
		StartsAt:         time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC),
		ClientEmail:      email,
	}
}

func TestBookingLeadBridgeRecordsBookingCompleted(t *testing.T) {
	log := logger.Nop()
	bus := events.NewInMemoryBus(log)
	recorder := &fakeRecorder{found: true}
	NewBookingLeadBridge(recorder, log).Register(bus)

	event := bookingCreated("client@example.com")
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorder.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(recorder.calls))
	}
	got := recorder.calls[0]
	if got.email != "client@example.com" || got.kind != leadsdomain.ActivityBookingCompleted || !got.automated {
		t.Fatalf("unexpected activity %+v", got)
	}
	if got.payload["confirmationCode"] != "K7MPQ2XR" || got.payload["bookingId"] != event.BookingID.String() {
		t.Fatalf("unexpected payload %v", got.payload)
	}
}

func TestBookingLeadBridgeSwallowsFailures(t *testing.T) {
	log := logger.Nop()
	bus := events.NewInMemoryBus(log)
	recorder := &fakeRecorder{err: errors.New("db down")}
	NewBookingLeadBridge(recorder, log).Register(bus)

	if err := bus.PublishSync(context.Background(), bookingCreated("client@example.com")); err != nil {
		t.Fatalf("expected failure to be swallowed, got %v", err)
	}
}

func TestBookingLeadBridgeSkipsMissingEmail(t *testing.T) {
	log := logger.Nop()
	bus := events.NewInMemoryBus(log)
	recorder := &fakeRecorder{}
	NewBookingLeadBridge(recorder, log).Register(bus)

	if err := bus.PublishSync(context.Background(), bookingCreated("")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recorder.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(recorder.calls))
	}
}
