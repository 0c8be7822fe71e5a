package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	appointments "salon_booking_backend/internal/appointments/domain"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/platform/logger"
)

const sampleSeed = `
services:
  - slug: brow-lamination
    name: Brow Lamination
    price: "50.00"
    durationMinutes: 45
    deposit: "10.00"
  - slug: patch-test
    name: Patch Test
    price: "0"
    durationMinutes: 15
workingDays:
  - {location: london, weekday: Tuesday, regime: standard, hours: "10:00-18:00", lunch: "13:00-13:30"}
  - {location: reading, weekday: saturday, regime: week4, hours: "10:00-16:00"}
blockedDates:
  - {date: "2026-12-25", reason: Christmas Day}
  - {date: "2026-11-10", location: london, reason: Training, slots: ["10:00-12:00"]}
`

func TestParseBuildsDomainValues(t *testing.T) {
	plan, err := Parse([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(plan.Services))
	}
	brow := plan.Services[0]
	if !brow.RequiresDeposit || brow.DepositAmount.StringFixed(2) != "10.00" || !brow.IsActive {
		t.Fatalf("unexpected service %+v", brow)
	}
	if plan.Services[1].RequiresDeposit {
		t.Fatalf("expected no deposit on the patch test")
	}

	london := plan.WorkingDays[0]
	if london.LocationID != catalog.LocationLondon || london.Weekday != time.Tuesday || london.Regime != appointments.RegimeStandard {
		t.Fatalf("unexpected working day %+v", london)
	}
	if london.Lunch == nil || london.Lunch.Start.String() != "13:00" {
		t.Fatalf("expected lunch break, got %+v", london.Lunch)
	}
	if plan.WorkingDays[1].Lunch != nil {
		t.Fatalf("expected no lunch on reading saturday")
	}

	christmas := plan.BlockedDates[0]
	if christmas.LocationID != nil || !christmas.AllDay {
		t.Fatalf("expected a global all-day block, got %+v", christmas)
	}
	training := plan.BlockedDates[1]
	if training.AllDay || len(training.Slots) != 1 || *training.LocationID != catalog.LocationLondon {
		t.Fatalf("unexpected partial block %+v", training)
	}
}

func TestParseIDsAreStable(t *testing.T) {
	first, err := Parse([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := Parse([]byte(sampleSeed))

	if first.Services[0].ID != second.Services[0].ID {
		t.Fatalf("expected stable service IDs")
	}
	if first.WorkingDays[0].ID != second.WorkingDays[0].ID {
		t.Fatalf("expected stable working day IDs")
	}
	if first.BlockedDates[0].ID == first.BlockedDates[1].ID {
		t.Fatalf("expected distinct blocked date IDs")
	}
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "deposit above price",
			yaml: "services:\n  - {slug: a, name: A, price: \"10\", durationMinutes: 30, deposit: \"20\"}\n",
			want: "deposit exceeds price",
		},
		{
			name: "duplicate slug",
			yaml: "services:\n  - {slug: a, name: A, price: \"10\", durationMinutes: 30}\n  - {slug: a, name: B, price: \"10\", durationMinutes: 30}\n",
			want: "duplicate slug",
		},
		{
			name: "unknown location",
			yaml: "workingDays:\n  - {location: bath, weekday: monday, regime: standard, hours: \"09:00-17:00\"}\n",
			want: "unknown location",
		},
		{
			name: "inverted hours",
			yaml: "workingDays:\n  - {location: oxford, weekday: friday, regime: standard, hours: \"17:00-09:00\"}\n",
			want: "ends before it starts",
		},
		{
			name: "lunch outside hours",
			yaml: "workingDays:\n  - {location: oxford, weekday: friday, regime: standard, hours: \"09:00-17:00\", lunch: \"17:00-17:30\"}\n",
			want: "outside opening hours",
		},
		{
			name: "duplicate rule",
			yaml: "workingDays:\n  - {location: oxford, weekday: friday, regime: standard, hours: \"09:00-17:00\"}\n  - {location: oxford, weekday: Friday, regime: standard, hours: \"10:00-16:00\"}\n",
			want: "duplicate rule",
		},
		{
			name: "bad regime",
			yaml: "workingDays:\n  - {location: oxford, weekday: friday, regime: week5, hours: \"09:00-17:00\"}\n",
			want: "unknown regime",
		},
		{
			name: "bad date",
			yaml: "blockedDates:\n  - {date: \"25/12/2026\", reason: Christmas}\n",
			want: "invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCommittedScheduleFileIsValid(t *testing.T) {
	plan, err := Load("../../config/schedule.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Services) == 0 || len(plan.WorkingDays) != 10 {
		t.Fatalf("unexpected plan sizes: %d services, %d working days", len(plan.Services), len(plan.WorkingDays))
	}
	for _, wd := range plan.WorkingDays {
		if wd.Regime == appointments.RegimeWeek4 && wd.LocationID != appointments.DefaultWeek4Policy.Location {
			t.Fatalf("week4 rule for %s would never open", wd.LocationID)
		}
	}
}

type fakeStores struct {
	services    []catalog.Service
	orders      []int
	workingDays []appointments.WorkingDay
	blocked     map[civil.Date][]appointments.BlockedDate
	upsertErr   error
}

func (f *fakeStores) UpsertService(_ context.Context, svc catalog.Service, order int) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.services = append(f.services, svc)
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeStores) UpsertWorkingDay(_ context.Context, wd appointments.WorkingDay) error {
	f.workingDays = append(f.workingDays, wd)
	return nil
}

func (f *fakeStores) ListBlockedDates(_ context.Context, from, _ civil.Date) ([]appointments.BlockedDate, error) {
	return f.blocked[from], nil
}

func (f *fakeStores) CreateBlockedDate(_ context.Context, bd appointments.BlockedDate) error {
	if f.blocked == nil {
		f.blocked = make(map[civil.Date][]appointments.BlockedDate)
	}
	f.blocked[bd.Date] = append(f.blocked[bd.Date], bd)
	return nil
}

func TestApplyIsIdempotentForBlockedDates(t *testing.T) {
	plan, err := Parse([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stores := &fakeStores{}
	ctx := context.Background()

	summary, err := Apply(ctx, plan, stores, stores, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != (Summary{Services: 2, WorkingDays: 2, BlockedDates: 2}) {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if stores.orders[0] != 0 || stores.orders[1] != 1 {
		t.Fatalf("expected display order to follow file order, got %v", stores.orders)
	}

	summary, err = Apply(ctx, plan, stores, stores, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.BlockedDates != 0 || summary.Skipped != 2 {
		t.Fatalf("expected blocked dates skipped on rerun, got %+v", summary)
	}
}

func TestApplyStopsOnWriteFailure(t *testing.T) {
	plan, _ := Parse([]byte(sampleSeed))
	stores := &fakeStores{upsertErr: errors.New("db down")}

	summary, err := Apply(context.Background(), plan, stores, stores, logger.Nop())
	if err == nil || !strings.Contains(err.Error(), "brow-lamination") {
		t.Fatalf("expected failure naming the service, got %v", err)
	}
	if summary.Services != 0 || len(stores.workingDays) != 0 {
		t.Fatalf("expected nothing written after failure")
	}
}
