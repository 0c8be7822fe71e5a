package service

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salon_booking_backend/internal/appointments/domain"
	"salon_booking_backend/internal/appointments/repository"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/internal/events"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/logger"
)

type fakeRepo struct {
	mu             sync.Mutex
	workingDays    []domain.WorkingDay
	blocked        []domain.BlockedDate
	bookings       map[uuid.UUID]domain.Booking
	duplicateCodes int
	insertCalls    int
	reminderSent   []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	hours := domain.TimeRange{Start: domain.MustTimeOfDay("10:00"), End: domain.MustTimeOfDay("18:00")}
	return &fakeRepo{
		workingDays: []domain.WorkingDay{
			{ID: uuid.New(), LocationID: catalog.LocationLondon, Weekday: time.Tuesday, Regime: domain.RegimeStandard, Hours: hours},
			{ID: uuid.New(), LocationID: catalog.LocationLondon, Weekday: time.Wednesday, Regime: domain.RegimeStandard, Hours: hours},
		},
		bookings: make(map[uuid.UUID]domain.Booking),
	}
}

func (f *fakeRepo) ListWorkingDays(context.Context) ([]domain.WorkingDay, error) {
	return f.workingDays, nil
}

func (f *fakeRepo) ListBlockedDates(_ context.Context, from, to civil.Date) ([]domain.BlockedDate, error) {
	out := make([]domain.BlockedDate, 0)
	for _, b := range f.blocked {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateBlockedDate(_ context.Context, b domain.BlockedDate) error {
	f.blocked = append(f.blocked, b)
	return nil
}

func (f *fakeRepo) DeleteBlockedDate(_ context.Context, id uuid.UUID) error {
	for i, b := range f.blocked {
		if b.ID == id {
			f.blocked = append(f.blocked[:i], f.blocked[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("blocked date not found")
}

func (f *fakeRepo) UpsertWorkingDay(_ context.Context, wd domain.WorkingDay) error {
	f.workingDays = append(f.workingDays, wd)
	return nil
}

func (f *fakeRepo) GetBooking(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, apperr.NotFound("booking not found")
	}
	return b, nil
}

func (f *fakeRepo) GetBookingByCode(_ context.Context, code string) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ConfirmationCode == code {
			return b, nil
		}
	}
	return domain.Booking{}, apperr.NotFound("booking not found")
}

func (f *fakeRepo) ListBookingsForDay(_ context.Context, location catalog.LocationID, date civil.Date) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range f.bookings {
		if b.LocationID == location && b.Date == date && b.Status != domain.StatusCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListBookings(context.Context, repository.ListParams) ([]domain.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Booking, 0, len(f.bookings))
	for _, b := range f.bookings {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListDueReminders(_ context.Context, from, to time.Time, _ int) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range f.bookings {
		startsAt := b.StartsAt(time.UTC)
		if isLive(b.Status) && !b.ReminderSent && !startsAt.Before(from) && startsAt.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) InsertBooking(_ context.Context, b domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.duplicateCodes > 0 {
		f.duplicateCodes--
		return repository.ErrDuplicateConfirmationCode
	}
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeRepo) RescheduleBooking(_ context.Context, b domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.BookingStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return apperr.NotFound("booking not found")
	}
	if b.Status != from {
		return apperr.Conflict("booking status changed")
	}
	b.Status = to
	if to == domain.StatusCancelled {
		b.CancelledAt = &at
	}
	f.bookings[id] = b
	return nil
}

func (f *fakeRepo) MarkReminderSent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bookings[id]
	b.ReminderSent = true
	f.bookings[id] = b
	f.reminderSent = append(f.reminderSent, id)
	return nil
}

type fakeCatalog struct {
	services  map[uuid.UUID]catalog.Service
	locations []catalog.Location
}

func newFakeCatalog(services ...catalog.Service) *fakeCatalog {
	c := &fakeCatalog{
		services: make(map[uuid.UUID]catalog.Service),
		locations: []catalog.Location{
			{ID: catalog.LocationReading, Name: "Reading"},
			{ID: catalog.LocationLondon, Name: "London"},
			{ID: catalog.LocationOxford, Name: "Oxford"},
		},
	}
	for _, s := range services {
		c.services[s.ID] = s
	}
	return c
}

func (c *fakeCatalog) GetService(_ context.Context, id uuid.UUID) (catalog.Service, error) {
	s, ok := c.services[id]
	if !ok {
		return catalog.Service{}, apperr.NotFound("service not found")
	}
	return s, nil
}

func (c *fakeCatalog) GetLocation(_ context.Context, id catalog.LocationID) (catalog.Location, error) {
	for _, l := range c.locations {
		if l.ID == id {
			return l, nil
		}
	}
	return catalog.Location{}, apperr.NotFound("location not found")
}

func (c *fakeCatalog) ListLocations(context.Context) ([]catalog.Location, error) {
	return c.locations, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
	syncErr   error
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	if b.syncErr != nil {
		return b.syncErr
	}
	b.Publish(ctx, event)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func (b *fakeBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.published))
	for _, e := range b.published {
		names = append(names, e.EventName())
	}
	return names
}

type scheduledReminder struct {
	bookingID uuid.UUID
	startsAt  time.Time
	runAt     time.Time
}

type fakeReminders struct {
	scheduled []scheduledReminder
	err       error
}

func (r *fakeReminders) ScheduleBookingReminder(_ context.Context, bookingID uuid.UUID, startsAt, runAt time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.scheduled = append(r.scheduled, scheduledReminder{bookingID: bookingID, startsAt: startsAt, runAt: runAt})
	return nil
}

type fakeLocker struct {
	err      error
	acquired []string
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

// 2026-03-02 is a Monday.
var testNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc       *Service
	repo      *fakeRepo
	bus       *fakeBus
	reminders *fakeReminders
	locker    *fakeLocker
	service   catalog.Service
}

func newTestEnv() *testEnv {
	svc60 := catalog.Service{
		ID:              uuid.New(),
		Name:            "Brow lamination",
		Price:           decimal.RequireFromString("65.00"),
		DurationMinutes: 60,
		RequiresDeposit: true,
		DepositAmount:   decimal.RequireFromString("15.00"),
		IsActive:        true,
	}
	repo := newFakeRepo()
	bus := &fakeBus{}
	reminders := &fakeReminders{}
	locker := &fakeLocker{}

	s := New(repo, newFakeCatalog(svc60), bus, domain.DefaultBookingPolicy(time.UTC), logger.Nop())
	s.SetClock(func() time.Time { return testNow })
	s.SetLocker(locker, time.Second)
	s.SetReminderScheduler(reminders, 24*time.Hour)

	return &testEnv{svc: s, repo: repo, bus: bus, reminders: reminders, locker: locker, service: svc60}
}
