// Package service implements the appointments use cases: availability
// queries, the booking lifecycle and reminders.
package service

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"salon_booking_backend/internal/appointments/domain"
	"salon_booking_backend/internal/appointments/repository"
	"salon_booking_backend/internal/appointments/transport"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/internal/events"
	"salon_booking_backend/platform/apperr"
	"salon_booking_backend/platform/lock"
	"salon_booking_backend/platform/logger"
	"salon_booking_backend/platform/validator"
)

// maxCalendarDays bounds a single AvailableDates request.
const maxCalendarDays = 92

// CatalogReader is the slice of the catalog the booking flow needs.
type CatalogReader interface {
	GetService(ctx context.Context, id uuid.UUID) (catalog.Service, error)
	GetLocation(ctx context.Context, id catalog.LocationID) (catalog.Location, error)
	ListLocations(ctx context.Context) ([]catalog.Location, error)
}

// ReminderScheduler enqueues a reminder to run at runAt.
type ReminderScheduler interface {
	ScheduleBookingReminder(ctx context.Context, bookingID uuid.UUID, startsAt, runAt time.Time) error
}

// Service provides the appointments business logic.
type Service struct {
	repo         repository.Repository
	catalog      CatalogReader
	bus          events.Bus
	policy       domain.BookingPolicy
	week4        domain.Week4Policy
	locker       lock.Locker
	lockTTL      time.Duration
	reminders    ReminderScheduler
	reminderLead time.Duration
	now          func() time.Time
	log          *logger.Logger
}

// New creates the appointments service. The slot lock defaults to a no-op
// and reminders are disabled until their collaborators are set.
func New(repo repository.Repository, catalogReader CatalogReader, bus events.Bus, policy domain.BookingPolicy, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		catalog:      catalogReader,
		bus:          bus,
		policy:       policy,
		week4:        domain.DefaultWeek4Policy,
		locker:       lock.Noop{},
		lockTTL:      10 * time.Second,
		reminderLead: 24 * time.Hour,
		now:          time.Now,
		log:          log,
	}
}

// SetLocker installs the distributed slot lock.
func (s *Service) SetLocker(locker lock.Locker, ttl time.Duration) {
	if locker == nil {
		locker = lock.Noop{}
	}
	s.locker = locker
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// SetReminderScheduler enables appointment reminders sent lead before start.
func (s *Service) SetReminderScheduler(reminders ReminderScheduler, lead time.Duration) {
	s.reminders = reminders
	if lead > 0 {
		s.reminderLead = lead
	}
}

// SetClock replaces the wall clock. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetWeek4Policy overrides the day-of-month regime switch.
func (s *Service) SetWeek4Policy(p domain.Week4Policy) {
	s.week4 = p
}

// Policy returns the booking rules in force.
func (s *Service) Policy() domain.BookingPolicy {
	return s.policy
}

// AvailableLocations lists the locations open on a date with their hours.
func (s *Service) AvailableLocations(ctx context.Context, req transport.AvailableLocationsRequest) (transport.AvailableLocationsResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return transport.AvailableLocationsResponse{}, err
	}

	schedule, err := s.loadSchedule(ctx, date, date)
	if err != nil {
		return transport.AvailableLocationsResponse{}, err
	}
	resolver := s.resolver(schedule)

	open := make([]transport.OpenLocation, 0, 1)
	for _, loc := range resolver.AvailableLocationsFor(date) {
		wd, _ := resolver.WorkingDayFor(date, loc.ID)
		open = append(open, transport.OpenLocation{
			ID:       string(loc.ID),
			Name:     loc.Name,
			OpensAt:  wd.Hours.Start.String(),
			ClosesAt: wd.Hours.End.String(),
		})
	}

	return transport.AvailableLocationsResponse{
		Date:      date.String(),
		Regime:    string(resolver.Regime(date)),
		Locations: open,
	}, nil
}

// AvailableDates reports, for each date in the range, whether the location opens.
func (s *Service) AvailableDates(ctx context.Context, req transport.AvailableDatesRequest) (transport.AvailableDatesResponse, error) {
	from, err := parseDate(req.From)
	if err != nil {
		return transport.AvailableDatesResponse{}, err
	}
	to, err := parseDate(req.To)
	if err != nil {
		return transport.AvailableDatesResponse{}, err
	}
	if to.Before(from) {
		return transport.AvailableDatesResponse{}, apperr.BadRequest("from must not be after to")
	}
	if to.DaysSince(from) >= maxCalendarDays {
		return transport.AvailableDatesResponse{}, apperr.BadRequest("date range is too long").
			WithDetails(map[string]any{"maxDays": maxCalendarDays})
	}

	location := catalog.LocationID(req.LocationID)
	schedule, err := s.loadSchedule(ctx, from, to)
	if err != nil {
		return transport.AvailableDatesResponse{}, err
	}

	days := s.resolver(schedule).AvailableDates(location, from, to)
	out := make([]transport.DateAvailabilityResponse, 0, len(days))
	for _, d := range days {
		out = append(out, transport.DateAvailabilityResponse{Date: d.Date.String(), Open: d.Open})
	}
	return transport.AvailableDatesResponse{LocationID: string(location), Dates: out}, nil
}

// Slots lists every candidate start time for a service on a date. A closed
// date yields an empty list rather than an error.
func (s *Service) Slots(ctx context.Context, req transport.SlotsRequest) (transport.SlotsResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return transport.SlotsResponse{}, err
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return transport.SlotsResponse{}, apperr.BadRequest("invalid service ID")
	}
	location := catalog.LocationID(req.LocationID)

	day, err := s.loadDay(ctx, serviceID, location, date)
	if err != nil {
		return transport.SlotsResponse{}, err
	}

	slots := day.generator().GenerateSlots(date, day.service, location, day.bookings)
	out := make([]transport.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, transport.SlotResponse{
			Time:      slot.Start.String(),
			EndTime:   slot.End.String(),
			Available: slot.Available,
			Reason:    string(slot.Reason),
		})
	}

	return transport.SlotsResponse{
		Date:       date.String(),
		LocationID: string(location),
		ServiceID:  serviceID,
		Open:       day.resolver.IsLocationOpen(date, location),
		Slots:      out,
	}, nil
}

// dayView is everything needed to evaluate slots for one service, location and date.
type dayView struct {
	service  catalog.Service
	location catalog.Location
	resolver *domain.Resolver
	policy   domain.BookingPolicy
	bookings []domain.Booking
}

func (d dayView) generator() *domain.SlotGenerator {
	return domain.NewSlotGenerator(d.resolver, d.policy)
}

// loadDay reads the service, location, schedule and existing bookings concurrently.
func (s *Service) loadDay(ctx context.Context, serviceID uuid.UUID, location catalog.LocationID, date civil.Date) (dayView, error) {
	if !catalog.IsKnownLocation(location) {
		return dayView{}, apperr.NotFound("location not found")
	}

	var (
		view     dayView
		schedule domain.Schedule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		svc, err := s.catalog.GetService(gctx, serviceID)
		if err != nil {
			return err
		}
		if !svc.IsActive {
			return apperr.NotFound("service not found")
		}
		view.service = svc
		return nil
	})
	g.Go(func() error {
		loc, err := s.catalog.GetLocation(gctx, location)
		view.location = loc
		return err
	})
	g.Go(func() error {
		var err error
		schedule, err = s.loadSchedule(gctx, date, date)
		return err
	})
	g.Go(func() error {
		var err error
		view.bookings, err = s.repo.ListBookingsForDay(gctx, location, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return dayView{}, err
	}

	view.resolver = s.resolver(schedule)
	view.policy = s.policy
	return view, nil
}

// loadSchedule assembles the schedule covering [from, to].
func (s *Service) loadSchedule(ctx context.Context, from, to civil.Date) (domain.Schedule, error) {
	schedule := domain.Schedule{Week4: s.week4}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schedule.Locations, err = s.catalog.ListLocations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		schedule.WorkingDays, err = s.repo.ListWorkingDays(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		schedule.BlockedDates, err = s.repo.ListBlockedDates(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Schedule{}, err
	}
	return schedule, nil
}

func (s *Service) resolver(schedule domain.Schedule) *domain.Resolver {
	return domain.NewResolver(schedule, s.policy.Location, s.now)
}

func parseDate(value string) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, apperr.BadRequest("invalid date, expected " + validator.DateLayout)
	}
	return d, nil
}

func parseTime(value string) (domain.TimeOfDay, error) {
	t, err := domain.ParseTimeOfDay(value)
	if err != nil {
		return 0, apperr.BadRequest("invalid time, expected " + validator.TimeLayout)
	}
	return t, nil
}
