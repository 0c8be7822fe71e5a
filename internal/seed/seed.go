// Package seed loads the salon's reference data (services, working-day
// rules and blocked dates) from a YAML file into the database.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	appointments "salon_booking_backend/internal/appointments/domain"
	catalog "salon_booking_backend/internal/catalog/domain"
	"salon_booking_backend/platform/logger"
)

// Seed IDs are derived from natural keys so repeated loads are stable.
var seedNamespace = uuid.MustParse("4d3b2a51-7c1e-4f0a-9b8e-5a6c7d8e9f10")

// File mirrors the YAML layout.
type File struct {
	Services     []ServiceEntry     `yaml:"services"`
	WorkingDays  []WorkingDayEntry  `yaml:"workingDays"`
	BlockedDates []BlockedDateEntry `yaml:"blockedDates"`
}

// ServiceEntry is one bookable treatment. Deposit is optional; a positive
// deposit makes the service require one.
type ServiceEntry struct {
	Slug            string `yaml:"slug"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Price           string `yaml:"price"`
	DurationMinutes int    `yaml:"durationMinutes"`
	Deposit         string `yaml:"deposit"`
	Inactive        bool   `yaml:"inactive"`
}

// WorkingDayEntry is one weekly opening rule. Hours and Lunch are "HH:MM-HH:MM".
type WorkingDayEntry struct {
	Location string `yaml:"location"`
	Weekday  string `yaml:"weekday"`
	Regime   string `yaml:"regime"`
	Hours    string `yaml:"hours"`
	Lunch    string `yaml:"lunch"`
}

// BlockedDateEntry closes a date. An empty Location closes every location;
// Slots, when present, block only those ranges.
type BlockedDateEntry struct {
	Date     string   `yaml:"date"`
	Location string   `yaml:"location"`
	Reason   string   `yaml:"reason"`
	Slots    []string `yaml:"slots"`
}

// Plan is a validated file converted to domain values.
type Plan struct {
	Services     []catalog.Service
	WorkingDays  []appointments.WorkingDay
	BlockedDates []appointments.BlockedDate
}

// ServiceStore is where services are written.
type ServiceStore interface {
	UpsertService(ctx context.Context, svc catalog.Service, displayOrder int) error
}

// ScheduleStore is where opening rules and closures are written.
type ScheduleStore interface {
	UpsertWorkingDay(ctx context.Context, wd appointments.WorkingDay) error
	ListBlockedDates(ctx context.Context, from, to civil.Date) ([]appointments.BlockedDate, error)
	CreateBlockedDate(ctx context.Context, blocked appointments.BlockedDate) error
}

// Summary counts what Apply wrote.
type Summary struct {
	Services     int
	WorkingDays  int
	BlockedDates int
	Skipped      int
}

// Load reads and validates the file at path.
func Load(path string) (Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates YAML seed data.
func Parse(raw []byte) (Plan, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Plan{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f.Build()
}

// Build validates every entry and converts it. The first invalid entry
// fails the whole file.
func (f File) Build() (Plan, error) {
	plan := Plan{
		Services:     make([]catalog.Service, 0, len(f.Services)),
		WorkingDays:  make([]appointments.WorkingDay, 0, len(f.WorkingDays)),
		BlockedDates: make([]appointments.BlockedDate, 0, len(f.BlockedDates)),
	}

	slugs := make(map[string]struct{}, len(f.Services))
	for i, entry := range f.Services {
		svc, err := entry.toDomain()
		if err != nil {
			return Plan{}, fmt.Errorf("services[%d]: %w", i, err)
		}
		if _, dup := slugs[svc.Slug]; dup {
			return Plan{}, fmt.Errorf("services[%d]: duplicate slug %q", i, svc.Slug)
		}
		slugs[svc.Slug] = struct{}{}
		plan.Services = append(plan.Services, svc)
	}

	rules := make(map[uuid.UUID]struct{}, len(f.WorkingDays))
	for i, entry := range f.WorkingDays {
		wd, err := entry.toDomain()
		if err != nil {
			return Plan{}, fmt.Errorf("workingDays[%d]: %w", i, err)
		}
		if _, dup := rules[wd.ID]; dup {
			return Plan{}, fmt.Errorf("workingDays[%d]: duplicate rule for %s %s %s", i, wd.LocationID, wd.Weekday, wd.Regime)
		}
		rules[wd.ID] = struct{}{}
		plan.WorkingDays = append(plan.WorkingDays, wd)
	}

	for i, entry := range f.BlockedDates {
		bd, err := entry.toDomain()
		if err != nil {
			return Plan{}, fmt.Errorf("blockedDates[%d]: %w", i, err)
		}
		plan.BlockedDates = append(plan.BlockedDates, bd)
	}
	return plan, nil
}

// Apply writes plan. Services and working days are upserted; a blocked date
// already present with the same ID is left alone.
func Apply(ctx context.Context, plan Plan, services ServiceStore, schedule ScheduleStore, log *logger.Logger) (Summary, error) {
	var summary Summary

	for i, svc := range plan.Services {
		if err := services.UpsertService(ctx, svc, i); err != nil {
			return summary, fmt.Errorf("service %s: %w", svc.Slug, err)
		}
		summary.Services++
	}

	for _, wd := range plan.WorkingDays {
		if err := schedule.UpsertWorkingDay(ctx, wd); err != nil {
			return summary, fmt.Errorf("working day %s %s: %w", wd.LocationID, wd.Weekday, err)
		}
		summary.WorkingDays++
	}

	for _, bd := range plan.BlockedDates {
		existing, err := schedule.ListBlockedDates(ctx, bd.Date, bd.Date)
		if err != nil {
			return summary, fmt.Errorf("blocked date %s: %w", bd.Date, err)
		}
		if containsBlock(existing, bd.ID) {
			summary.Skipped++
			continue
		}
		if err := schedule.CreateBlockedDate(ctx, bd); err != nil {
			return summary, fmt.Errorf("blocked date %s: %w", bd.Date, err)
		}
		summary.BlockedDates++
	}

	log.Info("seed applied",
		"services", summary.Services,
		"workingDays", summary.WorkingDays,
		"blockedDates", summary.BlockedDates,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (e ServiceEntry) toDomain() (catalog.Service, error) {
	slug := strings.TrimSpace(e.Slug)
	if slug == "" || strings.TrimSpace(e.Name) == "" {
		return catalog.Service{}, fmt.Errorf("slug and name are required")
	}
	if e.DurationMinutes <= 0 {
		return catalog.Service{}, fmt.Errorf("durationMinutes must be positive")
	}
	price, err := decimal.NewFromString(e.Price)
	if err != nil || price.IsNegative() {
		return catalog.Service{}, fmt.Errorf("invalid price %q", e.Price)
	}

	deposit := decimal.Zero
	if strings.TrimSpace(e.Deposit) != "" {
		deposit, err = decimal.NewFromString(e.Deposit)
		if err != nil || deposit.IsNegative() {
			return catalog.Service{}, fmt.Errorf("invalid deposit %q", e.Deposit)
		}
		if deposit.GreaterThan(price) {
			return catalog.Service{}, fmt.Errorf("deposit exceeds price")
		}
	}

	return catalog.Service{
		ID:              uuid.NewSHA1(seedNamespace, []byte("service:"+slug)),
		Name:            strings.TrimSpace(e.Name),
		Slug:            slug,
		Description:     strings.TrimSpace(e.Description),
		Price:           price,
		DurationMinutes: e.DurationMinutes,
		RequiresDeposit: deposit.IsPositive(),
		DepositAmount:   deposit,
		IsActive:        !e.Inactive,
	}, nil
}

func (e WorkingDayEntry) toDomain() (appointments.WorkingDay, error) {
	location, err := parseLocation(e.Location)
	if err != nil {
		return appointments.WorkingDay{}, err
	}
	if location == nil {
		return appointments.WorkingDay{}, fmt.Errorf("location is required")
	}
	weekday, ok := weekdays[strings.ToLower(strings.TrimSpace(e.Weekday))]
	if !ok {
		return appointments.WorkingDay{}, fmt.Errorf("unknown weekday %q", e.Weekday)
	}
	regime := appointments.Regime(strings.TrimSpace(e.Regime))
	if regime != appointments.RegimeStandard && regime != appointments.RegimeWeek4 {
		return appointments.WorkingDay{}, fmt.Errorf("unknown regime %q", e.Regime)
	}
	hours, err := parseRange(e.Hours)
	if err != nil {
		return appointments.WorkingDay{}, fmt.Errorf("hours: %w", err)
	}

	wd := appointments.WorkingDay{
		ID:         uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("working_day:%s:%d:%s", *location, weekday, regime))),
		LocationID: *location,
		Weekday:    weekday,
		Regime:     regime,
		Hours:      hours,
	}
	if strings.TrimSpace(e.Lunch) != "" {
		lunch, err := parseRange(e.Lunch)
		if err != nil {
			return appointments.WorkingDay{}, fmt.Errorf("lunch: %w", err)
		}
		if lunch.Start < hours.Start || lunch.End > hours.End {
			return appointments.WorkingDay{}, fmt.Errorf("lunch falls outside opening hours")
		}
		wd.Lunch = &lunch
	}
	return wd, nil
}

func (e BlockedDateEntry) toDomain() (appointments.BlockedDate, error) {
	date, err := civil.ParseDate(strings.TrimSpace(e.Date))
	if err != nil {
		return appointments.BlockedDate{}, fmt.Errorf("invalid date %q", e.Date)
	}
	location, err := parseLocation(e.Location)
	if err != nil {
		return appointments.BlockedDate{}, err
	}
	if strings.TrimSpace(e.Reason) == "" {
		return appointments.BlockedDate{}, fmt.Errorf("reason is required")
	}

	key := "blocked:" + date.String() + ":"
	if location != nil {
		key += string(*location)
	}
	bd := appointments.BlockedDate{
		ID:         uuid.NewSHA1(seedNamespace, []byte(key)),
		Date:       date,
		LocationID: location,
		Reason:     strings.TrimSpace(e.Reason),
		AllDay:     len(e.Slots) == 0,
	}
	for _, raw := range e.Slots {
		slot, err := parseRange(raw)
		if err != nil {
			return appointments.BlockedDate{}, fmt.Errorf("slots: %w", err)
		}
		bd.Slots = append(bd.Slots, slot)
	}
	return bd, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseLocation(raw string) (*catalog.LocationID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	id := catalog.LocationID(strings.ToLower(trimmed))
	if !catalog.IsKnownLocation(id) {
		return nil, fmt.Errorf("unknown location %q", raw)
	}
	return &id, nil
}

func parseRange(raw string) (appointments.TimeRange, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return appointments.TimeRange{}, fmt.Errorf("expected HH:MM-HH:MM, got %q", raw)
	}
	from, err := appointments.ParseTimeOfDay(strings.TrimSpace(start))
	if err != nil {
		return appointments.TimeRange{}, err
	}
	to, err := appointments.ParseTimeOfDay(strings.TrimSpace(end))
	if err != nil {
		return appointments.TimeRange{}, err
	}
	if from >= to {
		return appointments.TimeRange{}, fmt.Errorf("range %q ends before it starts", raw)
	}
	return appointments.TimeRange{Start: from, End: to}, nil
}

func containsBlock(blocks []appointments.BlockedDate, id uuid.UUID) bool {
	for _, b := range blocks {
		if b.ID == id {
			return true
		}
	}
	return false
}
