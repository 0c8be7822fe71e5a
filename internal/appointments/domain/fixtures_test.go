package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "salon_booking_backend/internal/catalog/domain"
)

var testLocations = []catalog.Location{
	{ID: catalog.LocationReading, Name: "Reading"},
	{ID: catalog.LocationLondon, Name: "London"},
	{ID: catalog.LocationOxford, Name: "Oxford"},
}

func rule(loc catalog.LocationID, weekday time.Weekday, regime Regime, start, end string, lunch *TimeRange) WorkingDay {
	return WorkingDay{
		ID:         uuid.New(),
		LocationID: loc,
		Weekday:    weekday,
		Regime:     regime,
		Hours:      TimeRange{Start: MustTimeOfDay(start), End: MustTimeOfDay(end)},
		Lunch:      lunch,
	}
}

func salonSchedule() Schedule {
	lunch := &TimeRange{Start: MustTimeOfDay("13:00"), End: MustTimeOfDay("14:00")}
	days := []WorkingDay{
		rule(catalog.LocationLondon, time.Tuesday, RegimeStandard, "09:00", "18:00", nil),
		rule(catalog.LocationLondon, time.Wednesday, RegimeStandard, "09:00", "18:00", nil),
		rule(catalog.LocationOxford, time.Friday, RegimeStandard, "09:00", "17:00", nil),
		rule(catalog.LocationOxford, time.Saturday, RegimeStandard, "09:00", "17:00", nil),
	}
	for wd := time.Monday; wd <= time.Saturday; wd++ {
		days = append(days, rule(catalog.LocationReading, wd, RegimeWeek4, "09:00", "18:00", lunch))
	}
	return Schedule{
		Locations:   testLocations,
		WorkingDays: days,
		Week4:       DefaultWeek4Policy,
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// 2026-03-01 is a Sunday.
var testNow = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func newTestResolver(s Schedule) *Resolver {
	return NewResolver(s, time.UTC, fixedNow(testNow))
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func testService(minutes int) catalog.Service {
	return catalog.Service{
		ID:              uuid.New(),
		Name:            "Classic lash set",
		Price:           decimal.RequireFromString("85.00"),
		DurationMinutes: minutes,
		RequiresDeposit: true,
		DepositAmount:   decimal.RequireFromString("20.00"),
		IsActive:        true,
	}
}

func booked(loc catalog.LocationID, d civil.Date, start, end string, status BookingStatus) Booking {
	return Booking{
		ID:         uuid.New(),
		LocationID: loc,
		Date:       d,
		Start:      MustTimeOfDay(start),
		End:        MustTimeOfDay(end),
		Status:     status,
	}
}
