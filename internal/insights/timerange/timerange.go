// Package timerange computes the civil-calendar windows used by insights.
// Business days follow a fixed UTC+05:30 offset with no daylight saving.
package timerange

import (
	"time"

	"github.com/smallbiznis/clinicops/internal/clock"
	"github.com/smallbiznis/clinicops/internal/insights/domain"
)

// CivilOffset is the business calendar's fixed distance from UTC.
const CivilOffset = 330 * time.Minute

type Resolver struct {
	clock clock.Clock
}

func NewResolver(clk clock.Clock) *Resolver {
	return &Resolver{clock: clk}
}

// DayRange returns the civil day offsetDays away from today (-1 is
// yesterday).
func (r *Resolver) DayRange(offsetDays int) domain.TimeRange {
	return dayRange(r.clock.Now(), offsetDays)
}

// MonthRange returns the civil month with a zero-based month index. Indexes
// outside 0..11 roll into adjacent years.
func (r *Resolver) MonthRange(year int, monthIndex int) domain.TimeRange {
	return monthRange(year, monthIndex)
}

func (r *Resolver) CurrentMonthRange() domain.TimeRange {
	civil := toCivil(r.clock.Now())
	return monthRange(civil.Year(), int(civil.Month())-1)
}

func (r *Resolver) LastMonthRange() domain.TimeRange {
	return lastMonthRange(r.clock.Now())
}

// Windows reads the clock once so all four ranges agree on "now".
func (r *Resolver) Windows() domain.Windows {
	now := r.clock.Now()
	civil := toCivil(now)
	return domain.Windows{
		Today:     dayRange(now, 0),
		Yesterday: dayRange(now, -1),
		Month:     monthRange(civil.Year(), int(civil.Month())-1),
		LastMonth: lastMonthRange(now),
	}
}

func toCivil(t time.Time) time.Time {
	return t.UTC().Add(CivilOffset)
}

// fromCivil maps a civil wall-clock instant, expressed in UTC fields, back
// to the real UTC instant.
func fromCivil(t time.Time) time.Time {
	return t.Add(-CivilOffset)
}

func dayRange(now time.Time, offsetDays int) domain.TimeRange {
	civil := toCivil(now)
	start := time.Date(civil.Year(), civil.Month(), civil.Day()+offsetDays, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return domain.TimeRange{Start: fromCivil(start), End: fromCivil(end)}
}

func monthRange(year int, monthIndex int) domain.TimeRange {
	start := time.Date(year, time.Month(monthIndex+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return domain.TimeRange{Start: fromCivil(start), End: fromCivil(end)}
}

func lastMonthRange(now time.Time) domain.TimeRange {
	civil := toCivil(now)
	year, monthIndex := civil.Year(), int(civil.Month())-2
	if monthIndex < 0 {
		monthIndex = 11
		year--
	}
	return monthRange(year, monthIndex)
}
