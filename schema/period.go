package schema

import (
	"fmt"
	"strings"
	"time"
)

// PeriodLabel names a reporting period.
type PeriodLabel string

// All period labels supported.
const (
	DayPeriod   PeriodLabel = "day" // default
	WeekPeriod  PeriodLabel = "week"
	MonthPeriod PeriodLabel = "month"
	YearPeriod  PeriodLabel = "year"
	RangePeriod PeriodLabel = "range"
)

// ValidPeriods lists all valid period labels.
var ValidPeriods = map[PeriodLabel]struct{}{
	DayPeriod:   {},
	WeekPeriod:  {},
	MonthPeriod: {},
	YearPeriod:  {},
	RangePeriod: {},
}

// DateLayout is the calendar date representation used by report requests.
const DateLayout = "2006-01-02"

// Period is a period label anchored at a date. Range periods carry "start,end" in Date.
type Period struct {
	Label PeriodLabel `json:"label"`
	Date  string      `json:"date"`
}

// ParsePeriod validates a period label and its date.
func ParsePeriod(label, date string) (Period, error) {
	p := Period{Label: PeriodLabel(strings.ToLower(strings.TrimSpace(label))), Date: strings.TrimSpace(date)}
	if _, ok := ValidPeriods[p.Label]; !ok {
		return Period{}, fmt.Errorf("invalid period '%s'. must be day, week, month, year, range", label)
	}
	if p.Label == RangePeriod {
		start, end, ok := strings.Cut(p.Date, ",")
		if !ok {
			return Period{}, fmt.Errorf("range period requires 'start,end' dates (received %q)", date)
		}
		s, err := time.Parse(DateLayout, start)
		if err != nil {
			return Period{}, fmt.Errorf("invalid range start %q: %w", start, err)
		}
		e, err := time.Parse(DateLayout, end)
		if err != nil {
			return Period{}, fmt.Errorf("invalid range end %q: %w", end, err)
		}
		if s.After(e) {
			return Period{}, fmt.Errorf("range start %s cannot be after end %s", start, end)
		}
		return p, nil
	}
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return Period{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return p, nil
}

// DateStart returns the date a report request for this period should carry.
// Ranges keep both bounds since the start alone does not describe them.
func (p Period) DateStart() (string, error) {
	if p.Label == RangePeriod {
		return p.Date, nil
	}
	d, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return "", fmt.Errorf("invalid period date %q: %w", p.Date, err)
	}
	switch p.Label {
	case WeekPeriod:
		offset := (int(d.Weekday()) + 6) % 7 // Monday starts the week
		d = d.AddDate(0, 0, -offset)
	case MonthPeriod:
		d = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case YearPeriod:
		d = time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return d.Format(DateLayout), nil
}

// String renders the period as "label:date".
func (p Period) String() string {
	return string(p.Label) + ":" + p.Date
}
