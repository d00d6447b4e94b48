package recurrence

import (
	"fmt"
	"time"
)

// MaxScanDays bounds every day-by-day search. Rules with a stride longer
// than half of it get two full periods instead.
const MaxScanDays = 730

// maxPeriods bounds period-by-period searches for MONTHLY and YEARLY rules.
const maxPeriods = 1200

// OccursOn reports whether the series has an occurrence on day.
func OccursOn(s Series, day Date) (bool, error) {
	if day.IsZero() {
		return false, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	return occursOn(s, day), nil
}

func occursOn(s Series, day Date) bool {
	s.Rule = Normalize(s.Rule)
	if s.Frequency == None {
		return !s.Deadline.IsZero() && s.Deadline == day
	}

	start, ok := s.StartDate()
	if !ok || day.Before(start) {
		return false
	}
	if !s.Until.IsZero() && day.After(s.Until) {
		return false
	}
	if s.Excluded.Contains(day) {
		return false
	}

	switch s.Frequency {
	case Daily:
		return DaysBetween(start, day)%s.Interval == 0
	case Weekly:
		if s.Weekdays.IsEmpty() {
			if day.Weekday() != start.Weekday() {
				return false
			}
		} else if !s.Weekdays.Has(day.Weekday()) {
			return false
		}
		return (DaysBetween(start, day)/7)%s.Interval == 0
	case Monthly:
		return day.Day == start.Day && MonthsBetween(start, day)%s.Interval == 0
	case Yearly:
		return day.Month == start.Month && day.Day == start.Day &&
			(day.Year-start.Year)%s.Interval == 0
	default:
		return false
	}
}

// NextOccurrence returns the first pending occurrence of the series on or
// after today, or nil when none exists.
//
// The search base is the day after the latest completed date, moved forward
// to the start and then to today when it lies before them. Excluded dates
// are skipped and the result never exceeds the until date. MONTHLY and
// YEARLY rules land on the start's day of month, clamped to the length of
// shorter months (a Feb 29 anchor yields Feb 28 in common years).
func NextOccurrence(s Series, completed []Date, today Date) *Date {
	s.Rule = Normalize(s.Rule)
	if s.Frequency == None {
		if s.Deadline.IsZero() {
			return nil
		}
		d := s.Deadline
		return &d
	}

	start, ok := s.StartDate()
	if !ok {
		if today.IsZero() {
			return nil
		}
		start = today
	}
	s.Start = start

	base := start
	if last, ok := NewDateSet(completed...).Latest(); ok && last.AddDays(1).After(base) {
		base = last.AddDays(1)
	}
	if !today.IsZero() && base.Before(today) {
		base = today
	}
	if !s.Until.IsZero() && base.After(s.Until) {
		return nil
	}

	var (
		next  Date
		found bool
	)
	switch s.Frequency {
	case Daily:
		next, found = nextDaily(s, base)
	case Weekly:
		next, found = nextWeekly(s, base)
	case Monthly:
		next, found = nextPeriodic(s, base, MonthsBetween(start, base), monthAnchor)
	case Yearly:
		next, found = nextPeriodic(s, base, base.Year-start.Year, yearAnchor)
	}
	if !found {
		return nil
	}
	if !s.Until.IsZero() && next.After(s.Until) {
		return nil
	}
	return &next
}

// Occurrences lists every occurrence within [from, to]. Ranges longer than
// MaxScanDays are truncated.
func Occurrences(s Series, from, to Date) ([]Date, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: range bounds are required", ErrInvalidArgument)
	}
	if to.After(from.AddDays(MaxScanDays)) {
		to = from.AddDays(MaxScanDays)
	}

	var out []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		if occursOn(s, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func horizon(period int) int {
	if 2*period > MaxScanDays {
		return 2 * period
	}
	return MaxScanDays
}

// nextWeekly jumps between cadence-aligned week blocks counted from the
// start and scans at most MaxScanDays days inside them.
func nextWeekly(s Series, base Date) (Date, bool) {
	w := DaysBetween(s.Start, base) / 7
	if rem := w % s.Interval; rem != 0 {
		w += s.Interval - rem
	}
	for scanned := 0; scanned <= MaxScanDays; w += s.Interval {
		block := s.Start.AddDays(w * 7)
		for i := 0; i < 7; i++ {
			d := block.AddDays(i)
			if d.Before(base) {
				continue
			}
			if !s.Until.IsZero() && d.After(s.Until) {
				return Date{}, false
			}
			if occursOn(s, d) {
				return d, true
			}
			scanned++
		}
	}
	return Date{}, false
}

// nextDaily aligns base to the cadence, then steps by the interval past
// excluded dates.
func nextDaily(s Series, base Date) (Date, bool) {
	if rem := DaysBetween(s.Start, base) % s.Interval; rem != 0 {
		base = base.AddDays(s.Interval - rem)
	}
	limit := horizon(s.Interval) / s.Interval
	for i := 0; i <= limit; i++ {
		if !s.Until.IsZero() && base.After(s.Until) {
			return Date{}, false
		}
		if !s.Excluded.Contains(base) {
			return base, true
		}
		base = base.AddDays(s.Interval)
	}
	return Date{}, false
}

// anchorFunc returns the candidate date n periods after start.
type anchorFunc func(start Date, n int) Date

func monthAnchor(start Date, n int) Date {
	month := int(start.Month) - 1 + n
	year := start.Year + month/12
	m := time.Month(month%12 + 1)
	return Date{Year: year, Month: m, Day: min(start.Day, DaysIn(year, m))}
}

func yearAnchor(start Date, n int) Date {
	year := start.Year + n
	return Date{Year: year, Month: start.Month, Day: min(start.Day, DaysIn(year, start.Month))}
}

// nextPeriodic walks cadence-aligned periods starting at period n and returns
// the first candidate on or after base that is not excluded.
func nextPeriodic(s Series, base Date, n int, anchor anchorFunc) (Date, bool) {
	if n < 0 {
		n = 0
	}
	if rem := n % s.Interval; rem != 0 {
		n += s.Interval - rem
	}
	for i := 0; i < maxPeriods; i++ {
		cand := anchor(s.Start, n)
		if !s.Until.IsZero() && cand.After(s.Until) {
			return Date{}, false
		}
		if !cand.Before(base) && !s.Excluded.Contains(cand) {
			return cand, true
		}
		n += s.Interval
	}
	return Date{}, false
}
