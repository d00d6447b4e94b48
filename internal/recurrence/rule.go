package recurrence

import (
	"fmt"
	"strings"
)

// Rule describes how a task repeats.
type Rule struct {
	Frequency Frequency
	// Interval is the stride between periods. Values below 1 behave as 1.
	Interval int
	// Weekdays restricts WEEKLY rules. Empty means the start's weekday.
	Weekdays Weekdays
	// Start anchors the cadence. Zero means absent.
	Start Date
	// Until is the inclusive last day. Zero means unbounded.
	Until    Date
	Excluded DateSet
}

// MaxInterval is the largest accepted repetition interval.
const MaxInterval = 1000

// Series is a rule together with the task dates it falls back on.
type Series struct {
	Rule
	Deadline Date
	Created  Date
}

// Normalize returns r with defaults applied: an empty frequency becomes
// NONE and intervals below 1 become 1.
func Normalize(r Rule) Rule {
	if r.Frequency == "" {
		r.Frequency = None
	}
	if r.Interval < 1 {
		r.Interval = 1
	}
	return r
}

// StartDate resolves the effective start: the explicit start, then the
// deadline, then the creation date.
func (s Series) StartDate() (Date, bool) {
	for _, d := range []Date{s.Start, s.Deadline, s.Created} {
		if !d.IsZero() {
			return d, true
		}
	}
	return Date{}, false
}

// CutOff returns r ending on the day before from, so that from and every
// later occurrence are dropped while earlier ones are kept.
func CutOff(r Rule, from Date) Rule {
	r.Until = from.AddDays(-1)
	return r
}

// String returns a short human readable description such as
// "every 2 weeks on MON,WED until 2025-03-01".
func (r Rule) String() string {
	r = Normalize(r)
	var unit string
	switch r.Frequency {
	case None:
		return "once"
	case Custom:
		return "custom"
	case Daily:
		unit = "day"
	case Weekly:
		unit = "week"
	case Monthly:
		unit = "month"
	case Yearly:
		unit = "year"
	default:
		return strings.ToLower(string(r.Frequency))
	}

	var b strings.Builder
	if r.Interval == 1 {
		fmt.Fprintf(&b, "every %s", unit)
	} else {
		fmt.Fprintf(&b, "every %d %ss", r.Interval, unit)
	}
	if r.Frequency == Weekly && !r.Weekdays.IsEmpty() {
		fmt.Fprintf(&b, " on %s", r.Weekdays)
	}
	if !r.Until.IsZero() {
		fmt.Fprintf(&b, " until %s", r.Until)
	}
	return b.String()
}
