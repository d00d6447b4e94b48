package recurrence

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Weekdays is a set of days of the week.
type Weekdays uint8

var weekdayCodes = map[time.Weekday]string{
	time.Monday:    "MON",
	time.Tuesday:   "TUE",
	time.Wednesday: "WED",
	time.Thursday:  "THU",
	time.Friday:    "FRI",
	time.Saturday:  "SAT",
	time.Sunday:    "SUN",
}

// mondayFirst is the canonical output order.
var mondayFirst = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// NewWeekdays returns a set holding the given days.
func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w = w.With(d)
	}
	return w
}

// ParseWeekdays parses a comma-separated list of three-letter codes
// (MON..SUN). Matching is case-insensitive and blank tokens are ignored.
func ParseWeekdays(csv string) (Weekdays, error) {
	var w Weekdays
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		day, ok := ParseWeekday(tok)
		if !ok {
			return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidArgument, tok)
		}
		w = w.With(day)
	}
	return w, nil
}

// ParseWeekday maps a three-letter code to its weekday.
func ParseWeekday(code string) (time.Weekday, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for day, c := range weekdayCodes {
		if c == code {
			return day, true
		}
	}
	return 0, false
}

// WeekdayCode returns the three-letter code of d.
func WeekdayCode(d time.Weekday) string {
	return weekdayCodes[d]
}

// Has reports whether d is in the set.
func (w Weekdays) Has(d time.Weekday) bool {
	return w&(1<<uint(d)) != 0
}

// With returns the set with d added.
func (w Weekdays) With(d time.Weekday) Weekdays {
	return w | 1<<uint(d)
}

// Without returns the set with d removed.
func (w Weekdays) Without(d time.Weekday) Weekdays {
	return w &^ (1 << uint(d))
}

// IsEmpty reports whether no day is set.
func (w Weekdays) IsEmpty() bool {
	return w&0x7f == 0
}

// Days returns the set in Monday-first order.
func (w Weekdays) Days() []time.Weekday {
	var days []time.Weekday
	for _, d := range mondayFirst {
		if w.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// String returns the comma-separated code form, e.g. "MON,WED".
func (w Weekdays) String() string {
	days := w.Days()
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = weekdayCodes[d]
	}
	return strings.Join(codes, ",")
}

// MarshalText implements encoding.TextMarshaler.
func (w Weekdays) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weekdays) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekdays(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Scan implements sql.Scanner.
func (w *Weekdays) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*w = 0
		return nil
	case string:
		return w.UnmarshalText([]byte(v))
	case []byte:
		return w.UnmarshalText(v)
	default:
		return fmt.Errorf("scanning weekdays: unsupported type %T", src)
	}
}

// Value implements driver.Valuer. The empty set is stored as NULL.
func (w Weekdays) Value() (driver.Value, error) {
	if w.IsEmpty() {
		return nil, nil
	}
	return w.String(), nil
}
