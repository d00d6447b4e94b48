package recurrence

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
)

// DateSet is a sorted set of dates without duplicates.
type DateSet []Date

// NewDateSet builds a set from the given dates. Zero dates are dropped.
func NewDateSet(dates ...Date) DateSet {
	var s DateSet
	for _, d := range dates {
		if !d.IsZero() {
			s = append(s, d)
		}
	}
	slices.SortFunc(s, Date.Compare)
	return slices.Compact(s)
}

// ParseDateSet parses a comma-separated list of ISO dates. Blank tokens are
// ignored.
func ParseDateSet(csv string) (DateSet, error) {
	var dates []Date
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		d, err := ParseDate(tok)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return NewDateSet(dates...), nil
}

// Contains reports whether d is in the set.
func (s DateSet) Contains(d Date) bool {
	_, found := slices.BinarySearchFunc(s, d, Date.Compare)
	return found
}

// With returns a copy of the set with d added.
func (s DateSet) With(d Date) DateSet {
	if d.IsZero() {
		return s
	}
	i, found := slices.BinarySearchFunc(s, d, Date.Compare)
	if found {
		return s
	}
	out := make(DateSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, d)
	return append(out, s[i:]...)
}

// Without returns a copy of the set with d removed.
func (s DateSet) Without(d Date) DateSet {
	i, found := slices.BinarySearchFunc(s, d, Date.Compare)
	if !found {
		return s
	}
	out := make(DateSet, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Latest returns the greatest date in the set.
func (s DateSet) Latest() (Date, bool) {
	if len(s) == 0 {
		return Date{}, false
	}
	return s[len(s)-1], true
}

// String returns the comma-separated form.
func (s DateSet) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

// MarshalText implements encoding.TextMarshaler.
func (s DateSet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DateSet) UnmarshalText(b []byte) error {
	parsed, err := ParseDateSet(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Scan implements sql.Scanner.
func (s *DateSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("scanning date set: unsupported type %T", src)
	}
}

// Value implements driver.Valuer. The empty set is stored as NULL.
func (s DateSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return s.String(), nil
}
