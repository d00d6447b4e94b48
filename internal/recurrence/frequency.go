package recurrence

import (
	"fmt"
	"strings"
)

// Frequency is the repetition cadence of a rule.
type Frequency string

const (
	None    Frequency = "NONE"
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
	// Custom is accepted on input but never produces occurrences.
	Custom Frequency = "CUSTOM"
)

// Frequencies lists every known frequency in display order.
var Frequencies = []Frequency{None, Daily, Weekly, Monthly, Yearly, Custom}

// ParseFrequency parses a frequency name case-insensitively. Empty input is
// NONE.
func ParseFrequency(s string) (Frequency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for _, f := range Frequencies {
		if string(f) == s {
			return f, nil
		}
	}
	return None, fmt.Errorf("%w: unknown frequency %q", ErrInvalidArgument, s)
}

// IsRecurring reports whether f produces more than a single deadline
// occurrence.
func (f Frequency) IsRecurring() bool {
	return f != None && f != ""
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Frequency) UnmarshalText(b []byte) error {
	parsed, err := ParseFrequency(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
