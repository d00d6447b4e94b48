package recurrence

import "errors"

var (
	// ErrInvalidArgument is returned when a required input is missing or
	// cannot be parsed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotRecurring is returned by operations that only make sense for a
	// repeating rule.
	ErrNotRecurring = errors.New("rule does not recur")
)
