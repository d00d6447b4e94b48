// Package service holds the task and group use cases shared by the REST
// API, the console UI and the scheduler. It owns every call into the
// recurrence engine and persists the results explicitly.
package service

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/planit/internal/logging"
	"github.com/nhle/planit/internal/recurrence"
)

// ErrValidation is returned when user input is rejected.
var ErrValidation = errors.New("validation failed")

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

func today(c Clock) recurrence.Date {
	return recurrence.DateOf(c.Now())
}

func orDefault(clock Clock, logger *log.Logger) (Clock, *log.Logger) {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return clock, logger
}
