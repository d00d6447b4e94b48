package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleFreq = map[Frequency]rrule.Frequency{
	Daily:   rrule.DAILY,
	Weekly:  rrule.WEEKLY,
	Monthly: rrule.MONTHLY,
	Yearly:  rrule.YEARLY,
}

var rruleWeekday = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// RRuleOption converts the series into an RFC 5545 rule option anchored at
// the resolved start. Excluded dates are not part of the option.
func RRuleOption(s Series) (rrule.ROption, error) {
	s.Rule = Normalize(s.Rule)
	freq, ok := rruleFreq[s.Frequency]
	if !ok {
		return rrule.ROption{}, fmt.Errorf("%w: %s", ErrNotRecurring, s.Frequency)
	}
	start, ok := s.StartDate()
	if !ok {
		return rrule.ROption{}, fmt.Errorf("%w: series has no start date", ErrInvalidArgument)
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: s.Interval,
		Dtstart:  start.Time(),
		Wkst:     rrule.MO,
	}
	if !s.Until.IsZero() {
		opt.Until = s.Until.Time()
	}
	switch s.Frequency {
	case Weekly:
		// Weeks are counted from the start, so they begin on its weekday.
		opt.Wkst = rruleWeekday[start.Weekday()]
		days := s.Weekdays.Days()
		if len(days) == 0 {
			days = []time.Weekday{start.Weekday()}
		}
		for _, d := range days {
			opt.Byweekday = append(opt.Byweekday, rruleWeekday[d])
		}
	case Monthly:
		opt.Bymonthday = []int{start.Day}
	case Yearly:
		opt.Bymonth = []int{int(start.Month)}
		opt.Bymonthday = []int{start.Day}
	}
	return opt, nil
}

// ToRRule returns the RRULE value (without the DTSTART line) describing the
// series, e.g. "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE".
func ToRRule(s Series) (string, error) {
	opt, err := RRuleOption(s)
	if err != nil {
		return "", err
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("building rrule: %w", err)
	}
	return opt.RRuleString(), nil
}
