// Package calendar renders tasks as an iCalendar feed of VTODO components.
package calendar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
)

const productID = "-//planit//Task Tracker//EN"

const icalDateLayout = "20060102"

// Export builds a calendar with one VTODO per task. groups maps group IDs
// to the names emitted as CATEGORIES.
func Export(tasks []model.Task, groups map[int64]string, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, t := range tasks {
		cal.Children = append(cal.Children, todo(t, groups, now))
	}
	return cal
}

// Encode writes the calendar produced by Export to w.
func Encode(w io.Writer, tasks []model.Task, groups map[int64]string, now time.Time) error {
	if err := ical.NewEncoder(w).Encode(Export(tasks, groups, now)); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func todo(t model.Task, groups map[int64]string, now time.Time) *ical.Component {
	comp := ical.NewComponent(ical.CompToDo)
	comp.Props.SetText(ical.PropUID, t.ID+"@planit")
	comp.Props.SetText(ical.PropSummary, t.Title)
	comp.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

	status := "NEEDS-ACTION"
	if t.Done {
		status = "COMPLETED"
	}
	comp.Props.SetText(ical.PropStatus, status)

	if p := priorityValue(t.Priority); p > 0 {
		prop := ical.NewProp(ical.PropPriority)
		prop.Value = strconv.Itoa(p)
		comp.Props.Set(prop)
	}

	if due := t.DueDate(); due != nil {
		comp.Props.Set(dateProp(ical.PropDue, *due))
	}

	if t.IsRecurring() {
		series := t.Series()
		if rule, err := recurrence.ToRRule(series); err == nil {
			if start, ok := series.StartDate(); ok {
				comp.Props.Set(dateProp(ical.PropDateTimeStart, start))
			}
			prop := ical.NewProp(ical.PropRecurrenceRule)
			prop.Value = rule
			comp.Props.Set(prop)

			if len(t.ExcludedDates) > 0 {
				values := make([]string, len(t.ExcludedDates))
				for i, d := range t.ExcludedDates {
					values[i] = d.Time().Format(icalDateLayout)
				}
				exdate := ical.NewProp(ical.PropExceptionDates)
				exdate.Params.Set("VALUE", "DATE")
				exdate.Value = strings.Join(values, ",")
				comp.Props.Set(exdate)
			}
		}
	}

	if t.GroupID != nil {
		if name, ok := groups[*t.GroupID]; ok {
			comp.Props.SetText(ical.PropCategories, name)
		}
	}
	return comp
}

func dateProp(name string, d recurrence.Date) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Params.Set("VALUE", "DATE")
	prop.Value = d.Time().Format(icalDateLayout)
	return prop
}

// priorityValue maps to RFC 5545 priorities: 1 high, 5 medium, 9 low.
func priorityValue(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return 1
	case model.PriorityMedium:
		return 5
	case model.PriorityLow:
		return 9
	default:
		return 0
	}
}
