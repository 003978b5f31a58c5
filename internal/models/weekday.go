package models

import (
	"fmt"
	"strings"
)

// Weekday enumerates the six operating days of the planner grid.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

// Weekdays lists the operating days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var weekdayAliases = map[string]Weekday{
	"monday":    Monday,
	"lunes":     Monday,
	"tuesday":   Tuesday,
	"martes":    Tuesday,
	"wednesday": Wednesday,
	"miercoles": Wednesday,
	"miércoles": Wednesday,
	"thursday":  Thursday,
	"jueves":    Thursday,
	"friday":    Friday,
	"viernes":   Friday,
	"saturday":  Saturday,
	"sabado":    Saturday,
	"sábado":    Saturday,
}

// ParseWeekday accepts the canonical upper-case symbol as well as English or Spanish day names.
func ParseWeekday(raw string) (Weekday, error) {
	if day, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return day, nil
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

// Index returns the zero-based position of the day from Monday, or -1 when unknown.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether the day is one of the operating days.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}
