package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/cep-formacion/planner-api/internal/models"
)

const (
	LocaleES = "es"
	LocaleEN = "en"
)

// operatingDays is Monday through Saturday.
const operatingDays = 6

var monthAbbrev = map[string][12]string{
	LocaleES: {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	LocaleEN: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

var dayNames = map[string][operatingDays]string{
	LocaleES: {"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"},
	LocaleEN: {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

// normalizeLocale falls back to Spanish for anything unrecognised.
func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if _, ok := monthAbbrev[locale]; ok {
		return locale
	}
	return LocaleES
}

// MondayOf returns midnight of the Monday starting the ISO week that contains t.
// Sundays belong to the week of the preceding Monday.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	sinceMonday := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -sinceMonday)
}

// ResolveWindow computes the Monday to Saturday window weekOffset weeks away from the
// week containing reference. Every integer offset is valid; zero is the current week.
func ResolveWindow(weekOffset int, reference time.Time, locale string) models.DisplayWindow {
	locale = normalizeLocale(locale)
	start := MondayOf(reference).AddDate(0, 0, 7*weekOffset)
	end := start.AddDate(0, 0, operatingDays-1)

	names := dayNames[locale]
	days := make([]models.DayColumn, 0, operatingDays)
	for i, weekday := range models.Weekdays {
		days = append(days, models.DayColumn{
			Day:  weekday,
			Date: start.AddDate(0, 0, i),
			Name: names[i],
		})
	}

	return models.DisplayWindow{
		WeekOffset: weekOffset,
		Start:      start,
		End:        end,
		Label:      FormatRange(start, end, locale),
		Days:       days,
	}
}

// FormatRange renders "dd MMM - dd MMM yyyy" in the requested locale.
func FormatRange(start, end time.Time, locale string) string {
	months := monthAbbrev[normalizeLocale(locale)]
	return fmt.Sprintf("%02d %s - %02d %s %d",
		start.Day(), months[start.Month()-1],
		end.Day(), months[end.Month()-1], end.Year())
}

// DateOf returns the calendar date of a weekday inside the window.
func DateOf(window models.DisplayWindow, day models.Weekday) (time.Time, bool) {
	idx := day.Index()
	if idx < 0 {
		return time.Time{}, false
	}
	return window.Start.AddDate(0, 0, idx), true
}
