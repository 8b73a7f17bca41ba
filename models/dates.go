package models

import (
	"strings"
	"time"
)

// PassDateLayout is the write format of "Fecha Pase DRCM" (time is always 00:00:00).
const PassDateLayout = "02/01/2006 15:04:05"

// Day-first layouts first; ISO forms are unambiguous and tried after.
var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

var dateLocation = time.Local

// SetDateLocation sets the zone used to interpret sheet dates and "today".
func SetDateLocation(loc *time.Location) {
	if loc != nil {
		dateLocation = loc
	}
}

func DateLocation() *time.Location {
	return dateLocation
}

// ParseDayFirst parses s in the configured location; see ParseDayFirstIn.
func ParseDayFirst(s string) *time.Time {
	return ParseDayFirstIn(s, dateLocation)
}

// ParseDayFirstIn parses s leniently, day before month. Empty or unparsable
// input is absent (nil), never an error.
func ParseDayFirstIn(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(loc)
		return &t
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

// Midnight drops the time of day, keeping the calendar date in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatPassDate renders the calendar date of d as "DD/MM/YYYY 00:00:00".
func FormatPassDate(d time.Time) string {
	return Midnight(d).Format(PassDateLayout)
}

// ParseEditDate parses the date picker value (YYYY-MM-DD), falling back to
// the day-first layouts.
func ParseEditDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, dateLocation); err == nil {
		return t, true
	}
	if t := ParseDayFirst(s); t != nil {
		return Midnight(*t), true
	}
	return time.Time{}, false
}
