package models

import (
	"time"
)

// ComputeDaysRemaining counts the days from caseDate to referenceDate
// (today when referenceDate is nil). Absent caseDate gives absent.
func ComputeDaysRemaining(caseDate, referenceDate *time.Time) *int {
	return ComputeDaysRemainingAt(caseDate, referenceDate, time.Now().In(dateLocation))
}

// ComputeDaysRemainingAt is ComputeDaysRemaining with an explicit "now".
// Both dates are truncated to midnight; the result is signed.
func ComputeDaysRemainingAt(caseDate, referenceDate *time.Time, now time.Time) *int {
	if caseDate == nil {
		return nil
	}
	ref := now
	if referenceDate != nil {
		ref = *referenceDate
	}
	days := calendarDays(*caseDate, ref)
	return &days
}

// calendarDays compares calendar dates through UTC so DST shifts can't
// shorten or lengthen a day. Unix seconds keep spans beyond time.Duration's
// range exact.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / 86400)
}

// Today is the start of the current day in the configured location.
func Today(now time.Time) time.Time {
	return Midnight(now.In(dateLocation))
}
