package alarm

import (
	"fmt"
	"time"

	"quickfit/internal/domain"
)

// NextOccurrence returns the next instant strictly after now whose local
// weekday, hour and minute match the given rule, evaluated in now's
// location.
//
// The candidate starts on now's calendar date at hour:minute:00. A candidate
// that is not strictly after now moves forward one calendar day before the
// weekday search, so a rule evaluated at exactly its own time lands a full
// week out, not on now itself. Day stepping is calendar-based (AddDate), so
// DST transitions shift the epoch distance but never the wall-clock time of
// the result.
func NextOccurrence(now time.Time, day domain.DayOfWeek, hour, minute int) time.Time {
	if hour < 0 || hour > 23 {
		panic(fmt.Sprintf("hour out of range: %d", hour))
	}
	if minute < 0 || minute > 59 {
		panic(fmt.Sprintf("minute out of range: %d", minute))
	}
	want := day.Weekday() // panics on an unknown weekday

	cand := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !cand.After(now) {
		cand = cand.AddDate(0, 0, 1)
	}
	// Glad that there are only 7 week days.
	for cand.Weekday() != want {
		cand = cand.AddDate(0, 0, 1)
	}
	return cand
}
