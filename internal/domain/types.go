package domain

import (
	"fmt"
	"time"
)

// DayOfWeek is a symbolic weekday, persisted by name.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var weekdays = map[DayOfWeek]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// Weekday maps to the time package constant. Panics on an unknown value;
// weekdays only enter the system through ParseDayOfWeek or the store, so an
// unknown value here is a programming error.
func (d DayOfWeek) Weekday() time.Weekday {
	wd, ok := weekdays[d]
	if !ok {
		panic(fmt.Sprintf("not a weekday: %q", d))
	}
	return wd
}

func (d DayOfWeek) Valid() bool {
	_, ok := weekdays[d]
	return ok
}

func ParseDayOfWeek(s string) (DayOfWeek, error) {
	d := DayOfWeek(s)
	if !d.Valid() {
		return "", fmt.Errorf("not a weekday: %q", s)
	}
	return d, nil
}

// Schedule is one weekly recurrence rule bound to a workout.
type Schedule struct {
	ID             string
	WorkoutID      string
	DayOfWeek      DayOfWeek
	Hour           int
	Minute         int
	NextOccurrence time.Time
	NotifyPending  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Workout owns zero or more schedules.
type Workout struct {
	ID              string
	ActivityType    string
	Label           string
	DurationMinutes int
	Calories        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PendingSchedule is a schedule whose notification flag is raised, joined
// with its workout's display data.
type PendingSchedule struct {
	Schedule        Schedule
	ActivityType    string
	Label           string
	DurationMinutes int
	Calories        int
}

// OccurrenceUpdate advances one schedule's next occurrence and raises its
// notification flag. Applied in batches, all-or-nothing.
type OccurrenceUpdate struct {
	ScheduleID     string
	NextOccurrence time.Time
}

// Session statuses.
const (
	SessionNew    = "NEW"
	SessionSynced = "SYNCED"
)

// Session is a recorded workout completion, pending upload to the external
// fitness service.
type Session struct {
	ID           int64
	ActivityType string
	StartTime    time.Time
	EndTime      time.Time
	Name         string
	Calories     int
	Status       string
}
