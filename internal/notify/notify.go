// Package notify carries reminder payloads to the user-facing notification
// surface. The engine posts either one single-item notification with quick
// actions or one aggregated summary; there is never more than one
// outstanding notification.
package notify

import (
	"github.com/rs/zerolog/log"
)

// Quick actions offered on notifications.
const (
	ActionAcknowledge = "acknowledge"
	ActionSnooze      = "snooze"
	ActionOpenList    = "open_list"
)

// SingleNotification reminds of exactly one due schedule and offers the
// acknowledge and snooze quick actions.
type SingleNotification struct {
	ScheduleID string
	WorkoutID  string
	Title      string
	Content    string
	Actions    []string
}

// AggregateNotification summarizes several due schedules, one line each.
// Only the generic open-list action applies; per-item quick actions are a
// single-notification affordance.
type AggregateNotification struct {
	Title  string
	Lines  []string
	Action string
}

type Sink interface {
	PostSingle(n SingleNotification)
	PostAggregate(a AggregateNotification)
	Cancel()
}

// LogSink renders notifications to the log. It stands in for a platform
// notification tray when running headless.
type LogSink struct{}

func (LogSink) PostSingle(n SingleNotification) {
	log.Info().
		Str("schedule_id", n.ScheduleID).
		Str("workout_id", n.WorkoutID).
		Str("title", n.Title).
		Str("content", n.Content).
		Strs("actions", n.Actions).
		Msg("reminder")
}

func (LogSink) PostAggregate(a AggregateNotification) {
	log.Info().
		Str("title", a.Title).
		Strs("items", a.Lines).
		Str("action", a.Action).
		Msg("reminders")
}

func (LogSink) Cancel() {
	log.Debug().Msg("notification cleared")
}
