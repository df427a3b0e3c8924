package alarm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"quickfit/internal/store"
)

// applyRule handles a created or edited schedule: next occurrence is
// recomputed from now and any stale notification flag from the previous
// rule is dropped. The caller follows with rearm.
func (e *Engine) applyRule(ctx context.Context, id string) {
	s, err := e.store.GetSchedule(ctx, id)
	if err != nil {
		logMissing("apply rule", id, err)
		return
	}
	next := NextOccurrence(e.now(), s.DayOfWeek, s.Hour, s.Minute)
	if err := e.store.SetNextOccurrence(ctx, id, next, false); err != nil {
		log.Error().Err(err).Str("schedule_id", id).Msg("failed to store recomputed occurrence")
		return
	}
	log.Info().Str("schedule_id", id).Time("next", next).Msg("schedule rule applied")
}

// snooze pushes the stored due instant forward by delay. The delay is added
// to the schedule's own due time, not to now, so a long-overdue reminder
// still lands delay past its original instant.
func (e *Engine) snooze(ctx context.Context, id string, delay time.Duration) {
	s, err := e.store.GetSchedule(ctx, id)
	if err != nil {
		logMissing("snooze", id, err)
		return
	}
	next := s.NextOccurrence.Add(delay)
	if err := e.store.SetNextOccurrence(ctx, id, next, false); err != nil {
		log.Error().Err(err).Str("schedule_id", id).Msg("failed to store snoozed occurrence")
		return
	}
	log.Info().Str("schedule_id", id).Dur("delay", delay).Time("next", next).Msg("schedule snoozed")
	e.refresh(ctx)
	e.rearm(ctx)
}

// acknowledge marks the reminder done: the pending flag clears, a
// completion fact goes to the sync subsystem, and the rule continues on
// its normal weekly cadence. The global minimum cannot change, so no rearm.
func (e *Engine) acknowledge(ctx context.Context, id string) {
	s, err := e.store.GetSchedule(ctx, id)
	if err != nil {
		logMissing("acknowledge", id, err)
		return
	}
	if err := e.store.SetNotifyPending(ctx, id, false); err != nil {
		log.Error().Err(err).Str("schedule_id", id).Msg("failed to clear notification flag")
		return
	}
	if e.completions != nil {
		e.completions.RecordCompletion(ctx, s.WorkoutID)
	}
	log.Info().Str("schedule_id", id).Str("workout_id", s.WorkoutID).Msg("schedule acknowledged")
	e.refresh(ctx)
}

// cancelOne drops the pending flag for one schedule without touching its
// next occurrence. Used when the user dismisses the notification without
// acknowledging or snoozing.
func (e *Engine) cancelOne(ctx context.Context, id string) {
	if err := e.store.SetNotifyPending(ctx, id, false); err != nil {
		logMissing("cancel", id, err)
		return
	}
	log.Info().Str("schedule_id", id).Msg("notification canceled")
	e.refresh(ctx)
}

// cancelAll drops every pending flag, occurrence times untouched.
func (e *Engine) cancelAll(ctx context.Context) {
	if err := e.store.ClearAllNotifyPending(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear notification flags")
		return
	}
	log.Info().Msg("all notifications canceled")
	e.refresh(ctx)
}

// A schedule vanishing between the user action and its handling is a race
// with deletion, not an error.
func logMissing(action, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		log.Warn().Str("schedule_id", id).Msgf("%s: schedule no longer exists", action)
		return
	}
	log.Error().Err(err).Str("schedule_id", id).Msgf("%s: failed to load schedule", action)
}
