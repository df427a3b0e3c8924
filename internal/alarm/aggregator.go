package alarm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"quickfit/internal/domain"
	"quickfit/internal/notify"
)

// refresh replaces the outstanding notification with whatever the pending
// set currently calls for: nothing, one single-item notification with
// acknowledge and snooze quick actions, or one aggregated summary with only
// the generic open-list action. Single items get quick actions and
// aggregates deliberately don't; that split is product behavior, not a
// shortcut.
func (e *Engine) refresh(ctx context.Context) {
	pending, err := e.store.QueryPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to query pending schedules")
		return
	}

	switch len(pending) {
	case 0:
		e.sink.Cancel()
	case 1:
		e.sink.PostSingle(singlePayload(pending[0]))
	default:
		e.sink.PostAggregate(aggregatePayload(pending))
	}
	log.Debug().Int("pending", len(pending)).Msg("notification refreshed")
}

func singlePayload(p domain.PendingSchedule) notify.SingleNotification {
	return notify.SingleNotification{
		ScheduleID: p.Schedule.ID,
		WorkoutID:  p.Schedule.WorkoutID,
		Title:      fmt.Sprintf("Time for %s!", domain.ActivityDisplayName(p.ActivityType)),
		Content:    describeWorkout(p),
		Actions:    []string{notify.ActionAcknowledge, notify.ActionSnooze},
	}
}

func aggregatePayload(pending []domain.PendingSchedule) notify.AggregateNotification {
	lines := make([]string, 0, len(pending))
	for _, p := range pending {
		line := fmt.Sprintf("%s, %d minutes", domain.ActivityDisplayName(p.ActivityType), p.DurationMinutes)
		if p.Label != "" {
			line += " (" + p.Label + ")"
		}
		lines = append(lines, line)
	}
	return notify.AggregateNotification{
		Title:  fmt.Sprintf("%d workouts waiting", len(pending)),
		Lines:  lines,
		Action: notify.ActionOpenList,
	}
}

func describeWorkout(p domain.PendingSchedule) string {
	desc := fmt.Sprintf("%d minutes", p.DurationMinutes)
	if p.Label != "" {
		desc += "\n" + p.Label
	}
	return desc
}
