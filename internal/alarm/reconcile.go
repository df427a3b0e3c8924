package alarm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"quickfit/internal/domain"
)

// reconcile advances every schedule due at now to its next occurrence and
// raises its notification flag, as one atomic batch. The due set is
// snapshotted up front; schedules becoming due mid-call are caught by the
// next wake-up, which rearm always schedules for the true minimum.
//
// Calling reconcile twice with the same now is a no-op the second time:
// the first call moved every due schedule into the future.
func (e *Engine) reconcile(ctx context.Context, now time.Time) {
	due, err := e.store.QueryDue(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to query due schedules")
		return
	}
	if len(due) == 0 {
		log.Debug().Time("now", now).Msg("no due schedules")
		return
	}

	updates := make([]domain.OccurrenceUpdate, 0, len(due))
	for _, s := range due {
		updates = append(updates, domain.OccurrenceUpdate{
			ScheduleID:     s.ID,
			NextOccurrence: NextOccurrence(now, s.DayOfWeek, s.Hour, s.Minute),
		})
	}

	if err := e.store.BatchUpdateOccurrences(ctx, updates); err != nil {
		// Nothing committed; the due set is untouched and the next
		// wake-up retries the whole pass.
		log.Error().Err(err).Int("due", len(due)).Msg("batch advance failed, leaving due schedules for next wake-up")
		return
	}

	log.Info().Int("due", len(due)).Time("now", now).Msg("advanced due schedules")
}
