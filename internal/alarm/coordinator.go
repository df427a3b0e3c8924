package alarm

import (
	"context"

	"github.com/rs/zerolog/log"
)

// rearm points the single platform timer at the earliest next occurrence
// across all schedules, or cancels it when no schedule exists. The stable
// tag makes re-arming replace rather than duplicate.
//
// An arm failure is logged and accepted: reconcile treats "due" as
// next occurrence <= now however late the wake-up arrives, so a degraded
// timer costs promptness, not correctness.
func (e *Engine) rearm(ctx context.Context) {
	next, ok, err := e.store.MinNextOccurrence(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read minimum next occurrence")
		return
	}
	if !ok {
		e.timer.Cancel(AlarmTag)
		log.Debug().Msg("no schedules, timer canceled")
		return
	}
	if err := e.timer.Arm(next, AlarmTag); err != nil {
		log.Warn().Err(err).Time("at", next).Msg("timer arm failed, relying on delayed wake-up")
		return
	}
	log.Debug().Time("at", next).Msg("timer rearmed")
}
