// Package alarm is the recurring schedule alarm engine. It reconciles due
// schedules at wake-ups, multiplexes every schedule onto one armed timer,
// and applies the snooze/acknowledge/dismiss transitions.
//
// All state changes run on a single worker goroutine draining an event
// queue, so reconciliation, user actions and edits never interleave.
package alarm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"quickfit/internal/notify"
	"quickfit/internal/store"
)

// AlarmTag identifies the engine's one outstanding platform timer.
const AlarmTag = "quickfit.alarm"

// DefaultSnoozeDelay applies when no snooze duration is configured.
const DefaultSnoozeDelay = 30 * time.Minute

// CompletionRecorder receives workout completion facts for the external
// sync subsystem. Fire-and-forget; failures there never surface here.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, workoutID string)
}

type eventKind int

const (
	evBoot eventKind = iota
	evTimerFired
	evScheduleCreated
	evScheduleEdited
	evScheduleDeleted
	evSnooze
	evAcknowledge
	evCancelOne
	evCancelAll
)

type event struct {
	kind       eventKind
	scheduleID string
}

type Engine struct {
	store       store.Store
	timer       Timer
	sink        notify.Sink
	completions CompletionRecorder
	snoozeDelay time.Duration

	now    func() time.Time
	events chan event
}

func NewEngine(st store.Store, timer Timer, sink notify.Sink, completions CompletionRecorder, snoozeDelay time.Duration) *Engine {
	if snoozeDelay <= 0 {
		snoozeDelay = DefaultSnoozeDelay
	}
	return &Engine{
		store:       st,
		timer:       timer,
		sink:        sink,
		completions: completions,
		snoozeDelay: snoozeDelay,
		now:         time.Now,
		events:      make(chan event, 128),
	}
}

// Run drains the event queue until ctx is canceled. Exactly one Run loop
// may be active; it is the engine's single writer.
func (e *Engine) Run(ctx context.Context) {
	log.Info().Msg("alarm engine started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("alarm engine stopped")
			return
		case ev := <-e.events:
			e.handle(ctx, ev)
		}
	}
}

// Entry points. Each enqueues work for the serialized worker; none touch
// engine state directly.

func (e *Engine) OnBoot() { e.enqueue(event{kind: evBoot}) }

func (e *Engine) OnTimerFired() { e.enqueue(event{kind: evTimerFired}) }

func (e *Engine) OnScheduleCreated(id string) { e.enqueue(event{kind: evScheduleCreated, scheduleID: id}) }

func (e *Engine) OnScheduleEdited(id string) { e.enqueue(event{kind: evScheduleEdited, scheduleID: id}) }

func (e *Engine) OnScheduleDeleted() { e.enqueue(event{kind: evScheduleDeleted}) }

func (e *Engine) OnSnoozeRequested(id string) { e.enqueue(event{kind: evSnooze, scheduleID: id}) }

func (e *Engine) OnAcknowledgeRequested(id string) { e.enqueue(event{kind: evAcknowledge, scheduleID: id}) }

func (e *Engine) OnCancelOneRequested(id string) { e.enqueue(event{kind: evCancelOne, scheduleID: id}) }

func (e *Engine) OnCancelAllRequested() { e.enqueue(event{kind: evCancelAll}) }

func (e *Engine) enqueue(ev event) {
	e.events <- ev
}

// handle runs one event to completion. Wake-up events run the full
// reconcile → refresh → rearm chain; action and edit events run the subset
// their transition calls for, in that same relative order.
func (e *Engine) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evBoot, evTimerFired:
		e.reconcile(ctx, e.now())
		e.refresh(ctx)
		e.rearm(ctx)
	case evScheduleCreated, evScheduleEdited:
		e.applyRule(ctx, ev.scheduleID)
		e.rearm(ctx)
	case evScheduleDeleted:
		e.refresh(ctx)
		e.rearm(ctx)
	case evSnooze:
		e.snooze(ctx, ev.scheduleID, e.snoozeDelay)
	case evAcknowledge:
		e.acknowledge(ctx, ev.scheduleID)
	case evCancelOne:
		e.cancelOne(ctx, ev.scheduleID)
	case evCancelAll:
		e.cancelAll(ctx)
	}
}
