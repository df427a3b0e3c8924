package alarm

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Timer is the single platform wake-up primitive. Arming the same tag again
// replaces the previous arming; the engine never keeps more than one tag
// outstanding.
type Timer interface {
	Arm(at time.Time, tag string) error
	Cancel(tag string)
}

// WallTimer drives wake-ups off the process wall clock. One time.AfterFunc
// per tag; a generation counter makes callbacks from a replaced arming
// no-ops.
type WallTimer struct {
	fire func()

	mu     sync.Mutex
	timers map[string]*time.Timer
	gen    map[string]uint64
}

func NewWallTimer(fire func()) *WallTimer {
	return &WallTimer{
		fire:   fire,
		timers: make(map[string]*time.Timer),
		gen:    make(map[string]uint64),
	}
}

func (w *WallTimer) Arm(at time.Time, tag string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[tag]; ok {
		_ = t.Stop()
		delete(w.timers, tag)
	}
	w.gen[tag]++
	localGen := w.gen[tag]

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	w.timers[tag] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		if w.gen[tag] != localGen {
			// replaced or canceled since this was armed
			w.mu.Unlock()
			return
		}
		delete(w.timers, tag)
		w.mu.Unlock()
		w.fire()
	})
	log.Debug().Str("tag", tag).Time("at", at).Msg("timer armed")
	return nil
}

func (w *WallTimer) Cancel(tag string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[tag]; ok {
		_ = t.Stop()
		delete(w.timers, tag)
	}
	w.gen[tag]++
}
