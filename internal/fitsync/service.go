// Package fitsync records workout completion facts as sessions and drains
// them to the external fitness service in the background. The alarm engine
// only ever calls RecordCompletion; everything past the session table is
// invisible to it.
package fitsync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"quickfit/internal/domain"
	"quickfit/internal/store"
)

// Uploader pushes recorded sessions to the fitness service.
type Uploader interface {
	Upload(ctx context.Context, sessions []domain.Session) error
}

// LogUploader accepts every session and logs it. Stand-in for a real
// fitness service client.
type LogUploader struct{}

func (LogUploader) Upload(ctx context.Context, sessions []domain.Session) error {
	for _, s := range sessions {
		log.Info().
			Int64("session_id", s.ID).
			Str("activity_type", s.ActivityType).
			Time("start", s.StartTime).
			Time("end", s.EndTime).
			Msg("session uploaded")
	}
	return nil
}

type Service struct {
	store    store.Store
	uploader Uploader
	interval time.Duration
	cron     *cron.Cron
	requests chan struct{}
	now      func() time.Time
}

func New(st store.Store, uploader Uploader, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Service{
		store:    st,
		uploader: uploader,
		interval: interval,
		cron:     cron.New(),
		requests: make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Start schedules the periodic sync and begins serving on-demand sync
// requests until ctx is canceled.
func (s *Service) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.requestSync() })
	if err != nil {
		return err
	}
	s.cron.Start()
	go func() {
		for {
			select {
			case <-ctx.Done():
				s.cron.Stop()
				return
			case <-s.requests:
				s.syncNow(ctx)
			}
		}
	}()
	log.Info().Dur("interval", s.interval).Msg("session sync started")
	return nil
}

// RecordCompletion inserts a session for the workout, backdating the start
// by the workout's duration, then requests a sync. A missing workout is a
// race with deletion and gets dropped with a warning.
func (s *Service) RecordCompletion(ctx context.Context, workoutID string) {
	w, err := s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		log.Warn().Err(err).Str("workout_id", workoutID).Msg("completion for missing workout dropped")
		return
	}
	end := s.now()
	start := end.Add(-time.Duration(w.DurationMinutes) * time.Minute)
	id, err := s.store.InsertSession(ctx, domain.Session{
		ActivityType: w.ActivityType,
		StartTime:    start,
		EndTime:      end,
		Name:         w.Label,
		Calories:     w.Calories,
		Status:       domain.SessionNew,
	})
	if err != nil {
		log.Error().Err(err).Str("workout_id", workoutID).Msg("failed to record session")
		return
	}
	log.Info().Int64("session_id", id).Str("workout_id", workoutID).Msg("session recorded")
	s.requestSync()
}

func (s *Service) requestSync() {
	select {
	case s.requests <- struct{}{}:
	default:
		// a sync is already queued
	}
}

// syncNow uploads all NEW sessions and marks them SYNCED. On upload failure
// the rows stay NEW and the next sync retries them.
func (s *Service) syncNow(ctx context.Context) {
	sessions, err := s.store.ListSessionsByStatus(ctx, domain.SessionNew)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions for sync")
		return
	}
	if len(sessions) == 0 {
		return
	}
	if err := s.uploader.Upload(ctx, sessions); err != nil {
		log.Warn().Err(err).Int("sessions", len(sessions)).Msg("session upload failed, will retry")
		return
	}
	ids := make([]int64, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	if err := s.store.MarkSessionsSynced(ctx, ids); err != nil {
		log.Error().Err(err).Msg("failed to mark sessions synced")
		return
	}
	log.Info().Int("sessions", len(sessions)).Msg("sessions synced")
}
