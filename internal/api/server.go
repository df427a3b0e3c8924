// Package api is the HTTP surface standing in for the list/detail UI.
// Writes that touch schedule rules go through the store and then notify the
// alarm engine, whose serialized worker owns every occurrence/pending
// mutation that follows.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quickfit/internal/alarm"
	"quickfit/internal/domain"
	"quickfit/internal/store"
)

type Server struct {
	r      *chi.Mux
	store  store.Store
	engine *alarm.Engine
}

func NewServer(st store.Store, engine *alarm.Engine) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	s := &Server{r: r, store: st, engine: engine}

	r.Get("/health", s.health)

	r.Post("/api/workouts", s.createWorkout)
	r.Get("/api/workouts", s.listWorkouts)
	r.Get("/api/workouts/{id}", s.getWorkout)
	r.Put("/api/workouts/{id}", s.updateWorkout)
	r.Delete("/api/workouts/{id}", s.deleteWorkout)
	r.Post("/api/workouts/{id}/schedules", s.createSchedule)

	r.Get("/api/schedules", s.listSchedules)
	r.Get("/api/schedules/{id}", s.getSchedule)
	r.Put("/api/schedules/{id}", s.updateSchedule)
	r.Delete("/api/schedules/{id}", s.deleteSchedule)

	r.Post("/api/schedules/{id}/snooze", s.snoozeSchedule)
	r.Post("/api/schedules/{id}/acknowledge", s.acknowledgeSchedule)
	r.Post("/api/schedules/{id}/dismiss", s.dismissSchedule)
	r.Post("/api/notifications/dismiss", s.dismissAll)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type workoutReq struct {
	ActivityType    string `json:"activity_type"`
	Label           string `json:"label"`
	DurationMinutes int    `json:"duration_minutes"`
	Calories        int    `json:"calories"`
}

type idResp struct {
	ID string `json:"id"`
}

func (s *Server) createWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.ActivityType == "" {
		http.Error(w, "activity_type is required", 400)
		return
	}
	id, err := s.store.CreateWorkout(r.Context(), domain.Workout{
		ActivityType:    req.ActivityType,
		Label:           req.Label,
		DurationMinutes: req.DurationMinutes,
		Calories:        req.Calories,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, idResp{ID: id})
}

func (s *Server) listWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.store.ListWorkouts(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	out := make([]map[string]any, 0, len(workouts))
	for _, wk := range workouts {
		out = append(out, workoutJSON(wk))
	}
	writeJSON(w, 200, out)
}

func (s *Server) getWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wk, err := s.store.GetWorkout(r.Context(), id)
	if err != nil {
		notFoundOr500(w, err)
		return
	}
	schedules, err := s.store.ListSchedulesByWorkout(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	body := workoutJSON(wk)
	scheds := make([]map[string]any, 0, len(schedules))
	for _, sc := range schedules {
		scheds = append(scheds, scheduleJSON(sc))
	}
	body["schedules"] = scheds
	writeJSON(w, 200, body)
}

func (s *Server) updateWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req workoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.ActivityType == "" {
		http.Error(w, "activity_type is required", 400)
		return
	}
	err := s.store.UpdateWorkout(r.Context(), domain.Workout{
		ID:              id,
		ActivityType:    req.ActivityType,
		Label:           req.Label,
		DurationMinutes: req.DurationMinutes,
		Calories:        req.Calories,
	})
	if err != nil {
		notFoundOr500(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteWorkout cascades to the workout's schedules in the store; the
// engine only needs to re-aim the timer and rebuild the notification.
func (s *Server) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteWorkout(r.Context(), id); err != nil {
		notFoundOr500(w, err)
		return
	}
	s.engine.OnScheduleDeleted()
	w.WriteHeader(http.StatusNoContent)
}

type scheduleReq struct {
	DayOfWeek string `json:"day_of_week"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
}

func (r scheduleReq) parse() (domain.DayOfWeek, error) {
	day, err := domain.ParseDayOfWeek(r.DayOfWeek)
	if err != nil {
		return "", err
	}
	if r.Hour < 0 || r.Hour > 23 {
		return "", errors.New("hour must be 0-23")
	}
	if r.Minute < 0 || r.Minute > 59 {
		return "", errors.New("minute must be 0-59")
	}
	return day, nil
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	workoutID := chi.URLParam(r, "id")
	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	day, err := req.parse()
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if _, err := s.store.GetWorkout(r.Context(), workoutID); err != nil {
		notFoundOr500(w, err)
		return
	}
	id, err := s.store.CreateSchedule(r.Context(), domain.Schedule{
		WorkoutID:      workoutID,
		DayOfWeek:      day,
		Hour:           req.Hour,
		Minute:         req.Minute,
		NextOccurrence: alarm.NextOccurrence(time.Now(), day, req.Hour, req.Minute),
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.engine.OnScheduleCreated(id)
	writeJSON(w, http.StatusCreated, idResp{ID: id})
}

func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.store.QueryAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	out := make([]map[string]any, 0, len(schedules))
	for _, sc := range schedules {
		out = append(out, scheduleJSON(sc))
	}
	writeJSON(w, 200, out)
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sc, err := s.store.GetSchedule(r.Context(), id)
	if err != nil {
		notFoundOr500(w, err)
		return
	}
	writeJSON(w, 200, scheduleJSON(sc))
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	day, err := req.parse()
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	next := alarm.NextOccurrence(time.Now(), day, req.Hour, req.Minute)
	if err := s.store.UpdateScheduleRule(r.Context(), id, day, req.Hour, req.Minute, next); err != nil {
		notFoundOr500(w, err)
		return
	}
	s.engine.OnScheduleEdited(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteSchedule(r.Context(), id); err != nil {
		notFoundOr500(w, err)
		return
	}
	s.engine.OnScheduleDeleted()
	w.WriteHeader(http.StatusNoContent)
}

// Notification actions are fire-and-forget: the engine handles them on its
// own worker, and a schedule deleted in the meantime degrades to a logged
// no-op there.

func (s *Server) snoozeSchedule(w http.ResponseWriter, r *http.Request) {
	s.engine.OnSnoozeRequested(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) acknowledgeSchedule(w http.ResponseWriter, r *http.Request) {
	s.engine.OnAcknowledgeRequested(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) dismissSchedule(w http.ResponseWriter, r *http.Request) {
	s.engine.OnCancelOneRequested(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) dismissAll(w http.ResponseWriter, r *http.Request) {
	s.engine.OnCancelAllRequested()
	w.WriteHeader(http.StatusAccepted)
}

func workoutJSON(w domain.Workout) map[string]any {
	return map[string]any{
		"id":               w.ID,
		"activity_type":    w.ActivityType,
		"label":            w.Label,
		"duration_minutes": w.DurationMinutes,
		"calories":         w.Calories,
	}
}

func scheduleJSON(s domain.Schedule) map[string]any {
	return map[string]any{
		"id":              s.ID,
		"workout_id":      s.WorkoutID,
		"day_of_week":     string(s.DayOfWeek),
		"hour":            s.Hour,
		"minute":          s.Minute,
		"next_occurrence": s.NextOccurrence.Format(time.RFC3339),
		"notify_pending":  s.NotifyPending,
	}
}

func notFoundOr500(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", 404)
		return
	}
	http.Error(w, err.Error(), 500)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
