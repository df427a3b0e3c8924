package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"quickfit/internal/alarm"
	"quickfit/internal/notify"
	"quickfit/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "test.db")+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := store.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	st := store.NewSQLiteStore(db)

	timer := alarm.NewWallTimer(func() {})
	engine := alarm.NewEngine(st, timer, notify.LogSink{}, nil, 30*time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go engine.Run(ctx)

	srv := httptest.NewServer(NewServer(st, engine))
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeID(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out.ID
}

func TestWorkoutAndScheduleLifecycle(t *testing.T) {
	t.Parallel()
	srv, st := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/workouts", map[string]any{
		"activity_type": "running", "label": "morning run", "duration_minutes": 30,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create workout: status %d", resp.StatusCode)
	}
	workoutID := decodeID(t, resp)

	resp = doJSON(t, "POST", srv.URL+"/api/workouts/"+workoutID+"/schedules", map[string]any{
		"day_of_week": "TUESDAY", "hour": 18, "minute": 30,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create schedule: status %d", resp.StatusCode)
	}
	scheduleID := decodeID(t, resp)

	s, err := st.GetSchedule(context.Background(), scheduleID)
	if err != nil {
		t.Fatal(err)
	}
	if !s.NextOccurrence.After(time.Now().Add(-time.Minute)) {
		t.Errorf("next occurrence %v should be in the future", s.NextOccurrence)
	}
	if s.NextOccurrence.Weekday() != time.Tuesday || s.NextOccurrence.Hour() != 18 || s.NextOccurrence.Minute() != 30 {
		t.Errorf("next occurrence %v does not match rule", s.NextOccurrence)
	}
	if s.NotifyPending {
		t.Error("fresh schedule must not be pending")
	}

	resp = doJSON(t, "PUT", srv.URL+"/api/schedules/"+scheduleID, map[string]any{
		"day_of_week": "SUNDAY", "hour": 9, "minute": 0,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update schedule: status %d", resp.StatusCode)
	}
	s, _ = st.GetSchedule(context.Background(), scheduleID)
	if s.DayOfWeek != "SUNDAY" || s.NextOccurrence.Weekday() != time.Sunday {
		t.Errorf("edited schedule not applied: %+v", s)
	}

	// Workout delete cascades to the schedule.
	resp = doJSON(t, "DELETE", srv.URL+"/api/workouts/"+workoutID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete workout: status %d", resp.StatusCode)
	}
	if _, err := st.GetSchedule(context.Background(), scheduleID); err == nil {
		t.Error("schedule should be gone after workout delete")
	}
}

func TestScheduleValidation(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/workouts", map[string]any{"activity_type": "yoga"})
	workoutID := decodeID(t, resp)

	for name, body := range map[string]map[string]any{
		"bad day":    {"day_of_week": "FUNDAY", "hour": 9, "minute": 0},
		"bad hour":   {"day_of_week": "MONDAY", "hour": 24, "minute": 0},
		"bad minute": {"day_of_week": "MONDAY", "hour": 9, "minute": 60},
	} {
		resp := doJSON(t, "POST", srv.URL+"/api/workouts/"+workoutID+"/schedules", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", name, resp.StatusCode)
		}
	}

	resp = doJSON(t, "POST", srv.URL+"/api/workouts/wkt_missing/schedules", map[string]any{
		"day_of_week": "MONDAY", "hour": 9, "minute": 0,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing workout: status %d, want 404", resp.StatusCode)
	}
}

func TestNotificationActionsAccepted(t *testing.T) {
	t.Parallel()
	srv, st := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/workouts", map[string]any{"activity_type": "biking"})
	workoutID := decodeID(t, resp)
	resp = doJSON(t, "POST", srv.URL+"/api/workouts/"+workoutID+"/schedules", map[string]any{
		"day_of_week": "MONDAY", "hour": 9, "minute": 0,
	})
	scheduleID := decodeID(t, resp)

	// Flag it pending so the snooze has something to clear.
	s, err := st.GetSchedule(context.Background(), scheduleID)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SetNextOccurrence(context.Background(), scheduleID, s.NextOccurrence, true); err != nil {
		t.Fatal(err)
	}

	resp = doJSON(t, "POST", srv.URL+"/api/schedules/"+scheduleID+"/snooze", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("snooze: status %d, want 202", resp.StatusCode)
	}

	deadline := time.After(5 * time.Second)
	for {
		got, err := st.GetSchedule(context.Background(), scheduleID)
		if err != nil {
			t.Fatal(err)
		}
		if !got.NotifyPending {
			if want := s.NextOccurrence.Add(30 * time.Minute); !got.NextOccurrence.Equal(want) {
				t.Errorf("snoozed next = %v, want %v", got.NextOccurrence, want)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("snooze not applied in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	resp = doJSON(t, "POST", srv.URL+"/api/notifications/dismiss", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("dismiss all: status %d, want 202", resp.StatusCode)
	}
}
