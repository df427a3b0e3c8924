package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"quickfit/internal/domain"
)

var ErrNotFound = errors.New("not found")

// EnsureSchema creates tables if they don't exist.
func EnsureSchema(db *sql.DB) error {
	schema := `
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;
CREATE TABLE IF NOT EXISTS workout (
  id TEXT PRIMARY KEY,
  activity_type TEXT NOT NULL,
  label TEXT NOT NULL DEFAULT '',
  duration_minutes INTEGER NOT NULL DEFAULT 30,
  calories INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS schedule (
  id TEXT PRIMARY KEY,
  workout_id TEXT NOT NULL,
  day_of_week TEXT NOT NULL CHECK(day_of_week IN ('MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY','SUNDAY')),
  hour INTEGER NOT NULL CHECK(hour BETWEEN 0 AND 23),
  minute INTEGER NOT NULL CHECK(minute BETWEEN 0 AND 59),
  next_occurrence_millis INTEGER NOT NULL,
  notify_pending INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(workout_id) REFERENCES workout(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_schedule_next ON schedule(next_occurrence_millis);
CREATE INDEX IF NOT EXISTS idx_schedule_pending ON schedule(notify_pending);
CREATE TABLE IF NOT EXISTS session (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  activity_type TEXT NOT NULL,
  start_time INTEGER NOT NULL,
  end_time INTEGER NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  calories INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL CHECK(status IN ('NEW','SYNCED')) DEFAULT 'NEW'
);
CREATE INDEX IF NOT EXISTS idx_session_status ON session(status);
`
	_, err := db.Exec(schema)
	return err
}

// Store is the narrow persistence interface consumed by the alarm engine,
// the sync service and the HTTP API.
type Store interface {
	// Schedule reads
	QueryDue(ctx context.Context, now time.Time) ([]domain.Schedule, error)
	QueryAll(ctx context.Context) ([]domain.Schedule, error)
	QueryPending(ctx context.Context) ([]domain.PendingSchedule, error)
	MinNextOccurrence(ctx context.Context) (time.Time, bool, error)
	GetSchedule(ctx context.Context, id string) (domain.Schedule, error)
	ListSchedulesByWorkout(ctx context.Context, workoutID string) ([]domain.Schedule, error)

	// Schedule writes
	CreateSchedule(ctx context.Context, s domain.Schedule) (string, error)
	UpdateScheduleRule(ctx context.Context, id string, day domain.DayOfWeek, hour, minute int, next time.Time) error
	BatchUpdateOccurrences(ctx context.Context, updates []domain.OccurrenceUpdate) error
	SetNextOccurrence(ctx context.Context, id string, next time.Time, notifyPending bool) error
	SetNotifyPending(ctx context.Context, id string, pending bool) error
	ClearAllNotifyPending(ctx context.Context) error
	DeleteSchedule(ctx context.Context, id string) error

	// Workouts
	CreateWorkout(ctx context.Context, w domain.Workout) (string, error)
	GetWorkout(ctx context.Context, id string) (domain.Workout, error)
	ListWorkouts(ctx context.Context) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, w domain.Workout) error
	DeleteWorkout(ctx context.Context, id string) error

	// Sessions
	InsertSession(ctx context.Context, s domain.Session) (int64, error)
	ListSessionsByStatus(ctx context.Context, status string) ([]domain.Session, error)
	MarkSessionsSynced(ctx context.Context, ids []int64) error
}

type sqliteStore struct{ db *sql.DB }

func NewSQLiteStore(db *sql.DB) Store { return &sqliteStore{db: db} }

func millis(t time.Time) int64      { return t.UnixMilli() }
func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }

const scheduleCols = "id,workout_id,day_of_week,hour,minute,next_occurrence_millis,notify_pending,created_at,updated_at"

func scanSchedule(row interface{ Scan(...any) error }) (domain.Schedule, error) {
	var s domain.Schedule
	var day string
	var next int64
	var pending int
	if err := row.Scan(&s.ID, &s.WorkoutID, &day, &s.Hour, &s.Minute, &next, &pending, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.Schedule{}, err
	}
	s.DayOfWeek = domain.DayOfWeek(day)
	s.NextOccurrence = fromMillis(next)
	s.NotifyPending = pending != 0
	return s, nil
}

func (r *sqliteStore) QueryDue(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+scheduleCols+` FROM schedule
WHERE next_occurrence_millis <= ? ORDER BY next_occurrence_millis ASC`, millis(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchedules(rows)
}

func (r *sqliteStore) QueryAll(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+scheduleCols+` FROM schedule ORDER BY next_occurrence_millis ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchedules(rows)
}

func collectSchedules(rows *sql.Rows) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *sqliteStore) QueryPending(ctx context.Context) ([]domain.PendingSchedule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT s.id,s.workout_id,s.day_of_week,s.hour,s.minute,s.next_occurrence_millis,s.notify_pending,s.created_at,s.updated_at,
       w.activity_type,w.label,w.duration_minutes,w.calories
FROM schedule s JOIN workout w ON w.id = s.workout_id
WHERE s.notify_pending = 1
ORDER BY s.next_occurrence_millis ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []domain.PendingSchedule
	for rows.Next() {
		var p domain.PendingSchedule
		var day string
		var next int64
		var flag int
		if err := rows.Scan(&p.Schedule.ID, &p.Schedule.WorkoutID, &day, &p.Schedule.Hour, &p.Schedule.Minute,
			&next, &flag, &p.Schedule.CreatedAt, &p.Schedule.UpdatedAt,
			&p.ActivityType, &p.Label, &p.DurationMinutes, &p.Calories); err != nil {
			return nil, err
		}
		p.Schedule.DayOfWeek = domain.DayOfWeek(day)
		p.Schedule.NextOccurrence = fromMillis(next)
		p.Schedule.NotifyPending = flag != 0
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *sqliteStore) MinNextOccurrence(ctx context.Context) (time.Time, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT next_occurrence_millis FROM schedule ORDER BY next_occurrence_millis ASC LIMIT 1`)
	var next int64
	if err := row.Scan(&next); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return fromMillis(next), true, nil
}

func (r *sqliteStore) GetSchedule(ctx context.Context, id string) (domain.Schedule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+scheduleCols+` FROM schedule WHERE id=?`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return domain.Schedule{}, ErrNotFound
	}
	return s, err
}

func (r *sqliteStore) ListSchedulesByWorkout(ctx context.Context, workoutID string) ([]domain.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+scheduleCols+` FROM schedule WHERE workout_id=? ORDER BY next_occurrence_millis ASC`, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchedules(rows)
}

func (r *sqliteStore) CreateSchedule(ctx context.Context, s domain.Schedule) (string, error) {
	id := s.ID
	if id == "" {
		id = "sch_" + uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO schedule (id,workout_id,day_of_week,hour,minute,next_occurrence_millis,notify_pending,created_at,updated_at)
VALUES (?,?,?,?,?,?,0,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
`, id, s.WorkoutID, string(s.DayOfWeek), s.Hour, s.Minute, millis(s.NextOccurrence))
	return id, err
}

func (r *sqliteStore) UpdateScheduleRule(ctx context.Context, id string, day domain.DayOfWeek, hour, minute int, next time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE schedule SET day_of_week=?,hour=?,minute=?,next_occurrence_millis=?,notify_pending=0,updated_at=CURRENT_TIMESTAMP
WHERE id=?`, string(day), hour, minute, millis(next), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// BatchUpdateOccurrences advances the given schedules and raises their
// notification flags in a single transaction. Either every update applies
// or none do.
func (r *sqliteStore) BatchUpdateOccurrences(ctx context.Context, updates []domain.OccurrenceUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, u := range updates {
		res, err := tx.ExecContext(ctx, `
UPDATE schedule SET next_occurrence_millis=?,notify_pending=1,updated_at=CURRENT_TIMESTAMP WHERE id=?`,
			millis(u.NextOccurrence), u.ScheduleID)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			_ = tx.Rollback()
			return fmt.Errorf("schedule %s: %w", u.ScheduleID, ErrNotFound)
		}
	}
	return tx.Commit()
}

func (r *sqliteStore) SetNextOccurrence(ctx context.Context, id string, next time.Time, notifyPending bool) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE schedule SET next_occurrence_millis=?,notify_pending=?,updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		millis(next), boolInt(notifyPending), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteStore) SetNotifyPending(ctx context.Context, id string, pending bool) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE schedule SET notify_pending=?,updated_at=CURRENT_TIMESTAMP WHERE id=?`, boolInt(pending), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteStore) ClearAllNotifyPending(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE schedule SET notify_pending=0,updated_at=CURRENT_TIMESTAMP WHERE notify_pending=1`)
	return err
}

func (r *sqliteStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM schedule WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteStore) CreateWorkout(ctx context.Context, w domain.Workout) (string, error) {
	id := w.ID
	if id == "" {
		id = "wkt_" + uuid.NewString()
	}
	if w.DurationMinutes == 0 {
		w.DurationMinutes = 30
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO workout (id,activity_type,label,duration_minutes,calories,created_at,updated_at)
VALUES (?,?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
`, id, w.ActivityType, w.Label, w.DurationMinutes, w.Calories)
	return id, err
}

func (r *sqliteStore) GetWorkout(ctx context.Context, id string) (domain.Workout, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,activity_type,label,duration_minutes,calories,created_at,updated_at FROM workout WHERE id=?`, id)
	var w domain.Workout
	err := row.Scan(&w.ID, &w.ActivityType, &w.Label, &w.DurationMinutes, &w.Calories, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.Workout{}, ErrNotFound
	}
	return w, err
}

func (r *sqliteStore) ListWorkouts(ctx context.Context) ([]domain.Workout, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,activity_type,label,duration_minutes,calories,created_at,updated_at FROM workout ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []domain.Workout
	for rows.Next() {
		var w domain.Workout
		if err := rows.Scan(&w.ID, &w.ActivityType, &w.Label, &w.DurationMinutes, &w.Calories, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

func (r *sqliteStore) UpdateWorkout(ctx context.Context, w domain.Workout) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE workout SET activity_type=?,label=?,duration_minutes=?,calories=?,updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		w.ActivityType, w.Label, w.DurationMinutes, w.Calories, w.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteWorkout removes the workout; the schedule table's foreign key
// cascades, so its schedules go with it.
func (r *sqliteStore) DeleteWorkout(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM workout WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteStore) InsertSession(ctx context.Context, s domain.Session) (int64, error) {
	if s.Status == "" {
		s.Status = domain.SessionNew
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO session (activity_type,start_time,end_time,title,calories,status)
VALUES (?,?,?,?,?,?)`, s.ActivityType, millis(s.StartTime), millis(s.EndTime), s.Name, s.Calories, s.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *sqliteStore) ListSessionsByStatus(ctx context.Context, status string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,activity_type,start_time,end_time,title,calories,status FROM session WHERE status=? ORDER BY id ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		var start, end int64
		if err := rows.Scan(&s.ID, &s.ActivityType, &start, &end, &s.Name, &s.Calories, &s.Status); err != nil {
			return nil, err
		}
		s.StartTime = fromMillis(start)
		s.EndTime = fromMillis(end)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sqliteStore) MarkSessionsSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE session SET status='SYNCED' WHERE id=?`, id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func requireRow(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
