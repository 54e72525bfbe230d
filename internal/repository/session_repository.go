package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gymtrack/gymtrack-api/internal/models"
)

// ConflictCheck re-validates a slot against the instructor's sessions as seen
// inside the booking transaction. A non-nil return aborts the booking. It is
// an alias so callers can hand in plain closures through their own interfaces.
type ConflictCheck = func(existing []models.Session) error

// SessionRepository manages training sessions, including the transactional
// booking path for personalized sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `s.id, s.kind, s.name, s.student_id, s.instructor_id, s.session_date, s.start_time, s.end_time, s.description, s.level, s.completed, s.created_at, s.updated_at`

// List returns sessions joined with student and instructor names.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, int, error) {
	base := `FROM sessions s JOIN students st ON st.id = s.student_id LEFT JOIN instructors i ON i.id = s.instructor_id WHERE 1=1`
	var args []interface{}

	if filter.StudentID != "" {
		base += fmt.Sprintf(" AND s.student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.InstructorID != "" {
		base += fmt.Sprintf(" AND s.instructor_id = $%d", len(args)+1)
		args = append(args, filter.InstructorID)
	}
	if filter.Kind != "" {
		base += fmt.Sprintf(" AND s.kind = $%d", len(args)+1)
		args = append(args, filter.Kind)
	}
	if filter.Completed != nil {
		base += fmt.Sprintf(" AND s.completed = $%d", len(args)+1)
		args = append(args, *filter.Completed)
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"name":         "s.name",
		"session_date": "s.session_date",
		"created_at":   "s.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, st.full_name AS student_name, i.full_name AS instructor_name %s ORDER BY %s %s LIMIT %d OFFSET %d`, sessionColumns, base, column, order, size, offset)
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// FindByID fetches a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	const query = `SELECT id, kind, name, student_id, instructor_id, session_date, start_time, end_time, description, level, completed, created_at, updated_at FROM sessions WHERE id = $1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByInstructorAndDate returns an instructor's sessions on a date, for the
// read-only available-instructors query.
func (r *SessionRepository) ListByInstructorAndDate(ctx context.Context, instructorID, date string) ([]models.Session, error) {
	const query = `SELECT id, kind, name, student_id, instructor_id, session_date, start_time, end_time, description, level, completed, created_at, updated_at
        FROM sessions WHERE instructor_id = $1 AND session_date = $2`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, instructorID, date); err != nil {
		return nil, fmt.Errorf("list sessions by instructor and date: %w", err)
	}
	return sessions, nil
}

// ListByDate returns every personalized session on a date keyed by instructor
// id, in one query.
func (r *SessionRepository) ListByDate(ctx context.Context, date string) (map[string][]models.Session, error) {
	const query = `SELECT id, kind, name, student_id, instructor_id, session_date, start_time, end_time, description, level, completed, created_at, updated_at
        FROM sessions WHERE session_date = $1 AND instructor_id IS NOT NULL`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, date); err != nil {
		return nil, fmt.Errorf("list sessions by date: %w", err)
	}
	byInstructor := make(map[string][]models.Session, len(sessions))
	for _, session := range sessions {
		byInstructor[*session.InstructorID] = append(byInstructor[*session.InstructorID], session)
	}
	return byInstructor, nil
}

// Create inserts a session without conflict checking. Simple sessions take
// this path; personalized bookings go through CreateBooked.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	prepareSession(session)
	if _, err := r.db.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies a session without conflict checking.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, updateSessionQuery, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// CreateBooked inserts a personalized session inside a transaction that locks
// the instructor row, re-reads that instructor's sessions for the date and
// re-runs the conflict check against the locked snapshot. Two concurrent
// bookings for the same instructor serialize on the row lock, so at most one
// of an overlapping pair commits.
func (r *SessionRepository) CreateBooked(ctx context.Context, session *models.Session, check ConflictCheck) error {
	prepareSession(session)
	return r.booked(ctx, session, "", check, insertSessionQuery)
}

// UpdateBooked rewrites a personalized session under the same locking
// protocol as CreateBooked, excluding the session itself from the snapshot.
func (r *SessionRepository) UpdateBooked(ctx context.Context, session *models.Session, check ConflictCheck) error {
	session.UpdatedAt = time.Now().UTC()
	return r.booked(ctx, session, session.ID, check, updateSessionQuery)
}

func (r *SessionRepository) booked(ctx context.Context, session *models.Session, excludeID string, check ConflictCheck, writeQuery string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM instructors WHERE id = $1 FOR UPDATE`, *session.InstructorID); err != nil {
		return fmt.Errorf("lock instructor: %w", err)
	}

	query := `SELECT id, kind, name, student_id, instructor_id, session_date, start_time, end_time, description, level, completed, created_at, updated_at
        FROM sessions WHERE instructor_id = $1 AND session_date = $2`
	args := []interface{}{*session.InstructorID, *session.Date}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var existing []models.Session
	if err := tx.SelectContext(ctx, &existing, query, args...); err != nil {
		return fmt.Errorf("read booked sessions: %w", err)
	}

	if err := check(existing); err != nil {
		return err
	}

	if _, err := tx.NamedExecContext(ctx, writeQuery, session); err != nil {
		return fmt.Errorf("write booked session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

// ToggleCompleted flips the completed flag and returns the new state.
// sql.ErrNoRows when the session does not exist.
func (r *SessionRepository) ToggleCompleted(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE sessions SET completed = NOT completed, updated_at = $1 WHERE id = $2 RETURNING completed`
	var completed bool
	if err := r.db.GetContext(ctx, &completed, query, time.Now().UTC(), id); err != nil {
		return false, err
	}
	return completed, nil
}

// Delete removes a session. Returns the number of deleted rows.
func (r *SessionRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete session rows affected: %w", err)
	}
	return deleted, nil
}

// DeleteByStudent removes every session a student owns. Used by the
// student-deletion cascade.
func (r *SessionRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete sessions by student: %w", err)
	}
	return nil
}

// DetachByInstructor clears the instructor reference on every session the
// instructor owns. The sessions themselves stay with the student; used by the
// instructor-deletion cascade.
func (r *SessionRepository) DetachByInstructor(ctx context.Context, instructorID string) error {
	query := `UPDATE sessions SET instructor_id = NULL, updated_at = $1 WHERE instructor_id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), instructorID); err != nil {
		return fmt.Errorf("detach sessions by instructor: %w", err)
	}
	return nil
}

const insertSessionQuery = `INSERT INTO sessions (id, kind, name, student_id, instructor_id, session_date, start_time, end_time, description, level, completed, created_at, updated_at)
    VALUES (:id, :kind, :name, :student_id, :instructor_id, :session_date, :start_time, :end_time, :description, :level, :completed, :created_at, :updated_at)`

const updateSessionQuery = `UPDATE sessions SET kind = :kind, name = :name, student_id = :student_id, instructor_id = :instructor_id, session_date = :session_date, start_time = :start_time, end_time = :end_time, description = :description, level = :level, completed = :completed, updated_at = :updated_at WHERE id = :id`

func prepareSession(session *models.Session) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
}
