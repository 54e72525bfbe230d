package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gymtrack/gymtrack-api/internal/models"
)

// AvailabilityRepository manages instructor schedule windows. The schema
// enforces at most one window per instructor.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// List returns windows joined with instructor names, matching the filters.
func (r *AvailabilityRepository) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityDetail, int, error) {
	base := `FROM availabilities a JOIN instructors i ON i.id = a.instructor_id WHERE 1=1`
	var args []interface{}

	if filter.InstructorID != "" {
		base += fmt.Sprintf(" AND a.instructor_id = $%d", len(args)+1)
		args = append(args, filter.InstructorID)
	}
	if filter.Enabled != nil {
		base += fmt.Sprintf(" AND a.enabled = $%d", len(args)+1)
		args = append(args, *filter.Enabled)
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

	query := fmt.Sprintf(`SELECT a.id, a.instructor_id, a.weekdays, a.start_time, a.end_time, a.enabled, a.created_at, a.updated_at, i.full_name AS instructor_name %s ORDER BY i.full_name ASC LIMIT %d OFFSET %d`, base, size, offset)
	var windows []models.AvailabilityDetail
	if err := r.db.SelectContext(ctx, &windows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list availabilities: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count availabilities: %w", err)
	}
	return windows, total, nil
}

// ListAll returns every window keyed by instructor id. The
// available-instructors query consumes the whole map.
func (r *AvailabilityRepository) ListAll(ctx context.Context) (map[string]*models.Availability, error) {
	const query = `SELECT id, instructor_id, weekdays, start_time, end_time, enabled, created_at, updated_at FROM availabilities`
	var windows []models.Availability
	if err := r.db.SelectContext(ctx, &windows, query); err != nil {
		return nil, fmt.Errorf("list all availabilities: %w", err)
	}
	byInstructor := make(map[string]*models.Availability, len(windows))
	for i := range windows {
		byInstructor[windows[i].InstructorID] = &windows[i]
	}
	return byInstructor, nil
}

// FindByID fetches a window by ID.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	const query = `SELECT id, instructor_id, weekdays, start_time, end_time, enabled, created_at, updated_at FROM availabilities WHERE id = $1`
	var window models.Availability
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		return nil, err
	}
	return &window, nil
}

// FindByInstructor fetches the instructor's window, or sql.ErrNoRows when the
// instructor has none.
func (r *AvailabilityRepository) FindByInstructor(ctx context.Context, instructorID string) (*models.Availability, error) {
	const query = `SELECT id, instructor_id, weekdays, start_time, end_time, enabled, created_at, updated_at FROM availabilities WHERE instructor_id = $1`
	var window models.Availability
	if err := r.db.GetContext(ctx, &window, query, instructorID); err != nil {
		return nil, err
	}
	return &window, nil
}

// Create inserts a new window.
func (r *AvailabilityRepository) Create(ctx context.Context, window *models.Availability) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if window.CreatedAt.IsZero() {
		window.CreatedAt = now
	}
	window.UpdatedAt = now
	const query = `INSERT INTO availabilities (id, instructor_id, weekdays, start_time, end_time, enabled, created_at, updated_at)
        VALUES (:id, :instructor_id, :weekdays, :start_time, :end_time, :enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// Update modifies an existing window.
func (r *AvailabilityRepository) Update(ctx context.Context, window *models.Availability) error {
	window.UpdatedAt = time.Now().UTC()
	const query = `UPDATE availabilities SET weekdays = :weekdays, start_time = :start_time, end_time = :end_time, enabled = :enabled, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	return nil
}

// ToggleEnabledByInstructor flips the enabled flag on the instructor's window
// and returns the new state. sql.ErrNoRows when the instructor has no window.
func (r *AvailabilityRepository) ToggleEnabledByInstructor(ctx context.Context, instructorID string) (bool, error) {
	const query = `UPDATE availabilities SET enabled = NOT enabled, updated_at = $1 WHERE instructor_id = $2 RETURNING enabled`
	var enabled bool
	if err := r.db.GetContext(ctx, &enabled, query, time.Now().UTC(), instructorID); err != nil {
		return false, err
	}
	return enabled, nil
}

// Delete removes a window. Returns the number of deleted rows.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete availability: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete availability rows affected: %w", err)
	}
	return deleted, nil
}

// DeleteByInstructor removes the instructor's window if present. Used by the
// instructor-deletion cascade, so a missing window is not an error.
func (r *AvailabilityRepository) DeleteByInstructor(ctx context.Context, instructorID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM availabilities WHERE instructor_id = $1`, instructorID); err != nil {
		return fmt.Errorf("delete availability by instructor: %w", err)
	}
	return nil
}

// ExistsForInstructor reports whether the instructor already has a window.
func (r *AvailabilityRepository) ExistsForInstructor(ctx context.Context, instructorID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM availabilities WHERE instructor_id = $1 LIMIT 1`, instructorID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check availability exists: %w", err)
	}
	return true, nil
}
