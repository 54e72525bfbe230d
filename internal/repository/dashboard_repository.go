package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gymtrack/gymtrack-api/internal/models"
)

// DashboardRepository aggregates read-only stats for the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Counts returns the entity totals in a single round trip.
func (r *DashboardRepository) Counts(ctx context.Context) (*models.DashboardCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students) AS total_students,
        (SELECT COUNT(*) FROM instructors) AS total_instructors,
        (SELECT COUNT(*) FROM availabilities) AS total_availabilities,
        (SELECT COUNT(*) FROM sessions) AS total_sessions,
        (SELECT COUNT(*) FROM availabilities WHERE enabled) AS enabled_availabilities`
	var counts models.DashboardCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &counts, nil
}

// InstructorSchedules returns every instructor with its window, windowless
// instructors included.
func (r *DashboardRepository) InstructorSchedules(ctx context.Context) ([]models.InstructorScheduleRow, error) {
	const query = `SELECT i.id AS instructor_id, i.full_name, i.email, i.phone,
        a.weekdays, a.start_time, a.end_time, a.enabled
        FROM instructors i LEFT JOIN availabilities a ON a.instructor_id = i.id
        ORDER BY i.full_name ASC`
	var rows []models.InstructorScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("dashboard instructor schedules: %w", err)
	}
	return rows, nil
}
