package models

// DashboardCounts aggregates the entity totals shown on the admin dashboard.
type DashboardCounts struct {
	TotalStudents         int `db:"total_students"`
	TotalInstructors      int `db:"total_instructors"`
	TotalAvailabilities   int `db:"total_availabilities"`
	TotalSessions         int `db:"total_sessions"`
	EnabledAvailabilities int `db:"enabled_availabilities"`
}

// InstructorScheduleRow is an instructor joined with its window, if any, for
// the dashboard schedule overview.
type InstructorScheduleRow struct {
	InstructorID string  `db:"instructor_id"`
	FullName     string  `db:"full_name"`
	Email        *string `db:"email"`
	Phone        *string `db:"phone"`
	Weekdays     *string `db:"weekdays"`
	StartTime    *string `db:"start_time"`
	EndTime      *string `db:"end_time"`
	Enabled      *bool   `db:"enabled"`
}
