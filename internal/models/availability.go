package models

import "time"

// Availability is an instructor's fixed weekly schedule window. Each
// instructor owns at most one; the enabled flag toggles it without deleting.
// Times are stored as zero-padded "HH:MM" text and parsed into structured
// values wherever they are compared.
type Availability struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	Weekdays     string    `db:"weekdays" json:"weekdays"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Enabled      bool      `db:"enabled" json:"enabled"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AvailabilityDetail joins the window with its instructor's name for listings.
type AvailabilityDetail struct {
	Availability
	InstructorName string `db:"instructor_name" json:"instructor_name"`
}

// AvailabilityFilter describes query params for listing windows.
type AvailabilityFilter struct {
	InstructorID string
	Enabled      *bool
	Page         int
	PageSize     int
}
