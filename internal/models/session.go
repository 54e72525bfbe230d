package models

import "time"

// Session kinds. Simple sessions are self-guided plans without a time slot;
// personalized sessions bind an instructor to a concrete date and interval.
const (
	SessionKindSimple       = "simple"
	SessionKindPersonalized = "personalized"
)

// Session is a training session owned by a student. The date/time/instructor
// columns are populated only for the personalized kind.
type Session struct {
	ID           string    `db:"id" json:"id"`
	Kind         string    `db:"kind" json:"kind"`
	Name         string    `db:"name" json:"name"`
	StudentID    string    `db:"student_id" json:"student_id"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	Date         *string   `db:"session_date" json:"date,omitempty"`
	StartTime    *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string   `db:"end_time" json:"end_time,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Level        *string   `db:"level" json:"level,omitempty"`
	Completed    bool      `db:"completed" json:"completed"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SessionDetail joins a session with the owning student's and bound
// instructor's names for listings.
type SessionDetail struct {
	Session
	StudentName    string  `db:"student_name" json:"student_name"`
	InstructorName *string `db:"instructor_name" json:"instructor_name,omitempty"`
}

// SessionFilter describes query params for listing sessions.
type SessionFilter struct {
	StudentID    string
	InstructorID string
	Kind         string
	Completed    *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// SessionConflictError is returned when a requested slot overlaps a session
// the instructor already owns on that date.
type SessionConflictError struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
