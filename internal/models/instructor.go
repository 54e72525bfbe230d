package models

import "time"

// MinInstructorAge is the youngest age accepted for instructors.
const MinInstructorAge = 18

// Instructor represents a trainer who owns at most one weekly availability
// window and may be bound to personalized sessions.
type Instructor struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Age       int       `db:"age" json:"age"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorFilter encapsulates search parameters for listing instructors.
type InstructorFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
