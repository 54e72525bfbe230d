package models

import "time"

// MinStudentAge is the youngest age accepted for gym enrollment.
const MinStudentAge = 7

// Student represents a gym member able to book training sessions.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Age       int       `db:"age" json:"age"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
