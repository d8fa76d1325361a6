package models

import "time"

// Faculty is the role record of a FACULTY account.
type Faculty struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	AccountID  int64     `json:"accountId" db:"account_id" example:"7"`
	FirstName  string    `json:"firstName" db:"first_name" example:"Scott"`
	LastName   string    `json:"lastName" db:"last_name" example:"Summers"`
	Email      string    `json:"email" db:"email" example:"prof.cyclops@university.com"`
	Department string    `json:"department" db:"department" example:"Computer Science"`
	SubjectID  *int64    `json:"subjectId,omitempty" db:"subject_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Subject *Subject `json:"subject,omitempty"`
}

// DefaultFacultyDepartment is used when a faculty registers without naming one.
const DefaultFacultyDepartment = "General Department"
