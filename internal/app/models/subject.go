package models

import "time"

// Subject is a catalog entry. Code is immutable once assigned.
type Subject struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Code        string    `json:"code" db:"code" example:"CS101"`
	Name        string    `json:"name" db:"name" example:"Introduction to Programming"`
	Description string    `json:"description" db:"description"`
	Credits     int       `json:"credits" db:"credits" example:"3"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Faculty *Faculty `json:"faculty,omitempty"`
}
