package models

import "time"

// Profile holds optional personal data, independent of the role records.
type Profile struct {
	ID            int64      `json:"id" db:"id"`
	AccountID     int64      `json:"accountId" db:"account_id"`
	FirstName     string     `json:"firstName" db:"first_name"`
	LastName      string     `json:"lastName" db:"last_name"`
	PictureRef    *string    `json:"-" db:"picture_ref"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Gender        *string    `json:"gender,omitempty" db:"gender"`
	BloodGroup    *string    `json:"bloodGroup,omitempty" db:"blood_group"`
	ContactNumber *string    `json:"contactNumber,omitempty" db:"contact_number"`
	Address       *string    `json:"address,omitempty" db:"address"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}
