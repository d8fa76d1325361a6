package models

import "time"

// Student is the role record of a STUDENT account.
type Student struct {
	ID            int64      `json:"id" db:"id" example:"1"`
	AccountID     int64      `json:"accountId" db:"account_id" example:"5"`
	FirstName     string     `json:"firstName" db:"first_name" example:"Kitty"`
	LastName      string     `json:"lastName" db:"last_name" example:"Pryde"`
	Email         string     `json:"email" db:"email" example:"kitty@university.com"`
	Department    Department `json:"department" db:"department" example:"Computer Science"`
	RollNumber    string     `json:"rollNumber" db:"roll_number" example:"24CS001"`
	Gender        *string    `json:"gender,omitempty" db:"gender"`
	BloodGroup    *string    `json:"bloodGroup,omitempty" db:"blood_group"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	ContactNumber *string    `json:"contactNumber,omitempty" db:"contact_number"`
	Address       *string    `json:"address,omitempty" db:"address"`
	PictureRef    *string    `json:"-" db:"picture_ref"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Subjects []*Subject `json:"subjects,omitempty"`
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
