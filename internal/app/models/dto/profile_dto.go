package dto

import (
	"time"

	"github.com/yigit/campusrecords/internal/app/models"
)

// UpdateProfileRequest is accepted as JSON or multipart form. Date of birth
// is checked by the service so that the error names the expected format.
type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name" form:"first_name" binding:"omitempty,max=100"`
	LastName      *string `json:"last_name" form:"last_name" binding:"omitempty,max=100"`
	DateOfBirth   *string `json:"date_of_birth" form:"date_of_birth"`
	Gender        *string `json:"gender" form:"gender" binding:"omitempty,gender"`
	BloodGroup    *string `json:"blood_group" form:"blood_group" binding:"omitempty,bloodgroup"`
	ContactNumber *string `json:"contact_number" form:"contact_number" binding:"omitempty,max=15"`
	Address       *string `json:"address" form:"address" binding:"omitempty,max=500"`
}

// ProfileResponse renders a profile. Absent optional values are "".
type ProfileResponse struct {
	ID            int64     `json:"id" example:"1"`
	AccountID     int64     `json:"accountId" example:"5"`
	FirstName     string    `json:"firstName" example:"Kitty"`
	LastName      string    `json:"lastName" example:"Pryde"`
	PictureURL    string    `json:"pictureUrl" example:""`
	DateOfBirth   string    `json:"dateOfBirth" example:"2004-02-17"`
	Gender        string    `json:"gender" example:"Female"`
	BloodGroup    string    `json:"bloodGroup" example:"O+"`
	ContactNumber string    `json:"contactNumber" example:""`
	Address       string    `json:"address" example:""`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewProfileResponse renders p. urlFor resolves the picture reference.
func NewProfileResponse(p *models.Profile, urlFor func(string) string) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID,
		AccountID:     p.AccountID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PictureURL:    pictureURL(p.PictureRef, urlFor),
		DateOfBirth:   formatDate(p.DateOfBirth),
		Gender:        deref(p.Gender),
		BloodGroup:    deref(p.BloodGroup),
		ContactNumber: deref(p.ContactNumber),
		Address:       deref(p.Address),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
