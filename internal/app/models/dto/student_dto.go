package dto

import (
	"time"

	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

// CreateStudentRequest is a faculty-initiated student registration.
type CreateStudentRequest struct {
	Username      string `json:"username" binding:"required,max=150" example:"kpryde"`
	Password      string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	Email         string `json:"email" binding:"required,email" example:"kitty@university.com"`
	FirstName     string `json:"first_name" binding:"required,max=100" example:"Kitty"`
	LastName      string `json:"last_name" binding:"required,max=100" example:"Pryde"`
	Department    string `json:"department" binding:"required,department" example:"Computer Science"`
	Gender        string `json:"gender" binding:"omitempty,gender" example:"Female"`
	BloodGroup    string `json:"blood_group" binding:"omitempty,bloodgroup" example:"O+"`
	DateOfBirth   string `json:"date_of_birth" binding:"omitempty,isodate" example:"2004-02-17"`
	ContactNumber string `json:"contact_number" binding:"omitempty,max=15" example:"+15551234567"`
	Address       string `json:"address" binding:"omitempty,max=500"`
}

// UpdateStudentRequest is a partial update; nil fields are left unchanged
// and an empty string clears an optional field.
type UpdateStudentRequest struct {
	FirstName     *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName      *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Department    *string `json:"department" binding:"omitempty,department"`
	Gender        *string `json:"gender" binding:"omitempty,gender"`
	BloodGroup    *string `json:"blood_group" binding:"omitempty,bloodgroup"`
	DateOfBirth   *string `json:"date_of_birth" binding:"omitempty,isodate"`
	ContactNumber *string `json:"contact_number" binding:"omitempty,max=15"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
}

// ListStudentsQuery filters the student listing.
type ListStudentsQuery struct {
	Department string `form:"department" binding:"omitempty,department"`
	Search     string `form:"search" binding:"omitempty,max=100"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Size       int    `form:"size" binding:"omitempty,min=1,max=100"`
}

// AssignToFacultyRequest enrolls a student in the subject held by a faculty.
type AssignToFacultyRequest struct {
	FacultyID int64 `json:"faculty_id" binding:"required,min=1" example:"3"`
}

// StudentResponse renders a student. Absent optional values are "".
type StudentResponse struct {
	ID            int64             `json:"id" example:"1"`
	AccountID     int64             `json:"accountId" example:"5"`
	FirstName     string            `json:"firstName" example:"Kitty"`
	LastName      string            `json:"lastName" example:"Pryde"`
	FullName      string            `json:"fullName" example:"Kitty Pryde"`
	Email         string            `json:"email" example:"kitty@university.com"`
	Department    string            `json:"department" example:"Computer Science"`
	RollNumber    string            `json:"rollNumber" example:"24CS001"`
	Gender        string            `json:"gender" example:"Female"`
	BloodGroup    string            `json:"bloodGroup" example:"O+"`
	DateOfBirth   string            `json:"dateOfBirth" example:"2004-02-17"`
	ContactNumber string            `json:"contactNumber" example:""`
	Address       string            `json:"address" example:""`
	PictureURL    string            `json:"pictureUrl" example:""`
	Subjects      []SubjectResponse `json:"subjects,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// NewStudentResponse renders s. urlFor resolves the picture reference.
func NewStudentResponse(s *models.Student, urlFor func(string) string) StudentResponse {
	resp := StudentResponse{
		ID:            s.ID,
		AccountID:     s.AccountID,
		FirstName:     s.FirstName,
		LastName:      s.LastName,
		FullName:      s.FullName(),
		Email:         s.Email,
		Department:    string(s.Department),
		RollNumber:    s.RollNumber,
		Gender:        deref(s.Gender),
		BloodGroup:    deref(s.BloodGroup),
		DateOfBirth:   formatDate(s.DateOfBirth),
		ContactNumber: deref(s.ContactNumber),
		Address:       deref(s.Address),
		PictureURL:    pictureURL(s.PictureRef, urlFor),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if len(s.Subjects) > 0 {
		resp.Subjects = NewSubjectResponses(s.Subjects)
	}
	return resp
}

// NewStudentResponses renders a listing.
func NewStudentResponses(students []*models.Student, urlFor func(string) string) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, NewStudentResponse(s, urlFor))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(validation.DateLayout)
}

func pictureURL(ref *string, urlFor func(string) string) string {
	if ref == nil || *ref == "" || urlFor == nil {
		return ""
	}
	return urlFor(*ref)
}
