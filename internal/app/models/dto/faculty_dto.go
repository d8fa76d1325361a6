package dto

import (
	"time"

	"github.com/yigit/campusrecords/internal/app/models"
)

// UpdateFacultyRequest is a partial update of a faculty's own record.
type UpdateFacultyRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName   *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Department *string `json:"department" binding:"omitempty,min=1,max=100"`
}

// AssignSubjectRequest claims a subject for the calling faculty.
type AssignSubjectRequest struct {
	SubjectCode string `json:"subject_code" binding:"required,subjectcode" example:"CS101"`
}

// FacultyResponse renders a faculty. SubjectCode and SubjectName are "" when unassigned.
type FacultyResponse struct {
	ID          int64     `json:"id" example:"1"`
	AccountID   int64     `json:"accountId" example:"7"`
	FirstName   string    `json:"firstName" example:"Scott"`
	LastName    string    `json:"lastName" example:"Summers"`
	FullName    string    `json:"fullName" example:"Scott Summers"`
	Email       string    `json:"email" example:"prof.cyclops@university.com"`
	Department  string    `json:"department" example:"Computer Science"`
	SubjectCode string    `json:"subjectCode" example:"CS101"`
	SubjectName string    `json:"subjectName" example:"Introduction to Programming"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewFacultyResponse renders f.
func NewFacultyResponse(f *models.Faculty) FacultyResponse {
	resp := FacultyResponse{
		ID:         f.ID,
		AccountID:  f.AccountID,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		FullName:   f.FirstName + " " + f.LastName,
		Email:      f.Email,
		Department: f.Department,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
	if f.Subject != nil {
		resp.SubjectCode = f.Subject.Code
		resp.SubjectName = f.Subject.Name
	}
	return resp
}

// NewFacultyResponses renders a listing.
func NewFacultyResponses(faculties []*models.Faculty) []FacultyResponse {
	out := make([]FacultyResponse, 0, len(faculties))
	for _, f := range faculties {
		out = append(out, NewFacultyResponse(f))
	}
	return out
}
