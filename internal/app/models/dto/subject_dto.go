package dto

import (
	"time"

	"github.com/yigit/campusrecords/internal/app/models"
)

// CreateSubjectRequest adds a catalog entry. An empty code is generated.
type CreateSubjectRequest struct {
	Code        string `json:"code" binding:"omitempty,subjectcode" example:"CS407"`
	Name        string `json:"name" binding:"required,max=100" example:"Distributed Systems"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Credits     int    `json:"credits" binding:"required,min=1" example:"3"`
}

// UpdateSubjectRequest is a partial update; the code cannot change.
type UpdateSubjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Credits     *int    `json:"credits" binding:"omitempty,min=1"`
}

// SubjectResponse renders a subject. FacultyName is "" when nobody teaches it.
type SubjectResponse struct {
	ID          int64     `json:"id" example:"1"`
	Code        string    `json:"code" example:"CS101"`
	Name        string    `json:"name" example:"Introduction to Programming"`
	Description string    `json:"description"`
	Credits     int       `json:"credits" example:"3"`
	FacultyName string    `json:"facultyName" example:"Charles Xavier"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewSubjectResponse renders s.
func NewSubjectResponse(s *models.Subject) SubjectResponse {
	resp := SubjectResponse{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		Credits:     s.Credits,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Faculty != nil {
		resp.FacultyName = s.Faculty.FirstName + " " + s.Faculty.LastName
	}
	return resp
}

// NewSubjectResponses renders a listing.
func NewSubjectResponses(subjects []*models.Subject) []SubjectResponse {
	out := make([]SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, NewSubjectResponse(s))
	}
	return out
}
