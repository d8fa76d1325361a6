package dto

import (
	"time"

	"github.com/yigit/campusrecords/internal/app/models"
)

// RegisterRequest creates an account together with its role record.
// Department is required for students and defaults to "General Department" for faculty.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,max=150" example:"kpryde"`
	Email      string `json:"email" binding:"required,email" example:"kitty@university.com"`
	Password   string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	Role       string `json:"role" binding:"required,oneof=student faculty" example:"student"`
	FirstName  string `json:"first_name" binding:"required,max=100" example:"Kitty"`
	LastName   string `json:"last_name" binding:"required,max=100" example:"Pryde"`
	Department string `json:"department" binding:"omitempty,max=100" example:"Computer Science"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"kpryde"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken      string `json:"access"`
	RefreshToken     string `json:"refresh"`
	Role             string `json:"role" example:"student" enums:"student,faculty,unassigned"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int64  `json:"expiresIn" example:"900"`
	RefreshExpiresAt string `json:"refreshExpiresAt" example:"2025-05-01T12:00:00Z"`
}

// AccountResponse is the authenticated account with its resolved role record.
type AccountResponse struct {
	ID          int64            `json:"id" example:"1"`
	Username    string           `json:"username" example:"kpryde"`
	Email       string           `json:"email" example:"kitty@university.com"`
	Role        string           `json:"role" example:"STUDENT"`
	IsSuperuser bool             `json:"isSuperuser"`
	LastLoginAt string           `json:"lastLoginAt" example:"2025-04-23T12:01:05Z"`
	Student     *StudentResponse `json:"student,omitempty"`
	Faculty     *FacultyResponse `json:"faculty,omitempty"`
}

// NewAccountResponse renders account and its binding. urlFor resolves picture references.
func NewAccountResponse(account *models.Account, binding models.RoleBinding, urlFor func(string) string) AccountResponse {
	resp := AccountResponse{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		Role:        string(account.Role),
		IsSuperuser: account.IsSuperuser,
		LastLoginAt: formatTime(account.LastLoginAt),
	}
	switch b := binding.(type) {
	case models.StudentBinding:
		s := NewStudentResponse(b.Student, urlFor)
		resp.Student = &s
	case models.FacultyBinding:
		f := NewFacultyResponse(b.Faculty)
		resp.Faculty = &f
	}
	return resp
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
