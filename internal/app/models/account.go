package models

import "time"

// Account is the authentication identity, independent of academic role.
type Account struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Username     string     `json:"username" db:"username" example:"jdoe"`
	Email        string     `json:"email" db:"email" example:"jdoe@university.com"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role" example:"STUDENT"`
	IsSuperuser  bool       `json:"isSuperuser" db:"is_superuser"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// RefreshToken is an opaque, revocable token bound to an account.
type RefreshToken struct {
	Token     string
	AccountID int64
	ExpiresAt time.Time
	Revoked   bool
}
