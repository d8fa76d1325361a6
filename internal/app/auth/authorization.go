package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/logger"
)

// AuthorizationService resolves accounts to their role records and answers
// the role questions handlers ask.
type AuthorizationService struct {
	store repositories.Store
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(store repositories.Store) *AuthorizationService {
	return &AuthorizationService{store: store}
}

// Resolve loads the role record of account. An account whose role column
// names a record that does not exist is reported as an internal error.
func (s *AuthorizationService) Resolve(ctx context.Context, account *models.Account) (models.RoleBinding, error) {
	switch account.Role {
	case models.RoleStudent:
		student, err := s.store.Students().GetByAccountID(ctx, account.ID)
		if err != nil {
			return nil, s.missingRecord(account, err)
		}
		return models.StudentBinding{Student: student}, nil
	case models.RoleFaculty:
		faculty, err := s.store.Faculties().GetByAccountID(ctx, account.ID)
		if err != nil {
			return nil, s.missingRecord(account, err)
		}
		return models.FacultyBinding{Faculty: faculty}, nil
	case models.RoleUnassigned:
		return models.UnassignedBinding{}, nil
	}
	return nil, fmt.Errorf("account %d has unknown role %q", account.ID, account.Role)
}

func (s *AuthorizationService) missingRecord(account *models.Account, err error) error {
	if errors.Is(err, apperrors.ErrStudentNotFound) || errors.Is(err, apperrors.ErrFacultyNotFound) {
		logger.Error().Int64("accountID", account.ID).Str("role", string(account.Role)).Msg("Role record missing for account")
		return fmt.Errorf("role record missing for account %d: %w", account.ID, err)
	}
	return fmt.Errorf("error resolving role of account %d: %w", account.ID, err)
}

// ResolveByID loads the account and resolves its role record.
func (s *AuthorizationService) ResolveByID(ctx context.Context, accountID int64) (*models.Account, models.RoleBinding, error) {
	account, err := s.store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	binding, err := s.Resolve(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return account, binding, nil
}

// StudentOf returns the student record of accountID or a permission error.
func (s *AuthorizationService) StudentOf(ctx context.Context, accountID int64) (*models.Student, error) {
	_, binding, err := s.ResolveByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	b, ok := binding.(models.StudentBinding)
	if !ok {
		return nil, apperrors.NewForbiddenError("only students can perform this action")
	}
	return b.Student, nil
}

// FacultyOf returns the faculty record of accountID or a permission error.
func (s *AuthorizationService) FacultyOf(ctx context.Context, accountID int64) (*models.Faculty, error) {
	_, binding, err := s.ResolveByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	b, ok := binding.(models.FacultyBinding)
	if !ok {
		return nil, apperrors.NewForbiddenError("only faculty members can perform this action")
	}
	return b.Faculty, nil
}
