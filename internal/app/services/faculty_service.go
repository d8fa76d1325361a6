package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// FacultyService defines the interface for faculty-related operations
type FacultyService interface {
	GetFaculty(ctx context.Context, id int64) (*models.Faculty, error)
	GetFacultyByAccount(ctx context.Context, accountID int64) (*models.Faculty, error)
	ListFaculties(ctx context.Context, offset uint64, limit int) ([]*models.Faculty, int64, error)
	UpdateFaculty(ctx context.Context, id int64, req *dto.UpdateFacultyRequest) (*models.Faculty, error)
	DeleteFaculty(ctx context.Context, id int64) error
}

// facultyServiceImpl implements the FacultyService interface
type facultyServiceImpl struct {
	store   repositories.Store
	storage filestorage.BlobStorage
	logger  zerolog.Logger
}

// NewFacultyService creates a new faculty service instance
func NewFacultyService(store repositories.Store, storage filestorage.BlobStorage, logger zerolog.Logger) FacultyService {
	return &facultyServiceImpl{
		store:   store,
		storage: storage,
		logger:  logger.With().Str("service", "faculty").Logger(),
	}
}

// GetFaculty retrieves a faculty by ID
func (s *facultyServiceImpl) GetFaculty(ctx context.Context, id int64) (*models.Faculty, error) {
	if id <= 0 {
		return nil, apperrors.NewFieldValidationError("id", "invalid faculty ID")
	}
	faculty, err := s.store.Faculties().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFacultyNotFound, fmt.Sprintf("faculty %d not found", id))
	}
	return faculty, nil
}

// GetFacultyByAccount retrieves the faculty record of an account
func (s *facultyServiceImpl) GetFacultyByAccount(ctx context.Context, accountID int64) (*models.Faculty, error) {
	faculty, err := s.store.Faculties().GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFacultyNotFound, "no faculty record for this account")
	}
	return faculty, nil
}

// ListFaculties retrieves one page of faculties ordered by name
func (s *facultyServiceImpl) ListFaculties(ctx context.Context, offset uint64, limit int) ([]*models.Faculty, int64, error) {
	faculties, total, err := s.store.Faculties().List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving faculties: %w", err)
	}
	return faculties, total, nil
}

// UpdateFaculty applies a partial update. An email change is mirrored to the account.
func (s *facultyServiceImpl) UpdateFaculty(ctx context.Context, id int64, req *dto.UpdateFacultyRequest) (*models.Faculty, error) {
	var faculty *models.Faculty
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		faculty, err = tx.Faculties().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrFacultyNotFound, fmt.Sprintf("faculty %d not found", id))
		}
		oldEmail := faculty.Email

		if req.FirstName != nil {
			if err := requireName("first_name", *req.FirstName); err != nil {
				return err
			}
			faculty.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			if err := requireName("last_name", *req.LastName); err != nil {
				return err
			}
			faculty.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Department != nil {
			if err := requireName("department", *req.Department); err != nil {
				return err
			}
			faculty.Department = strings.TrimSpace(*req.Department)
		}
		if req.Email != nil {
			faculty.Email = normalizeEmail(*req.Email)
			if faculty.Email == "" {
				return apperrors.NewFieldValidationError("email", "email cannot be empty")
			}
		}

		if faculty.Email != oldEmail {
			if err := ensureEmailAvailable(ctx, tx, faculty.Email, 0, faculty.ID); err != nil {
				return err
			}
			if err := tx.Accounts().UpdateEmail(ctx, faculty.AccountID, faculty.Email); err != nil {
				return err
			}
		}
		return tx.Faculties().Update(ctx, faculty)
	})
	if err != nil {
		return nil, err
	}
	return faculty, nil
}

// DeleteFaculty removes the faculty together with its profile and account.
// The subject it taught stays in the catalog, unassigned.
func (s *facultyServiceImpl) DeleteFaculty(ctx context.Context, id int64) error {
	var profilePicture *string
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		faculty, err := tx.Faculties().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrFacultyNotFound, fmt.Sprintf("faculty %d not found", id))
		}
		if profile, err := tx.Profiles().GetByAccountID(ctx, faculty.AccountID); err == nil {
			profilePicture = profile.PictureRef
		}
		if err := tx.Faculties().Delete(ctx, faculty.ID); err != nil {
			return err
		}
		if err := tx.Profiles().DeleteByAccountID(ctx, faculty.AccountID); err != nil {
			return fmt.Errorf("error deleting profile: %w", err)
		}
		return tx.Accounts().Delete(ctx, faculty.AccountID)
	})
	if err != nil {
		return err
	}

	discardBlob(ctx, s.storage, s.logger, profilePicture)
	s.logger.Info().Int64("facultyID", id).Msg("Faculty deleted")
	return nil
}
