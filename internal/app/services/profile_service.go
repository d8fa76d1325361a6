package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// ProfileService manages personal profiles, independent of role records.
type ProfileService interface {
	GetOrCreateProfile(ctx context.Context, accountID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, accountID int64, req *dto.UpdateProfileRequest, picture *filestorage.Upload) (*models.Profile, error)
}

type profileServiceImpl struct {
	store   repositories.Store
	storage filestorage.BlobStorage
	logger  zerolog.Logger
}

// NewProfileService creates a new profile service instance
func NewProfileService(store repositories.Store, storage filestorage.BlobStorage, logger zerolog.Logger) ProfileService {
	return &profileServiceImpl{
		store:   store,
		storage: storage,
		logger:  logger.With().Str("service", "profile").Logger(),
	}
}

// GetOrCreateProfile returns the account's profile, creating an empty one on first access.
func (s *profileServiceImpl) GetOrCreateProfile(ctx context.Context, accountID int64) (*models.Profile, error) {
	var profile *models.Profile
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		profile, err = tx.Profiles().GetByAccountID(ctx, accountID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrProfileNotFound) {
			return fmt.Errorf("error retrieving profile: %w", err)
		}
		if _, err := tx.Accounts().GetByID(ctx, accountID); err != nil {
			return notFound(err, apperrors.ErrAccountNotFound, "account not found")
		}
		profile = &models.Profile{AccountID: accountID}
		return tx.Profiles().Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies a partial update. A new picture replaces the old
// one, and the old blob is discarded once the record points at the new one.
func (s *profileServiceImpl) UpdateProfile(ctx context.Context, accountID int64, req *dto.UpdateProfileRequest, picture *filestorage.Upload) (*models.Profile, error) {
	var (
		dob                *time.Time
		gender, bloodGroup *string
	)
	if req.DateOfBirth != nil {
		var err error
		if dob, err = parseOptionalDate("date_of_birth", *req.DateOfBirth); err != nil {
			return nil, err
		}
	}
	if req.Gender != nil {
		gender = optionalString(*req.Gender)
	}
	if req.BloodGroup != nil {
		bloodGroup = optionalString(*req.BloodGroup)
	}
	if err := checkEnumerations(gender, bloodGroup); err != nil {
		return nil, err
	}

	profile, err := s.GetOrCreateProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		profile.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = dob
	}
	if req.Gender != nil {
		profile.Gender = gender
	}
	if req.BloodGroup != nil {
		profile.BloodGroup = bloodGroup
	}
	if req.ContactNumber != nil {
		profile.ContactNumber = optionalString(*req.ContactNumber)
	}
	if req.Address != nil {
		profile.Address = optionalString(*req.Address)
	}

	var old *string
	if picture != nil {
		ref, err := storePicture(ctx, s.storage, pictureFolderProfiles, picture)
		if err != nil {
			return nil, err
		}
		old = profile.PictureRef
		profile.PictureRef = &ref
	}

	if err := s.store.Profiles().Update(ctx, profile); err != nil {
		if picture != nil {
			discardBlob(ctx, s.storage, s.logger, profile.PictureRef)
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	discardBlob(ctx, s.storage, s.logger, old)
	return profile, nil
}
