package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

const maxSubjectCodeNumber = 999

// SubjectService defines the interface for subject catalog operations
type SubjectService interface {
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error)
	GetSubject(ctx context.Context, code string) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	UpdateSubject(ctx context.Context, code string, req *dto.UpdateSubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, code string) error
}

type subjectServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(store repositories.Store, logger zerolog.Logger) SubjectService {
	return &subjectServiceImpl{
		store:  store,
		logger: logger.With().Str("service", "subject").Logger(),
	}
}

func validateSubjectFields(name string, credits int) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewFieldValidationError("name", "name cannot be empty")
	}
	if credits <= 0 {
		return apperrors.NewFieldValidationError("credits", "credits must be a positive integer")
	}
	return nil
}

// nextSubjectCode is the highest CS### code plus one, or CS001. Must run inside tx.
func nextSubjectCode(ctx context.Context, tx repositories.Store) (string, error) {
	if err := tx.Subjects().LockCodeSequence(ctx); err != nil {
		return "", err
	}
	last, err := tx.Subjects().MaxCodeNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("error reading subject code sequence: %w", err)
	}
	if last >= maxSubjectCodeNumber {
		return "", apperrors.NewStateError("subject code sequence is exhausted")
	}
	return fmt.Sprintf("CS%03d", last+1), nil
}

// CreateSubject adds a subject. Without a code the next free one is generated.
func (s *subjectServiceImpl) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateSubjectFields(name, req.Credits); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code != "" && !validation.IsSubjectCode(code) {
		return nil, apperrors.NewFieldValidationError("code", "code must look like CS followed by three digits")
	}

	subject := &models.Subject{
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Credits:     req.Credits,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		taken, err := tx.Subjects().ExistsByName(ctx, subject.Name, 0)
		if err != nil {
			return fmt.Errorf("error checking subject name: %w", err)
		}
		if taken {
			return apperrors.NewFieldValidationError("name", "a subject with this name already exists")
		}

		if subject.Code == "" {
			if subject.Code, err = nextSubjectCode(ctx, tx); err != nil {
				return err
			}
		} else if _, err := tx.Subjects().GetByCode(ctx, subject.Code); err == nil {
			return apperrors.NewFieldValidationError("code", fmt.Sprintf("subject %s already exists", subject.Code))
		} else if !errors.Is(err, apperrors.ErrSubjectNotFound) {
			return fmt.Errorf("error checking subject code: %w", err)
		}

		return tx.Subjects().Create(ctx, subject)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("code", subject.Code).Msg("Subject created")
	return subject, nil
}

// GetSubject retrieves a subject by code with the faculty teaching it
func (s *subjectServiceImpl) GetSubject(ctx context.Context, code string) (*models.Subject, error) {
	subject, err := s.store.Subjects().GetByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, apperrors.ErrSubjectNotFound, fmt.Sprintf("subject %s not found", code))
	}
	faculty, err := s.store.Faculties().GetBySubjectID(ctx, subject.ID)
	switch {
	case err == nil:
		subject.Faculty = faculty
	case !errors.Is(err, apperrors.ErrFacultyNotFound):
		return nil, fmt.Errorf("error retrieving subject faculty: %w", err)
	}
	return subject, nil
}

// ListSubjects returns the whole catalog ordered by code
func (s *subjectServiceImpl) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.store.Subjects().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving subjects: %w", err)
	}
	faculties, _, err := s.store.Faculties().List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("error retrieving faculties: %w", err)
	}
	bySubject := make(map[int64]*models.Faculty, len(faculties))
	for _, f := range faculties {
		if f.SubjectID != nil {
			bySubject[*f.SubjectID] = f
		}
	}
	for _, subject := range subjects {
		subject.Faculty = bySubject[subject.ID]
	}
	return subjects, nil
}

// UpdateSubject changes name, description or credits. The code is immutable.
func (s *subjectServiceImpl) UpdateSubject(ctx context.Context, code string, req *dto.UpdateSubjectRequest) (*models.Subject, error) {
	var subject *models.Subject
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		subject, err = tx.Subjects().GetByCode(ctx, code)
		if err != nil {
			return notFound(err, apperrors.ErrSubjectNotFound, fmt.Sprintf("subject %s not found", code))
		}
		if req.Name != nil {
			subject.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			subject.Description = strings.TrimSpace(*req.Description)
		}
		if req.Credits != nil {
			subject.Credits = *req.Credits
		}
		if err := validateSubjectFields(subject.Name, subject.Credits); err != nil {
			return err
		}
		taken, err := tx.Subjects().ExistsByName(ctx, subject.Name, subject.ID)
		if err != nil {
			return fmt.Errorf("error checking subject name: %w", err)
		}
		if taken {
			return apperrors.NewFieldValidationError("name", "a subject with this name already exists")
		}
		return tx.Subjects().Update(ctx, subject)
	})
	if err != nil {
		return nil, err
	}
	return subject, nil
}

// DeleteSubject removes a subject. Its faculty becomes unassigned and its enrollments go away.
func (s *subjectServiceImpl) DeleteSubject(ctx context.Context, code string) error {
	subject, err := s.store.Subjects().GetByCode(ctx, code)
	if err != nil {
		return notFound(err, apperrors.ErrSubjectNotFound, fmt.Sprintf("subject %s not found", code))
	}
	if err := s.store.Subjects().Delete(ctx, subject.ID); err != nil {
		return fmt.Errorf("error deleting subject: %w", err)
	}
	s.logger.Info().Str("code", code).Msg("Subject deleted")
	return nil
}
