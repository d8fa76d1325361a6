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
	"github.com/yigit/campusrecords/internal/pkg/auth"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// StudentService defines the interface for student-related operations
type StudentService interface {
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	GetStudentByAccount(ctx context.Context, accountID int64) (*models.Student, error)
	ListStudents(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, int64, error)
	UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
	UpdatePicture(ctx context.Context, id int64, upload *filestorage.Upload) (*models.Student, error)
}

type studentServiceImpl struct {
	store     repositories.Store
	hasher    *auth.PasswordHasher
	storage   filestorage.BlobStorage
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(
	store repositories.Store,
	hasher *auth.PasswordHasher,
	storage filestorage.BlobStorage,
	publisher events.Publisher,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		store:     store,
		hasher:    hasher,
		storage:   storage,
		publisher: publisher,
		logger:    logger.With().Str("service", "student").Logger(),
	}
}

// CreateStudent registers an account with role STUDENT, its student record
// and an empty profile. Nothing is persisted when any step fails.
func (s *studentServiceImpl) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	if err := validateCredentials(req.Username, req.Password); err != nil {
		return nil, err
	}
	if err := requireName("first_name", req.FirstName); err != nil {
		return nil, err
	}
	if err := requireName("last_name", req.LastName); err != nil {
		return nil, err
	}
	department, err := models.ParseDepartment(req.Department)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("department", err.Error())
	}
	gender, bloodGroup := optionalString(req.Gender), optionalString(req.BloodGroup)
	if err := checkEnumerations(gender, bloodGroup); err != nil {
		return nil, err
	}
	dob, err := parseOptionalDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account := &models.Account{
		Username:     req.Username,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         models.RoleStudent,
		IsActive:     true,
	}
	student := &models.Student{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         account.Email,
		Department:    department,
		Gender:        gender,
		BloodGroup:    bloodGroup,
		DateOfBirth:   dob,
		ContactNumber: optionalString(req.ContactNumber),
		Address:       optionalString(req.Address),
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := ensureIdentityAvailable(ctx, tx, account.Username, account.Email); err != nil {
			return err
		}
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return err
		}
		student.AccountID = account.ID
		if err := createStudentRecord(ctx, tx, student); err != nil {
			return err
		}
		return tx.Profiles().Create(ctx, &models.Profile{
			AccountID: account.ID,
			FirstName: student.FirstName,
			LastName:  student.LastName,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Str("rollNumber", student.RollNumber).Msg("Student created")
	publish(ctx, s.publisher, s.logger, events.New(events.StudentCreated, account.ID, map[string]interface{}{
		"studentId": student.ID, "rollNumber": student.RollNumber, "department": student.Department,
	}))
	return student, nil
}

func (s *studentServiceImpl) withSubjects(ctx context.Context, student *models.Student) (*models.Student, error) {
	subjects, err := s.store.Students().ListSubjects(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student subjects: %w", err)
	}
	student.Subjects = subjects
	return student, nil
}

// GetStudent retrieves a student with its enrolled subjects
func (s *studentServiceImpl) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	if id <= 0 {
		return nil, apperrors.NewFieldValidationError("id", "invalid student ID")
	}
	student, err := s.store.Students().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", id))
	}
	return s.withSubjects(ctx, student)
}

// GetStudentByAccount retrieves the student record of an account
func (s *studentServiceImpl) GetStudentByAccount(ctx context.Context, accountID int64) (*models.Student, error) {
	student, err := s.store.Students().GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrStudentNotFound, "no student record for this account")
	}
	return s.withSubjects(ctx, student)
}

// ListStudents returns one page of students and the total matching count
func (s *studentServiceImpl) ListStudents(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, int64, error) {
	if filter.Department != "" && !filter.Department.Valid() {
		return nil, 0, apperrors.NewFieldValidationError("department", fmt.Sprintf("unknown department %q", filter.Department))
	}
	students, total, err := s.store.Students().List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving students: %w", err)
	}
	return students, total, nil
}

// UpdateStudent applies a partial update. A department change re-runs the
// department subject assignment; an email change is mirrored to the account.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	var updated *models.Student
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		student, err := tx.Students().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", id))
		}
		oldDepartment, oldEmail := student.Department, student.Email

		if err := applyStudentChanges(student, req); err != nil {
			return err
		}
		if student.Email != oldEmail {
			if err := ensureEmailAvailable(ctx, tx, student.Email, student.ID, 0); err != nil {
				return err
			}
			if err := tx.Accounts().UpdateEmail(ctx, student.AccountID, student.Email); err != nil {
				return err
			}
		}
		if err := tx.Students().Update(ctx, student); err != nil {
			return err
		}
		if student.Department != oldDepartment {
			if _, err := assignDepartmentSubjects(ctx, tx, student); err != nil {
				return err
			}
			s.logger.Info().Int64("studentID", student.ID).Str("department", string(student.Department)).Msg("Department changed, subjects reassigned")
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.withSubjects(ctx, updated)
}

func applyStudentChanges(student *models.Student, req *dto.UpdateStudentRequest) error {
	if req.FirstName != nil {
		if err := requireName("first_name", *req.FirstName); err != nil {
			return err
		}
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		if err := requireName("last_name", *req.LastName); err != nil {
			return err
		}
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return apperrors.NewFieldValidationError("email", "email cannot be empty")
		}
		student.Email = email
	}
	if req.Department != nil {
		department, err := models.ParseDepartment(*req.Department)
		if err != nil {
			return apperrors.NewFieldValidationError("department", err.Error())
		}
		student.Department = department
	}
	if req.Gender != nil {
		student.Gender = optionalString(*req.Gender)
	}
	if req.BloodGroup != nil {
		student.BloodGroup = optionalString(*req.BloodGroup)
	}
	if err := checkEnumerations(student.Gender, student.BloodGroup); err != nil {
		return err
	}
	if req.DateOfBirth != nil {
		dob, err := parseOptionalDate("date_of_birth", *req.DateOfBirth)
		if err != nil {
			return err
		}
		student.DateOfBirth = dob
	}
	if req.ContactNumber != nil {
		student.ContactNumber = optionalString(*req.ContactNumber)
	}
	if req.Address != nil {
		student.Address = optionalString(*req.Address)
	}
	return nil
}

// DeleteStudent removes the student, its enrollments, its profile and its account.
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	var student *models.Student
	var profilePicture *string
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		student, err = tx.Students().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", id))
		}
		if profile, err := tx.Profiles().GetByAccountID(ctx, student.AccountID); err == nil {
			profilePicture = profile.PictureRef
		}
		if err := tx.Students().ClearSubjects(ctx, student.ID); err != nil {
			return fmt.Errorf("error clearing enrollments: %w", err)
		}
		if err := tx.Students().Delete(ctx, student.ID); err != nil {
			return err
		}
		if err := tx.Profiles().DeleteByAccountID(ctx, student.AccountID); err != nil {
			return fmt.Errorf("error deleting profile: %w", err)
		}
		return tx.Accounts().Delete(ctx, student.AccountID)
	})
	if err != nil {
		return err
	}

	discardBlob(ctx, s.storage, s.logger, student.PictureRef)
	discardBlob(ctx, s.storage, s.logger, profilePicture)
	s.logger.Info().Int64("studentID", id).Str("rollNumber", student.RollNumber).Msg("Student deleted")
	publish(ctx, s.publisher, s.logger, events.New(events.StudentDeleted, student.AccountID, map[string]interface{}{
		"studentId": student.ID, "rollNumber": student.RollNumber,
	}))
	return nil
}

// UpdatePicture stores upload and points the student at it. The previous picture is discarded.
func (s *studentServiceImpl) UpdatePicture(ctx context.Context, id int64, upload *filestorage.Upload) (*models.Student, error) {
	student, err := s.store.Students().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", id))
	}

	ref, err := storePicture(ctx, s.storage, pictureFolderStudents, upload)
	if err != nil {
		return nil, err
	}

	old := student.PictureRef
	student.PictureRef = &ref
	if err := s.store.Students().Update(ctx, student); err != nil {
		discardBlob(ctx, s.storage, s.logger, &ref)
		return nil, err
	}
	discardBlob(ctx, s.storage, s.logger, old)
	return s.withSubjects(ctx, student)
}
