package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// EnrollmentService moves students and faculty between subjects and roles.
type EnrollmentService interface {
	AssignSubjectsForDepartment(ctx context.Context, studentID int64) ([]*models.Subject, error)
	AssignFacultySubject(ctx context.Context, facultyID int64, subjectCode string) (*models.Faculty, error)
	PromoteStudentToFaculty(ctx context.Context, studentID int64) (*models.Faculty, error)
	AssignStudentToFacultySubject(ctx context.Context, studentID, facultyID int64) (*models.Subject, error)
	ListStudentSubjects(ctx context.Context, studentID int64) ([]*models.Subject, error)
}

type enrollmentServiceImpl struct {
	store     repositories.Store
	storage   filestorage.BlobStorage
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(
	store repositories.Store,
	storage filestorage.BlobStorage,
	publisher events.Publisher,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		store:     store,
		storage:   storage,
		publisher: publisher,
		logger:    logger.With().Str("service", "enrollment").Logger(),
	}
}

// AssignSubjectsForDepartment replaces the student's enrollments with its
// department list. Running it twice leaves the same enrollments.
func (s *enrollmentServiceImpl) AssignSubjectsForDepartment(ctx context.Context, studentID int64) ([]*models.Subject, error) {
	var subjects []*models.Subject
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		student, err := tx.Students().GetByIDForUpdate(ctx, studentID)
		if err != nil {
			return notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", studentID))
		}
		subjects, err = assignDepartmentSubjects(ctx, tx, student)
		return err
	})
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// AssignFacultySubject links the faculty to the subject. The same subject
// again is a no-op; any other change of an existing assignment is refused.
func (s *enrollmentServiceImpl) AssignFacultySubject(ctx context.Context, facultyID int64, subjectCode string) (*models.Faculty, error) {
	var faculty *models.Faculty
	changed := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		faculty, err = tx.Faculties().GetByIDForUpdate(ctx, facultyID)
		if err != nil {
			return notFound(err, apperrors.ErrFacultyNotFound, fmt.Sprintf("faculty %d not found", facultyID))
		}
		subject, err := tx.Subjects().GetByCode(ctx, subjectCode)
		if err != nil {
			return notFound(err, apperrors.ErrSubjectNotFound, fmt.Sprintf("subject %s not found", subjectCode))
		}

		if faculty.SubjectID != nil {
			if *faculty.SubjectID == subject.ID {
				return nil
			}
			held := "another subject"
			if faculty.Subject != nil {
				held = faculty.Subject.Code
			}
			return apperrors.NewStateError(fmt.Sprintf("faculty already teaches %s; subject reassignment is not allowed", held))
		}

		holder, err := tx.Faculties().GetBySubjectID(ctx, subject.ID)
		switch {
		case err == nil && holder.ID != faculty.ID:
			return apperrors.NewStateError(fmt.Sprintf("subject %s is already assigned to another faculty", subject.Code))
		case err != nil && !errors.Is(err, apperrors.ErrFacultyNotFound):
			return fmt.Errorf("error checking subject holder: %w", err)
		}

		if err := tx.Faculties().SetSubject(ctx, faculty.ID, &subject.ID); err != nil {
			return err
		}
		faculty.SubjectID = &subject.ID
		faculty.Subject = subject
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info().Int64("facultyID", faculty.ID).Str("subject", faculty.Subject.Code).Msg("Faculty subject assigned")
		publish(ctx, s.publisher, s.logger, events.New(events.FacultySubject, faculty.AccountID, map[string]interface{}{
			"facultyId": faculty.ID, "subjectCode": faculty.Subject.Code,
		}))
	}
	return faculty, nil
}

// PromoteStudentToFaculty turns the student into a faculty of the same
// account. Afterwards exactly one of the two records exists.
func (s *enrollmentServiceImpl) PromoteStudentToFaculty(ctx context.Context, studentID int64) (*models.Faculty, error) {
	var student *models.Student
	var faculty *models.Faculty
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		student, err = tx.Students().GetByIDForUpdate(ctx, studentID)
		if err != nil {
			return notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", studentID))
		}
		account, err := tx.Accounts().GetByID(ctx, student.AccountID)
		if err != nil {
			return fmt.Errorf("error loading student account: %w", err)
		}
		if !account.Role.CanTransitionTo(models.RoleFaculty) {
			return apperrors.NewStateError(fmt.Sprintf("account role %s cannot become %s", account.Role, models.RoleFaculty))
		}

		taken, err := tx.Faculties().ExistsByEmail(ctx, student.Email, 0)
		if err != nil {
			return fmt.Errorf("error checking faculty email: %w", err)
		}
		if taken {
			return apperrors.NewFieldValidationError("email", "a faculty with this email already exists")
		}

		faculty = &models.Faculty{
			AccountID:  student.AccountID,
			FirstName:  student.FirstName,
			LastName:   student.LastName,
			Email:      student.Email,
			Department: string(student.Department),
		}
		if err := tx.Faculties().Create(ctx, faculty); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateRole(ctx, account.ID, models.RoleFaculty); err != nil {
			return err
		}
		if err := tx.Students().ClearSubjects(ctx, student.ID); err != nil {
			return fmt.Errorf("error clearing enrollments: %w", err)
		}
		return tx.Students().Delete(ctx, student.ID)
	})
	if err != nil {
		return nil, err
	}

	discardBlob(ctx, s.storage, s.logger, student.PictureRef)
	s.logger.Info().Int64("accountID", student.AccountID).Str("rollNumber", student.RollNumber).Int64("facultyID", faculty.ID).Msg("Student promoted to faculty")
	publish(ctx, s.publisher, s.logger, events.New(events.StudentPromoted, student.AccountID, map[string]interface{}{
		"studentId": student.ID, "rollNumber": student.RollNumber, "facultyId": faculty.ID,
	}))
	return faculty, nil
}

// AssignStudentToFacultySubject enrolls the student in the subject the faculty teaches.
func (s *enrollmentServiceImpl) AssignStudentToFacultySubject(ctx context.Context, studentID, facultyID int64) (*models.Subject, error) {
	student, err := s.store.Students().GetByID(ctx, studentID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", studentID))
	}
	faculty, err := s.store.Faculties().GetByID(ctx, facultyID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFacultyNotFound, fmt.Sprintf("faculty %d not found", facultyID))
	}
	if faculty.Subject == nil {
		return nil, apperrors.NewStateError("faculty has no subject assigned")
	}

	if err := s.store.Students().AddSubject(ctx, student.ID, faculty.Subject.ID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("studentID", student.ID).Str("subject", faculty.Subject.Code).Msg("Student assigned to faculty subject")
	return faculty.Subject, nil
}

// ListStudentSubjects returns the student's subjects, each with the faculty teaching it.
func (s *enrollmentServiceImpl) ListStudentSubjects(ctx context.Context, studentID int64) ([]*models.Subject, error) {
	if _, err := s.store.Students().GetByID(ctx, studentID); err != nil {
		return nil, notFound(err, apperrors.ErrStudentNotFound, fmt.Sprintf("student %d not found", studentID))
	}
	subjects, err := s.store.Students().ListSubjects(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student subjects: %w", err)
	}
	for _, subject := range subjects {
		faculty, err := s.store.Faculties().GetBySubjectID(ctx, subject.ID)
		if err == nil {
			subject.Faculty = faculty
		} else if !errors.Is(err, apperrors.ErrFacultyNotFound) {
			return nil, fmt.Errorf("error retrieving subject faculty: %w", err)
		}
	}
	return subjects, nil
}
