// Package services holds the business rules of the records system.
//
// Services defined in this package:
//   - AuthService: registration, login, token refresh and logout
//   - StudentService: student records and their pictures
//   - FacultyService: faculty records
//   - SubjectService: the subject catalog
//   - EnrollmentService: department subjects, faculty subjects and promotion
//   - ProfileService: personal profiles decoupled from role records
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

// timeNow is replaced in tests to pin the roll number year.
var timeNow = time.Now

const (
	pictureFolderStudents = "students"
	pictureFolderProfiles = "profiles"
	maxRollSequence       = 999
)

// publish delivers event after the producing transaction committed. A
// failed publish is logged and never fails the request.
func publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", string(event.Type)).Int64("accountID", event.AccountID).Msg("Failed to publish event")
	}
}

// discardBlob removes a blob that is no longer referenced. Failures only leave an orphan file.
func discardBlob(ctx context.Context, storage filestorage.BlobStorage, logger zerolog.Logger, ref *string) {
	if storage == nil || ref == nil || *ref == "" {
		return
	}
	if err := storage.Delete(ctx, *ref); err != nil {
		logger.Warn().Err(err).Str("ref", *ref).Msg("Failed to delete discarded picture")
	}
}

// storePicture validates and stores an uploaded image.
func storePicture(ctx context.Context, storage filestorage.BlobStorage, folder string, upload *filestorage.Upload) (string, error) {
	if !filestorage.IsImage(upload) {
		return "", apperrors.NewFieldValidationError("picture", "picture must be a jpg, png, gif or webp image")
	}
	ref, err := storage.Store(ctx, folder, upload)
	if err != nil {
		return "", fmt.Errorf("error storing picture: %w", err)
	}
	return ref, nil
}

// rollYearPrefix is the two-digit year that scopes the roll sequence.
func rollYearPrefix() string {
	return timeNow().Format("06")
}

// createStudentRecord generates the roll number, inserts the student and
// enrolls it in its department subjects. Must run inside tx.
func createStudentRecord(ctx context.Context, tx repositories.Store, student *models.Student) error {
	if !student.Department.Valid() {
		return apperrors.NewFieldValidationError("department", fmt.Sprintf("unknown department %q", student.Department))
	}

	prefix := rollYearPrefix()
	if err := tx.Students().LockRollSequence(ctx, prefix); err != nil {
		return err
	}
	last, err := tx.Students().MaxRollSequence(ctx, prefix)
	if err != nil {
		return fmt.Errorf("error reading roll sequence: %w", err)
	}
	if last >= maxRollSequence {
		return apperrors.NewStateError(fmt.Sprintf("roll number sequence for year %s is exhausted", prefix))
	}
	student.RollNumber = fmt.Sprintf("%s%s%03d", prefix, student.Department.Code(), last+1)

	if err := tx.Students().Create(ctx, student); err != nil {
		return err
	}
	subjects, err := assignDepartmentSubjects(ctx, tx, student)
	if err != nil {
		return err
	}
	student.Subjects = subjects
	return nil
}

// assignDepartmentSubjects replaces the enrollments of student with its
// department's subject list. Codes missing from the catalog are skipped.
func assignDepartmentSubjects(ctx context.Context, tx repositories.Store, student *models.Student) ([]*models.Subject, error) {
	subjects, err := tx.Subjects().ListByCodes(ctx, student.Department.DefaultSubjectCodes())
	if err != nil {
		return nil, fmt.Errorf("error loading department subjects: %w", err)
	}
	ids := make([]int64, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}
	if err := tx.Students().ReplaceSubjects(ctx, student.ID, ids); err != nil {
		return nil, fmt.Errorf("error assigning department subjects: %w", err)
	}
	return subjects, nil
}

// ensureIdentityAvailable rejects a username or email that an account or role record already uses.
func ensureIdentityAvailable(ctx context.Context, store repositories.Store, username, email string) error {
	if username != "" {
		taken, err := store.Accounts().ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("error checking username: %w", err)
		}
		if taken {
			return apperrors.NewFieldValidationError("username", "username is already taken")
		}
	}
	return ensureEmailAvailable(ctx, store, email, 0, 0)
}

// ensureEmailAvailable checks email against accounts, students and faculties,
// ignoring the records identified by studentID and facultyID.
func ensureEmailAvailable(ctx context.Context, store repositories.Store, email string, studentID, facultyID int64) error {
	if studentID == 0 && facultyID == 0 {
		taken, err := store.Accounts().ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("error checking account email: %w", err)
		}
		if taken {
			return apperrors.NewFieldValidationError("email", "email is already registered")
		}
	}
	taken, err := store.Students().ExistsByEmail(ctx, email, studentID)
	if err != nil {
		return fmt.Errorf("error checking student email: %w", err)
	}
	if taken {
		return apperrors.NewFieldValidationError("email", "a student with this email already exists")
	}
	taken, err = store.Faculties().ExistsByEmail(ctx, email, facultyID)
	if err != nil {
		return fmt.Errorf("error checking faculty email: %w", err)
	}
	if taken {
		return apperrors.NewFieldValidationError("email", "a faculty with this email already exists")
	}
	return nil
}

// requireName rejects a blank name field.
func requireName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewFieldValidationError(field, field+" cannot be empty")
	}
	return nil
}

// normalizeEmail lower-cases email so uniqueness holds regardless of case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// optionalString turns "" into nil so the column is cleared.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseOptionalDate parses a date of birth; "" clears it.
func parseOptionalDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(s)
	if err != nil {
		return nil, apperrors.NewFieldValidationError(field, err.Error())
	}
	return &t, nil
}

// checkEnumerations validates the optional enumerated fields.
func checkEnumerations(gender, bloodGroup *string) error {
	if gender != nil && !validation.IsGender(*gender) {
		return apperrors.NewFieldValidationError("gender", "gender must be one of "+strings.Join(validation.Genders, ", "))
	}
	if bloodGroup != nil && !validation.IsBloodGroup(*bloodGroup) {
		return apperrors.NewFieldValidationError("blood_group", "blood group must be one of "+strings.Join(validation.BloodGroups, ", "))
	}
	return nil
}

// notFound rewraps a repository lookup failure with a user-facing message.
func notFound(err, sentinel error, message string) error {
	if errors.Is(err, sentinel) {
		return apperrors.NewNotFoundError(sentinel, message)
	}
	return err
}
