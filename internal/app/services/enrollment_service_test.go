package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/events"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

func TestRollNumbers_SequenceSpansDepartments(t *testing.T) {
	f := newFixture(t)

	cs := f.createStudent(t, "s1", "s1@example.com", models.DepartmentComputerScience)
	it := f.createStudent(t, "s2", "s2@example.com", models.DepartmentInformationTechnology)
	se := f.createStudent(t, "s3", "s3@example.com", models.DepartmentSoftwareEngineering)

	assert.Equal(t, "24CS001", cs.RollNumber)
	assert.Equal(t, "24IT002", it.RollNumber)
	assert.Equal(t, "24SE003", se.RollNumber)
	for _, s := range []*models.Student{cs, it, se} {
		assert.True(t, validation.IsRollNumber(s.RollNumber), s.RollNumber)
	}

	assert.Equal(t, []string{"CS101", "CS301", "CS402", "CS403"}, subjectCodes(it.Subjects))
	assert.Equal(t, []string{"CS101", "CS201", "CS402", "CS404"}, subjectCodes(se.Subjects))
}

func TestAssignSubjectsForDepartment_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.createStudent(t, "s1", "s1@example.com", models.DepartmentComputerScience)

	first, err := f.enrollment.AssignSubjectsForDepartment(ctx, s.ID)
	require.NoError(t, err)
	second, err := f.enrollment.AssignSubjectsForDepartment(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, subjectCodes(first), subjectCodes(second))
	assert.Equal(t, 4, f.store.EnrollmentCount(s.ID))
}

func TestAssignSubjectsForDepartment_SkipsMissingCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.subjects.DeleteSubject(ctx, "CS302"))

	s := f.createStudent(t, "s1", "s1@example.com", models.DepartmentComputerScience)
	assert.Equal(t, []string{"CS101", "CS201", "CS301"}, subjectCodes(s.Subjects))
}

func TestAssignSubjectsForDepartment_UnknownStudent(t *testing.T) {
	f := newFixture(t)
	_, err := f.enrollment.AssignSubjectsForDepartment(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestAssignFacultySubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	faculty := f.registerFaculty(t, "cyclops", "prof.cyclops@university.com")
	other := f.registerFaculty(t, "jean", "prof.jean@university.com")

	got, err := f.enrollment.AssignFacultySubject(ctx, faculty.ID, "CS101")
	require.NoError(t, err)
	require.NotNil(t, got.Subject)
	assert.Equal(t, "CS101", got.Subject.Code)

	t.Run("same subject again is a no-op", func(t *testing.T) {
		got, err := f.enrollment.AssignFacultySubject(ctx, faculty.ID, "CS101")
		require.NoError(t, err)
		assert.Equal(t, "CS101", got.Subject.Code)
	})

	t.Run("different subject is refused", func(t *testing.T) {
		_, err := f.enrollment.AssignFacultySubject(ctx, faculty.ID, "CS201")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))

		reloaded, err := f.faculties.GetFaculty(ctx, faculty.ID)
		require.NoError(t, err)
		assert.Equal(t, "CS101", reloaded.Subject.Code)
	})

	t.Run("subject held by another faculty is refused", func(t *testing.T) {
		_, err := f.enrollment.AssignFacultySubject(ctx, other.ID, "CS101")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := f.enrollment.AssignFacultySubject(ctx, other.ID, "CS999")
		assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)
	})

	assert.Contains(t, f.publisher.types(), events.FacultySubject)
}

func TestPromoteStudentToFaculty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.createStudent(t, "kitty", "kitty@example.com", models.DepartmentComputerScience)
	require.Equal(t, "24CS001", s.RollNumber)
	require.Equal(t, 4, f.store.EnrollmentCount(s.ID))

	faculty, err := f.enrollment.PromoteStudentToFaculty(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, s.AccountID, faculty.AccountID)
	assert.Equal(t, s.FirstName, faculty.FirstName)
	assert.Equal(t, s.LastName, faculty.LastName)
	assert.Equal(t, s.Email, faculty.Email)
	assert.Equal(t, string(models.DepartmentComputerScience), faculty.Department)

	_, err = f.store.Students().GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.Zero(t, f.store.EnrollmentCount(s.ID))

	account, err := f.store.Accounts().GetByID(ctx, s.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, account.Role)

	_, err = f.enrollment.PromoteStudentToFaculty(ctx, s.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	assert.Contains(t, f.publisher.types(), events.StudentPromoted)
}

func TestPromoteStudentToFaculty_RollsBackOnConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.createStudent(t, "kitty", "kitty@example.com", models.DepartmentComputerScience)

	// a faculty already uses the student's email
	faculty := f.registerFaculty(t, "logan", "logan@example.com")
	require.NoError(t, f.store.Faculties().Update(ctx, &models.Faculty{
		ID: faculty.ID, FirstName: faculty.FirstName, LastName: faculty.LastName,
		Email: "kitty@example.com", Department: faculty.Department,
	}))

	_, err := f.enrollment.PromoteStudentToFaculty(ctx, s.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	still, err := f.store.Students().GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "24CS001", still.RollNumber)
	assert.Equal(t, 4, f.store.EnrollmentCount(s.ID))

	account, err := f.store.Accounts().GetByID(ctx, s.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, account.Role)
}

func TestAssignStudentToFacultySubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.createStudent(t, "s1", "s1@example.com", models.DepartmentComputerScience)
	faculty := f.registerFaculty(t, "beast", "prof.beast@university.com")

	_, err := f.enrollment.AssignStudentToFacultySubject(ctx, s.ID, faculty.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))

	_, err = f.enrollment.AssignFacultySubject(ctx, faculty.ID, "CS404")
	require.NoError(t, err)

	subject, err := f.enrollment.AssignStudentToFacultySubject(ctx, s.ID, faculty.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS404", subject.Code)

	// additive, and repeating it changes nothing
	_, err = f.enrollment.AssignStudentToFacultySubject(ctx, s.ID, faculty.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, f.store.EnrollmentCount(s.ID))

	subjects, err := f.enrollment.ListStudentSubjects(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 5)
	last := subjects[len(subjects)-1]
	assert.Equal(t, "CS404", last.Code)
	require.NotNil(t, last.Faculty)
	assert.Equal(t, faculty.ID, last.Faculty.ID)
}
