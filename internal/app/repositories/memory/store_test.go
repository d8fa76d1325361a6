package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
)

func newAccount(t *testing.T, s *Store, username, email string) *models.Account {
	t.Helper()
	a := &models.Account{Username: username, Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, s.Accounts().Create(context.Background(), a))
	return a
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		a := &models.Account{Username: "alice", Email: "alice@example.com"}
		require.NoError(t, tx.Accounts().Create(ctx, a))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := s.Accounts().ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
			_ = tx.Accounts().Create(ctx, &models.Account{Username: "bob", Email: "bob@example.com"})
			panic("unexpected")
		})
	})

	exists, _ := s.Accounts().ExistsByUsername(ctx, "bob")
	assert.False(t, exists)
}

func TestWithinTx_RollbackKeepsWritesOutsideTransaction(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")
	outside := make(chan error, 1)

	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		require.NoError(t, tx.Accounts().Create(ctx, &models.Account{Username: "inside", Email: "inside@example.com"}))

		go func() {
			outside <- s.Accounts().Create(context.Background(), &models.Account{Username: "outside", Email: "outside@example.com"})
		}()
		select {
		case err := <-outside:
			t.Errorf("write outside the transaction finished before it ended: %v", err)
			outside <- err
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-outside)

	_, err = s.Accounts().GetByUsername(ctx, "outside")
	assert.NoError(t, err)
	_, err = s.Accounts().GetByUsername(ctx, "inside")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context, inner repositories.Store) error {
			return inner.Accounts().Create(ctx, &models.Account{Username: "carol", Email: "carol@example.com"})
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, _ := s.Accounts().ExistsByUsername(ctx, "carol")
	assert.False(t, exists, "inner work must roll back with the outer transaction")
}

func TestAccounts_UniqueConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	newAccount(t, s, "dave", "dave@example.com")

	tests := []struct {
		name     string
		account  *models.Account
		contains string
	}{
		{"username", &models.Account{Username: "dave", Email: "other@example.com"}, "username"},
		{"email ignores case", &models.Account{Username: "dave2", Email: "DAVE@example.com"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Accounts().Create(ctx, tt.account)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindIntegrity, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestAccounts_DeleteCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := newAccount(t, s, "erin", "erin@example.com")

	subject := &models.Subject{Code: "CS101", Name: "Intro", Credits: 3}
	require.NoError(t, s.Subjects().Create(ctx, subject))
	student := &models.Student{AccountID: a.ID, FirstName: "Erin", LastName: "E", Email: a.Email,
		Department: models.DepartmentComputerScience, RollNumber: "24CS001"}
	require.NoError(t, s.Students().Create(ctx, student))
	require.NoError(t, s.Students().AddSubject(ctx, student.ID, subject.ID))
	require.NoError(t, s.Profiles().Create(ctx, &models.Profile{AccountID: a.ID}))

	require.NoError(t, s.Accounts().Delete(ctx, a.ID))

	_, err := s.Students().GetByID(ctx, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	_, err = s.Profiles().GetByAccountID(ctx, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	assert.Zero(t, s.EnrollmentCount(student.ID))

	_, err = s.Subjects().GetByCode(ctx, "CS101")
	assert.NoError(t, err, "subjects survive account deletion")
}

func TestSubjects_DeleteUnassignsFaculty(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := newAccount(t, s, "frank", "frank@example.com")

	subject := &models.Subject{Code: "CS201", Name: "Data Structures", Credits: 4}
	require.NoError(t, s.Subjects().Create(ctx, subject))
	faculty := &models.Faculty{AccountID: a.ID, FirstName: "Frank", LastName: "F", Email: a.Email, SubjectID: &subject.ID}
	require.NoError(t, s.Faculties().Create(ctx, faculty))

	got, err := s.Faculties().GetByID(ctx, faculty.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Subject)
	assert.Equal(t, "CS201", got.Subject.Code)

	require.NoError(t, s.Subjects().Delete(ctx, subject.ID))

	got, err = s.Faculties().GetByID(ctx, faculty.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SubjectID)
	assert.Nil(t, got.Subject)
}

func TestFaculties_SubjectHeldOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	subject := &models.Subject{Code: "CS301", Name: "Algorithms", Credits: 4}
	require.NoError(t, s.Subjects().Create(ctx, subject))

	a1 := newAccount(t, s, "g1", "g1@example.com")
	a2 := newAccount(t, s, "g2", "g2@example.com")
	f1 := &models.Faculty{AccountID: a1.ID, Email: a1.Email, SubjectID: &subject.ID}
	f2 := &models.Faculty{AccountID: a2.ID, Email: a2.Email}
	require.NoError(t, s.Faculties().Create(ctx, f1))
	require.NoError(t, s.Faculties().Create(ctx, f2))

	err := s.Faculties().SetSubject(ctx, f2.ID, &subject.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindIntegrity, apperrors.KindOf(err))
}

func TestStudents_ListFiltersAndPages(t *testing.T) {
	s := New()
	ctx := context.Background()
	rows := []struct {
		user string
		dept models.Department
		roll string
	}{
		{"h1", models.DepartmentComputerScience, "24CS001"},
		{"h2", models.DepartmentInformationTechnology, "24IT002"},
		{"h3", models.DepartmentComputerScience, "24CS003"},
	}
	for _, r := range rows {
		a := newAccount(t, s, r.user, r.user+"@example.com")
		require.NoError(t, s.Students().Create(ctx, &models.Student{
			AccountID: a.ID, FirstName: r.user, Email: a.Email, Department: r.dept, RollNumber: r.roll,
		}))
	}

	all, total, err := s.Students().List(ctx, repositories.StudentFilter{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 2)
	assert.Equal(t, "24CS001", all[0].RollNumber)

	cs, total, err := s.Students().List(ctx, repositories.StudentFilter{Department: models.DepartmentComputerScience})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, cs, 2)

	found, _, err := s.Students().List(ctx, repositories.StudentFilter{Search: "IT002"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "h2", found[0].FirstName)

	max, err := s.Students().MaxRollSequence(ctx, "24")
	require.NoError(t, err)
	assert.Equal(t, 3, max)
}

func TestSubjects_MaxCodeNumber(t *testing.T) {
	s := New()
	ctx := context.Background()

	max, err := s.Subjects().MaxCodeNumber(ctx)
	require.NoError(t, err)
	assert.Zero(t, max)

	for i, code := range []string{"CS101", "CS406", "CS020"} {
		require.NoError(t, s.Subjects().Create(ctx, &models.Subject{Code: code, Name: code + string(rune('a'+i)), Credits: 3}))
	}
	max, err = s.Subjects().MaxCodeNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 406, max)
}
