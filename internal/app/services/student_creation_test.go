package services

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
)

var rollNumberPattern = regexp.MustCompile(`^\d{2}[A-Z]{2}\d{3}$`)

func TestStudentCreation_ConcurrentRollNumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	departments := models.Departments()

	const workers = 24
	rolls := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			username := fmt.Sprintf("student%02d", i)
			dept := string(departments[i%len(departments)])

			if i%2 == 0 {
				var s *models.Student
				s, errs[i] = f.students.CreateStudent(ctx, &dto.CreateStudentRequest{
					Username:   username,
					Password:   "password123",
					Email:      username + "@example.com",
					FirstName:  "First",
					LastName:   username,
					Department: dept,
				})
				if s != nil {
					rolls[i] = s.RollNumber
				}
				return
			}

			_, errs[i] = f.auth.Register(ctx, &dto.RegisterRequest{
				Username:   username,
				Email:      username + "@example.com",
				Password:   "password123",
				Role:       "student",
				FirstName:  "First",
				LastName:   username,
				Department: dept,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	students, total, err := f.store.Students().List(ctx, repositories.StudentFilter{Limit: workers * 2})
	require.NoError(t, err)
	require.EqualValues(t, workers, total)

	seen := map[string]bool{}
	sequences := map[string]bool{}
	for _, s := range students {
		assert.Regexp(t, rollNumberPattern, s.RollNumber)
		assert.False(t, seen[s.RollNumber], "duplicate roll number %s", s.RollNumber)
		seen[s.RollNumber] = true
		sequences[s.RollNumber[4:]] = true
	}
	assert.Len(t, sequences, workers, "sequence is shared across departments")

	for i, roll := range rolls {
		if roll != "" {
			assert.True(t, seen[roll], "worker %d roll %s not persisted", i, roll)
		}
	}
}

// exhaustRollSequence stores a student holding the last roll number of 2024.
func exhaustRollSequence(t *testing.T, f *fixture) *models.Account {
	t.Helper()
	ctx := context.Background()
	account := &models.Account{Username: "last", Email: "last@example.com", PasswordHash: "x", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, f.store.Accounts().Create(ctx, account))
	require.NoError(t, f.store.Students().Create(ctx, &models.Student{
		AccountID:  account.ID,
		FirstName:  "Last",
		LastName:   "Student",
		Email:      account.Email,
		Department: models.DepartmentInformationTechnology,
		RollNumber: "24IT999",
	}))
	return account
}

func assertNothingPersistedFor(t *testing.T, f *fixture, username, email string, nextAccountID int64) {
	t.Helper()
	ctx := context.Background()

	exists, err := f.store.Accounts().ExistsByUsername(ctx, username)
	require.NoError(t, err)
	assert.False(t, exists, "account left behind")

	exists, err = f.store.Accounts().ExistsByEmail(ctx, email)
	require.NoError(t, err)
	assert.False(t, exists, "account email left behind")

	exists, err = f.store.Students().ExistsByEmail(ctx, email, 0)
	require.NoError(t, err)
	assert.False(t, exists, "student left behind")

	_, err = f.store.Profiles().GetByAccountID(ctx, nextAccountID)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound, "profile left behind")
}

func TestStudentCreation_FailureAfterAccountInsertRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		create func(f *fixture) error
	}{
		{
			name: "registration",
			create: func(f *fixture) error {
				_, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
					Username:   "late",
					Email:      "late@example.com",
					Password:   "password123",
					Role:       "student",
					FirstName:  "Late",
					LastName:   "Comer",
					Department: "Computer Science",
				})
				return err
			},
		},
		{
			name: "faculty-initiated creation",
			create: func(f *fixture) error {
				_, err := f.students.CreateStudent(context.Background(), &dto.CreateStudentRequest{
					Username:   "late",
					Password:   "password123",
					Email:      "late@example.com",
					FirstName:  "Late",
					LastName:   "Comer",
					Department: "Computer Science",
				})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			filler := exhaustRollSequence(t, f)

			err := tt.create(f)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindState, apperrors.KindOf(err))

			assertNothingPersistedFor(t, f, "late", "late@example.com", filler.ID+1)

			_, total, err := f.store.Students().List(context.Background(), repositories.StudentFilter{})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestCreateStudent_DuplicateEmailPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createStudent(t, "first", "same@example.com", models.DepartmentComputerScience)
	f.registerFaculty(t, "xavier", "xavier@university.com")
	before := len(f.publisher.types())

	for _, email := range []string{"SAME@example.com", "xavier@university.com"} {
		t.Run(email, func(t *testing.T) {
			_, err := f.students.CreateStudent(ctx, &dto.CreateStudentRequest{
				Username:   "second",
				Password:   "password123",
				Email:      email,
				FirstName:  "Second",
				LastName:   "Student",
				Department: "Software Engineering",
			})
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

			exists, err := f.store.Accounts().ExistsByUsername(ctx, "second")
			require.NoError(t, err)
			assert.False(t, exists)

			_, total, err := f.store.Students().List(ctx, repositories.StudentFilter{})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
		})
	}
	assert.Len(t, f.publisher.types(), before)
}
