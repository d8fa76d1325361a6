package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/events"
)

func TestRegister_Student(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, &dto.RegisterRequest{
		Username:   "kpryde",
		Email:      "Kitty@University.com",
		Password:   "password123",
		Role:       "student",
		FirstName:  "Kitty",
		LastName:   "Pryde",
		Department: "Computer Science",
	})
	require.NoError(t, err)
	assert.Equal(t, "student", resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	account, binding, err := f.auth.Me(ctx, mustAccount(t, f, "kpryde").ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, "kitty@university.com", account.Email)

	sb, ok := binding.(models.StudentBinding)
	require.True(t, ok)
	assert.Equal(t, "24CS001", sb.Student.RollNumber)

	subjects, err := f.enrollment.ListStudentSubjects(ctx, sb.Student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101", "CS201", "CS301", "CS302"}, subjectCodes(subjects))

	profile, err := f.store.Profiles().GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitty", profile.FirstName)

	assert.Equal(t, []events.Type{events.AccountRegistered, events.StudentCreated}, f.publisher.types())
}

func TestRegister_FacultyDefaultsDepartment(t *testing.T) {
	f := newFixture(t)
	faculty := f.registerFaculty(t, "xavier", "prof.xavier@university.com")

	assert.Equal(t, models.DefaultFacultyDepartment, faculty.Department)
	assert.Nil(t, faculty.SubjectID)
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		req   dto.RegisterRequest
		field string
	}{
		{
			name:  "unknown role",
			req:   dto.RegisterRequest{Username: "u1", Email: "u1@example.com", Password: "password123", Role: "admin", FirstName: "A", LastName: "B"},
			field: "role",
		},
		{
			name:  "student without department",
			req:   dto.RegisterRequest{Username: "u2", Email: "u2@example.com", Password: "password123", Role: "student", FirstName: "A", LastName: "B"},
			field: "department",
		},
		{
			name:  "short password",
			req:   dto.RegisterRequest{Username: "u3", Email: "u3@example.com", Password: "short", Role: "faculty", FirstName: "A", LastName: "B"},
			field: "password",
		},
		{
			name:  "bad username",
			req:   dto.RegisterRequest{Username: "has space", Email: "u4@example.com", Password: "password123", Role: "faculty", FirstName: "A", LastName: "B"},
			field: "username",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.auth.Register(context.Background(), &tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

			var ce *apperrors.CustomError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestRegister_DuplicateEmailPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createStudent(t, "first", "same@example.com", models.DepartmentComputerScience)

	_, err := f.auth.Register(ctx, &dto.RegisterRequest{
		Username:   "second",
		Email:      "SAME@example.com",
		Password:   "password123",
		Role:       "student",
		FirstName:  "Second",
		LastName:   "Student",
		Department: "Computer Science",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	exists, err := f.store.Accounts().ExistsByUsername(ctx, "second")
	require.NoError(t, err)
	assert.False(t, exists)

	students, total, err := f.store.Students().List(ctx, repositories.StudentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, students, 1)
}

func TestLoginRefreshLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registerFaculty(t, "storm", "prof.storm@university.com")

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Username: "storm", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	tokens, err := f.auth.Login(ctx, &dto.LoginRequest{Username: "storm", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "faculty", tokens.Role)

	account := mustAccount(t, f, "storm")
	assert.NotNil(t, account.LastLoginAt)

	rotated, err := f.auth.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = f.auth.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	require.NoError(t, f.auth.Logout(ctx, rotated.RefreshToken))
	_, err = f.auth.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = f.auth.Refresh(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	assert.Equal(t, apperrors.KindAuthentication, apperrors.KindOf(err))
}

func mustAccount(t *testing.T, f *fixture, username string) *models.Account {
	t.Helper()
	account, err := f.store.Accounts().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return account
}
