package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

func TestUpdateFaculty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	xavier := f.registerFaculty(t, "xavier", "xavier@university.com")
	f.registerFaculty(t, "grey", "grey@university.com")
	f.createStudent(t, "kpryde", "kitty@university.com", models.DepartmentComputerScience)

	t.Run("names department and email", func(t *testing.T) {
		updated, err := f.faculties.UpdateFaculty(ctx, xavier.ID, &dto.UpdateFacultyRequest{
			FirstName:  ptr(" Charles "),
			Department: ptr("Mathematics"),
			Email:      ptr("Charles@University.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Charles", updated.FirstName)
		assert.Equal(t, "Mathematics", updated.Department)
		assert.Equal(t, "charles@university.com", updated.Email)

		account, err := f.store.Accounts().GetByID(ctx, xavier.AccountID)
		require.NoError(t, err)
		assert.Equal(t, "charles@university.com", account.Email)
	})

	tests := []struct {
		name  string
		req   *dto.UpdateFacultyRequest
		field string
	}{
		{"email of another faculty", &dto.UpdateFacultyRequest{Email: ptr("grey@university.com")}, "email"},
		{"email of a student", &dto.UpdateFacultyRequest{Email: ptr("kitty@university.com")}, "email"},
		{"blank last name", &dto.UpdateFacultyRequest{LastName: ptr("  ")}, "last_name"},
		{"blank department", &dto.UpdateFacultyRequest{Department: ptr("")}, "department"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.faculties.UpdateFaculty(ctx, xavier.ID, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

			var custom *apperrors.CustomError
			require.ErrorAs(t, err, &custom)
			assert.Equal(t, tt.field, custom.Field)
		})
	}

	_, err := f.faculties.UpdateFaculty(ctx, 9999, &dto.UpdateFacultyRequest{FirstName: ptr("Nobody")})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteFacultyKeepsSubject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	xavier := f.registerFaculty(t, "xavier", "xavier@university.com")

	_, err := f.enrollment.AssignFacultySubject(ctx, xavier.ID, "CS201")
	require.NoError(t, err)

	require.NoError(t, f.faculties.DeleteFaculty(ctx, xavier.ID))

	_, err = f.faculties.GetFaculty(ctx, xavier.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	_, err = f.store.Accounts().GetByID(ctx, xavier.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	subject, err := f.subjects.GetSubject(ctx, "CS201")
	require.NoError(t, err)
	assert.Nil(t, subject.Faculty)

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(f.faculties.DeleteFaculty(ctx, xavier.ID)))
}

func TestDeleteFacultyDiscardsProfilePicture(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	xavier := f.registerFaculty(t, "xavier", "xavier@university.com")
	grey := f.registerFaculty(t, "grey", "grey@university.com")

	picture := func() *filestorage.Upload {
		return &filestorage.Upload{Filename: "face.png", ContentType: "image/png", Size: 3, Content: strings.NewReader("png")}
	}
	profile, err := f.profiles.UpdateProfile(ctx, xavier.AccountID, &dto.UpdateProfileRequest{}, picture())
	require.NoError(t, err)
	require.NotNil(t, profile.PictureRef)
	ref := *profile.PictureRef
	_, err = f.profiles.UpdateProfile(ctx, grey.AccountID, &dto.UpdateProfileRequest{}, picture())
	require.NoError(t, err)

	require.NoError(t, f.faculties.DeleteFaculty(ctx, xavier.ID))
	assert.Equal(t, []string{ref}, f.storage.deleted)
	assert.False(t, f.storage.stored[ref])
	assert.Len(t, f.storage.stored, 1)

	_, err = f.store.Profiles().GetByAccountID(ctx, xavier.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	// a faculty without a picture leaves storage alone
	require.NoError(t, f.faculties.DeleteFaculty(ctx, f.registerFaculty(t, "summers", "summers@university.com").ID))
	assert.Len(t, f.storage.deleted, 1)
}

func TestListFaculties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"xavier", "grey", "summers"} {
		f.registerFaculty(t, name, name+"@university.com")
	}

	page, total, err := f.faculties.ListFaculties(ctx, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	rest, _, err := f.faculties.ListFaculties(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	_, err = f.faculties.GetFaculty(ctx, 0)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
