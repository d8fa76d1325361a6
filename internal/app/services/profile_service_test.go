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

func TestGetOrCreateProfile_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := &models.Account{Username: "bare", Email: "bare@example.com", PasswordHash: "x", Role: models.RoleUnassigned, IsActive: true}
	require.NoError(t, f.store.Accounts().Create(ctx, account))

	first, err := f.profiles.GetOrCreateProfile(ctx, account.ID)
	require.NoError(t, err)
	second, err := f.profiles.GetOrCreateProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = f.profiles.GetOrCreateProfile(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	faculty := f.registerFaculty(t, "rogue", "prof.rogue@university.com")

	profile, err := f.profiles.UpdateProfile(ctx, faculty.AccountID, &dto.UpdateProfileRequest{
		FirstName:   ptr("Anna"),
		DateOfBirth: ptr("1990-05-17"),
		BloodGroup:  ptr("O+"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Anna", profile.FirstName)
	require.NotNil(t, profile.DateOfBirth)
	assert.Equal(t, "1990-05-17", profile.DateOfBirth.Format("2006-01-02"))
	require.NotNil(t, profile.BloodGroup)
	assert.Equal(t, "O+", *profile.BloodGroup)

	// a profile is independent from the faculty record
	reloaded, err := f.faculties.GetFaculty(ctx, faculty.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prof", reloaded.FirstName)
}

func TestUpdateProfile_BadDateNamesFormat(t *testing.T) {
	f := newFixture(t)
	faculty := f.registerFaculty(t, "rogue", "prof.rogue@university.com")

	_, err := f.profiles.UpdateProfile(context.Background(), faculty.AccountID, &dto.UpdateProfileRequest{
		DateOfBirth: ptr("17.05.1990"),
	}, nil)
	require.Error(t, err)

	var ce *apperrors.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, apperrors.KindValidation, ce.Kind)
	assert.Equal(t, "date_of_birth", ce.Field)
	assert.Contains(t, ce.Message, "YYYY-MM-DD")
}

func TestUpdateProfile_InvalidRequestCreatesNoProfile(t *testing.T) {
	tests := []struct {
		name  string
		req   *dto.UpdateProfileRequest
		field string
	}{
		{"bad date of birth", &dto.UpdateProfileRequest{FirstName: ptr("Anna"), DateOfBirth: ptr("1990/05/17")}, "date_of_birth"},
		{"unknown gender", &dto.UpdateProfileRequest{Gender: ptr("Robot")}, "gender"},
		{"unknown blood group", &dto.UpdateProfileRequest{BloodGroup: ptr("C+")}, "blood_group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			account := &models.Account{Username: "bare", Email: "bare@example.com", PasswordHash: "x", Role: models.RoleUnassigned, IsActive: true}
			require.NoError(t, f.store.Accounts().Create(ctx, account))

			picture := &filestorage.Upload{Filename: "face.jpg", ContentType: "image/jpeg", Size: 4, Content: strings.NewReader("jpeg")}
			_, err := f.profiles.UpdateProfile(ctx, account.ID, tt.req, picture)
			require.Error(t, err)

			var ce *apperrors.CustomError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)

			_, err = f.store.Profiles().GetByAccountID(ctx, account.ID)
			assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
			assert.Empty(t, f.storage.stored)
		})
	}
}

func TestUpdateProfile_PictureReplacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	faculty := f.registerFaculty(t, "rogue", "prof.rogue@university.com")

	picture := func() *filestorage.Upload {
		return &filestorage.Upload{Filename: "face.jpg", ContentType: "image/jpeg", Size: 4, Content: strings.NewReader("jpeg")}
	}

	first, err := f.profiles.UpdateProfile(ctx, faculty.AccountID, &dto.UpdateProfileRequest{}, picture())
	require.NoError(t, err)
	require.NotNil(t, first.PictureRef)
	firstRef := *first.PictureRef
	assert.True(t, strings.HasPrefix(firstRef, "profiles/"))
	assert.Empty(t, f.storage.deleted)

	second, err := f.profiles.UpdateProfile(ctx, faculty.AccountID, &dto.UpdateProfileRequest{}, picture())
	require.NoError(t, err)
	assert.NotEqual(t, firstRef, *second.PictureRef)
	assert.Equal(t, []string{firstRef}, f.storage.deleted)
}
