package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
)

func TestCreateSubject_GeneratesIncreasingCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.subjects.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Compilers", Credits: 3})
	require.NoError(t, err)
	assert.Equal(t, "CS405", first.Code)

	second, err := f.subjects.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Graphics", Credits: 3})
	require.NoError(t, err)
	assert.Equal(t, "CS406", second.Code)

	explicit, err := f.subjects.CreateSubject(ctx, &dto.CreateSubjectRequest{Code: "cs500", Name: "Research Seminar", Credits: 1})
	require.NoError(t, err)
	assert.Equal(t, "CS500", explicit.Code)

	third, err := f.subjects.CreateSubject(ctx, &dto.CreateSubjectRequest{Name: "Robotics", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, "CS501", third.Code)
}

func TestCreateSubject_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		req   dto.CreateSubjectRequest
		field string
	}{
		{"duplicate name", dto.CreateSubjectRequest{Name: "Algorithms", Credits: 3}, "name"},
		{"duplicate code", dto.CreateSubjectRequest{Code: "CS101", Name: "Something New", Credits: 3}, "code"},
		{"malformed code", dto.CreateSubjectRequest{Code: "MA101", Name: "Calculus", Credits: 3}, "code"},
		{"blank name", dto.CreateSubjectRequest{Name: "  ", Credits: 3}, "name"},
		{"zero credits", dto.CreateSubjectRequest{Name: "Calculus"}, "credits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.subjects.CreateSubject(context.Background(), &tt.req)
			require.Error(t, err)
			var ce *apperrors.CustomError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, apperrors.KindValidation, ce.Kind)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestUpdateSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.subjects.UpdateSubject(ctx, "CS101", &dto.UpdateSubjectRequest{
		Name:    ptr("Programming I"),
		Credits: ptr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "CS101", updated.Code)
	assert.Equal(t, "Programming I", updated.Name)
	assert.Equal(t, 4, updated.Credits)

	_, err = f.subjects.UpdateSubject(ctx, "CS101", &dto.UpdateSubjectRequest{Name: ptr("Algorithms")})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	// keeping its own name is fine
	_, err = f.subjects.UpdateSubject(ctx, "CS301", &dto.UpdateSubjectRequest{Name: ptr("Algorithms")})
	assert.NoError(t, err)

	_, err = f.subjects.UpdateSubject(ctx, "CS999", &dto.UpdateSubjectRequest{Credits: ptr(2)})
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)
}

func TestDeleteSubject_UnassignsFaculty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	faculty := f.registerFaculty(t, "beast", "prof.beast@university.com")
	_, err := f.enrollment.AssignFacultySubject(ctx, faculty.ID, "CS403")
	require.NoError(t, err)

	subject, err := f.subjects.GetSubject(ctx, "CS403")
	require.NoError(t, err)
	require.NotNil(t, subject.Faculty)
	assert.Equal(t, faculty.ID, subject.Faculty.ID)

	require.NoError(t, f.subjects.DeleteSubject(ctx, "CS403"))

	reloaded, err := f.faculties.GetFaculty(ctx, faculty.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.SubjectID)

	_, err = f.subjects.GetSubject(ctx, "CS403")
	assert.ErrorIs(t, err, apperrors.ErrSubjectNotFound)
}

func TestListSubjects_IncludesFaculty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	faculty := f.registerFaculty(t, "storm", "prof.storm@university.com")
	_, err := f.enrollment.AssignFacultySubject(ctx, faculty.ID, "CS201")
	require.NoError(t, err)

	subjects, err := f.subjects.ListSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, len(catalog))
	for _, s := range subjects {
		if s.Code == "CS201" {
			require.NotNil(t, s.Faculty)
			assert.Equal(t, faculty.ID, s.Faculty.ID)
		} else {
			assert.Nil(t, s.Faculty, s.Code)
		}
	}
}
