package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintClassification(t *testing.T) {
	unique := fmt.Errorf("insert student: %w", &pgconn.PgError{Code: "23505", ConstraintName: "students_roll_number_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "student_subjects_subject_id_fkey"}

	assert.True(t, IsDuplicateConstraintError(unique, "students_roll_number_key"))
	assert.False(t, IsDuplicateConstraintError(unique, "students_email_key"))

	name, ok := IsUniqueViolation(unique)
	assert.True(t, ok)
	assert.Equal(t, "students_roll_number_key", name)

	_, ok = IsUniqueViolation(fk)
	assert.False(t, ok)

	name, ok = IsForeignKeyViolation(fk)
	assert.True(t, ok)
	assert.Equal(t, "student_subjects_subject_id_fkey", name)

	_, ok = IsForeignKeyViolation(errors.New("plain"))
	assert.False(t, ok)
}
