package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleTransitions(t *testing.T) {
	tests := []struct {
		from, to Role
		ok       bool
	}{
		{RoleUnassigned, RoleStudent, true},
		{RoleUnassigned, RoleFaculty, true},
		{RoleStudent, RoleFaculty, true},
		{RoleFaculty, RoleStudent, false},
		{RoleStudent, RoleUnassigned, false},
		{RoleFaculty, RoleFaculty, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestParseRegistrationRole(t *testing.T) {
	r, err := ParseRegistrationRole("faculty")
	require.NoError(t, err)
	assert.Equal(t, RoleFaculty, r)

	_, err = ParseRegistrationRole("admin")
	assert.Error(t, err)
}

func TestDepartments(t *testing.T) {
	assert.Equal(t, "CS", DepartmentComputerScience.Code())
	assert.Equal(t, "IT", DepartmentInformationTechnology.Code())
	assert.Equal(t, "SE", DepartmentSoftwareEngineering.Code())
	assert.Equal(t, []string{"CS101", "CS201", "CS301", "CS302"}, DepartmentComputerScience.DefaultSubjectCodes())

	codes := DepartmentComputerScience.DefaultSubjectCodes()
	codes[0] = "CS999"
	assert.Equal(t, "CS101", DepartmentComputerScience.DefaultSubjectCodes()[0])

	_, err := ParseDepartment("Mechanical Engineering")
	assert.Error(t, err)
	assert.Len(t, Departments(), 3)
}

func TestRoleBinding(t *testing.T) {
	var b RoleBinding = StudentBinding{Student: &Student{ID: 1}}
	assert.Equal(t, RoleStudent, b.Role())
	assert.Equal(t, RoleFaculty, FacultyBinding{}.Role())
	assert.Equal(t, RoleUnassigned, UnassignedBinding{}.Role())
}
