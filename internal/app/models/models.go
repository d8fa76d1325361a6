package models

import "fmt"

// Role is the academic classification of an Account. An account holds at most one role record.
type Role string

const (
	RoleUnassigned Role = "UNASSIGNED"
	RoleStudent    Role = "STUDENT"
	RoleFaculty    Role = "FACULTY"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUnassigned, RoleStudent, RoleFaculty:
		return true
	}
	return false
}

// CanTransitionTo encodes the role state machine: Unassigned may become Student or
// Faculty, Student may be promoted to Faculty, nothing else moves.
func (r Role) CanTransitionTo(next Role) bool {
	switch r {
	case RoleUnassigned:
		return next == RoleStudent || next == RoleFaculty
	case RoleStudent:
		return next == RoleFaculty
	}
	return false
}

// ParseRegistrationRole accepts the lower-case role names used by the registration form.
func ParseRegistrationRole(s string) (Role, error) {
	switch s {
	case "student", string(RoleStudent):
		return RoleStudent, nil
	case "faculty", string(RoleFaculty):
		return RoleFaculty, nil
	}
	return "", fmt.Errorf("unknown role %q, expected student or faculty", s)
}

// RoleBinding is an Account's role resolved to its record: exactly one of
// StudentBinding, FacultyBinding or UnassignedBinding.
type RoleBinding interface {
	Role() Role
	isRoleBinding()
}

// StudentBinding carries the student record of a STUDENT account.
type StudentBinding struct{ Student *Student }

// FacultyBinding carries the faculty record of a FACULTY account.
type FacultyBinding struct{ Faculty *Faculty }

// UnassignedBinding is an account with no role record.
type UnassignedBinding struct{}

func (StudentBinding) Role() Role    { return RoleStudent }
func (FacultyBinding) Role() Role    { return RoleFaculty }
func (UnassignedBinding) Role() Role { return RoleUnassigned }

func (StudentBinding) isRoleBinding()    {}
func (FacultyBinding) isRoleBinding()    {}
func (UnassignedBinding) isRoleBinding() {}
