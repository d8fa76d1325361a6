package models

import "fmt"

// Department is the closed set of academic departments a Student may belong to.
type Department string

const (
	DepartmentComputerScience       Department = "Computer Science"
	DepartmentInformationTechnology Department = "Information Technology"
	DepartmentSoftwareEngineering   Department = "Software Engineering"
)

type departmentInfo struct {
	code     string
	subjects []string
}

var departments = map[Department]departmentInfo{
	DepartmentComputerScience:       {code: "CS", subjects: []string{"CS101", "CS201", "CS301", "CS302"}},
	DepartmentInformationTechnology: {code: "IT", subjects: []string{"CS101", "CS301", "CS402", "CS403"}},
	DepartmentSoftwareEngineering:   {code: "SE", subjects: []string{"CS101", "CS201", "CS402", "CS404"}},
}

// Departments lists every department in display order.
func Departments() []Department {
	return []Department{
		DepartmentComputerScience,
		DepartmentInformationTechnology,
		DepartmentSoftwareEngineering,
	}
}

// ParseDepartment validates a department name.
func ParseDepartment(name string) (Department, error) {
	d := Department(name)
	if _, ok := departments[d]; !ok {
		return "", fmt.Errorf("unknown department %q", name)
	}
	return d, nil
}

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	_, ok := departments[d]
	return ok
}

// Code is the two-letter code embedded in roll numbers.
func (d Department) Code() string {
	return departments[d].code
}

// DefaultSubjectCodes is the fixed subject list a student of d is enrolled in.
func (d Department) DefaultSubjectCodes() []string {
	codes := departments[d].subjects
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}
