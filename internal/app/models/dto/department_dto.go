package dto

import "github.com/yigit/campusrecords/internal/app/models"

// DepartmentResponse describes a department and the subjects its students get.
type DepartmentResponse struct {
	Name     string   `json:"name" example:"Computer Science"`
	Code     string   `json:"code" example:"CS"`
	Subjects []string `json:"subjects" example:"CS101,CS201,CS301,CS302"`
}

// NewDepartmentResponses lists every department.
func NewDepartmentResponses() []DepartmentResponse {
	depts := models.Departments()
	out := make([]DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		out = append(out, DepartmentResponse{Name: string(d), Code: d.Code(), Subjects: d.DefaultSubjectCodes()})
	}
	return out
}
