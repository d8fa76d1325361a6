package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/campusrecords/internal/app/auth"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/app/services"
	"github.com/yigit/campusrecords/internal/middleware"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
	"github.com/yigit/campusrecords/internal/pkg/helpers"
)

// StudentController handles student records: self-service for students and
// management for faculty.
type StudentController struct {
	studentService    services.StudentService
	enrollmentService services.EnrollmentService
	authz             *appauth.AuthorizationService
	storage           filestorage.BlobStorage
	logger            zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(
	studentService services.StudentService,
	enrollmentService services.EnrollmentService,
	authz *appauth.AuthorizationService,
	storage filestorage.BlobStorage,
	logger zerolog.Logger,
) *StudentController {
	return &StudentController{
		studentService:    studentService,
		enrollmentService: enrollmentService,
		authz:             authz,
		storage:           storage,
		logger:            logger.With().Str("controller", "student").Logger(),
	}
}

// ownStudent resolves the caller's student record or aborts.
func (c *StudentController) ownStudent(ctx *gin.Context) (*models.Student, bool) {
	accountID, ok := currentAccountID(ctx)
	if !ok {
		return nil, false
	}
	student, err := c.authz.StudentOf(ctx.Request.Context(), accountID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	return student, true
}

func (c *StudentController) render(s *models.Student) dto.StudentResponse {
	return dto.NewStudentResponse(s, c.storage.URLFor)
}

// GetMyStudent returns the caller's student record
// @Summary Get my student record
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student record"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Router /me/student [get]
func (c *StudentController) GetMyStudent(ctx *gin.Context) {
	own, ok := c.ownStudent(ctx)
	if !ok {
		return
	}
	student, err := c.studentService.GetStudent(ctx.Request.Context(), own.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.render(student), "")
}

// UpdateMyStudent applies a partial update to the caller's student record
// @Summary Update my student record
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Router /me/student [patch]
func (c *StudentController) UpdateMyStudent(ctx *gin.Context) {
	own, ok := c.ownStudent(ctx)
	if !ok {
		return
	}
	c.update(ctx, own.ID)
}

// MySubjects lists the caller's subjects with the faculty teaching each
// @Summary List my subjects
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Enrolled subjects"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Router /me/student/subjects [get]
func (c *StudentController) MySubjects(ctx *gin.Context) {
	own, ok := c.ownStudent(ctx)
	if !ok {
		return
	}
	subjects, err := c.enrollmentService.ListStudentSubjects(ctx.Request.Context(), own.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewSubjectResponses(subjects), "")
}

// UpdateMyPicture replaces the caller's student picture
// @Summary Upload my student picture
// @Tags students
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param picture formData file true "Picture (jpg, jpeg, png, gif, webp)"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Picture updated"
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Router /me/student/picture [put]
func (c *StudentController) UpdateMyPicture(ctx *gin.Context) {
	own, ok := c.ownStudent(ctx)
	if !ok {
		return
	}
	upload, closeUpload, err := formUpload(ctx)
	defer closeUpload()
	if err == nil && upload == nil {
		err = apperrors.NewFieldValidationError(pictureField, "picture is required")
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.UpdatePicture(ctx.Request.Context(), own.ID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.render(student), "Picture updated")
}

// ListStudents returns one page of students
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department name"
// @Param search query string false "Matches roll number, name or email"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.StudentResponse}} "Students"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Faculty only"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	var query dto.ListStudentsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	offset, limit := helpers.CalculateOffsetLimit(query.Page, query.Size)
	students, total, err := c.studentService.ListStudents(ctx.Request.Context(), repositories.StudentFilter{
		Department: models.Department(query.Department),
		Search:     query.Search,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      dto.NewStudentResponses(students, c.storage.URLFor),
		Pagination: helpers.NewPaginationInfo(total, query.Page, limit),
	}, "")
}

// CreateStudent creates a student account
// @Summary Create a student
// @Description Creates the account, the student record with its roll number and department subjects, and an empty profile in one transaction.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Student created"
// @Failure 400 {object} dto.ErrorResponse "Invalid field or email/username taken"
// @Failure 403 {object} dto.ErrorResponse "Faculty only"
// @Failure 409 {object} dto.ErrorResponse "Roll number sequence exhausted or conflicting record"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, c.render(student), "Student created")
}

// GetStudent returns a student by id
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student"
// @Failure 403 {object} dto.ErrorResponse "Faculty only"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.render(student), "")
}

// UpdateStudent applies a partial update to a student
// @Summary Update a student
// @Description A department change re-runs the department subject assignment.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [patch]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	c.update(ctx, id)
}

func (c *StudentController) update(ctx *gin.Context, id int64) {
	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}
	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, c.render(student), "Student updated")
}

// DeleteStudent removes a student with its account
// @Summary Delete a student
// @Description Removes the student, its enrollments, its profile and its account.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Student deleted"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.studentService.DeleteStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Student deleted")
}

// AssignDepartmentSubjects resets a student's enrollments to its department list
// @Summary Assign department subjects
// @Tags enrollment
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Subjects assigned"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/department-subjects [post]
func (c *StudentController) AssignDepartmentSubjects(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	subjects, err := c.enrollmentService.AssignSubjectsForDepartment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewSubjectResponses(subjects), "Subjects assigned")
}

// PromoteStudent turns a student into a faculty
// @Summary Promote a student to faculty
// @Description Atomically replaces the student record with a faculty record of the same account.
// @Tags enrollment
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Student promoted"
// @Failure 400 {object} dto.ErrorResponse "A faculty already uses this email"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Role cannot change"
// @Router /students/{id}/promote [post]
func (c *StudentController) PromoteStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	faculty, err := c.enrollmentService.PromoteStudentToFaculty(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewFacultyResponse(faculty), "Student promoted to faculty")
}

// AssignToFaculty enrolls a student in the subject a faculty teaches
// @Summary Enroll a student in a faculty's subject
// @Tags enrollment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param request body dto.AssignToFacultyRequest true "Faculty"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Student enrolled"
// @Failure 404 {object} dto.ErrorResponse "Student or faculty not found"
// @Failure 409 {object} dto.ErrorResponse "Faculty has no subject"
// @Router /students/{id}/assign [post]
func (c *StudentController) AssignToFaculty(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignToFacultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}
	subject, err := c.enrollmentService.AssignStudentToFacultySubject(ctx.Request.Context(), id, req.FacultyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewSubjectResponse(subject), "Student enrolled")
}
