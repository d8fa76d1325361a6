package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/campusrecords/internal/app/auth"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/services"
	"github.com/yigit/campusrecords/internal/middleware"
	"github.com/yigit/campusrecords/internal/pkg/helpers"
)

// FacultyController handles faculty-related operations
type FacultyController struct {
	facultyService    services.FacultyService
	enrollmentService services.EnrollmentService
	authz             *appauth.AuthorizationService
	logger            zerolog.Logger
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(
	facultyService services.FacultyService,
	enrollmentService services.EnrollmentService,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *FacultyController {
	return &FacultyController{
		facultyService:    facultyService,
		enrollmentService: enrollmentService,
		authz:             authz,
		logger:            logger.With().Str("controller", "faculty").Logger(),
	}
}

func (c *FacultyController) ownFaculty(ctx *gin.Context) (*models.Faculty, bool) {
	accountID, ok := currentAccountID(ctx)
	if !ok {
		return nil, false
	}
	faculty, err := c.authz.FacultyOf(ctx.Request.Context(), accountID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	return faculty, true
}

// GetMyFaculty returns the caller's faculty record
// @Summary Get my faculty record
// @Tags faculties
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty record"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a faculty"
// @Router /me/faculty [get]
func (c *FacultyController) GetMyFaculty(ctx *gin.Context) {
	faculty, ok := c.ownFaculty(ctx)
	if !ok {
		return
	}
	respond(ctx, http.StatusOK, dto.NewFacultyResponse(faculty), "")
}

// UpdateMyFaculty applies a partial update to the caller's faculty record
// @Summary Update my faculty record
// @Tags faculties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateFacultyRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a faculty"
// @Router /me/faculty [patch]
func (c *FacultyController) UpdateMyFaculty(ctx *gin.Context) {
	own, ok := c.ownFaculty(ctx)
	if !ok {
		return
	}
	var req dto.UpdateFacultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}
	faculty, err := c.facultyService.UpdateFaculty(ctx.Request.Context(), own.ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewFacultyResponse(faculty), "Faculty updated")
}

// AssignMySubject claims a subject for the caller
// @Summary Claim a subject
// @Description A faculty teaches at most one subject. Claiming the same subject again is a no-op; any other change is refused.
// @Tags faculties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignSubjectRequest true "Subject code"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Subject assigned"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject code"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Failure 409 {object} dto.ErrorResponse "Faculty already teaches another subject or subject taken"
// @Router /me/faculty/subject [put]
func (c *FacultyController) AssignMySubject(ctx *gin.Context) {
	own, ok := c.ownFaculty(ctx)
	if !ok {
		return
	}
	var req dto.AssignSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}
	faculty, err := c.enrollmentService.AssignFacultySubject(ctx.Request.Context(), own.ID, req.SubjectCode)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewFacultyResponse(faculty), "Subject assigned")
}

// ListFaculties returns one page of faculties
// @Summary List faculties
// @Tags faculties
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacultyResponse}} "Faculties"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /faculties [get]
func (c *FacultyController) ListFaculties(ctx *gin.Context) {
	var query dto.PageQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	offset, limit := helpers.CalculateOffsetLimit(query.Page, query.Size)
	faculties, total, err := c.facultyService.ListFaculties(ctx.Request.Context(), offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      dto.NewFacultyResponses(faculties),
		Pagination: helpers.NewPaginationInfo(total, query.Page, limit),
	}, "")
}

// GetFaculty returns a faculty by id
// @Summary Get a faculty
// @Tags faculties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Router /faculties/{id} [get]
func (c *FacultyController) GetFaculty(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	faculty, err := c.facultyService.GetFaculty(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewFacultyResponse(faculty), "")
}

// DeleteFaculty removes a faculty with its account
// @Summary Delete a faculty
// @Description Superuser only. The subject the faculty taught stays in the catalog, unassigned.
// @Tags faculties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Faculty deleted"
// @Failure 403 {object} dto.ErrorResponse "Superuser only"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Router /faculties/{id} [delete]
func (c *FacultyController) DeleteFaculty(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.facultyService.DeleteFaculty(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Faculty deleted")
}
