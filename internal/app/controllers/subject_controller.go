package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/services"
	"github.com/yigit/campusrecords/internal/middleware"
)

// SubjectController handles the subject catalog
type SubjectController struct {
	subjectService services.SubjectService
	logger         zerolog.Logger
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService services.SubjectService, logger zerolog.Logger) *SubjectController {
	return &SubjectController{
		subjectService: subjectService,
		logger:         logger.With().Str("controller", "subject").Logger(),
	}
}

func codeParam(ctx *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(ctx.Param("code")))
}

// ListSubjects returns the catalog
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectResponse} "Subjects ordered by code"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /subjects [get]
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.subjectService.ListSubjects(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewSubjectResponses(subjects), "")
}

// GetSubject returns a subject by code
// @Summary Get a subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param code path string true "Subject code" example(CS101)
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{code} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	subject, err := c.subjectService.GetSubject(ctx.Request.Context(), codeParam(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewSubjectResponse(subject), "")
}

// CreateSubject adds a subject to the catalog
// @Summary Create a subject
// @Description Without a code the next free CS### code is generated.
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubjectRequest true "Subject"
// @Success 201 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject created"
// @Failure 400 {object} dto.ErrorResponse "Invalid field, duplicate name or code"
// @Failure 403 {object} dto.ErrorResponse "Faculty only"
// @Router /subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}
	subject, err := c.subjectService.CreateSubject(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, dto.NewSubjectResponse(subject), "Subject created")
}

// UpdateSubject changes a subject's name, description or credits
// @Summary Update a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Subject code" example(CS101)
// @Param request body dto.UpdateSubjectRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectResponse} "Subject updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{code} [patch]
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}
	subject, err := c.subjectService.UpdateSubject(ctx.Request.Context(), codeParam(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewSubjectResponse(subject), "Subject updated")
}

// DeleteSubject removes a subject
// @Summary Delete a subject
// @Description Its faculty becomes unassigned and its enrollments are removed.
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param code path string true "Subject code" example(CS101)
// @Success 200 {object} dto.APIResponse "Subject deleted"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{code} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	if err := c.subjectService.DeleteSubject(ctx.Request.Context(), codeParam(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Subject deleted")
}
