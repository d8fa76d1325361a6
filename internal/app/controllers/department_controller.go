package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusrecords/internal/app/models/dto"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DepartmentController serves the department listing and the health probe
type DepartmentController struct {
	db Pinger
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(db Pinger) *DepartmentController {
	return &DepartmentController{db: db}
}

// ListDepartments returns every department with its code and default subjects
// @Summary List departments
// @Tags departments
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.DepartmentResponse} "Departments"
// @Router /departments [get]
func (c *DepartmentController) ListDepartments(ctx *gin.Context) {
	respond(ctx, http.StatusOK, dto.NewDepartmentResponses(), "")
}

// Health reports service and database status
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Healthy"
// @Failure 503 {object} dto.HealthResponse "Database unreachable"
// @Router /health [get]
func (c *DepartmentController) Health(ctx *gin.Context) {
	if err := c.db.Ping(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: "ok"})
}
