package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/services"
	"github.com/yigit/campusrecords/internal/middleware"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// ProfileController serves the authenticated account's personal profile
type ProfileController struct {
	profileService services.ProfileService
	storage        filestorage.BlobStorage
	logger         zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.ProfileService, storage filestorage.BlobStorage, logger zerolog.Logger) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		storage:        storage,
		logger:         logger.With().Str("controller", "profile").Logger(),
	}
}

// GetProfile returns the caller's profile, creating it on first access
// @Summary Get my profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /me/profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	accountID, ok := currentAccountID(ctx)
	if !ok {
		return
	}

	profile, err := c.profileService.GetOrCreateProfile(ctx.Request.Context(), accountID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewProfileResponse(profile, c.storage.URLFor), "")
}

// UpdateProfile applies a partial update to the caller's profile
// @Summary Update my profile
// @Description Accepts JSON, or multipart/form-data with an optional picture file. Dates use YYYY-MM-DD.
// @Tags profile
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest false "Profile fields"
// @Param picture formData file false "Profile picture"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me/profile [put]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	accountID, ok := currentAccountID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	var picture *filestorage.Upload
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		if err := ctx.ShouldBind(&req); err != nil {
			middleware.AbortWithBindingError(ctx, err)
			return
		}
		upload, closeUpload, err := formUpload(ctx)
		defer closeUpload()
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		picture = upload
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	profile, err := c.profileService.UpdateProfile(ctx.Request.Context(), accountID, &req, picture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("accountID", accountID).Msg("Profile updated")
	respond(ctx, http.StatusOK, dto.NewProfileResponse(profile, c.storage.URLFor), "Profile updated")
}
