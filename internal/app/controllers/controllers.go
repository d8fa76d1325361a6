// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/middleware"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// maxPictureSize bounds multipart picture uploads.
const maxPictureSize = 5 << 20

// pictureField is the multipart field carrying an uploaded picture.
const pictureField = "picture"

func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewAPIResponse(data, message))
}

// parseIDParam reads a positive int64 path parameter.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithKind(string(apperrors.KindValidation)).
			WithField(name).
			WithDetails(name + " must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentAccountID returns the authenticated account or aborts with 401.
func currentAccountID(ctx *gin.Context) (int64, bool) {
	id, ok := middleware.AccountID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return 0, false
	}
	return id, true
}

// formUpload opens the picture part of a multipart request. The returned
// close func is never nil. A request without the part yields a nil upload.
func formUpload(ctx *gin.Context) (*filestorage.Upload, func(), error) {
	noop := func() {}
	header, err := ctx.FormFile(pictureField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, apperrors.NewFieldValidationError(pictureField, "could not read uploaded picture")
	}
	if header.Size > maxPictureSize {
		return nil, noop, apperrors.NewFieldValidationError(pictureField, "picture must be at most 5 MB")
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, apperrors.NewFieldValidationError(pictureField, "could not read uploaded picture")
	}
	return &filestorage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}, func() { file.Close() }, nil
}
