package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/logger"
)

type kindMapping struct {
	status int
	code   dto.ErrorCode
}

var kindMappings = map[apperrors.Kind]kindMapping{
	apperrors.KindValidation:     {http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	apperrors.KindNotFound:       {http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	apperrors.KindState:          {http.StatusConflict, dto.ErrorCodeInvalidState},
	apperrors.KindIntegrity:      {http.StatusConflict, dto.ErrorCodeIntegrity},
	apperrors.KindAuthentication: {http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
	apperrors.KindPermission:     {http.StatusForbidden, dto.ErrorCodeForbidden},
}

// authCodes refines AUTHENTICATION failures into the specific token codes.
var authCodes = []struct {
	err  error
	code dto.ErrorCode
}{
	{apperrors.ErrInvalidCredentials, dto.ErrorCodeInvalidCredentials},
	{apperrors.ErrTokenExpired, dto.ErrorCodeExpiredToken},
	{apperrors.ErrTokenInvalid, dto.ErrorCodeInvalidToken},
	{apperrors.ErrTokenRevoked, dto.ErrorCodeInvalidToken},
	{apperrors.ErrTokenNotFound, dto.ErrorCodeTokenNotFound},
	{apperrors.ErrAccountDisabled, dto.ErrorCodeAccountDisabled},
}

// ErrorDetailFor classifies err and returns the HTTP status with its response detail.
// Internal errors never leak their message.
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	kind := apperrors.KindOf(err)
	mapping, ok := kindMappings[kind]
	if !ok {
		return http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
				WithKind(string(apperrors.KindInternal)).
				WithSeverity(dto.ErrorSeverityCritical)
	}

	code := mapping.code
	if kind == apperrors.KindAuthentication {
		for _, ac := range authCodes {
			if errors.Is(err, ac.err) {
				code = ac.code
				break
			}
		}
	}

	detail := dto.NewErrorDetail(code, err.Error()).WithKind(string(kind))
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		if ce.Field != "" {
			detail = detail.WithField(ce.Field)
		}
		if len(ce.Details) > 0 {
			detail = detail.WithDetails(ce.Details)
		}
	}
	return mapping.status, detail
}

// HandleAPIError writes the error response for err. Internal failures are logged.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
