package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/pkg/apperrors"
	"github.com/yigit/campusrecords/internal/pkg/validation"
)

// ValidationErrorDetail turns a gin binding error into a VALIDATION error detail,
// listing every failed rule.
func ValidationErrorDetail(err error) *dto.ErrorDetail {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request").
		WithKind(string(apperrors.KindValidation))

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		list := dto.NewValidationErrors()
		for _, fe := range verrs {
			list.AddError(fieldName(fe), formatValidationError(fe))
		}
		if len(list.Errors) == 1 {
			detail.Message = list.Errors[0].Message
			detail = detail.WithField(list.Errors[0].Field)
		}
		return detail.WithDetails(list)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		detail.Message = "Malformed JSON body"
	case errors.As(err, &typeErr):
		detail.Message = typeErr.Field + " has the wrong type"
		detail = detail.WithField(typeErr.Field)
	default:
		detail = detail.WithDetails(err.Error())
	}
	return detail
}

// AbortWithBindingError writes a 400 response for a failed ShouldBind call.
func AbortWithBindingError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(ValidationErrorDetail(err)))
}

// fieldName converts the Go field name validator reports into the snake_case JSON name.
func fieldName(fe validator.FieldError) string {
	var b strings.Builder
	for i, r := range fe.Field() {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := fieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "department":
		return field + " must be a known department"
	case "gender":
		return field + " must be one of: " + strings.Join(validation.Genders, ", ")
	case "bloodgroup":
		return field + " must be one of: " + strings.Join(validation.BloodGroups, ", ")
	case "isodate":
		return field + " must use the format " + validation.DateFormatHint
	case "subjectcode":
		return field + " must look like CS followed by three digits"
	default:
		return field + " validation failed: " + e.Tag()
	}
}
