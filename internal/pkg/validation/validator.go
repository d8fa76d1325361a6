package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/yigit/campusrecords/internal/app/models"
)

// RegisterCustomValidators adds the domain tags used in request DTO binding rules:
// department, gender, bloodgroup, isodate and subjectcode.
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"department": func(fl validator.FieldLevel) bool {
			return models.Department(fl.Field().String()).Valid()
		},
		"gender": func(fl validator.FieldLevel) bool {
			return IsGender(fl.Field().String())
		},
		"bloodgroup": func(fl validator.FieldLevel) bool {
			return IsBloodGroup(fl.Field().String())
		},
		"isodate": func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		},
		"subjectcode": func(fl validator.FieldLevel) bool {
			return IsSubjectCode(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
