package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) ValidationRule {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewIntakeValidationRules() []ValidationRule {
	return []ValidationRule{
		registerFn("cognitive_total", cognitiveTotalValidator),
		registerFn("volume_shape", volumeShapeValidator),
		registerFn("scan_filename", scanFilenameValidator),
	}
}
