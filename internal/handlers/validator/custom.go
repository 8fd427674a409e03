package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var scanFilenameValidRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$`)

func cognitiveTotalValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(int)
	if !ok {
		return false
	}
	return val >= 0 && val <= 30
}

func scanFilenameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return scanFilenameValidRegex.MatchString(val)
}

// volumeShapeValidator checks that the flattened data length matches the
// product of the first three dimensions.
func volumeShapeValidator(fl validator.FieldLevel) bool {
	data, ok := fl.Field().Interface().([]float64)
	if !ok {
		return false
	}

	dimsField := fl.Parent().FieldByName("Dims")
	if !dimsField.IsValid() {
		return false
	}
	dims, ok := dimsField.Interface().([]int)
	if !ok || len(dims) < 3 {
		return false
	}

	n := 1
	for _, d := range dims[:3] {
		if d <= 0 {
			return false
		}
		n *= d
	}
	return len(data) == n
}
