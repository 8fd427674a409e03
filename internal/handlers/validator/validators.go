// Package validator wraps go-playground struct validation together with the
// custom intake rules the handlers rely on.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// ValidationRule installs one custom rule on a validator instance.
type ValidationRule func(v *validator.Validate)

// Validator checks decoded API payloads against their struct tags plus any
// registered custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Register installs custom rules. Payloads tagged with a custom rule must
// not be validated before that rule is registered.
func (v *Validator) Register(rules ...ValidationRule) {
	for _, rule := range rules {
		rule(v.validate)
	}
}

func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}
