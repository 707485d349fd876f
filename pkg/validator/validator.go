// Package validator wraps go-playground/validator's struct-tag
// validation for configuration types that carry `validate:"..."` tags,
// namely pkg/config.SimulationConfig and its nested agent/policy
// entries.
package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate runs struct-tag validation and collapses every failing field
// into a single error.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var msgs []string
			for _, e := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("field %q failed %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("validation failed: %v", msgs)
		}
		return err
	}
	return nil
}
