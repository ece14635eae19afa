package validation

import (
	"github.com/schnell18/titra/internal/errors"
)

// ProjectValidator validates project inputs before creation
type ProjectValidator struct {
	validator *Validator
}

// NewProjectValidator creates a new ProjectValidator instance
func NewProjectValidator() *ProjectValidator {
	return &ProjectValidator{validator: NewValidator()}
}

// ValidateForCreation validates project creation input
func (pv *ProjectValidator) ValidateForCreation(name string) error {
	if !pv.validator.IsNonEmptyString(name) {
		return errors.NewInvalidInputError("name", name, "project name is required")
	}
	return nil
}
