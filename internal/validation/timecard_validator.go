package validation

import (
	"time"

	"github.com/schnell18/titra/internal/errors"
)

// TimecardValidator validates timecard inputs before mutation
type TimecardValidator struct {
	validator *Validator
}

// NewTimecardValidator creates a new TimecardValidator instance
func NewTimecardValidator() *TimecardValidator {
	return &TimecardValidator{validator: NewValidator()}
}

// ValidateInput validates the fields of a proposed time entry
func (tv *TimecardValidator) ValidateInput(projectID, task string, date time.Time, hours float64) error {
	if !tv.validator.IsValidID(projectID) {
		return errors.NewInvalidInputError("projectId", projectID, "project id is required")
	}
	if !tv.validator.IsNonEmptyString(task) {
		return errors.NewInvalidInputError("task", task, "task description is required")
	}
	if !tv.validator.IsValidTaskLength(task) {
		return errors.NewInvalidInputError("task", task, "task description is too long")
	}
	if !tv.validator.IsValidDate(date) {
		return errors.NewInvalidInputError("date", date, "date is required")
	}
	if !tv.validator.IsValidHours(hours) {
		return errors.NewInvalidInputError("hours", hours, "hours must be non-negative")
	}
	return nil
}

// ValidateID validates a timecard identifier
func (tv *TimecardValidator) ValidateID(id string) error {
	if !tv.validator.IsValidID(id) {
		return errors.NewInvalidInputError("id", id, "timecard id is required")
	}
	return nil
}
