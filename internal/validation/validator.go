package validation

import (
	"strings"
	"time"
)

// Validator provides common validation utilities
type Validator struct {
	maxTaskLength int
	maxHours      float64
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		maxTaskLength: 255,
		maxHours:      999,
	}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidTaskLength checks if a task description is within the allowed length
func (v *Validator) IsValidTaskLength(task string) bool {
	return len(strings.TrimSpace(task)) <= v.maxTaskLength
}

// IsValidHours checks if an hour count is non-negative and within bounds
func (v *Validator) IsValidHours(hours float64) bool {
	return hours >= 0 && hours <= v.maxHours
}

// IsValidDate checks if a date is usable at calendar day granularity
func (v *Validator) IsValidDate(date time.Time) bool {
	return !date.IsZero()
}

// IsValidID checks if a document identifier is present
func (v *Validator) IsValidID(id string) bool {
	return strings.TrimSpace(id) != ""
}
