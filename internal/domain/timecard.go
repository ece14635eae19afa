package domain

import "time"

// State is the billing lifecycle state of a timecard.
type State string

const (
	StateNew         State = "new"
	StateExported    State = "exported"
	StateBilled      State = "billed"
	StateNotBillable State = "notBillable"
)

// Normalize maps an absent state to StateNew. Legacy records may carry no
// state at all.
func (s State) Normalize() State {
	if s == "" {
		return StateNew
	}
	return s
}

// Timecard represents one recorded unit of time against a project, task and
// calendar day.
type Timecard struct {
	ID           string                 `json:"_id"`
	UserID       string                 `json:"userId"`
	ProjectID    string                 `json:"projectId"`
	Task         string                 `json:"task"`
	CardID       string                 `json:"cardId,omitempty"`
	Date         time.Time              `json:"date"`
	Hours        float64                `json:"hours"`
	State        State                  `json:"state,omitempty"`
	CustomFields map[string]interface{} `json:"customfields,omitempty"`
}

// Key identifies the canonical (user, project, task, date) tuple a timecard
// belongs to. The task text must already be in expanded display form.
type Key struct {
	UserID    string
	ProjectID string
	Task      string
	Date      time.Time
}

// Key returns the dedup key of the timecard.
func (tc Timecard) Key() Key {
	return Key{
		UserID:    tc.UserID,
		ProjectID: tc.ProjectID,
		Task:      tc.Task,
		Date:      Day(tc.Date),
	}
}

// IsValid checks if the timecard has valid data.
func (tc Timecard) IsValid() bool {
	if tc.UserID == "" || tc.ProjectID == "" || tc.Task == "" {
		return false
	}
	if tc.Date.IsZero() {
		return false
	}
	return tc.Hours >= 0
}

// Day truncates a timestamp to calendar day granularity in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Task is a named, reusable unit of work a user has logged time against
// before. The name is stored in expanded display form and acts as the
// lookup key together with the user id.
type Task struct {
	ID           string                 `json:"_id"`
	UserID       string                 `json:"userId"`
	Name         string                 `json:"name"`
	CardID       string                 `json:"cardId,omitempty"`
	LastUsed     time.Time              `json:"lastUsed"`
	CustomFields map[string]interface{} `json:"customfields,omitempty"`
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	return t.UserID != "" && t.Name != ""
}
