package sqlite

// User row shape for the users table.
type User struct {
	ID          string
	APIToken    string
	IsAdmin     bool
	Inactive    bool
	Name        string
	SiwappURL   string
	SiwappToken string
	TimeUnit    string
	HoursToDays float64
	Timer       *string // RFC3339, NULL when no timer is running
}

// Project row shape for the projects table. Team is stored as a JSON array
// of user ids.
type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Customer    string
	Rate        float64
	Budget      float64
	Public      bool
	Team        string // JSON array
	WekanURL    string
}

// Task row shape for the tasks table. Name is unique per user and stored in
// expanded display form.
type Task struct {
	ID           string
	UserID       string
	Name         string
	CardID       string
	LastUsed     string // RFC3339
	CustomFields string // JSON object, may be empty
}

// Timecard row shape for the timecards table. Date is stored at calendar day
// granularity.
type Timecard struct {
	ID           string
	UserID       string
	ProjectID    string
	Task         string
	CardID       string
	Date         string // YYYY-MM-DD
	Hours        float64
	State        string
	CustomFields string // JSON object, may be empty
}
