package domain

import "time"

// Profile holds the user-editable part of a user record, including the
// integration credentials and the running-timer start timestamp.
type Profile struct {
	Name        string     `json:"name"`
	SiwappURL   string     `json:"siwappurl,omitempty"`
	SiwappToken string     `json:"siwapptoken,omitempty"`
	TimeUnit    string     `json:"timeunit,omitempty"` // "h" (default) or "d"
	HoursToDays float64    `json:"hoursToDays,omitempty"`
	Timer       *time.Time `json:"timer,omitempty"`
}

// User represents an account in the domain model.
type User struct {
	ID       string
	APIToken string
	IsAdmin  bool
	Inactive bool
	Profile  Profile
}

// HasRunningTimer returns true if a timer is currently set on the profile.
func (u User) HasRunningTimer() bool {
	return u.Profile.Timer != nil
}

// HasInvoicingCredentials returns true if both the invoicing endpoint URL
// and its token are configured on the profile.
func (u User) HasInvoicingCredentials() bool {
	return u.Profile.SiwappURL != "" && u.Profile.SiwappToken != ""
}

// TimeInUserUnit converts raw hours into the user's configured display unit.
// Unit "d" divides by the hours-per-day factor (default 8), anything else is
// taken as plain hours.
func (u User) TimeInUserUnit(hours float64) float64 {
	if u.Profile.TimeUnit == "d" {
		factor := u.Profile.HoursToDays
		if factor <= 0 {
			factor = 8
		}
		return hours / factor
	}
	return hours
}

// ResourceProfile is the public projection of a user emitted by the live
// view publisher and the team read path.
type ResourceProfile struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ResourceProfileOf builds the public projection for a user.
func ResourceProfileOf(u User) ResourceProfile {
	return ResourceProfile{ID: u.ID, Name: u.Profile.Name}
}
