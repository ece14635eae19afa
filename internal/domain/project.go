package domain

import "regexp"

var boardIDPattern = regexp.MustCompile(`boards/(.*)/export\?`)

// Project represents a project in the domain model. Projects are referenced
// by timecards but never own them.
type Project struct {
	ID          string   `json:"_id"`
	UserID      string   `json:"userId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty"`
	Customer    string   `json:"customer,omitempty"`
	Rate        float64  `json:"rate,omitempty"`
	Budget      float64  `json:"budget,omitempty"`
	Public      bool     `json:"public,omitempty"`
	Team        []string `json:"team,omitempty"`
	WekanURL    string   `json:"wekanurl,omitempty"`
}

// HasTeamMember returns true if the given user is part of the project team.
func (p Project) HasTeamMember(userID string) bool {
	for _, id := range p.Team {
		if id == userID {
			return true
		}
	}
	return false
}

// VisibleTo returns true if the given user owns the project, is a team
// member, or the project is public.
func (p Project) VisibleTo(userID string) bool {
	return p.UserID == userID || p.Public || p.HasTeamMember(userID)
}

// BoardID extracts the kanban board identifier from the configured board
// export URL. Returns an empty string if no URL is set or it does not match
// the expected export format.
func (p Project) BoardID() string {
	if p.WekanURL == "" {
		return ""
	}
	m := boardIDPattern.FindStringSubmatch(p.WekanURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// IsValid checks if the project has valid data.
func (p Project) IsValid() bool {
	return p.Name != "" && p.UserID != ""
}
