package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected State
	}{
		{name: "should map empty state to new", state: "", expected: StateNew},
		{name: "should keep new", state: StateNew, expected: StateNew},
		{name: "should keep exported", state: StateExported, expected: StateExported},
		{name: "should keep billed", state: StateBilled, expected: StateBilled},
		{name: "should keep notBillable", state: StateNotBillable, expected: StateNotBillable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.Normalize())
		})
	}
}

func TestTimecard_Key(t *testing.T) {
	tc := Timecard{
		ID:        "tc1",
		UserID:    "u1",
		ProjectID: "p1",
		Task:      "Fix 🐛",
		Date:      time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC),
		Hours:     3,
	}

	key := tc.Key()
	assert.Equal(t, "u1", key.UserID)
	assert.Equal(t, "p1", key.ProjectID)
	assert.Equal(t, "Fix 🐛", key.Task)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), key.Date)
}

func TestTimecard_KeyAgreesWithExpandedTaskLookup(t *testing.T) {
	// The same canonical form must be produced whether the task text is used
	// for task lookup or for the timecard dedup key.
	raw := "Fix :bug:"
	expanded := ExpandShorthand(raw)

	tc := Timecard{
		UserID:    "u1",
		ProjectID: "p1",
		Task:      expanded,
		Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	task := Task{UserID: "u1", Name: ExpandShorthand(raw)}

	assert.Equal(t, task.Name, tc.Key().Task)
}

func TestTimecard_IsValid(t *testing.T) {
	valid := Timecard{
		UserID:    "u1",
		ProjectID: "p1",
		Task:      "work",
		Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Hours:     2,
	}

	tests := []struct {
		name     string
		mutate   func(tc Timecard) Timecard
		expected bool
	}{
		{name: "should accept a complete timecard", mutate: func(tc Timecard) Timecard { return tc }, expected: true},
		{name: "should accept zero hours", mutate: func(tc Timecard) Timecard { tc.Hours = 0; return tc }, expected: true},
		{name: "should reject negative hours", mutate: func(tc Timecard) Timecard { tc.Hours = -1; return tc }, expected: false},
		{name: "should reject missing user", mutate: func(tc Timecard) Timecard { tc.UserID = ""; return tc }, expected: false},
		{name: "should reject missing project", mutate: func(tc Timecard) Timecard { tc.ProjectID = ""; return tc }, expected: false},
		{name: "should reject empty task", mutate: func(tc Timecard) Timecard { tc.Task = ""; return tc }, expected: false},
		{name: "should reject zero date", mutate: func(tc Timecard) Timecard { tc.Date = time.Time{}; return tc }, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mutate(valid).IsValid())
		})
	}
}

func TestProject_VisibleTo(t *testing.T) {
	p := Project{ID: "p1", UserID: "owner", Team: []string{"member"}}

	assert.True(t, p.VisibleTo("owner"))
	assert.True(t, p.VisibleTo("member"))
	assert.False(t, p.VisibleTo("stranger"))

	p.Public = true
	assert.True(t, p.VisibleTo("stranger"))
}

func TestProject_BoardID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "should extract board id from export url",
			url:      "https://wekan.example.com/api/boards/board123/export?authToken=abc",
			expected: "board123",
		},
		{name: "should return empty for missing url", url: "", expected: ""},
		{name: "should return empty for non-export url", url: "https://wekan.example.com/b/board123", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Project{WekanURL: tt.url}.BoardID())
		})
	}
}

func TestUser_TimeInUserUnit(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		hours    float64
		expected float64
	}{
		{name: "should keep hours for default unit", user: User{}, hours: 8, expected: 8},
		{name: "should keep hours for explicit h", user: User{Profile: Profile{TimeUnit: "h"}}, hours: 8, expected: 8},
		{name: "should convert to days with default factor", user: User{Profile: Profile{TimeUnit: "d"}}, hours: 8, expected: 1},
		{name: "should convert to days with custom factor", user: User{Profile: Profile{TimeUnit: "d", HoursToDays: 4}}, hours: 8, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.TimeInUserUnit(tt.hours))
		})
	}
}
