package domain

import (
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// UserMapper handles conversion between domain and database User models.
type UserMapper struct{}

// ToDatabase converts a domain User to a database User.
func (m *UserMapper) ToDatabase(u User) (sqlite.User, error) {
	dbUser := sqlite.User{
		ID:          u.ID,
		APIToken:    u.APIToken,
		IsAdmin:     u.IsAdmin,
		Inactive:    u.Inactive,
		Name:        u.Profile.Name,
		SiwappURL:   u.Profile.SiwappURL,
		SiwappToken: u.Profile.SiwappToken,
		TimeUnit:    u.Profile.TimeUnit,
		HoursToDays: u.Profile.HoursToDays,
	}
	if u.Profile.Timer != nil {
		formatted := sqlite.FormatTimeForDB(*u.Profile.Timer)
		dbUser.Timer = &formatted
	}
	return dbUser, nil
}

// FromDatabase converts a database User to a domain User.
func (m *UserMapper) FromDatabase(dbUser sqlite.User) (User, error) {
	user := User{
		ID:       dbUser.ID,
		APIToken: dbUser.APIToken,
		IsAdmin:  dbUser.IsAdmin,
		Inactive: dbUser.Inactive,
		Profile: Profile{
			Name:        dbUser.Name,
			SiwappURL:   dbUser.SiwappURL,
			SiwappToken: dbUser.SiwappToken,
			TimeUnit:    dbUser.TimeUnit,
			HoursToDays: dbUser.HoursToDays,
		},
	}
	if dbUser.Timer != nil {
		timer, err := sqlite.ParseTimeFromDB(*dbUser.Timer)
		if err != nil {
			return User{}, err
		}
		user.Profile.Timer = &timer
	}
	return user, nil
}

// ProjectMapper handles conversion between domain and database Project models.
type ProjectMapper struct{}

// ToDatabase converts a domain Project to a database Project.
func (m *ProjectMapper) ToDatabase(p Project) (sqlite.Project, error) {
	team, err := sqlite.MarshalJSONField(p.Team)
	if err != nil {
		return sqlite.Project{}, err
	}
	return sqlite.Project{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Customer:    p.Customer,
		Rate:        p.Rate,
		Budget:      p.Budget,
		Public:      p.Public,
		Team:        team,
		WekanURL:    p.WekanURL,
	}, nil
}

// FromDatabase converts a database Project to a domain Project.
func (m *ProjectMapper) FromDatabase(dbProject sqlite.Project) (Project, error) {
	team, err := sqlite.UnmarshalStringList(dbProject.Team)
	if err != nil {
		return Project{}, err
	}
	return Project{
		ID:          dbProject.ID,
		UserID:      dbProject.UserID,
		Name:        dbProject.Name,
		Description: dbProject.Description,
		Color:       dbProject.Color,
		Customer:    dbProject.Customer,
		Rate:        dbProject.Rate,
		Budget:      dbProject.Budget,
		Public:      dbProject.Public,
		Team:        team,
		WekanURL:    dbProject.WekanURL,
	}, nil
}

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(t Task) (sqlite.Task, error) {
	fields, err := sqlite.MarshalJSONField(t.CustomFields)
	if err != nil {
		return sqlite.Task{}, err
	}
	return sqlite.Task{
		ID:           t.ID,
		UserID:       t.UserID,
		Name:         t.Name,
		CardID:       t.CardID,
		LastUsed:     sqlite.FormatTimeForDB(t.LastUsed),
		CustomFields: fields,
	}, nil
}

// FromDatabase converts a database Task to a domain Task.
func (m *TaskMapper) FromDatabase(dbTask sqlite.Task) (Task, error) {
	lastUsed, err := sqlite.ParseTimeFromDB(dbTask.LastUsed)
	if err != nil {
		return Task{}, err
	}
	fields, err := sqlite.UnmarshalObject(dbTask.CustomFields)
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:           dbTask.ID,
		UserID:       dbTask.UserID,
		Name:         dbTask.Name,
		CardID:       dbTask.CardID,
		LastUsed:     lastUsed,
		CustomFields: fields,
	}, nil
}

// TimecardMapper handles conversion between domain and database Timecard models.
type TimecardMapper struct{}

// ToDatabase converts a domain Timecard to a database Timecard.
func (m *TimecardMapper) ToDatabase(tc Timecard) (sqlite.Timecard, error) {
	fields, err := sqlite.MarshalJSONField(tc.CustomFields)
	if err != nil {
		return sqlite.Timecard{}, err
	}
	return sqlite.Timecard{
		ID:           tc.ID,
		UserID:       tc.UserID,
		ProjectID:    tc.ProjectID,
		Task:         tc.Task,
		CardID:       tc.CardID,
		Date:         sqlite.FormatDateForDB(tc.Date),
		Hours:        tc.Hours,
		State:        string(tc.State),
		CustomFields: fields,
	}, nil
}

// FromDatabase converts a database Timecard to a domain Timecard.
func (m *TimecardMapper) FromDatabase(dbCard sqlite.Timecard) (Timecard, error) {
	date, err := sqlite.ParseDateFromDB(dbCard.Date)
	if err != nil {
		return Timecard{}, err
	}
	fields, err := sqlite.UnmarshalObject(dbCard.CustomFields)
	if err != nil {
		return Timecard{}, err
	}
	return Timecard{
		ID:           dbCard.ID,
		UserID:       dbCard.UserID,
		ProjectID:    dbCard.ProjectID,
		Task:         dbCard.Task,
		CardID:       dbCard.CardID,
		Date:         date,
		Hours:        dbCard.Hours,
		State:        State(dbCard.State),
		CustomFields: fields,
	}, nil
}

// FromDatabaseSlice converts a slice of database Timecards to domain Timecards.
func (m *TimecardMapper) FromDatabaseSlice(dbCards []*sqlite.Timecard) ([]Timecard, error) {
	cards := make([]Timecard, len(dbCards))
	for i, dbCard := range dbCards {
		card, err := m.FromDatabase(*dbCard)
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	return cards, nil
}

// Mapper aggregates all entity mappers for convenient injection.
type Mapper struct {
	User     *UserMapper
	Project  *ProjectMapper
	Task     *TaskMapper
	Timecard *TimecardMapper
}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{
		User:     &UserMapper{},
		Project:  &ProjectMapper{},
		Task:     &TaskMapper{},
		Timecard: &TimecardMapper{},
	}
}
