package sqlite

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanUser scans a single user from a database row
func ScanUser(scanner Scanner) (*User, error) {
	user := &User{}
	var timer sql.NullString

	err := scanner.Scan(
		&user.ID,
		&user.APIToken,
		&user.IsAdmin,
		&user.Inactive,
		&user.Name,
		&user.SiwappURL,
		&user.SiwappToken,
		&user.TimeUnit,
		&user.HoursToDays,
		&timer,
	)
	if err != nil {
		return nil, err
	}

	if timer.Valid {
		user.Timer = &timer.String
	}

	return user, nil
}

// ScanUsers scans multiple users from database rows
func ScanUsers(rows Rows) ([]*User, error) {
	var users []*User
	for rows.Next() {
		user, err := ScanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// ScanProject scans a single project from a database row
func ScanProject(scanner Scanner) (*Project, error) {
	project := &Project{}
	err := scanner.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Color,
		&project.Customer,
		&project.Rate,
		&project.Budget,
		&project.Public,
		&project.Team,
		&project.WekanURL,
	)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ScanProjects scans multiple projects from database rows
func ScanProjects(rows Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		project, err := ScanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	err := scanner.Scan(
		&task.ID,
		&task.UserID,
		&task.Name,
		&task.CardID,
		&task.LastUsed,
		&task.CustomFields,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// ScanTimecard scans a single timecard from a database row
func ScanTimecard(scanner Scanner) (*Timecard, error) {
	tc := &Timecard{}
	err := scanner.Scan(
		&tc.ID,
		&tc.UserID,
		&tc.ProjectID,
		&tc.Task,
		&tc.CardID,
		&tc.Date,
		&tc.Hours,
		&tc.State,
		&tc.CustomFields,
	)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

// ScanTimecards scans multiple timecards from database rows
func ScanTimecards(rows Rows) ([]*Timecard, error) {
	var cards []*Timecard
	for rows.Next() {
		tc, err := ScanTimecard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}
