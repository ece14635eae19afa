package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/schnell18/titra/internal/errors"
	"github.com/schnell18/titra/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// TimecardFilter contains all possible timecard search parameters. A nil
// slice or zero value means the dimension is not filtered. A non-nil empty
// ProjectIDs scope matches no timecard at all.
type TimecardFilter struct {
	ProjectIDs      []string
	UserIDs         []string
	Customer        string
	DateFrom        *time.Time
	DateTo          *time.Time
	MissingCardOnly bool
}

// Repository defines the interface for database operations
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	FindUserByAPIToken(ctx context.Context, token string) (*User, error)
	ListUsersByIDs(ctx context.Context, ids []string, activeOnly bool) ([]*User, error)
	SetUserTimer(ctx context.Context, id string, timer *time.Time) error

	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjectsForUser(ctx context.Context, userID string) ([]*Project, error)

	// Task operations
	CreateTask(ctx context.Context, task *Task) error
	FindTaskByName(ctx context.Context, userID, name string) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error

	// Timecard operations
	CreateTimecard(ctx context.Context, tc *Timecard) error
	GetTimecard(ctx context.Context, id string) (*Timecard, error)
	UpdateTimecard(ctx context.Context, tc *Timecard) error
	DeleteTimecard(ctx context.Context, id string) error
	FindTimecardsByKey(ctx context.Context, userID, projectID, task string, date time.Time) ([]*Timecard, error)
	DeleteTimecardsByKey(ctx context.Context, userID, projectID, task string, date time.Time) (int, error)
	SearchTimecards(ctx context.Context, filter TimecardFilter) ([]*Timecard, error)
	MarkTimecardsExported(ctx context.Context, ids []string) error
	MarkTimecardsBilled(ctx context.Context, ids []string) error
	SetTimecardsState(ctx context.Context, ids []string, state string) error

	// Change notification
	WatchTimecards(projectIDs []string) *WatchHandle

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db      *sql.DB
	watches *watchRegistry
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, watches: newWatchRegistry()}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// WatchTimecards registers a change observer restricted to the given project
// scope. A nil scope observes every project; a non-nil empty scope observes
// none.
func (r *SQLiteRepository) WatchTimecards(projectIDs []string) *WatchHandle {
	return r.watches.watch(projectIDs)
}

const userColumns = `id, api_token, is_admin, inactive, name, siwapp_url, siwapp_token, time_unit, hours_to_days, timer`

// CreateUser creates a new user
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
	INSERT INTO users (` + userColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var timer interface{}
	if user.Timer != nil {
		timer = *user.Timer
	}
	return Execute(ctx, r.db, query,
		user.ID, user.APIToken, user.IsAdmin, user.Inactive, user.Name,
		user.SiwappURL, user.SiwappToken, user.TimeUnit, user.HoursToDays, timer)
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanUser, "user", id, id)
}

// FindUserByAPIToken retrieves the user holding the given API token
func (r *SQLiteRepository) FindUserByAPIToken(ctx context.Context, token string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE api_token = ? AND api_token != ''`
	return QuerySingle(ctx, r.db, query, ScanUser, "user", "by token", token)
}

// ListUsersByIDs retrieves users for the given set of ids, optionally
// excluding inactive accounts. Results are ordered by name for stable output.
func (r *SQLiteRepository) ListUsersByIDs(ctx context.Context, ids []string, activeOnly bool) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `)`
	if activeOnly {
		query += ` AND inactive = 0`
	}
	query += ` ORDER BY name ASC`
	return QueryMultiple(ctx, r.db, query, ScanUsers, "users", stringArgs(ids)...)
}

// SetUserTimer sets or clears the running-timer start timestamp
func (r *SQLiteRepository) SetUserTimer(ctx context.Context, id string, timer *time.Time) error {
	query := `UPDATE users SET timer = ? WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "user", id, FormatTimePtrForDB(timer), id)
}

const projectColumns = `id, user_id, name, description, color, customer, rate, budget, public, team, wekan_url`

// CreateProject creates a new project
func (r *SQLiteRepository) CreateProject(ctx context.Context, project *Project) error {
	query := `
	INSERT INTO projects (` + projectColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return Execute(ctx, r.db, query,
		project.ID, project.UserID, project.Name, project.Description, project.Color,
		project.Customer, project.Rate, project.Budget, project.Public, project.Team,
		project.WekanURL)
}

// GetProject retrieves a project by ID
func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanProject, "project", id, id)
}

// ListProjectsForUser retrieves every project the user owns, is a team
// member of, or that is public. The team column holds a JSON array of user
// ids, so membership is matched on the quoted id.
func (r *SQLiteRepository) ListProjectsForUser(ctx context.Context, userID string) ([]*Project, error) {
	query := `
	SELECT ` + projectColumns + `
	FROM projects
	WHERE user_id = ? OR public = 1 OR team LIKE ?
	ORDER BY name ASC`

	return QueryMultiple(ctx, r.db, query, ScanProjects, "projects", userID, `%"`+userID+`"%`)
}

const taskColumns = `id, user_id, name, card_id, last_used, custom_fields`

// CreateTask creates a new task
func (r *SQLiteRepository) CreateTask(ctx context.Context, task *Task) error {
	query := `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES (?, ?, ?, ?, ?, ?)`

	return Execute(ctx, r.db, query,
		task.ID, task.UserID, task.Name, task.CardID, task.LastUsed, task.CustomFields)
}

// FindTaskByName retrieves the task record for a (user, name) key
func (r *SQLiteRepository) FindTaskByName(ctx context.Context, userID, name string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND name = ?`
	return QuerySingle(ctx, r.db, query, ScanTask, "task", name, userID, name)
}

// UpdateTask updates an existing task
func (r *SQLiteRepository) UpdateTask(ctx context.Context, task *Task) error {
	query := `
	UPDATE tasks
	SET name = ?, card_id = ?, last_used = ?, custom_fields = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query, "task", task.ID,
		task.Name, task.CardID, task.LastUsed, task.CustomFields, task.ID)
}

// placeholders renders n comma-separated SQL placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}

func stringArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
