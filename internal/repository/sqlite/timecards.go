package sqlite

import (
	"context"
	"strings"
	"time"
)

const timecardColumns = `timecards.id, timecards.user_id, timecards.project_id, timecards.task, timecards.card_id, timecards.date, timecards.hours, timecards.state, timecards.custom_fields`

// CreateTimecard creates a new timecard and notifies watchers of the insert
func (r *SQLiteRepository) CreateTimecard(ctx context.Context, tc *Timecard) error {
	query := `
	INSERT INTO timecards (id, user_id, project_id, task, card_id, date, hours, state, custom_fields)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := Execute(ctx, r.db, query,
		tc.ID, tc.UserID, tc.ProjectID, tc.Task, tc.CardID, tc.Date, tc.Hours, tc.State, tc.CustomFields)
	if err != nil {
		return err
	}

	r.watches.notify(ChangeEvent{Op: OpInsert, ID: tc.ID, ProjectID: tc.ProjectID, UserID: tc.UserID})
	return nil
}

// GetTimecard retrieves a timecard by ID
func (r *SQLiteRepository) GetTimecard(ctx context.Context, id string) (*Timecard, error) {
	query := `SELECT ` + timecardColumns + ` FROM timecards WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTimecard, "timecard", id, id)
}

// UpdateTimecard updates an existing timecard in place. Watchers receive an
// update event; field edits never change live-view set membership.
func (r *SQLiteRepository) UpdateTimecard(ctx context.Context, tc *Timecard) error {
	query := `
	UPDATE timecards
	SET user_id = ?, project_id = ?, task = ?, card_id = ?, date = ?, hours = ?, state = ?, custom_fields = ?
	WHERE id = ?`

	err := ExecuteWithRowsAffected(ctx, r.db, query, "timecard", tc.ID,
		tc.UserID, tc.ProjectID, tc.Task, tc.CardID, tc.Date, tc.Hours, tc.State, tc.CustomFields, tc.ID)
	if err != nil {
		return err
	}

	r.watches.notify(ChangeEvent{Op: OpUpdate, ID: tc.ID, ProjectID: tc.ProjectID, UserID: tc.UserID})
	return nil
}

// DeleteTimecard deletes a timecard by ID and notifies watchers of the
// removal
func (r *SQLiteRepository) DeleteTimecard(ctx context.Context, id string) error {
	// The row is needed before deletion so the removal event can carry its
	// project scope.
	tc, err := r.GetTimecard(ctx, id)
	if err != nil {
		return err
	}

	query := `DELETE FROM timecards WHERE id = ?`
	if err := ExecuteWithRowsAffected(ctx, r.db, query, "timecard", id, id); err != nil {
		return err
	}

	r.watches.notify(ChangeEvent{Op: OpRemove, ID: id, ProjectID: tc.ProjectID, UserID: tc.UserID})
	return nil
}

// FindTimecardsByKey retrieves all timecards matching a (user, project,
// task, date) tuple. More than one result means the key is fragmented.
func (r *SQLiteRepository) FindTimecardsByKey(ctx context.Context, userID, projectID, task string, date time.Time) ([]*Timecard, error) {
	query := `
	SELECT ` + timecardColumns + `
	FROM timecards
	WHERE user_id = ? AND project_id = ? AND task = ? AND date = ?
	ORDER BY id ASC`

	return QueryMultiple(ctx, r.db, query, ScanTimecards, "timecards",
		userID, projectID, task, FormatDateForDB(date))
}

// DeleteTimecardsByKey deletes every timecard matching the tuple and
// notifies watchers once per removed entry. Returns the number removed.
func (r *SQLiteRepository) DeleteTimecardsByKey(ctx context.Context, userID, projectID, task string, date time.Time) (int, error) {
	matches, err := r.FindTimecardsByKey(ctx, userID, projectID, task, date)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, nil
	}

	query := `DELETE FROM timecards WHERE user_id = ? AND project_id = ? AND task = ? AND date = ?`
	if err := Execute(ctx, r.db, query, userID, projectID, task, FormatDateForDB(date)); err != nil {
		return 0, err
	}

	for _, tc := range matches {
		r.watches.notify(ChangeEvent{Op: OpRemove, ID: tc.ID, ProjectID: tc.ProjectID, UserID: tc.UserID})
	}
	return len(matches), nil
}

// SearchTimecards searches for timecards based on the provided filter
func (r *SQLiteRepository) SearchTimecards(ctx context.Context, filter TimecardFilter) ([]*Timecard, error) {
	var conditions []string
	var args []interface{}

	// A nil project scope is unfiltered; a resolved-but-empty scope matches
	// nothing, like an IN over an empty list.
	if filter.ProjectIDs != nil {
		if len(filter.ProjectIDs) == 0 {
			conditions = append(conditions, "1 = 0")
		} else {
			conditions = append(conditions, "timecards.project_id IN ("+placeholders(len(filter.ProjectIDs))+")")
			args = append(args, stringArgs(filter.ProjectIDs)...)
		}
	}
	if len(filter.UserIDs) > 0 {
		conditions = append(conditions, "timecards.user_id IN ("+placeholders(len(filter.UserIDs))+")")
		args = append(args, stringArgs(filter.UserIDs)...)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "timecards.date >= ?")
		args = append(args, FormatDateForDB(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "timecards.date <= ?")
		args = append(args, FormatDateForDB(*filter.DateTo))
	}
	if filter.MissingCardOnly {
		conditions = append(conditions, "timecards.card_id = ''")
	}

	// Customer filtering goes through the referenced project.
	joinProjects := false
	if filter.Customer != "" && filter.Customer != "all" {
		joinProjects = true
		conditions = append(conditions, "projects.customer = ?")
		args = append(args, filter.Customer)
	}

	query := `SELECT ` + timecardColumns + ` FROM timecards`
	if joinProjects {
		query += " JOIN projects ON timecards.project_id = projects.id"
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timecards.date DESC, timecards.id ASC"

	return QueryMultiple(ctx, r.db, query, ScanTimecards, "timecards", args...)
}

// MarkTimecardsExported transitions the given entries to the exported state.
// Only entries still in state new (or without a state) are eligible.
func (r *SQLiteRepository) MarkTimecardsExported(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
	UPDATE timecards
	SET state = 'exported'
	WHERE id IN (` + placeholders(len(ids)) + `) AND state IN ('new', '')`

	return Execute(ctx, r.db, query, stringArgs(ids)...)
}

// MarkTimecardsBilled transitions the given entries to the billed state,
// excluding entries marked not billable.
func (r *SQLiteRepository) MarkTimecardsBilled(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
	UPDATE timecards
	SET state = 'billed'
	WHERE id IN (` + placeholders(len(ids)) + `) AND state != 'notBillable'`

	return Execute(ctx, r.db, query, stringArgs(ids)...)
}

// SetTimecardsState transitions the given entries unconditionally.
func (r *SQLiteRepository) SetTimecardsState(ctx context.Context, ids []string, state string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
	UPDATE timecards
	SET state = ?
	WHERE id IN (` + placeholders(len(ids)) + `)`

	args := append([]interface{}{state}, stringArgs(ids)...)
	return Execute(ctx, r.db, query, args...)
}
