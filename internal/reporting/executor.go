package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/errors"
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// Row is one aggregated result. Depending on the grouping, either Date or
// ProjectID carries the group dimension next to the user.
type Row struct {
	Date      time.Time `json:"date,omitempty"`
	ProjectID string    `json:"projectId,omitempty"`
	UserID    string    `json:"userId"`
	Hours     float64   `json:"totalHours"`
}

// WorkingTimeRow is the reshaped output of the working-time variant: total
// logged time per user and day against the user's regular daily hours.
type WorkingTimeRow struct {
	UserID             string    `json:"userId"`
	Resource           string    `json:"resource"`
	Date               time.Time `json:"date"`
	TotalTime          float64   `json:"totalTime"`
	RegularWorkingTime float64   `json:"regularWorkingTime"`
	Difference         float64   `json:"difference"`
}

// Executor runs aggregation specifications against the store. Summation is
// carried out on decimals and only normalized to float64 in the returned
// rows. Reporting is read-only and idempotent, so failures are surfaced
// without retry.
type Executor struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
}

// NewExecutor creates a new Executor instance.
func NewExecutor(repo sqlite.Repository) *Executor {
	return &Executor{repo: repo, mapper: domain.NewMapper()}
}

type groupKey struct {
	date      time.Time
	projectID string
	userID    string
}

// Execute runs the specification and returns the aggregated rows plus the
// total number of groups matched before paging. The unpaged group set
// provides the count, so any requested page reports the same total.
func (e *Executor) Execute(ctx context.Context, spec QuerySpec) ([]Row, int, error) {
	cards, err := e.fetch(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	sums := make(map[groupKey]decimal.Decimal)
	for _, tc := range cards {
		key := groupKey{userID: tc.UserID}
		switch spec.Grouping {
		case GroupByDayUser, GroupByUserDay:
			key.date = domain.Day(tc.Date)
		case GroupByProjectUser:
			key.projectID = tc.ProjectID
		}
		sums[key] = sums[key].Add(decimal.NewFromFloat(tc.Hours))
	}

	rows := make([]Row, 0, len(sums))
	for key, sum := range sums {
		rows = append(rows, Row{
			Date:      key.date,
			ProjectID: key.projectID,
			UserID:    key.userID,
			Hours:     sum.InexactFloat64(),
		})
	}
	sortRows(rows, spec.Grouping)

	totalCount := len(rows)
	return pageRows(rows, spec.Skip, spec.Limit), totalCount, nil
}

// ExecuteDetailed runs an unaggregated specification, returning the matched
// timecards and their total count before paging.
func (e *Executor) ExecuteDetailed(ctx context.Context, spec QuerySpec) ([]domain.Timecard, int, error) {
	cards, err := e.fetch(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	totalCount := len(cards)
	start := spec.Skip
	if start > len(cards) {
		start = len(cards)
	}
	end := len(cards)
	if spec.Limit > 0 && start+spec.Limit < end {
		end = start + spec.Limit
	}
	return cards[start:end], totalCount, nil
}

// ExecuteWorkingTime runs the working-time variant and reshapes the rows
// with the user's display name and regular daily hours.
func (e *Executor) ExecuteWorkingTime(ctx context.Context, spec QuerySpec) ([]WorkingTimeRow, int, error) {
	rows, totalCount, err := e.Execute(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	userIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen[row.UserID] {
			seen[row.UserID] = true
			userIDs = append(userIDs, row.UserID)
		}
	}

	dbUsers, err := e.repo.ListUsersByIDs(ctx, userIDs, false)
	if err != nil {
		return nil, 0, errors.NewAggregationError("load working time users", err)
	}
	users := make(map[string]domain.User, len(dbUsers))
	for _, dbUser := range dbUsers {
		user, err := e.mapper.User.FromDatabase(*dbUser)
		if err != nil {
			return nil, 0, errors.NewAggregationError("map working time user", err)
		}
		users[user.ID] = user
	}

	out := make([]WorkingTimeRow, len(rows))
	for i, row := range rows {
		out[i] = mapWorkingTimeRow(row, users[row.UserID])
	}
	return out, totalCount, nil
}

// mapWorkingTimeRow reshapes one aggregated row into the working-time
// output record.
func mapWorkingTimeRow(row Row, user domain.User) WorkingTimeRow {
	regular := user.Profile.HoursToDays
	if regular <= 0 {
		regular = 8
	}
	return WorkingTimeRow{
		UserID:             row.UserID,
		Resource:           user.Profile.Name,
		Date:               row.Date,
		TotalTime:          row.Hours,
		RegularWorkingTime: regular,
		Difference:         decimal.NewFromFloat(row.Hours).Sub(decimal.NewFromFloat(regular)).InexactFloat64(),
	}
}

func (e *Executor) fetch(ctx context.Context, spec QuerySpec) ([]domain.Timecard, error) {
	dbCards, err := e.repo.SearchTimecards(ctx, spec.Filter)
	if err != nil {
		return nil, errors.NewAggregationError("search timecards", err)
	}
	cards, err := e.mapper.Timecard.FromDatabaseSlice(dbCards)
	if err != nil {
		return nil, errors.NewAggregationError("map timecards", err)
	}
	return cards, nil
}

// sortRows applies the stable per-grouping sort order.
func sortRows(rows []Row, grouping Grouping) {
	sort.Slice(rows, func(i, j int) bool {
		switch grouping {
		case GroupByProjectUser:
			if rows[i].ProjectID != rows[j].ProjectID {
				return rows[i].ProjectID < rows[j].ProjectID
			}
		default:
			if !rows[i].Date.Equal(rows[j].Date) {
				return rows[i].Date.After(rows[j].Date)
			}
		}
		return rows[i].UserID < rows[j].UserID
	})
}

func pageRows(rows []Row, skip, limit int) []Row {
	if skip > len(rows) {
		skip = len(rows)
	}
	end := len(rows)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return rows[skip:end]
}
