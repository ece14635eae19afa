package reporting

import (
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// Grouping determines how matched timecards are aggregated.
type Grouping int

const (
	// GroupNone returns matched entries without aggregation.
	GroupNone Grouping = iota
	// GroupByDayUser produces one row per calendar day and user.
	GroupByDayUser
	// GroupByProjectUser produces one row per project and user.
	GroupByProjectUser
	// GroupByUserDay produces one working-time row per user and day.
	GroupByUserDay
)

// QuerySpec is a deterministic aggregation specification: a filter stage, a
// grouping stage, and paging. The sort order is fixed per grouping so
// repeated executions page consistently.
type QuerySpec struct {
	Filter   sqlite.TimecardFilter
	Grouping Grouping
	Skip     int
	Limit    int
}

// buildFilter translates the scope's filter dimensions. Callers must have
// resolved the project sentinel beforehand.
func buildFilter(scope Scope) (sqlite.TimecardFilter, error) {
	dates, err := scope.Period.Resolve(nowFunc(), scope.Dates)
	if err != nil {
		return sqlite.TimecardFilter{}, err
	}

	filter := sqlite.TimecardFilter{
		ProjectIDs: scope.ProjectIDs,
		UserIDs:    ResolveUsers(scope.UserIDs),
		Customer:   scope.Customer,
	}
	if dates != nil {
		filter.DateFrom = &dates.Start
		filter.DateTo = &dates.End
	}
	return filter, nil
}

func paging(scope Scope) (skip, limit int) {
	if scope.Limit <= 0 {
		return 0, 0
	}
	page := scope.Page
	if page < 1 {
		page = 1
	}
	return scope.Limit * (page - 1), scope.Limit
}

// BuildDailyHoursSelector builds the per-day totals specification.
func BuildDailyHoursSelector(scope Scope) (QuerySpec, error) {
	filter, err := buildFilter(scope)
	if err != nil {
		return QuerySpec{}, err
	}
	skip, limit := paging(scope)
	return QuerySpec{Filter: filter, Grouping: GroupByDayUser, Skip: skip, Limit: limit}, nil
}

// BuildTotalHoursSelector builds the per-period totals specification,
// grouped by project and user.
func BuildTotalHoursSelector(scope Scope) (QuerySpec, error) {
	filter, err := buildFilter(scope)
	if err != nil {
		return QuerySpec{}, err
	}
	skip, limit := paging(scope)
	return QuerySpec{Filter: filter, Grouping: GroupByProjectUser, Skip: skip, Limit: limit}, nil
}

// BuildWorkingTimeSelector builds the working-time specification. Working
// time is elapsed-timer-derived duration per user and day; the executor
// reshapes its output rows through a dedicated mapper.
func BuildWorkingTimeSelector(scope Scope) (QuerySpec, error) {
	filter, err := buildFilter(scope)
	if err != nil {
		return QuerySpec{}, err
	}
	// Working time ignores the customer dimension.
	filter.Customer = ""
	skip, limit := paging(scope)
	return QuerySpec{Filter: filter, Grouping: GroupByUserDay, Skip: skip, Limit: limit}, nil
}

// BuildDetailedEntriesSelector builds an unaggregated specification for
// flows that need the matched entries themselves, such as invoicing.
func BuildDetailedEntriesSelector(scope Scope) (QuerySpec, error) {
	filter, err := buildFilter(scope)
	if err != nil {
		return QuerySpec{}, err
	}
	skip, limit := paging(scope)
	return QuerySpec{Filter: filter, Grouping: GroupNone, Skip: skip, Limit: limit}, nil
}
