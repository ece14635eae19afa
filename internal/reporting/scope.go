package reporting

import (
	"context"
	"time"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/errors"
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// AllSentinel selects every project visible to the caller, or every user,
// depending on the dimension it appears in.
const AllSentinel = "all"

// nowFunc is swapped out in tests for deterministic period resolution.
var nowFunc = time.Now

// Period is a reporting date-range shorthand.
type Period string

const (
	PeriodDay    Period = "day"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
	PeriodAll    Period = "all"
)

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Resolve turns a period shorthand into a concrete date range relative to
// now. A custom period requires both bounds and fails with an invalid-range
// error otherwise. PeriodAll resolves to no range at all.
func (p Period) Resolve(now time.Time, custom *DateRange) (*DateRange, error) {
	day := domain.Day(now)
	switch p {
	case PeriodDay:
		return &DateRange{Start: day, End: day}, nil
	case PeriodWeek:
		// ISO week, Monday through Sunday.
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := day.AddDate(0, 0, 1-weekday)
		return &DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case PeriodMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return &DateRange{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case PeriodYear:
		start := time.Date(day.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return &DateRange{Start: start, End: start.AddDate(1, 0, -1)}, nil
	case PeriodCustom:
		if custom == nil || custom.Start.IsZero() || custom.End.IsZero() {
			return nil, errors.NewInvalidRangeError("custom period requires both start and end date")
		}
		return &DateRange{Start: domain.Day(custom.Start), End: domain.Day(custom.End)}, nil
	case PeriodAll:
		return nil, nil
	default:
		return nil, errors.NewInvalidRangeError("unknown period " + string(p))
	}
}

// Scope describes what a report request covers. Project ids must already be
// resolved; the sentinel never reaches a selector builder.
type Scope struct {
	ProjectIDs []string
	Period     Period
	Dates      *DateRange
	UserIDs    []string // empty or containing the sentinel selects all users
	Customer   string
	Limit      int
	Page       int
}

// ScopeResolver resolves the "all" project sentinel against the caller's
// visible project set. It never leaks projects outside owner, team and
// public visibility.
type ScopeResolver struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
}

// NewScopeResolver creates a new ScopeResolver instance.
func NewScopeResolver(repo sqlite.Repository) *ScopeResolver {
	return &ScopeResolver{repo: repo, mapper: domain.NewMapper()}
}

// ResolveProjects expands the sentinel into the ids of every project the
// caller owns, is a team member of, or that is public. Explicit ids are
// passed through unchanged. The result is never nil: a caller with no
// visible projects resolves to an empty scope, which matches nothing
// downstream.
func (r *ScopeResolver) ResolveProjects(ctx context.Context, callerID string, projectIDs []string) ([]string, error) {
	if !containsSentinel(projectIDs) {
		return projectIDs, nil
	}

	dbProjects, err := r.repo.ListProjectsForUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(dbProjects))
	for i, p := range dbProjects {
		ids[i] = p.ID
	}
	return ids, nil
}

func containsSentinel(ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if id == AllSentinel {
			return true
		}
	}
	return false
}

// ResolveUsers maps the sentinel to an unfiltered user dimension.
func ResolveUsers(userIDs []string) []string {
	for _, id := range userIDs {
		if id == AllSentinel {
			return nil
		}
	}
	return userIDs
}
