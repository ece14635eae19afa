package reporting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schnell18/titra/internal/repository/sqlite"
)

func TestExecutor_Execute(t *testing.T) {
	repo := setupReportingDB(t)
	executor := NewExecutor(repo)
	ctx := context.Background()

	seedUser(t, repo, "u1", "Alice", false)
	seedUser(t, repo, "u2", "Bob", false)
	seedProject(t, repo, "p1", "u1", "acme")
	seedProject(t, repo, "p2", "u1", "globex")

	// Three fractional entries on the same day and user sum without float
	// drift.
	seedTimecard(t, repo, "tc1", "u1", "p1", "a", "2024-05-10", 0.1)
	seedTimecard(t, repo, "tc2", "u1", "p1", "b", "2024-05-10", 0.2)
	seedTimecard(t, repo, "tc3", "u1", "p2", "c", "2024-05-10", 0.3)
	seedTimecard(t, repo, "tc4", "u2", "p1", "d", "2024-05-11", 4)

	t.Run("should group by day and user with exact sums", func(t *testing.T) {
		spec, err := BuildDailyHoursSelector(Scope{ProjectIDs: []string{"p1", "p2"}, Period: PeriodAll})
		require.NoError(t, err)

		rows, total, err := executor.Execute(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, rows, 2)

		// Newest date first.
		assert.Equal(t, "u2", rows[0].UserID)
		assert.Equal(t, 4.0, rows[0].Hours)
		assert.Equal(t, "u1", rows[1].UserID)
		assert.Equal(t, 0.6, rows[1].Hours)
	})

	t.Run("should group by project and user", func(t *testing.T) {
		spec, err := BuildTotalHoursSelector(Scope{ProjectIDs: []string{"p1", "p2"}, Period: PeriodAll})
		require.NoError(t, err)

		rows, total, err := executor.Execute(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, rows, 3)

		assert.Equal(t, Row{ProjectID: "p1", UserID: "u1", Hours: 0.3}, rows[0])
		assert.Equal(t, Row{ProjectID: "p1", UserID: "u2", Hours: 4}, rows[1])
		assert.Equal(t, Row{ProjectID: "p2", UserID: "u1", Hours: 0.3}, rows[2])
	})

	t.Run("should restrict to the date window", func(t *testing.T) {
		spec, err := BuildDailyHoursSelector(Scope{
			ProjectIDs: []string{"p1", "p2"},
			Period:     PeriodCustom,
			Dates: &DateRange{
				Start: time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
			},
		})
		require.NoError(t, err)

		rows, total, err := executor.Execute(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "u2", rows[0].UserID)
	})

	t.Run("should filter by customer", func(t *testing.T) {
		spec, err := BuildTotalHoursSelector(Scope{
			ProjectIDs: []string{"p1", "p2"},
			Period:     PeriodAll,
			Customer:   "globex",
		})
		require.NoError(t, err)

		rows, total, err := executor.Execute(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, "p2", rows[0].ProjectID)
	})
}

func TestExecutor_Paging(t *testing.T) {
	repo := setupReportingDB(t)
	executor := NewExecutor(repo)
	ctx := context.Background()

	seedUser(t, repo, "u1", "Alice", false)
	seedProject(t, repo, "p1", "u1", "")
	for i := 1; i <= 7; i++ {
		seedTimecard(t, repo, fmt.Sprintf("tc%d", i), "u1", "p1", "t",
			fmt.Sprintf("2024-05-%02d", i), 1)
	}

	t.Run("should report the same total on every page", func(t *testing.T) {
		var collected []Row
		for page := 1; page <= 3; page++ {
			spec, err := BuildDailyHoursSelector(Scope{
				ProjectIDs: []string{"p1"}, Period: PeriodAll, Limit: 3, Page: page,
			})
			require.NoError(t, err)

			rows, total, err := executor.Execute(ctx, spec)
			require.NoError(t, err)
			assert.Equal(t, 7, total)
			collected = append(collected, rows...)
		}
		assert.Len(t, collected, 7)

		unpaged, total, err := executor.Execute(ctx, QuerySpec{Grouping: GroupByDayUser})
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		assert.Equal(t, unpaged, collected)
	})

	t.Run("should return an empty page past the end", func(t *testing.T) {
		spec, err := BuildDailyHoursSelector(Scope{
			ProjectIDs: []string{"p1"}, Period: PeriodAll, Limit: 5, Page: 4,
		})
		require.NoError(t, err)

		rows, total, err := executor.Execute(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		assert.Empty(t, rows)
	})
}

func TestExecutor_ExecuteWorkingTime(t *testing.T) {
	repo := setupReportingDB(t)
	executor := NewExecutor(repo)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &sqlite.User{
		ID: "u1", Name: "Alice", TimeUnit: "h", HoursToDays: 6,
	}))
	seedProject(t, repo, "p1", "u1", "")
	seedTimecard(t, repo, "tc1", "u1", "p1", "a", "2024-05-10", 5)
	seedTimecard(t, repo, "tc2", "u1", "p1", "b", "2024-05-10", 2.5)

	spec, err := BuildWorkingTimeSelector(Scope{ProjectIDs: []string{"p1"}, Period: PeriodAll})
	require.NoError(t, err)

	rows, total, err := executor.ExecuteWorkingTime(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)

	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, "Alice", rows[0].Resource)
	assert.Equal(t, 7.5, rows[0].TotalTime)
	assert.Equal(t, 6.0, rows[0].RegularWorkingTime)
	assert.Equal(t, 1.5, rows[0].Difference)
}
