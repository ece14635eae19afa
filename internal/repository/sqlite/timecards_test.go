package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTimecard(t *testing.T, repo *SQLiteRepository, id, userID, projectID, task, date string, hours float64) {
	t.Helper()
	err := repo.CreateTimecard(context.Background(), &Timecard{
		ID:        id,
		UserID:    userID,
		ProjectID: projectID,
		Task:      task,
		Date:      date,
		Hours:     hours,
	})
	require.NoError(t, err)
}

func TestFindTimecardsByKey(t *testing.T) {
	repo := setupTestDB(t)
	createTestUser(t, repo, "u1", "Alice", "t1", false)
	createTestProject(t, repo, "p1", "u1", "project one")

	day := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	createTestTimecard(t, repo, "tc1", "u1", "p1", "review", "2024-05-10", 2)
	createTestTimecard(t, repo, "tc2", "u1", "p1", "review", "2024-05-10", 3)
	createTestTimecard(t, repo, "tc3", "u1", "p1", "review", "2024-05-11", 1)
	createTestTimecard(t, repo, "tc4", "u1", "p1", "other", "2024-05-10", 1)

	t.Run("should match on the full tuple ignoring time of day", func(t *testing.T) {
		matches, err := repo.FindTimecardsByKey(context.Background(), "u1", "p1", "review", day)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "tc1", matches[0].ID)
		assert.Equal(t, "tc2", matches[1].ID)
	})

	t.Run("should delete every match and report the count", func(t *testing.T) {
		removed, err := repo.DeleteTimecardsByKey(context.Background(), "u1", "p1", "review", day)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		matches, err := repo.FindTimecardsByKey(context.Background(), "u1", "p1", "review", day)
		require.NoError(t, err)
		assert.Empty(t, matches)

		// Neighbors on other days or tasks are untouched.
		other, err := repo.GetTimecard(context.Background(), "tc3")
		require.NoError(t, err)
		assert.Equal(t, "tc3", other.ID)
	})
}

func TestSearchTimecards(t *testing.T) {
	repo := setupTestDB(t)
	createTestUser(t, repo, "u1", "Alice", "t1", false)
	createTestUser(t, repo, "u2", "Bob", "t2", false)
	require.NoError(t, repo.CreateProject(context.Background(), &Project{
		ID: "p1", UserID: "u1", Name: "one", Customer: "acme", Team: "[]",
	}))
	require.NoError(t, repo.CreateProject(context.Background(), &Project{
		ID: "p2", UserID: "u1", Name: "two", Customer: "globex", Team: "[]",
	}))

	createTestTimecard(t, repo, "tc1", "u1", "p1", "a", "2024-05-10", 2)
	createTestTimecard(t, repo, "tc2", "u2", "p1", "b", "2024-05-11", 3)
	createTestTimecard(t, repo, "tc3", "u1", "p2", "c", "2024-05-12", 4)

	t.Run("should filter by project", func(t *testing.T) {
		cards, err := repo.SearchTimecards(context.Background(), TimecardFilter{ProjectIDs: []string{"p1"}})
		require.NoError(t, err)
		assert.Len(t, cards, 2)
	})

	t.Run("should filter by user and date window", func(t *testing.T) {
		from := time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)
		cards, err := repo.SearchTimecards(context.Background(), TimecardFilter{
			UserIDs:  []string{"u1"},
			DateFrom: &from,
		})
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "tc3", cards[0].ID)
	})

	t.Run("should filter by customer through the project join", func(t *testing.T) {
		cards, err := repo.SearchTimecards(context.Background(), TimecardFilter{Customer: "acme"})
		require.NoError(t, err)
		assert.Len(t, cards, 2)
	})

	t.Run("should treat the all customer as unfiltered", func(t *testing.T) {
		cards, err := repo.SearchTimecards(context.Background(), TimecardFilter{Customer: "all"})
		require.NoError(t, err)
		assert.Len(t, cards, 3)
	})

	t.Run("should match nothing for an empty project scope", func(t *testing.T) {
		cards, err := repo.SearchTimecards(context.Background(), TimecardFilter{ProjectIDs: []string{}})
		require.NoError(t, err)
		assert.Empty(t, cards)
	})

	t.Run("should order newest date first", func(t *testing.T) {
		cards, err := repo.SearchTimecards(context.Background(), TimecardFilter{})
		require.NoError(t, err)
		require.Len(t, cards, 3)
		assert.Equal(t, "tc3", cards[0].ID)
		assert.Equal(t, "tc1", cards[2].ID)
	})

	t.Run("should find entries without a card reference", func(t *testing.T) {
		require.NoError(t, repo.CreateTimecard(context.Background(), &Timecard{
			ID: "tc4", UserID: "u1", ProjectID: "p1", Task: "d", Date: "2024-05-13", Hours: 1, CardID: "card-9",
		}))
		cards, err := repo.SearchTimecards(context.Background(), TimecardFilter{MissingCardOnly: true})
		require.NoError(t, err)
		assert.Len(t, cards, 3)
		for _, tc := range cards {
			assert.Empty(t, tc.CardID)
		}
	})
}

func TestStateTransitions(t *testing.T) {
	repo := setupTestDB(t)
	createTestUser(t, repo, "u1", "Alice", "t1", false)
	createTestProject(t, repo, "p1", "u1", "one")

	seed := func(t *testing.T, states map[string]string) []string {
		t.Helper()
		ids := make([]string, 0, len(states))
		i := 0
		for id, state := range states {
			i++
			require.NoError(t, repo.CreateTimecard(context.Background(), &Timecard{
				ID: id, UserID: "u1", ProjectID: "p1", Task: "t" + id,
				Date: fmt.Sprintf("2024-05-%02d", i), Hours: 1, State: state,
			}))
			ids = append(ids, id)
		}
		return ids
	}

	stateOf := func(t *testing.T, id string) string {
		t.Helper()
		tc, err := repo.GetTimecard(context.Background(), id)
		require.NoError(t, err)
		return tc.State
	}

	t.Run("should export only entries still in state new", func(t *testing.T) {
		ids := seed(t, map[string]string{"e1": "", "e2": "new", "e3": "billed"})
		require.NoError(t, repo.MarkTimecardsExported(context.Background(), ids))
		assert.Equal(t, "exported", stateOf(t, "e1"))
		assert.Equal(t, "exported", stateOf(t, "e2"))
		assert.Equal(t, "billed", stateOf(t, "e3"))
	})

	t.Run("should never bill a not billable entry", func(t *testing.T) {
		ids := seed(t, map[string]string{"b1": "new", "b2": "notBillable", "b3": "exported"})
		require.NoError(t, repo.MarkTimecardsBilled(context.Background(), ids))
		assert.Equal(t, "billed", stateOf(t, "b1"))
		assert.Equal(t, "notBillable", stateOf(t, "b2"))
		assert.Equal(t, "billed", stateOf(t, "b3"))
	})

	t.Run("should apply other states unconditionally", func(t *testing.T) {
		ids := seed(t, map[string]string{"s1": "billed", "s2": "notBillable"})
		require.NoError(t, repo.SetTimecardsState(context.Background(), ids, "new"))
		assert.Equal(t, "new", stateOf(t, "s1"))
		assert.Equal(t, "new", stateOf(t, "s2"))
	})
}

func TestWatchTimecards(t *testing.T) {
	repo := setupTestDB(t)
	createTestUser(t, repo, "u1", "Alice", "t1", false)
	createTestProject(t, repo, "p1", "u1", "one")
	createTestProject(t, repo, "p2", "u1", "two")

	t.Run("should deliver scoped insert and remove events", func(t *testing.T) {
		handle := repo.WatchTimecards([]string{"p1"})
		defer handle.Stop()

		createTestTimecard(t, repo, "w1", "u1", "p1", "a", "2024-05-10", 1)
		createTestTimecard(t, repo, "w2", "u1", "p2", "b", "2024-05-10", 1)
		require.NoError(t, repo.DeleteTimecard(context.Background(), "w1"))

		ev := <-handle.C
		assert.Equal(t, OpInsert, ev.Op)
		assert.Equal(t, "w1", ev.ID)
		assert.Equal(t, "u1", ev.UserID)

		// The p2 insert was out of scope; the next event is the removal.
		ev = <-handle.C
		assert.Equal(t, OpRemove, ev.Op)
		assert.Equal(t, "w1", ev.ID)
	})

	t.Run("should observe nothing for an empty project scope", func(t *testing.T) {
		handle := repo.WatchTimecards([]string{})
		defer handle.Stop()

		createTestTimecard(t, repo, "w4", "u1", "p1", "d", "2024-05-12", 1)
		select {
		case ev := <-handle.C:
			t.Fatalf("unexpected event for empty scope: %+v", ev)
		default:
		}
	})

	t.Run("should not deliver after stop", func(t *testing.T) {
		handle := repo.WatchTimecards(nil)
		handle.Stop()

		createTestTimecard(t, repo, "w3", "u1", "p1", "c", "2024-05-11", 1)
		select {
		case ev := <-handle.C:
			t.Fatalf("unexpected event after stop: %+v", ev)
		default:
		}
	})
}
