package liveview

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/repository/sqlite"
)

func setupLiveviewDB(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "titra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedLiveUser(t *testing.T, repo sqlite.Repository, id, name string, inactive bool) {
	t.Helper()
	require.NoError(t, repo.CreateUser(context.Background(), &sqlite.User{
		ID: id, Name: name, Inactive: inactive, TimeUnit: "h", HoursToDays: 8,
	}))
}

func seedLiveTimecard(t *testing.T, repo sqlite.Repository, id, userID, projectID string) {
	t.Helper()
	require.NoError(t, repo.CreateTimecard(context.Background(), &sqlite.Timecard{
		ID: id, UserID: userID, ProjectID: projectID, Task: "t" + id,
		Date: "2024-01-01", Hours: 1,
	}))
}

func memberIDs(profiles []domain.ResourceProfile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

func TestReconciler_Start(t *testing.T) {
	repo := setupLiveviewDB(t)
	ctx := context.Background()

	seedLiveUser(t, repo, "u1", "Alice", false)
	seedLiveUser(t, repo, "u2", "Bob", false)
	seedLiveUser(t, repo, "u3", "Carol", true)
	seedLiveTimecard(t, repo, "tc1", "u1", "p1")
	seedLiveTimecard(t, repo, "tc2", "u1", "p1")
	seedLiveTimecard(t, repo, "tc3", "u2", "p1")
	seedLiveTimecard(t, repo, "tc4", "u3", "p1")
	seedLiveTimecard(t, repo, "tc5", "u2", "p-other")

	var events []Event
	r := NewReconciler(repo, ProjectUsers, []string{"p1"}, func(ev Event) {
		events = append(events, ev)
	})

	require.NoError(t, r.Start(ctx))
	assert.Equal(t, Live, r.State())

	// One added event with the full deduplicated set, inactive excluded.
	require.Len(t, events, 1)
	assert.Equal(t, EventAdded, events[0].Kind)
	assert.ElementsMatch(t, []string{"u1", "u2"}, memberIDs(events[0].Profiles))
}

func TestReconciler_HandleInsert(t *testing.T) {
	repo := setupLiveviewDB(t)
	ctx := context.Background()

	seedLiveUser(t, repo, "u1", "Alice", false)
	seedLiveUser(t, repo, "u2", "Bob", false)
	seedLiveUser(t, repo, "u3", "Carol", true)

	t.Run("should add each distinct user exactly once", func(t *testing.T) {
		var events []Event
		r := NewReconciler(repo, ProjectResources, []string{"p1"}, func(ev Event) {
			events = append(events, ev)
		})
		require.NoError(t, r.Start(ctx))
		events = nil

		// Five inserts across two distinct active users.
		for i, userID := range []string{"u1", "u2", "u1", "u2", "u1"} {
			seedLiveTimecard(t, repo, fmt.Sprintf("tc%d", i), userID, "p1")
			require.NoError(t, r.HandleInsert(ctx, userID))
		}

		require.Len(t, events, 2)
		for _, ev := range events {
			assert.Equal(t, EventAdded, ev.Kind)
			assert.Len(t, ev.Profiles, 1)
		}
		assert.ElementsMatch(t, []string{"u1", "u2"}, memberIDs(r.Snapshot()))
	})

	t.Run("should never emit an inactive user", func(t *testing.T) {
		var events []Event
		r := NewReconciler(repo, ProjectResources, []string{"p2"}, func(ev Event) {
			events = append(events, ev)
		})
		require.NoError(t, r.Start(ctx))
		events = nil

		seedLiveTimecard(t, repo, "tc-inactive", "u3", "p2")
		require.NoError(t, r.HandleInsert(ctx, "u3"))
		assert.Empty(t, events)
		assert.Empty(t, r.Snapshot())
	})

	t.Run("should emit the full set in the users variant", func(t *testing.T) {
		var events []Event
		r := NewReconciler(repo, ProjectUsers, []string{"p3"}, func(ev Event) {
			events = append(events, ev)
		})
		require.NoError(t, r.Start(ctx))
		events = nil

		seedLiveTimecard(t, repo, "tc-a", "u1", "p3")
		require.NoError(t, r.HandleInsert(ctx, "u1"))
		seedLiveTimecard(t, repo, "tc-b", "u2", "p3")
		require.NoError(t, r.HandleInsert(ctx, "u2"))

		require.Len(t, events, 2)
		assert.Equal(t, EventAdded, events[0].Kind)
		assert.Len(t, events[0].Profiles, 1)
		assert.Equal(t, EventAdded, events[1].Kind)
		assert.Len(t, events[1].Profiles, 2)
	})
}

func TestReconciler_HandleRemove(t *testing.T) {
	repo := setupLiveviewDB(t)
	ctx := context.Background()

	seedLiveUser(t, repo, "u1", "Alice", false)
	seedLiveUser(t, repo, "u2", "Bob", false)
	seedLiveTimecard(t, repo, "tc1", "u1", "p1")
	seedLiveTimecard(t, repo, "tc2", "u1", "p1")
	seedLiveTimecard(t, repo, "tc3", "u2", "p1")

	var events []Event
	r := NewReconciler(repo, ProjectUsers, []string{"p1"}, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, r.Start(ctx))
	events = nil

	t.Run("should keep a member that still has entries", func(t *testing.T) {
		require.NoError(t, repo.DeleteTimecard(ctx, "tc1"))
		require.NoError(t, r.HandleRemove(ctx))

		require.Len(t, events, 1)
		assert.Equal(t, EventChanged, events[0].Kind)
		assert.ElementsMatch(t, []string{"u1", "u2"}, memberIDs(events[0].Profiles))
	})

	t.Run("should drop a member whose last entry was removed", func(t *testing.T) {
		events = nil
		require.NoError(t, repo.DeleteTimecard(ctx, "tc2"))
		require.NoError(t, r.HandleRemove(ctx))

		require.Len(t, events, 1)
		assert.Equal(t, []string{"u2"}, memberIDs(events[0].Profiles))
	})
}

func TestReconciler_Stop(t *testing.T) {
	repo := setupLiveviewDB(t)
	ctx := context.Background()

	seedLiveUser(t, repo, "u1", "Alice", false)

	var events []Event
	r := NewReconciler(repo, ProjectUsers, []string{"p1"}, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, r.Start(ctx))
	r.Stop()
	events = nil

	seedLiveTimecard(t, repo, "tc1", "u1", "p1")
	require.NoError(t, r.HandleInsert(ctx, "u1"))
	require.NoError(t, r.HandleRemove(ctx))

	assert.Equal(t, Stopped, r.State())
	assert.Empty(t, events)
}
