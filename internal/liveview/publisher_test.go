package liveview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schnell18/titra/internal/repository/sqlite"
)

func nextEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublisher_SubscribeProjectResources(t *testing.T) {
	repo := setupLiveviewDB(t)
	ctx := context.Background()

	seedLiveUser(t, repo, "owner", "Owner", false)
	seedLiveUser(t, repo, "u1", "Alice", false)
	require.NoError(t, repo.CreateProject(ctx, &sqlite.Project{
		ID: "p1", UserID: "owner", Name: "one", Team: "[]",
	}))
	seedLiveTimecard(t, repo, "tc1", "owner", "p1")

	pub := NewPublisher(repo, nil)
	sub, err := pub.SubscribeProjectResources(ctx, "owner", []string{"p1"})
	require.NoError(t, err)
	defer sub.Stop()

	initial := nextEvent(t, sub)
	assert.Equal(t, EventAdded, initial.Kind)
	assert.Equal(t, []string{"owner"}, memberIDs(initial.Profiles))

	// An insert by a new user arrives as a single-member added event.
	seedLiveTimecard(t, repo, "tc2", "u1", "p1")
	added := nextEvent(t, sub)
	assert.Equal(t, EventAdded, added.Kind)
	assert.Equal(t, []string{"u1"}, memberIDs(added.Profiles))

	// Removing the last entry of a member rederives the set.
	require.NoError(t, repo.DeleteTimecard(ctx, "tc2"))
	changed := nextEvent(t, sub)
	assert.Equal(t, EventChanged, changed.Kind)
	assert.Equal(t, []string{"owner"}, memberIDs(changed.Profiles))
}

func TestPublisher_NoVisibleProjects(t *testing.T) {
	repo := setupLiveviewDB(t)
	ctx := context.Background()

	seedLiveUser(t, repo, "owner", "Owner", false)
	seedLiveUser(t, repo, "stranger", "Mallory", false)
	require.NoError(t, repo.CreateProject(ctx, &sqlite.Project{
		ID: "p1", UserID: "owner", Name: "one", Team: "[]",
	}))
	seedLiveTimecard(t, repo, "tc1", "owner", "p1")

	pub := NewPublisher(repo, nil)
	sub, err := pub.SubscribeProjectResources(ctx, "stranger", nil)
	require.NoError(t, err)
	defer sub.Stop()

	initial := nextEvent(t, sub)
	assert.Equal(t, EventAdded, initial.Kind)
	assert.Empty(t, initial.Profiles)

	// Activity in a project the subscriber cannot see never reaches it.
	seedLiveTimecard(t, repo, "tc2", "owner", "p1")
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event for invisible project: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublisher_StopClosesEvents(t *testing.T) {
	repo := setupLiveviewDB(t)
	ctx := context.Background()

	seedLiveUser(t, repo, "owner", "Owner", false)
	require.NoError(t, repo.CreateProject(ctx, &sqlite.Project{
		ID: "p1", UserID: "owner", Name: "one", Team: "[]",
	}))

	pub := NewPublisher(repo, nil)
	sub, err := pub.SubscribeProjectUsers(ctx, "owner", nil)
	require.NoError(t, err)

	initial := nextEvent(t, sub)
	assert.Equal(t, EventAdded, initial.Kind)

	sub.Stop()
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("event channel not closed after stop")
		}
	}
}
