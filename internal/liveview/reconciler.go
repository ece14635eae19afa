package liveview

import (
	"context"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// EventKind labels a delta pushed to a subscriber.
type EventKind int

const (
	EventAdded EventKind = iota
	EventChanged
)

// Event is one delta on a live derived set. Added events from the resource
// variant carry the single new member; added events from the user-list
// variant and every changed event carry the full refreshed set.
type Event struct {
	Kind     EventKind
	Profiles []domain.ResourceProfile
}

// Variant selects the event shape of a subscription.
type Variant int

const (
	// ProjectUsers publishes the member list as one unit: every added
	// event carries the full set, removals arrive as a changed event.
	ProjectUsers Variant = iota
	// ProjectResources publishes per-member added events on insert and a
	// full-set changed event after a removal.
	ProjectResources
)

// State is the lifecycle of one subscription.
type State int

const (
	Initializing State = iota
	Live
	Stopped
)

// Reconciler maintains one live derived set: the distinct active users
// referenced by the timecards of a project scope. It is driven by raw
// insert/remove notifications and is independent of how those
// notifications travel. Inserts patch the set incrementally; removals
// trigger a full rescan because a removal alone does not reveal whether
// other timecards still reference the same user.
//
// A Reconciler is not safe for concurrent use; its owner serializes calls.
type Reconciler struct {
	repo       sqlite.Repository
	mapper     *domain.Mapper
	variant    Variant
	projectIDs []string
	state      State
	members    map[string]bool
	profiles   []domain.ResourceProfile
	emit       func(Event)
}

// NewReconciler creates a reconciler for the given resolved project scope.
// Events are delivered through emit, synchronously from Start, HandleInsert
// and HandleRemove.
func NewReconciler(repo sqlite.Repository, variant Variant, projectIDs []string, emit func(Event)) *Reconciler {
	return &Reconciler{
		repo:       repo,
		mapper:     domain.NewMapper(),
		variant:    variant,
		projectIDs: projectIDs,
		state:      Initializing,
		members:    make(map[string]bool),
		emit:       emit,
	}
}

// State reports the subscription lifecycle state.
func (r *Reconciler) State() State {
	return r.state
}

// Snapshot returns the currently tracked set.
func (r *Reconciler) Snapshot() []domain.ResourceProfile {
	out := make([]domain.ResourceProfile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Start scans the current timecards once, emits one added event carrying
// the full initial set and transitions to Live.
func (r *Reconciler) Start(ctx context.Context) error {
	if r.state != Initializing {
		return nil
	}
	if err := r.rescan(ctx); err != nil {
		return err
	}
	r.state = Live
	r.emit(Event{Kind: EventAdded, Profiles: r.Snapshot()})
	return nil
}

// HandleInsert folds one observed timecard insert into the set. A user
// already tracked, or deactivated, produces no event; a new member is
// emitted without rescanning.
func (r *Reconciler) HandleInsert(ctx context.Context, userID string) error {
	if r.state != Live || r.members[userID] {
		return nil
	}

	dbUsers, err := r.repo.ListUsersByIDs(ctx, []string{userID}, true)
	if err != nil {
		return err
	}
	if len(dbUsers) == 0 {
		// Deactivated accounts never appear in the derived set.
		return nil
	}
	user, err := r.mapper.User.FromDatabase(*dbUsers[0])
	if err != nil {
		return err
	}

	profile := domain.ResourceProfileOf(user)
	r.members[userID] = true
	r.profiles = append(r.profiles, profile)

	switch r.variant {
	case ProjectResources:
		r.emit(Event{Kind: EventAdded, Profiles: []domain.ResourceProfile{profile}})
	default:
		// The user-list variant republishes the whole set as a new document
		// on every membership add.
		r.emit(Event{Kind: EventAdded, Profiles: r.Snapshot()})
	}
	return nil
}

// HandleRemove reacts to one observed timecard removal by rederiving the
// whole set and emitting it as a changed event. A concurrent insert missed
// by the rescan converges through its own insert notification.
func (r *Reconciler) HandleRemove(ctx context.Context) error {
	if r.state != Live {
		return nil
	}
	if err := r.rescan(ctx); err != nil {
		return err
	}
	r.emit(Event{Kind: EventChanged, Profiles: r.Snapshot()})
	return nil
}

// Stop ends the subscription. No event is emitted at or after Stop.
func (r *Reconciler) Stop() {
	r.state = Stopped
}

// rescan rebuilds members and profiles from the current timecards.
func (r *Reconciler) rescan(ctx context.Context) error {
	dbCards, err := r.repo.SearchTimecards(ctx, sqlite.TimecardFilter{ProjectIDs: r.projectIDs})
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	ordered := make([]string, 0)
	for _, tc := range dbCards {
		if !seen[tc.UserID] {
			seen[tc.UserID] = true
			ordered = append(ordered, tc.UserID)
		}
	}

	dbUsers, err := r.repo.ListUsersByIDs(ctx, ordered, true)
	if err != nil {
		return err
	}
	active := make(map[string]domain.ResourceProfile, len(dbUsers))
	for _, dbUser := range dbUsers {
		user, err := r.mapper.User.FromDatabase(*dbUser)
		if err != nil {
			return err
		}
		active[user.ID] = domain.ResourceProfileOf(user)
	}

	r.members = make(map[string]bool, len(active))
	r.profiles = r.profiles[:0]
	for _, userID := range ordered {
		profile, ok := active[userID]
		if !ok {
			continue
		}
		r.members[userID] = true
		r.profiles = append(r.profiles, profile)
	}
	return nil
}
