package sqlite

import (
	"sync"
)

// Op identifies the kind of change observed on the timecard collection.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpRemove
)

// ChangeEvent is one observed raw change on the timecard collection.
// Remove events only carry identifiers; the removed document is gone.
type ChangeEvent struct {
	Op        Op
	ID        string
	ProjectID string
	UserID    string
}

// WatchHandle is a live subscription on timecard changes restricted to a
// project scope. Consumers read from C until they call Stop; no event is
// delivered after Stop returns.
type WatchHandle struct {
	C           chan ChangeEvent
	done        chan struct{}
	stopOnce    sync.Once
	allProjects bool
	projects    map[string]bool
	registry    *watchRegistry
}

// Done is closed when the handle has been stopped.
func (h *WatchHandle) Done() <-chan struct{} {
	return h.done
}

// Stop releases the handle. Pending notifications are discarded.
func (h *WatchHandle) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.registry.remove(h)
	})
}

func (h *WatchHandle) matches(projectID string) bool {
	if h.allProjects {
		return true
	}
	return h.projects[projectID]
}

// watchRegistry fans observed timecard changes out to active handles.
type watchRegistry struct {
	mu      sync.Mutex
	handles map[*WatchHandle]struct{}
}

func newWatchRegistry() *watchRegistry {
	return &watchRegistry{handles: make(map[*WatchHandle]struct{})}
}

// A nil scope observes every project; a non-nil empty scope observes none.
func (r *watchRegistry) watch(projectIDs []string) *WatchHandle {
	handle := &WatchHandle{
		C:           make(chan ChangeEvent, 64),
		done:        make(chan struct{}),
		allProjects: projectIDs == nil,
		projects:    make(map[string]bool, len(projectIDs)),
		registry:    r,
	}
	for _, id := range projectIDs {
		handle.projects[id] = true
	}

	r.mu.Lock()
	r.handles[handle] = struct{}{}
	r.mu.Unlock()

	return handle
}

func (r *watchRegistry) remove(h *WatchHandle) {
	r.mu.Lock()
	delete(r.handles, h)
	r.mu.Unlock()
}

// notify delivers the event to every handle whose project scope matches.
// Delivery blocks on a full consumer buffer rather than dropping; a stopped
// handle is skipped.
func (r *watchRegistry) notify(ev ChangeEvent) {
	r.mu.Lock()
	targets := make([]*WatchHandle, 0, len(r.handles))
	for h := range r.handles {
		if h.matches(ev.ProjectID) {
			targets = append(targets, h)
		}
	}
	r.mu.Unlock()

	for _, h := range targets {
		select {
		case h.C <- ev:
		case <-h.done:
		}
	}
}
