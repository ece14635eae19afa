package liveview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/schnell18/titra/internal/domain"
	"github.com/schnell18/titra/internal/reporting"
	"github.com/schnell18/titra/internal/repository/sqlite"
)

// Publisher binds reconcilers to the repository change feed. One
// subscription owns one watch handle and one delivery goroutine.
type Publisher struct {
	repo     sqlite.Repository
	resolver *reporting.ScopeResolver
	logger   *slog.Logger
}

// NewPublisher creates a publisher on the given repository.
func NewPublisher(repo sqlite.Repository, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		repo:     repo,
		resolver: reporting.NewScopeResolver(repo),
		logger:   logger,
	}
}

// Subscription is one live derived-set feed. Read deltas from Events until
// it is closed; Stop ends delivery and releases the underlying watch.
type Subscription struct {
	events     chan Event
	handle     *sqlite.WatchHandle
	reconciler *Reconciler
	mu         sync.Mutex
	stopped    bool
}

// Events is the delta stream. It is closed after Stop.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Snapshot returns the currently tracked set.
func (s *Subscription) Snapshot() []domain.ResourceProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.Snapshot()
}

// Stop ends the subscription and closes the event channel. The handle is
// released before the flag is taken so a delivery blocked on a full event
// buffer unblocks instead of holding the lock.
func (s *Subscription) Stop() {
	s.handle.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.reconciler.Stop()
}

// SubscribeProjectUsers opens a full-set subscription: every delta carries
// the complete member list. The "all" sentinel in projectIDs resolves to
// the caller's visible projects.
func (p *Publisher) SubscribeProjectUsers(ctx context.Context, callerID string, projectIDs []string) (*Subscription, error) {
	return p.subscribe(ctx, callerID, projectIDs, ProjectUsers)
}

// SubscribeProjectResources opens an incremental subscription: inserts are
// delivered as single-member added events, removals as full-set changed
// events.
func (p *Publisher) SubscribeProjectResources(ctx context.Context, callerID string, projectIDs []string) (*Subscription, error) {
	return p.subscribe(ctx, callerID, projectIDs, ProjectResources)
}

func (p *Publisher) subscribe(ctx context.Context, callerID string, projectIDs []string, variant Variant) (*Subscription, error) {
	resolved, err := p.resolver.ResolveProjects(ctx, callerID, projectIDs)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		events: make(chan Event, 16),
		handle: p.repo.WatchTimecards(resolved),
	}
	sub.reconciler = NewReconciler(p.repo, variant, resolved, func(ev Event) {
		select {
		case sub.events <- ev:
		case <-sub.handle.Done():
		}
	})

	// The watch is armed before the initial scan so an insert landing
	// between scan and Live arrives as a regular insert notification.
	if err := sub.reconciler.Start(ctx); err != nil {
		sub.handle.Stop()
		return nil, err
	}

	go p.deliver(ctx, sub)
	return sub, nil
}

// deliver pumps raw change notifications into the reconciler until the
// subscription stops. Field edits carry no membership information and are
// skipped.
func (p *Publisher) deliver(ctx context.Context, sub *Subscription) {
	defer close(sub.events)
	for {
		select {
		case <-sub.handle.Done():
			return
		case <-ctx.Done():
			sub.Stop()
			return
		case ev := <-sub.handle.C:
			var err error
			sub.mu.Lock()
			if !sub.stopped {
				switch ev.Op {
				case sqlite.OpInsert:
					err = sub.reconciler.HandleInsert(ctx, ev.UserID)
				case sqlite.OpRemove:
					err = sub.reconciler.HandleRemove(ctx)
				}
			}
			sub.mu.Unlock()
			if err != nil {
				p.logger.Error("live view update failed", "error", err)
			}
		}
	}
}
