package sessions

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/phampho1103/UITPAY-Web/internal/docstore"
	"github.com/phampho1103/UITPAY-Web/internal/livetree"
)

// TreeWatcher is the read side of the live tree store.
type TreeWatcher interface {
	Watch(ctx context.Context, fn func(livetree.Snapshot)) error
}

// DocumentLister is the one capability the projector needs from the document store.
type DocumentLister interface {
	List(ctx context.Context, collection string) ([]docstore.Document, error)
}

// Projector turns live session snapshots into view records joined with profiles.
type Projector struct {
	tree TreeWatcher
	docs DocumentLister
	// ReadTimeout bounds each one-shot profile read.
	ReadTimeout time.Duration
}

func NewProjector(tree TreeWatcher, docs DocumentLister) *Projector {
	return &Projector{tree: tree, docs: docs, ReadTimeout: 10 * time.Second}
}

// Subscription is a running projection; see Projector.Subscribe.
type Subscription struct {
	onUpdate func([]ViewRecord)
	cancel   context.CancelFunc
	done     chan struct{}

	mu      sync.Mutex
	started uint64 // sequence of the most recently started join
	closed  bool
	err     error

	// held across check-and-deliver so a newer result can never be
	// overtaken by an older one between the check and the callback
	deliverMu sync.Mutex
	joins     sync.WaitGroup
}

// Subscribe starts watching the tree. onUpdate receives the full, freshly
// joined record set after every snapshot; calls never overlap. A result whose
// snapshot is older than the latest started join is dropped.
func (p *Projector) Subscribe(ctx context.Context, onUpdate func([]ViewRecord)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		onUpdate: onUpdate,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		err := p.tree.Watch(ctx, func(snap livetree.Snapshot) { p.handle(ctx, s, snap) })
		if err == nil || ctx.Err() != nil {
			return
		}
		log.Printf("sessions: tree subscription failed: %v", err)
		s.mu.Lock()
		s.err = &SubscriptionError{Err: err}
		s.mu.Unlock()
	}()
	return s
}

func (p *Projector) handle(ctx context.Context, s *Subscription, snap livetree.Snapshot) {
	seq, ok := s.begin()
	if !ok {
		return
	}
	if len(snap) == 0 {
		s.deliver(seq, []ViewRecord{})
		return
	}

	sessions, skipped := DecodeSnapshot(snap)
	for key, err := range skipped {
		log.Printf("sessions: skip key=%s: %v", key, err)
	}

	s.joins.Add(1)
	go func() {
		defer s.joins.Done()
		// an unsubscribe must not abort a join already in flight
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.ReadTimeout)
		defer cancel()
		s.deliver(seq, p.join(rctx, seq, sessions))
	}()
}

func (p *Projector) join(ctx context.Context, seq uint64, sessions map[string]Session) []ViewRecord {
	docs, err := p.docs.List(ctx, ProfileCollection)
	if err != nil {
		log.Printf("sessions: read profiles seq=%d: %v", seq, err)
		return []ViewRecord{}
	}
	profiles, err := DecodeProfiles(docs)
	if err != nil {
		log.Printf("sessions: read profiles seq=%d: %v", seq, err)
		return []ViewRecord{}
	}
	return Join(sessions, profiles)
}

func (s *Subscription) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.started++
	return s.started, true
}

func (s *Subscription) deliver(seq uint64, records []ViewRecord) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	stale := s.closed || seq != s.started
	s.mu.Unlock()
	if stale {
		return
	}
	s.onUpdate(records)
}

// Unsubscribe stops the tree subscription and all further deliveries.
// Joins in flight finish without an observer.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Done is closed when the tree subscription has ended, by Unsubscribe or failure.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err returns a *SubscriptionError once the feed has failed, nil otherwise.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the subscription has ended and every join has settled.
func (s *Subscription) Wait() {
	<-s.done
	s.joins.Wait()
}
