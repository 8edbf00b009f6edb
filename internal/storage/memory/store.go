// Package memory is an in-process store satisfying the app repositories.
// Transactions are serialized store-wide and roll back by restoring a
// snapshot, so it is suitable for tests and single-process development.
package memory

import (
	"context"
	"sync"

	"github.com/cimillas/eventhub/internal/domain"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users   map[string]domain.User
	venues  map[string]domain.Venue
	events  map[string]domain.Event
	tickets map[string]domain.Ticket
	reviews map[string]domain.EventReview
}

func New() *Store {
	return &Store{
		users:   map[string]domain.User{},
		venues:  map[string]domain.Venue{},
		events:  map[string]domain.Event{},
		tickets: map[string]domain.Ticket{},
		reviews: map[string]domain.EventReview{},
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// WithTx runs fn with every other transaction and write excluded. Any
// error from fn discards the writes fn made.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Ping satisfies the health check.
func (s *Store) Ping(context.Context) error { return nil }

// write runs fn under the data lock. Outside a transaction it also takes
// the transaction lock so a concurrent rollback cannot erase the write.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	users   map[string]domain.User
	venues  map[string]domain.Venue
	events  map[string]domain.Event
	tickets map[string]domain.Ticket
	reviews map[string]domain.EventReview
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:   clone(s.users),
		venues:  clone(s.venues),
		events:  clone(s.events),
		tickets: clone(s.tickets),
		reviews: clone(s.reviews),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.venues = snap.venues
	s.events = snap.events
	s.tickets = snap.tickets
	s.reviews = snap.reviews
}

func clone[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
