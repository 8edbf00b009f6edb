package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories over one pool so a single value satisfies
// every app repository interface.
type Store struct {
	*EventRepository
	*TicketRepository
	*ReviewRepository
	*UserRepository

	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		EventRepository:  NewEventRepository(pool),
		TicketRepository: NewTicketRepository(pool),
		ReviewRepository: NewReviewRepository(pool),
		UserRepository:   NewUserRepository(pool),
		pool:             pool,
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.pool, fn)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
