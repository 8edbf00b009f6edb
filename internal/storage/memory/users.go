package memory

import (
	"context"
	"strings"

	"github.com/cimillas/eventhub/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	return s.write(ctx, func() error {
		for _, u := range s.users {
			if u.Username == user.Username {
				return domain.ErrUsernameTaken
			}
			if user.Email != "" && strings.EqualFold(u.Email, user.Email) {
				return domain.ErrEmailTaken
			}
		}
		s.users[user.ID] = user
		return nil
	})
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) SetStaff(ctx context.Context, username string, isStaff bool) error {
	return s.write(ctx, func() error {
		for id, u := range s.users {
			if u.Username == username {
				u.IsStaff = isStaff
				s.users[id] = u
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
}
