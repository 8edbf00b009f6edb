package app

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/cimillas/eventhub/internal/auth"
	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	SetStaff(ctx context.Context, username string, isStaff bool) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) bool
}

type TokenIssuer interface {
	Issue(user domain.User) (auth.Token, error)
	Parse(raw string) (*auth.Claims, error)
}

// TokenRevoker remembers logged-out tokens. Optional.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AccountService struct {
	users   UserRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
	revoker TokenRevoker
	clock   clock.Clock
}

type AccountServiceOption func(*AccountService)

// WithRevoker enables server-side logout.
func WithRevoker(r TokenRevoker) AccountServiceOption {
	return func(s *AccountService) {
		s.revoker = r
	}
}

func NewAccountService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, clk clock.Clock, opts ...AccountServiceOption) *AccountService {
	svc := &AccountService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		clock:  clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	RepeatPassword string
}

const minPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9@.+_-]{3,150}$`)

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if !usernamePattern.MatchString(username) {
		return domain.User{}, domain.Invalid("username", "3-150 letters, digits or @.+-_")
	}
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.Invalid("email", "invalid email address")
	}
	if len(in.Password) < minPasswordLen {
		return domain.User{}, domain.Invalid("password", "must be at least 8 characters")
	}
	if in.Password != in.RepeatPassword {
		return domain.User{}, domain.Invalid("repeat_password", "passwords do not match")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, domain.Invalid("password", err.Error())
	}

	user := domain.User{
		ID:           newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

type LoginResult struct {
	User  domain.User
	Token auth.Token
}

func (s *AccountService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, domain.ErrBadCredentials
		}
		return LoginResult{}, err
	}
	if !s.hasher.Check(user.PasswordHash, password) {
		return LoginResult{}, domain.ErrBadCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to the current state of its user.
func (s *AccountService) Authenticate(ctx context.Context, raw string) (domain.User, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.User{}, err
		}
		if revoked {
			return domain.User{}, domain.ErrUnauthenticated
		}
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthenticated
		}
		return domain.User{}, err
	}
	return user, nil
}

// Logout revokes the token for the rest of its lifetime. Without a revoker
// it is a no-op and the client is expected to discard the token.
func (s *AccountService) Logout(ctx context.Context, raw string) error {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return domain.ErrUnauthenticated
	}
	if s.revoker == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.clock.Now())
	return s.revoker.Revoke(ctx, claims.ID, ttl)
}

func (s *AccountService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// SetManager grants or withdraws the manage-events capability.
func (s *AccountService) SetManager(ctx context.Context, username string, isManager bool) error {
	return s.users.SetStaff(ctx, strings.TrimSpace(username), isManager)
}
