// Package identity signs staff in and out and tells callers what a signed-in
// principal may do.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrUnauthenticated    = errors.New("identity: missing, invalid or revoked token")
)

// Capability is what a principal may do. It is derived from the account role and
// handed to the presentation layer; core packages never look at it.
type Capability struct {
	CanManageSlots bool `json:"can_manage_slots"`
	CanAdminister  bool `json:"can_administer"`
}

func CapabilityFor(role domain.Role) Capability {
	switch role {
	case domain.RoleAdmin:
		return Capability{CanManageSlots: true, CanAdminister: true}
	case domain.RoleTutor:
		return Capability{CanManageSlots: true}
	default:
		return Capability{}
	}
}

type Principal struct {
	AccountID  string      `json:"account_id"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	Capability Capability  `json:"capability"`
	TokenID    string      `json:"-"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

// Revocations remembers signed-out tokens. cache.RedisCache satisfies it.
type Revocations interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	accounts    repository.AccountRepository
	tokens      *TokenIssuer
	revocations Revocations
	logger      *zap.Logger

	mu        sync.Mutex
	listeners map[int]func(Principal, bool)
	nextID    int
}

func NewService(accounts repository.AccountRepository, tokens *TokenIssuer, revocations Revocations, logger *zap.Logger) *Service {
	return &Service{
		accounts:    accounts,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
		listeners:   make(map[int]func(Principal, bool)),
	}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	valid, err := argon2id.ComparePasswordAndHash(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	raw, claims, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	principal := principalFrom(claims)
	s.logger.Info("signed in", zap.String("account_id", account.ID), zap.String("role", string(account.Role)))
	s.emit(principal, true)

	return &Token{Value: raw, ExpiresAt: principal.ExpiresAt, Principal: principal}, nil
}

// SignOut revokes the token for its remaining lifetime.
func (s *Service) SignOut(ctx context.Context, raw string) error {
	principal, err := s.Authenticate(ctx, raw)
	if err != nil {
		return err
	}
	if s.revocations != nil {
		if err := s.revocations.RevokeToken(ctx, principal.TokenID, time.Until(principal.ExpiresAt)); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}
	s.logger.Info("signed out", zap.String("account_id", principal.AccountID))
	s.emit(principal, false)
	return nil
}

func (s *Service) Authenticate(ctx context.Context, raw string) (Principal, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Principal{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return Principal{}, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
	}
	return principalFrom(claims), nil
}

// Subscribe registers fn for sign-in (true) and sign-out (false) events.
func (s *Service) Subscribe(fn func(Principal, bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// EnsureAccount creates the account when the email is not registered yet.
func (s *Service) EnsureAccount(ctx context.Context, email, password string, role domain.Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password", domain.ErrMissingField)
	}

	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load account: %w", err)
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.Create(ctx, &domain.Account{Email: email, PasswordHash: hash, Role: role}); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("create account: %w", err)
	}
	s.logger.Info("account created", zap.String("email", email), zap.String("role", string(role)))
	return nil
}

func (s *Service) emit(p Principal, signedIn bool) {
	s.mu.Lock()
	fns := make([]func(Principal, bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(p, signedIn)
	}
}

func principalFrom(c *Claims) Principal {
	role := domain.Role(c.Role)
	p := Principal{
		AccountID:  c.Subject,
		Email:      c.Email,
		Role:       role,
		Capability: CapabilityFor(role),
		TokenID:    c.ID,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}
