package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultTokenTTL = 24 * time.Hour

// Service authenticates credentials, issues bearer tokens and manages user
// accounts. Token verification itself is stateless; the store is only
// consulted at registration and login.
type Service struct {
	users    UserStore
	now      func() time.Time
	tokenTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithTokenTTL configures the access token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs Service with optional configuration.
func NewService(users UserStore, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	svc := &Service{
		users:    users,
		now:      time.Now,
		tokenTTL: defaultTokenTTL,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// TokenTTL reports the configured access token lifetime.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

// Register creates an account through the open registration endpoint.
// Only teacher and student roles are accepted here; admin accounts are
// seeded or created by an existing admin via CreateUser.
func (s *Service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	if !role.SelfRegisterable() {
		return nil, fmt.Errorf("%w: role %q is not self-registrable", ErrInvalidInput, role)
	}
	return s.CreateUser(ctx, name, email, password, role)
}

// CreateUser persists a new account with a hashed password. Unlike Register
// it accepts any valid role and is reserved for admin callers.
func (s *Service) CreateUser(ctx context.Context, name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed token embedding the user's
// identity and role.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := generateTokenAt(user.ID, user.Role, s.tokenTTL, s.now().UTC())
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Authenticate validates a bearer token and returns the embedded principal.
// Deterministic given (token, now); expired and tampered tokens both yield
// ErrInvalidToken.
func (s *Service) Authenticate(token string) (Principal, error) {
	claims, err := parseAndValidateAt(token, s.now().UTC())
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	return claims.Principal()
}

// User loads an account by id.
func (s *Service) User(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.users.Find(ctx, id)
}

// ListUsers returns all accounts, newest last.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account by id.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.users.Delete(ctx, id)
}

// UserCounts reports the number of accounts per role for the admin dashboard.
func (s *Service) UserCounts(ctx context.Context) (map[Role]int, error) {
	return s.users.CountByRole(ctx)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
