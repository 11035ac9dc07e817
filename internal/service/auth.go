package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/auth"
	"github.com/askforge/askforge/internal/models"
	"github.com/askforge/askforge/internal/repository"
)

// AuthService owns registration, login, and admin provisioning.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
	logger    *zap.Logger
}

func NewAuthService(users repository.UserRepository, jwtSecret string, jwtTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
	}
}

// LoginResult is what a successful login hands back: the bearer token
// and the public view of the user it represents.
type LoginResult struct {
	AccessToken string             `json:"access_token"`
	User        models.UserSummary `json:"user"`
}

// Register creates a regular user. The username-unique invariant is
// held by the DB constraint; the duplicate insert comes back as
// ErrConflict even when two registrations race past any pre-check.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	return s.createUser(ctx, username, password, models.RoleUser)
}

// CreateAdmin creates an admin user. The route gating (admin-only) is
// the middleware's job; this is just Register with a different role.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*models.User, error) {
	return s.createUser(ctx, username, password, models.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username is already taken", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Login verifies a username/password pair and issues a token. Unknown
// username and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &LoginResult{
		AccessToken: token,
		User:        user.Summary(),
	}, nil
}

// CheckUsername reports whether a username is still free.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, fmt.Errorf("%w: username is required", ErrValidation)
	}
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	return false, fmt.Errorf("check username: %w", err)
}

// EnsureSeedAdmin makes sure the configured bootstrap admin exists.
// Called once from main; repeated invocations, and races between
// replicas starting at the same time, are no-ops. Unset credentials
// disable seeding entirely.
func (s *AuthService) EnsureSeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.logger.Info("no seed admin configured, skipping")
		return nil
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		s.logger.Info("seed admin already exists", zap.String("username", username))
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check seed admin: %w", err)
	}

	if _, err := s.CreateAdmin(ctx, username, password); err != nil {
		// Another replica may have won the race; that's still success.
		if errors.Is(err, ErrConflict) {
			return nil
		}
		return fmt.Errorf("seed admin: %w", err)
	}

	s.logger.Info("seed admin created", zap.String("username", username))
	return nil
}
