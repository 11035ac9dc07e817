package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askforge/askforge/internal/models"
	"github.com/askforge/askforge/internal/repository"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create inserts a new user row. Postgres generates the UUID and
// timestamp; the unique index on username is what actually defends
// the global-uniqueness invariant against concurrent registrations.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, now())
		RETURNING id, username, password_hash, role, created_at`

	var u models.User
	err := s.pool.QueryRow(ctx, query, username, passwordHash, role).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, translate("insert user", err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE id = $1`

	return s.scanOne(ctx, query, userID)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1`

	return s.scanOne(ctx, query, username)
}

func (s *UserStore) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
