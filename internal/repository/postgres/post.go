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

type PostStore struct {
	pool *pgxpool.Pool
}

func NewPostStore(pool *pgxpool.Pool) *PostStore {
	return &PostStore{pool: pool}
}

func (s *PostStore) Create(ctx context.Context, channelID, authorID uuid.UUID, title, content string) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, channel_id, author_id, title, content, is_resolved, created_at, updated_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, $4, FALSE, now(), now())
		RETURNING id, channel_id, author_id, title, content, is_resolved, created_at, updated_at`

	var p models.Post
	err := s.pool.QueryRow(ctx, query, channelID, authorID, title, content).Scan(
		&p.ID,
		&p.ChannelID,
		&p.AuthorID,
		&p.Title,
		&p.Content,
		&p.IsResolved,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, translate("insert post", err)
	}
	return &p, nil
}

func (s *PostStore) GetByID(ctx context.Context, postID uuid.UUID) (*models.PostWithAuthor, error) {
	query := `
		SELECT p.id, p.channel_id, p.author_id, p.title, p.content, p.is_resolved,
		       p.created_at, p.updated_at,
		       u.id, u.username, u.role
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`

	var p models.PostWithAuthor
	err := s.pool.QueryRow(ctx, query, postID).Scan(
		&p.ID,
		&p.ChannelID,
		&p.AuthorID,
		&p.Title,
		&p.Content,
		&p.IsResolved,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Author.ID,
		&p.Author.Username,
		&p.Author.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

// summaryQuery is the shared SELECT for the list views: post, author
// summary, owning channel's name, and a comment count. The count is a
// correlated subquery; at forum scale that beats dragging every
// comment body across the wire just to count them.
const summaryQuery = `
	SELECT p.id, p.channel_id, p.author_id, p.title, p.content, p.is_resolved,
	       p.created_at, p.updated_at,
	       u.id, u.username, u.role,
	       c.name,
	       (SELECT count(*) FROM comments cm WHERE cm.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN channels c ON c.id = p.channel_id`

func (s *PostStore) List(ctx context.Context) ([]models.PostSummary, error) {
	query := summaryQuery + `
	ORDER BY p.created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (s *PostStore) ListByChannel(ctx context.Context, channelID uuid.UUID) ([]models.PostSummary, error) {
	query := summaryQuery + `
	WHERE p.channel_id = $1
	ORDER BY p.created_at DESC`

	rows, err := s.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("list posts by channel: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]models.PostSummary, error) {
	posts := make([]models.PostSummary, 0)
	for rows.Next() {
		var p models.PostSummary
		if err := rows.Scan(
			&p.ID,
			&p.ChannelID,
			&p.AuthorID,
			&p.Title,
			&p.Content,
			&p.IsResolved,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.Author.ID,
			&p.Author.Username,
			&p.Author.Role,
			&p.ChannelName,
			&p.CommentCount,
		); err != nil {
			return nil, fmt.Errorf("scan post summary: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// MarkResolved flips is_resolved to true. The transition is one-way at
// the SQL level: there is no statement anywhere that writes FALSE back.
// Re-resolving an already-resolved post rewrites TRUE, which keeps the
// operation idempotent without a read-modify-write cycle.
func (s *PostStore) MarkResolved(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	query := `
		UPDATE posts
		SET is_resolved = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING id, channel_id, author_id, title, content, is_resolved, created_at, updated_at`

	var p models.Post
	err := s.pool.QueryRow(ctx, query, postID).Scan(
		&p.ID,
		&p.ChannelID,
		&p.AuthorID,
		&p.Title,
		&p.Content,
		&p.IsResolved,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mark post resolved: %w", err)
	}
	return &p, nil
}
