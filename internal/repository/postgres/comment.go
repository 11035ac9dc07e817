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

type CommentStore struct {
	pool *pgxpool.Pool
}

func NewCommentStore(pool *pgxpool.Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

func (s *CommentStore) Create(ctx context.Context, postID, authorID uuid.UUID, content string, isAiGenerated bool) (*models.Comment, error) {
	query := `
		INSERT INTO comments (id, post_id, author_id, content, is_ai_generated, is_accepted, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, $4, FALSE, now())
		RETURNING id, post_id, author_id, content, is_ai_generated, is_accepted, created_at`

	var cm models.Comment
	err := s.pool.QueryRow(ctx, query, postID, authorID, content, isAiGenerated).Scan(
		&cm.ID,
		&cm.PostID,
		&cm.AuthorID,
		&cm.Content,
		&cm.IsAiGenerated,
		&cm.IsAccepted,
		&cm.CreatedAt,
	)
	if err != nil {
		return nil, translate("insert comment", err)
	}
	return &cm, nil
}

func (s *CommentStore) GetByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, is_ai_generated, is_accepted, created_at
		FROM comments
		WHERE id = $1`

	var cm models.Comment
	err := s.pool.QueryRow(ctx, query, commentID).Scan(
		&cm.ID,
		&cm.PostID,
		&cm.AuthorID,
		&cm.Content,
		&cm.IsAiGenerated,
		&cm.IsAccepted,
		&cm.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &cm, nil
}

// ListByPost returns the thread oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.CommentWithAuthor, error) {
	query := `
		SELECT cm.id, cm.post_id, cm.author_id, cm.content, cm.is_ai_generated,
		       cm.is_accepted, cm.created_at,
		       u.id, u.username, u.role
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = $1
		ORDER BY cm.created_at ASC`

	rows, err := s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.CommentWithAuthor, 0)
	for rows.Next() {
		var cm models.CommentWithAuthor
		if err := rows.Scan(
			&cm.ID,
			&cm.PostID,
			&cm.AuthorID,
			&cm.Content,
			&cm.IsAiGenerated,
			&cm.IsAccepted,
			&cm.CreatedAt,
			&cm.Author.ID,
			&cm.Author.Username,
			&cm.Author.Role,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// Accept flips is_accepted to true. A partial unique index on
// (post_id) WHERE is_accepted makes "at most one accepted comment per
// post" hold atomically: accepting a second comment on the same post
// trips the index and comes back as ErrDuplicate, while re-accepting
// the same comment rewrites its own row and succeeds.
func (s *CommentStore) Accept(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET is_accepted = TRUE
		WHERE id = $1
		RETURNING id, post_id, author_id, content, is_ai_generated, is_accepted, created_at`

	var cm models.Comment
	err := s.pool.QueryRow(ctx, query, commentID).Scan(
		&cm.ID,
		&cm.PostID,
		&cm.AuthorID,
		&cm.Content,
		&cm.IsAiGenerated,
		&cm.IsAccepted,
		&cm.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, translate("accept comment", err)
	}
	return &cm, nil
}
