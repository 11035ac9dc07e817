package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/askforge/askforge/internal/models"
)

// Every method takes a context.Context: all of these touch the
// database, and the HTTP request's context must be able to cancel the
// query when the client goes away.

// UserRepository handles user rows.
type UserRepository interface {
	// Create inserts a user. ErrDuplicate if the username is taken.
	Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error)

	// GetByID returns a user or ErrNotFound.
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByUsername returns a user or ErrNotFound. Used for login and
	// the availability check.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ChannelRepository handles channel rows.
type ChannelRepository interface {
	// Create inserts a channel. ErrDuplicate if the name is taken.
	Create(ctx context.Context, name, description string) (*models.Channel, error)

	// GetByID returns a channel or ErrNotFound.
	GetByID(ctx context.Context, channelID uuid.UUID) (*models.Channel, error)

	// List returns all channels, newest first. Empty slice, never nil.
	List(ctx context.Context) ([]models.Channel, error)
}

// PostRepository handles post rows and their joined read shapes.
type PostRepository interface {
	// Create inserts a post under a channel. The channel FK is
	// enforced by the DB; a missing channel surfaces as an error from
	// the constraint even if the pre-check raced.
	Create(ctx context.Context, channelID, authorID uuid.UUID, title, content string) (*models.Post, error)

	// GetByID returns a post with its author summary, or ErrNotFound.
	GetByID(ctx context.Context, postID uuid.UUID) (*models.PostWithAuthor, error)

	// List returns all posts newest first, each with author, channel
	// name, and comment count.
	List(ctx context.Context) ([]models.PostSummary, error)

	// ListByChannel is List restricted to one channel.
	ListByChannel(ctx context.Context, channelID uuid.UUID) ([]models.PostSummary, error)

	// MarkResolved sets is_resolved and bumps updated_at. Returns the
	// updated post or ErrNotFound. Resolving an already-resolved post
	// is a no-op that still returns the row.
	MarkResolved(ctx context.Context, postID uuid.UUID) (*models.Post, error)
}

// CommentRepository handles comment rows.
type CommentRepository interface {
	// Create inserts a comment under a post.
	Create(ctx context.Context, postID, authorID uuid.UUID, content string, isAiGenerated bool) (*models.Comment, error)

	// GetByID returns a comment or ErrNotFound.
	GetByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error)

	// ListByPost returns a post's comments oldest first, each with its
	// author summary.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.CommentWithAuthor, error)

	// Accept sets is_accepted on a comment. ErrNotFound if the comment
	// is gone; ErrDuplicate if a different comment on the same post is
	// already accepted (partial unique index). Accepting the
	// already-accepted comment succeeds.
	Accept(ctx context.Context, commentID uuid.UUID) (*models.Comment, error)
}
