package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/ai"
	"github.com/askforge/askforge/internal/auth"
	"github.com/askforge/askforge/internal/authz"
	"github.com/askforge/askforge/internal/cache"
	"github.com/askforge/askforge/internal/hub"
	"github.com/askforge/askforge/internal/models"
	"github.com/askforge/askforge/internal/repository"
)

// Cache keys for the hot list endpoints. Every forum mutation
// invalidates both: posts appear inside the channel list view, so the
// two views go stale together.
const (
	cacheKeyChannels = "forum:channels:all"
	cacheKeyPosts    = "forum:posts:all"
)

// ForumService orchestrates every forum operation: it applies the
// authorization policy, then reads and writes through the repositories.
// It is the sole writer of forum state.
type ForumService struct {
	channels  repository.ChannelRepository
	posts     repository.PostRepository
	comments  repository.CommentRepository
	assistant ai.Assistant
	cache     *cache.Cache
	events    *hub.Hub
	logger    *zap.Logger
}

func NewForumService(
	channels repository.ChannelRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	assistant ai.Assistant,
	listCache *cache.Cache,
	events *hub.Hub,
	logger *zap.Logger,
) *ForumService {
	return &ForumService{
		channels:  channels,
		posts:     posts,
		comments:  comments,
		assistant: assistant,
		cache:     listCache,
		events:    events,
		logger:    logger,
	}
}

// CreateChannel creates a topic channel. Admin only; channel names are
// globally unique (DB constraint, reported as Conflict).
func (s *ForumService) CreateChannel(ctx context.Context, id *auth.Identity, name, description string) (*models.Channel, error) {
	if err := authz.RequireOperation(id, authz.OpCreateChannel); err != nil {
		return nil, fmt.Errorf("%w: only admins can create channels", ErrForbidden)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: channel name is required", ErrValidation)
	}

	ch, err := s.channels.Create(ctx, name, description)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: channel name is already taken", ErrConflict)
		}
		return nil, fmt.Errorf("create channel: %w", err)
	}

	s.cache.Invalidate(ctx, cacheKeyChannels)
	s.logger.Info("channel created",
		zap.String("channel", ch.Name),
		zap.String("created_by", id.Username),
	)
	return ch, nil
}

// GetAllChannels returns every channel, newest first, each with its
// posts. Served from the cache when one is configured.
func (s *ForumService) GetAllChannels(ctx context.Context) ([]models.ChannelWithPosts, error) {
	var cached []models.ChannelWithPosts
	if err := s.cache.GetJSON(ctx, cacheKeyChannels, &cached); err == nil {
		return cached, nil
	}

	channels, err := s.channels.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	byChannel := make(map[uuid.UUID][]models.Post)
	for _, p := range summaries {
		byChannel[p.ChannelID] = append(byChannel[p.ChannelID], p.Post)
	}

	result := make([]models.ChannelWithPosts, 0, len(channels))
	for _, ch := range channels {
		posts := byChannel[ch.ID]
		if posts == nil {
			posts = make([]models.Post, 0)
		}
		result = append(result, models.ChannelWithPosts{Channel: ch, Posts: posts})
	}

	s.cache.SetJSON(ctx, cacheKeyChannels, result)
	return result, nil
}

// GetChannelByID returns one channel with its full post threads:
// posts, their authors, and their comments with authors.
func (s *ForumService) GetChannelByID(ctx context.Context, channelID uuid.UUID) (*models.ChannelDetail, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel %s", ErrNotFound, channelID)
		}
		return nil, err
	}

	summaries, err := s.posts.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	threads := make([]models.PostThread, 0, len(summaries))
	for _, p := range summaries {
		comments, err := s.comments.ListByPost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		threads = append(threads, models.PostThread{
			Post:     p.Post,
			Author:   p.Author,
			Comments: comments,
		})
	}

	return &models.ChannelDetail{Channel: *ch, Posts: threads}, nil
}

// CreatePost opens a new question in a channel. Any authenticated user.
func (s *ForumService) CreatePost(ctx context.Context, id *auth.Identity, channelID uuid.UUID, title, content string) (*models.Post, error) {
	if err := authz.RequireOperation(id, authz.OpCreatePost); err != nil {
		return nil, fmt.Errorf("%w: authentication required", ErrForbidden)
	}
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	// Existence pre-check gives the precise failure; the FK constraint
	// still covers the race where the channel vanishes before insert.
	if _, err := s.channels.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel %s", ErrNotFound, channelID)
		}
		return nil, err
	}

	post, err := s.posts.Create(ctx, channelID, id.UserID, title, content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel %s", ErrNotFound, channelID)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.cache.Invalidate(ctx, cacheKeyChannels, cacheKeyPosts)
	s.logger.Info("post created",
		zap.String("post_id", post.ID.String()),
		zap.String("author", id.Username),
	)
	return post, nil
}

// GetAllPosts returns every post, newest first, with author, channel
// name, and comment count.
func (s *ForumService) GetAllPosts(ctx context.Context) ([]models.PostSummary, error) {
	var cached []models.PostSummary
	if err := s.cache.GetJSON(ctx, cacheKeyPosts, &cached); err == nil {
		return cached, nil
	}

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, cacheKeyPosts, posts)
	return posts, nil
}

// GetPostsByChannel returns one channel's posts, newest first. An
// unknown channel yields an empty list, not NotFound.
func (s *ForumService) GetPostsByChannel(ctx context.Context, channelID uuid.UUID) ([]models.PostSummary, error) {
	return s.posts.ListByChannel(ctx, channelID)
}

// GetPostByID returns one post with author, channel, and the comment
// thread oldest first.
func (s *ForumService) GetPostByID(ctx context.Context, postID uuid.UUID) (*models.PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}

	channel, err := s.channels.GetByID(ctx, post.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("get post channel: %w", err)
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &models.PostDetail{
		PostThread: models.PostThread{
			Post:     post.Post,
			Author:   post.Author,
			Comments: comments,
		},
		Channel: *channel,
	}, nil
}

// MarkPostResolved fires the Open -> Resolved transition. Only the
// post's author may resolve; the transition is one-way, and resolving
// an already-resolved post is an idempotent success.
func (s *ForumService) MarkPostResolved(ctx context.Context, id *auth.Identity, postID uuid.UUID) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}

	if err := authz.RequireOwnership(id, post.AuthorID); err != nil {
		return nil, fmt.Errorf("%w: only the post author can mark it as resolved", ErrForbidden)
	}

	resolved, err := s.posts.MarkResolved(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, fmt.Errorf("resolve post: %w", err)
	}

	s.cache.Invalidate(ctx, cacheKeyChannels, cacheKeyPosts)
	s.logger.Info("post resolved", zap.String("post_id", postID.String()))
	return resolved, nil
}

// CreateComment replies to a post. Any authenticated user.
func (s *ForumService) CreateComment(ctx context.Context, id *auth.Identity, postID uuid.UUID, content string, isAiGenerated bool) (*models.CommentWithAuthor, error) {
	if err := authz.RequireOperation(id, authz.OpCreateComment); err != nil {
		return nil, fmt.Errorf("%w: authentication required", ErrForbidden)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}

	comment, err := s.comments.Create(ctx, postID, id.UserID, content, isAiGenerated)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	withAuthor := models.CommentWithAuthor{
		Comment: *comment,
		Author: models.UserSummary{
			ID:       id.UserID,
			Username: id.Username,
			Role:     id.Role,
		},
	}

	s.events.Publish(withAuthor)
	s.cache.Invalidate(ctx, cacheKeyPosts)
	return &withAuthor, nil
}

// AcceptComment fires the Proposed -> Accepted transition. Only the
// author of the comment's post may accept. At most one comment per
// post can be accepted: re-accepting the same comment succeeds,
// accepting a second one is a Conflict.
func (s *ForumService) AcceptComment(ctx context.Context, id *auth.Identity, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
		}
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, fmt.Errorf("get comment's post: %w", err)
	}

	if err := authz.RequireOwnership(id, post.AuthorID); err != nil {
		return nil, fmt.Errorf("%w: only the post author can accept comments", ErrForbidden)
	}

	accepted, err := s.comments.Accept(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: another comment is already accepted on this post", ErrConflict)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
		}
		return nil, fmt.Errorf("accept comment: %w", err)
	}

	s.logger.Info("comment accepted", zap.String("comment_id", commentID.String()))
	return accepted, nil
}

// GetAiHelp asks the assistant to draft an answer for a post and files
// it as an AI-generated comment authored by the caller. The assistant
// call is never retried here; an upstream failure reaches the caller
// and no comment is created.
func (s *ForumService) GetAiHelp(ctx context.Context, id *auth.Identity, postID uuid.UUID) (*models.CommentWithAuthor, error) {
	if err := authz.RequireOperation(id, authz.OpAiHelp); err != nil {
		return nil, fmt.Errorf("%w: authentication required", ErrForbidden)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}

	prompt := fmt.Sprintf(`Help solve this forum post:
Title: %s
Content: %s

Please provide a helpful solution or advice for this problem.`, post.Title, post.Content)

	answer, err := s.assistant.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("ai help failed",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return s.CreateComment(ctx, id, postID, answer, true)
}

// GenerateText is the raw passthrough behind GET /ai/string.
func (s *ForumService) GenerateText(ctx context.Context, id *auth.Identity, prompt string) (string, error) {
	if err := authz.RequireOperation(id, authz.OpAiHelp); err != nil {
		return "", fmt.Errorf("%w: authentication required", ErrForbidden)
	}
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrValidation)
	}

	text, err := s.assistant.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return text, nil
}
