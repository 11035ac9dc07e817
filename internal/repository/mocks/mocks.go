// Package mocks provides testify mocks for the repository interfaces,
// used by the service tests. Hand-written rather than generated: four
// small interfaces don't justify a mockery toolchain.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/askforge/askforge/internal/ai"
	"github.com/askforge/askforge/internal/models"
	"github.com/askforge/askforge/internal/repository"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, username, passwordHash, role)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type ChannelRepository struct {
	mock.Mock
}

func (m *ChannelRepository) Create(ctx context.Context, name, description string) (*models.Channel, error) {
	args := m.Called(ctx, name, description)
	if ch := args.Get(0); ch != nil {
		return ch.(*models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChannelRepository) GetByID(ctx context.Context, channelID uuid.UUID) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if ch := args.Get(0); ch != nil {
		return ch.(*models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChannelRepository) List(ctx context.Context) ([]models.Channel, error) {
	args := m.Called(ctx)
	if chs := args.Get(0); chs != nil {
		return chs.([]models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) Create(ctx context.Context, channelID, authorID uuid.UUID, title, content string) (*models.Post, error) {
	args := m.Called(ctx, channelID, authorID, title, content)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostRepository) GetByID(ctx context.Context, postID uuid.UUID) (*models.PostWithAuthor, error) {
	args := m.Called(ctx, postID)
	if p := args.Get(0); p != nil {
		return p.(*models.PostWithAuthor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostRepository) List(ctx context.Context) ([]models.PostSummary, error) {
	args := m.Called(ctx)
	if ps := args.Get(0); ps != nil {
		return ps.([]models.PostSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostRepository) ListByChannel(ctx context.Context, channelID uuid.UUID) ([]models.PostSummary, error) {
	args := m.Called(ctx, channelID)
	if ps := args.Get(0); ps != nil {
		return ps.([]models.PostSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PostRepository) MarkResolved(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Create(ctx context.Context, postID, authorID uuid.UUID, content string, isAiGenerated bool) (*models.Comment, error) {
	args := m.Called(ctx, postID, authorID, content, isAiGenerated)
	if cm := args.Get(0); cm != nil {
		return cm.(*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) GetByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	args := m.Called(ctx, commentID)
	if cm := args.Get(0); cm != nil {
		return cm.(*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.CommentWithAuthor, error) {
	args := m.Called(ctx, postID)
	if cms := args.Get(0); cms != nil {
		return cms.([]models.CommentWithAuthor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommentRepository) Accept(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	args := m.Called(ctx, commentID)
	if cm := args.Get(0); cm != nil {
		return cm.(*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

// Assistant mocks ai.Assistant.
type Assistant struct {
	mock.Mock
}

func (m *Assistant) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// Compile-time checks that the mocks track the real interfaces.
var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ChannelRepository = (*ChannelRepository)(nil)
	_ repository.PostRepository    = (*PostRepository)(nil)
	_ repository.CommentRepository = (*CommentRepository)(nil)
	_ ai.Assistant                 = (*Assistant)(nil)
)
