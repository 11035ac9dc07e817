package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/auth"
	"github.com/askforge/askforge/internal/hub"
	"github.com/askforge/askforge/internal/models"
	"github.com/askforge/askforge/internal/repository"
	"github.com/askforge/askforge/internal/repository/mocks"
	"github.com/askforge/askforge/internal/service"
)

type forumFixture struct {
	channels  *mocks.ChannelRepository
	posts     *mocks.PostRepository
	comments  *mocks.CommentRepository
	assistant *mocks.Assistant
	events    *hub.Hub
	svc       *service.ForumService
}

func newForumFixture() *forumFixture {
	f := &forumFixture{
		channels:  new(mocks.ChannelRepository),
		posts:     new(mocks.PostRepository),
		comments:  new(mocks.CommentRepository),
		assistant: new(mocks.Assistant),
		events:    hub.New(),
	}
	f.svc = service.NewForumService(
		f.channels, f.posts, f.comments,
		f.assistant, nil, f.events, zap.NewNop(),
	)
	return f
}

func (f *forumFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.channels.AssertExpectations(t)
	f.posts.AssertExpectations(t)
	f.comments.AssertExpectations(t)
	f.assistant.AssertExpectations(t)
}

func identityWithRole(role models.Role) *auth.Identity {
	return &auth.Identity{
		UserID:   uuid.New(),
		Username: "someone",
		Role:     role,
	}
}

func TestCreateChannel_Success(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	admin := identityWithRole(models.RoleAdmin)

	created := &models.Channel{
		ID:          uuid.New(),
		Name:        "general",
		Description: "anything goes",
		CreatedAt:   time.Now(),
	}
	f.channels.On("Create", ctx, "general", "anything goes").Return(created, nil).Once()

	ch, err := f.svc.CreateChannel(ctx, admin, "general", "anything goes")

	require.NoError(t, err)
	assert.Equal(t, created, ch)
	f.assertExpectations(t)
}

func TestCreateChannel_NonAdminForbidden(t *testing.T) {
	f := newForumFixture()
	user := identityWithRole(models.RoleUser)

	_, err := f.svc.CreateChannel(context.Background(), user, "general", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrForbidden)
	f.channels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateChannel_DuplicateName(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	admin := identityWithRole(models.RoleAdmin)

	f.channels.On("Create", ctx, "general", "").
		Return(nil, repository.ErrDuplicate).Once()

	_, err := f.svc.CreateChannel(ctx, admin, "general", "")

	assert.ErrorIs(t, err, service.ErrConflict)
	f.assertExpectations(t)
}

func TestCreatePost_Success(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	caller := identityWithRole(models.RoleUser)
	channelID := uuid.New()

	f.channels.On("GetByID", ctx, channelID).
		Return(&models.Channel{ID: channelID, Name: "general"}, nil).Once()

	created := &models.Post{
		ID:        uuid.New(),
		ChannelID: channelID,
		AuthorID:  caller.UserID,
		Title:     "Help",
		Content:   "Why X?",
	}
	f.posts.On("Create", ctx, channelID, caller.UserID, "Help", "Why X?").
		Return(created, nil).Once()

	post, err := f.svc.CreatePost(ctx, caller, channelID, "Help", "Why X?")

	require.NoError(t, err)
	assert.False(t, post.IsResolved)
	assert.Equal(t, caller.UserID, post.AuthorID)
	f.assertExpectations(t)
}

func TestCreatePost_ChannelMissing(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	channelID := uuid.New()

	f.channels.On("GetByID", ctx, channelID).
		Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.CreatePost(ctx, identityWithRole(models.RoleUser), channelID, "t", "c")

	assert.ErrorIs(t, err, service.ErrNotFound)
	f.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_Unauthenticated(t *testing.T) {
	f := newForumFixture()

	_, err := f.svc.CreatePost(context.Background(), nil, uuid.New(), "t", "c")

	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestMarkPostResolved_ByAuthor(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	author := identityWithRole(models.RoleUser)
	postID := uuid.New()

	stored := &models.PostWithAuthor{
		Post: models.Post{ID: postID, AuthorID: author.UserID},
	}
	f.posts.On("GetByID", ctx, postID).Return(stored, nil).Once()

	resolved := &models.Post{ID: postID, AuthorID: author.UserID, IsResolved: true}
	f.posts.On("MarkResolved", ctx, postID).Return(resolved, nil).Once()

	post, err := f.svc.MarkPostResolved(ctx, author, postID)

	require.NoError(t, err)
	assert.True(t, post.IsResolved)
	f.assertExpectations(t)
}

func TestMarkPostResolved_NonAuthorForbidden(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postID := uuid.New()

	stored := &models.PostWithAuthor{
		Post: models.Post{ID: postID, AuthorID: uuid.New()},
	}
	f.posts.On("GetByID", ctx, postID).Return(stored, nil).Once()

	_, err := f.svc.MarkPostResolved(ctx, identityWithRole(models.RoleUser), postID)

	assert.ErrorIs(t, err, service.ErrForbidden)
	// The post must be untouched when the caller is not the author.
	f.posts.AssertNotCalled(t, "MarkResolved", mock.Anything, mock.Anything)
}

func TestMarkPostResolved_AlreadyResolvedIsIdempotent(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	author := identityWithRole(models.RoleUser)
	postID := uuid.New()

	stored := &models.PostWithAuthor{
		Post: models.Post{ID: postID, AuthorID: author.UserID, IsResolved: true},
	}
	f.posts.On("GetByID", ctx, postID).Return(stored, nil).Once()

	resolved := &models.Post{ID: postID, AuthorID: author.UserID, IsResolved: true}
	f.posts.On("MarkResolved", ctx, postID).Return(resolved, nil).Once()

	post, err := f.svc.MarkPostResolved(ctx, author, postID)

	require.NoError(t, err)
	assert.True(t, post.IsResolved, "resolution never regresses")
}

func TestMarkPostResolved_NotFound(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postID := uuid.New()

	f.posts.On("GetByID", ctx, postID).Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.MarkPostResolved(ctx, identityWithRole(models.RoleUser), postID)

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateComment_Success(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	caller := identityWithRole(models.RoleUser)
	postID := uuid.New()

	f.posts.On("GetByID", ctx, postID).
		Return(&models.PostWithAuthor{Post: models.Post{ID: postID}}, nil).Once()

	created := &models.Comment{
		ID:       uuid.New(),
		PostID:   postID,
		AuthorID: caller.UserID,
		Content:  "try restarting",
	}
	f.comments.On("Create", ctx, postID, caller.UserID, "try restarting", false).
		Return(created, nil).Once()

	comment, err := f.svc.CreateComment(ctx, caller, postID, "try restarting", false)

	require.NoError(t, err)
	assert.False(t, comment.IsAccepted)
	assert.False(t, comment.IsAiGenerated)
	assert.Equal(t, caller.Username, comment.Author.Username)
	f.assertExpectations(t)
}

func TestCreateComment_PublishesToFeed(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	caller := identityWithRole(models.RoleUser)
	postID := uuid.New()

	feed, cancel := f.events.Subscribe(postID)
	defer cancel()

	f.posts.On("GetByID", ctx, postID).
		Return(&models.PostWithAuthor{Post: models.Post{ID: postID}}, nil).Once()
	created := &models.Comment{ID: uuid.New(), PostID: postID, AuthorID: caller.UserID, Content: "hi"}
	f.comments.On("Create", ctx, postID, caller.UserID, "hi", false).
		Return(created, nil).Once()

	_, err := f.svc.CreateComment(ctx, caller, postID, "hi", false)
	require.NoError(t, err)

	select {
	case got := <-feed:
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, caller.Username, got.Author.Username)
	case <-time.After(time.Second):
		t.Fatal("no comment event published")
	}
}

func TestCreateComment_PostMissing(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postID := uuid.New()

	f.posts.On("GetByID", ctx, postID).Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.CreateComment(ctx, identityWithRole(models.RoleUser), postID, "hi", false)

	assert.ErrorIs(t, err, service.ErrNotFound)
	f.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptComment_ByPostAuthor(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postAuthor := identityWithRole(models.RoleUser)
	postID := uuid.New()
	commentID := uuid.New()

	f.comments.On("GetByID", ctx, commentID).
		Return(&models.Comment{ID: commentID, PostID: postID, AuthorID: uuid.New()}, nil).Once()
	f.posts.On("GetByID", ctx, postID).
		Return(&models.PostWithAuthor{Post: models.Post{ID: postID, AuthorID: postAuthor.UserID}}, nil).Once()

	accepted := &models.Comment{ID: commentID, PostID: postID, IsAccepted: true}
	f.comments.On("Accept", ctx, commentID).Return(accepted, nil).Once()

	comment, err := f.svc.AcceptComment(ctx, postAuthor, commentID)

	require.NoError(t, err)
	assert.True(t, comment.IsAccepted)
	f.assertExpectations(t)
}

func TestAcceptComment_CommentAuthorCannotAccept(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	commenter := identityWithRole(models.RoleUser)
	postID := uuid.New()
	commentID := uuid.New()

	// The caller wrote the comment but does not own the post.
	f.comments.On("GetByID", ctx, commentID).
		Return(&models.Comment{ID: commentID, PostID: postID, AuthorID: commenter.UserID}, nil).Once()
	f.posts.On("GetByID", ctx, postID).
		Return(&models.PostWithAuthor{Post: models.Post{ID: postID, AuthorID: uuid.New()}}, nil).Once()

	_, err := f.svc.AcceptComment(ctx, commenter, commentID)

	assert.ErrorIs(t, err, service.ErrForbidden)
	f.comments.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
}

func TestAcceptComment_SecondAcceptConflicts(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postAuthor := identityWithRole(models.RoleUser)
	postID := uuid.New()
	commentID := uuid.New()

	f.comments.On("GetByID", ctx, commentID).
		Return(&models.Comment{ID: commentID, PostID: postID}, nil).Once()
	f.posts.On("GetByID", ctx, postID).
		Return(&models.PostWithAuthor{Post: models.Post{ID: postID, AuthorID: postAuthor.UserID}}, nil).Once()
	f.comments.On("Accept", ctx, commentID).
		Return(nil, repository.ErrDuplicate).Once()

	_, err := f.svc.AcceptComment(ctx, postAuthor, commentID)

	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestGetAiHelp_CreatesAiComment(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	caller := identityWithRole(models.RoleUser)
	postID := uuid.New()

	stored := &models.PostWithAuthor{
		Post: models.Post{ID: postID, Title: "Help", Content: "Why X?"},
	}
	// Once for the prompt, once inside CreateComment's existence check.
	f.posts.On("GetByID", ctx, postID).Return(stored, nil).Twice()

	f.assistant.On("Generate", ctx, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Help solve this forum post") &&
			strings.Contains(prompt, "Title: Help") &&
			strings.Contains(prompt, "Content: Why X?")
	})).Return("Because of Y.", nil).Once()

	created := &models.Comment{
		ID:            uuid.New(),
		PostID:        postID,
		AuthorID:      caller.UserID,
		Content:       "Because of Y.",
		IsAiGenerated: true,
	}
	f.comments.On("Create", ctx, postID, caller.UserID, "Because of Y.", true).
		Return(created, nil).Once()

	comment, err := f.svc.GetAiHelp(ctx, caller, postID)

	require.NoError(t, err)
	assert.True(t, comment.IsAiGenerated)
	assert.Equal(t, "Because of Y.", comment.Content)
	f.assertExpectations(t)
}

func TestGetAiHelp_UpstreamFailure(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postID := uuid.New()

	f.posts.On("GetByID", ctx, postID).
		Return(&models.PostWithAuthor{Post: models.Post{ID: postID, Title: "t", Content: "c"}}, nil).Once()
	f.assistant.On("Generate", ctx, mock.AnythingOfType("string")).
		Return("", errors.New("quota exceeded")).Once()

	_, err := f.svc.GetAiHelp(ctx, identityWithRole(models.RoleUser), postID)

	assert.ErrorIs(t, err, service.ErrUpstream)
	// Upstream failures must leave no comment behind.
	f.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAiHelp_PostMissing(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postID := uuid.New()

	f.posts.On("GetByID", ctx, postID).Return(nil, repository.ErrNotFound).Once()

	_, err := f.svc.GetAiHelp(ctx, identityWithRole(models.RoleUser), postID)

	assert.ErrorIs(t, err, service.ErrNotFound)
	f.assistant.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGetPostByID_ComposesThread(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	postID := uuid.New()
	channelID := uuid.New()

	f.posts.On("GetByID", ctx, postID).Return(&models.PostWithAuthor{
		Post:   models.Post{ID: postID, ChannelID: channelID, Title: "T", Content: "C"},
		Author: models.UserSummary{Username: "alice"},
	}, nil).Once()
	f.channels.On("GetByID", ctx, channelID).
		Return(&models.Channel{ID: channelID, Name: "general"}, nil).Once()
	f.comments.On("ListByPost", ctx, postID).
		Return([]models.CommentWithAuthor{}, nil).Once()

	detail, err := f.svc.GetPostByID(ctx, postID)

	require.NoError(t, err)
	assert.Equal(t, "T", detail.Title)
	assert.False(t, detail.IsResolved)
	assert.Equal(t, "alice", detail.Author.Username)
	assert.Equal(t, "general", detail.Channel.Name)
	assert.Empty(t, detail.Comments)
}

func TestGetAllChannels_GroupsPostsByChannel(t *testing.T) {
	f := newForumFixture()
	ctx := context.Background()
	chA := models.Channel{ID: uuid.New(), Name: "a"}
	chB := models.Channel{ID: uuid.New(), Name: "b"}

	f.channels.On("List", ctx).Return([]models.Channel{chB, chA}, nil).Once()
	f.posts.On("List", ctx).Return([]models.PostSummary{
		{Post: models.Post{ID: uuid.New(), ChannelID: chA.ID}},
		{Post: models.Post{ID: uuid.New(), ChannelID: chA.ID}},
	}, nil).Once()

	channels, err := f.svc.GetAllChannels(ctx)

	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "b", channels[0].Name)
	assert.Empty(t, channels[0].Posts)
	assert.Len(t, channels[1].Posts, 2)
}
