package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/askforge/askforge/internal/auth"
	"github.com/askforge/askforge/internal/models"
	"github.com/askforge/askforge/internal/repository"
	"github.com/askforge/askforge/internal/repository/mocks"
	"github.com/askforge/askforge/internal/service"
)

func newAuthService(users *mocks.UserRepository) *service.AuthService {
	return service.NewAuthService(users, "test-secret", time.Hour, zap.NewNop())
}

func TestRegister_HashesPasswordAndAssignsUserRole(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	users.On("Create", ctx, "alice", mock.MatchedBy(func(hash string) bool {
		// The stored credential must be a verifiable bcrypt hash, never
		// the plaintext.
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")) == nil
	}), models.RoleUser).Return(&models.User{
		ID:       uuid.New(),
		Username: "alice",
		Role:     models.RoleUser,
	}, nil).Once()

	user, err := svc.Register(ctx, "alice", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	users.AssertExpectations(t)
}

func TestRegister_UsernameTaken(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	users.On("Create", ctx, "alice", mock.AnythingOfType("string"), models.RoleUser).
		Return(nil, repository.ErrDuplicate).Once()

	_, err := svc.Register(ctx, "alice", "s3cret")

	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestRegister_MissingFields(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), "", "s3cret")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Register(context.Background(), "alice", "")
	assert.ErrorIs(t, err, service.ErrValidation)

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAdmin_AssignsAdminRole(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	users.On("Create", ctx, "root", mock.AnythingOfType("string"), models.RoleAdmin).
		Return(&models.User{ID: uuid.New(), Username: "root", Role: models.RoleAdmin}, nil).Once()

	user, err := svc.CreateAdmin(ctx, "root", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestLogin_Success(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	stored := &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	users.On("GetByUsername", ctx, "alice").Return(stored, nil).Once()

	result, err := svc.Login(ctx, "alice", "s3cret")

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, stored.ID, result.User.ID)
	assert.Equal(t, "alice", result.User.Username)

	// The issued token must round-trip through the verifier.
	id, err := auth.ParseToken(result.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, id.UserID)
	assert.Equal(t, models.RoleUser, id.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	hash, _ := auth.HashPassword("s3cret")
	users.On("GetByUsername", ctx, "alice").
		Return(&models.User{Username: "alice", PasswordHash: hash}, nil).Once()

	_, err := svc.Login(ctx, "alice", "wrong")

	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_UnknownUserSameError(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	users.On("GetByUsername", ctx, "ghost").
		Return(nil, repository.ErrNotFound).Once()

	_, err := svc.Login(ctx, "ghost", "whatever")

	// Unknown username and wrong password must be indistinguishable.
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestCheckUsername(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	users.On("GetByUsername", ctx, "taken").
		Return(&models.User{Username: "taken"}, nil).Once()
	users.On("GetByUsername", ctx, "free").
		Return(nil, repository.ErrNotFound).Once()

	available, err := svc.CheckUsername(ctx, "taken")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.CheckUsername(ctx, "free")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = svc.CheckUsername(ctx, "")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestEnsureSeedAdmin_CreatesWhenMissing(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	users.On("GetByUsername", ctx, "root").
		Return(nil, repository.ErrNotFound).Once()
	users.On("Create", ctx, "root", mock.AnythingOfType("string"), models.RoleAdmin).
		Return(&models.User{Username: "root", Role: models.RoleAdmin}, nil).Once()

	err := svc.EnsureSeedAdmin(ctx, "root", "s3cret")

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestEnsureSeedAdmin_NoOpWhenPresent(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	users.On("GetByUsername", ctx, "root").
		Return(&models.User{Username: "root", Role: models.RoleAdmin}, nil).Once()

	err := svc.EnsureSeedAdmin(ctx, "root", "s3cret")

	require.NoError(t, err)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureSeedAdmin_SkippedWhenUnconfigured(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)

	err := svc.EnsureSeedAdmin(context.Background(), "", "")

	require.NoError(t, err)
	users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestEnsureSeedAdmin_LosingTheRaceIsStillSuccess(t *testing.T) {
	users := new(mocks.UserRepository)
	svc := newAuthService(users)
	ctx := context.Background()

	// Another replica inserted the admin between our check and insert.
	users.On("GetByUsername", ctx, "root").
		Return(nil, repository.ErrNotFound).Once()
	users.On("Create", ctx, "root", mock.AnythingOfType("string"), models.RoleAdmin).
		Return(nil, repository.ErrDuplicate).Once()

	err := svc.EnsureSeedAdmin(ctx, "root", "s3cret")

	require.NoError(t, err)
}
