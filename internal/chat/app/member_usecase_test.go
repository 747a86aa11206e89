package app

import (
	"context"
	"errors"
	"testing"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg/encrypt"
	errprocess "chat_backend_service/pkg/err"
	"chat_backend_service/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMemberUseCase_Register(t *testing.T) {
	ctx := context.Background()
	mockUserRepo := new(MockUserRepository)
	mockRefreshRepo := new(MockRedisRepository[string])
	mockSecretRepo := new(MockRedisRepository[SecretKeys])

	mockUserRepo.On("FindByUsername", ctx, "alice").Return(nil, nil)
	mockUserRepo.On("CreateUser", ctx, mock.Anything).Return(nil)
	mockSecretRepo.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	uc := NewMemberUseCase(mockUserRepo, mockRefreshRepo, mockSecretRepo, "chat_service")
	user, err := uc.Register(ctx, "alice", "s3cret-pass", "Alice")

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Len(t, user.DiscoverID, 12)
	assert.NotEmpty(t, user.ChatPublicKey)
	assert.NotEmpty(t, user.GroupPublicKey)
	assert.NoError(t, encrypt.CheckPassword(user.Password, "s3cret-pass"))
	mockSecretRepo.AssertExpectations(t)
}

func TestMemberUseCase_RegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	mockUserRepo := new(MockUserRepository)

	mockUserRepo.On("FindByUsername", ctx, "alice").Return(&domain.User{ID: "u1", Username: "alice"}, nil)

	uc := NewMemberUseCase(mockUserRepo, new(MockRedisRepository[string]), new(MockRedisRepository[SecretKeys]), "chat_service")
	_, err := uc.Register(ctx, "alice", "s3cret-pass", "Alice")

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
	mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestMemberUseCase_LoginIssuesTokenPair(t *testing.T) {
	ctx := context.Background()
	mockUserRepo := new(MockUserRepository)
	mockRefreshRepo := new(MockRedisRepository[string])

	hashed, err := encrypt.HashPassword("s3cret-pass")
	assert.NoError(t, err)
	mockUserRepo.On("FindByUsername", ctx, "alice").Return(&domain.User{ID: "u1", Username: "alice", Password: hashed}, nil)
	mockRefreshRepo.On("Set", ctx, "refresh:u1", mock.Anything, token.RefreshExpiration).Return(nil)

	uc := NewMemberUseCase(mockUserRepo, mockRefreshRepo, new(MockRedisRepository[SecretKeys]), "chat_service")
	user, pair, err := uc.Login(ctx, "alice", "s3cret-pass")

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.NotEmpty(t, pair.SessionID)

	claims, err := token.ParseAccessJWT(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, pair.SessionID, claims.SessionID)
	mockRefreshRepo.AssertExpectations(t)
}

func TestMemberUseCase_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	mockUserRepo := new(MockUserRepository)
	mockRefreshRepo := new(MockRedisRepository[string])

	hashed, err := encrypt.HashPassword("s3cret-pass")
	assert.NoError(t, err)
	mockUserRepo.On("FindByUsername", ctx, "alice").Return(&domain.User{ID: "u1", Username: "alice", Password: hashed}, nil)

	uc := NewMemberUseCase(mockUserRepo, mockRefreshRepo, new(MockRedisRepository[SecretKeys]), "chat_service")
	_, _, err = uc.Login(ctx, "alice", "wrong")

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindForbidden, errprocess.KindOf(err))
	mockRefreshRepo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMemberUseCase_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	mockRefreshRepo := new(MockRedisRepository[string])

	active, err := token.GenerateRefreshJWT("u1", "old-session", "chat_service")
	assert.NoError(t, err)
	mockRefreshRepo.On("Get", ctx, "refresh:u1").Return(active, nil)
	mockRefreshRepo.On("Set", ctx, "refresh:u1", mock.Anything, token.RefreshExpiration).Return(nil)

	uc := NewMemberUseCase(new(MockUserRepository), mockRefreshRepo, new(MockRedisRepository[SecretKeys]), "chat_service")
	pair, err := uc.Refresh(ctx, active)

	assert.NoError(t, err)
	assert.NotEqual(t, "old-session", pair.SessionID)
	mockRefreshRepo.AssertExpectations(t)
}

func TestMemberUseCase_RefreshRevokedToken(t *testing.T) {
	ctx := context.Background()
	mockRefreshRepo := new(MockRedisRepository[string])

	presented, err := token.GenerateRefreshJWT("u1", "old-session", "chat_service")
	assert.NoError(t, err)
	// a newer login already replaced the stored token
	mockRefreshRepo.On("Get", ctx, "refresh:u1").Return("another-token", nil)

	uc := NewMemberUseCase(new(MockUserRepository), mockRefreshRepo, new(MockRedisRepository[SecretKeys]), "chat_service")
	_, err = uc.Refresh(ctx, presented)

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindForbidden, errprocess.KindOf(err))
	mockRefreshRepo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMemberUseCase_RefreshGarbageToken(t *testing.T) {
	ctx := context.Background()
	uc := NewMemberUseCase(new(MockUserRepository), new(MockRedisRepository[string]), new(MockRedisRepository[SecretKeys]), "chat_service")

	_, err := uc.Refresh(ctx, "not-a-jwt")
	assert.Error(t, err)
	assert.Equal(t, errprocess.KindForbidden, errprocess.KindOf(err))
}

func TestMemberUseCase_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	mockUserRepo := new(MockUserRepository)

	mockUserRepo.On("UpdateProfile", ctx, "u1", map[string]interface{}{"display_name": "Alice"}).Return(nil)
	mockUserRepo.On("FindByID", ctx, "u1").Return(&domain.User{ID: "u1", DisplayName: "Alice"}, nil)

	uc := NewMemberUseCase(mockUserRepo, new(MockRedisRepository[string]), new(MockRedisRepository[SecretKeys]), "chat_service")
	user, err := uc.UpdateProfile(ctx, "u1", "Alice", "")

	assert.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)

	_, err = uc.UpdateProfile(ctx, "u1", "", "")
	assert.Error(t, err)
	assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
}

func TestMemberUseCase_ListFriends(t *testing.T) {
	ctx := context.Background()
	mockUserRepo := new(MockUserRepository)

	mockUserRepo.On("FindByID", ctx, "u1").Return(&domain.User{ID: "u1", Friends: []string{"u2", "u3"}}, nil)
	mockUserRepo.On("FindByIDs", ctx, []string{"u2", "u3"}).Return([]domain.User{
		{ID: "u2", Username: "bob"},
		{ID: "u3", Username: "carol"},
	}, nil)

	uc := NewMemberUseCase(mockUserRepo, new(MockRedisRepository[string]), new(MockRedisRepository[SecretKeys]), "chat_service")
	friends, err := uc.ListFriends(ctx, "u1")

	assert.NoError(t, err)
	assert.Len(t, friends, 2)
	assert.Equal(t, "bob", friends[0].Username)

	mockUserRepo.On("FindByID", ctx, "loner").Return(&domain.User{ID: "loner"}, nil)
	friends, err = uc.ListFriends(ctx, "loner")
	assert.NoError(t, err)
	assert.Empty(t, friends)
	mockUserRepo.AssertNotCalled(t, "FindByIDs", ctx, []string(nil))
}

func TestMemberUseCase_Logout(t *testing.T) {
	ctx := context.Background()
	mockRefreshRepo := new(MockRedisRepository[string])
	mockRefreshRepo.On("Del", ctx, "refresh:u1").Return(nil)

	uc := NewMemberUseCase(new(MockUserRepository), mockRefreshRepo, new(MockRedisRepository[SecretKeys]), "chat_service")
	assert.NoError(t, uc.Logout(ctx, "u1"))

	mockRefreshRepo.On("Del", ctx, "refresh:u2").Return(errors.New("redis down"))
	err := uc.Logout(ctx, "u2")
	assert.Error(t, err)
	assert.Equal(t, errprocess.KindInternal, errprocess.KindOf(err))
}
