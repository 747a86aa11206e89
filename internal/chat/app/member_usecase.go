package app

import (
	"context"
	"fmt"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/internal/chat/repository"
	"chat_backend_service/pkg"
	"chat_backend_service/pkg/database"
	"chat_backend_service/pkg/encrypt"
	errprocess "chat_backend_service/pkg/err"
	"chat_backend_service/pkg/token"
)

// SecretKeys private key halves of one account, never leave the secret store
type SecretKeys struct {
	Chat  encrypt.KeyPair `json:"chat"`
	Group encrypt.KeyPair `json:"group"`
}

// TokenPair access plus refresh token of one login
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
}

// MemberUseCase handle registration, login and token rotation
type MemberUseCase struct {
	userRepo    repository.UserRepository
	refreshRepo database.RedisRepository[string]
	secretRepo  database.RedisRepository[SecretKeys]
	issuer      string
}

// NewMemberUseCase init member use case
func NewMemberUseCase(
	userRepo repository.UserRepository,
	refreshRepo database.RedisRepository[string],
	secretRepo database.RedisRepository[SecretKeys],
	issuer string,
) *MemberUseCase {
	return &MemberUseCase{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		secretRepo:  secretRepo,
		issuer:      issuer,
	}
}

func refreshKey(userID string) string {
	return "refresh:" + userID
}

func secretKey(username, userID string) string {
	return "secret:" + username + "+" + userID
}

// Register create the account with fresh key material
func (uc *MemberUseCase) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	if username == "" {
		return nil, errprocess.New(errprocess.KindValidation, "username is required")
	}

	existing, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find user fail", err)
	}
	if existing != nil {
		return nil, errprocess.New(errprocess.KindValidation, "username already taken")
	}

	hashed, err := encrypt.HashPassword(password)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindValidation, "weak password", err)
	}

	pairs, err := encrypt.GenerateKeyPairs(2)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "generate keys fail", err)
	}

	user := &domain.User{
		ID:             pkg.NewID(),
		Username:       username,
		DiscoverID:     pkg.NewID()[:12],
		DisplayName:    displayName,
		Password:       hashed,
		ChatPublicKey:  pairs[0].Public,
		GroupPublicKey: pairs[1].Public,
	}

	// private halves go to the secret store only, no expiry
	secrets := SecretKeys{Chat: pairs[0], Group: pairs[1]}
	if err := uc.secretRepo.Set(ctx, secretKey(username, user.ID), secrets, 0); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("username[%s] store keys fail : %v", username, err))
	}

	if err := uc.userRepo.CreateUser(ctx, user); err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "create user fail", err)
	}
	return user, nil
}

// Login check the password and issue a token pair.
// The stored refresh token is replaced, one active refresh token per user.
func (uc *MemberUseCase) Login(ctx context.Context, username, password string) (*domain.User, *TokenPair, error) {
	user, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, errprocess.Wrap(errprocess.KindInternal, "find user fail", err)
	}
	if user == nil {
		return nil, nil, errprocess.New(errprocess.KindForbidden, "invalid username or password")
	}
	if err := encrypt.CheckPassword(user.Password, password); err != nil {
		return nil, nil, errprocess.New(errprocess.KindForbidden, "invalid username or password")
	}

	pair, err := uc.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotate the token pair, the presented refresh token must be the active one
func (uc *MemberUseCase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := token.ParseRefreshJWT(refreshToken)
	if err != nil {
		return nil, errprocess.New(errprocess.KindForbidden, "invalid refresh token")
	}

	stored, err := uc.refreshRepo.Get(ctx, refreshKey(claims.UserID))
	if err != nil || stored != refreshToken {
		return nil, errprocess.New(errprocess.KindForbidden, "refresh token revoked")
	}

	return uc.issueTokens(ctx, claims.UserID)
}

// Logout drop the active refresh token
func (uc *MemberUseCase) Logout(ctx context.Context, userID string) error {
	if err := uc.refreshRepo.Del(ctx, refreshKey(userID)); err != nil {
		return errprocess.Set(fmt.Sprintf("userID[%s] delete refresh token fail : %v", userID, err))
	}
	return nil
}

func (uc *MemberUseCase) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	sessionID := pkg.NewID()

	access, err := token.GenerateAccessJWT(userID, sessionID, uc.issuer)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "generate access token fail", err)
	}
	refresh, err := token.GenerateRefreshJWT(userID, sessionID, uc.issuer)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "generate refresh token fail", err)
	}

	if err := uc.refreshRepo.Set(ctx, refreshKey(userID), refresh, token.RefreshExpiration); err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "store refresh token fail", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
	}, nil
}

// GetProfile load the account of userID
func (uc *MemberUseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindNotFound, "user not found", err)
	}
	return user, nil
}

// UpdateProfile set the mutable profile fields of userID
func (uc *MemberUseCase) UpdateProfile(ctx context.Context, userID, displayName, avatar string) (*domain.User, error) {
	fields := map[string]interface{}{}
	if displayName != "" {
		fields["display_name"] = displayName
	}
	if avatar != "" {
		fields["avatar"] = avatar
	}
	if len(fields) == 0 {
		return nil, errprocess.New(errprocess.KindValidation, "nothing to update")
	}

	if err := uc.userRepo.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "update profile fail", err)
	}
	return uc.GetProfile(ctx, userID)
}

// ListFriends load the friend set of userID as profile summaries
func (uc *MemberUseCase) ListFriends(ctx context.Context, userID string) ([]domain.UserSummary, error) {
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindNotFound, "user not found", err)
	}
	if len(user.Friends) == 0 {
		return []domain.UserSummary{}, nil
	}

	friends, err := uc.userRepo.FindByIDs(ctx, user.Friends)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find friends fail", err)
	}

	summaries := make([]domain.UserSummary, 0, len(friends))
	for i := range friends {
		summaries = append(summaries, friends[i].Summary())
	}
	return summaries, nil
}

// SearchUser find an account by the public facing id
func (uc *MemberUseCase) SearchUser(ctx context.Context, discoverID string) (*domain.UserSummary, error) {
	user, err := uc.userRepo.FindByDiscoverID(ctx, discoverID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find user fail", err)
	}
	if user == nil {
		return nil, errprocess.New(errprocess.KindNotFound, "user not found")
	}
	summary := user.Summary()
	return &summary, nil
}
