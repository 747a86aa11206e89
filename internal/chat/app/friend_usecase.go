package app

import (
	"context"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/internal/chat/repository"
	"chat_backend_service/pkg"
	errprocess "chat_backend_service/pkg/err"
)

// FriendUseCase handle friend requests and the symmetric friend set
type FriendUseCase struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	notifier  *Notifier
}

// NewFriendUseCase init friend use case
func NewFriendUseCase(
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	notifier *Notifier,
) *FriendUseCase {
	return &FriendUseCase{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		notifier:  notifier,
	}
}

// RequestFriend create a friend request notification for the target user.
// A second pending request toward the same user is reported, not stored.
func (uc *FriendUseCase) RequestFriend(ctx context.Context, sessionID, fromUserID, targetDiscoverID string) (*domain.Notification, error) {
	target, err := uc.userRepo.FindByDiscoverID(ctx, targetDiscoverID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find user fail", err)
	}
	if target == nil {
		return nil, errprocess.New(errprocess.KindNotFound, "user not found")
	}
	if target.ID == fromUserID {
		return nil, errprocess.New(errprocess.KindValidation, "cannot friend yourself")
	}

	pending, err := uc.notifRepo.FindPending(ctx, domain.NotificationFriendRequest, fromUserID, target.ID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find notification fail", err)
	}
	if pending != nil {
		return nil, errprocess.New(errprocess.KindConflictIgnored, "has same post")
	}

	from, err := uc.userRepo.FindByID(ctx, fromUserID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindNotFound, "user not found", err)
	}

	n := &domain.Notification{
		ID:   pkg.NewID(),
		Type: domain.NotificationFriendRequest,
		Payload: map[string]interface{}{
			"from": from.Summary(),
		},
		PostByUser: fromUserID,
		ToUsers:    []string{target.ID},
	}
	if err := uc.notifRepo.Create(ctx, n); err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "create notification fail", err)
	}

	uc.notifier.Notify(sessionID, []string{target.ID}, domain.EventAddFriendRequest, n)
	return n, nil
}

// AcceptFriend add both users to each other's friend set and drop the request
func (uc *FriendUseCase) AcceptFriend(ctx context.Context, sessionID, userID, notificationID string) error {
	n, err := uc.notifRepo.FindByID(ctx, notificationID)
	if err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "find notification fail", err)
	}
	if n == nil {
		return errprocess.New(errprocess.KindNotFound, "notification not found")
	}
	if !pkg.Contains(n.ToUsers, userID) {
		return errprocess.New(errprocess.KindForbidden, "notification is not addressed to you")
	}

	// symmetric and idempotent, $addToSet on both sides
	if err := uc.userRepo.AddFriend(ctx, userID, n.PostByUser); err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "add friend fail", err)
	}
	if err := uc.userRepo.AddFriend(ctx, n.PostByUser, userID); err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "add friend fail", err)
	}

	if _, err := uc.notifRepo.Delete(ctx, notificationID); err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "delete notification fail", err)
	}

	uc.notifier.Notify(sessionID, []string{userID, n.PostByUser}, domain.EventAddFriend, map[string]interface{}{
		"user_ids": []string{userID, n.PostByUser},
	})
	return nil
}

// ListNotifications list open notifications addressed to userID
func (uc *FriendUseCase) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications, err := uc.notifRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find notifications fail", err)
	}
	return notifications, nil
}
