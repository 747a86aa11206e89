package app

import (
	"context"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/internal/chat/repository"
	errprocess "chat_backend_service/pkg/err"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100

	// defaultPageSearchLimit cap on extra pages fetched for pinned continuity
	defaultPageSearchLimit = 50
)

// ConversationUseCase assemble paginated room history views
type ConversationUseCase struct {
	roomUC  *RoomUseCase
	msgRepo repository.MessageRepository

	pageSearchLimit int
}

// NewConversationUseCase init conversation use case
func NewConversationUseCase(roomUC *RoomUseCase, msgRepo repository.MessageRepository, pageSearchLimit int) *ConversationUseCase {
	if pageSearchLimit <= 0 {
		pageSearchLimit = defaultPageSearchLimit
	}
	return &ConversationUseCase{
		roomUC:          roomUC,
		msgRepo:         msgRepo,
		pageSearchLimit: pageSearchLimit,
	}
}

// GetPage one page of room history, newest first. On the first page the
// earliest pinned message is always part of the result, later pages are
// folded in until it shows up.
func (uc *ConversationUseCase) GetPage(ctx context.Context, roomID, userID string, page, limit int) (*domain.Conversation, error) {
	if page < 0 {
		return nil, errprocess.New(errprocess.KindValidation, "page must not be negative")
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if _, err := uc.roomUC.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	items, meta, err := uc.msgRepo.GetConversation(ctx, roomID, userID, page, limit)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "get conversation fail", err)
	}

	conv := &domain.Conversation{Items: items, Meta: meta}
	if page != 0 {
		return conv, nil
	}

	pinned, err := uc.msgRepo.FindFirstPinned(ctx, roomID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find pinned message fail", err)
	}
	if pinned == nil || pinned.DeletedBy(userID) || pinned.DeletedByAuthor() {
		return conv, nil
	}

	if containsMessage(conv.Items, pinned.ID) {
		conv.FirstPinnedMessageID = pinned.ID
		return conv, nil
	}

	// walk forward page by page until the pinned message shows up,
	// bounded by the total page count so a stale flag cannot loop forever
	maxPage := meta.Pages
	if maxPage > uc.pageSearchLimit {
		maxPage = uc.pageSearchLimit
	}
	for p := page + 1; p < maxPage; p++ {
		more, _, err := uc.msgRepo.GetConversation(ctx, roomID, userID, p, limit)
		if err != nil {
			return nil, errprocess.Wrap(errprocess.KindInternal, "get conversation fail", err)
		}
		conv.Items = append(conv.Items, more...)
		if containsMessage(more, pinned.ID) {
			conv.FirstPinnedMessageID = pinned.ID
			break
		}
	}
	return conv, nil
}

func containsMessage(items []domain.EnrichedMessage, id string) bool {
	for _, m := range items {
		if m.ID == id {
			return true
		}
	}
	return false
}
