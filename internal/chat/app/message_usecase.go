package app

import (
	"context"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/internal/chat/repository"
	"chat_backend_service/pkg"
	errprocess "chat_backend_service/pkg/err"
	"chat_backend_service/pkg/logger"

	"go.uber.org/zap"
)

// MessageUseCase handle posting, linking and per user message state
type MessageUseCase struct {
	roomUC   *RoomUseCase
	msgRepo  repository.MessageRepository
	fileRepo repository.FileRepository
	notifier *Notifier
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	roomUC *RoomUseCase,
	msgRepo repository.MessageRepository,
	fileRepo repository.FileRepository,
	notifier *Notifier,
) *MessageUseCase {
	return &MessageUseCase{
		roomUC:   roomUC,
		msgRepo:  msgRepo,
		fileRepo: fileRepo,
		notifier: notifier,
	}
}

// Post persist a new message and push new_message to the other sessions
func (uc *MessageUseCase) Post(ctx context.Context, sessionID, roomID, authorID, text string, fileIDs []string) (*domain.EnrichedMessage, error) {
	return uc.create(ctx, sessionID, roomID, authorID, text, fileIDs, "", nil)
}

// Reply persist a message linked back to one source message
func (uc *MessageUseCase) Reply(ctx context.Context, sessionID, roomID, authorID, text string, fileIDs []string, sourceID string) (*domain.EnrichedMessage, error) {
	if sourceID == "" {
		return nil, errprocess.New(errprocess.KindValidation, "message_id is required")
	}
	if err := uc.requireMessagesExist(ctx, []string{sourceID}); err != nil {
		return nil, err
	}
	return uc.create(ctx, sessionID, roomID, authorID, text, fileIDs, sourceID, nil)
}

// Forward persist a message carrying references to the source messages
func (uc *MessageUseCase) Forward(ctx context.Context, sessionID, roomID, authorID, text string, fileIDs []string, sourceIDs []string) (*domain.EnrichedMessage, error) {
	sourceIDs = dedupe(sourceIDs)
	if len(sourceIDs) == 0 {
		return nil, errprocess.New(errprocess.KindValidation, "message_ids is required")
	}
	if err := uc.requireMessagesExist(ctx, sourceIDs); err != nil {
		return nil, err
	}
	return uc.create(ctx, sessionID, roomID, authorID, text, fileIDs, "", sourceIDs)
}

func (uc *MessageUseCase) create(ctx context.Context, sessionID, roomID, authorID, text string, fileIDs []string, replyFor string, forwardedFrom []string) (*domain.EnrichedMessage, error) {
	room, err := uc.roomUC.RequireMember(ctx, roomID, authorID)
	if err != nil {
		return nil, err
	}

	attachments, err := uc.resolveAttachments(ctx, fileIDs)
	if err != nil {
		return nil, err
	}
	if text == "" && len(attachments) == 0 {
		return nil, errprocess.New(errprocess.KindValidation, "message or file is required")
	}

	msg := &domain.ChatMessage{
		ID:         pkg.NewID(),
		ChatRoomID: roomID,
		Message: domain.MessageContent{
			Text:  text,
			Files: attachments,
		},
		PostByUser:              authorID,
		ReplyForMessageID:       replyFor,
		ForwardedFromMessageIDs: forwardedFrom,
	}
	if err := uc.msgRepo.InsertMessage(ctx, msg); err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "insert message fail", err)
	}

	enriched, err := uc.msgRepo.FindByIDs(ctx, []string{msg.ID})
	if err != nil || len(enriched) == 0 {
		return nil, errprocess.Wrap(errprocess.KindInternal, "load created message fail", err)
	}

	uc.notifier.Notify(sessionID, room.UserIDs, domain.EventNewMessage, &enriched[0])
	return &enriched[0], nil
}

func (uc *MessageUseCase) resolveAttachments(ctx context.Context, fileIDs []string) ([]domain.AttachmentRef, error) {
	fileIDs = dedupe(fileIDs)
	if len(fileIDs) == 0 {
		return nil, nil
	}

	files, err := uc.fileRepo.FindByIDs(ctx, fileIDs)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find files fail", err)
	}
	if len(files) != len(fileIDs) {
		return nil, errprocess.New(errprocess.KindValidation, "unknown file id")
	}

	refs := make([]domain.AttachmentRef, 0, len(files))
	for i := range files {
		refs = append(refs, files[i].Ref())
	}
	return refs, nil
}

func (uc *MessageUseCase) requireMessagesExist(ctx context.Context, ids []string) error {
	found, err := uc.msgRepo.FindRawByIDs(ctx, ids)
	if err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "find messages fail", err)
	}
	if len(found) != len(ids) {
		return errprocess.New(errprocess.KindValidation, "source message not found")
	}
	return nil
}

// MarkRead append read markers for userID, push mark_read when anything changed
func (uc *MessageUseCase) MarkRead(ctx context.Context, sessionID, roomID, userID string) (int64, error) {
	room, err := uc.roomUC.RequireMember(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}

	matched, err := uc.msgRepo.MarkRead(ctx, roomID, userID)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.KindInternal, "mark read fail", err)
	}

	if matched > 0 {
		uc.notifier.Notify(sessionID, room.UserIDs, domain.EventMarkRead, map[string]interface{}{
			"room_id":      roomID,
			"read_by_user": userID,
		})
	}
	return matched, nil
}

// Pin set the pin flag, push pinned_message when changed
func (uc *MessageUseCase) Pin(ctx context.Context, sessionID, roomID, userID, messageID string) (int64, error) {
	return uc.togglePin(ctx, sessionID, roomID, userID, messageID, true)
}

// Unpin clear the pin flag, push unpinned_message when changed
func (uc *MessageUseCase) Unpin(ctx context.Context, sessionID, roomID, userID, messageID string) (int64, error) {
	return uc.togglePin(ctx, sessionID, roomID, userID, messageID, false)
}

func (uc *MessageUseCase) togglePin(ctx context.Context, sessionID, roomID, userID, messageID string, pinned bool) (int64, error) {
	room, err := uc.roomUC.RequireMember(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}

	var matched int64
	if pinned {
		matched, err = uc.msgRepo.Pin(ctx, roomID, messageID)
	} else {
		matched, err = uc.msgRepo.Unpin(ctx, roomID, messageID)
	}
	if err != nil {
		return 0, errprocess.Wrap(errprocess.KindInternal, "toggle pin fail", err)
	}

	if matched > 0 {
		event := domain.EventPinnedMessage
		if !pinned {
			event = domain.EventUnpinnedMessage
		}
		uc.notifier.Notify(sessionID, room.UserIDs, event, map[string]interface{}{
			"room_id":    roomID,
			"message_id": messageID,
		})
	}
	return matched, nil
}

// DeleteMessages hide the messages for userID. Other members only hear about
// ids the author also deleted, the rest stays visible to them.
func (uc *MessageUseCase) DeleteMessages(ctx context.Context, sessionID, roomID, userID string, messageIDs []string) (int64, error) {
	room, err := uc.roomUC.RequireMember(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}

	messageIDs = dedupe(messageIDs)
	if len(messageIDs) == 0 {
		return 0, errprocess.New(errprocess.KindValidation, "message_ids is required")
	}

	matched, err := uc.msgRepo.SoftDelete(ctx, messageIDs, userID)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.KindInternal, "delete messages fail", err)
	}

	// requester's other devices sync the full list
	uc.notifier.Notify(sessionID, []string{userID}, domain.EventDeleteMessage, map[string]interface{}{
		"room_id":     roomID,
		"message_ids": messageIDs,
	})

	// other members only hear about ids gone for everyone
	deleted, err := uc.msgRepo.FindRawByIDs(ctx, messageIDs)
	if err != nil {
		return matched, errprocess.Wrap(errprocess.KindInternal, "find deleted messages fail", err)
	}
	var everyoneIDs []string
	for _, m := range deleted {
		if m.DeletedByAuthor() {
			everyoneIDs = append(everyoneIDs, m.ID)
		}
	}
	if len(everyoneIDs) > 0 {
		var others []string
		for _, id := range room.UserIDs {
			if id != userID {
				others = append(others, id)
			}
		}
		uc.notifier.Notify(sessionID, others, domain.EventDeleteMessage, map[string]interface{}{
			"room_id":     roomID,
			"message_ids": everyoneIDs,
		})
	}
	return matched, nil
}

// PurgeMessages physically remove the listed messages of the requester
func (uc *MessageUseCase) PurgeMessages(ctx context.Context, roomID, userID string, messageIDs []string) (int64, error) {
	if _, err := uc.roomUC.RequireMember(ctx, roomID, userID); err != nil {
		return 0, err
	}

	messageIDs = dedupe(messageIDs)
	messages, err := uc.msgRepo.FindRawByIDs(ctx, messageIDs)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.KindInternal, "find messages fail", err)
	}
	for _, m := range messages {
		if m.PostByUser != userID {
			return 0, errprocess.New(errprocess.KindForbidden, "can only purge own messages")
		}
	}

	deleted, err := uc.msgRepo.DeleteByIDs(ctx, messageIDs)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.KindInternal, "purge messages fail", err)
	}

	for _, fileID := range collectAttachmentIDs(messages) {
		refs, err := uc.msgRepo.CountReferencingFile(ctx, fileID)
		if err != nil || refs > 0 {
			continue
		}
		if err := uc.fileRepo.Delete(ctx, fileID); err != nil {
			logger.Log.Error("delete attachment fail",
				zap.String("file_id", fileID),
				zap.Error(err))
		}
	}
	return deleted, nil
}
