package app

import (
	"context"
	"sort"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/internal/chat/repository"
	"chat_backend_service/pkg"
	"chat_backend_service/pkg/encrypt"
	errprocess "chat_backend_service/pkg/err"
	"chat_backend_service/pkg/logger"

	"go.uber.org/zap"
)

const defaultRoomPageLimit = 20

// RoomUseCase handle room initiation, listing and deletion
type RoomUseCase struct {
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
	fileRepo repository.FileRepository
}

// NewRoomUseCase init room use case
func NewRoomUseCase(
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	fileRepo repository.FileRepository,
) *RoomUseCase {
	return &RoomUseCase{
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
		fileRepo: fileRepo,
	}
}

// ResolveMembers find the member set of the room
func (uc *RoomUseCase) ResolveMembers(ctx context.Context, roomID string) ([]string, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindNotFound, "room not found", err)
	}
	return room.UserIDs, nil
}

// RequireMember authorization boundary, every room operation passes here first
func (uc *RoomUseCase) RequireMember(ctx context.Context, roomID, userID string) (*domain.ChatRoom, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindNotFound, "room not found", err)
	}
	if !room.HasMember(userID) {
		return nil, errprocess.New(errprocess.KindForbidden, "not a member of this room")
	}
	return room, nil
}

// InitiateParams optional fields for a new room
type InitiateParams struct {
	Name        string
	Avatar      string
	Description string
}

// Initiate find or create the room for the member set.
// Repeated initiation with the same members, type and name reuses the room.
func (uc *RoomUseCase) Initiate(ctx context.Context, creatorID string, memberIDs []string, roomType domain.ChatRoomType, p InitiateParams) (*domain.ChatRoom, bool, error) {
	if !roomType.Valid() {
		return nil, false, errprocess.New(errprocess.KindValidation, "invalid room type")
	}

	members := dedupe(memberIDs)
	if !pkg.Contains(members, creatorID) {
		members = append(members, creatorID)
	}
	if len(members) < 2 {
		return nil, false, errprocess.New(errprocess.KindValidation, "room needs at least 2 members")
	}
	sort.Strings(members)

	existing, err := uc.roomRepo.FindExisting(ctx, members, roomType, p.Name)
	if err != nil {
		return nil, false, errprocess.Wrap(errprocess.KindInternal, "find room fail", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	key, err := encrypt.GenerateRoomKey()
	if err != nil {
		return nil, false, errprocess.Wrap(errprocess.KindInternal, "generate room key fail", err)
	}

	room := &domain.ChatRoom{
		ID:            pkg.NewID(),
		RoomType:      roomType,
		Name:          p.Name,
		Avatar:        p.Avatar,
		Description:   p.Description,
		UserIDs:       members,
		CreatedBy:     creatorID,
		EncryptionKey: key,
	}
	if err := uc.roomRepo.CreateRoom(ctx, room); err != nil {
		return nil, false, errprocess.Wrap(errprocess.KindInternal, "create room fail", err)
	}
	return room, true, nil
}

// GetRecentRooms one page of the rooms of userID with member profiles,
// last message and unread count
func (uc *RoomUseCase) GetRecentRooms(ctx context.Context, userID string, page, limit int) (*domain.RoomPage, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = defaultRoomPageLimit
	}

	items, meta, err := uc.roomRepo.FindRoomsByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "find rooms fail", err)
	}
	return &domain.RoomPage{Items: items, Meta: meta}, nil
}

// UpdateRoomInfo change the display fields of the room, members only
func (uc *RoomUseCase) UpdateRoomInfo(ctx context.Context, userID, roomID string, p InitiateParams) (*domain.ChatRoom, error) {
	room, err := uc.RequireMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if p.Name == "" && p.Avatar == "" && p.Description == "" {
		return nil, errprocess.New(errprocess.KindValidation, "nothing to update")
	}

	if p.Name != "" {
		room.Name = p.Name
	}
	if p.Avatar != "" {
		room.Avatar = p.Avatar
	}
	if p.Description != "" {
		room.Description = p.Description
	}
	if err := uc.roomRepo.UpdateRoom(ctx, room); err != nil {
		return nil, errprocess.Wrap(errprocess.KindInternal, "update room fail", err)
	}
	return room, nil
}

// DeleteRoom remove the room, its messages and any attachment blob left unreferenced
func (uc *RoomUseCase) DeleteRoom(ctx context.Context, userID, roomID string) error {
	if _, err := uc.RequireMember(ctx, roomID, userID); err != nil {
		return err
	}

	messages, err := uc.msgRepo.FindAllByRoom(ctx, roomID)
	if err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "find room messages fail", err)
	}

	if _, err := uc.msgRepo.DeleteByRoom(ctx, roomID); err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "delete room messages fail", err)
	}
	if _, err := uc.roomRepo.DeleteRoom(ctx, roomID); err != nil {
		return errprocess.Wrap(errprocess.KindInternal, "delete room fail", err)
	}

	// blob cleanup is best effort, a leaked object is preferable to a failed delete
	for _, fileID := range collectAttachmentIDs(messages) {
		refs, err := uc.msgRepo.CountReferencingFile(ctx, fileID)
		if err != nil || refs > 0 {
			// still referenced from another room, keep the blob
			continue
		}
		if err := uc.fileRepo.Delete(ctx, fileID); err != nil {
			logger.Log.Error("delete attachment fail",
				zap.String("file_id", fileID),
				zap.Error(err))
		}
	}
	return nil
}

func collectAttachmentIDs(messages []domain.ChatMessage) []string {
	seen := map[string]bool{}
	var ids []string
	for _, m := range messages {
		for _, f := range m.Message.Files {
			if !seen[f.FileID] {
				seen[f.FileID] = true
				ids = append(ids, f.FileID)
			}
		}
	}
	return ids
}

func dedupe(ids []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
