package app

import (
	"context"
	"testing"

	"chat_backend_service/internal/chat/domain"
	errprocess "chat_backend_service/pkg/err"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newMessageUseCaseForTest(roomRepo *MockRoomRepository, msgRepo *MockMessageRepository, fileRepo *MockFileRepository, registry *SessionRegistry) *MessageUseCase {
	roomUC := NewRoomUseCase(roomRepo, msgRepo, fileRepo)
	return NewMessageUseCase(roomUC, msgRepo, fileRepo, NewNotifier(registry))
}

func TestMessageUseCase_PostFansOutToOtherSessions(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	registry := NewSessionRegistry()

	senderS1 := newFakeChannel()
	senderS2 := newFakeChannel()
	otherS3 := newFakeChannel()
	registry.Identify("u1", "phone", "s1", senderS1)
	registry.Identify("u1", "laptop", "s2", senderS2)
	registry.Identify("u2", "phone", "s3", otherS3)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)
	mockMsgRepo.On("InsertMessage", ctx, mock.Anything).Return(nil)
	mockMsgRepo.On("FindByIDs", ctx, mock.Anything).Return([]domain.EnrichedMessage{
		{ChatMessage: domain.ChatMessage{ID: "m1", ChatRoomID: "r1", PostByUser: "u1"}},
	}, nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, new(MockFileRepository), registry)
	msg, err := uc.Post(ctx, "s1", "r1", "u1", "hello", nil)

	assert.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)

	resp := senderS2.waitPush(t)
	assert.Equal(t, string(domain.EventNewMessage), resp.Event)
	otherS3.waitPush(t)
	senderS1.assertNoPush(t)
}

func TestMessageUseCase_PostRequiresContent(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, new(MockMessageRepository), new(MockFileRepository), NewSessionRegistry())
	_, err := uc.Post(ctx, "s1", "r1", "u1", "", nil)

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
}

func TestMessageUseCase_PostRejectsNonMember(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)

	mockMsgRepo := new(MockMessageRepository)
	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, new(MockFileRepository), NewSessionRegistry())
	_, err := uc.Post(ctx, "s1", "r1", "stranger", "hi", nil)

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindForbidden, errprocess.KindOf(err))
	mockMsgRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestMessageUseCase_ForwardUnknownSource(t *testing.T) {
	ctx := context.Background()
	mockMsgRepo := new(MockMessageRepository)
	mockMsgRepo.On("FindRawByIDs", ctx, []string{"missing"}).Return([]domain.ChatMessage{}, nil)

	uc := newMessageUseCaseForTest(new(MockRoomRepository), mockMsgRepo, new(MockFileRepository), NewSessionRegistry())
	_, err := uc.Forward(ctx, "s1", "r1", "u1", "fwd", nil, []string{"missing"})

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
}

func TestMessageUseCase_ReplyRequiresSource(t *testing.T) {
	ctx := context.Background()
	uc := newMessageUseCaseForTest(new(MockRoomRepository), new(MockMessageRepository), new(MockFileRepository), NewSessionRegistry())

	_, err := uc.Reply(ctx, "s1", "r1", "u1", "re", nil, "")
	assert.Error(t, err)
	assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
}

func TestMessageUseCase_MarkReadIdempotent(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	registry := NewSessionRegistry()

	other := newFakeChannel()
	registry.Identify("u1", "phone", "s1", other)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)
	mockMsgRepo.On("MarkRead", ctx, "r1", "u2").Return(int64(0), nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, new(MockFileRepository), registry)
	matched, err := uc.MarkRead(ctx, "s2", "r1", "u2")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), matched)
	// nothing new was read, nobody hears anything
	other.assertNoPush(t)
}

func TestMessageUseCase_MarkReadFansOut(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	registry := NewSessionRegistry()

	other := newFakeChannel()
	registry.Identify("u1", "phone", "s1", other)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)
	mockMsgRepo.On("MarkRead", ctx, "r1", "u2").Return(int64(3), nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, new(MockFileRepository), registry)
	matched, err := uc.MarkRead(ctx, "s2", "r1", "u2")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), matched)

	resp := other.waitPush(t)
	assert.Equal(t, string(domain.EventMarkRead), resp.Event)
	payload := resp.Payload.(map[string]interface{})
	assert.Equal(t, "r1", payload["room_id"])
	assert.Equal(t, "u2", payload["read_by_user"])
}

func TestMessageUseCase_PinNoMatchNoFanout(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	registry := NewSessionRegistry()

	other := newFakeChannel()
	registry.Identify("u2", "phone", "s3", other)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)
	mockMsgRepo.On("Pin", ctx, "r1", "ghost").Return(int64(0), nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, new(MockFileRepository), registry)
	matched, err := uc.Pin(ctx, "s1", "r1", "u1", "ghost")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), matched)
	other.assertNoPush(t)
}

func TestMessageUseCase_DeleteMessagesFiltersForOthers(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	registry := NewSessionRegistry()

	requesterOther := newFakeChannel()
	member := newFakeChannel()
	registry.Identify("u2", "laptop", "s2", requesterOther)
	registry.Identify("u1", "phone", "s3", member)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)
	mockMsgRepo.On("SoftDelete", ctx, []string{"m1", "m2"}, "u2").Return(int64(2), nil)

	// m1 was posted by u1, only u2 deleted it. m2 is u2's own message,
	// so its delete marker is an author delete.
	mockMsgRepo.On("FindRawByIDs", ctx, []string{"m1", "m2"}).Return([]domain.ChatMessage{
		{
			ID:            "m1",
			PostByUser:    "u1",
			DeleteByUsers: []domain.DeleteMark{{DeleteByUserID: "u2"}},
		},
		{
			ID:            "m2",
			PostByUser:    "u2",
			DeleteByUsers: []domain.DeleteMark{{DeleteByUserID: "u2"}},
		},
	}, nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, new(MockFileRepository), registry)
	matched, err := uc.DeleteMessages(ctx, "s1", "r1", "u2", []string{"m1", "m2"})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), matched)

	// requester's other device syncs the full list
	resp := requesterOther.waitPush(t)
	assert.Equal(t, string(domain.EventDeleteMessage), resp.Event)
	assert.Equal(t, []string{"m1", "m2"}, resp.Payload.(map[string]interface{})["message_ids"])

	// the other member only hears about the author deleted id
	resp = member.waitPush(t)
	assert.Equal(t, string(domain.EventDeleteMessage), resp.Event)
	assert.Equal(t, []string{"m2"}, resp.Payload.(map[string]interface{})["message_ids"])
	member.assertNoPush(t)
}

func TestMessageUseCase_PurgeRejectsForeignMessages(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)
	mockMsgRepo.On("FindRawByIDs", ctx, []string{"m1"}).Return([]domain.ChatMessage{
		{ID: "m1", PostByUser: "u1"},
	}, nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, new(MockFileRepository), NewSessionRegistry())
	_, err := uc.PurgeMessages(ctx, "r1", "u2", []string{"m1"})

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindForbidden, errprocess.KindOf(err))
	mockMsgRepo.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything)
}

func TestMessageUseCase_PurgeKeepsSharedAttachment(t *testing.T) {
	ctx := context.Background()
	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockFileRepo := new(MockFileRepository)

	room := &domain.ChatRoom{ID: "r1", UserIDs: []string{"u1", "u2"}}
	mockRoomRepo.On("FindByID", ctx, "r1").Return(room, nil)
	mockMsgRepo.On("FindRawByIDs", ctx, []string{"m1"}).Return([]domain.ChatMessage{
		{
			ID:         "m1",
			PostByUser: "u1",
			Message:    domain.MessageContent{Files: []domain.AttachmentRef{{FileID: "f1"}}},
		},
	}, nil)
	mockMsgRepo.On("DeleteByIDs", ctx, []string{"m1"}).Return(int64(1), nil)
	// a forwarded copy still references the file
	mockMsgRepo.On("CountReferencingFile", ctx, "f1").Return(int64(1), nil)

	uc := newMessageUseCaseForTest(mockRoomRepo, mockMsgRepo, mockFileRepo, NewSessionRegistry())
	deleted, err := uc.PurgeMessages(ctx, "r1", "u1", []string{"m1"})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	mockFileRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
