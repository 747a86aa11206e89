package app

import (
	"context"
	"io"
	"time"

	"chat_backend_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// CreateRoom moke create room
func (m *MockRoomRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

// FindByID moke find room by room id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindExisting moke find room by member set, type and name
func (m *MockRoomRepository) FindExisting(ctx context.Context, memberIDs []string, roomType domain.ChatRoomType, name string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, memberIDs, roomType, name)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindRoomsByUserID moke one recent rooms page
func (m *MockRoomRepository) FindRoomsByUserID(ctx context.Context, userID string, page, limit int) ([]domain.RoomRecentInfo, domain.PageMeta, error) {
	args := m.Called(ctx, userID, page, limit)
	var items []domain.RoomRecentInfo
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.RoomRecentInfo)
	}
	return items, args.Get(1).(domain.PageMeta), args.Error(2)
}

// UpdateRoom moke update room
func (m *MockRoomRepository) UpdateRoom(ctx context.Context, room *domain.ChatRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

// DeleteRoom moke delete room
func (m *MockRoomRepository) DeleteRoom(ctx context.Context, roomID string) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// InsertMessage moke insert msg
func (m *MockMessageRepository) InsertMessage(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByIDs moke find enriched msgs by id
func (m *MockMessageRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.EnrichedMessage, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.EnrichedMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindRawByIDs moke find msgs by id
func (m *MockMessageRepository) FindRawByIDs(ctx context.Context, ids []string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// GetConversation moke get one history page
func (m *MockMessageRepository) GetConversation(ctx context.Context, roomID, userID string, page, limit int) ([]domain.EnrichedMessage, domain.PageMeta, error) {
	args := m.Called(ctx, roomID, userID, page, limit)
	var items []domain.EnrichedMessage
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.EnrichedMessage)
	}
	return items, args.Get(1).(domain.PageMeta), args.Error(2)
}

// MarkRead moke mark read
func (m *MockMessageRepository) MarkRead(ctx context.Context, roomID, userID string) (int64, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// SoftDelete moke soft delete
func (m *MockMessageRepository) SoftDelete(ctx context.Context, messageIDs []string, userID string) (int64, error) {
	args := m.Called(ctx, messageIDs, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Pin moke pin msg
func (m *MockMessageRepository) Pin(ctx context.Context, roomID, messageID string) (int64, error) {
	args := m.Called(ctx, roomID, messageID)
	return args.Get(0).(int64), args.Error(1)
}

// Unpin moke unpin msg
func (m *MockMessageRepository) Unpin(ctx context.Context, roomID, messageID string) (int64, error) {
	args := m.Called(ctx, roomID, messageID)
	return args.Get(0).(int64), args.Error(1)
}

// FindFirstPinned moke find first pinned msg
func (m *MockMessageRepository) FindFirstPinned(ctx context.Context, roomID string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountUnread moke count unread msgs
func (m *MockMessageRepository) CountUnread(ctx context.Context, roomID, userID string) (int64, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// CountReferencingFile moke count msgs carrying the file
func (m *MockMessageRepository) CountReferencingFile(ctx context.Context, fileID string) (int64, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).(int64), args.Error(1)
}

// FindAllByRoom moke find all room msgs
func (m *MockMessageRepository) FindAllByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteByRoom moke delete room msgs
func (m *MockMessageRepository) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteByIDs moke delete msgs by id
func (m *MockMessageRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockFileRepository Mock FileRepository
type MockFileRepository struct {
	mock.Mock
}

// Save moke save upload
func (m *MockFileRepository) Save(ctx context.Context, originalName, contentType string, data []byte, uploadedBy string) (*domain.StoredFile, error) {
	args := m.Called(ctx, originalName, contentType, data, uploadedBy)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.StoredFile), args.Error(1)
	}
	return nil, args.Error(1)
}

// Get moke open object stream
func (m *MockFileRepository) Get(ctx context.Context, storedName string) (io.ReadCloser, *domain.StoredFile, error) {
	args := m.Called(ctx, storedName)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var file *domain.StoredFile
	if args.Get(1) != nil {
		file = args.Get(1).(*domain.StoredFile)
	}
	return rc, file, args.Error(2)
}

// FindByIDs moke find upload metadata
func (m *MockFileRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.StoredFile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.StoredFile), args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete moke delete upload
func (m *MockFileRepository) Delete(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

// MockUserRepository Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

// CreateUser moke create user
func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// FindByID moke find user by id
func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByUsername moke find user by username
func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByDiscoverID moke find user by discover id
func (m *MockUserRepository) FindByDiscoverID(ctx context.Context, discoverID string) (*domain.User, error) {
	args := m.Called(ctx, discoverID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByIDs moke find users by id
func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddFriend moke add friend
func (m *MockUserRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

// UpdateProfile moke update profile
func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	args := m.Called(ctx, userID, fields)
	return args.Error(0)
}

// MockNotificationRepository Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

// Create moke create notification
func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// FindPending moke find pending notification
func (m *MockNotificationRepository) FindPending(ctx context.Context, typ domain.NotificationType, postBy, toUser string) (*domain.Notification, error) {
	args := m.Called(ctx, typ, postBy, toUser)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByUser moke find notifications by user
func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID moke find notification by id
func (m *MockNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete moke delete notification
func (m *MockNotificationRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockRedisRepository Mock RedisRepository
type MockRedisRepository[T any] struct {
	mock.Mock
}

// Set moke redis set
func (m *MockRedisRepository[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Get moke redis get
func (m *MockRedisRepository[T]) Get(ctx context.Context, key string) (T, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(T), args.Error(1)
	}
	var zero T
	return zero, args.Error(1)
}

// Del moke redis del
func (m *MockRedisRepository[T]) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetTTL moke redis ttl
func (m *MockRedisRepository[T]) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// ExtendTTL moke redis expire
func (m *MockRedisRepository[T]) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}
