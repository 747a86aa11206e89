package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg"
	"chat_backend_service/pkg/database"
	"chat_backend_service/pkg/logger"
	testtool "chat_backend_service/pkg/test_tool"

	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testMongo *database.MongoDB

	roomRepo  RoomRepository
	msgRepo   MessageRepository
	userRepo  UserRepository
	notifRepo NotificationRepository
)

// TestMain start a MongoDB container for the whole package
func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.SetNewNop()

	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:latest",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start MongoDB container: %v", err)
	}
	fmt.Printf("✅ MongoDB running at %s:%s\n", mongoHost, mongoPort)

	testMongo, err = database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 5,
	}, "test_chat_db")
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	roomRepo = NewMongoChatRepository(testMongo.Database)
	msgRepo = NewMongoChatMessageRepository(testMongo.Database)
	userRepo = NewMongoUserRepository(testMongo.Database)
	notifRepo = NewMongoNotificationRepository(testMongo.Database)

	code := m.Run()

	_ = testMongo.Close(ctx)
	_ = mongoContainer.Terminate(ctx)
	os.Exit(code)
}

func mustCreateUser(t *testing.T, ctx context.Context, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:         pkg.NewID(),
		Username:   username,
		DiscoverID: pkg.NewID()[:12],
	}
	assert.NoError(t, userRepo.CreateUser(ctx, user))
	return user
}

func mustInsertMessage(t *testing.T, ctx context.Context, roomID, authorID, text string) *domain.ChatMessage {
	t.Helper()
	msg := &domain.ChatMessage{
		ID:         pkg.NewID(),
		ChatRoomID: roomID,
		Message:    domain.MessageContent{Text: text},
		PostByUser: authorID,
	}
	assert.NoError(t, msgRepo.InsertMessage(ctx, msg))
	// created_at carries millisecond precision, keep the ordering strict
	time.Sleep(2 * time.Millisecond)
	return msg
}

func TestRoomRepository_InitiateIdempotency(t *testing.T) {
	ctx := context.Background()

	members := []string{pkg.NewID(), pkg.NewID()}
	room := &domain.ChatRoom{
		ID:       pkg.NewID(),
		RoomType: domain.ChatRoomTypePrivate,
		UserIDs:  members,
	}
	assert.NoError(t, roomRepo.CreateRoom(ctx, room))

	found, err := roomRepo.FindExisting(ctx, members, domain.ChatRoomTypePrivate, "")
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, room.ID, found.ID)

	// a third member means a different room
	missing, err := roomRepo.FindExisting(ctx, append(members, pkg.NewID()), domain.ChatRoomTypePrivate, "")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	// same members under another name is its own group
	missing, err = roomRepo.FindExisting(ctx, members, domain.ChatRoomTypeGroup, "book club")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRoomRepository_RecentRoomsEnrichment(t *testing.T) {
	ctx := context.Background()

	alice := mustCreateUser(t, ctx, "recent-a-"+pkg.NewID()[:6])
	bob := mustCreateUser(t, ctx, "recent-b-"+pkg.NewID()[:6])
	members := []string{alice.ID, bob.ID}

	older := &domain.ChatRoom{ID: pkg.NewID(), RoomType: domain.ChatRoomTypePrivate, UserIDs: members}
	assert.NoError(t, roomRepo.CreateRoom(ctx, older))
	time.Sleep(2 * time.Millisecond)
	newer := &domain.ChatRoom{ID: pkg.NewID(), RoomType: domain.ChatRoomTypeGroup, Name: "book club", UserIDs: members}
	assert.NoError(t, roomRepo.CreateRoom(ctx, newer))

	mustInsertMessage(t, ctx, older.ID, bob.ID, "first")
	latest := mustInsertMessage(t, ctx, older.ID, bob.ID, "second")
	retracted := mustInsertMessage(t, ctx, older.ID, bob.ID, "retracted")
	_, err := msgRepo.SoftDelete(ctx, []string{retracted.ID}, bob.ID)
	assert.NoError(t, err)

	// newest activity first, one room per page
	items, meta, err := roomRepo.FindRoomsByUserID(ctx, alice.ID, 0, 1)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, 2, meta.Pages)
	assert.Equal(t, newer.ID, items[0].Room.ID)

	items, meta, err = roomRepo.FindRoomsByUserID(ctx, alice.ID, 1, 1)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, meta.Page)

	got := items[0]
	assert.Equal(t, older.ID, got.Room.ID)
	assert.Len(t, got.Members, 2)
	assert.ElementsMatch(t,
		[]string{alice.Username, bob.Username},
		[]string{got.Members[0].Username, got.Members[1].Username})

	// the author-retracted message never surfaces as the last one
	assert.NotNil(t, got.LastMessage)
	assert.Equal(t, latest.ID, got.LastMessage.ID)
	assert.Equal(t, bob.Username, got.LastMessage.Author.Username)

	// unread follows the read markers, alice read nothing yet
	assert.Equal(t, int64(3), got.UnreadCount)

	_, err = msgRepo.MarkRead(ctx, older.ID, alice.ID)
	assert.NoError(t, err)
	items, _, err = roomRepo.FindRoomsByUserID(ctx, alice.ID, 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), items[0].UnreadCount)
}

func TestMessageRepository_InsertSeedsAuthorReadReceipt(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	author := mustCreateUser(t, ctx, "author-"+pkg.NewID()[:6])

	msg := mustInsertMessage(t, ctx, roomID, author.ID, "hello")

	raw, err := msgRepo.FindRawByIDs(ctx, []string{msg.ID})
	assert.NoError(t, err)
	assert.Len(t, raw, 1)
	assert.True(t, raw[0].ReadBy(author.ID))
	assert.False(t, raw[0].ReadBy("someone-else"))
}

func TestMessageRepository_GetConversationPagination(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	author := mustCreateUser(t, ctx, "pager-"+pkg.NewID()[:6])

	for i := 0; i < 25; i++ {
		mustInsertMessage(t, ctx, roomID, author.ID, fmt.Sprintf("msg %d", i))
	}

	items, meta, err := msgRepo.GetConversation(ctx, roomID, author.ID, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, int64(25), meta.Total)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 3, meta.Pages)

	// newest first, the last inserted message leads the page
	assert.Equal(t, "msg 24", items[0].Message.Text)
	// the author join got resolved
	assert.Equal(t, author.Username, items[0].Author.Username)

	last, meta, err := msgRepo.GetConversation(ctx, roomID, author.ID, 2, 10)
	assert.NoError(t, err)
	assert.Len(t, last, 5)
	assert.Equal(t, 3, meta.Page)
}

func TestMessageRepository_MarkReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	author := mustCreateUser(t, ctx, "writer-"+pkg.NewID()[:6])
	reader := mustCreateUser(t, ctx, "reader-"+pkg.NewID()[:6])

	mustInsertMessage(t, ctx, roomID, author.ID, "one")
	mustInsertMessage(t, ctx, roomID, author.ID, "two")

	unread, err := msgRepo.CountUnread(ctx, roomID, reader.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	matched, err := msgRepo.MarkRead(ctx, roomID, reader.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), matched)

	// a second sweep finds nothing left to mark
	matched, err = msgRepo.MarkRead(ctx, roomID, reader.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), matched)

	unread, err = msgRepo.CountUnread(ctx, roomID, reader.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMessageRepository_SoftDeleteVisibility(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	alice := mustCreateUser(t, ctx, "alice-"+pkg.NewID()[:6])
	bob := mustCreateUser(t, ctx, "bob-"+pkg.NewID()[:6])

	kept := mustInsertMessage(t, ctx, roomID, alice.ID, "kept")
	hidden := mustInsertMessage(t, ctx, roomID, alice.ID, "hidden for bob")
	gone := mustInsertMessage(t, ctx, roomID, alice.ID, "author deleted")

	// bob hides one for himself, alice deletes one of her own
	_, err := msgRepo.SoftDelete(ctx, []string{hidden.ID}, bob.ID)
	assert.NoError(t, err)
	_, err = msgRepo.SoftDelete(ctx, []string{gone.ID}, alice.ID)
	assert.NoError(t, err)

	bobItems, _, err := msgRepo.GetConversation(ctx, roomID, bob.ID, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, bobItems, 1)
	assert.Equal(t, kept.ID, bobItems[0].ID)

	// alice still sees the message bob hid, but not her own deleted one
	aliceItems, _, err := msgRepo.GetConversation(ctx, roomID, alice.ID, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, aliceItems, 2)
	for _, item := range aliceItems {
		assert.NotEqual(t, gone.ID, item.ID)
	}
}

func TestMessageRepository_SoftDeleteDoesNotStack(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	author := mustCreateUser(t, ctx, "dup-"+pkg.NewID()[:6])

	msg := mustInsertMessage(t, ctx, roomID, author.ID, "delete me twice")

	matched, err := msgRepo.SoftDelete(ctx, []string{msg.ID}, "u2")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	matched, err = msgRepo.SoftDelete(ctx, []string{msg.ID}, "u2")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), matched)

	raw, err := msgRepo.FindRawByIDs(ctx, []string{msg.ID})
	assert.NoError(t, err)
	assert.Len(t, raw[0].DeleteByUsers, 1)
}

func TestMessageRepository_PinAndFindFirstPinned(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	author := mustCreateUser(t, ctx, "pinner-"+pkg.NewID()[:6])

	first := mustInsertMessage(t, ctx, roomID, author.ID, "pinned first")
	second := mustInsertMessage(t, ctx, roomID, author.ID, "pinned later")

	// pin in reverse order, the earliest created one still wins
	matched, err := msgRepo.Pin(ctx, roomID, second.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), matched)
	_, err = msgRepo.Pin(ctx, roomID, first.ID)
	assert.NoError(t, err)

	pinned, err := msgRepo.FindFirstPinned(ctx, roomID)
	assert.NoError(t, err)
	assert.NotNil(t, pinned)
	assert.Equal(t, first.ID, pinned.ID)

	matched, err = msgRepo.Unpin(ctx, roomID, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	pinned, err = msgRepo.FindFirstPinned(ctx, roomID)
	assert.NoError(t, err)
	assert.Equal(t, second.ID, pinned.ID)

	// unknown message id changes nothing
	matched, err = msgRepo.Pin(ctx, roomID, "no-such-id")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), matched)
}

func TestMessageRepository_ReplyAndForwardPreviews(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	author := mustCreateUser(t, ctx, "linker-"+pkg.NewID()[:6])

	source := mustInsertMessage(t, ctx, roomID, author.ID, "the source")

	reply := &domain.ChatMessage{
		ID:                pkg.NewID(),
		ChatRoomID:        roomID,
		Message:           domain.MessageContent{Text: "a reply"},
		PostByUser:        author.ID,
		ReplyForMessageID: source.ID,
	}
	assert.NoError(t, msgRepo.InsertMessage(ctx, reply))

	forward := &domain.ChatMessage{
		ID:                      pkg.NewID(),
		ChatRoomID:              roomID,
		Message:                 domain.MessageContent{Text: "a forward"},
		PostByUser:              author.ID,
		ForwardedFromMessageIDs: []string{source.ID},
	}
	assert.NoError(t, msgRepo.InsertMessage(ctx, forward))

	enriched, err := msgRepo.FindByIDs(ctx, []string{reply.ID, forward.ID})
	assert.NoError(t, err)
	assert.Len(t, enriched, 2)

	byID := map[string]domain.EnrichedMessage{}
	for _, e := range enriched {
		byID[e.ID] = e
	}

	assert.NotNil(t, byID[reply.ID].ReplyFor)
	assert.Equal(t, "the source", byID[reply.ID].ReplyFor.Message.Text)
	assert.Len(t, byID[forward.ID].ForwardedFrom, 1)
	assert.Equal(t, source.ID, byID[forward.ID].ForwardedFrom[0].ID)

	// purge the source, the links dangle instead of failing
	_, err = msgRepo.DeleteByIDs(ctx, []string{source.ID})
	assert.NoError(t, err)

	enriched, err = msgRepo.FindByIDs(ctx, []string{reply.ID})
	assert.NoError(t, err)
	assert.Nil(t, enriched[0].ReplyFor)
}

func TestMessageRepository_DeleteByRoom(t *testing.T) {
	ctx := context.Background()
	roomID := pkg.NewID()
	author := mustCreateUser(t, ctx, "sweeper-"+pkg.NewID()[:6])

	mustInsertMessage(t, ctx, roomID, author.ID, "one")
	mustInsertMessage(t, ctx, roomID, author.ID, "two")

	deleted, err := msgRepo.DeleteByRoom(ctx, roomID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	all, err := msgRepo.FindAllByRoom(ctx, roomID)
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserRepository_FindAndAddFriend(t *testing.T) {
	ctx := context.Background()
	alice := mustCreateUser(t, ctx, "friend-a-"+pkg.NewID()[:6])
	bob := mustCreateUser(t, ctx, "friend-b-"+pkg.NewID()[:6])

	found, err := userRepo.FindByDiscoverID(ctx, alice.DiscoverID)
	assert.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	missing, err := userRepo.FindByDiscoverID(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.NoError(t, userRepo.AddFriend(ctx, alice.ID, bob.ID))
	// second add is a no-op thanks to $addToSet
	assert.NoError(t, userRepo.AddFriend(ctx, alice.ID, bob.ID))

	found, err = userRepo.FindByID(ctx, alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, found.Friends)
}

func TestNotificationRepository_PendingLifecycle(t *testing.T) {
	ctx := context.Background()

	n := &domain.Notification{
		ID:         pkg.NewID(),
		Type:       domain.NotificationFriendRequest,
		PostByUser: "u1",
		ToUsers:    []string{"u2"},
	}
	assert.NoError(t, notifRepo.Create(ctx, n))

	pending, err := notifRepo.FindPending(ctx, domain.NotificationFriendRequest, "u1", "u2")
	assert.NoError(t, err)
	assert.NotNil(t, pending)
	assert.Equal(t, n.ID, pending.ID)

	pending, err = notifRepo.FindPending(ctx, domain.NotificationFriendRequest, "u1", "u3")
	assert.NoError(t, err)
	assert.Nil(t, pending)

	deleted, err := notifRepo.Delete(ctx, n.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	pending, err = notifRepo.FindPending(ctx, domain.NotificationFriendRequest, "u1", "u2")
	assert.NoError(t, err)
	assert.Nil(t, pending)
}
