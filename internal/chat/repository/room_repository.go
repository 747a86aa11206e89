package repository

import (
	"context"
	"fmt"
	"time"

	"chat_backend_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoomRepository definition chat room
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *domain.ChatRoom) error
	FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	// FindExisting find a room with the identical member set, type and name
	FindExisting(ctx context.Context, memberIDs []string, roomType domain.ChatRoomType, name string) (*domain.ChatRoom, error)
	// FindRoomsByUserID one page of the rooms of userID, member profiles,
	// last visible message and unread count joined in one aggregation
	FindRoomsByUserID(ctx context.Context, userID string, page, limit int) ([]domain.RoomRecentInfo, domain.PageMeta, error)
	UpdateRoom(ctx context.Context, room *domain.ChatRoom) error
	DeleteRoom(ctx context.Context, roomID string) (int64, error)
}

type chatRepository struct {
	roomsColl *mongo.Collection
}

// NewMongoChatRepository create new mongo chat
func NewMongoChatRepository(db *mongo.Database) RoomRepository {
	return &chatRepository{
		roomsColl: db.Collection("chat_rooms"),
	}
}

// CreateRoom create room
func (r *chatRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) error {
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	_, err := r.roomsColl.InsertOne(ctx, room)
	return err
}

// FindByID find room by id
func (r *chatRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.roomsColl.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindExisting find a room with the identical member set, type and name
func (r *chatRepository) FindExisting(ctx context.Context, memberIDs []string, roomType domain.ChatRoomType, name string) (*domain.ChatRoom, error) {
	filter := bson.M{
		"room_type": roomType,
		"name":      name,
		"user_ids": bson.M{
			"$size": len(memberIDs),
			"$all":  memberIDs,
		},
	}
	if name == "" {
		// 1:1 rooms carry no name field at all
		filter["name"] = bson.M{"$in": bson.A{nil, ""}}
	}

	var room domain.ChatRoom
	err := r.roomsColl.FindOne(ctx, filter).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindRoomsByUserID one page of the rooms of userID, latest activity first
func (r *chatRepository) FindRoomsByUserID(ctx context.Context, userID string, page, limit int) ([]domain.RoomRecentInfo, domain.PageMeta, error) {
	meta := domain.PageMeta{Limit: limit, Page: page + 1}

	itemStages := bson.A{
		bson.D{{Key: "$skip", Value: page * limit}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	for _, s := range roomEnrichStages(userID) {
		itemStages = append(itemStages, s)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_ids": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "count"}}}},
			{Key: "items", Value: itemStages},
		}}},
	}

	cur, err := r.roomsColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, meta, fmt.Errorf("aggregate error: %w", err)
	}

	var facet []struct {
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
		Items []domain.RoomRecentInfo `bson:"items"`
	}
	if err := cur.All(ctx, &facet); err != nil {
		return nil, meta, fmt.Errorf("cursor All error: %w", err)
	}
	if len(facet) == 0 {
		return nil, meta, nil
	}

	if len(facet[0].Total) > 0 {
		meta.Total = facet[0].Total[0].Count
	}
	meta.Pages = int((meta.Total + int64(limit) - 1) / int64(limit))
	return facet[0].Items, meta, nil
}

// roomEnrichStages join member profiles, the last message still visible to
// userID and the unread count onto each room document
func roomEnrichStages(userID string) []bson.D {
	notIn := func(value, path string) bson.M {
		return bson.M{"$not": bson.M{"$in": bson.A{
			value,
			bson.M{"$ifNull": bson.A{path, bson.A{}}},
		}}}
	}

	lastMessagePipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.M{"$expr": bson.M{"$and": bson.A{
			bson.M{"$eq": bson.A{"$chat_room_id", "$$room_id"}},
			notIn(userID, "$delete_by_users.delete_by_user_id"),
			notIn("$post_by_user", "$delete_by_users.delete_by_user_id"),
		}}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		bson.D{{Key: "$limit", Value: 1}},
	}
	for _, s := range authorLookupStages() {
		lastMessagePipeline = append(lastMessagePipeline, s)
	}

	unreadPipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.M{"$expr": bson.M{"$and": bson.A{
			bson.M{"$eq": bson.A{"$chat_room_id", "$$room_id"}},
			notIn(userID, "$read_by_recipients.read_by_user_id"),
		}}}}},
		bson.D{{Key: "$count", Value: "count"}},
	}

	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user_ids"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "members"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "chat_messages"},
			{Key: "let", Value: bson.D{{Key: "room_id", Value: "$_id"}}},
			{Key: "pipeline", Value: lastMessagePipeline},
			{Key: "as", Value: "last_message"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "chat_messages"},
			{Key: "let", Value: bson.D{{Key: "room_id", Value: "$_id"}}},
			{Key: "pipeline", Value: unreadPipeline},
			{Key: "as", Value: "unread"},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "last_message", Value: bson.D{{Key: "$first", Value: "$last_message"}}},
			{Key: "unread_count", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$first", Value: "$unread.count"}},
				0,
			}}}},
		}}},
	}
}

// UpdateRoom update room info
func (r *chatRepository) UpdateRoom(ctx context.Context, room *domain.ChatRoom) error {
	room.UpdatedAt = time.Now()
	filter := bson.M{"_id": room.ID}
	update := bson.M{"$set": room}
	_, err := r.roomsColl.UpdateOne(ctx, filter, update)
	return err
}

// DeleteRoom remove the room document
func (r *chatRepository) DeleteRoom(ctx context.Context, roomID string) (int64, error) {
	res, err := r.roomsColl.DeleteOne(ctx, bson.M{"_id": roomID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
