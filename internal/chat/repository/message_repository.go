package repository

import (
	"context"
	"fmt"
	"time"

	"chat_backend_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition chat message store
type MessageRepository interface {
	InsertMessage(ctx context.Context, msg *domain.ChatMessage) error
	// FindByIDs find messages by id, joined with author and link previews
	FindByIDs(ctx context.Context, ids []string) ([]domain.EnrichedMessage, error)
	FindRawByIDs(ctx context.Context, ids []string) ([]domain.ChatMessage, error)
	// GetConversation one page of room history visible to userID, newest first
	GetConversation(ctx context.Context, roomID, userID string, page, limit int) ([]domain.EnrichedMessage, domain.PageMeta, error)
	MarkRead(ctx context.Context, roomID, userID string) (int64, error)
	SoftDelete(ctx context.Context, messageIDs []string, userID string) (int64, error)
	Pin(ctx context.Context, roomID, messageID string) (int64, error)
	Unpin(ctx context.Context, roomID, messageID string) (int64, error)
	// FindFirstPinned find the pinned message with the earliest creation time
	FindFirstPinned(ctx context.Context, roomID string) (*domain.ChatMessage, error)
	CountUnread(ctx context.Context, roomID, userID string) (int64, error)
	// CountReferencingFile count messages still carrying the attachment
	CountReferencingFile(ctx context.Context, fileID string) (int64, error)
	FindAllByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error)
	DeleteByRoom(ctx context.Context, roomID string) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type chatMessageRepository struct {
	coll      *mongo.Collection
	usersColl *mongo.Collection
}

// NewMongoChatMessageRepository create a MessageRepository
func NewMongoChatMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll:      db.Collection("chat_messages"),
		usersColl: db.Collection("users"),
	}
}

// visibleFilter hide messages carrying a delete marker of the requester or of the author
func visibleFilter(roomID, userID string) bson.M {
	return bson.M{
		"chat_room_id":                      roomID,
		"delete_by_users.delete_by_user_id": bson.M{"$ne": userID},
		"$expr": bson.M{
			"$not": bson.M{
				"$in": bson.A{
					"$post_by_user",
					bson.M{"$ifNull": bson.A{"$delete_by_users.delete_by_user_id", bson.A{}}},
				},
			},
		},
	}
}

// authorLookupStages join the author profile projection onto each message
func authorLookupStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "post_by_user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// InsertMessage write one chat message, author read marker seeded
func (r *chatMessageRepository) InsertMessage(ctx context.Context, msg *domain.ChatMessage) error {
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if !msg.ReadBy(msg.PostByUser) {
		msg.ReadByRecipients = append(msg.ReadByRecipients, domain.ReadReceipt{
			ReadByUserID: msg.PostByUser,
			ReadAt:       now,
		})
	}

	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

// FindByIDs find messages by id, joined with author and link previews
func (r *chatMessageRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.EnrichedMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": ids}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}
	pipeline = append(pipeline, authorLookupStages()...)

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}

	var messages []domain.EnrichedMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}

	if err := r.resolvePreviews(ctx, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// FindRawByIDs find messages by id without enrichment
func (r *chatMessageRepository) FindRawByIDs(ctx context.Context, ids []string) ([]domain.ChatMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var messages []domain.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetConversation one page of room history visible to userID, newest first
func (r *chatMessageRepository) GetConversation(ctx context.Context, roomID, userID string, page, limit int) ([]domain.EnrichedMessage, domain.PageMeta, error) {
	meta := domain.PageMeta{Limit: limit, Page: page + 1}

	itemStages := bson.A{
		bson.D{{Key: "$skip", Value: page * limit}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	for _, s := range authorLookupStages() {
		itemStages = append(itemStages, s)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: visibleFilter(roomID, userID)}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "count"}}}},
			{Key: "items", Value: itemStages},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, meta, fmt.Errorf("aggregate error: %w", err)
	}

	var facet []struct {
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
		Items []domain.EnrichedMessage `bson:"items"`
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

	items := facet[0].Items
	if err := r.resolvePreviews(ctx, items); err != nil {
		return nil, meta, err
	}
	return items, meta, nil
}

// resolvePreviews fill shallow reply and forward previews, one lookup round
func (r *chatMessageRepository) resolvePreviews(ctx context.Context, messages []domain.EnrichedMessage) error {
	idSet := map[string]struct{}{}
	for _, m := range messages {
		if m.ReplyForMessageID != "" {
			idSet[m.ReplyForMessageID] = struct{}{}
		}
		for _, id := range m.ForwardedFromMessageIDs {
			idSet[id] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	targets, err := r.FindRawByIDs(ctx, ids)
	if err != nil {
		return err
	}

	authorIDs := make([]string, 0, len(targets))
	for _, t := range targets {
		authorIDs = append(authorIDs, t.PostByUser)
	}
	authors, err := r.findUserSummaries(ctx, authorIDs)
	if err != nil {
		return err
	}

	previews := make(map[string]domain.MessagePreview, len(targets))
	for _, t := range targets {
		previews[t.ID] = domain.MessagePreview{
			ID:         t.ID,
			Message:    t.Message,
			PostByUser: authors[t.PostByUser],
			CreatedAt:  t.CreatedAt,
		}
	}

	for i := range messages {
		if p, ok := previews[messages[i].ReplyForMessageID]; ok {
			preview := p
			messages[i].ReplyFor = &preview
		}
		for _, id := range messages[i].ForwardedFromMessageIDs {
			if p, ok := previews[id]; ok {
				messages[i].ForwardedFrom = append(messages[i].ForwardedFrom, p)
			}
		}
	}
	return nil
}

func (r *chatMessageRepository) findUserSummaries(ctx context.Context, ids []string) (map[string]domain.UserSummary, error) {
	summaries := map[string]domain.UserSummary{}
	if len(ids) == 0 {
		return summaries, nil
	}

	cur, err := r.usersColl.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var users []domain.UserSummary
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		summaries[u.ID] = u
	}
	return summaries, nil
}

// MarkRead append a read marker for userID to every room message missing one
func (r *chatMessageRepository) MarkRead(ctx context.Context, roomID, userID string) (int64, error) {
	filter := bson.M{
		"chat_room_id":                       roomID,
		"read_by_recipients.read_by_user_id": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{
			"read_by_recipients": domain.ReadReceipt{
				ReadByUserID: userID,
				ReadAt:       time.Now(),
			},
		},
	}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// SoftDelete append a delete marker for userID to each listed message
func (r *chatMessageRepository) SoftDelete(ctx context.Context, messageIDs []string, userID string) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}

	filter := bson.M{
		"_id":                               bson.M{"$in": messageIDs},
		"delete_by_users.delete_by_user_id": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{
			"delete_by_users": domain.DeleteMark{
				DeleteByUserID: userID,
				DeleteAt:       time.Now(),
			},
		},
	}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Pin set the pin flag, zero matched when the message is not in the room
func (r *chatMessageRepository) Pin(ctx context.Context, roomID, messageID string) (int64, error) {
	filter := bson.M{"_id": messageID, "chat_room_id": roomID}
	update := bson.M{"$set": bson.M{
		"is_pinned":  true,
		"pinned_at":  time.Now(),
		"updated_at": time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Unpin clear the pin flag, zero matched when the message is not in the room
func (r *chatMessageRepository) Unpin(ctx context.Context, roomID, messageID string) (int64, error) {
	filter := bson.M{"_id": messageID, "chat_room_id": roomID}
	update := bson.M{
		"$set":   bson.M{"is_pinned": false, "updated_at": time.Now()},
		"$unset": bson.M{"pinned_at": ""},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// FindFirstPinned find the pinned message with the earliest creation time
func (r *chatMessageRepository) FindFirstPinned(ctx context.Context, roomID string) (*domain.ChatMessage, error) {
	filter := bson.M{"chat_room_id": roomID, "is_pinned": true}
	opts := options.FindOne().SetSort(bson.M{"created_at": 1})

	var msg domain.ChatMessage
	err := r.coll.FindOne(ctx, filter, opts).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountUnread count room messages visible to userID without a read marker of userID
func (r *chatMessageRepository) CountUnread(ctx context.Context, roomID, userID string) (int64, error) {
	filter := visibleFilter(roomID, userID)
	filter["read_by_recipients.read_by_user_id"] = bson.M{"$ne": userID}
	return r.coll.CountDocuments(ctx, filter)
}

// CountReferencingFile count messages still carrying the attachment
func (r *chatMessageRepository) CountReferencingFile(ctx context.Context, fileID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"message.files.file_id": fileID})
}

// FindAllByRoom find every message of the room, soft deleted included
func (r *chatMessageRepository) FindAllByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	cur, err := r.coll.Find(ctx, bson.M{"chat_room_id": roomID})
	if err != nil {
		return nil, err
	}

	var messages []domain.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteByRoom physically remove every message of the room
func (r *chatMessageRepository) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"chat_room_id": roomID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByIDs physically remove the listed messages
func (r *chatMessageRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
