package repository

import (
	"context"
	"time"

	"chat_backend_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository definition notification store
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	// FindPending find an open notification with the same type, sender and recipient
	FindPending(ctx context.Context, typ domain.NotificationType, postBy, toUser string) (*domain.Notification, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type notificationRepository struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepository create a NotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{
		coll: db.Collection("notifications"),
	}
}

// Create create notification
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

// FindPending find an open notification with the same type, sender and recipient
func (r *notificationRepository) FindPending(ctx context.Context, typ domain.NotificationType, postBy, toUser string) (*domain.Notification, error) {
	filter := bson.M{
		"type":         typ,
		"post_by_user": postBy,
		"to_users":     toUser,
	}

	var n domain.Notification
	err := r.coll.FindOne(ctx, filter).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// FindByUser find notifications addressed to userID, latest first
func (r *notificationRepository) FindByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, bson.M{"to_users": userID}, opts)
	if err != nil {
		return nil, err
	}

	var notifications []domain.Notification
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindByID find notification by id
func (r *notificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Delete remove the notification, actioned requests leave no trace
func (r *notificationRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
