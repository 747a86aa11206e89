package repository

import (
	"context"
	"time"

	"chat_backend_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository definition user account store
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByDiscoverID(ctx context.Context, discoverID string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	// AddFriend append friendID to the friend set of userID, no-op when present
	AddFriend(ctx context.Context, userID, friendID string) error
	UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error
}

type userRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository create a UserRepository
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		coll: db.Collection("users"),
	}
}

// CreateUser create user
func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, user)
	return err
}

// FindByID find user by id
func (r *userRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername find user by username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByDiscoverID find user by the public facing id
func (r *userRepository) FindByDiscoverID(ctx context.Context, discoverID string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"discover_id": discoverID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs find users by id
func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddFriend append friendID to the friend set of userID, no-op when present
func (r *userRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$addToSet": bson.M{"friends": friendID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

// UpdateProfile set the given profile fields
func (r *userRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	filter := bson.M{"_id": userID}
	update := bson.M{"$set": fields}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}
