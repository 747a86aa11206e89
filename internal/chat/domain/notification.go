package domain

import "time"

// NotificationType definition notification type
type NotificationType string

const (
	//NotificationFriendRequest friend request notification
	NotificationFriendRequest NotificationType = "friend_request"
)

// Notification definition notification document
type Notification struct {
	ID   string           `bson:"_id" json:"id"`
	Type NotificationType `bson:"type" json:"type"`

	Payload    map[string]interface{} `bson:"payload,omitempty" json:"payload,omitempty"`
	PostByUser string                 `bson:"post_by_user" json:"post_by_user"`
	ToUsers    []string               `bson:"to_users" json:"to_users"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
