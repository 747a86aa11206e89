package domain

import "time"

// ChatRoomType definition chat room type
type ChatRoomType string

const (
	//ChatRoomTypePrivate definition chat room 1 on 1
	ChatRoomTypePrivate ChatRoomType = "private"
	//ChatRoomTypeGroup definition chat room group
	ChatRoomTypeGroup ChatRoomType = "group"
)

// Valid report the type is one of the known room types
func (t ChatRoomType) Valid() bool {
	return t == ChatRoomTypePrivate || t == ChatRoomTypeGroup
}

// ChatRoom definition chat room document
type ChatRoom struct {
	ID       string       `bson:"_id" json:"id"`
	RoomType ChatRoomType `bson:"room_type" json:"room_type"`

	Name        string `bson:"name,omitempty" json:"name,omitempty"`
	Avatar      string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// member set is fixed after creation
	UserIDs   []string `bson:"user_ids" json:"user_ids"`
	CreatedBy string   `bson:"created_by" json:"created_by"`

	// opaque key blob for the room, protocol layer owns its meaning
	EncryptionKey string `bson:"encryption_key,omitempty" json:"encryption_key,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember report userID is in the room member set
func (r *ChatRoom) HasMember(userID string) bool {
	for _, id := range r.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
