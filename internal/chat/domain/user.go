package domain

import "time"

// User definition user document
type User struct {
	ID       string `bson:"_id" json:"id"`
	Username string `bson:"username" json:"username"`

	// public facing id other users search by
	DiscoverID string `bson:"discover_id" json:"discover_id"`

	DisplayName string `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Avatar      string `bson:"avatar,omitempty" json:"avatar,omitempty"`

	Password string `bson:"password" json:"-"`

	// public halves only, private halves live in the secret store
	ChatPublicKey  string `bson:"chat_public_key,omitempty" json:"chat_public_key,omitempty"`
	GroupPublicKey string `bson:"group_public_key,omitempty" json:"group_public_key,omitempty"`

	Friends []string `bson:"friends,omitempty" json:"friends,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserSummary profile projection joined onto messages
type UserSummary struct {
	ID          string `bson:"_id" json:"id"`
	Username    string `bson:"username" json:"username"`
	DisplayName string `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Avatar      string `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// Summary make the profile projection of the user
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}
