package domain

import "time"

// AttachmentRef reference one stored file on a message
type AttachmentRef struct {
	FileID       string `bson:"file_id" json:"file_id"`
	OriginalName string `bson:"original_name" json:"original_name"`
	StoredName   string `bson:"stored_name" json:"stored_name"`
	Size         int64  `bson:"size" json:"size"`
	ContentType  string `bson:"content_type" json:"content_type"`
}

// MessageContent message body, text and/or attachments
type MessageContent struct {
	Text  string          `bson:"text,omitempty" json:"text,omitempty"`
	Files []AttachmentRef `bson:"files,omitempty" json:"files,omitempty"`
}

// ReadReceipt one user read marker on a message
type ReadReceipt struct {
	ReadByUserID string    `bson:"read_by_user_id" json:"read_by_user_id"`
	ReadAt       time.Time `bson:"read_at" json:"read_at"`
}

// DeleteMark one user soft delete marker on a message
type DeleteMark struct {
	DeleteByUserID string    `bson:"delete_by_user_id" json:"delete_by_user_id"`
	DeleteAt       time.Time `bson:"delete_at" json:"delete_at"`
}

// ChatMessage definition one chat message document
type ChatMessage struct {
	ID         string         `bson:"_id" json:"id"`
	ChatRoomID string         `bson:"chat_room_id" json:"chat_room_id"`
	Message    MessageContent `bson:"message" json:"message"`
	PostByUser string         `bson:"post_by_user" json:"post_by_user"`

	ReadByRecipients []ReadReceipt `bson:"read_by_recipients" json:"read_by_recipients"`
	DeleteByUsers    []DeleteMark  `bson:"delete_by_users,omitempty" json:"delete_by_users,omitempty"`

	ReplyForMessageID       string   `bson:"reply_for_message_id,omitempty" json:"reply_for_message_id,omitempty"`
	ForwardedFromMessageIDs []string `bson:"forwarded_from_message_ids,omitempty" json:"forwarded_from_message_ids,omitempty"`

	IsPinned bool      `bson:"is_pinned" json:"is_pinned"`
	PinnedAt time.Time `bson:"pinned_at,omitempty" json:"pinned_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DeletedByAuthor report the author also put a delete marker on the message
func (m *ChatMessage) DeletedByAuthor() bool {
	for _, d := range m.DeleteByUsers {
		if d.DeleteByUserID == m.PostByUser {
			return true
		}
	}
	return false
}

// DeletedBy report userID put a delete marker on the message
func (m *ChatMessage) DeletedBy(userID string) bool {
	for _, d := range m.DeleteByUsers {
		if d.DeleteByUserID == userID {
			return true
		}
	}
	return false
}

// ReadBy report userID has a read marker on the message
func (m *ChatMessage) ReadBy(userID string) bool {
	for _, r := range m.ReadByRecipients {
		if r.ReadByUserID == userID {
			return true
		}
	}
	return false
}

// MessagePreview shallow view of a reply or forward target
type MessagePreview struct {
	ID         string         `bson:"_id" json:"id"`
	Message    MessageContent `bson:"message" json:"message"`
	PostByUser UserSummary    `bson:"post_by_user" json:"post_by_user"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
}

// EnrichedMessage message joined with author profile and link previews
type EnrichedMessage struct {
	ChatMessage `bson:",inline" json:",inline"`

	Author UserSummary `bson:"author" json:"author"`

	// nil when the target was purged, the link just dangles
	ReplyFor      *MessagePreview  `bson:"reply_for,omitempty" json:"reply_for,omitempty"`
	ForwardedFrom []MessagePreview `bson:"forwarded_from,omitempty" json:"forwarded_from,omitempty"`
}

// PageMeta pagination meta of a conversation page
type PageMeta struct {
	Total int64 `bson:"total" json:"total"`
	Limit int   `bson:"limit" json:"limit"`
	Page  int   `bson:"page" json:"page"`
	Pages int   `bson:"pages" json:"pages"`
}

// Conversation one page of room history
type Conversation struct {
	Items []EnrichedMessage `json:"items"`
	Meta  PageMeta          `json:"meta"`

	FirstPinnedMessageID string `json:"first_pinned_message_id,omitempty"`
}

// RoomRecentInfo one room in the recent room list, member profiles joined
type RoomRecentInfo struct {
	Room        ChatRoom         `bson:",inline" json:"room"`
	Members     []UserSummary    `bson:"members" json:"members"`
	LastMessage *EnrichedMessage `bson:"last_message,omitempty" json:"last_message,omitempty"`
	UnreadCount int64            `bson:"unread_count" json:"unread_count"`
}

// RoomPage one page of the recent room listing
type RoomPage struct {
	Items []RoomRecentInfo `json:"items"`
	Meta  PageMeta         `json:"meta"`
}
