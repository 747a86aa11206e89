package domain

// Event websocket event name pushed to clients
type Event string

const (
	// EventNewMessage websocket event new_message
	EventNewMessage Event = "new_message"
	// EventMarkRead websocket event mark_read
	EventMarkRead Event = "mark_read"
	// EventPinnedMessage websocket event pinned_message
	EventPinnedMessage Event = "pinned_message"
	// EventUnpinnedMessage websocket event unpinned_message
	EventUnpinnedMessage Event = "unpinned_message"
	// EventDeleteMessage websocket event delete_message
	EventDeleteMessage Event = "delete_message"
	// EventAddFriend websocket event add_friend
	EventAddFriend Event = "add_friend"
	// EventAddFriendRequest websocket event add_friend_request
	EventAddFriendRequest Event = "add_friend_request"
)

// Action websocket request action
type Action string

const (
	// Identify websocket action identify
	Identify Action = "identify"
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// ReadMessage websocket action read_message
	ReadMessage Action = "read_message"
)

// WSRequest websocket Request
type WSRequest struct {
	Action   string `json:"action"`
	DeviceID string `json:"device_id"`
	RoomID   string `json:"room_id"`
	Content  string `json:"content"`
}

// WSResponse websocket Response
type WSResponse struct {
	Event   string      `json:"event"`
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}
