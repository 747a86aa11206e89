package router

import (
	"context"

	"chat_backend_service/internal/chat/api/handlers"
	"chat_backend_service/internal/chat/app"
	"chat_backend_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes register the chat service routes
func RegisterRoutes(
	fiberApp *fiber.App,
	memberHandler *handlers.MemberHandler,
	roomHandler *handlers.RoomHandler,
	messageHandler *handlers.MessageHandler,
	fileHandler *handlers.FileHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *app.ChatWebsocketHandler,
) {
	users := fiberApp.Group("/users")
	users.Post("/register", memberHandler.Register)
	users.Post("/login", memberHandler.Login)
	users.Post("/refresh", memberHandler.Refresh)
	users.Post("/logout", middlewares.JWTMiddleware(), memberHandler.Logout)
	users.Get("/token", memberHandler.CheckToken)
	users.Get("/me", middlewares.JWTMiddleware(), memberHandler.Me)
	users.Put("/me", middlewares.JWTMiddleware(), memberHandler.UpdateProfile)
	users.Get("/friends", middlewares.JWTMiddleware(), memberHandler.Friends)
	users.Get("/search/:discover_id", middlewares.JWTMiddleware(), memberHandler.SearchUser)

	room := fiberApp.Group("/room", middlewares.JWTMiddleware())
	room.Post("/initiate", roomHandler.Initiate)
	room.Get("/recent", roomHandler.Recent)
	room.Put("/:room_id", roomHandler.Update)
	room.Get("/:room_id/messages", roomHandler.Conversation)
	room.Post("/:room_id/message", messageHandler.Post)
	room.Post("/:room_id/forward_messages", messageHandler.Forward)
	room.Post("/:room_id/reply_message", messageHandler.Reply)
	room.Put("/:room_id/mark-read", messageHandler.MarkRead)
	room.Put("/:room_id/pin-message/:message_id", messageHandler.Pin)
	room.Put("/:room_id/unpin-message/:message_id", messageHandler.Unpin)
	room.Delete("/:room_id", roomHandler.DeleteRoom)

	del := fiberApp.Group("/delete", middlewares.JWTMiddleware())
	del.Delete("/:room_id/messages", messageHandler.Delete)
	del.Delete("/:room_id/purge", messageHandler.Purge)

	// download links carry the token in the query
	fs := fiberApp.Group("/fs", middlewares.JWTMiddleware())
	fs.Post("/upload", fileHandler.Upload)
	fs.Get("/:stored_name", fileHandler.Download)

	notification := fiberApp.Group("/notification", middlewares.JWTMiddleware())
	notification.Get("/", notificationHandler.List)
	notification.Post("/friend-request", notificationHandler.RequestFriend)
	notification.Put("/:notification_id/accept", notificationHandler.AcceptFriend)

	fiberApp.Use("/ws", middlewares.JWTMiddleware(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	fiberApp.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		wsHandler.HandleConnection(context.Background(), conn)
	}))
}
