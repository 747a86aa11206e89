package handlers

import (
	"chat_backend_service/internal/chat/app"
	errprocess "chat_backend_service/pkg/err"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler definition friend request endpoints
type NotificationHandler struct {
	FriendUC *app.FriendUseCase
}

// List open notifications addressed to the requester
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, _ := principal(c)
	notifications, err := h.FriendUC.ListNotifications(c.Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, notifications)
}

type friendRequestBody struct {
	DiscoverID string `json:"discover_id"`
}

// RequestFriend send a friend request toward the discover id
func (h *NotificationHandler) RequestFriend(c *fiber.Ctx) error {
	var req friendRequestBody
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, sessionID := principal(c)
	n, err := h.FriendUC.RequestFriend(c.Context(), sessionID, userID, req.DiscoverID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, n)
}

// AcceptFriend action the friend request notification
func (h *NotificationHandler) AcceptFriend(c *fiber.Ctx) error {
	userID, sessionID := principal(c)
	if err := h.FriendUC.AcceptFriend(c.Context(), sessionID, userID, c.Params("notification_id")); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"accepted": true})
}
