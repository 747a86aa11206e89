package handlers

import (
	"chat_backend_service/internal/chat/app"
	"chat_backend_service/internal/chat/domain"
	errprocess "chat_backend_service/pkg/err"

	"github.com/gofiber/fiber/v2"
)

// RoomHandler definition room endpoints
type RoomHandler struct {
	RoomUC         *app.RoomUseCase
	ConversationUC *app.ConversationUseCase
}

type initiateRequest struct {
	UserIDs     []string `json:"user_ids"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar"`
	Description string   `json:"description"`
}

// Initiate find or create the room for the given members
func (h *RoomHandler) Initiate(c *fiber.Ctx) error {
	var req initiateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, _ := principal(c)
	room, created, err := h.RoomUC.Initiate(c.Context(), userID, req.UserIDs, domain.ChatRoomType(req.Type), app.InitiateParams{
		Name:        req.Name,
		Avatar:      req.Avatar,
		Description: req.Description,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{
		"room":    room,
		"created": created,
	})
}

// Recent one page of the requester's rooms with member profiles,
// last message and unread count
func (h *RoomHandler) Recent(c *fiber.Ctx) error {
	userID, _ := principal(c)
	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", 0)

	rooms, err := h.RoomUC.GetRecentRooms(c.Context(), userID, page, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, rooms)
}

type updateRoomRequest struct {
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Description string `json:"description"`
}

// Update change the display fields of the room
func (h *RoomHandler) Update(c *fiber.Ctx) error {
	var req updateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, _ := principal(c)
	room, err := h.RoomUC.UpdateRoomInfo(c.Context(), userID, c.Params("room_id"), app.InitiateParams{
		Name:        req.Name,
		Avatar:      req.Avatar,
		Description: req.Description,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, room)
}

// Conversation one page of room history
func (h *RoomHandler) Conversation(c *fiber.Ctx) error {
	userID, _ := principal(c)
	roomID := c.Params("room_id")
	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", 10)

	conv, err := h.ConversationUC.GetPage(c.Context(), roomID, userID, page, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, conv)
}

// DeleteRoom remove the room with its messages and unreferenced attachments
func (h *RoomHandler) DeleteRoom(c *fiber.Ctx) error {
	userID, _ := principal(c)
	roomID := c.Params("room_id")

	if err := h.RoomUC.DeleteRoom(c.Context(), userID, roomID); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"deleted": true})
}
