package handlers

import (
	"chat_backend_service/internal/chat/app"
	errprocess "chat_backend_service/pkg/err"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler definition message endpoints
type MessageHandler struct {
	MessageUC *app.MessageUseCase
}

type postMessageRequest struct {
	Message string   `json:"message"`
	File    []string `json:"file"`
}

// Post create a message in the room
func (h *MessageHandler) Post(c *fiber.Ctx) error {
	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, sessionID := principal(c)
	msg, err := h.MessageUC.Post(c.Context(), sessionID, c.Params("room_id"), userID, req.Message, req.File)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, msg)
}

type forwardRequest struct {
	MessageIDs []string `json:"message_ids"`
	Message    string   `json:"message"`
	File       []string `json:"file"`
}

// Forward create a message referencing the source messages
func (h *MessageHandler) Forward(c *fiber.Ctx) error {
	var req forwardRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, sessionID := principal(c)
	msg, err := h.MessageUC.Forward(c.Context(), sessionID, c.Params("room_id"), userID, req.Message, req.File, req.MessageIDs)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, msg)
}

type replyRequest struct {
	MessageID string   `json:"message_id"`
	Message   string   `json:"message"`
	File      []string `json:"file"`
}

// Reply create a message linked back to the source message
func (h *MessageHandler) Reply(c *fiber.Ctx) error {
	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, sessionID := principal(c)
	msg, err := h.MessageUC.Reply(c.Context(), sessionID, c.Params("room_id"), userID, req.Message, req.File, req.MessageID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, msg)
}

// MarkRead append read markers for the requester on the whole room
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, sessionID := principal(c)
	matched, err := h.MessageUC.MarkRead(c.Context(), sessionID, c.Params("room_id"), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"matched_count": matched})
}

// Pin set the pin flag on the message
func (h *MessageHandler) Pin(c *fiber.Ctx) error {
	userID, sessionID := principal(c)
	matched, err := h.MessageUC.Pin(c.Context(), sessionID, c.Params("room_id"), userID, c.Params("message_id"))
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"matched_count": matched})
}

// Unpin clear the pin flag on the message
func (h *MessageHandler) Unpin(c *fiber.Ctx) error {
	userID, sessionID := principal(c)
	matched, err := h.MessageUC.Unpin(c.Context(), sessionID, c.Params("room_id"), userID, c.Params("message_id"))
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"matched_count": matched})
}

type deleteMessagesRequest struct {
	MessageIDs []string `json:"message_ids"`
}

// Delete hide the listed messages for the requester
func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	var req deleteMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, sessionID := principal(c)
	matched, err := h.MessageUC.DeleteMessages(c.Context(), sessionID, c.Params("room_id"), userID, req.MessageIDs)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"matched_count": matched})
}

// Purge physically remove own messages with their unreferenced attachments
func (h *MessageHandler) Purge(c *fiber.Ctx) error {
	var req deleteMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, _ := principal(c)
	deleted, err := h.MessageUC.PurgeMessages(c.Context(), c.Params("room_id"), userID, req.MessageIDs)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"deleted_count": deleted})
}
