package handlers

import (
	errprocess "chat_backend_service/pkg/err"
	"chat_backend_service/pkg/logger"
	"chat_backend_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondOK success envelope
func respondOK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// respondErr map the error kind to a status code.
// A duplicate request is not an error wire-wise, it reports success false.
func respondErr(c *fiber.Ctx, err error) error {
	status := errprocess.HTTPStatus(err)
	if errprocess.KindOf(err) == errprocess.KindConflictIgnored {
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if status == fiber.StatusInternalServerError {
		logger.Log.Error("request fail",
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// principal pull the authenticated user and session out of the context
func principal(c *fiber.Ctx) (userID, sessionID string) {
	userID, _ = c.Locals(middlewares.TokenUserID).(string)
	sessionID, _ = c.Locals(middlewares.TokenSessionID).(string)
	return userID, sessionID
}
